// Package planservice implements the Plan lifecycle: creation, step
// append, drop, and checkpointed execution, backed by one JSON file per
// plan (spec.md §4.E, §6.4).
package planservice

// Step is one unit of work in a Plan: a title, description, the ordered
// (possibly empty) list of files it touches, and an optional pointer back
// into prior context.
type Step struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	FilesToEdit       []string `json:"files_to_edit"`
	PriorContextIndex *int     `json:"prior_context_index,omitempty"`
}

// Plan is the persisted unit of planning state. Invariants: 0 <= Checkpoint
// <= len(Steps); OriginalFileSnapshots records the first observed content
// for each file mentioned by any executed step (spec.md "Core entities").
type Plan struct {
	ID                    string            `json:"id"`
	Title                 string            `json:"title"`
	InitialUserQuery      string            `json:"initial_user_query"`
	Steps                 []Step            `json:"steps"`
	Checkpoint            int               `json:"checkpoint"`
	StoragePath           string            `json:"storage_path"`
	UserContext           string            `json:"user_context"`
	OriginalFileSnapshots map[string]string `json:"original_file_snapshots"`
}

// MessageProperties carries the LLM properties used to drive every LLM
// tool this plan's operations invoke (plan-step-generator, symbol edits).
type MessageProperties struct {
	Provider string
	APIKey   string
	Model    string
}

// SymbolToEdit is the payload sent down the symbol-edit pathway for a
// single step (spec.md §4.E "execute-until").
type SymbolToEdit struct {
	StepIndex   int
	Title       string
	Description string
	FilesToEdit []string
	Context     string
	Properties  MessageProperties
}
