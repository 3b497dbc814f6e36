// Package tooldispatch implements the tool catalogue: one ToolType per
// capability the core exposes to planning and editing, a ToolInput/ToolOutput
// tagged variant per ToolType, and a Dispatcher total over ToolType.
package tooldispatch

// ToolType enumerates every tool the dispatcher can invoke. This list is
// exhaustive at the source level (spec.md §4.B); NewDispatcher panics at
// construction if any variant below has no registered handler.
type ToolType string

const (
	OpenFile                       ToolType = "open_file"
	FindInFile                     ToolType = "find_in_file"
	GoToDefinition                 ToolType = "go_to_definition"
	GoToImplementation             ToolType = "go_to_implementation"
	GoToReferences                 ToolType = "go_to_references"
	GoToTypeDefinition             ToolType = "go_to_type_definition"
	GoToPreviousWord               ToolType = "go_to_previous_word"
	LSPDiagnostics                 ToolType = "lsp_diagnostics"
	GetQuickFixList                ToolType = "get_quick_fix_list"
	ApplyQuickFix                  ToolType = "apply_quick_fix"
	EditorApplyEdits               ToolType = "editor_apply_edits"
	CreateFile                     ToolType = "create_file"
	ListFiles                      ToolType = "list_files"
	RegexSearch                    ToolType = "regex_search"
	CodeEditLLM                    ToolType = "code_edit_llm"
	SearchAndReplaceEditLLM        ToolType = "search_and_replace_edit_llm"
	RerankCodeSnippets             ToolType = "rerank_code_snippets"
	FilterCodeSnippetsForEditing   ToolType = "filter_code_snippets_for_editing"
	PlanStepGenerator              ToolType = "plan_step_generator"
	PlanningBeforeCodeEdit         ToolType = "planning_before_code_edit"
	ProbeQuestion                  ToolType = "probe_question"
	ProbeSubSymbol                 ToolType = "probe_sub_symbol"
	ProbeEnoughOrDeeper            ToolType = "probe_enough_or_deeper"
	ProbePossible                  ToolType = "probe_possible"
	ProbeFollowAlongSymbol         ToolType = "probe_follow_along_symbol"
	ReasoningExplainCode           ToolType = "reasoning_explain_code"
	RepoMapSearch                  ToolType = "repo_map_search"
	CodeCorrectnessActionSelection ToolType = "code_correctness_action_selection"
	TestCorrection                 ToolType = "test_correction"
)

// AllToolTypes lists every variant, used to enforce dispatcher totality and
// to build agent-facing self-description catalogues.
func AllToolTypes() []ToolType {
	return []ToolType{
		OpenFile, FindInFile, GoToDefinition, GoToImplementation, GoToReferences,
		GoToTypeDefinition, GoToPreviousWord, LSPDiagnostics, GetQuickFixList,
		ApplyQuickFix, EditorApplyEdits, CreateFile, ListFiles, RegexSearch,
		CodeEditLLM, SearchAndReplaceEditLLM, RerankCodeSnippets,
		FilterCodeSnippetsForEditing, PlanStepGenerator, PlanningBeforeCodeEdit,
		ProbeQuestion, ProbeSubSymbol, ProbeEnoughOrDeeper, ProbePossible,
		ProbeFollowAlongSymbol, ReasoningExplainCode,
		RepoMapSearch, CodeCorrectnessActionSelection, TestCorrection,
	}
}

// ToolInput is implemented by every tool's input variant.
type ToolInput interface {
	ToolType() ToolType
}

// ToolOutput is implemented by every tool's output variant.
type ToolOutput interface {
	ToolType() ToolType
}

// Position mirrors editorrpc.Position so tool inputs don't force every
// caller to import editorrpc directly.
type Position struct {
	Line       int
	Character  int
	ByteOffset int
}

// Range mirrors editorrpc.Range.
type Range struct {
	Start Position
	End   Position
}
