// Package search implements the iterative search→identify→decide loop of
// spec.md §4.G: ask the LLM which lookups to run against a deterministic
// local repository index, fold the results into a scratch-pad, then ask
// whether to keep going. Capped at 3 iterations.
package search

import (
	"github.com/symborch/core/internal/symbols"
)

// Tool is one of the two lookup kinds the LLM can request per iteration.
type Tool string

const (
	ToolFile    Tool = "file"
	ToolKeyword Tool = "keyword"
)

// Request is one (tool, query, thinking) triple the LLM emitted during the
// search step.
type Request struct {
	Tool     Tool
	Query    string
	Thinking string
}

// Hit is one deterministic lookup result against the local repository
// index.
type Hit struct {
	FsFilePath string
	Snippet    string
}

// CodeSymbolWithSteps pairs a symbol identifier with the ordered pending
// steps the loop attached to it while narrowing the search.
type CodeSymbolWithSteps struct {
	Identifier symbols.Identifier
	Steps      []symbols.PendingStep
}

// Outcome is the terminal output of Run: the file paths collected across
// iterations folded into the two list shapes spec.md §4.G names.
type Outcome struct {
	Thinking []symbols.Thinking
	Steps    []CodeSymbolWithSteps
	Iterations int
	ScratchPad string
}
