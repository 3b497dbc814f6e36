// Package rerank implements the listwise, pointwise, and filter-for-editing
// strategies of spec.md §4.F: scoring and reordering candidate code spans
// against a query using an LLM as the comparator.
package rerank

import "context"

// Span is one candidate snippet competing for a rerank slot, keyed by a
// caller-supplied unique hash (spec.md §4.F "Listwise rerank").
type Span struct {
	Hash       string
	FsFilePath string
	Content    string
}

// Tokenizer counts tokens the way a specific model's encoder would, used
// for the listwise budget check.
type Tokenizer interface {
	Count(text string) int
}

// Caller is the narrow LLM surface rerank needs: a single request/response
// round trip. It is implemented in terms of internal/llmbroker by the
// caller (kept narrow here so rerank has no dependency on llmtypes wire
// shapes).
type Caller interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
