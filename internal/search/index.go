package search

import "context"

// FileIndex resolves a file-name-shaped query against the repo-scoped file
// index (spec.md §4.G step 2 "purely deterministic lookup"). Implementations
// must not call out to an LLM.
type FileIndex interface {
	LookupFile(ctx context.Context, query string) ([]Hit, error)
}

// KeywordIndex resolves a keyword query against the repo-scoped keyword
// index. Implementations must not call out to an LLM.
type KeywordIndex interface {
	LookupKeyword(ctx context.Context, query string) ([]Hit, error)
}

// Caller is the narrow LLM seam the loop needs for its search/identify/
// decide steps, mirroring internal/rerank.Caller so search stays free of
// llmbroker/llmtypes wire dependencies.
type Caller interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
