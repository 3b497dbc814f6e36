package rerank

import (
	"context"
	"fmt"
	"strings"
)

const (
	listwiseWindow = 10
	listwiseStride = 5
)

// Listwise implements spec.md §4.F's listwise rerank: if the spans already
// fit the token budget, return them untouched; otherwise slide a window of
// 10 with stride 5, asking the LLM to permute each window from least to
// most relevant, then reverse the fully-swept list and truncate to limit.
//
// For n > listwiseWindow the number of LLM calls equals
// ceil((n-listwiseWindow)/listwiseStride) + 1 (spec.md §8), which falls out
// of the loop below rather than being computed as a closed form.
func Listwise(ctx context.Context, query string, spans []Span, tokenizer Tokenizer, budget, limit int, caller Caller) ([]Span, int, error) {
	total := 0
	for _, s := range spans {
		total += tokenizer.Count(s.Content)
	}
	if total <= budget {
		return spans, 0, nil
	}

	working := append([]Span(nil), spans...)
	calls := 0
	n := len(working)
	start := 0
	for {
		end := start + listwiseWindow
		if end > n {
			end = n
		}
		permuted, err := permuteWindow(ctx, query, working[start:end], caller)
		if err != nil {
			return nil, calls, err
		}
		copy(working[start:end], permuted)
		calls++
		if end >= n {
			break
		}
		start += listwiseStride
	}

	for i, j := 0, len(working)-1; i < j; i, j = i+1, j-1 {
		working[i], working[j] = working[j], working[i]
	}
	if limit > 0 && limit < len(working) {
		working = working[:limit]
	}
	return working, calls, nil
}

// permuteWindow asks the LLM to order window from least to most relevant to
// query and reorders window's entries according to the hashes it returns.
// Any hash present in window but absent from a malformed response keeps its
// original relative position appended at the front (treated as least
// relevant, the safe default for a parse failure).
func permuteWindow(ctx context.Context, query string, window []Span, caller Caller) ([]Span, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nOrder the following snippets from LEAST to MOST relevant to the query. Respond with only their hashes, one per line, in that order.\n\n", query)
	for _, s := range window {
		fmt.Fprintf(&b, "%s:\n%s\n\n", s.Hash, s.Content)
	}
	resp, err := caller.Complete(ctx, "You rank code snippets by relevance to a query.", b.String())
	if err != nil {
		return nil, err
	}

	byHash := make(map[string]Span, len(window))
	for _, s := range window {
		byHash[s.Hash] = s
	}

	var ordered []Span
	seen := make(map[string]bool, len(window))
	for _, line := range strings.Split(resp, "\n") {
		hash := strings.TrimSpace(line)
		if span, ok := byHash[hash]; ok && !seen[hash] {
			ordered = append(ordered, span)
			seen[hash] = true
		}
	}
	var missing []Span
	for _, s := range window {
		if !seen[s.Hash] {
			missing = append(missing, s)
			seen[s.Hash] = true
		}
	}
	return append(missing, ordered...), nil
}
