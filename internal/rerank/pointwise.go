package rerank

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

const pointwiseConcurrency = 25

// Pointwise implements spec.md §4.F's pointwise rerank: up to 25 concurrent
// yes/no prompts, one per snippet, keeping those whose answer normalizes to
// "yes". Output is a subsequence of the input in the input's order
// (spec.md §8).
func Pointwise(ctx context.Context, query string, spans []Span, limit int, caller Caller) ([]Span, error) {
	keep := make([]bool, len(spans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pointwiseConcurrency)
	for i, span := range spans {
		i, span := i, span
		g.Go(func() error {
			yes, err := askYesNo(gctx, query, span, caller)
			if err != nil {
				return err
			}
			keep[i] = yes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var kept []Span
	for i, span := range spans {
		if keep[i] {
			kept = append(kept, span)
			if limit > 0 && len(kept) >= limit {
				break
			}
		}
	}
	return kept, nil
}

func askYesNo(ctx context.Context, query string, span Span, caller Caller) (bool, error) {
	prompt := fmt.Sprintf("Query: %s\n\nSnippet (%s):\n%s\n\nIs this snippet relevant to the query? Answer with exactly one word, yes or no.", query, span.FsFilePath, span.Content)
	resp, err := caller.Complete(ctx, "You judge code snippet relevance with a single yes/no word.", prompt)
	if err != nil {
		return false, err
	}
	normalized := strings.ToLower(strings.TrimSpace(resp))
	return strings.HasPrefix(normalized, "yes"), nil
}
