package main

import (
	"context"
	"strings"

	"github.com/symborch/core/internal/editorrpc"
	"github.com/symborch/core/internal/search"
	"github.com/symborch/core/internal/tooldispatch"
)

// fileIndexAdapter implements search.FileIndex as a substring match over
// the editor's project file listing, a purely deterministic lookup with no
// LLM involvement as search.FileIndex requires.
type fileIndexAdapter struct {
	editor *editorrpc.Client
}

func (f fileIndexAdapter) LookupFile(ctx context.Context, query string) ([]search.Hit, error) {
	resp, err := f.editor.ListFiles(ctx, ".")
	if err != nil {
		return nil, err
	}
	var hits []search.Hit
	needle := strings.ToLower(query)
	for _, path := range resp.FsFilePaths {
		if strings.Contains(strings.ToLower(path), needle) {
			hits = append(hits, search.Hit{FsFilePath: path})
		}
	}
	return hits, nil
}

// keywordIndexAdapter implements search.KeywordIndex over the already-wired
// Dispatcher's RegexSearch tool, keeping this lookup deterministic and
// LLM-free as search.KeywordIndex requires.
type keywordIndexAdapter struct {
	dispatcher *tooldispatch.Dispatcher
}

func (k keywordIndexAdapter) LookupKeyword(ctx context.Context, query string) ([]search.Hit, error) {
	out, err := k.dispatcher.Invoke(ctx, tooldispatch.RegexSearchInput{Pattern: query, Directory: "."})
	if err != nil {
		return nil, err
	}
	result := out.(tooldispatch.RegexSearchOutput)
	hits := make([]search.Hit, 0, len(result.Matches))
	for _, m := range result.Matches {
		hits = append(hits, search.Hit{FsFilePath: m.FsFilePath, Snippet: m.MatchLine})
	}
	return hits, nil
}
