package tooldispatch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/symborch/core/internal/editorrpc"
)

const (
	regexSearchMaxResults  = 250
	regexSearchMaxRawLines = 5 * regexSearchMaxResults
)

// ripgrepEvent is one line of `rg --json` output; only the fields the
// grouping logic below needs are decoded.
type ripgrepEvent struct {
	Type string `json:"type"`
	Data struct {
		Path struct {
			Text string `json:"text"`
		} `json:"path"`
		LineNumber int `json:"line_number"`
		Lines      struct {
			Text string `json:"text"`
		} `json:"lines"`
	} `json:"data"`
}

// handleRegexSearch implements spec.md §4.B's "Regex search tool": fetch the
// ripgrep binary path from the editor, run it with --json, group adjacent
// context lines around each match, cap at 250 results, and truncate raw
// stdout at 5x250 lines.
func handleRegexSearch(editor *editorrpc.Client) Handler {
	return func(ctx context.Context, input ToolInput) (ToolOutput, error) {
		in, ok := input.(RegexSearchInput)
		if !ok {
			return nil, fmt.Errorf("%w: expected RegexSearchInput", ErrWrongToolInput)
		}
		pathResp, err := editor.RipGrepPath(ctx)
		if err != nil {
			return nil, err
		}
		glob := in.Glob
		if glob == "" {
			glob = "*"
		}
		cmd := exec.CommandContext(ctx, pathResp.RipGrepPath,
			"--json", "-e", in.Pattern, "--glob", glob, "--context", "1", in.Directory)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", editorrpc.ErrCommunicatingWithEditor, err)
		}
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("%w: starting ripgrep: %v", editorrpc.ErrCommunicatingWithEditor, err)
		}

		matches, truncated := groupRipgrepOutput(stdout)
		_ = cmd.Wait()
		return RegexSearchOutput{Matches: matches, Truncated: truncated}, nil
	}
}

func groupRipgrepOutput(stdout interface{ Read([]byte) (int, error) }) ([]RegexMatch, bool) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var matches []RegexMatch
	var pendingContext []string
	rawLines := 0
	truncated := false

	flushContext := func() []string {
		ctx := pendingContext
		pendingContext = nil
		return ctx
	}

	for scanner.Scan() {
		rawLines++
		if rawLines > regexSearchMaxRawLines {
			truncated = true
			break
		}
		var ev ripgrepEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		switch ev.Type {
		case "context":
			pendingContext = append(pendingContext, ev.Data.Lines.Text)
		case "match":
			if len(matches) >= regexSearchMaxResults {
				truncated = true
				continue
			}
			matches = append(matches, RegexMatch{
				FsFilePath: ev.Data.Path.Text,
				LineNumber: ev.Data.LineNumber,
				MatchLine:  ev.Data.Lines.Text,
				ContextPre: flushContext(),
			})
		}
	}
	// Trailing context after the final match, if any, belongs to it.
	if len(matches) > 0 && len(pendingContext) > 0 {
		matches[len(matches)-1].ContextPost = pendingContext
	}
	if len(matches) >= regexSearchMaxResults {
		truncated = true
	}
	return matches, truncated
}
