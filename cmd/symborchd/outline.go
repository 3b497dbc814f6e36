package main

import (
	"context"
	"os/exec"
	"regexp"
	"strings"

	"github.com/symborch/core/internal/symbols"
	"github.com/symborch/core/internal/toolbox"
)

// regexOutline resolves a file's top-level named regions with a
// language-agnostic declaration scanner, grounded on the same
// line-at-a-time regex approach internal/tooldispatch/regexsearch.go uses
// for ripgrep-style matching. It recognizes Go func/type/const/var
// declarations and falls back to nothing for unrecognized syntax rather
// than guessing.
type regexOutline struct{}

var outlinePattern = regexp.MustCompile(`^(?:func\s+(?:\([^)]*\)\s*)?|type\s+|const\s+|var\s+)([A-Za-z_][A-Za-z0-9_]*)`)

func (regexOutline) Outline(ctx context.Context, fsFilePath, contents string) ([]toolbox.OutlineNode, error) {
	var nodes []toolbox.OutlineNode
	lines := strings.Split(contents, "\n")
	offset := 0
	for i, line := range lines {
		if m := outlinePattern.FindStringSubmatch(line); m != nil {
			nodes = append(nodes, toolbox.OutlineNode{
				Name: m[1],
				Range: symbols.Range{
					Start: symbols.Position{Line: i, Column: 0, ByteOffset: offset},
					End:   symbols.Position{Line: i, Column: len(line), ByteOffset: offset + len(line)},
				},
			})
		}
		offset += len(line) + 1
	}
	return nodes, nil
}

// gitDiff resolves a file's working-tree diff by shelling out to git,
// grounded on internal/tooldispatch/regexsearch.go's os/exec pattern for
// wrapping an external binary behind a narrow interface.
type gitDiff struct {
	repoRoot string
}

func (g gitDiff) Diff(ctx context.Context, fsFilePath string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", g.repoRoot, "diff", "--no-color", "--", fsFilePath)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
