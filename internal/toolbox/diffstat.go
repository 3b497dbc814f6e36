package toolbox

import (
	"context"
	"strings"
)

// DiffStat summarizes one file's working-tree diff: per-file line
// insertion/deletion counts, grounded on the richer commit-statistics
// reporting a full agentic sidecar carries alongside its plain diff text
// (tracked upstream per-commit and per-file). No third-party diff-stat
// library is wired anywhere in the corpus (the git binary itself already
// computes the diff; what's missing is only counting the +/- lines it
// printed), so this is intentionally stdlib string scanning rather than a
// new dependency.
type DiffStat struct {
	FsFilePath     string
	LineInsertions int
	LineDeletions  int
}

// diffStatFromText counts unified-diff +/- lines, skipping the +++/---
// file-header lines which also start with a single + or -.
func diffStatFromText(diff string) (insertions, deletions int) {
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---"):
			continue
		case strings.HasPrefix(line, "+"):
			insertions++
		case strings.HasPrefix(line, "-"):
			deletions++
		}
	}
	return insertions, deletions
}

// DiffStatistics implements the richer git-diff reporting spec.md's plain
// "recently edited files" folding leaves out: per-file insertion/deletion
// counts alongside the diff text RecentlyEditedFiles already gathers.
// Errors fetching any one file's diff are skipped, matching
// RecentlyEditedFiles' best-effort behavior.
func (tb *ToolBox) DiffStatistics(ctx context.Context, fsFilePaths []string) ([]DiffStat, error) {
	stats := make([]DiffStat, 0, len(fsFilePaths))
	for _, path := range fsFilePaths {
		diff, err := tb.diff.Diff(ctx, path)
		if err != nil || diff == "" {
			continue
		}
		ins, del := diffStatFromText(diff)
		stats = append(stats, DiffStat{FsFilePath: path, LineInsertions: ins, LineDeletions: del})
	}
	return stats, nil
}
