package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/symborch/core/internal/symbols"
)

const maxIterations = 3

const searchSystemPrompt = `You are deciding what to look up next in a codebase to answer a user's question. Emit a <searches> block listing (tool, query, thinking) requests, one <search tool="file|keyword" query="..."><thinking>...</thinking></search> per lookup.`

const identifySystemPrompt = `Given the user's question and a set of lookup results, decide which results are relevant. Emit an <identify> block with <keep path="..."><reason>...</reason></keep> or <drop path="..."><reason>...</reason></drop> for every result.`

const decideSystemPrompt = `Decide whether the current scratch-pad is sufficient to answer the user's question, or whether another round of search is needed. Reply with CONTINUE or STOP and a short justification.`

// MetricsRecorder receives search-loop observability events.
// internal/observability.Metrics satisfies this interface structurally, so
// this package never imports it.
type MetricsRecorder interface {
	RecordSearchRun(iterations int, filesSelected int)
}

type noopMetrics struct{}

func (noopMetrics) RecordSearchRun(int, int) {}

// Loop runs the search→identify→decide cycle of spec.md §4.G.
type Loop struct {
	files    FileIndex
	keywords KeywordIndex
	caller   Caller
	metrics  MetricsRecorder
}

// New builds a Loop over the given deterministic indexes and LLM caller.
func New(files FileIndex, keywords KeywordIndex, caller Caller) *Loop {
	return &Loop{files: files, keywords: keywords, caller: caller, metrics: noopMetrics{}}
}

// SetMetrics installs a MetricsRecorder for subsequent Run calls.
func (l *Loop) SetMetrics(m MetricsRecorder) {
	if m != nil {
		l.metrics = m
	}
}

// Run drives the loop to completion (cap 3 iterations) for userQuery and
// returns the collected file paths folded into the two output shapes
// spec.md §4.G names.
func (l *Loop) Run(ctx context.Context, userQuery string) (Outcome, error) {
	selected := make(map[string]bool)
	var scratchPad strings.Builder
	pendingSteps := make(map[string][]symbols.PendingStep)
	exploration := newExplorationTracker()

	iteration := 0
	for iteration < maxIterations {
		iteration++

		searchResp, err := l.caller.Complete(ctx, searchSystemPrompt, searchUserPrompt(userQuery, scratchPad.String()))
		if err != nil {
			return Outcome{}, fmt.Errorf("search: search step: %w", err)
		}
		requests, err := parseSearchRequests(searchResp)
		if err != nil {
			break
		}

		hits, err := l.runRequests(ctx, requests)
		if err != nil {
			return Outcome{}, err
		}
		if len(hits) == 0 {
			break
		}

		identifyResp, err := l.caller.Complete(ctx, identifySystemPrompt, identifyUserPrompt(userQuery, hits))
		if err != nil {
			return Outcome{}, fmt.Errorf("search: identify step: %w", err)
		}
		kept, err := parseIdentifyDecisions(identifyResp)
		if err != nil {
			kept = hitPathSet(hits)
		}
		for _, h := range hits {
			exploration.observe(h.FsFilePath, kept[h.FsFilePath])
			if !kept[h.FsFilePath] {
				continue
			}
			if !selected[h.FsFilePath] {
				selected[h.FsFilePath] = true
			}
			pendingSteps[h.FsFilePath] = append(pendingSteps[h.FsFilePath], symbols.PendingStep{
				Description: fmt.Sprintf("iteration %d: %s", iteration, h.Snippet),
			})
		}
		fmt.Fprintf(&scratchPad, "iteration %d: kept %d of %d results\n", iteration, len(kept), len(hits))

		if iteration >= maxIterations {
			break
		}
		decideResp, err := l.caller.Complete(ctx, decideSystemPrompt, scratchPad.String())
		if err != nil {
			return Outcome{}, fmt.Errorf("search: decide step: %w", err)
		}
		if !shouldContinue(decideResp) {
			break
		}
	}

	outcome := l.buildOutcome(selected, pendingSteps, iteration, scratchPad.String(), exploration)
	l.metrics.RecordSearchRun(iteration, len(selected))
	return outcome, nil
}

func (l *Loop) runRequests(ctx context.Context, requests []Request) ([]Hit, error) {
	var hits []Hit
	for _, req := range requests {
		var (
			found []Hit
			err   error
		)
		switch req.Tool {
		case ToolFile:
			found, err = l.files.LookupFile(ctx, req.Query)
		case ToolKeyword:
			found, err = l.keywords.LookupKeyword(ctx, req.Query)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("search: %s lookup %q: %w", req.Tool, req.Query, err)
		}
		hits = append(hits, found...)
	}
	return hits, nil
}

func (l *Loop) buildOutcome(selected map[string]bool, pendingSteps map[string][]symbols.PendingStep, iterations int, scratchPad string, exploration *explorationTracker) Outcome {
	paths := make([]string, 0, len(selected))
	for path := range selected {
		paths = append(paths, path)
	}
	paths = exploration.rank(paths)

	out := Outcome{Iterations: iterations, ScratchPad: scratchPad}
	for _, path := range paths {
		out.Thinking = append(out.Thinking, symbols.Thinking{
			Identifier:   symbols.Identifier{Name: path, FsFilePath: path},
			PendingSteps: pendingSteps[path],
			UserContext:  scratchPad,
		})
		out.Steps = append(out.Steps, CodeSymbolWithSteps{
			Identifier: symbols.Identifier{Name: path, FsFilePath: path},
			Steps:      pendingSteps[path],
		})
	}
	return out
}

func hitPathSet(hits []Hit) map[string]bool {
	set := make(map[string]bool, len(hits))
	for _, h := range hits {
		set[h.FsFilePath] = true
	}
	return set
}

func searchUserPrompt(userQuery, scratchPad string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User query: %s\n", userQuery)
	if scratchPad != "" {
		fmt.Fprintf(&b, "Scratch-pad so far:\n%s\n", scratchPad)
	}
	return b.String()
}

func identifyUserPrompt(userQuery string, hits []Hit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User query: %s\n\nResults:\n", userQuery)
	for _, h := range hits {
		fmt.Fprintf(&b, "%s:\n%s\n\n", h.FsFilePath, h.Snippet)
	}
	return b.String()
}
