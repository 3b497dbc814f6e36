package scratchpad

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

const anchorEditConcurrency = 100

// Loop owns the single background task that consumes EnvironmentEvents
// until Shutdown (spec.md §4.H).
type Loop struct {
	requester  EditRequester
	logger     *slog.Logger
	mu         sync.Mutex
	scratchPad strings.Builder
}

// New builds a Loop dispatching anchored edits through requester.
func New(requester EditRequester, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{requester: requester, logger: logger}
}

// Run consumes events off the channel until a ShutdownEvent is received or
// the channel is closed. It blocks the calling goroutine; callers run it in
// its own goroutine as the loop's single background task.
func (l *Loop) Run(ctx context.Context, events <-chan EnvironmentEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Kind() == KindShutdown {
				return
			}
			l.handle(ctx, ev)
		}
	}
}

func (l *Loop) handle(ctx context.Context, ev EnvironmentEvent) {
	switch e := ev.(type) {
	case HumanAnchorEvent:
		l.handleAnchor(ctx, e)
	case HumanFollowupEvent:
		// no-op per spec.md §4.H.
	case LspEvent, SymbolEvent:
		// reserved; no-op in this core.
	default:
		l.logger.Warn("scratchpad: unrecognized environment event", "kind", ev.Kind())
	}
}

func (l *Loop) handleAnchor(ctx context.Context, e HumanAnchorEvent) {
	if len(e.Anchored) == 0 {
		return
	}

	replies := make([]EditReply, len(e.Anchored))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(anchorEditConcurrency)

	for i, id := range e.Anchored {
		i, id := i, id
		g.Go(func() error {
			reply, err := l.requester.RequestEdit(gctx, SymbolEditRequest{
				Identifier:  id,
				Instruction: e.Instruction,
			})
			if err != nil {
				reply = EditReply{Identifier: id, Err: err}
			}
			replies[i] = reply
			return nil
		})
	}
	// Errors from individual requests are captured per-reply, not propagated
	// through the group: one symbol failing must not cancel its siblings.
	_ = g.Wait()

	l.recordScratchPadUpdate(replies)
	emit(e.UISink, "code_iteration_finished", l.snapshot())
}

func (l *Loop) recordScratchPadUpdate(replies []EditReply) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range replies {
		if r.Err != nil {
			fmt.Fprintf(&l.scratchPad, "%s: edit failed: %v\n", r.Identifier.String(), r.Err)
			continue
		}
		fmt.Fprintf(&l.scratchPad, "%s: %s\n", r.Identifier.String(), r.Summary)
	}
}

// snapshot returns the current scratch-pad contents.
func (l *Loop) snapshot() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scratchPad.String()
}
