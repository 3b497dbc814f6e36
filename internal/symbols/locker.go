package symbols

import (
	"context"
	"fmt"
	"sync"
)

// Locker exclusively owns the map Identifier -> sender-channel-into-actor.
// Actors are created lazily on first request and live until Shutdown
// (spec.md "Lifecycles & ownership"). The mutex is held only for the
// map lookup/insert, never across an actor call.
type Locker struct {
	mu          sync.Mutex
	actors      map[Identifier]chan envelope
	findSnippet FindSnippetFunc
	wg          sync.WaitGroup
	closed      bool
}

// NewLocker constructs an empty Locker. findSnippet is shared by every
// actor spawned from this Locker.
func NewLocker(findSnippet FindSnippetFunc) *Locker {
	return &Locker{
		actors:      make(map[Identifier]chan envelope),
		findSnippet: findSnippet,
	}
}

// actorFor returns the inbox for id's actor, spawning it on first use. At
// most one actor is ever created per Identifier across the process
// lifetime (spec.md §8).
func (l *Locker) actorFor(id Identifier) (chan envelope, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrActorStopped
	}
	if inbox, ok := l.actors[id]; ok {
		return inbox, nil
	}
	inbox := make(chan envelope, 32)
	l.actors[id] = inbox
	st := &actorState{
		thinking:    Thinking{Identifier: id},
		findSnippet: l.findSnippet,
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		runActor(inbox, st)
	}()
	return inbox, nil
}

// send enqueues op on id's actor and waits for its reply, honoring ctx
// cancellation on both the send and the receive.
func (l *Locker) send(ctx context.Context, id Identifier, run op) (any, error) {
	if ctx.Err() != nil {
		return nil, ErrCancelled
	}
	inbox, err := l.actorFor(id)
	if err != nil {
		return nil, err
	}
	reply := make(chan actorResult, 1)
	select {
	case inbox <- envelope{ctx: ctx, run: run, reply: reply}:
	case <-ctx.Done():
		return nil, ErrCancelled
	}
	select {
	case res := <-reply:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ErrCancelled
	}
}

// EnsureSnippet returns id's snippet, loading it via FindSnippetFunc on the
// first call for this symbol and caching it thereafter (spec.md §8, "exactly
// one call to find_snippet_for_symbol").
func (l *Locker) EnsureSnippet(ctx context.Context, id Identifier) (Snippet, error) {
	if !id.Placed() {
		return Snippet{}, fmt.Errorf("%w: identifier %q has no fs_file_path", ErrSymbolNotFound, id.Name)
	}
	value, err := l.send(ctx, id, func(ctx context.Context, st *actorState) (any, error) {
		if st.snippetLoaded {
			if st.thinking.Snippet == nil {
				return Snippet{}, &NotFoundError{Name: id.Name}
			}
			return *st.thinking.Snippet, nil
		}
		snippet, err := st.findSnippet(ctx, id.FsFilePath, id.Name)
		st.snippetLoaded = true
		if err != nil {
			return Snippet{}, err
		}
		st.thinking.Snippet = &snippet
		return snippet, nil
	})
	if err != nil {
		return Snippet{}, err
	}
	return value.(Snippet), nil
}

// AppendStep queues a pending step against id's symbol.
func (l *Locker) AppendStep(ctx context.Context, id Identifier, step PendingStep) error {
	_, err := l.send(ctx, id, func(ctx context.Context, st *actorState) (any, error) {
		st.thinking.PendingSteps = append(st.thinking.PendingSteps, step)
		return nil, nil
	})
	return err
}

// PopStep removes and returns the oldest pending step, or ok=false if none
// remain.
func (l *Locker) PopStep(ctx context.Context, id Identifier) (PendingStep, bool, error) {
	type result struct {
		step PendingStep
		ok   bool
	}
	value, err := l.send(ctx, id, func(ctx context.Context, st *actorState) (any, error) {
		if len(st.thinking.PendingSteps) == 0 {
			return result{}, nil
		}
		step := st.thinking.PendingSteps[0]
		st.thinking.PendingSteps = st.thinking.PendingSteps[1:]
		return result{step: step, ok: true}, nil
	})
	if err != nil {
		return PendingStep{}, false, err
	}
	r := value.(result)
	return r.step, r.ok, nil
}

// Snapshot returns a copy of id's current Thinking value.
func (l *Locker) Snapshot(ctx context.Context, id Identifier) (Thinking, error) {
	value, err := l.send(ctx, id, func(ctx context.Context, st *actorState) (any, error) {
		cp := st.thinking
		cp.PendingSteps = append([]PendingStep(nil), st.thinking.PendingSteps...)
		return cp, nil
	})
	if err != nil {
		return Thinking{}, err
	}
	return value.(Thinking), nil
}

// MarkNew flags id's symbol as newly created (not yet present on disk).
func (l *Locker) MarkNew(ctx context.Context, id Identifier, isNew bool) error {
	_, err := l.send(ctx, id, func(ctx context.Context, st *actorState) (any, error) {
		st.thinking.IsNew = isNew
		return nil, nil
	})
	return err
}

// ActorCount reports how many actors are currently live, used by the
// observability health surface.
func (l *Locker) ActorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.actors)
}

// Shutdown closes every actor's inbox and waits for their goroutines to
// exit. No further requests may be sent to this Locker afterward.
func (l *Locker) Shutdown() {
	l.mu.Lock()
	l.closed = true
	inboxes := make([]chan envelope, 0, len(l.actors))
	for _, inbox := range l.actors {
		inboxes = append(inboxes, inbox)
	}
	l.mu.Unlock()

	for _, inbox := range inboxes {
		close(inbox)
	}
	l.wg.Wait()
}
