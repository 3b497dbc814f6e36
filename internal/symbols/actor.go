package symbols

import "context"

// FindSnippetFunc loads a symbol's snippet from the editor/index. It is
// invoked at most once per symbol across the process lifetime, the first
// time that symbol's snippet is requested (spec.md §8, "exactly one call to
// find_snippet_for_symbol").
type FindSnippetFunc func(ctx context.Context, fsFilePath, name string) (Snippet, error)

// op is a unit of work run inside a symbol's own goroutine. Mutating a
// symbol's state exclusively through ops run single-threaded inside the
// actor is what makes the Thinking value safe to read/write without locks:
// cyclic symbol graphs are expressed as ops enqueued on other actors from
// within an op, never as shared pointers (spec.md §9 "Cyclic symbol
// graphs").
type op func(ctx context.Context, st *actorState) (any, error)

type actorState struct {
	thinking      Thinking
	findSnippet   FindSnippetFunc
	snippetLoaded bool
}

type envelope struct {
	ctx   context.Context
	run   op
	reply chan actorResult
}

type actorResult struct {
	value any
	err   error
}

// runActor is the per-symbol event loop: one goroutine processes envelopes
// strictly in the order they were sent, so no two ops for the same symbol
// ever run concurrently. st is owned exclusively by this goroutine for its
// entire lifetime.
func runActor(inbox <-chan envelope, st *actorState) {
	for env := range inbox {
		value, err := env.run(env.ctx, st)
		select {
		case env.reply <- actorResult{value: value, err: err}:
		case <-env.ctx.Done():
			// Caller gave up; the reply channel is buffered so this send
			// would not have blocked regardless, but skip it to avoid
			// writing to a channel nobody will read.
		}
	}
}
