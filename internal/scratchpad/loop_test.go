package scratchpad

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/symborch/core/internal/symbols"
)

type fakeRequester struct {
	calls int32
	fail  map[string]bool
}

func (f *fakeRequester) RequestEdit(ctx context.Context, req SymbolEditRequest) (EditReply, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fail[req.Identifier.Name] {
		return EditReply{}, ErrRequestFailed
	}
	return EditReply{Identifier: req.Identifier, Summary: "edited " + req.Identifier.Name}, nil
}

func TestHandleAnchorDispatchesAllAndEmitsFinished(t *testing.T) {
	requester := &fakeRequester{}
	loop := New(requester, nil)

	var events []Event
	sink := func(e Event) { events = append(events, e) }

	anchored := []symbols.Identifier{
		{Name: "Foo", FsFilePath: "a.go"},
		{Name: "Bar", FsFilePath: "b.go"},
	}
	loop.handleAnchor(context.Background(), HumanAnchorEvent{
		Anchored:    anchored,
		Instruction: "rename to baz",
		UISink:      sink,
	})

	require.EqualValues(t, 2, requester.calls)
	require.Len(t, events, 1)
	require.Equal(t, "code_iteration_finished", events[0].Kind)
	require.Contains(t, events[0].Message, "edited Foo")
	require.Contains(t, events[0].Message, "edited Bar")
}

func TestHandleAnchorRecordsFailuresWithoutAbortingSiblings(t *testing.T) {
	requester := &fakeRequester{fail: map[string]bool{"Bad": true}}
	loop := New(requester, nil)

	anchored := []symbols.Identifier{
		{Name: "Good", FsFilePath: "a.go"},
		{Name: "Bad", FsFilePath: "b.go"},
	}
	loop.handleAnchor(context.Background(), HumanAnchorEvent{Anchored: anchored, Instruction: "x"})

	require.EqualValues(t, 2, requester.calls)
	snapshot := loop.snapshot()
	require.Contains(t, snapshot, "edited Good")
	require.Contains(t, snapshot, "edit failed")
}

func TestRunStopsOnShutdownEvent(t *testing.T) {
	loop := New(&fakeRequester{}, nil)
	events := make(chan EnvironmentEvent, 2)
	events <- HumanFollowupEvent{}
	events <- ShutdownEvent{}

	done := make(chan struct{})
	go func() {
		loop.Run(context.Background(), events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after ShutdownEvent")
	}
}

func TestRunStopsWhenChannelCloses(t *testing.T) {
	loop := New(&fakeRequester{}, nil)
	events := make(chan EnvironmentEvent)
	close(events)

	done := make(chan struct{})
	go func() {
		loop.Run(context.Background(), events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after channel close")
	}
}
