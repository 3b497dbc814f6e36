package symbols

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLockerSingleActorUnderConcurrency exercises spec.md §8's invariant:
// for all interleavings of requests against one Identifier, the Locker
// spawns at most one actor and find_snippet_for_symbol is called exactly
// once.
func TestLockerSingleActorUnderConcurrency(t *testing.T) {
	var calls int32
	findSnippet := func(ctx context.Context, fsFilePath, name string) (Snippet, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(2 * time.Millisecond)
		return Snippet{Name: name, FsFilePath: fsFilePath, Content: "package main"}, nil
	}
	locker := NewLocker(findSnippet)
	defer locker.Shutdown()

	id := Identifier{Name: "Foo", FsFilePath: "/a/b.go"}

	var wg sync.WaitGroup
	results := make([]Snippet, 100)
	errs := make([]error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snippet, err := locker.EnsureSnippet(context.Background(), id)
			results[i] = snippet
			errs[i] = err
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
	require.Equal(t, 1, locker.ActorCount())
	for i := range results {
		require.NoError(t, errs[i])
		require.Equal(t, "Foo", results[i].Name)
	}
}

func TestLockerDistinctPathsAreDistinctSymbols(t *testing.T) {
	locker := NewLocker(func(ctx context.Context, fsFilePath, name string) (Snippet, error) {
		return Snippet{Name: name, FsFilePath: fsFilePath}, nil
	})
	defer locker.Shutdown()

	a := Identifier{Name: "Foo", FsFilePath: "/a.go"}
	b := Identifier{Name: "Foo", FsFilePath: "/b.go"}

	_, err := locker.EnsureSnippet(context.Background(), a)
	require.NoError(t, err)
	_, err = locker.EnsureSnippet(context.Background(), b)
	require.NoError(t, err)

	require.Equal(t, 2, locker.ActorCount())
}

func TestLockerAppendAndPopStepOrder(t *testing.T) {
	locker := NewLocker(func(ctx context.Context, fsFilePath, name string) (Snippet, error) {
		return Snippet{}, nil
	})
	defer locker.Shutdown()

	id := Identifier{Name: "Bar"}
	ctx := context.Background()
	require.NoError(t, locker.AppendStep(ctx, id, PendingStep{Description: "first"}))
	require.NoError(t, locker.AppendStep(ctx, id, PendingStep{Description: "second"}))

	step, ok, err := locker.PopStep(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "first", step.Description)

	step, ok, err = locker.PopStep(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", step.Description)

	_, ok, err = locker.PopStep(ctx, id)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLockerSendRespectsCancellation(t *testing.T) {
	locker := NewLocker(func(ctx context.Context, fsFilePath, name string) (Snippet, error) {
		return Snippet{}, nil
	})
	defer locker.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := locker.Snapshot(ctx, Identifier{Name: "Baz"})
	require.ErrorIs(t, err, ErrCancelled)
}
