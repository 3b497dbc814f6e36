package search

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeFileIndex struct {
	hits map[string][]Hit
}

func (f *fakeFileIndex) LookupFile(ctx context.Context, query string) ([]Hit, error) {
	return f.hits[query], nil
}

type fakeKeywordIndex struct {
	hits map[string][]Hit
}

func (f *fakeKeywordIndex) LookupKeyword(ctx context.Context, query string) ([]Hit, error) {
	return f.hits[query], nil
}

type scriptedCaller struct {
	calls     int32
	responses []string
}

func (s *scriptedCaller) Complete(ctx context.Context, system, user string) (string, error) {
	n := atomic.AddInt32(&s.calls, 1)
	if int(n) > len(s.responses) {
		return s.responses[len(s.responses)-1], nil
	}
	return s.responses[n-1], nil
}

func TestLoopStopsWhenDecideSaysStop(t *testing.T) {
	files := &fakeFileIndex{hits: map[string][]Hit{
		"auth": {{FsFilePath: "auth.go", Snippet: "func Login() {}"}},
	}}
	caller := &scriptedCaller{responses: []string{
		`<searches><search tool="file" query="auth"><thinking>look for auth</thinking></search></searches>`,
		`<identify><keep path="auth.go"><reason>relevant</reason></keep></identify>`,
		`STOP, this is enough context`,
	}}
	loop := New(files, &fakeKeywordIndex{}, caller)

	outcome, err := loop.Run(context.Background(), "how does login work")
	require.NoError(t, err)
	require.Equal(t, 1, outcome.Iterations)
	require.Len(t, outcome.Thinking, 1)
	require.Equal(t, "auth.go", outcome.Thinking[0].Identifier.FsFilePath)
	require.Len(t, outcome.Steps, 1)
	require.EqualValues(t, 3, caller.calls)
}

func TestLoopCapsAtThreeIterations(t *testing.T) {
	files := &fakeFileIndex{hits: map[string][]Hit{
		"x": {{FsFilePath: "x.go", Snippet: "snippet"}},
	}}
	search := `<searches><search tool="file" query="x"><thinking>t</thinking></search></searches>`
	identify := `<identify><keep path="x.go"><reason>r</reason></keep></identify>`
	caller := &scriptedCaller{responses: []string{
		search, identify, "CONTINUE",
		search, identify, "CONTINUE",
		search, identify, "CONTINUE",
	}}
	loop := New(files, &fakeKeywordIndex{}, caller)

	outcome, err := loop.Run(context.Background(), "query")
	require.NoError(t, err)
	require.Equal(t, 3, outcome.Iterations)
	// 3 iterations * (search+identify) calls plus a decide call after each of
	// the first two; no final decide call since the loop breaks before asking
	// to decide on the last iteration.
	require.EqualValues(t, 8, caller.calls)
}

func TestLoopStopsEarlyWhenSearchStepYieldsNothing(t *testing.T) {
	caller := &scriptedCaller{responses: []string{"no searches here"}}
	loop := New(&fakeFileIndex{}, &fakeKeywordIndex{}, caller)

	outcome, err := loop.Run(context.Background(), "query")
	require.NoError(t, err)
	require.Empty(t, outcome.Thinking)
	require.EqualValues(t, 1, caller.calls)
}

func TestParseSearchRequestsIgnoresUnknownTool(t *testing.T) {
	resp := `<searches><search tool="bogus" query="x"><thinking>t</thinking></search></searches>`
	_, err := parseSearchRequests(resp)
	require.Error(t, err)
}

func TestShouldContinue(t *testing.T) {
	require.False(t, shouldContinue("We should STOP here"))
	require.True(t, shouldContinue(strings.ToUpper("continue searching")))
}
