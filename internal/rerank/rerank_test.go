package rerank

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type fixedTokenizer struct{ perSpan int }

func (f fixedTokenizer) Count(text string) int { return f.perSpan }

type stubCaller struct {
	calls   int32
	respond func(callNum int32, system, user string) (string, error)
}

func (s *stubCaller) Complete(ctx context.Context, system, user string) (string, error) {
	n := atomic.AddInt32(&s.calls, 1)
	return s.respond(n, system, user)
}

func makeSpans(n int) []Span {
	spans := make([]Span, n)
	for i := range spans {
		spans[i] = Span{Hash: fmt.Sprintf("h%d", i), FsFilePath: fmt.Sprintf("f%d.go", i), Content: "code"}
	}
	return spans
}

func TestListwiseDegenerateFitsBudget(t *testing.T) {
	spans := makeSpans(5)
	caller := &stubCaller{respond: func(int32, string, string) (string, error) {
		t.Fatal("no LLM call expected when under budget")
		return "", nil
	}}
	out, calls, err := Listwise(context.Background(), "q", spans, fixedTokenizer{perSpan: 100}, 1000, 5, caller)
	require.NoError(t, err)
	require.Equal(t, 0, calls)
	require.Equal(t, spans, out)
}

func TestListwiseActiveCallCountAndPermutation(t *testing.T) {
	spans := makeSpans(25)
	caller := &stubCaller{respond: func(n int32, system, user string) (string, error) {
		// Echo the hashes seen in this window back unchanged.
		var hashes []string
		for _, line := range strings.Split(user, "\n") {
			if strings.HasPrefix(line, "h") && strings.HasSuffix(line, ":") {
				hashes = append(hashes, strings.TrimSuffix(line, ":"))
			}
		}
		return strings.Join(hashes, "\n"), nil
	}}
	out, calls, err := Listwise(context.Background(), "q", spans, fixedTokenizer{perSpan: 1000}, 4000, 5, caller)
	require.NoError(t, err)
	require.Equal(t, 4, calls)
	require.Len(t, out, 5)

	seen := make(map[string]bool)
	for _, s := range spans {
		seen[s.Hash] = true
	}
	for _, s := range out {
		require.True(t, seen[s.Hash])
	}
}

func TestPointwiseKeepsOnlyYesInInputOrder(t *testing.T) {
	spans := makeSpans(4)
	caller := &stubCaller{respond: func(n int32, system, user string) (string, error) {
		if strings.Contains(user, "h1") || strings.Contains(user, "h3") {
			return "yes", nil
		}
		return "no", nil
	}}
	out, err := Pointwise(context.Background(), "q", spans, 0, caller)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "h1", out[0].Hash)
	require.Equal(t, "h3", out[1].Hash)
}

func TestFilterForEditingRetriesOnParseFailure(t *testing.T) {
	spans := makeSpans(2)
	caller := &stubCaller{respond: func(n int32, system, user string) (string, error) {
		if n < 3 {
			return "not xml at all", nil
		}
		return `<decision><edit hash="h0"><reason>touches the symbol</reason></edit><skip hash="h1"><reason>unrelated</reason></skip></decision>`, nil
	}}
	decisions, err := FilterForEditing(context.Background(), "q", spans, caller)
	require.NoError(t, err)
	require.EqualValues(t, 3, caller.calls)
	require.Len(t, decisions, 2)
}

func TestFilterForEditingGivesUpAfterMaxAttempts(t *testing.T) {
	spans := makeSpans(1)
	caller := &stubCaller{respond: func(n int32, system, user string) (string, error) {
		return "never valid", nil
	}}
	_, err := FilterForEditing(context.Background(), "q", spans, caller)
	require.Error(t, err)
	require.EqualValues(t, filterMaxAttempts, caller.calls)
}
