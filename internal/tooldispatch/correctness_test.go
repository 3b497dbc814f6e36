package tooldispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRepoMapSearch(t *testing.T) {
	resp := "thinking... <reply><thinking>auth lives here</thinking>" +
		"<important_files><file>auth.go</file><file>session.go</file></important_files></reply>"
	out, err := parseRepoMapSearch(resp)
	require.NoError(t, err)
	require.Equal(t, "auth lives here", out.Thinking)
	require.Equal(t, []string{"auth.go", "session.go"}, out.ImportantFiles)
}

func TestParseRepoMapSearchMissingReply(t *testing.T) {
	_, err := parseRepoMapSearch("no structured block here")
	require.Error(t, err)
}

func TestParseCodeCorrectnessAction(t *testing.T) {
	resp := "<reply><thinking>fix 1 matches</thinking><index>1</index></reply>"
	out, err := parseCodeCorrectnessAction(resp)
	require.NoError(t, err)
	require.Equal(t, "fix 1 matches", out.Thinking)
	require.Equal(t, 1, out.Index)
}

func TestParseCodeCorrectnessActionNoFix(t *testing.T) {
	resp := "<reply><thinking>none apply</thinking><index>-1</index></reply>"
	out, err := parseCodeCorrectnessAction(resp)
	require.NoError(t, err)
	require.Equal(t, noFixIndex, out.Index)
}

func TestParseCodeCorrectnessActionUnparseableIndexFallsBackToNoFix(t *testing.T) {
	resp := "<reply><thinking>unsure</thinking><index>none</index></reply>"
	out, err := parseCodeCorrectnessAction(resp)
	require.NoError(t, err)
	require.Equal(t, noFixIndex, out.Index)
}
