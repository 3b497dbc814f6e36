package toolbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffStatFromTextIgnoresFileHeaders(t *testing.T) {
	diff := "--- a/main.go\n+++ b/main.go\n@@ -1,2 +1,3 @@\n func Foo() {}\n+func Bar() {}\n-func Old() {}\n"
	ins, del := diffStatFromText(diff)
	require.Equal(t, 1, ins)
	require.Equal(t, 1, del)
}

func TestDiffStatisticsSkipsEmptyAndErroredDiffs(t *testing.T) {
	tb := newTestToolBox(t)
	stats, err := tb.DiffStatistics(context.Background(), []string{"main.go", "missing.go"})
	require.NoError(t, err)
	require.Len(t, stats, 1)
	require.Equal(t, "main.go", stats[0].FsFilePath)
	require.Equal(t, 1, stats[0].LineInsertions)
}
