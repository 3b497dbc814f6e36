package toolbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symborch/core/internal/symbols"
	"github.com/symborch/core/internal/tooldispatch"
)

type fakeOutline struct {
	nodes map[string][]OutlineNode
}

func (f *fakeOutline) Outline(ctx context.Context, fsFilePath, contents string) ([]OutlineNode, error) {
	return f.nodes[fsFilePath], nil
}

type fakeDiff struct {
	diffs map[string]string
}

func (f *fakeDiff) Diff(ctx context.Context, fsFilePath string) (string, error) {
	return f.diffs[fsFilePath], nil
}

const fileBody = "func Foo() {}\nfunc Bar() {}\n"

func newTestToolBox(t *testing.T) *ToolBox {
	t.Helper()
	handlers := map[tooldispatch.ToolType]tooldispatch.Handler{
		tooldispatch.OpenFile: func(ctx context.Context, in tooldispatch.ToolInput) (tooldispatch.ToolOutput, error) {
			req := in.(tooldispatch.OpenFileInput)
			if req.FsFilePath != "main.go" {
				return tooldispatch.OpenFileOutput{FsFilePath: req.FsFilePath, Exists: false}, nil
			}
			return tooldispatch.OpenFileOutput{FsFilePath: req.FsFilePath, Contents: fileBody, Exists: true, Language: "go"}, nil
		},
		tooldispatch.FindInFile: func(ctx context.Context, in tooldispatch.ToolInput) (tooldispatch.ToolOutput, error) {
			req := in.(tooldispatch.FindInFileInput)
			if req.Symbol == "Bar" {
				pos := tooldispatch.Position{Line: 1, Character: 5, ByteOffset: 20}
				return tooldispatch.FindInFileOutput{Position: &pos}, nil
			}
			return tooldispatch.FindInFileOutput{}, nil
		},
		tooldispatch.GoToDefinition: func(ctx context.Context, in tooldispatch.ToolInput) (tooldispatch.ToolOutput, error) {
			return tooldispatch.GoToDefinitionOutput{Definitions: []tooldispatch.Location{{FsFilePath: "main.go"}}}, nil
		},
		tooldispatch.GoToImplementation: func(ctx context.Context, in tooldispatch.ToolInput) (tooldispatch.ToolOutput, error) {
			return tooldispatch.GoToImplementationOutput{Implementations: []tooldispatch.Location{
				{FsFilePath: "main.go", Range: tooldispatch.Range{
					Start: tooldispatch.Position{ByteOffset: 0},
					End:   tooldispatch.Position{ByteOffset: 13},
				}},
			}}, nil
		},
		tooldispatch.LSPDiagnostics: func(ctx context.Context, in tooldispatch.ToolInput) (tooldispatch.ToolOutput, error) {
			return tooldispatch.LSPDiagnosticsOutput{Diagnostics: []tooldispatch.Diagnostic{
				{FsFilePath: "main.go", Message: "unused variable"},
			}}, nil
		},
	}
	dispatcher := tooldispatch.NewForTesting(handlers)
	outline := &fakeOutline{nodes: map[string][]OutlineNode{
		"main.go": {
			{Name: "Foo", Range: symbols.Range{Start: symbols.Position{ByteOffset: 0}, End: symbols.Position{ByteOffset: 14}}},
			{Name: "Bar", Range: symbols.Range{Start: symbols.Position{ByteOffset: 14}, End: symbols.Position{ByteOffset: 27}}},
		},
	}}
	diff := &fakeDiff{diffs: map[string]string{"main.go": "+func Bar() {}"}}
	return New(dispatcher, outline, diff, nil)
}

func TestOpenFileEmitsEvent(t *testing.T) {
	tb := newTestToolBox(t)
	var events []Event
	tb.sink = func(e Event) { events = append(events, e) }

	out, err := tb.OpenFile(context.Background(), "main.go")
	require.NoError(t, err)
	require.True(t, out.Exists)
	require.Len(t, events, 1)
	require.Equal(t, "file_opened", events[0].Kind)
}

func TestGrabSymbolContentFromDefinition(t *testing.T) {
	tb := newTestToolBox(t)
	snippet, err := tb.GrabSymbolContentFromDefinition(context.Background(), "main.go", "Bar")
	require.NoError(t, err)
	require.Equal(t, "func Bar() {}", snippet.Content)
}

func TestGrabSymbolContentFromDefinitionMissingFile(t *testing.T) {
	tb := newTestToolBox(t)
	_, err := tb.GrabSymbolContentFromDefinition(context.Background(), "absent.go", "Bar")
	require.Error(t, err)
}

func TestImportantSymbolsToThinkingSkipsSymbolsSearchCannotRecover(t *testing.T) {
	tb := newTestToolBox(t)
	thinking, err := tb.ImportantSymbolsToThinking(context.Background(), "main.go", []string{"Foo", "Missing"})
	require.NoError(t, err)
	require.Len(t, thinking, 1)
	require.Equal(t, "Foo", thinking[0].Identifier.Name)
}

func TestGoToImplementation(t *testing.T) {
	tb := newTestToolBox(t)
	snippets, err := tb.GoToImplementation(context.Background(), "main.go", "Bar")
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	require.Equal(t, "func Foo() {}", snippets[0].Content)
}

func TestRecentlyEditedFiles(t *testing.T) {
	tb := newTestToolBox(t)
	diffs, err := tb.RecentlyEditedFiles(context.Background(), []string{"main.go", "other.go"})
	require.NoError(t, err)
	require.Len(t, diffs, 1)
}

func TestDiagnosticsFor(t *testing.T) {
	tb := newTestToolBox(t)
	grouped, err := tb.DiagnosticsFor(context.Background(), []string{"main.go"})
	require.NoError(t, err)
	require.Len(t, grouped["main.go"], 1)
}

func TestPlanToolBoxAdapter(t *testing.T) {
	tb := newTestToolBox(t)
	adapter := AsPlanToolBox(tb)

	contents, err := adapter.OpenFile(context.Background(), "main.go")
	require.NoError(t, err)
	require.Equal(t, fileBody, contents)

	diag, err := adapter.DiagnosticsFor(context.Background(), []string{"main.go"})
	require.NoError(t, err)
	require.Contains(t, diag, "unused variable")
}
