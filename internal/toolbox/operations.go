package toolbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/symborch/core/internal/symbols"
	"github.com/symborch/core/internal/tooldispatch"
)

// OpenFile opens a file through the dispatcher and emits a UI event
// (spec.md §4.C "open file").
func (tb *ToolBox) OpenFile(ctx context.Context, fsFilePath string) (tooldispatch.OpenFileOutput, error) {
	out, err := tb.dispatcher.Invoke(ctx, tooldispatch.OpenFileInput{FsFilePath: fsFilePath})
	if err != nil {
		return tooldispatch.OpenFileOutput{}, err
	}
	result := out.(tooldispatch.OpenFileOutput)
	emit(tb.sink, "file_opened", fsFilePath)
	return result, nil
}

// FindInFile returns the single Position hit for symbol within content.
func (tb *ToolBox) FindInFile(ctx context.Context, content, symbol string) (*symbols.Position, error) {
	out, err := tb.dispatcher.Invoke(ctx, tooldispatch.FindInFileInput{FileContent: content, Symbol: symbol})
	if err != nil {
		return nil, err
	}
	result := out.(tooldispatch.FindInFileOutput)
	if result.Position == nil {
		return nil, nil
	}
	pos := toSymbolsPosition(*result.Position)
	return &pos, nil
}

// GrabSymbolContentFromDefinition implements spec.md §4.C: open the file,
// ask the outline provider for its nodes, find the node named symbolName,
// and return its Snippet.
func (tb *ToolBox) GrabSymbolContentFromDefinition(ctx context.Context, fsFilePath, symbolName string) (symbols.Snippet, error) {
	file, err := tb.OpenFile(ctx, fsFilePath)
	if err != nil {
		return symbols.Snippet{}, err
	}
	if !file.Exists {
		return symbols.Snippet{}, fmt.Errorf("%w: %s", errAbsentFilePath, fsFilePath)
	}
	nodes, err := tb.outline.Outline(ctx, fsFilePath, file.Contents)
	if err != nil {
		return symbols.Snippet{}, err
	}
	for _, node := range nodes {
		if node.Name == symbolName {
			return symbols.Snippet{
				Name:       symbolName,
				Range:      node.Range,
				FsFilePath: fsFilePath,
				Content:    sliceByRange(file.Contents, node.Range),
			}, nil
		}
	}
	return symbols.Snippet{}, &symbols.NotFoundError{Name: symbolName}
}

// sliceByRange extracts the substring a Range covers using its byte
// offsets, which are required to be mutually consistent with line/column at
// construction time (spec.md "Core entities").
func sliceByRange(content string, r symbols.Range) string {
	if r.Start.ByteOffset < 0 || r.End.ByteOffset > len(content) || r.Start.ByteOffset > r.End.ByteOffset {
		return ""
	}
	return content[r.Start.ByteOffset:r.End.ByteOffset]
}

// ImportantSymbolsToThinking implements spec.md §4.C "important symbols ->
// MechaCodeSymbolThinking list": for each name, try to grab its outline
// node directly; on miss, fall back to a content search plus
// go-to-definition, then re-grab.
func (tb *ToolBox) ImportantSymbolsToThinking(ctx context.Context, fsFilePath string, names []string) ([]symbols.Thinking, error) {
	out := make([]symbols.Thinking, 0, len(names))
	for _, name := range names {
		snippet, err := tb.GrabSymbolContentFromDefinition(ctx, fsFilePath, name)
		if err != nil {
			snippet, err = tb.recoverSymbolViaSearch(ctx, fsFilePath, name)
			if err != nil {
				continue
			}
		}
		out = append(out, symbols.Thinking{
			Identifier: symbols.Identifier{Name: name, FsFilePath: snippet.FsFilePath},
			Snippet:    &snippet,
		})
	}
	return out, nil
}

func (tb *ToolBox) recoverSymbolViaSearch(ctx context.Context, fsFilePath, name string) (symbols.Snippet, error) {
	file, err := tb.OpenFile(ctx, fsFilePath)
	if err != nil {
		return symbols.Snippet{}, err
	}
	pos, err := tb.FindInFile(ctx, file.Contents, name)
	if err != nil {
		return symbols.Snippet{}, err
	}
	if pos == nil {
		return symbols.Snippet{}, &symbols.NotFoundError{Name: name}
	}
	defReq := tooldispatch.GoToDefinitionInput{}
	defReq.FsFilePath = fsFilePath
	defReq.Position = toDispatchPosition(*pos)
	defOut, err := tb.dispatcher.Invoke(ctx, defReq)
	if err != nil {
		return symbols.Snippet{}, err
	}
	defs := defOut.(tooldispatch.GoToDefinitionOutput).Definitions
	if len(defs) == 0 {
		return symbols.Snippet{}, &symbols.NotFoundError{Name: name}
	}
	return tb.GrabSymbolContentFromDefinition(ctx, defs[0].FsFilePath, name)
}

// GoToImplementation implements spec.md §4.C: open the file, find the
// symbol's position, then resolve its implementation(s).
func (tb *ToolBox) GoToImplementation(ctx context.Context, fsFilePath, symbolName string) ([]symbols.Snippet, error) {
	file, err := tb.OpenFile(ctx, fsFilePath)
	if err != nil {
		return nil, err
	}
	pos, err := tb.FindInFile(ctx, file.Contents, symbolName)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, &symbols.NotFoundError{Name: symbolName}
	}
	implReq := tooldispatch.GoToImplementationInput{}
	implReq.FsFilePath = fsFilePath
	implReq.Position = toDispatchPosition(*pos)
	out, err := tb.dispatcher.Invoke(ctx, implReq)
	if err != nil {
		return nil, err
	}
	impls := out.(tooldispatch.GoToImplementationOutput).Implementations
	snippets := make([]symbols.Snippet, 0, len(impls))
	for _, loc := range impls {
		implFile, err := tb.OpenFile(ctx, loc.FsFilePath)
		if err != nil {
			continue
		}
		snippets = append(snippets, symbols.Snippet{
			Name:       symbolName,
			Range:      toSymbolsRange(loc.Range),
			FsFilePath: loc.FsFilePath,
			Content:    sliceByRange(implFile.Contents, toSymbolsRange(loc.Range)),
		})
	}
	return snippets, nil
}

// OutlineForUserContext implements spec.md §4.C: build a consolidated
// outline from a set of user-provided files.
func (tb *ToolBox) OutlineForUserContext(ctx context.Context, fsFilePaths []string) (string, error) {
	var b strings.Builder
	for _, path := range fsFilePaths {
		file, err := tb.OpenFile(ctx, path)
		if err != nil {
			return "", err
		}
		nodes, err := tb.outline.Outline(ctx, path, file.Contents)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s:\n", path)
		for _, n := range nodes {
			fmt.Fprintf(&b, "  %s\n", n.Name)
		}
	}
	return b.String(), nil
}

// RecentlyEditedFiles implements spec.md §4.C: run a git-diff over each file
// path and return one "path:\ndiff" string per file whose diff is non-empty.
// Files whose diff fails are skipped.
func (tb *ToolBox) RecentlyEditedFiles(ctx context.Context, fsFilePaths []string) ([]string, error) {
	var diffs []string
	for _, path := range fsFilePaths {
		diff, err := tb.diff.Diff(ctx, path)
		if err != nil {
			continue
		}
		if diff != "" {
			diffs = append(diffs, fmt.Sprintf("%s:\n%s", path, diff))
		}
	}
	return diffs, nil
}

// DiagnosticMap groups diagnostics by the file path they belong to.
type DiagnosticMap map[string][]tooldispatch.Diagnostic

// DiagnosticsFor implements spec.md §4.C "file diagnostics": aggregate
// diagnostics across files into a DiagnosticMap.
func (tb *ToolBox) DiagnosticsFor(ctx context.Context, fsFilePaths []string) (DiagnosticMap, error) {
	out, err := tb.dispatcher.Invoke(ctx, tooldispatch.LSPDiagnosticsInput{FsFilePaths: fsFilePaths})
	if err != nil {
		return nil, err
	}
	grouped := make(DiagnosticMap)
	for _, diag := range out.(tooldispatch.LSPDiagnosticsOutput).Diagnostics {
		grouped[diag.FsFilePath] = append(grouped[diag.FsFilePath], diag)
	}
	return grouped, nil
}
