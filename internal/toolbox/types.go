// Package toolbox implements higher-level, composed operations on top of
// internal/tooldispatch (spec.md §4.C): open-file-with-event, symbol
// extraction from definitions, outline building, recently-edited-files
// folding, and diagnostics aggregation. Every operation here is async and
// never holds a lock across an await; the state ToolBox carries is limited
// to process-lifetime immutable handles (the dispatcher and editor
// client).
package toolbox

import (
	"context"

	"github.com/symborch/core/internal/symbols"
	"github.com/symborch/core/internal/tooldispatch"
)

// Event is a UI-facing notification emitted by a composed operation.
type Event struct {
	Kind    string
	Message string
}

// EventSink receives Events. A nil sink silently drops events.
type EventSink func(Event)

func emit(sink EventSink, kind, message string) {
	if sink == nil {
		return
	}
	sink(Event{Kind: kind, Message: message})
}

// OutlineNode is one named, ranged region the editor's outline view
// reports for a file (spec.md §4.C "grab symbol content from definition").
type OutlineNode struct {
	Name  string
	Range symbols.Range
}

// OutlineProvider resolves the outline nodes of a file's content. It is a
// narrow seam so ToolBox doesn't hardcode a specific outline/LSP backend.
type OutlineProvider interface {
	Outline(ctx context.Context, fsFilePath, contents string) ([]OutlineNode, error)
}

// DiffProvider resolves the textual diff of a file against its last
// committed revision, used by RecentlyEditedFiles.
type DiffProvider interface {
	Diff(ctx context.Context, fsFilePath string) (string, error)
}

// ToolBox composes tooldispatch invocations into the higher-level
// operations of spec.md §4.C.
type ToolBox struct {
	dispatcher *tooldispatch.Dispatcher
	outline    OutlineProvider
	diff       DiffProvider
	sink       EventSink
}

// New constructs a ToolBox over an already-wired Dispatcher.
func New(dispatcher *tooldispatch.Dispatcher, outline OutlineProvider, diff DiffProvider, sink EventSink) *ToolBox {
	return &ToolBox{dispatcher: dispatcher, outline: outline, diff: diff, sink: sink}
}

func toSymbolsPosition(p tooldispatch.Position) symbols.Position {
	return symbols.Position{Line: p.Line, Column: p.Character, ByteOffset: p.ByteOffset}
}

func toDispatchPosition(p symbols.Position) tooldispatch.Position {
	return tooldispatch.Position{Line: p.Line, Character: p.Column, ByteOffset: p.ByteOffset}
}

func toSymbolsRange(r tooldispatch.Range) symbols.Range {
	return symbols.Range{
		Start: toSymbolsPosition(r.Start),
		End:   toSymbolsPosition(r.End),
	}
}
