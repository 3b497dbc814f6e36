package scratchpad

import (
	"context"

	"github.com/symborch/core/internal/symbols"
)

// EditRequester dispatches a single anchored-symbol edit request through the
// hub sender described in spec.md §4.H, returning once that symbol's actor
// has replied.
type EditRequester interface {
	RequestEdit(ctx context.Context, req SymbolEditRequest) (EditReply, error)
}

// SymbolEditRequest is the per-symbol edit request the loop builds for each
// anchored symbol (spec.md §4.H "build per-symbol edit requests").
type SymbolEditRequest struct {
	Identifier  symbols.Identifier
	Instruction string
}
