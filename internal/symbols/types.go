// Package symbols implements the per-symbol actor model: one goroutine and
// inbound channel per SymbolIdentifier, owned by a SymbolLocker that holds
// only the identifier-to-sender map, never the symbols themselves.
package symbols

import "fmt"

// Identifier is (name, optional fs_file_path). Equality is structural; two
// identifiers with the same name but different paths are different symbols.
// An identifier with no path is searchable but not yet placed.
type Identifier struct {
	Name       string
	FsFilePath string // empty means "not yet placed"
}

func (id Identifier) String() string {
	if id.FsFilePath == "" {
		return id.Name
	}
	return fmt.Sprintf("%s@%s", id.Name, id.FsFilePath)
}

// Placed reports whether this identifier has a known file path.
func (id Identifier) Placed() bool { return id.FsFilePath != "" }

// Position mirrors editorrpc.Position to keep this package's public API
// self-contained.
type Position struct {
	Line       int
	Column     int
	ByteOffset int
}

// Range is required to be mutually consistent (lines, columns, byte
// offsets) at construction time (spec.md "Core entities").
type Range struct {
	Start Position
	End   Position
}

// Snippet is a located piece of source content.
type Snippet struct {
	Name       string
	Range      Range
	FsFilePath string
	Content    string
}

// PendingStep is one unit of work queued against a symbol.
type PendingStep struct {
	Description string
}

// Thinking is a symbol being reasoned about: its identifier, the ordered
// steps still pending against it, whether it's newly created, an optional
// located snippet, and free-form user context.
type Thinking struct {
	Identifier   Identifier
	PendingSteps []PendingStep
	IsNew        bool
	Snippet      *Snippet
	UserContext  string
}
