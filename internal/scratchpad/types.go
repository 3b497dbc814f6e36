// Package scratchpad implements the environment loop of spec.md §4.H: a
// single background task that consumes a lazy sequence of EnvironmentEvents
// until Shutdown, folding the results of anchored-symbol edits into a
// running scratch-pad and emitting UI events the way
// internal/agent.EventEmitter does for the agentic loop it's grounded on.
package scratchpad

import (
	"github.com/symborch/core/internal/symbols"
)

// EventKind discriminates the EnvironmentEvent tagged variant.
type EventKind string

const (
	KindHumanAnchor   EventKind = "human_anchor"
	KindHumanFollowup EventKind = "human_followup"
	KindLsp           EventKind = "lsp"
	KindSymbol        EventKind = "symbol"
	KindShutdown      EventKind = "shutdown"
)

// EnvironmentEvent is the tagged variant the loop consumes (spec.md §4.H).
type EnvironmentEvent interface {
	Kind() EventKind
}

// HumanAnchorEvent carries a set of symbols the user anchored to, plus the
// instruction to apply to each, and the UI sink to report progress on.
type HumanAnchorEvent struct {
	Anchored    []symbols.Identifier
	Instruction string
	UISink      EventSink
}

func (HumanAnchorEvent) Kind() EventKind { return KindHumanAnchor }

// HumanFollowupEvent is a no-op in this core (spec.md §4.H).
type HumanFollowupEvent struct{}

func (HumanFollowupEvent) Kind() EventKind { return KindHumanFollowup }

// LspEvent is reserved; no-op in this core.
type LspEvent struct{ Signal string }

func (LspEvent) Kind() EventKind { return KindLsp }

// SymbolEvent is reserved; no-op in this core.
type SymbolEvent struct{ Identifier symbols.Identifier }

func (SymbolEvent) Kind() EventKind { return KindSymbol }

// ShutdownEvent terminates the loop.
type ShutdownEvent struct{}

func (ShutdownEvent) Kind() EventKind { return KindShutdown }

// Event is a UI-facing notification, mirroring internal/agent's AgentEvent
// shape but trimmed to what spec.md §4.H names.
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

// EditReply is what an anchored-symbol edit request resolves to.
type EditReply struct {
	Identifier symbols.Identifier
	Summary    string
	Err        error
}
