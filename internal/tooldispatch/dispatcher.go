package tooldispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// MetricsRecorder receives per-invocation dispatcher observability events.
// internal/observability.Metrics satisfies this interface structurally, so
// this package never imports it.
type MetricsRecorder interface {
	RecordToolInvocation(toolType string, outcome string, durationSeconds float64)
}

type noopMetrics struct{}

func (noopMetrics) RecordToolInvocation(string, string, float64) {}

// Handler executes one ToolType. The returned ToolOutput's ToolType() must
// equal the input's.
type Handler func(ctx context.Context, input ToolInput) (ToolOutput, error)

// Descriptor is a tool's self-description, used for agent-facing catalogues
// and JSON schema validation of raw tool-call arguments.
type Descriptor struct {
	Description string
	InputFormat string
}

// Dispatcher is the total function over ToolType described in spec.md §4.B.
// Construction is the only place totality is enforced: NewDispatcher panics
// if any ToolType in AllToolTypes lacks a registered handler, turning a
// missing registration into a programmer error caught at startup rather
// than at first invocation.
type Dispatcher struct {
	handlers    map[ToolType]Handler
	descriptors map[ToolType]Descriptor
	logger      *slog.Logger
	metrics     MetricsRecorder
	schemas     map[ToolType]*jsonschema.Schema
}

// SetMetrics installs a MetricsRecorder for subsequent Invoke calls.
func (d *Dispatcher) SetMetrics(m MetricsRecorder) {
	if m != nil {
		d.metrics = m
	}
}

// newDispatcher builds an empty dispatcher; callers in this package use it
// via NewDispatcher (wiring.go), which registers every tool type.
func newDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		handlers:    make(map[ToolType]Handler),
		descriptors: make(map[ToolType]Descriptor),
		logger:      logger,
		metrics:     noopMetrics{},
		schemas:     compileAgentFacingSchemas(),
	}
}

func (d *Dispatcher) register(t ToolType, desc Descriptor, h Handler) {
	d.handlers[t] = h
	d.descriptors[t] = desc
}

// NewForTesting builds a Dispatcher from a fixed handler set without
// enforcing totality, for unit tests of packages composed on top of
// Dispatcher (e.g. internal/toolbox) that only exercise a handful of tool
// types. Production wiring must go through NewDispatcher instead.
func NewForTesting(handlers map[ToolType]Handler) *Dispatcher {
	d := newDispatcher(nil)
	for t, h := range handlers {
		d.register(t, Descriptor{}, h)
	}
	return d
}

// assertTotal panics if any ToolType declared in AllToolTypes has no
// handler. Called once at the end of construction.
func (d *Dispatcher) assertTotal() {
	for _, t := range AllToolTypes() {
		if _, ok := d.handlers[t]; !ok {
			panic(fmt.Sprintf("tooldispatch: ToolType %q has no registered handler", t))
		}
	}
}

// Invoke dispatches input to its handler. A ToolType absent from the
// dispatcher's handler map indicates the registration invariant was
// bypassed (e.g. a hand-built Dispatcher skipping assertTotal); this is a
// programmer error and panics rather than returning a result, matching
// spec.md §9 "Exceptions vs results".
func (d *Dispatcher) Invoke(ctx context.Context, input ToolInput) (ToolOutput, error) {
	t := input.ToolType()
	handler, ok := d.handlers[t]
	if !ok {
		panic(fmt.Sprintf("tooldispatch: no handler registered for ToolType %q", t))
	}
	start := time.Now()
	out, err := handler(ctx, input)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	d.metrics.RecordToolInvocation(string(t), outcome, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if out != nil && out.ToolType() != t {
		return nil, fmt.Errorf("%w: handler for %q returned %q", ErrWrongToolOutput, t, out.ToolType())
	}
	return out, nil
}

// Describe returns a tool's self-description for agent-facing catalogues.
func (d *Dispatcher) Describe(t ToolType) (Descriptor, bool) {
	desc, ok := d.descriptors[t]
	return desc, ok
}

// Catalogue returns every registered tool's self-description, used to build
// an agent's tool-use system prompt.
func (d *Dispatcher) Catalogue() map[ToolType]Descriptor {
	out := make(map[ToolType]Descriptor, len(d.descriptors))
	for t, desc := range d.descriptors {
		out[t] = desc
	}
	return out
}
