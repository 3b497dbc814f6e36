// Package llmbroker implements the multi-provider streaming LLM broker
// described in spec.md §4.A: a single entry point that normalizes chat and
// prompt completions from heterogeneous providers, with backpressure,
// retries, and fail-over.
package llmbroker

import (
	"context"

	"github.com/symborch/core/internal/llmtypes"
)

// ProviderClient is the capability interface every provider integration
// implements. Capabilities are split so a provider that only supports chat
// (most of them) can still satisfy the interface: StreamPromptCompletion
// returns ErrUnsupportedOp for providers without raw-prompt support, per
// spec.md §4.A ("it must never silently fall back").
type ProviderClient interface {
	// Name identifies the provider for logging, metrics, and circuit-breaker
	// state keys.
	Name() string

	// SupportsPromptCompletion reports whether StreamPromptCompletion is
	// implemented for this client.
	SupportsPromptCompletion() bool

	// StreamChatCompletion opens a streaming chat completion and pushes
	// CompletionResponseDelta values onto sink in arrival order until the
	// stream ends or the context is cancelled. Closing sink during the call
	// is not detected. It returns the final cumulative text that was
	// successfully pushed.
	StreamChatCompletion(ctx context.Context, keys llmtypes.LlmProviderApiKeys, req llmtypes.CompletionRequest, sink chan<- llmtypes.CompletionResponseDelta) (string, error)

	// StreamPromptCompletion is the raw-prompt analogue of
	// StreamChatCompletion. Implementations that don't support it return
	// llmtypes.ErrUnsupportedOp without touching sink.
	StreamPromptCompletion(ctx context.Context, keys llmtypes.LlmProviderApiKeys, req llmtypes.PromptCompletionRequest, sink chan<- llmtypes.CompletionResponseDelta) (string, error)
}
