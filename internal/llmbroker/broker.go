package llmbroker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/symborch/core/internal/llmtypes"
	"golang.org/x/time/rate"
)

// Metadata carries call-site context threaded through a completion for
// logging, tracing, and the retry-vs-stream-live decision. The broker writes
// RequestID and ToolName into log lines, labels attempt metrics with
// ToolName, and uses Retryable to choose the retry path.
type Metadata struct {
	RequestID string
	ToolName  string
	// Retryable opts the call into the N=4 attempt alternating fail-over
	// policy described in spec.md §4.A. Leave false for tools that forward
	// deltas live, since a retry restarts the stream and discards prior
	// deltas (spec.md §9 "Streaming with retries").
	Retryable bool
}

// MetricsRecorder receives broker-level observability events. Implementations
// must be safe for concurrent use from multiple in-flight completions.
// internal/observability.Metrics satisfies this interface structurally, so
// this package never imports it.
type MetricsRecorder interface {
	RecordLLMAttempt(provider, toolName, outcome string)
	RecordLLMFailover(fromProvider, toProvider string)
}

type noopMetrics struct{}

func (noopMetrics) RecordLLMAttempt(string, string, string) {}
func (noopMetrics) RecordLLMFailover(string, string)        {}

// Broker is the provider-agnostic entry point for streaming completions. It
// is created once and shared immutably across the process; per-provider
// clients inside it are stateless after construction (spec.md §3
// "Lifecycles & ownership").
type Broker struct {
	mu        sync.RWMutex
	providers map[llmtypes.LlmProvider]ProviderClient
	limiters  map[llmtypes.LlmProvider]*rate.Limiter
	failover  llmtypes.LlmProperties
	haveFO    bool
	logger    *slog.Logger
	metrics   MetricsRecorder
}

// Option configures a Broker at construction time.
type Option func(*Broker)

// WithFailover sets the fail-over LlmProperties used on odd retries by
// retryable calls (spec.md §4.A).
func WithFailover(props llmtypes.LlmProperties) Option {
	return func(b *Broker) {
		b.failover = props
		b.haveFO = true
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Broker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRateLimit installs a token-bucket limiter (requests per second, burst)
// in front of a provider, guarding against retry storms hammering a
// provider whose circuit is already degraded (SPEC_FULL.md "rate limiting").
func WithRateLimit(provider llmtypes.LlmProvider, ratePerSecond float64, burst int) Option {
	return func(b *Broker) {
		b.limiters[provider] = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
}

// WithMetrics installs a MetricsRecorder; attempts, outcomes, and failovers
// are recorded against it. Unset leaves metrics as a no-op.
func WithMetrics(m MetricsRecorder) Option {
	return func(b *Broker) {
		if m != nil {
			b.metrics = m
		}
	}
}

// NewBroker constructs a Broker with no registered providers. Register each
// provider with RegisterProvider before use.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		providers: make(map[llmtypes.LlmProvider]ProviderClient),
		limiters:  make(map[llmtypes.LlmProvider]*rate.Limiter),
		logger:    slog.Default(),
		metrics:   noopMetrics{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RegisterProvider installs a ProviderClient for an LlmProvider key. Safe to
// call after construction but before the broker is shared across goroutines
// making completion calls; the map itself is protected by mu regardless.
func (b *Broker) RegisterProvider(provider llmtypes.LlmProvider, client ProviderClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.providers[provider] = client
}

func (b *Broker) clientFor(provider llmtypes.LlmProvider) (ProviderClient, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	client, ok := b.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: no client registered for provider %q", llmtypes.ErrUnsupportedModel, provider)
	}
	return client, nil
}

func (b *Broker) waitLimiter(ctx context.Context, provider llmtypes.LlmProvider) error {
	b.mu.RLock()
	limiter := b.limiters[provider]
	b.mu.RUnlock()
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

// attemptProperties returns the LlmProperties to use on a given 1-based
// attempt number under the spec's alternation policy (DESIGN.md "odd
// retries" resolution): attempt 1 = caller, attempt 2 = fail-over, attempt 3
// = caller, attempt 4 = fail-over. Odd attempts use the caller's
// properties; even attempts use fail-over (if configured, else caller).
func (b *Broker) attemptProperties(attempt int, caller llmtypes.LlmProperties) llmtypes.LlmProperties {
	if attempt%2 == 1 || !b.haveFO {
		return caller
	}
	return b.failover
}

const maxRetryAttempts = 4

// StreamCompletion implements spec.md §4.A's chat completion operation.
func (b *Broker) StreamCompletion(ctx context.Context, props llmtypes.LlmProperties, req llmtypes.CompletionRequest, meta Metadata, sink chan<- llmtypes.CompletionResponseDelta) (string, error) {
	if err := props.APIKeys.Validate(); err != nil {
		return "", err
	}
	if !meta.Retryable {
		client, err := b.clientFor(props.Provider)
		if err != nil {
			return "", err
		}
		if err := b.waitLimiter(ctx, props.Provider); err != nil {
			return "", err
		}
		text, err := client.StreamChatCompletion(ctx, props.APIKeys, req, sink)
		b.metrics.RecordLLMAttempt(string(props.Provider), meta.ToolName, outcomeLabel(err))
		return text, err
	}
	return b.retryChat(ctx, props, req, meta, sink)
}

// StreamPromptCompletion implements spec.md §4.A's raw-prompt operation.
func (b *Broker) StreamPromptCompletion(ctx context.Context, props llmtypes.LlmProperties, req llmtypes.PromptCompletionRequest, meta Metadata, sink chan<- llmtypes.CompletionResponseDelta) (string, error) {
	if err := props.APIKeys.Validate(); err != nil {
		return "", err
	}
	client, err := b.clientFor(props.Provider)
	if err != nil {
		return "", err
	}
	if !client.SupportsPromptCompletion() {
		return "", fmt.Errorf("%w: %s does not support prompt completion", llmtypes.ErrUnsupportedOp, client.Name())
	}
	if !meta.Retryable {
		if err := b.waitLimiter(ctx, props.Provider); err != nil {
			return "", err
		}
		return client.StreamPromptCompletion(ctx, props.APIKeys, req, sink)
	}

	var lastErr error
	var lastText string
	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		attemptProps := b.attemptProperties(attempt, props)
		if err := attemptProps.APIKeys.Validate(); err != nil {
			lastErr = err
			continue
		}
		attemptClient, err := b.clientFor(attemptProps.Provider)
		if err != nil {
			lastErr = err
			continue
		}
		if !attemptClient.SupportsPromptCompletion() {
			lastErr = fmt.Errorf("%w: %s does not support prompt completion", llmtypes.ErrUnsupportedOp, attemptClient.Name())
			continue
		}
		if attempt%2 == 0 && b.haveFO {
			b.metrics.RecordLLMFailover(string(props.Provider), string(attemptProps.Provider))
		}
		if err := b.waitLimiter(ctx, attemptProps.Provider); err != nil {
			return "", err
		}
		text, err := attemptClient.StreamPromptCompletion(ctx, attemptProps.APIKeys, req, sink)
		b.metrics.RecordLLMAttempt(string(attemptProps.Provider), meta.ToolName, outcomeLabel(err))
		if err == nil {
			return text, nil
		}
		lastErr = err
		lastText = text
		b.logger.Warn("prompt completion attempt failed", "attempt", attempt, "provider", attemptClient.Name(), "error", err, "request_id", meta.RequestID)
	}
	if lastText != "" {
		return lastText, lastErr
	}
	return "", fmt.Errorf("%w: %v", llmtypes.ErrRetriesExhausted, lastErr)
}

// retryChat runs the N=4 attempt alternating retry policy for chat
// completions whose output will be parsed and validated after streaming
// completes (spec.md §4.A "Retries & fail-over"). Each attempt opens a fresh
// stream directly into sink: deltas a failed attempt already pushed stay
// delivered, and the next attempt's cumulative text starts again from empty.
// The broker neither buffers nor drops deltas between attempts.
func (b *Broker) retryChat(ctx context.Context, props llmtypes.LlmProperties, req llmtypes.CompletionRequest, meta Metadata, sink chan<- llmtypes.CompletionResponseDelta) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		attemptProps := b.attemptProperties(attempt, props)
		if err := attemptProps.APIKeys.Validate(); err != nil {
			lastErr = err
			continue
		}
		client, err := b.clientFor(attemptProps.Provider)
		if err != nil {
			lastErr = err
			continue
		}
		if err := b.waitLimiter(ctx, attemptProps.Provider); err != nil {
			return "", err
		}
		if attempt%2 == 0 && b.haveFO {
			b.metrics.RecordLLMFailover(string(props.Provider), string(attemptProps.Provider))
		}
		text, err := client.StreamChatCompletion(ctx, attemptProps.APIKeys, req, sink)
		b.metrics.RecordLLMAttempt(string(attemptProps.Provider), meta.ToolName, outcomeLabel(err))
		if err == nil {
			return text, nil
		}
		lastErr = err
		b.logger.Warn("chat completion attempt failed", "attempt", attempt, "provider", client.Name(), "error", err, "request_id", meta.RequestID, "tool", meta.ToolName)
	}
	return "", fmt.Errorf("%w: %v", llmtypes.ErrRetriesExhausted, lastErr)
}

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
