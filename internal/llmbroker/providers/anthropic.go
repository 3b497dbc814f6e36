// Package providers implements ProviderClient for each supported LLM
// backend: translating llmtypes.CompletionRequest into the provider's wire
// format, decoding its stream events into llmtypes.CompletionResponseDelta,
// and honoring the cumulative-text invariant from spec.md §8.
package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/symborch/core/internal/llmtypes"
)

// AnthropicClient implements llmbroker.ProviderClient for Anthropic's
// Claude family, grounded on the streaming/retry shape of
// haasonsaas/nexus's internal/agent/providers.AnthropicProvider.
type AnthropicClient struct {
	base         BaseProvider
	defaultModel string
}

// AnthropicOption configures an AnthropicClient.
type AnthropicOption func(*AnthropicClient)

// WithAnthropicDefaultModel overrides the model used when a
// CompletionRequest's llmtypes.LlmType has no built-in Anthropic model ID.
func WithAnthropicDefaultModel(model string) AnthropicOption {
	return func(c *AnthropicClient) { c.defaultModel = model }
}

// NewAnthropicClient constructs a client. Credentials are supplied per call
// via LlmProviderApiKeys, matching spec.md's stateless-after-construction
// requirement (§3 "Lifecycles & ownership").
func NewAnthropicClient(opts ...AnthropicOption) *AnthropicClient {
	c := &AnthropicClient{
		base:         NewBaseProvider("anthropic", 4, time.Second),
		defaultModel: "claude-sonnet-4-20250514",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *AnthropicClient) Name() string                     { return "anthropic" }
func (c *AnthropicClient) SupportsPromptCompletion() bool    { return false }

func (c *AnthropicClient) sdkClient(keys llmtypes.LlmProviderApiKeys) anthropic.Client {
	opts := []option.RequestOption{option.WithAPIKey(keys.APIKey)}
	if keys.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(keys.BaseURL))
	}
	return anthropic.NewClient(opts...)
}

func modelIDFor(t llmtypes.LlmType, fallback string) string {
	switch t {
	case llmtypes.ClaudeSonnet:
		return "claude-sonnet-4-20250514"
	case llmtypes.ClaudeHaiku:
		return "claude-haiku-4-20250514"
	case llmtypes.ClaudeOpus:
		return "claude-opus-4-20250514"
	default:
		return fallback
	}
}

func (c *AnthropicClient) convertMessages(msgs []llmtypes.CompletionMessage) ([]anthropic.MessageParam, string) {
	var system string
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case llmtypes.RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
		case llmtypes.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case llmtypes.RoleAssistant, llmtypes.RoleFunction:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out, system
}

// StreamChatCompletion implements llmbroker.ProviderClient.
func (c *AnthropicClient) StreamChatCompletion(ctx context.Context, keys llmtypes.LlmProviderApiKeys, req llmtypes.CompletionRequest, sink chan<- llmtypes.CompletionResponseDelta) (string, error) {
	if keys.Provider != llmtypes.ProviderAnthropic {
		return "", fmt.Errorf("%w: anthropic client given %s keys", llmtypes.ErrWrongAPIKeyType, keys.Provider)
	}
	client := c.sdkClient(keys)
	messages, system := c.convertMessages(req.Messages)
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelIDFor(req.Type, c.defaultModel)),
		Messages:  messages,
		MaxTokens: int64(maxTokens),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: system}}
	}
	if len(req.Stop) > 0 {
		params.StopSequences = req.Stop
	}

	var cumulative string
	var lastErr error
	for attempt := 0; attempt < c.base.maxRetries; attempt++ {
		stream := client.Messages.NewStreaming(ctx, params)
		cumulative, lastErr = drainAnthropicStream(ctx, stream, sink)
		if lastErr == nil || !isRetryableStreamErr(lastErr) {
			return cumulative, lastErr
		}
		backoff := c.base.retryDelay * time.Duration(math.Pow(2, float64(attempt)))
		select {
		case <-ctx.Done():
			return cumulative, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return cumulative, fmt.Errorf("%w: %v", llmtypes.ErrTransport, lastErr)
}

func drainAnthropicStream(ctx context.Context, stream interface {
	Next() bool
	Current() anthropic.MessageStreamEventUnion
	Err() error
}, sink chan<- llmtypes.CompletionResponseDelta) (string, error) {
	var cumulative string
	for stream.Next() {
		event := stream.Current()
		var piece string
		switch event.Type {
		case "content_block_delta":
			delta := event.AsContentBlockDelta()
			piece = delta.Delta.Text
		}
		if piece == "" {
			continue
		}
		cumulative += piece
		// A blocked send with ctx.Done() as the escape hatch: cancelling ctx
		// ends the stream even while the sink's reader is not receiving. A
		// closed sink is not detected here.
		select {
		case sink <- llmtypes.CompletionResponseDelta{CumulativeText: cumulative, IncrementalDelta: piece, ModelName: "anthropic"}:
		case <-ctx.Done():
			return cumulative, ctx.Err()
		}
	}
	if err := stream.Err(); err != nil {
		return cumulative, err
	}
	return cumulative, nil
}

func isRetryableStreamErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// StreamPromptCompletion implements llmbroker.ProviderClient. Anthropic's
// Messages API has no raw-prompt mode distinct from chat, so this always
// fails per spec.md §4.A ("must never silently fall back").
func (c *AnthropicClient) StreamPromptCompletion(_ context.Context, _ llmtypes.LlmProviderApiKeys, _ llmtypes.PromptCompletionRequest, _ chan<- llmtypes.CompletionResponseDelta) (string, error) {
	return "", fmt.Errorf("%w: anthropic does not support raw prompt completion", llmtypes.ErrUnsupportedOp)
}
