package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/symborch/core/internal/llmtypes"
)

// OpenAIClient implements llmbroker.ProviderClient for OpenAI's chat and
// legacy completion APIs, grounded on
// haasonsaas/nexus's internal/agent/providers.OpenAIProvider.
type OpenAIClient struct {
	base         BaseProvider
	defaultModel string
}

// NewOpenAIClient constructs an OpenAI client.
func NewOpenAIClient() *OpenAIClient {
	return &OpenAIClient{
		base:         NewBaseProvider("openai", 3, time.Second),
		defaultModel: "gpt-4o",
	}
}

func (c *OpenAIClient) Name() string                  { return "openai" }
func (c *OpenAIClient) SupportsPromptCompletion() bool { return true }

func (c *OpenAIClient) client(keys llmtypes.LlmProviderApiKeys) (*openai.Client, error) {
	if keys.Provider != llmtypes.ProviderOpenAI {
		return nil, fmt.Errorf("%w: openai client given %s keys", llmtypes.ErrWrongAPIKeyType, keys.Provider)
	}
	cfg := openai.DefaultConfig(keys.APIKey)
	if keys.BaseURL != "" {
		cfg.BaseURL = keys.BaseURL
	}
	return openai.NewClientWithConfig(cfg), nil
}

func (c *OpenAIClient) openAIModel(t llmtypes.LlmType) string {
	switch t {
	case llmtypes.Gpt4O:
		return "gpt-4o"
	case llmtypes.Gpt4OMini:
		return "gpt-4o-mini"
	default:
		return c.defaultModel
	}
}

func convertToOpenAIMessages(msgs []llmtypes.CompletionMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case llmtypes.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case llmtypes.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case llmtypes.RoleFunction:
			role = openai.ChatMessageRoleFunction
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

// StreamChatCompletion implements llmbroker.ProviderClient.
func (c *OpenAIClient) StreamChatCompletion(ctx context.Context, keys llmtypes.LlmProviderApiKeys, req llmtypes.CompletionRequest, sink chan<- llmtypes.CompletionResponseDelta) (string, error) {
	client, err := c.client(keys)
	if err != nil {
		return "", err
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       c.openAIModel(req.Type),
		Messages:    convertToOpenAIMessages(req.Messages),
		Stream:      true,
		Temperature: float32(req.Temperature),
		Stop:        req.Stop,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	var stream *openai.ChatCompletionStream
	var lastErr error
	for attempt := 0; attempt < c.base.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.base.retryDelay * time.Duration(attempt)):
			}
		}
		stream, lastErr = client.CreateChatCompletionStream(ctx, chatReq)
		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", llmtypes.ErrTransport, lastErr)
	}
	defer stream.Close()

	var cumulative string
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return cumulative, nil
		}
		if err != nil {
			return cumulative, fmt.Errorf("%w: %v", llmtypes.ErrDecode, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		piece := resp.Choices[0].Delta.Content
		if piece == "" {
			continue
		}
		cumulative += piece
		select {
		case sink <- llmtypes.CompletionResponseDelta{CumulativeText: cumulative, IncrementalDelta: piece, ModelName: chatReq.Model}:
		case <-ctx.Done():
			return cumulative, ctx.Err()
		}
	}
}

// StreamPromptCompletion implements llmbroker.ProviderClient using the
// legacy /v1/completions endpoint.
func (c *OpenAIClient) StreamPromptCompletion(ctx context.Context, keys llmtypes.LlmProviderApiKeys, req llmtypes.PromptCompletionRequest, sink chan<- llmtypes.CompletionResponseDelta) (string, error) {
	client, err := c.client(keys)
	if err != nil {
		return "", err
	}
	promptReq := openai.CompletionRequest{
		Model:       c.openAIModel(req.Type),
		Prompt:      req.Prompt,
		Stream:      true,
		Temperature: float32(req.Temperature),
		Stop:        req.Stop,
	}
	if req.MaxTokens > 0 {
		promptReq.MaxTokens = req.MaxTokens
	}
	stream, err := client.CreateCompletionStream(ctx, promptReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llmtypes.ErrTransport, err)
	}
	defer stream.Close()

	var cumulative string
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return cumulative, nil
		}
		if err != nil {
			return cumulative, fmt.Errorf("%w: %v", llmtypes.ErrDecode, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		piece := resp.Choices[0].Text
		if piece == "" {
			continue
		}
		cumulative += piece
		select {
		case sink <- llmtypes.CompletionResponseDelta{CumulativeText: cumulative, IncrementalDelta: piece, ModelName: promptReq.Model}:
		case <-ctx.Done():
			return cumulative, ctx.Err()
		}
	}
}
