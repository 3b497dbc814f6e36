package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/symborch/core/internal/llmtypes"
	"google.golang.org/genai"
)

// GeminiClient implements llmbroker.ProviderClient for Google's Gemini
// family, grounded on haasonsaas/nexus's
// internal/agent/providers.GoogleProvider (genai SDK, Go 1.23 iterators).
type GeminiClient struct {
	base         BaseProvider
	defaultModel string
}

// NewGeminiClient constructs a Gemini client.
func NewGeminiClient() *GeminiClient {
	return &GeminiClient{
		base:         NewBaseProvider("gemini", 3, time.Second),
		defaultModel: "gemini-1.5-pro",
	}
}

func (c *GeminiClient) Name() string                  { return "gemini" }
func (c *GeminiClient) SupportsPromptCompletion() bool { return false }

func (c *GeminiClient) modelName(t llmtypes.LlmType) string {
	switch t {
	case llmtypes.GeminiPro:
		return "gemini-1.5-pro"
	case llmtypes.GeminiFlash:
		return "gemini-1.5-flash"
	default:
		return c.defaultModel
	}
}

func (c *GeminiClient) sdkClient(ctx context.Context, keys llmtypes.LlmProviderApiKeys) (*genai.Client, error) {
	if keys.Provider != llmtypes.ProviderGemini {
		return nil, fmt.Errorf("%w: gemini client given %s keys", llmtypes.ErrWrongAPIKeyType, keys.Provider)
	}
	cc := &genai.ClientConfig{APIKey: keys.APIKey, Backend: genai.BackendGeminiAPI}
	if keys.GeminiProjectID != "" {
		cc.Backend = genai.BackendVertexAI
		cc.Project = keys.GeminiProjectID
	}
	return genai.NewClient(ctx, cc)
}

func convertToGeminiContents(msgs []llmtypes.CompletionMessage) ([]*genai.Content, string) {
	var system string
	var contents []*genai.Content
	for _, m := range msgs {
		switch m.Role {
		case llmtypes.RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
		case llmtypes.RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		case llmtypes.RoleAssistant, llmtypes.RoleFunction:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		}
	}
	return contents, system
}

// StreamChatCompletion implements llmbroker.ProviderClient.
func (c *GeminiClient) StreamChatCompletion(ctx context.Context, keys llmtypes.LlmProviderApiKeys, req llmtypes.CompletionRequest, sink chan<- llmtypes.CompletionResponseDelta) (string, error) {
	client, err := c.sdkClient(ctx, keys)
	if err != nil {
		return "", err
	}
	model := c.modelName(req.Type)
	contents, system := convertToGeminiContents(req.Messages)

	config := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	var cumulative string
	for resp, streamErr := range client.Models.GenerateContentStream(ctx, model, contents, config) {
		if streamErr != nil {
			return cumulative, fmt.Errorf("%w: %v", llmtypes.ErrTransport, streamErr)
		}
		piece := resp.Text()
		if piece == "" {
			continue
		}
		cumulative += piece
		select {
		case sink <- llmtypes.CompletionResponseDelta{CumulativeText: cumulative, IncrementalDelta: piece, ModelName: model}:
		case <-ctx.Done():
			return cumulative, ctx.Err()
		}
	}
	return cumulative, nil
}

// StreamPromptCompletion implements llmbroker.ProviderClient. Gemini's
// GenerateContent API has no distinct raw-prompt mode.
func (c *GeminiClient) StreamPromptCompletion(_ context.Context, _ llmtypes.LlmProviderApiKeys, _ llmtypes.PromptCompletionRequest, _ chan<- llmtypes.CompletionResponseDelta) (string, error) {
	return "", fmt.Errorf("%w: gemini does not support raw prompt completion", llmtypes.ErrUnsupportedOp)
}
