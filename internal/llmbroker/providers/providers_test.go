package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/symborch/core/internal/llmtypes"
)

func TestNewBaseProviderAppliesDefaults(t *testing.T) {
	b := NewBaseProvider("test", 0, 0)
	require.Equal(t, "test", b.Name())
	require.Equal(t, 3, b.maxRetries)
	require.Equal(t, time.Second, b.retryDelay)
}

func TestModelIDForKnownAndUnknownTypes(t *testing.T) {
	require.Equal(t, "claude-sonnet-4-20250514", modelIDFor(llmtypes.ClaudeSonnet, "fallback"))
	require.Equal(t, "claude-haiku-4-20250514", modelIDFor(llmtypes.ClaudeHaiku, "fallback"))
	require.Equal(t, "fallback", modelIDFor(llmtypes.LlmType("unknown"), "fallback"))
}

func TestOpenAIClientRejectsWrongProviderKeys(t *testing.T) {
	c := NewOpenAIClient()
	_, err := c.client(llmtypes.LlmProviderApiKeys{Provider: llmtypes.ProviderAnthropic, APIKey: "x"})
	require.ErrorIs(t, err, llmtypes.ErrWrongAPIKeyType)
}

func TestOpenAIClientAcceptsMatchingProviderKeys(t *testing.T) {
	c := NewOpenAIClient()
	client, err := c.client(llmtypes.LlmProviderApiKeys{Provider: llmtypes.ProviderOpenAI, APIKey: "x"})
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestGeminiClientRejectsWrongProviderKeys(t *testing.T) {
	c := NewGeminiClient()
	_, err := c.sdkClient(context.Background(), llmtypes.LlmProviderApiKeys{Provider: llmtypes.ProviderOpenAI, APIKey: "x"})
	require.ErrorIs(t, err, llmtypes.ErrWrongAPIKeyType)
}

func TestProviderNamesAndPromptSupport(t *testing.T) {
	require.Equal(t, "anthropic", NewAnthropicClient().Name())
	require.False(t, NewAnthropicClient().SupportsPromptCompletion())
	require.Equal(t, "openai", NewOpenAIClient().Name())
	require.True(t, NewOpenAIClient().SupportsPromptCompletion())
	require.Equal(t, "gemini", NewGeminiClient().Name())
	require.False(t, NewGeminiClient().SupportsPromptCompletion())
	require.Equal(t, "bedrock", NewBedrockClient().Name())
	require.False(t, NewBedrockClient().SupportsPromptCompletion())
}

func TestWithAnthropicDefaultModel(t *testing.T) {
	c := NewAnthropicClient(WithAnthropicDefaultModel("claude-custom"))
	require.Equal(t, "claude-custom", modelIDFor(llmtypes.LlmType("unknown"), c.defaultModel))
}
