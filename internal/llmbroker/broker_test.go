package llmbroker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symborch/core/internal/llmtypes"
)

type fakeProvider struct {
	name           string
	supportsPrompt bool
	failCount      int
	calls          int
}

func (f *fakeProvider) Name() string                  { return f.name }
func (f *fakeProvider) SupportsPromptCompletion() bool { return f.supportsPrompt }

func (f *fakeProvider) StreamChatCompletion(ctx context.Context, keys llmtypes.LlmProviderApiKeys, req llmtypes.CompletionRequest, sink chan<- llmtypes.CompletionResponseDelta) (string, error) {
	f.calls++
	if f.calls <= f.failCount {
		return "", errors.New("transient provider failure")
	}
	return "ok from " + f.name, nil
}

func (f *fakeProvider) StreamPromptCompletion(ctx context.Context, keys llmtypes.LlmProviderApiKeys, req llmtypes.PromptCompletionRequest, sink chan<- llmtypes.CompletionResponseDelta) (string, error) {
	if !f.supportsPrompt {
		return "", llmtypes.ErrUnsupportedOp
	}
	f.calls++
	return "prompt ok from " + f.name, nil
}

type fakeMetrics struct {
	attempts  []string
	failovers []string
}

func (m *fakeMetrics) RecordLLMAttempt(provider, toolName, outcome string) {
	m.attempts = append(m.attempts, provider+":"+toolName+":"+outcome)
}

func (m *fakeMetrics) RecordLLMFailover(fromProvider, toProvider string) {
	m.failovers = append(m.failovers, fromProvider+"->"+toProvider)
}

func anthropicProps() llmtypes.LlmProperties {
	return llmtypes.LlmProperties{
		Type:     llmtypes.ClaudeSonnet,
		Provider: llmtypes.ProviderAnthropic,
		APIKeys:  llmtypes.LlmProviderApiKeys{Provider: llmtypes.ProviderAnthropic, APIKey: "k"},
	}
}

func TestStreamCompletionNonRetryableSucceeds(t *testing.T) {
	primary := &fakeProvider{name: "anthropic"}
	metrics := &fakeMetrics{}
	broker := NewBroker(WithMetrics(metrics))
	broker.RegisterProvider(llmtypes.ProviderAnthropic, primary)

	sink := make(chan llmtypes.CompletionResponseDelta, 4)
	text, err := broker.StreamCompletion(context.Background(), anthropicProps(), llmtypes.CompletionRequest{}, Metadata{ToolName: "t"}, sink)
	close(sink)

	require.NoError(t, err)
	require.Equal(t, "ok from anthropic", text)
	require.Equal(t, []string{"anthropic:t:ok"}, metrics.attempts)
}

func TestStreamCompletionRetryableFailsOverOnFirstRetry(t *testing.T) {
	primary := &fakeProvider{name: "anthropic", failCount: 1}
	secondary := &fakeProvider{name: "openai"}
	metrics := &fakeMetrics{}

	broker := NewBroker(WithMetrics(metrics), WithFailover(llmtypes.LlmProperties{
		Type:     llmtypes.Gpt4O,
		Provider: llmtypes.ProviderOpenAI,
		APIKeys:  llmtypes.LlmProviderApiKeys{Provider: llmtypes.ProviderOpenAI, APIKey: "k2"},
	}))
	broker.RegisterProvider(llmtypes.ProviderAnthropic, primary)
	broker.RegisterProvider(llmtypes.ProviderOpenAI, secondary)

	sink := make(chan llmtypes.CompletionResponseDelta, 4)
	text, err := broker.StreamCompletion(context.Background(), anthropicProps(), llmtypes.CompletionRequest{}, Metadata{ToolName: "t", Retryable: true}, sink)
	close(sink)

	require.NoError(t, err)
	require.Equal(t, "ok from openai", text)
	require.NotEmpty(t, metrics.failovers)
	require.Equal(t, "anthropic->openai", metrics.failovers[0])
}

func TestStreamCompletionRetriesExhausted(t *testing.T) {
	primary := &fakeProvider{name: "anthropic", failCount: 10}
	metrics := &fakeMetrics{}
	broker := NewBroker(WithMetrics(metrics))
	broker.RegisterProvider(llmtypes.ProviderAnthropic, primary)

	sink := make(chan llmtypes.CompletionResponseDelta, 4)
	_, err := broker.StreamCompletion(context.Background(), anthropicProps(), llmtypes.CompletionRequest{}, Metadata{ToolName: "t", Retryable: true}, sink)
	close(sink)

	require.ErrorIs(t, err, llmtypes.ErrRetriesExhausted)
}

func TestStreamPromptCompletionUnsupportedOp(t *testing.T) {
	primary := &fakeProvider{name: "gemini", supportsPrompt: false}
	broker := NewBroker()
	broker.RegisterProvider(llmtypes.ProviderGemini, primary)

	sink := make(chan llmtypes.CompletionResponseDelta, 4)
	_, err := broker.StreamPromptCompletion(context.Background(), llmtypes.LlmProperties{
		Type:     llmtypes.GeminiPro,
		Provider: llmtypes.ProviderGemini,
		APIKeys:  llmtypes.LlmProviderApiKeys{Provider: llmtypes.ProviderGemini, APIKey: "k"},
	}, llmtypes.PromptCompletionRequest{}, Metadata{}, sink)
	close(sink)

	require.ErrorIs(t, err, llmtypes.ErrUnsupportedOp)
}

func TestRegisterProviderUnknownProviderErrors(t *testing.T) {
	broker := NewBroker()
	sink := make(chan llmtypes.CompletionResponseDelta, 1)
	_, err := broker.StreamCompletion(context.Background(), anthropicProps(), llmtypes.CompletionRequest{}, Metadata{}, sink)
	close(sink)
	require.Error(t, err)
}
