package llmtypes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCustomLlmTypeEqualityByName(t *testing.T) {
	require.Equal(t, CustomLlmType("foo"), CustomLlmType("foo"))
	require.NotEqual(t, CustomLlmType("foo"), CustomLlmType("bar"))
}

func TestValidateAnthropicRequiresAPIKey(t *testing.T) {
	err := LlmProviderApiKeys{Provider: ProviderAnthropic}.Validate()
	require.ErrorIs(t, err, ErrWrongAPIKeyType)

	err = LlmProviderApiKeys{Provider: ProviderAnthropic, APIKey: "k"}.Validate()
	require.NoError(t, err)
}

func TestValidateOllamaAllowsEmptyAPIKey(t *testing.T) {
	err := LlmProviderApiKeys{Provider: ProviderOllama}.Validate()
	require.NoError(t, err)
}

func TestValidateGeminiRequiresAPIKey(t *testing.T) {
	err := LlmProviderApiKeys{Provider: ProviderGemini}.Validate()
	require.ErrorIs(t, err, ErrWrongAPIKeyType)

	err = LlmProviderApiKeys{Provider: ProviderGemini, APIKey: "k", GeminiProjectID: "proj"}.Validate()
	require.NoError(t, err)
}

func TestValidateBedrockRequiresRegion(t *testing.T) {
	err := LlmProviderApiKeys{Provider: ProviderBedrock}.Validate()
	require.ErrorIs(t, err, ErrWrongAPIKeyType)

	err = LlmProviderApiKeys{
		Provider:           ProviderBedrock,
		AWSAccessKeyID:     "id",
		AWSSecretAccessKey: "secret",
		AWSRegion:          "us-east-1",
	}.Validate()
	require.NoError(t, err)
}

func TestValidateUnknownProvider(t *testing.T) {
	err := LlmProviderApiKeys{Provider: LlmProvider("vertex")}.Validate()
	require.ErrorIs(t, err, ErrWrongAPIKeyType)
}
