package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/symborch/core/internal/llmtypes"
)

// BedrockClient implements llmbroker.ProviderClient for models served off
// AWS Bedrock's Converse API (DeepSeek, Mixtral, and custom deployments),
// grounded on haasonsaas/nexus's internal/agent/providers.BedrockProvider.
type BedrockClient struct {
	base         BaseProvider
	defaultModel string
}

// NewBedrockClient constructs a Bedrock client.
func NewBedrockClient() *BedrockClient {
	return &BedrockClient{
		base:         NewBaseProvider("bedrock", 3, time.Second),
		defaultModel: "mistral.mixtral-8x7b-instruct-v0:1",
	}
}

func (c *BedrockClient) Name() string                  { return "bedrock" }
func (c *BedrockClient) SupportsPromptCompletion() bool { return false }

func (c *BedrockClient) modelID(t llmtypes.LlmType) string {
	switch t {
	case llmtypes.DeepSeekCoder:
		return "deepseek.deepseek-coder-v2"
	case llmtypes.DeepSeekCoderLite:
		return "deepseek.deepseek-coder-v2-lite"
	case llmtypes.Mixtral:
		return "mistral.mixtral-8x7b-instruct-v0:1"
	default:
		if custom, ok := strings.CutPrefix(string(t), "custom:"); ok {
			return custom
		}
		return c.defaultModel
	}
}

func (c *BedrockClient) sdkClient(ctx context.Context, keys llmtypes.LlmProviderApiKeys) (*bedrockruntime.Client, error) {
	if keys.Provider != llmtypes.ProviderBedrock {
		return nil, fmt.Errorf("%w: bedrock client given %s keys", llmtypes.ErrWrongAPIKeyType, keys.Provider)
	}
	var optFns []func(*awsconfig.LoadOptions) error
	optFns = append(optFns, awsconfig.WithRegion(keys.AWSRegion))
	if keys.AWSAccessKeyID != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			keys.AWSAccessKeyID, keys.AWSSecretAccessKey, keys.AWSSessionToken,
		)))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("%w: loading aws config: %v", llmtypes.ErrTransport, err)
	}
	return bedrockruntime.NewFromConfig(cfg), nil
}

func convertToBedrockMessages(msgs []llmtypes.CompletionMessage) ([]types.Message, []types.SystemContentBlock) {
	var system []types.SystemContentBlock
	out := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case llmtypes.RoleSystem:
			system = append(system, &types.SystemContentBlockMemberText{Value: m.Content})
		case llmtypes.RoleUser:
			out = append(out, types.Message{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
			})
		case llmtypes.RoleAssistant, llmtypes.RoleFunction:
			out = append(out, types.Message{
				Role:    types.ConversationRoleAssistant,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
			})
		}
	}
	return out, system
}

// StreamChatCompletion implements llmbroker.ProviderClient.
func (c *BedrockClient) StreamChatCompletion(ctx context.Context, keys llmtypes.LlmProviderApiKeys, req llmtypes.CompletionRequest, sink chan<- llmtypes.CompletionResponseDelta) (string, error) {
	client, err := c.sdkClient(ctx, keys)
	if err != nil {
		return "", err
	}
	model := c.modelID(req.Type)
	messages, system := convertToBedrockMessages(req.Messages)

	converseReq := &bedrockruntime.ConverseStreamInput{
		ModelId:  aws.String(model),
		Messages: messages,
	}
	if len(system) > 0 {
		converseReq.System = system
	}
	if req.MaxTokens > 0 {
		converseReq.InferenceConfig = &types.InferenceConfiguration{
			MaxTokens: aws.Int32(int32(req.MaxTokens)),
		}
	}

	var stream *bedrockruntime.ConverseStreamOutput
	var lastErr error
	for attempt := 0; attempt < c.base.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.base.retryDelay * time.Duration(attempt)):
			}
		}
		stream, lastErr = client.ConverseStream(ctx, converseReq)
		if lastErr == nil {
			break
		}
		if !isRetryableBedrockErr(lastErr) {
			return "", fmt.Errorf("%w: %v", llmtypes.ErrTransport, lastErr)
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", llmtypes.ErrTransport, lastErr)
	}

	return drainBedrockStream(ctx, stream, model, sink)
}

func drainBedrockStream(ctx context.Context, stream *bedrockruntime.ConverseStreamOutput, model string, sink chan<- llmtypes.CompletionResponseDelta) (string, error) {
	eventStream := stream.GetStream()
	defer eventStream.Close()

	var cumulative string
	eventChan := eventStream.Events()
	for {
		select {
		case <-ctx.Done():
			return cumulative, ctx.Err()
		case event, ok := <-eventChan:
			if !ok {
				if err := eventStream.Err(); err != nil {
					return cumulative, fmt.Errorf("%w: %v", llmtypes.ErrDecode, err)
				}
				return cumulative, nil
			}
			switch ev := event.(type) {
			case *types.ConverseStreamOutputMemberContentBlockDelta:
				textDelta, ok := ev.Value.Delta.(*types.ContentBlockDeltaMemberText)
				if !ok || textDelta.Value == "" {
					continue
				}
				cumulative += textDelta.Value
				select {
				case sink <- llmtypes.CompletionResponseDelta{CumulativeText: cumulative, IncrementalDelta: textDelta.Value, ModelName: model}:
				case <-ctx.Done():
					return cumulative, ctx.Err()
				}
			case *types.ConverseStreamOutputMemberMessageStop:
				return cumulative, nil
			}
		}
	}
}

func isRetryableBedrockErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"throttling", "toomanyrequests", "serviceunavailable", "timeout", "deadline exceeded", "500", "502", "503", "504"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// StreamPromptCompletion implements llmbroker.ProviderClient. Bedrock's
// Converse API has no raw-prompt mode distinct from chat.
func (c *BedrockClient) StreamPromptCompletion(_ context.Context, _ llmtypes.LlmProviderApiKeys, _ llmtypes.PromptCompletionRequest, _ chan<- llmtypes.CompletionResponseDelta) (string, error) {
	return "", fmt.Errorf("%w: bedrock does not support raw prompt completion", llmtypes.ErrUnsupportedOp)
}
