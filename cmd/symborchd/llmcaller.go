package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/symborch/core/internal/llmbroker"
	"github.com/symborch/core/internal/llmtypes"
)

// textCaller adapts llmbroker.Broker to the narrow single-shot
// system/user-prompt Caller interface shared by internal/search and
// internal/rerank, draining the streamed completion to its final text the
// same way internal/tooldispatch's unexported brokerCaller does for rerank.
type textCaller struct {
	broker *llmbroker.Broker
	props  llmtypes.LlmProperties
	tool   string
}

func (c textCaller) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := llmtypes.CompletionRequest{
		Type: c.props.Type,
		Messages: []llmtypes.CompletionMessage{
			{Role: llmtypes.RoleSystem, Content: systemPrompt},
			{Role: llmtypes.RoleUser, Content: userPrompt},
		},
	}
	meta := llmbroker.Metadata{RequestID: uuid.NewString(), ToolName: c.tool, Retryable: true}
	sink := make(chan llmtypes.CompletionResponseDelta, 8)
	go func() {
		for range sink {
		}
	}()
	text, err := c.broker.StreamCompletion(ctx, c.props, req, meta, sink)
	close(sink)
	return text, err
}
