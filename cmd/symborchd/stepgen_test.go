package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symborch/core/internal/planservice"
	"github.com/symborch/core/internal/tooldispatch"
)

func TestDispatcherStepGeneratorParsesPlanSteps(t *testing.T) {
	raw := `<plan_steps>
<step title="Add validation"><description>Validate the input.</description><file>internal/foo.go</file></step>
<step title="Add tests"><description>Cover the new branch.</description></step>
</plan_steps>`

	dispatcher := tooldispatch.NewForTesting(map[tooldispatch.ToolType]tooldispatch.Handler{
		tooldispatch.PlanStepGenerator: func(ctx context.Context, input tooldispatch.ToolInput) (tooldispatch.ToolOutput, error) {
			return tooldispatch.PlanStepGeneratorOutput{RawResponse: raw}, nil
		},
	})

	gen := &dispatcherStepGenerator{dispatcher: dispatcher}
	steps, err := gen.GenerateSteps(context.Background(), "do the thing", planservice.MessageProperties{})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	require.Equal(t, "Add validation", steps[0].Title)
	require.Equal(t, []string{"internal/foo.go"}, steps[0].FilesToEdit)
	require.Equal(t, "Add tests", steps[1].Title)
	require.Empty(t, steps[1].FilesToEdit)
}

func TestDispatcherStepGeneratorRejectsMissingBlock(t *testing.T) {
	dispatcher := tooldispatch.NewForTesting(map[tooldispatch.ToolType]tooldispatch.Handler{
		tooldispatch.PlanStepGenerator: func(ctx context.Context, input tooldispatch.ToolInput) (tooldispatch.ToolOutput, error) {
			return tooldispatch.PlanStepGeneratorOutput{RawResponse: "no steps here"}, nil
		},
	})

	gen := &dispatcherStepGenerator{dispatcher: dispatcher}
	_, err := gen.GenerateSteps(context.Background(), "do the thing", planservice.MessageProperties{})
	require.Error(t, err)
}
