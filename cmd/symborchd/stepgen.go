package main

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/symborch/core/internal/planservice"
	"github.com/symborch/core/internal/tooldispatch"
)

// dispatcherStepGenerator implements planservice.StepGenerator over the
// plan_step_generator tool, parsing its raw LLM text as a <plan_steps> XML
// block, the same tagged-block convention internal/search/parse.go uses for
// its <searches>/<identify> blocks.
type dispatcherStepGenerator struct {
	dispatcher *tooldispatch.Dispatcher
}

type planStepsDoc struct {
	XMLName xml.Name       `xml:"plan_steps"`
	Steps   []planStepItem `xml:"step"`
}

type planStepItem struct {
	Title       string   `xml:"title,attr"`
	Description string   `xml:"description"`
	Files       []string `xml:"file"`
}

func (g *dispatcherStepGenerator) GenerateSteps(ctx context.Context, prompt string, props planservice.MessageProperties) ([]planservice.Step, error) {
	out, err := g.dispatcher.Invoke(ctx, tooldispatch.PlanStepGeneratorInput{UserQuery: prompt})
	if err != nil {
		return nil, err
	}
	raw := out.(tooldispatch.PlanStepGeneratorOutput).RawResponse

	start := strings.Index(raw, "<plan_steps>")
	end := strings.Index(raw, "</plan_steps>")
	if start == -1 || end == -1 {
		return nil, fmt.Errorf("plan step generator: no <plan_steps> block in response")
	}
	var doc planStepsDoc
	if err := xml.Unmarshal([]byte(raw[start:end+len("</plan_steps>")]), &doc); err != nil {
		return nil, fmt.Errorf("plan step generator: parsing <plan_steps>: %w", err)
	}

	steps := make([]planservice.Step, 0, len(doc.Steps))
	for _, s := range doc.Steps {
		steps = append(steps, planservice.Step{
			Title:       s.Title,
			Description: s.Description,
			FilesToEdit: s.Files,
		})
	}
	return steps, nil
}
