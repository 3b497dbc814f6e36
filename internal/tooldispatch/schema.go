package tooldispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// agentFacingSchemas holds the JSON Schema source for the ToolTypes an
// outside agent (editor, CLI, or remote tool-use client hitting
// cmd/symborchd's HTTP surface) may invoke by sending raw JSON arguments,
// rather than a Go caller constructing a typed ToolInput directly. Tools
// reachable only from inside the orchestration core (the reasoning/probe
// tools in llmtools.go, plan-step generation, reranking) are never built
// from untrusted JSON and carry no schema here; InvokeJSON rejects them.
var agentFacingSchemas = map[ToolType]string{
	OpenFile: `{
		"type": "object",
		"required": ["FsFilePath"],
		"properties": {"FsFilePath": {"type": "string", "minLength": 1}},
		"additionalProperties": false
	}`,
	FindInFile: `{
		"type": "object",
		"required": ["FileContent", "Symbol"],
		"properties": {
			"FileContent": {"type": "string"},
			"Symbol": {"type": "string", "minLength": 1}
		},
		"additionalProperties": false
	}`,
	CreateFile: `{
		"type": "object",
		"required": ["FsFilePath"],
		"properties": {"FsFilePath": {"type": "string", "minLength": 1}},
		"additionalProperties": false
	}`,
	RegexSearch: `{
		"type": "object",
		"required": ["Pattern"],
		"properties": {
			"Pattern": {"type": "string", "minLength": 1},
			"Glob": {"type": "string"},
			"Directory": {"type": "string"}
		},
		"additionalProperties": false
	}`,
}

// compileAgentFacingSchemas compiles agentFacingSchemas once at Dispatcher
// construction, the way gateway.initWSSchemas compiles its method schemas.
func compileAgentFacingSchemas() map[ToolType]*jsonschema.Schema {
	out := make(map[ToolType]*jsonschema.Schema, len(agentFacingSchemas))
	for t, src := range agentFacingSchemas {
		compiled, err := jsonschema.CompileString(string(t)+".json", src)
		if err != nil {
			panic(fmt.Sprintf("tooldispatch: invalid schema for %q: %v", t, err))
		}
		out[t] = compiled
	}
	return out
}

// decodeAgentInput unmarshals validated raw JSON into the concrete ToolInput
// Go type for t. Only the ToolTypes in agentFacingSchemas are handled.
func decodeAgentInput(t ToolType, raw []byte) (ToolInput, error) {
	switch t {
	case OpenFile:
		var in OpenFileInput
		err := json.Unmarshal(raw, &in)
		return in, err
	case FindInFile:
		var in FindInFileInput
		err := json.Unmarshal(raw, &in)
		return in, err
	case CreateFile:
		var in CreateFileInput
		err := json.Unmarshal(raw, &in)
		return in, err
	case RegexSearch:
		var in RegexSearchInput
		err := json.Unmarshal(raw, &in)
		return in, err
	default:
		return nil, fmt.Errorf("%w: %q has no JSON entry point", ErrNoJSONSchema, t)
	}
}

// InvokeJSON validates raw against t's declared JSON Schema, decodes it into
// the matching ToolInput, and dispatches it. This is the entry point used by
// cmd/symborchd's HTTP tool-call route, where arguments arrive as untrusted
// JSON from an editor or remote agent rather than as a Go-constructed
// ToolInput; Invoke remains the path for every internal caller.
func (d *Dispatcher) InvokeJSON(ctx context.Context, t ToolType, raw []byte) (ToolOutput, error) {
	schema, ok := d.schemas[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoJSONSchema, t)
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("tooldispatch: invalid JSON for %q: %w", t, err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	input, err := decodeAgentInput(t, raw)
	if err != nil {
		return nil, err
	}
	return d.Invoke(ctx, input)
}
