package tooldispatch

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/symborch/core/internal/llmbroker"
	"github.com/symborch/core/internal/llmtypes"
)

// DeltaObserver is invoked once per provider delta for tools that stream
// internally but must return a single buffered result (spec.md §4.B
// "Invocation semantics": "publishing a UI event per provider delta").
type DeltaObserver func(t ToolType, delta llmtypes.CompletionResponseDelta)

// runCompletion drains a completion to its final cumulative text, forwarding
// every delta to observe (if non-nil) before the sink channel is closed.
func runCompletion(ctx context.Context, broker *llmbroker.Broker, props llmtypes.LlmProperties, req llmtypes.CompletionRequest, meta llmbroker.Metadata, t ToolType, observe DeltaObserver) (string, error) {
	sink := make(chan llmtypes.CompletionResponseDelta, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for delta := range sink {
			if observe != nil {
				observe(t, delta)
			}
		}
	}()
	text, err := broker.StreamCompletion(ctx, props, req, meta, sink)
	close(sink)
	<-done
	return text, err
}

func llmPropertiesFor(provider, apiKey, model string) llmtypes.LlmProperties {
	p := llmtypes.LlmProvider(provider)
	keys := llmtypes.LlmProviderApiKeys{Provider: p, APIKey: apiKey}
	return llmtypes.LlmProperties{
		Type:     llmtypes.LlmType(model),
		Provider: p,
		APIKeys:  keys,
	}
}

var (
	codeEditedRe = regexp.MustCompile(`(?s)<code_edited>.*?` + "```[a-zA-Z0-9_+-]*\n(.*?)```" + `.*?</code_edited>`)
	codeToAddRe  = regexp.MustCompile(`(?s)<code_to_add>.*?` + "```[a-zA-Z0-9_+-]*\n(.*?)```" + `.*?</code_to_add>`)
)

// extractCodeBlock implements spec.md §4.B's code-edit extractor: scan for a
// <code_edited> or <code_to_add> wrapped fence and return just the code.
func extractCodeBlock(response string) (string, bool) {
	if m := codeEditedRe.FindStringSubmatch(response); m != nil {
		return strings.TrimRight(m[1], "\n"), true
	}
	if m := codeToAddRe.FindStringSubmatch(response); m != nil {
		return strings.TrimRight(m[1], "\n"), true
	}
	return "", false
}

func codeEditPrompt(in CodeEditLLMInput) []llmtypes.CompletionMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "You are editing %s.\n", in.FsFilePath)
	if in.AboveContext != "" {
		fmt.Fprintf(&b, "Context above:\n```%s\n%s\n```\n", in.Language, in.AboveContext)
	}
	fmt.Fprintf(&b, "Code to edit:\n```%s\n%s\n```\n", in.Language, in.CodeToEdit)
	if in.BelowContext != "" {
		fmt.Fprintf(&b, "Context below:\n```%s\n%s\n```\n", in.Language, in.BelowContext)
	}
	if in.ExtraContext != "" {
		fmt.Fprintf(&b, "Extra context:\n%s\n", in.ExtraContext)
	}
	fmt.Fprintf(&b, "Instruction: %s\n", in.Instruction)
	if in.IsNewSubSymbol {
		b.WriteString("Wrap the new code in <code_to_add>...```" + in.Language + "\n...\n```...</code_to_add>.\n")
	} else {
		b.WriteString("Wrap the edited code in <code_edited>...```" + in.Language + "\n...\n```...</code_edited>.\n")
	}
	return []llmtypes.CompletionMessage{
		{Role: llmtypes.RoleSystem, Content: "You rewrite code precisely, preserving everything not asked to change."},
		{Role: llmtypes.RoleUser, Content: b.String()},
	}
}

// handleCodeEditLLM implements the code-edit tool (spec.md §4.B).
func handleCodeEditLLM(broker *llmbroker.Broker, observe DeltaObserver) Handler {
	return func(ctx context.Context, input ToolInput) (ToolOutput, error) {
		in, ok := input.(CodeEditLLMInput)
		if !ok {
			return nil, fmt.Errorf("%w: expected CodeEditLLMInput", ErrWrongToolInput)
		}
		props := llmPropertiesFor(in.Provider, in.APIKey, in.Model)
		req := llmtypes.CompletionRequest{Type: props.Type, Messages: codeEditPrompt(in)}
		meta := llmbroker.Metadata{RequestID: uuid.NewString(), ToolName: string(CodeEditLLM), Retryable: true}

		text, err := runCompletion(ctx, broker, props, req, meta, CodeEditLLM, observe)
		if err != nil {
			return nil, err
		}
		code, ok := extractCodeBlock(text)
		if !ok {
			return nil, fmt.Errorf("%w: code-edit response had no <code_edited>/<code_to_add> block", llmtypes.ErrDecode)
		}
		return CodeEditLLMOutput{NewCode: code}, nil
	}
}

func searchAndReplacePrompt(in SearchAndReplaceEditLLMInput) []llmtypes.CompletionMessage {
	body := fmt.Sprintf(
		"File %s currently contains:\n```\n%s\n```\nInstruction: %s\n"+
			"Respond with one or more blocks of the form:\n%s\n```\n<<<<<<< SEARCH\n<old lines, exact match>\n=======\n<new lines>\n>>>>>>> REPLACE\n```\n",
		in.FsFilePath, in.FileContent, in.Instruction, in.FsFilePath,
	)
	return []llmtypes.CompletionMessage{
		{Role: llmtypes.RoleSystem, Content: "You propose minimal SEARCH/REPLACE edits. Search blocks must match the file exactly."},
		{Role: llmtypes.RoleUser, Content: body},
	}
}

var searchReplaceBlockRe = regexp.MustCompile(`(?s)<{7} SEARCH\n.*?={7}\n.*?>{7} REPLACE`)

// handleSearchAndReplaceEditLLM implements spec.md §4.B's search-and-replace
// editing tool. The tool returns raw model text unparsed; application of the
// blocks happens downstream. Retries up to 4 times if no block parses.
func handleSearchAndReplaceEditLLM(broker *llmbroker.Broker, observe DeltaObserver) Handler {
	return func(ctx context.Context, input ToolInput) (ToolOutput, error) {
		in, ok := input.(SearchAndReplaceEditLLMInput)
		if !ok {
			return nil, fmt.Errorf("%w: expected SearchAndReplaceEditLLMInput", ErrWrongToolInput)
		}
		props := llmPropertiesFor("anthropic", "", "")
		req := llmtypes.CompletionRequest{Type: llmtypes.ClaudeSonnet, Messages: searchAndReplacePrompt(in)}
		meta := llmbroker.Metadata{RequestID: uuid.NewString(), ToolName: string(SearchAndReplaceEditLLM), Retryable: true}

		for attempt := 1; attempt <= 4; attempt++ {
			text, err := runCompletion(ctx, broker, props, req, meta, SearchAndReplaceEditLLM, observe)
			if err != nil {
				return nil, err
			}
			if searchReplaceBlockRe.MatchString(text) {
				return SearchAndReplaceEditLLMOutput{RawResponse: text}, nil
			}
		}
		return nil, fmt.Errorf("%w: response contained no SEARCH/REPLACE block", llmtypes.ErrDecode)
	}
}

// handleRawLLMTextTool builds a Handler for the plan-step-generator,
// planning-before-code-edit, probe-*, and reasoning tools, all of which
// share the {prompt-in, raw-text-out} shape (spec.md §4.B "various
// reasoning tools").
func handleRawLLMTextTool(broker *llmbroker.Broker, t ToolType, promptFor func(ToolInput) (string, string), wrap func(string) ToolOutput) Handler {
	return func(ctx context.Context, input ToolInput) (ToolOutput, error) {
		system, user := promptFor(input)
		props := llmPropertiesFor("anthropic", "", "")
		req := llmtypes.CompletionRequest{
			Type: llmtypes.ClaudeSonnet,
			Messages: []llmtypes.CompletionMessage{
				{Role: llmtypes.RoleSystem, Content: system},
				{Role: llmtypes.RoleUser, Content: user},
			},
		}
		meta := llmbroker.Metadata{RequestID: uuid.NewString(), ToolName: string(t), Retryable: false}
		text, err := runCompletion(ctx, broker, props, req, meta, t, nil)
		if err != nil {
			return nil, err
		}
		return wrap(text), nil
	}
}
