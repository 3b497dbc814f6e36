package tooldispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/symborch/core/internal/editorrpc"
	"github.com/symborch/core/internal/llmbroker"
	"github.com/symborch/core/internal/llmtypes"
	"github.com/symborch/core/internal/rerank"
)

// brokerCaller adapts llmbroker.Broker to rerank.Caller, letting the
// rerank package stay free of llmbroker's wire types.
type brokerCaller struct {
	broker *llmbroker.Broker
	props  llmtypes.LlmProperties
	tool   ToolType
}

func (c brokerCaller) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := llmtypes.CompletionRequest{
		Type: c.props.Type,
		Messages: []llmtypes.CompletionMessage{
			{Role: llmtypes.RoleSystem, Content: systemPrompt},
			{Role: llmtypes.RoleUser, Content: userPrompt},
		},
	}
	meta := llmbroker.Metadata{RequestID: uuid.NewString(), ToolName: string(c.tool), Retryable: true}
	sink := make(chan llmtypes.CompletionResponseDelta, 8)
	go func() {
		for range sink {
		}
	}()
	text, err := c.broker.StreamCompletion(ctx, c.props, req, meta, sink)
	close(sink)
	return text, err
}

// defaultListwiseTokenBudget is the budget the RerankCodeSnippets handler
// passes to rerank.Listwise on every call. NewDispatcher takes no config, so
// internal/config's ListwiseTokenBudget is not applied here.
const defaultListwiseTokenBudget = 4000

func toRerankSpans(spans []CodeSpan) []rerank.Span {
	out := make([]rerank.Span, 0, len(spans))
	for _, s := range spans {
		out = append(out, rerank.Span{Hash: s.Hash, FsFilePath: s.FsFilePath, Content: s.Content})
	}
	return out
}

func fromRerankSpans(spans []rerank.Span) []CodeSpan {
	out := make([]CodeSpan, 0, len(spans))
	for _, s := range spans {
		out = append(out, CodeSpan{Hash: s.Hash, FsFilePath: s.FsFilePath, Content: s.Content})
	}
	return out
}

var noOpTokenizer = countTokenizer{}

// countTokenizer estimates tokens as len(text)/4. The RerankCodeSnippets
// handler always uses it: NewDispatcher builds no rerank.TiktokenCounter, and
// internal/config's TokenizerEncoding is not passed through.
type countTokenizer struct{}

func (countTokenizer) Count(text string) int { return len(text) / 4 }

func toRPCRange(r Range) editorrpc.Range {
	return editorrpc.Range{
		Start: editorrpc.Position(r.Start),
		End:   editorrpc.Position(r.End),
	}
}

func fromRPCRange(r editorrpc.Range) Range {
	return Range{Start: Position(r.Start), End: Position(r.End)}
}

func fromRPCLocations(locs []editorrpc.Location) []Location {
	out := make([]Location, 0, len(locs))
	for _, l := range locs {
		out = append(out, Location{FsFilePath: l.FsFilePath, Range: fromRPCRange(l.Range)})
	}
	return out
}

// NewDispatcher wires every ToolType to a concrete handler: editor-backed
// tools call editor over HTTP, LLM tools call broker, and the regex search
// tool shells out to the editor-provided ripgrep binary. Panics if any
// ToolType is left unregistered (see Dispatcher.assertTotal).
func NewDispatcher(editor *editorrpc.Client, broker *llmbroker.Broker, observe DeltaObserver, logger *slog.Logger) *Dispatcher {
	d := newDispatcher(logger)

	d.register(OpenFile, Descriptor{Description: "Open a file and return its contents.", InputFormat: "{fs_file_path}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(OpenFileInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected OpenFileInput", ErrWrongToolInput)
			}
			resp, err := editor.FileOpen(ctx, in.FsFilePath)
			if err != nil {
				return nil, err
			}
			return OpenFileOutput{FsFilePath: resp.FsFilePath, Contents: resp.Contents, Language: resp.Language, Exists: resp.Exists}, nil
		})

	d.register(FindInFile, Descriptor{Description: "Find a symbol's position inside already-loaded file content.", InputFormat: "{file_content, symbol}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(FindInFileInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected FindInFileInput", ErrWrongToolInput)
			}
			resp, err := editor.FindInFile(ctx, in.FileContent, in.Symbol)
			if err != nil {
				return nil, err
			}
			var pos *Position
			if resp.Position != nil {
				p := Position(*resp.Position)
				pos = &p
			}
			return FindInFileOutput{Position: pos}, nil
		})

	d.register(GoToDefinition, Descriptor{Description: "Resolve the definition(s) of the symbol at a position.", InputFormat: "{fs_file_path, position}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(GoToDefinitionInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected GoToDefinitionInput", ErrWrongToolInput)
			}
			resp, err := editor.GoToDefinition(ctx, in.FsFilePath, editorrpc.Position(in.Position))
			if err != nil {
				return nil, err
			}
			return GoToDefinitionOutput{Definitions: fromRPCLocations(resp.Definitions)}, nil
		})

	d.register(GoToImplementation, Descriptor{Description: "Resolve the implementation(s) of the symbol at a position.", InputFormat: "{fs_file_path, position}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(GoToImplementationInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected GoToImplementationInput", ErrWrongToolInput)
			}
			resp, err := editor.GoToImplementation(ctx, in.FsFilePath, editorrpc.Position(in.Position))
			if err != nil {
				return nil, err
			}
			return GoToImplementationOutput{Implementations: fromRPCLocations(resp.Implementations)}, nil
		})

	d.register(GoToReferences, Descriptor{Description: "Resolve the references of the symbol at a position.", InputFormat: "{fs_file_path, position}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(GoToReferencesInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected GoToReferencesInput", ErrWrongToolInput)
			}
			resp, err := editor.GoToReferences(ctx, in.FsFilePath, editorrpc.Position(in.Position))
			if err != nil {
				return nil, err
			}
			return GoToReferencesOutput{References: fromRPCLocations(resp.References)}, nil
		})

	d.register(GoToTypeDefinition, Descriptor{Description: "Resolve the type definition of the symbol at a position.", InputFormat: "{fs_file_path, position}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(GoToTypeDefinitionInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected GoToTypeDefinitionInput", ErrWrongToolInput)
			}
			resp, err := editor.GoToTypeDefinition(ctx, in.FsFilePath, editorrpc.Position(in.Position))
			if err != nil {
				return nil, err
			}
			return GoToTypeDefinitionOutput{Definitions: fromRPCLocations(resp.Definitions)}, nil
		})

	d.register(GoToPreviousWord, Descriptor{Description: "Resolve the word immediately preceding a position.", InputFormat: "{fs_file_path, position}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(GoToPreviousWordInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected GoToPreviousWordInput", ErrWrongToolInput)
			}
			resp, err := editor.GoToPreviousWord(ctx, in.FsFilePath, editorrpc.Position(in.Position))
			if err != nil {
				return nil, err
			}
			return GoToPreviousWordOutput{Word: resp.Word, Position: Position(resp.Position)}, nil
		})

	d.register(LSPDiagnostics, Descriptor{Description: "Fetch LSP diagnostics for a set of files.", InputFormat: "{fs_file_paths}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(LSPDiagnosticsInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected LSPDiagnosticsInput", ErrWrongToolInput)
			}
			resp, err := editor.Diagnostics(ctx, in.FsFilePaths)
			if err != nil {
				return nil, err
			}
			out := make([]Diagnostic, 0, len(resp.Diagnostics))
			for _, diag := range resp.Diagnostics {
				out = append(out, Diagnostic{FsFilePath: diag.FsFilePath, Range: fromRPCRange(diag.Range), Message: diag.Message, Snippet: diag.Snippet})
			}
			return LSPDiagnosticsOutput{Diagnostics: out}, nil
		})

	d.register(GetQuickFixList, Descriptor{Description: "List quick fixes available at a range.", InputFormat: "{fs_file_path, range}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(GetQuickFixListInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected GetQuickFixListInput", ErrWrongToolInput)
			}
			resp, err := editor.QuickFixList(ctx, in.FsFilePath, toRPCRange(in.Range))
			if err != nil {
				return nil, err
			}
			out := make([]QuickFix, 0, len(resp.QuickFixes))
			for _, qf := range resp.QuickFixes {
				out = append(out, QuickFix(qf))
			}
			return GetQuickFixListOutput{QuickFixes: out}, nil
		})

	d.register(ApplyQuickFix, Descriptor{Description: "Apply a previously listed quick fix.", InputFormat: "{fs_file_path, quick_fix_id}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(ApplyQuickFixInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected ApplyQuickFixInput", ErrWrongToolInput)
			}
			resp, err := editor.QuickFixApply(ctx, in.FsFilePath, in.QuickFixID)
			if err != nil {
				return nil, err
			}
			return ApplyQuickFixOutput{Applied: resp.Applied}, nil
		})

	d.register(EditorApplyEdits, Descriptor{Description: "Apply a batch of textual edits to a file.", InputFormat: "{fs_file_path, edits}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(EditorApplyEditsInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected EditorApplyEditsInput", ErrWrongToolInput)
			}
			edits := make([]editorrpc.Edit, 0, len(in.Edits))
			for _, e := range in.Edits {
				edits = append(edits, editorrpc.Edit{Range: toRPCRange(e.Range), NewText: e.NewText})
			}
			resp, err := editor.ApplyEdits(ctx, in.FsFilePath, edits)
			if err != nil {
				return nil, err
			}
			return EditorApplyEditsOutput{Applied: resp.Applied}, nil
		})

	d.register(CreateFile, Descriptor{Description: "Create an empty file.", InputFormat: "{fs_file_path}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(CreateFileInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected CreateFileInput", ErrWrongToolInput)
			}
			resp, err := editor.CreateFile(ctx, in.FsFilePath)
			if err != nil {
				return nil, err
			}
			return CreateFileOutput{Done: resp.Done, FsFilePath: resp.FsFilePath}, nil
		})

	d.register(ListFiles, Descriptor{Description: "List files under a directory known to the editor's project index.", InputFormat: "{directory}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(ListFilesInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected ListFilesInput", ErrWrongToolInput)
			}
			resp, err := editor.ListFiles(ctx, in.Directory)
			if err != nil {
				return nil, err
			}
			return ListFilesOutput{FsFilePaths: resp.FsFilePaths}, nil
		})

	d.register(RegexSearch, Descriptor{Description: "Regex search a directory via the editor's ripgrep binary.", InputFormat: "{pattern, glob, directory}"},
		handleRegexSearch(editor))

	d.register(CodeEditLLM, Descriptor{Description: "Rewrite a code span per an instruction.", InputFormat: "{code_to_edit, instruction, ...}"},
		handleCodeEditLLM(broker, observe))

	d.register(SearchAndReplaceEditLLM, Descriptor{Description: "Propose SEARCH/REPLACE edit blocks for a file.", InputFormat: "{fs_file_path, file_content, instruction}"},
		handleSearchAndReplaceEditLLM(broker, observe))

	// rerank/filter delegate their actual strategy to the rerank package;
	// the dispatcher entry here only adapts tagged-variant I/O to its
	// Caller-based API.
	d.register(RerankCodeSnippets, Descriptor{Description: "Rerank code snippets against a query.", InputFormat: "{query, spans, strategy, limit}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(RerankCodeSnippetsInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected RerankCodeSnippetsInput", ErrWrongToolInput)
			}
			spans := toRerankSpans(in.Spans)
			caller := brokerCaller{broker: broker, props: llmPropertiesFor("anthropic", "", string(llmtypes.ClaudeSonnet)), tool: RerankCodeSnippets}
			switch in.Strategy {
			case "pointwise":
				ranked, err := rerank.Pointwise(ctx, in.Query, spans, in.Limit, caller)
				if err != nil {
					return nil, err
				}
				return RerankCodeSnippetsOutput{Ranked: fromRerankSpans(ranked)}, nil
			default:
				ranked, _, err := rerank.Listwise(ctx, in.Query, spans, noOpTokenizer, defaultListwiseTokenBudget, in.Limit, caller)
				if err != nil {
					return nil, err
				}
				return RerankCodeSnippetsOutput{Ranked: fromRerankSpans(ranked)}, nil
			}
		})

	d.register(FilterCodeSnippetsForEditing, Descriptor{Description: "Filter code snippets worth editing for a query.", InputFormat: "{query, spans}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(FilterCodeSnippetsForEditingInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected FilterCodeSnippetsForEditingInput", ErrWrongToolInput)
			}
			caller := brokerCaller{broker: broker, props: llmPropertiesFor("anthropic", "", string(llmtypes.ClaudeSonnet)), tool: FilterCodeSnippetsForEditing}
			decisions, err := rerank.FilterForEditing(ctx, in.Query, toRerankSpans(in.Spans), caller)
			if err != nil {
				return nil, err
			}
			var kept []CodeSpan
			for _, d := range decisions {
				if d.Edit {
					kept = append(kept, CodeSpan{FsFilePath: d.Span.FsFilePath, Content: d.Span.Content})
				}
			}
			return FilterCodeSnippetsForEditingOutput{Kept: kept}, nil
		})

	d.register(PlanStepGenerator, Descriptor{Description: "Generate plan steps for a user query over a codebase.", InputFormat: "{user_query, user_context}"},
		handleRawLLMTextTool(broker, PlanStepGenerator,
			func(input ToolInput) (string, string) {
				in := input.(PlanStepGeneratorInput)
				return "You decompose a coding task into an ordered list of concrete steps, each naming the files it touches.",
					fmt.Sprintf("User query: %s\n\nContext:\n%s", in.UserQuery, in.UserContext)
			},
			func(text string) ToolOutput { return PlanStepGeneratorOutput{RawResponse: text} }))

	d.register(PlanningBeforeCodeEdit, Descriptor{Description: "Plan an approach for a single step before generating its edit.", InputFormat: "{step_title, step_description, user_context}"},
		handleRawLLMTextTool(broker, PlanningBeforeCodeEdit,
			func(input ToolInput) (string, string) {
				in := input.(PlanningBeforeCodeEditInput)
				return "You think through how to implement one plan step before writing the edit.",
					fmt.Sprintf("Step: %s\n%s\n\nContext:\n%s", in.StepTitle, in.StepDescription, in.UserContext)
			},
			func(text string) ToolOutput { return PlanningBeforeCodeEditOutput{RawResponse: text} }))

	registerProbeTool(d, broker, ProbeQuestion, "You answer a direct question about the codebase using the given context.",
		func(input ToolInput) probeInput { return input.(ProbeQuestionInput).probeInput },
		func(out probeOutput) ToolOutput { return ProbeQuestionOutput{probeOutput: out} })
	registerProbeTool(d, broker, ProbeSubSymbol, "You decide which sub-symbol within a symbol is relevant to a question.",
		func(input ToolInput) probeInput { return input.(ProbeSubSymbolInput).probeInput },
		func(out probeOutput) ToolOutput { return ProbeSubSymbolOutput{probeOutput: out} })
	registerProbeTool(d, broker, ProbeEnoughOrDeeper, "You decide whether enough context has been gathered or probing should go deeper.",
		func(input ToolInput) probeInput { return input.(ProbeEnoughOrDeeperInput).probeInput },
		func(out probeOutput) ToolOutput { return ProbeEnoughOrDeeperOutput{probeOutput: out} })
	registerProbeTool(d, broker, ProbePossible, "You decide whether a proposed approach is feasible given the context.",
		func(input ToolInput) probeInput { return input.(ProbePossibleInput).probeInput },
		func(out probeOutput) ToolOutput { return ProbePossibleOutput{probeOutput: out} })
	registerProbeTool(d, broker, ProbeFollowAlongSymbol, "You decide which related symbol to follow next while probing.",
		func(input ToolInput) probeInput { return input.(ProbeFollowAlongSymbolInput).probeInput },
		func(out probeOutput) ToolOutput { return ProbeFollowAlongSymbolOutput{probeOutput: out} })

	d.register(ReasoningExplainCode, Descriptor{Description: "Explain a code span in response to a question.", InputFormat: "{code_span, question}"},
		handleRawLLMTextTool(broker, ReasoningExplainCode,
			func(input ToolInput) (string, string) {
				in := input.(ReasoningExplainCodeInput)
				return "You explain code clearly and concisely.",
					fmt.Sprintf("File: %s\n```\n%s\n```\n\nQuestion: %s", in.CodeSpan.FsFilePath, in.CodeSpan.Content, in.Question)
			},
			func(text string) ToolOutput { return ReasoningExplainCodeOutput{RawResponse: text} }))

	d.register(RepoMapSearch, Descriptor{Description: "Rank candidate files by importance to a user query, wide-search style.", InputFormat: "{user_query, user_context, candidates}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(RepoMapSearchInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected RepoMapSearchInput", ErrWrongToolInput)
			}
			prompt := repoMapSearchPrompt(in)
			props := llmPropertiesFor("anthropic", "", "")
			req := llmtypes.CompletionRequest{
				Type: llmtypes.ClaudeSonnet,
				Messages: []llmtypes.CompletionMessage{
					{Role: llmtypes.RoleSystem, Content: prompt[0]},
					{Role: llmtypes.RoleUser, Content: prompt[1]},
				},
			}
			meta := llmbroker.Metadata{RequestID: uuid.NewString(), ToolName: string(RepoMapSearch), Retryable: false}
			text, err := runCompletion(ctx, broker, props, req, meta, RepoMapSearch, observe)
			if err != nil {
				return nil, err
			}
			return parseRepoMapSearch(text)
		})

	d.register(CodeCorrectnessActionSelection, Descriptor{Description: "Choose which offered quick fix (if any) resolves a post-edit diagnostic.", InputFormat: "{fs_file_path, instruction, previous_code, diagnostics, quick_fixes}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(CodeCorrectnessActionSelectionInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected CodeCorrectnessActionSelectionInput", ErrWrongToolInput)
			}
			prompt := codeCorrectnessActionPrompt(in)
			props := llmPropertiesFor("anthropic", "", "")
			req := llmtypes.CompletionRequest{
				Type: llmtypes.ClaudeSonnet,
				Messages: []llmtypes.CompletionMessage{
					{Role: llmtypes.RoleSystem, Content: prompt[0]},
					{Role: llmtypes.RoleUser, Content: prompt[1]},
				},
			}
			meta := llmbroker.Metadata{RequestID: uuid.NewString(), ToolName: string(CodeCorrectnessActionSelection), Retryable: false}
			text, err := runCompletion(ctx, broker, props, req, meta, CodeCorrectnessActionSelection, observe)
			if err != nil {
				return nil, err
			}
			return parseCodeCorrectnessAction(text)
		})

	d.register(TestCorrection, Descriptor{Description: "Rewrite a file so a failing test's output no longer reproduces.", InputFormat: "{fs_file_path, file_content, test_output, instruction}"},
		func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in, ok := input.(TestCorrectionInput)
			if !ok {
				return nil, fmt.Errorf("%w: expected TestCorrectionInput", ErrWrongToolInput)
			}
			prompt := testCorrectionPrompt(in)
			props := llmPropertiesFor("anthropic", "", "")
			req := llmtypes.CompletionRequest{
				Type: llmtypes.ClaudeSonnet,
				Messages: []llmtypes.CompletionMessage{
					{Role: llmtypes.RoleSystem, Content: prompt[0]},
					{Role: llmtypes.RoleUser, Content: prompt[1]},
				},
			}
			meta := llmbroker.Metadata{RequestID: uuid.NewString(), ToolName: string(TestCorrection), Retryable: true}
			text, err := runCompletion(ctx, broker, props, req, meta, TestCorrection, observe)
			if err != nil {
				return nil, err
			}
			code, ok := extractCodeBlock(text)
			if !ok {
				return nil, fmt.Errorf("%w: test-correction response had no <code_edited> block", llmtypes.ErrDecode)
			}
			return TestCorrectionOutput{NewCode: code}, nil
		})

	d.assertTotal()
	return d
}

func registerProbeTool(d *Dispatcher, broker *llmbroker.Broker, t ToolType, system string, unwrap func(ToolInput) probeInput, wrap func(probeOutput) ToolOutput) {
	d.register(t, Descriptor{Description: system, InputFormat: "{question, symbol_name, user_context}"},
		handleRawLLMTextTool(broker, t,
			func(input ToolInput) (string, string) {
				in := unwrap(input)
				return system, fmt.Sprintf("Symbol: %s\nQuestion: %s\n\nContext:\n%s", in.SymbolName, in.Question, in.UserContext)
			},
			func(text string) ToolOutput { return wrap(probeOutput{RawResponse: text}) }))
}
