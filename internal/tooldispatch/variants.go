package tooldispatch

// Each pair below is one ToolInput/ToolOutput variant, carrying exactly the
// fields that tool consumes/produces (spec.md "Core entities").

type OpenFileInput struct{ FsFilePath string }

func (OpenFileInput) ToolType() ToolType { return OpenFile }

type OpenFileOutput struct {
	FsFilePath string
	Contents   string
	Language   string
	Exists     bool
}

func (OpenFileOutput) ToolType() ToolType { return OpenFile }

type FindInFileInput struct {
	FileContent string
	Symbol      string
}

func (FindInFileInput) ToolType() ToolType { return FindInFile }

type FindInFileOutput struct{ Position *Position }

func (FindInFileOutput) ToolType() ToolType { return FindInFile }

type positionedInput struct {
	FsFilePath string
	Position   Position
}

type GoToDefinitionInput struct{ positionedInput }

func (GoToDefinitionInput) ToolType() ToolType { return GoToDefinition }

type Location struct {
	FsFilePath string
	Range      Range
}

type GoToDefinitionOutput struct{ Definitions []Location }

func (GoToDefinitionOutput) ToolType() ToolType { return GoToDefinition }

type GoToImplementationInput struct{ positionedInput }

func (GoToImplementationInput) ToolType() ToolType { return GoToImplementation }

type GoToImplementationOutput struct{ Implementations []Location }

func (GoToImplementationOutput) ToolType() ToolType { return GoToImplementation }

type GoToReferencesInput struct{ positionedInput }

func (GoToReferencesInput) ToolType() ToolType { return GoToReferences }

type GoToReferencesOutput struct{ References []Location }

func (GoToReferencesOutput) ToolType() ToolType { return GoToReferences }

type GoToTypeDefinitionInput struct{ positionedInput }

func (GoToTypeDefinitionInput) ToolType() ToolType { return GoToTypeDefinition }

type GoToTypeDefinitionOutput struct{ Definitions []Location }

func (GoToTypeDefinitionOutput) ToolType() ToolType { return GoToTypeDefinition }

type GoToPreviousWordInput struct{ positionedInput }

func (GoToPreviousWordInput) ToolType() ToolType { return GoToPreviousWord }

type GoToPreviousWordOutput struct {
	Word     string
	Position Position
}

func (GoToPreviousWordOutput) ToolType() ToolType { return GoToPreviousWord }

type LSPDiagnosticsInput struct{ FsFilePaths []string }

func (LSPDiagnosticsInput) ToolType() ToolType { return LSPDiagnostics }

type Diagnostic struct {
	FsFilePath string
	Range      Range
	Message    string
	Snippet    string
}

type LSPDiagnosticsOutput struct{ Diagnostics []Diagnostic }

func (LSPDiagnosticsOutput) ToolType() ToolType { return LSPDiagnostics }

type GetQuickFixListInput struct {
	FsFilePath string
	Range      Range
}

func (GetQuickFixListInput) ToolType() ToolType { return GetQuickFixList }

type QuickFix struct {
	ID          string
	Label       string
	Description string
}

type GetQuickFixListOutput struct{ QuickFixes []QuickFix }

func (GetQuickFixListOutput) ToolType() ToolType { return GetQuickFixList }

type ApplyQuickFixInput struct {
	FsFilePath string
	QuickFixID string
}

func (ApplyQuickFixInput) ToolType() ToolType { return ApplyQuickFix }

type ApplyQuickFixOutput struct{ Applied bool }

func (ApplyQuickFixOutput) ToolType() ToolType { return ApplyQuickFix }

type Edit struct {
	Range   Range
	NewText string
}

type EditorApplyEditsInput struct {
	FsFilePath string
	Edits      []Edit
}

func (EditorApplyEditsInput) ToolType() ToolType { return EditorApplyEdits }

type EditorApplyEditsOutput struct{ Applied bool }

func (EditorApplyEditsOutput) ToolType() ToolType { return EditorApplyEdits }

type CreateFileInput struct{ FsFilePath string }

func (CreateFileInput) ToolType() ToolType { return CreateFile }

type CreateFileOutput struct {
	Done       bool
	FsFilePath string
}

func (CreateFileOutput) ToolType() ToolType { return CreateFile }

type ListFilesInput struct{ Directory string }

func (ListFilesInput) ToolType() ToolType { return ListFiles }

type ListFilesOutput struct{ FsFilePaths []string }

func (ListFilesOutput) ToolType() ToolType { return ListFiles }

// RegexSearchInput drives the ripgrep-backed search described in spec.md
// §4.B ("Regex search tool").
type RegexSearchInput struct {
	Pattern   string
	Glob      string
	Directory string
}

func (RegexSearchInput) ToolType() ToolType { return RegexSearch }

// RegexMatch is one grouped match with its surrounding context lines.
type RegexMatch struct {
	FsFilePath  string
	LineNumber  int
	MatchLine   string
	ContextPre  []string
	ContextPost []string
}

type RegexSearchOutput struct {
	Matches   []RegexMatch
	Truncated bool
}

func (RegexSearchOutput) ToolType() ToolType { return RegexSearch }

// CodeEditLLMInput is the code-edit tool contract from spec.md §4.B.
type CodeEditLLMInput struct {
	AboveContext    string
	BelowContext    string
	CodeToEdit      string
	FsFilePath      string
	ExtraContext    string
	Language        string
	Instruction     string
	Model           string
	Provider        string
	APIKey          string
	IsNewSubSymbol  bool
	IsOutlineEdit   bool
}

func (CodeEditLLMInput) ToolType() ToolType { return CodeEditLLM }

type CodeEditLLMOutput struct{ NewCode string }

func (CodeEditLLMOutput) ToolType() ToolType { return CodeEditLLM }

// SearchAndReplaceEditLLMInput asks the model for SEARCH/REPLACE blocks; the
// tool returns raw text, application is downstream (spec.md §4.B).
type SearchAndReplaceEditLLMInput struct {
	FsFilePath  string
	FileContent string
	Instruction string
}

func (SearchAndReplaceEditLLMInput) ToolType() ToolType { return SearchAndReplaceEditLLM }

type SearchAndReplaceEditLLMOutput struct{ RawResponse string }

func (SearchAndReplaceEditLLMOutput) ToolType() ToolType { return SearchAndReplaceEditLLM }

// CodeSpan is one candidate snippet competing for a rerank slot. Hash
// uniquely identifies the span across a rerank call (spec.md §4.F "code
// spans with unique hashes").
type CodeSpan struct {
	Hash       string
	FsFilePath string
	Content    string
}

type RerankCodeSnippetsInput struct {
	Query    string
	Spans    []CodeSpan
	Strategy string // "listwise" or "pointwise"
	Limit    int
}

func (RerankCodeSnippetsInput) ToolType() ToolType { return RerankCodeSnippets }

type RerankCodeSnippetsOutput struct{ Ranked []CodeSpan }

func (RerankCodeSnippetsOutput) ToolType() ToolType { return RerankCodeSnippets }

type FilterCodeSnippetsForEditingInput struct {
	Query string
	Spans []CodeSpan
}

func (FilterCodeSnippetsForEditingInput) ToolType() ToolType { return FilterCodeSnippetsForEditing }

type FilterCodeSnippetsForEditingOutput struct{ Kept []CodeSpan }

func (FilterCodeSnippetsForEditingOutput) ToolType() ToolType { return FilterCodeSnippetsForEditing }

type PlanStepGeneratorInput struct {
	UserQuery   string
	UserContext string
}

func (PlanStepGeneratorInput) ToolType() ToolType { return PlanStepGenerator }

type PlanStepGeneratorOutput struct{ RawResponse string }

func (PlanStepGeneratorOutput) ToolType() ToolType { return PlanStepGenerator }

type PlanningBeforeCodeEditInput struct {
	StepTitle       string
	StepDescription string
	UserContext     string
}

func (PlanningBeforeCodeEditInput) ToolType() ToolType { return PlanningBeforeCodeEdit }

type PlanningBeforeCodeEditOutput struct{ RawResponse string }

func (PlanningBeforeCodeEditOutput) ToolType() ToolType { return PlanningBeforeCodeEdit }

// probeInput/probeOutput cover the probe-* reasoning family, which all share
// the same {question-in, raw-answer-out} shape over different vantage points
// into the codebase.
type probeInput struct {
	Question    string
	SymbolName  string
	UserContext string
}

type probeOutput struct{ RawResponse string }

type ProbeQuestionInput struct{ probeInput }

func (ProbeQuestionInput) ToolType() ToolType { return ProbeQuestion }

type ProbeQuestionOutput struct{ probeOutput }

func (ProbeQuestionOutput) ToolType() ToolType { return ProbeQuestion }

type ProbeSubSymbolInput struct{ probeInput }

func (ProbeSubSymbolInput) ToolType() ToolType { return ProbeSubSymbol }

type ProbeSubSymbolOutput struct{ probeOutput }

func (ProbeSubSymbolOutput) ToolType() ToolType { return ProbeSubSymbol }

type ProbeEnoughOrDeeperInput struct{ probeInput }

func (ProbeEnoughOrDeeperInput) ToolType() ToolType { return ProbeEnoughOrDeeper }

type ProbeEnoughOrDeeperOutput struct{ probeOutput }

func (ProbeEnoughOrDeeperOutput) ToolType() ToolType { return ProbeEnoughOrDeeper }

type ProbePossibleInput struct{ probeInput }

func (ProbePossibleInput) ToolType() ToolType { return ProbePossible }

type ProbePossibleOutput struct{ probeOutput }

func (ProbePossibleOutput) ToolType() ToolType { return ProbePossible }

type ProbeFollowAlongSymbolInput struct{ probeInput }

func (ProbeFollowAlongSymbolInput) ToolType() ToolType { return ProbeFollowAlongSymbol }

type ProbeFollowAlongSymbolOutput struct{ probeOutput }

func (ProbeFollowAlongSymbolOutput) ToolType() ToolType { return ProbeFollowAlongSymbol }

type ReasoningExplainCodeInput struct {
	CodeSpan CodeSpan
	Question string
}

func (ReasoningExplainCodeInput) ToolType() ToolType { return ReasoningExplainCode }

type ReasoningExplainCodeOutput struct{ RawResponse string }

func (ReasoningExplainCodeOutput) ToolType() ToolType { return ReasoningExplainCode }

// RepoMapSearchInput drives the "wide search" importance-ranking tool
// (spec.md's domain precedent for "big search" over an unindexed codebase):
// given a user query and a set of candidate files the editor's local index
// already turned up, ask the model which of them actually matter.
type RepoMapSearchInput struct {
	UserQuery   string
	UserContext string
	Candidates  []string
}

func (RepoMapSearchInput) ToolType() ToolType { return RepoMapSearch }

type RepoMapSearchOutput struct {
	Thinking       string
	ImportantFiles []string
}

func (RepoMapSearchOutput) ToolType() ToolType { return RepoMapSearch }

// CodeCorrectnessActionSelectionInput asks the model to choose which of the
// editor's quick-fix actions (if any) resolves a diagnostic raised against a
// just-applied edit.
type CodeCorrectnessActionSelectionInput struct {
	FsFilePath   string
	Instruction  string
	PreviousCode string
	Diagnostics  []Diagnostic
	QuickFixes   []QuickFix
}

func (CodeCorrectnessActionSelectionInput) ToolType() ToolType { return CodeCorrectnessActionSelection }

// CodeCorrectnessActionSelectionOutput carries the model's chosen index into
// the input's QuickFixes slice. Index is -1 when the model decides none of
// the offered quick fixes resolve the diagnostic.
type CodeCorrectnessActionSelectionOutput struct {
	Thinking string
	Index    int
}

func (CodeCorrectnessActionSelectionOutput) ToolType() ToolType {
	return CodeCorrectnessActionSelection
}

// TestCorrectionInput asks the model to rewrite a file's code so that a
// failing test's output no longer reproduces, given the file's current
// content and the test runner's output.
type TestCorrectionInput struct {
	FsFilePath  string
	FileContent string
	TestOutput  string
	Instruction string
}

func (TestCorrectionInput) ToolType() ToolType { return TestCorrection }

type TestCorrectionOutput struct{ NewCode string }

func (TestCorrectionOutput) ToolType() ToolType { return TestCorrection }
