package tooldispatch

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/symborch/core/internal/llmtypes"
)

type repoMapXML struct {
	XMLName  xml.Name `xml:"reply"`
	Thinking string   `xml:"thinking"`
	Files    []string `xml:"important_files>file"`
}

// parseRepoMapSearch extracts the <reply>...</reply> fragment the
// repo-map-search prompt asks for: a thinking trace plus the subset of
// candidate files the model judges important.
func parseRepoMapSearch(resp string) (RepoMapSearchOutput, error) {
	start := strings.Index(resp, "<reply>")
	end := strings.LastIndex(resp, "</reply>")
	if start == -1 || end == -1 || end < start {
		return RepoMapSearchOutput{}, fmt.Errorf("%w: no <reply> fragment in repo-map-search response", llmtypes.ErrDecode)
	}
	var parsed repoMapXML
	if err := xml.Unmarshal([]byte(resp[start:end+len("</reply>")]), &parsed); err != nil {
		return RepoMapSearchOutput{}, fmt.Errorf("tooldispatch: parsing repo-map-search <reply>: %w", err)
	}
	return RepoMapSearchOutput{Thinking: parsed.Thinking, ImportantFiles: parsed.Files}, nil
}

func repoMapSearchPrompt(in RepoMapSearchInput) []string {
	var b strings.Builder
	fmt.Fprintf(&b, "User query: %s\n\nContext:\n%s\n\nCandidate files:\n", in.UserQuery, in.UserContext)
	for _, c := range in.Candidates {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nReply with <reply><thinking>...</thinking><important_files><file>path</file>...</important_files></reply>, " +
		"naming only the candidates that actually matter to the query.")
	return []string{
		"You decide which files in a large, unfamiliar codebase are important to a user's query, the way a developer " +
			"skims a repo map before diving in. Favor precision: omit a candidate unless it is plausibly relevant.",
		b.String(),
	}
}

type correctnessXML struct {
	XMLName  xml.Name `xml:"reply"`
	Thinking string   `xml:"thinking"`
	Index    string   `xml:"index"`
}

// noFixIndex is the sentinel CodeCorrectnessActionSelectionOutput.Index takes
// when the model decides no offered quick fix resolves the diagnostic. The
// original tool's index field has no explicit "none" variant; -1 is chosen
// here since QuickFixes is always a zero-based slice, so -1 can never
// collide with a real selection.
const noFixIndex = -1

// parseCodeCorrectnessAction extracts the <reply><thinking>/<index></reply>
// fragment the correctness-action-selection prompt asks for.
func parseCodeCorrectnessAction(resp string) (CodeCorrectnessActionSelectionOutput, error) {
	start := strings.Index(resp, "<reply>")
	end := strings.LastIndex(resp, "</reply>")
	if start == -1 || end == -1 || end < start {
		return CodeCorrectnessActionSelectionOutput{}, fmt.Errorf("%w: no <reply> fragment in correctness-action response", llmtypes.ErrDecode)
	}
	var parsed correctnessXML
	if err := xml.Unmarshal([]byte(resp[start:end+len("</reply>")]), &parsed); err != nil {
		return CodeCorrectnessActionSelectionOutput{}, fmt.Errorf("tooldispatch: parsing correctness-action <reply>: %w", err)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(parsed.Index))
	if err != nil {
		idx = noFixIndex
	}
	return CodeCorrectnessActionSelectionOutput{Thinking: parsed.Thinking, Index: idx}, nil
}

func codeCorrectnessActionPrompt(in CodeCorrectnessActionSelectionInput) []string {
	var b strings.Builder
	fmt.Fprintf(&b, "File %s failed to satisfy its instruction after editing:\n%s\n\n", in.FsFilePath, in.Instruction)
	fmt.Fprintf(&b, "Resulting code:\n```\n%s\n```\n\n", in.PreviousCode)
	b.WriteString("Diagnostics:\n")
	for _, d := range in.Diagnostics {
		fmt.Fprintf(&b, "- %s: %s\n", d.FsFilePath, d.Message)
	}
	b.WriteString("\nAvailable quick fixes:\n")
	for i, qf := range in.QuickFixes {
		fmt.Fprintf(&b, "%d: %s — %s\n", i, qf.Label, qf.Description)
	}
	b.WriteString("\nReply with <reply><thinking>...</thinking><index>N</index></reply>, N the chosen quick fix's " +
		"zero-based position above, or -1 if none of them resolve the diagnostics.")
	return []string{
		"You decide which, if any, of the editor's offered quick fixes resolves a diagnostic raised by a just-applied " +
			"code edit.",
		b.String(),
	}
}

func testCorrectionPrompt(in TestCorrectionInput) []string {
	body := fmt.Sprintf(
		"File %s currently contains:\n```\n%s\n```\nRunning its tests produced:\n```\n%s\n```\nInstruction: %s\n"+
			"Wrap the corrected file contents in <code_edited>...```\n...\n```...</code_edited>.\n",
		in.FsFilePath, in.FileContent, in.TestOutput, in.Instruction,
	)
	return []string{
		"You fix a file's code so that a failing test's output no longer reproduces, changing as little as possible.",
		body,
	}
}
