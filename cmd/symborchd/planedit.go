package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/symborch/core/internal/planservice"
	"github.com/symborch/core/internal/tooldispatch"
	"github.com/symborch/core/internal/toolbox"
)

// planSymbolEditor adapts a Dispatcher+ToolBox pair into planservice's
// SymbolEditor seam. Each FilesToEdit entry in a SymbolToEdit is rewritten
// in full by the code-edit LLM tool and applied as a single whole-file
// replacement; the scratchpad/search loops are responsible for any
// finer-grained per-symbol anchoring, not the plan-level executor.
type planSymbolEditor struct {
	dispatcher *tooldispatch.Dispatcher
	tb         *toolbox.ToolBox
}

func newPlanSymbolEditor(dispatcher *tooldispatch.Dispatcher, tb *toolbox.ToolBox) *planSymbolEditor {
	return &planSymbolEditor{dispatcher: dispatcher, tb: tb}
}

func (e *planSymbolEditor) ExecuteEdit(ctx context.Context, edit planservice.SymbolToEdit) error {
	for _, fsFilePath := range edit.FilesToEdit {
		file, err := e.tb.OpenFile(ctx, fsFilePath)
		if err != nil {
			return fmt.Errorf("opening %s: %w", fsFilePath, err)
		}

		out, err := e.dispatcher.Invoke(ctx, tooldispatch.CodeEditLLMInput{
			CodeToEdit:  file.Contents,
			FsFilePath:  fsFilePath,
			Language:    file.Language,
			Instruction: fmt.Sprintf("%s\n\n%s\n\n%s", edit.Title, edit.Description, edit.Context),
			Model:       edit.Properties.Model,
			Provider:    edit.Properties.Provider,
			APIKey:      edit.Properties.APIKey,
		})
		if err != nil {
			return fmt.Errorf("editing %s: %w", fsFilePath, err)
		}
		newCode := out.(tooldispatch.CodeEditLLMOutput).NewCode

		lines := lineCount(file.Contents)
		_, err = e.dispatcher.Invoke(ctx, tooldispatch.EditorApplyEditsInput{
			FsFilePath: fsFilePath,
			Edits: []tooldispatch.Edit{{
				Range: tooldispatch.Range{
					Start: tooldispatch.Position{Line: 0, Character: 0, ByteOffset: 0},
					End:   tooldispatch.Position{Line: lines, Character: 0, ByteOffset: len(file.Contents)},
				},
				NewText: newCode,
			}},
		})
		if err != nil {
			return fmt.Errorf("applying edit to %s: %w", fsFilePath, err)
		}
	}
	if stats, err := e.tb.DiffStatistics(ctx, edit.FilesToEdit); err == nil {
		for _, s := range stats {
			slog.Default().With("component", "planedit").Info("step edit diff",
				"fs_file_path", s.FsFilePath, "insertions", s.LineInsertions, "deletions", s.LineDeletions)
		}
	}
	return nil
}

func lineCount(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
