package main

import (
	"context"
	"fmt"

	"github.com/symborch/core/internal/scratchpad"
	"github.com/symborch/core/internal/symbols"
	"github.com/symborch/core/internal/tooldispatch"
	"github.com/symborch/core/internal/toolbox"
)

// symbolEditRequester implements scratchpad.EditRequester: resolve the
// symbol's snippet through the Locker (spawning or reusing its actor),
// rewrite it through the code-edit LLM tool, and apply the result as a
// ranged edit over the snippet's own bounds.
type symbolEditRequester struct {
	locker     *symbols.Locker
	dispatcher *tooldispatch.Dispatcher
	tb         *toolbox.ToolBox
	props      llmProperties
}

// llmProperties mirrors planservice.MessageProperties so this adapter
// doesn't need to import planservice for a three-field struct.
type llmProperties struct {
	Provider string
	APIKey   string
	Model    string
}

func (r symbolEditRequester) RequestEdit(ctx context.Context, req scratchpad.SymbolEditRequest) (scratchpad.EditReply, error) {
	snippet, err := r.locker.EnsureSnippet(ctx, req.Identifier)
	if err != nil {
		return scratchpad.EditReply{Identifier: req.Identifier, Err: err}, err
	}

	out, err := r.dispatcher.Invoke(ctx, tooldispatch.CodeEditLLMInput{
		CodeToEdit:  snippet.Content,
		FsFilePath:  snippet.FsFilePath,
		Instruction: req.Instruction,
		Model:       r.props.Model,
		Provider:    r.props.Provider,
		APIKey:      r.props.APIKey,
	})
	if err != nil {
		return scratchpad.EditReply{Identifier: req.Identifier, Err: err}, err
	}
	newCode := out.(tooldispatch.CodeEditLLMOutput).NewCode

	_, err = r.dispatcher.Invoke(ctx, tooldispatch.EditorApplyEditsInput{
		FsFilePath: snippet.FsFilePath,
		Edits: []tooldispatch.Edit{{
			Range:   toDispatchRange(snippet.Range),
			NewText: newCode,
		}},
	})
	if err != nil {
		return scratchpad.EditReply{Identifier: req.Identifier, Err: err}, err
	}

	return scratchpad.EditReply{
		Identifier: req.Identifier,
		Summary:    fmt.Sprintf("rewrote %s in %s", req.Identifier.Name, snippet.FsFilePath),
	}, nil
}

func toDispatchRange(r symbols.Range) tooldispatch.Range {
	return tooldispatch.Range{
		Start: tooldispatch.Position{Line: r.Start.Line, Character: r.Start.Column, ByteOffset: r.Start.ByteOffset},
		End:   tooldispatch.Position{Line: r.End.Line, Character: r.End.Column, ByteOffset: r.End.ByteOffset},
	}
}
