package planservice

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// StepGenerator is the plan-step-generator / plan-step-append LLM tool
// surface (tooldispatch.ToolType PlanStepGenerator), kept as a narrow
// interface here to avoid planservice depending on tooldispatch directly.
type StepGenerator interface {
	GenerateSteps(ctx context.Context, prompt string, props MessageProperties) ([]Step, error)
}

// ToolBox is the subset of internal/toolbox this service needs: opening a
// file's current content and gathering recently-edited-files/diagnostics
// for append_steps' LSP enrichment.
type ToolBox interface {
	OpenFile(ctx context.Context, fsFilePath string) (string, error)
	RecentlyEditedFiles(ctx context.Context, files []string) ([]string, error)
	DiagnosticsFor(ctx context.Context, files []string) (string, error)
}

// SymbolEditor is the hub-sender pathway a step's edit is dispatched down:
// send a SymbolToEdit, await the one-shot reply (spec.md §4.E
// "execute-until").
type SymbolEditor interface {
	ExecuteEdit(ctx context.Context, edit SymbolToEdit) error
}

// ProgressEvent is one line on the user-visible progress stream (spec.md §7
// "User-visible behavior").
type ProgressEvent struct {
	Info  string
	Error string
}

// Service implements the Plan lifecycle operations of spec.md §4.E. A Plan
// is exclusively owned by whichever call is mutating it; at rest it lives
// only on disk and is re-read at each execute step to avoid torn updates.
type Service struct {
	gen      StepGenerator
	toolbox  ToolBox
	symbols  SymbolEditor
	store    store
}

// NewService constructs a Service. All three dependencies are required.
func NewService(gen StepGenerator, toolbox ToolBox, symbols SymbolEditor) *Service {
	return &Service{gen: gen, toolbox: toolbox, symbols: symbols}
}

// CreatePlan implements spec.md §4.E "Plan creation".
func (s *Service) CreatePlan(ctx context.Context, id, userQuery, userContext string, deepReasoning bool, storagePath string, props MessageProperties) (Plan, error) {
	prompt := fmt.Sprintf("User query: %s\n\nContext:\n%s", userQuery, userContext)
	if deepReasoning {
		prompt = "Think deeply, step by step, before answering.\n\n" + prompt
	}
	steps, err := s.gen.GenerateSteps(ctx, prompt, props)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrToolError, err)
	}
	plan := Plan{
		ID:                    id,
		Title:                 userQuery,
		InitialUserQuery:      userQuery,
		Steps:                 steps,
		Checkpoint:            0,
		StoragePath:           storagePath,
		UserContext:           userContext,
		OriginalFileSnapshots: make(map[string]string),
	}
	if err := s.store.save(plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

func filesUntilCheckpoint(steps []Step, checkpoint int) []string {
	seen := make(map[string]struct{})
	var files []string
	for i := 0; i < checkpoint && i < len(steps); i++ {
		for _, f := range steps[i].FilesToEdit {
			if _, ok := seen[f]; !ok {
				seen[f] = struct{}{}
				files = append(files, f)
			}
		}
	}
	sort.Strings(files)
	return files
}

// AppendSteps implements spec.md §4.E "Plan append".
func (s *Service) AppendSteps(ctx context.Context, planID, storagePath, userQuery, userContext string, props MessageProperties, deepReasoning, withLSPEnrichment bool) (Plan, error) {
	plan, err := s.store.load(storagePath)
	if err != nil {
		return Plan{}, err
	}
	files := filesUntilCheckpoint(plan.Steps, plan.Checkpoint)

	recent, err := s.toolbox.RecentlyEditedFiles(ctx, files)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrToolError, err)
	}

	var diagnostics string
	if withLSPEnrichment {
		diagnostics, err = s.toolbox.DiagnosticsFor(ctx, files)
		if err != nil {
			return Plan{}, fmt.Errorf("%w: %v", ErrToolError, err)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Plan so far:\n")
	for i, st := range plan.Steps {
		fmt.Fprintf(&b, "Step %d: %s\n%s\n", i, st.Title, st.Description)
	}
	fmt.Fprintf(&b, "\nOriginal query: %s\nNew query: %s\n\nContext:\n%s\n", plan.InitialUserQuery, userQuery, userContext)
	if len(recent) > 0 {
		fmt.Fprintf(&b, "\nRecently edited files:\n%s\n", strings.Join(recent, "\n"))
	}
	if diagnostics != "" {
		fmt.Fprintf(&b, "\nDiagnostics:\n%s\n", diagnostics)
	}
	if deepReasoning {
		b.WriteString("\nThink deeply, step by step, before answering.\n")
	}

	newSteps, err := s.gen.GenerateSteps(ctx, b.String(), props)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrToolError, err)
	}
	plan.Steps = append(plan.Steps, newSteps...)
	if err := s.store.save(plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// DropPlan implements spec.md §4.E "Plan drop": truncate steps to dropFrom
// and rewrite.
func (s *Service) DropPlan(ctx context.Context, planID, storagePath string, dropFrom int) (Plan, error) {
	plan, err := s.store.load(storagePath)
	if err != nil {
		return Plan{}, err
	}
	if dropFrom < 0 || dropFrom > len(plan.Steps) {
		return Plan{}, &StepNotFoundError{Index: dropFrom}
	}
	plan.Steps = plan.Steps[:dropFrom]
	if plan.Checkpoint > dropFrom {
		plan.Checkpoint = dropFrom
	}
	if err := s.store.save(plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// ExecutePlanUntil implements spec.md §4.E "Plan execute-until". It
// re-reads the plan from disk on every iteration to observe concurrent
// writes, and halts without advancing the checkpoint on the first error.
func (s *Service) ExecutePlanUntil(ctx context.Context, planID, storagePath string, k int, props MessageProperties, sink chan<- ProgressEvent) error {
	for idx := 0; idx <= k; idx++ {
		plan, err := s.store.load(storagePath)
		if err != nil {
			return err
		}
		if idx >= len(plan.Steps) {
			return &StepNotFoundError{Index: idx}
		}
		if idx < plan.Checkpoint {
			publish(sink, ProgressEvent{Info: fmt.Sprintf("already executed step %d", idx)})
			continue
		}

		step := plan.Steps[idx]
		if len(step.FilesToEdit) > 0 {
			firstFile := step.FilesToEdit[0]
			if _, exists := plan.OriginalFileSnapshots[firstFile]; !exists {
				content, err := s.toolbox.OpenFile(ctx, firstFile)
				if err != nil {
					publish(sink, ProgressEvent{Error: fmt.Sprintf("errored out while executing step %d", idx)})
					return fmt.Errorf("%w: %v", ErrToolError, err)
				}
				plan.OriginalFileSnapshots[firstFile] = content
				if err := s.store.save(plan); err != nil {
					return err
				}
			}
		}

		execCtx, err := s.prepareContext(ctx, plan.Steps, idx)
		if err != nil {
			publish(sink, ProgressEvent{Error: fmt.Sprintf("errored out while executing step %d", idx)})
			return err
		}

		edit := SymbolToEdit{
			StepIndex:   idx,
			Title:       step.Title,
			Description: step.Description,
			FilesToEdit: step.FilesToEdit,
			Context:     execCtx,
			Properties:  props,
		}
		if err := s.symbols.ExecuteEdit(ctx, edit); err != nil {
			publish(sink, ProgressEvent{Error: fmt.Sprintf("errored out while executing step %d", idx)})
			return fmt.Errorf("%w: %v", ErrSymbolError, err)
		}

		plan.Checkpoint = idx + 1
		if err := s.store.save(plan); err != nil {
			return err
		}
		publish(sink, ProgressEvent{Info: fmt.Sprintf("finished executing until %d", idx)})
	}
	return nil
}

func publish(sink chan<- ProgressEvent, ev ProgressEvent) {
	if sink == nil {
		return
	}
	select {
	case sink <- ev:
	default:
	}
}

// prepareContext implements spec.md §4.E "Context preparation": fold
// steps[0..checkpoint) into a single string, converting each step to its
// textual form concurrently with bounded concurrency <= 3.
func (s *Service) prepareContext(ctx context.Context, steps []Step, checkpoint int) (string, error) {
	if checkpoint > len(steps) {
		checkpoint = len(steps)
	}
	texts := make([]string, checkpoint)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for i := 0; i < checkpoint; i++ {
		i := i
		step := steps[i]
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			texts[i] = fmt.Sprintf("Step %d: %s\n%s", i, step.Title, step.Description)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.Join(texts, "\n\n"), nil
}
