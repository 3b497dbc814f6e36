package planservice

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	steps []Step
}

func (f *fakeGenerator) GenerateSteps(ctx context.Context, prompt string, props MessageProperties) ([]Step, error) {
	return f.steps, nil
}

type fakeToolBox struct {
	files map[string]string
}

func (f *fakeToolBox) OpenFile(ctx context.Context, fsFilePath string) (string, error) {
	return f.files[fsFilePath], nil
}
func (f *fakeToolBox) RecentlyEditedFiles(ctx context.Context, files []string) ([]string, error) {
	return nil, nil
}
func (f *fakeToolBox) DiagnosticsFor(ctx context.Context, files []string) (string, error) {
	return "", nil
}

type fakeSymbolEditor struct {
	edits []SymbolToEdit
}

func (f *fakeSymbolEditor) ExecuteEdit(ctx context.Context, edit SymbolToEdit) error {
	f.edits = append(f.edits, edit)
	return nil
}

func newTestService(t *testing.T, steps []Step) (*Service, string) {
	t.Helper()
	gen := &fakeGenerator{steps: steps}
	tb := &fakeToolBox{files: map[string]string{"enum.rs": "enum ToolType { A, B }"}}
	se := &fakeSymbolEditor{}
	return NewService(gen, tb, se), filepath.Join(t.TempDir(), "plan.json")
}

func TestCreatePlanChecksInitialState(t *testing.T) {
	steps := []Step{{Title: "Add AskHuman variant", FilesToEdit: []string{"enum.rs"}}}
	svc, storagePath := newTestService(t, steps)

	plan, err := svc.CreatePlan(context.Background(), "plan-1", "Add a new variant AskHuman to the ToolType enum", "context", false, storagePath, MessageProperties{})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(plan.Steps), 1)
	require.Equal(t, 0, plan.Checkpoint)

	reloaded, err := (store{}).load(storagePath)
	require.NoError(t, err)
	require.Equal(t, plan.ID, reloaded.ID)
}

func TestExecutePlanUntilAdvancesCheckpointAndSnapshotsFile(t *testing.T) {
	steps := []Step{{Title: "Add AskHuman variant", FilesToEdit: []string{"enum.rs"}}}
	svc, storagePath := newTestService(t, steps)

	plan, err := svc.CreatePlan(context.Background(), "plan-1", "Add a new variant AskHuman to the ToolType enum", "context", false, storagePath, MessageProperties{})
	require.NoError(t, err)

	sink := make(chan ProgressEvent, 8)
	err = svc.ExecutePlanUntil(context.Background(), plan.ID, storagePath, 0, MessageProperties{}, sink)
	require.NoError(t, err)

	reloaded, err := (store{}).load(storagePath)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Checkpoint)
	require.Len(t, reloaded.OriginalFileSnapshots, 1)
	require.Equal(t, "enum ToolType { A, B }", reloaded.OriginalFileSnapshots["enum.rs"])
}

func TestExecutePlanUntilAlreadyExecutedIsNoOp(t *testing.T) {
	steps := []Step{
		{Title: "Step zero", FilesToEdit: []string{"enum.rs"}},
		{Title: "Step one", FilesToEdit: []string{"enum.rs"}},
	}
	svc, storagePath := newTestService(t, steps)
	plan, err := svc.CreatePlan(context.Background(), "plan-1", "query", "context", false, storagePath, MessageProperties{})
	require.NoError(t, err)

	sink := make(chan ProgressEvent, 8)
	require.NoError(t, svc.ExecutePlanUntil(context.Background(), plan.ID, storagePath, 0, MessageProperties{}, sink))

	// Re-running execute_plan_until(0) once the checkpoint has moved past
	// step 0 (checkpoint == 1) is a no-op: it must not call the editor's
	// apply-edits endpoint again.
	se := svc.symbols.(*fakeSymbolEditor)
	editsBefore := len(se.edits)
	require.NoError(t, svc.ExecutePlanUntil(context.Background(), plan.ID, storagePath, 0, MessageProperties{}, sink))
	require.Equal(t, editsBefore, len(se.edits))
}

func TestDropPlanTruncatesSteps(t *testing.T) {
	steps := []Step{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	svc, storagePath := newTestService(t, steps)
	plan, err := svc.CreatePlan(context.Background(), "plan-1", "query", "context", false, storagePath, MessageProperties{})
	require.NoError(t, err)

	dropped, err := svc.DropPlan(context.Background(), plan.ID, storagePath, 1)
	require.NoError(t, err)
	require.Len(t, dropped.Steps, 1)
	require.Equal(t, "a", dropped.Steps[0].Title)
}
