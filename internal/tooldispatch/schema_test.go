package tooldispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newSchemaTestDispatcher() *Dispatcher {
	return NewForTesting(map[ToolType]Handler{
		OpenFile: func(ctx context.Context, input ToolInput) (ToolOutput, error) {
			in := input.(OpenFileInput)
			return OpenFileOutput{FsFilePath: in.FsFilePath, Contents: "package x", Exists: true}, nil
		},
	})
}

func TestInvokeJSONValidatesAndDispatches(t *testing.T) {
	d := newSchemaTestDispatcher()

	out, err := d.InvokeJSON(context.Background(), OpenFile, []byte(`{"FsFilePath": "main.go"}`))
	require.NoError(t, err)
	require.Equal(t, OpenFileOutput{FsFilePath: "main.go", Contents: "package x", Exists: true}, out)
}

func TestInvokeJSONRejectsMissingRequiredField(t *testing.T) {
	d := newSchemaTestDispatcher()

	_, err := d.InvokeJSON(context.Background(), OpenFile, []byte(`{}`))
	require.ErrorIs(t, err, ErrSchemaValidation)
}

func TestInvokeJSONRejectsMalformedJSON(t *testing.T) {
	d := newSchemaTestDispatcher()

	_, err := d.InvokeJSON(context.Background(), OpenFile, []byte(`not json`))
	require.Error(t, err)
}

func TestInvokeJSONRejectsToolWithoutSchema(t *testing.T) {
	d := newSchemaTestDispatcher()

	_, err := d.InvokeJSON(context.Background(), CodeEditLLM, []byte(`{}`))
	require.ErrorIs(t, err, ErrNoJSONSchema)
}
