package tooldispatch

import "errors"

var (
	// ErrWrongToolInput is returned when a handler receives a ToolInput
	// variant whose concrete type doesn't match its registered ToolType.
	ErrWrongToolInput = errors.New("wrong tool input type")
	// ErrWrongToolOutput is returned when a handler produces an output whose
	// ToolType() doesn't match the input's.
	ErrWrongToolOutput = errors.New("wrong tool output type")
	// ErrNoJSONSchema is returned by InvokeJSON for a ToolType with no
	// declared agent-facing JSON Schema.
	ErrNoJSONSchema = errors.New("tool has no JSON entry point")
	// ErrSchemaValidation is returned by InvokeJSON when raw JSON fails
	// validation against the tool's declared schema.
	ErrSchemaValidation = errors.New("tool input failed schema validation")
)
