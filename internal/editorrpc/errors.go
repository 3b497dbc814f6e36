package editorrpc

import "errors"

// ErrCommunicatingWithEditor classifies transport-layer failures talking to
// the editor (spec.md §4.B "Editor-backed tools").
var ErrCommunicatingWithEditor = errors.New("error communicating with editor")

// ErrSerdeConversionFailed classifies response decode failures.
var ErrSerdeConversionFailed = errors.New("failed to convert editor response")
