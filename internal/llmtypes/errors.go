package llmtypes

import "errors"

// Failure taxonomy for the LLM broker, per spec.md §4.A.
var (
	ErrWrongAPIKeyType    = errors.New("wrong api key type for provider")
	ErrUnsupportedModel   = errors.New("unsupported model")
	ErrUnsupportedOp      = errors.New("unsupported operation")
	ErrTransport          = errors.New("transport error")
	ErrDecode             = errors.New("decode error")
	ErrSinkClosed         = errors.New("sink closed")
	ErrRetriesExhausted   = errors.New("retries exhausted")
	ErrOutputStreamAbsent = errors.New("output stream not present")
	ErrCancelled          = errors.New("cancelled")
)
