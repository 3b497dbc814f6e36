package symbols

import (
	"errors"
	"fmt"
)

// ErrSymbolNotFound is wrapped with the missing symbol's name.
var ErrSymbolNotFound = errors.New("symbol not found")

// NotFoundError carries the identifier that could not be resolved.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("symbol not found: %s", e.Name) }
func (e *NotFoundError) Unwrap() error { return ErrSymbolNotFound }

// ErrCancelled is returned by actor operations whose context was cancelled
// before a reply was produced.
var ErrCancelled = errors.New("cancelled")

// ErrActorStopped is returned when a message is sent to an actor that has
// already exited its run loop (e.g. after Locker.Shutdown).
var ErrActorStopped = errors.New("symbol actor stopped")
