package sem

import (
	"errors"
	"fmt"
)

// ErrBusy indicates an operation was started while another one was running on
// the same session.
var ErrBusy = errors.New("sem: session busy")

// MacroError reports the step at which a macro sequence stopped.
// Commands before Index were applied and are not rolled back.
type MacroError struct {
	Macro   string
	Index   int
	Command string
	Err     error
}

// Error implements the error interface.
func (e *MacroError) Error() string {
	return fmt.Sprintf("sem: %s step %d (%q): %v", e.Macro, e.Index, e.Command, e.Err)
}

// Unwrap returns the codec error that stopped the macro.
func (e *MacroError) Unwrap() error {
	return e.Err
}
