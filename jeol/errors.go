package jeol

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by CommandError through errors.Is.
var (
	// ErrCommandRejected indicates a response whose status is not !0.
	ErrCommandRejected = errors.New("jeol: command rejected")
	// ErrEchoMismatch indicates a response that echoes a different command.
	ErrEchoMismatch = errors.New("jeol: echo mismatch")
)

// Kind categorizes command failures.
type Kind int

const (
	// KindRejected indicates the microscope answered with a non-!0 status.
	KindRejected Kind = iota
	// KindEchoMismatch indicates the reply belongs to a different command.
	KindEchoMismatch
)

func (k Kind) String() string {
	switch k {
	case KindRejected:
		return "command-rejected"
	case KindEchoMismatch:
		return "echo-mismatch"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// CommandError reports a command the microscope did not carry out as asked.
type CommandError struct {
	Kind     Kind
	Command  string // the command as sent
	Response string // the raw response frame
	Status   Status // the raw status code of the response
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Kind == KindEchoMismatch {
		return fmt.Sprintf("jeol: sent %q but got response %q", e.Command, e.Response)
	}

	return fmt.Sprintf("jeol: command %q failed with %q (%s): %q", e.Command, string(e.Status), e.Status, e.Response)
}

// Is reports whether target is the sentinel for this error's kind.
func (e *CommandError) Is(target error) bool {
	switch target {
	case ErrCommandRejected:
		return e.Kind == KindRejected
	case ErrEchoMismatch:
		return e.Kind == KindEchoMismatch
	default:
		return false
	}
}

func newRejectedError(command, response string) error {
	return &CommandError{Kind: KindRejected, Command: command, Response: response, Status: ParseStatus(response)}
}

func newEchoMismatchError(command, response string) error {
	return &CommandError{Kind: KindEchoMismatch, Command: command, Response: response, Status: ParseStatus(response)}
}
