// internal/macro/errors.go
package macro

import (
	"errors"
	"fmt"
)

// Configuration errors. These are fatal: they propagate out of every node
// unchanged and abort the run. A command that merely could not complete
// (timeout, cancellation, break) returns false instead.
var (
	ErrNoChildren         = errors.New("container command has no children")
	ErrUnknownOperator    = errors.New("unknown comparison operator")
	ErrUnknownMode        = errors.New("unknown mode")
	ErrSettingsMismatch   = errors.New("settings do not match command type")
	ErrUnknownCommand     = errors.New("unknown command type")
	ErrDuplicateLine      = errors.New("duplicate line number")
	ErrUnknownHandle      = errors.New("unknown node handle")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrBadTemplate        = errors.New("invalid variable template")
	ErrUnexpectedChildren = errors.New("command cannot have children")
)

// CommandError ties a fatal error to the node that raised it.
type CommandError struct {
	Line int
	Type CommandType
	Err  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Type, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// unavailable builds the error returned when a collaborator is not wired.
func unavailable(service string) error {
	return fmt.Errorf("%w: %s", ErrServiceUnavailable, service)
}
