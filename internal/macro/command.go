// internal/macro/command.go
package macro

import "context"

// CommandType is the tag that selects a command implementation and its
// settings shape.
type CommandType string

const (
	TypeClick             CommandType = "Click"
	TypeHotkey            CommandType = "Hotkey"
	TypeWait              CommandType = "Wait"
	TypeWaitImage         CommandType = "WaitImage"
	TypeClickImage        CommandType = "ClickImage"
	TypeClickImageAI      CommandType = "ClickImageAI"
	TypeExecute           CommandType = "Execute"
	TypeScreenshot        CommandType = "Screenshot"
	TypeSetVariable       CommandType = "SetVariable"
	TypeSetVariableAI     CommandType = "SetVariableAI"
	TypeLoop              CommandType = "Loop"
	TypeLoopEnd           CommandType = "LoopEnd"
	TypeLoopBreak         CommandType = "LoopBreak"
	TypeIfImageExist      CommandType = "IfImageExist"
	TypeIfImageNotExist   CommandType = "IfImageNotExist"
	TypeIfImageExistAI    CommandType = "IfImageExistAI"
	TypeIfImageNotExistAI CommandType = "IfImageNotExistAI"
	TypeIfVariable        CommandType = "IfVariable"
	TypeIfEnd             CommandType = "IfEnd"
)

// Command is the behaviour attached to a tree node.
//
// Execute returns true when the next sibling should run and false for a stop
// signal (cancellation, an expired poll, a break). A non-nil error is a
// configuration error and aborts the whole run.
type Command interface {
	Type() CommandType
	Execute(ctx context.Context, s *Scope) (bool, error)
}

// Settings is the immutable configuration of one command. Every command type
// has exactly one settings type.
type Settings interface {
	CommandType() CommandType
}

// validator is implemented by settings that can reject their own values at
// construction time.
type validator interface {
	Validate() error
}

// IsContainer reports whether a command type requires at least one child.
func IsContainer(t CommandType) bool {
	switch t {
	case TypeLoop, TypeIfImageExist, TypeIfImageNotExist,
		TypeIfImageExistAI, TypeIfImageNotExistAI, TypeIfVariable:
		return true
	}
	return false
}
