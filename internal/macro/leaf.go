// internal/macro/leaf.go
package macro

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/xkilldash9x/macro-cli/api/schemas"
)

// ScreenshotTimeLayout names screenshot files.
const ScreenshotTimeLayout = "20060102150405"

func buttonOrLeft(b schemas.MouseButton) schemas.MouseButton {
	parsed, err := schemas.ParseMouseButton(string(b))
	if err != nil {
		return schemas.ButtonLeft
	}
	return parsed
}

// collaboratorResult turns the error of a one-shot collaborator call into a
// command result. Errors caused by cancellation become a stop signal.
func collaboratorResult(ctx context.Context, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if stopped(ctx, err) {
		return false, nil
	}
	return false, err
}

// -- Click --

type Click struct{ settings ClickSettings }

func (*Click) Type() CommandType { return TypeClick }

func (c *Click) Execute(ctx context.Context, s *Scope) (bool, error) {
	if ctx.Err() != nil {
		return false, nil
	}
	st := c.settings
	button := buttonOrLeft(st.Button)
	err := s.Click(ctx, st.X, st.Y, button, schemas.WindowTarget{Title: st.WindowTitle, ClassName: st.WindowClassName})
	if ok, err := collaboratorResult(ctx, err); !ok {
		return ok, err
	}
	s.Logf("Clicked (%d, %d) with %s button", st.X, st.Y, button)
	return true, nil
}

// -- Hotkey --

type Hotkey struct{ settings HotkeySettings }

func (*Hotkey) Type() CommandType { return TypeHotkey }

func (h *Hotkey) Execute(ctx context.Context, s *Scope) (bool, error) {
	if ctx.Err() != nil {
		return false, nil
	}
	st := h.settings
	mods := schemas.Modifiers(st.Ctrl, st.Alt, st.Shift)
	err := s.SendHotkey(ctx, st.Key, mods, schemas.WindowTarget{Title: st.WindowTitle, ClassName: st.WindowClassName})
	if ok, err := collaboratorResult(ctx, err); !ok {
		return ok, err
	}
	if mods == schemas.ModNone {
		s.Logf("Sent hotkey %s", st.Key)
	} else {
		s.Logf("Sent hotkey %s+%s", mods, st.Key)
	}
	return true, nil
}

// -- Execute --

// Execute launches an external program. A launch failure is reported as a
// doing event and stops the run without failing it.
type Execute struct{ settings ExecuteSettings }

func (*Execute) Type() CommandType { return TypeExecute }

func (e *Execute) Execute(ctx context.Context, s *Scope) (bool, error) {
	if ctx.Err() != nil {
		return false, nil
	}
	st := e.settings
	err := s.ExecuteProgram(ctx, st.ProgramPath, st.Arguments, st.WorkingDirectory, st.WaitForExit)
	switch {
	case err == nil:
	case errors.Is(err, ErrServiceUnavailable):
		return false, err
	case stopped(ctx, err):
		return false, nil
	default:
		s.Logf("Failed to execute %s: %v", st.ProgramPath, err)
		return false, nil
	}
	if st.WaitForExit {
		s.Logf("Executed %s", st.ProgramPath)
	} else {
		s.Logf("Started %s", st.ProgramPath)
	}
	return true, nil
}

// -- Screenshot --

type Screenshot struct{ settings ScreenshotSettings }

func (*Screenshot) Type() CommandType { return TypeScreenshot }

func (c *Screenshot) Execute(ctx context.Context, s *Scope) (bool, error) {
	if ctx.Err() != nil {
		return false, nil
	}
	st := c.settings
	path, err := screenshotPath(st.SaveDirectory, st.Format, time.Now())
	if err != nil {
		return false, err
	}
	err = s.TakeScreenshot(ctx, path, schemas.WindowTarget{Title: st.WindowTitle, ClassName: st.WindowClassName})
	if ok, err := collaboratorResult(ctx, err); !ok {
		return ok, err
	}
	s.Logf("Saved screenshot to %s", path)
	return true, nil
}

// screenshotPath builds <dir>/<timestamp>.<format>. The directory may start
// with ~; an empty directory means the working directory.
func screenshotPath(dir, format string, at time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	dir, err := homedir.Expand(dir)
	if err != nil {
		return "", err
	}
	format = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
	if format == "" {
		format = "png"
	}
	return filepath.Join(dir, at.Format(ScreenshotTimeLayout)+"."+format), nil
}

// -- SetVariable --

// SetVariable stores a value, expanding {{ .name }} references to other
// variables first.
type SetVariable struct{ settings SetVariableSettings }

func (*SetVariable) Type() CommandType { return TypeSetVariable }

func (c *SetVariable) Execute(ctx context.Context, s *Scope) (bool, error) {
	if ctx.Err() != nil {
		return false, nil
	}
	st := c.settings
	var vars map[string]string
	if needsVariables(st.Value) {
		var err error
		if vars, err = s.Variables(ctx); err != nil {
			return collaboratorResult(ctx, err)
		}
	}
	value, err := render(st.Value, vars)
	if err != nil {
		return false, err
	}
	if err := s.SetVariable(ctx, st.Name, value); err != nil {
		return collaboratorResult(ctx, err)
	}
	s.Logf("Set %s = %s", st.Name, value)
	return true, nil
}
