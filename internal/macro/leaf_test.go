package macro_test

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/macro-cli/api/schemas"
	"github.com/xkilldash9x/macro-cli/internal/macro"
)

func TestClick_CallsMouse(t *testing.T) {
	h := newHarness(t)
	window := schemas.WindowTarget{Title: "Notepad", ClassName: "Edit"}
	h.mouse.On("Click", mock.Anything, 100, 200, schemas.ButtonLeft, window).Return(nil).Once()

	node := h.add(macro.NoParent, macro.ClickSettings{X: 100, Y: 200, WindowTitle: "Notepad", WindowClassName: "Edit"})
	ok, err := h.run(context.Background(), node)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Clicked (100, 200) with left button"}, h.rec.Details())
	h.mouse.AssertExpectations(t)
}

func TestClick_WithoutMouseIsFatal(t *testing.T) {
	h := newHarness(t).withServices(macro.Services{})
	node := h.add(macro.NoParent, macro.ClickSettings{X: 1, Y: 1})

	ok, err := h.run(context.Background(), node)
	assert.False(t, ok)
	require.ErrorIs(t, err, macro.ErrServiceUnavailable)

	var ce *macro.CommandError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, macro.TypeClick, ce.Type)
}

func TestClick_FailurePropagates(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("no display")
	h.mouse.On("Click", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(boom)

	node := h.add(macro.NoParent, macro.ClickSettings{X: 1, Y: 1})
	_, err := h.run(context.Background(), node)
	require.ErrorIs(t, err, boom)
}

func TestHotkey_SendsModifiers(t *testing.T) {
	h := newHarness(t)
	h.keyboard.On("SendHotkey", mock.Anything, "S", schemas.ModCtrl|schemas.ModShift, schemas.WindowTarget{}).Return(nil).Once()

	node := h.add(macro.NoParent, macro.HotkeySettings{Key: "S", Ctrl: true, Shift: true})
	ok, err := h.run(context.Background(), node)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Sent hotkey Ctrl+Shift+S"}, h.rec.Details())
	h.keyboard.AssertExpectations(t)
}

func TestExecute_LaunchFailureIsStop(t *testing.T) {
	h := newHarness(t)
	h.launcher.On("Start", mock.Anything, "/bin/missing", "-v", "", true).Return(errors.New("not found")).Once()

	node := h.add(macro.NoParent, macro.ExecuteSettings{ProgramPath: "/bin/missing", Arguments: "-v", WaitForExit: true})
	ok, err := h.run(context.Background(), node)
	require.NoError(t, err, "launch failures are reported, not raised")
	assert.False(t, ok)
	require.Len(t, h.rec.Details(), 1)
	assert.Contains(t, h.rec.Details()[0], "Failed to execute /bin/missing")
}

func TestExecute_WithoutLauncherIsFatal(t *testing.T) {
	h := newHarness(t).withServices(macro.Services{})
	node := h.add(macro.NoParent, macro.ExecuteSettings{ProgramPath: "/bin/true"})

	_, err := h.run(context.Background(), node)
	require.ErrorIs(t, err, macro.ErrServiceUnavailable)
}

func TestExecute_Success(t *testing.T) {
	h := newHarness(t)
	h.launcher.On("Start", mock.Anything, "notepad.exe", "", "C:/tmp", false).Return(nil).Once()

	node := h.add(macro.NoParent, macro.ExecuteSettings{ProgramPath: "notepad.exe", WorkingDirectory: "C:/tmp"})
	ok, err := h.run(context.Background(), node)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Started notepad.exe"}, h.rec.Details())
}

func TestScreenshot_WritesTimestampedFile(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	name := regexp.MustCompile(`^\d{14}\.jpg$`)
	h.screen.On("Capture", mock.Anything, mock.MatchedBy(func(path string) bool {
		return filepath.Dir(path) == dir && name.MatchString(filepath.Base(path))
	}), schemas.WindowTarget{Title: "App"}).Return(nil).Once()

	node := h.add(macro.NoParent, macro.ScreenshotSettings{SaveDirectory: dir, Format: ".JPG", WindowTitle: "App"})
	ok, err := h.run(context.Background(), node)
	require.NoError(t, err)
	assert.True(t, ok)
	h.screen.AssertExpectations(t)
}

func TestSetVariable_RendersTemplate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.vars.Set(ctx, "count", "4"))

	node := h.add(macro.NoParent, macro.SetVariableSettings{Name: "label", Value: "n={{ .count }}{{ .missing }}"})
	ok, err := h.run(ctx, node)
	require.NoError(t, err)
	assert.True(t, ok)

	v, found, err := h.vars.Get(ctx, "label")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "n=4", v)
}

func TestSetVariable_LiteralSkipsSnapshot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	node := h.add(macro.NoParent, macro.SetVariableSettings{Name: "mode", Value: "fast"})

	_, err := h.run(ctx, node)
	require.NoError(t, err)
	v, _, _ := h.vars.Get(ctx, "mode")
	assert.Equal(t, "fast", v)
}

func TestSetVariable_BadTemplateIsFatal(t *testing.T) {
	h := newHarness(t)
	node := h.add(macro.NoParent, macro.SetVariableSettings{Name: "x", Value: "{{ .count "})

	_, err := h.run(context.Background(), node)
	require.ErrorIs(t, err, macro.ErrBadTemplate)
}

func TestLeaves_CancelledDoNothing(t *testing.T) {
	cases := []macro.Settings{
		macro.ClickSettings{X: 1, Y: 1},
		macro.HotkeySettings{Key: "A"},
		macro.ExecuteSettings{ProgramPath: "/bin/true"},
		macro.ScreenshotSettings{},
		macro.SetVariableSettings{Name: "x", Value: "1"},
	}
	for _, s := range cases {
		t.Run(string(s.CommandType()), func(t *testing.T) {
			h := newHarness(t)
			node := h.add(macro.NoParent, s)

			ok, err := h.run(cancelled(), node)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, h.rec.Details())
			_, found, _ := h.vars.Get(context.Background(), "x")
			assert.False(t, found)
		})
	}
}
