// internal/macro/services.go
package macro

import (
	"context"

	"github.com/xkilldash9x/macro-cli/api/schemas"
)

// -- Collaborator Contracts --
//
// The engine never talks to the operating system directly. Each concern sits
// behind one of these interfaces; a nil field in Services means the concern
// is not available and the matching ExecContext method fails fast.

// Mouse clicks at screen coordinates.
type Mouse interface {
	Click(ctx context.Context, x, y int, button schemas.MouseButton, window schemas.WindowTarget) error
}

// Keyboard sends a key chord.
type Keyboard interface {
	SendHotkey(ctx context.Context, key string, mods schemas.KeyModifier, window schemas.WindowTarget) error
}

// ProcessLauncher starts external programs.
type ProcessLauncher interface {
	Start(ctx context.Context, path, args, workingDir string, waitForExit bool) error
}

// ScreenCapturer writes a capture of a window, or the desktop, to path.
type ScreenCapturer interface {
	Capture(ctx context.Context, path string, window schemas.WindowTarget) error
}

// ImageQuery is one template search request.
type ImageQuery struct {
	Path        string
	Threshold   float64
	SearchColor *int
	Window      schemas.WindowTarget
}

// ImageSearcher locates a template image on screen. A nil point with a nil
// error means no match.
type ImageSearcher interface {
	Search(ctx context.Context, q ImageQuery) (*schemas.Point, error)
}

// Detector runs object detection. Initialize may be called before every
// detection pass; implementations should treat a repeated call with the same
// model as a no-op.
type Detector interface {
	Initialize(modelPath string, inputSize int, useGPU bool) error
	Detect(ctx context.Context, windowTitle string, confThreshold, iouThreshold float64) ([]schemas.Detection, error)
}

// VariableStore is the shared, concurrency safe variable table. Get reports
// whether the variable exists.
type VariableStore interface {
	Get(ctx context.Context, name string) (string, bool, error)
	Set(ctx context.Context, name, value string) error
	List(ctx context.Context) (map[string]string, error)
}

// Services bundles the collaborators available to a run.
type Services struct {
	Mouse     Mouse
	Keyboard  Keyboard
	Process   ProcessLauncher
	Screen    ScreenCapturer
	Images    ImageSearcher
	Detector  Detector
	Variables VariableStore
}

// -- Notification Channel --

// Notifier receives the events of a run. Implementations must be safe to call
// from the executing goroutine while being read elsewhere.
type Notifier interface {
	Notify(ev schemas.Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ev schemas.Event)

func (f NotifierFunc) Notify(ev schemas.Event) { f(ev) }

type nopNotifier struct{}

func (nopNotifier) Notify(schemas.Event) {}
