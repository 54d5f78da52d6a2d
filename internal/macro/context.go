// internal/macro/context.go
package macro

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/macro-cli/api/schemas"
)

// DefaultWaitTick is the polling tick of the plain Wait command.
const DefaultWaitTick = 100 * time.Millisecond

// ExecContext is the façade through which a command reaches collaborators,
// reports progress and logs. The value handed to a command is bound to the
// command's node, so every event it emits carries that node's line number.
type ExecContext struct {
	services Services
	notifier Notifier
	logger   *zap.Logger
	runID    string
	waitTick time.Duration

	node *Node
}

// Option configures an ExecContext.
type Option func(*ExecContext)

// WithWaitTick overrides DefaultWaitTick.
func WithWaitTick(d time.Duration) Option {
	return func(c *ExecContext) {
		if d > 0 {
			c.waitTick = d
		}
	}
}

// WithRunID stamps every emitted event with id.
func WithRunID(id string) Option {
	return func(c *ExecContext) { c.runID = id }
}

// NewExecContext builds the root context for a run. A nil notifier drops
// events; a nil logger is replaced with a no-op logger.
func NewExecContext(services Services, notifier Notifier, logger *zap.Logger, opts ...Option) *ExecContext {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &ExecContext{
		services: services,
		notifier: notifier,
		logger:   logger.Named("macro"),
		waitTick: DefaultWaitTick,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With returns a copy of c with opts applied.
func (c *ExecContext) With(opts ...Option) *ExecContext {
	cp := *c
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// bind returns a copy of c scoped to n.
func (c *ExecContext) bind(n *Node) *ExecContext {
	cp := *c
	cp.node = n
	cp.logger = c.logger.With(zap.Int("line", n.line), zap.String("command", string(n.cmd.Type())))
	return &cp
}

// Logger returns the node scoped logger.
func (c *ExecContext) Logger() *zap.Logger { return c.logger }

// RunID returns the identifier stamped on events.
func (c *ExecContext) RunID() string { return c.runID }

func (c *ExecContext) emit(kind schemas.EventKind, detail string, percent int) {
	ev := schemas.Event{
		RunID:     c.runID,
		Kind:      kind,
		Detail:    detail,
		Percent:   percent,
		Timestamp: time.Now().UTC(),
	}
	if c.node != nil {
		ev.Line = c.node.line
		ev.Command = string(c.node.cmd.Type())
	}
	c.notifier.Notify(ev)
}

// Emit publishes a run level event such as EventRunStart.
func (c *ExecContext) Emit(kind schemas.EventKind, detail string) {
	c.emit(kind, detail, 0)
}

// ReportProgress records percent, clamped to [0,100], on the bound node and
// publishes it.
func (c *ExecContext) ReportProgress(percent int) {
	percent = clampPercent(percent)
	if c.node != nil {
		c.node.progress.Store(int32(percent))
	}
	c.emit(schemas.EventProgress, "", percent)
}

// Log publishes a doing event.
func (c *ExecContext) Log(msg string) {
	c.logger.Debug(msg)
	c.emit(schemas.EventDoing, msg, 0)
}

// Logf is Log with formatting.
func (c *ExecContext) Logf(format string, args ...any) {
	c.Log(fmt.Sprintf(format, args...))
}

// -- Variables --

// GetVariable returns the stored value and whether it exists.
func (c *ExecContext) GetVariable(ctx context.Context, name string) (string, bool, error) {
	if c.services.Variables == nil {
		return "", false, unavailable("variables")
	}
	return c.services.Variables.Get(ctx, name)
}

// SetVariable stores value under name.
func (c *ExecContext) SetVariable(ctx context.Context, name, value string) error {
	if c.services.Variables == nil {
		return unavailable("variables")
	}
	return c.services.Variables.Set(ctx, name, value)
}

// Variables returns a snapshot of every variable.
func (c *ExecContext) Variables(ctx context.Context) (map[string]string, error) {
	if c.services.Variables == nil {
		return nil, unavailable("variables")
	}
	return c.services.Variables.List(ctx)
}

// -- Input --

// Click clicks at (x, y).
func (c *ExecContext) Click(ctx context.Context, x, y int, button schemas.MouseButton, window schemas.WindowTarget) error {
	if c.services.Mouse == nil {
		return unavailable("mouse")
	}
	return c.services.Mouse.Click(ctx, x, y, button, window)
}

// SendHotkey sends key with the given modifiers.
func (c *ExecContext) SendHotkey(ctx context.Context, key string, mods schemas.KeyModifier, window schemas.WindowTarget) error {
	if c.services.Keyboard == nil {
		return unavailable("keyboard")
	}
	return c.services.Keyboard.SendHotkey(ctx, key, mods, window)
}

// -- Process & Screen --

// ExecuteProgram launches path, optionally waiting for it to exit.
func (c *ExecContext) ExecuteProgram(ctx context.Context, path, args, workingDir string, waitForExit bool) error {
	if c.services.Process == nil {
		return unavailable("process")
	}
	return c.services.Process.Start(ctx, path, args, workingDir, waitForExit)
}

// TakeScreenshot writes a capture to path.
func (c *ExecContext) TakeScreenshot(ctx context.Context, path string, window schemas.WindowTarget) error {
	if c.services.Screen == nil {
		return unavailable("screen capture")
	}
	return c.services.Screen.Capture(ctx, path, window)
}

// SearchImage looks for a template. A nil point means no match.
func (c *ExecContext) SearchImage(ctx context.Context, q ImageQuery) (*schemas.Point, error) {
	if c.services.Images == nil {
		return nil, unavailable("image search")
	}
	return c.services.Images.Search(ctx, q)
}

// -- AI --

// InitializeAIModel loads the detection model.
func (c *ExecContext) InitializeAIModel(path string, inputSize int, useGPU bool) error {
	if c.services.Detector == nil {
		return unavailable("ai detection")
	}
	return c.services.Detector.Initialize(path, inputSize, useGPU)
}

// DetectAI runs a detection pass. The returned order is the detector's.
func (c *ExecContext) DetectAI(ctx context.Context, windowTitle string, confThreshold, iouThreshold float64) ([]schemas.Detection, error) {
	if c.services.Detector == nil {
		return nil, unavailable("ai detection")
	}
	return c.services.Detector.Detect(ctx, windowTitle, confThreshold, iouThreshold)
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
