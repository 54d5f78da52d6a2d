// internal/humanoid/driver.go
package humanoid

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/macro-cli/api/schemas"
)

// Driver is the raw input device. Humanoid composes clicks and hotkeys out of
// these primitives; platform backends and test doubles implement it.
type Driver interface {
	// Sleep pauses execution, respecting context cancellation.
	Sleep(ctx context.Context, d time.Duration) error

	MoveTo(ctx context.Context, x, y int, window schemas.WindowTarget) error
	Press(ctx context.Context, button schemas.MouseButton, window schemas.WindowTarget) error
	Release(ctx context.Context, button schemas.MouseButton, window schemas.WindowTarget) error
	KeyDown(ctx context.Context, key string, window schemas.WindowTarget) error
	KeyUp(ctx context.Context, key string, window schemas.WindowTarget) error
}

// LogDriver writes every input primitive to a logger instead of a device.
// It backs dry runs.
type LogDriver struct {
	logger *zap.Logger
}

// NewLogDriver returns a LogDriver logging at debug level.
func NewLogDriver(logger *zap.Logger) *LogDriver {
	return &LogDriver{logger: logger.Named("input")}
}

func windowField(w schemas.WindowTarget) zap.Field {
	if w.IsZero() {
		return zap.Skip()
	}
	return zap.Any("window", w)
}

// Sleep waits for d or until ctx is done.
func (d *LogDriver) Sleep(ctx context.Context, dur time.Duration) error {
	return sleep(ctx, dur)
}

func (d *LogDriver) MoveTo(_ context.Context, x, y int, window schemas.WindowTarget) error {
	d.logger.Debug("move", zap.Int("x", x), zap.Int("y", y), windowField(window))
	return nil
}

func (d *LogDriver) Press(_ context.Context, button schemas.MouseButton, window schemas.WindowTarget) error {
	d.logger.Debug("press", zap.String("button", string(button)), windowField(window))
	return nil
}

func (d *LogDriver) Release(_ context.Context, button schemas.MouseButton, window schemas.WindowTarget) error {
	d.logger.Debug("release", zap.String("button", string(button)), windowField(window))
	return nil
}

func (d *LogDriver) KeyDown(_ context.Context, key string, window schemas.WindowTarget) error {
	d.logger.Debug("key down", zap.String("key", key), windowField(window))
	return nil
}

func (d *LogDriver) KeyUp(_ context.Context, key string, window schemas.WindowTarget) error {
	d.logger.Debug("key up", zap.String("key", key), windowField(window))
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
