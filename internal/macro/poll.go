// internal/macro/poll.go
package macro

import (
	"context"
	"time"

	"github.com/xkilldash9x/macro-cli/api/schemas"
)

// -- Bounded Polling --

func millis(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

// sleep waits for d or until ctx is done. It reports whether the full delay
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// percent maps elapsed over timeout onto 0..100. A non-positive timeout is
// complete by definition.
func percent(elapsed, timeout time.Duration) int {
	if timeout <= 0 || elapsed >= timeout {
		return 100
	}
	return clampPercent(int(elapsed * 100 / timeout))
}

// stopped reports whether a collaborator error is only the echo of ctx being
// cancelled.
func stopped(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil
}

// pollFunc performs one check. found ends the poll successfully.
type pollFunc func(ctx context.Context) (found bool, err error)

// poll runs check every interval until it succeeds or timeout elapses,
// reporting progress after each check. The last check happens at the
// deadline. The result is false, nil on timeout or cancellation.
func poll(ctx context.Context, s *Scope, timeout, interval time.Duration, check pollFunc) (bool, error) {
	if interval <= 0 {
		interval = s.waitTick
	}
	start := time.Now()
	for {
		if ctx.Err() != nil {
			return false, nil
		}
		found, err := check(ctx)
		if err != nil {
			if stopped(ctx, err) {
				return false, nil
			}
			return false, err
		}
		elapsed := time.Since(start)
		s.ReportProgress(percent(elapsed, timeout))
		if found {
			return true, nil
		}
		if elapsed >= timeout {
			return false, nil
		}
		if !sleep(ctx, min(interval, timeout-elapsed)) {
			return false, nil
		}
	}
}

// -- Wait --

// Wait pauses for a fixed duration, reporting progress every tick.
type Wait struct{ settings WaitSettings }

func (*Wait) Type() CommandType { return TypeWait }

func (w *Wait) Execute(ctx context.Context, s *Scope) (bool, error) {
	total := millis(w.settings.Duration)
	start := time.Now()
	for {
		if ctx.Err() != nil {
			return false, nil
		}
		elapsed := time.Since(start)
		s.ReportProgress(percent(elapsed, total))
		if elapsed >= total {
			return true, nil
		}
		if !sleep(ctx, min(s.waitTick, total-elapsed)) {
			return false, nil
		}
	}
}

// -- WaitImage --

// WaitImage blocks until a template image appears on screen.
type WaitImage struct{ settings WaitImageSettings }

func (*WaitImage) Type() CommandType { return TypeWaitImage }

func (w *WaitImage) Execute(ctx context.Context, s *Scope) (bool, error) {
	q := w.settings.query()
	var at *schemas.Point
	ok, err := poll(ctx, s, millis(w.settings.Timeout), millis(w.settings.Interval), func(ctx context.Context) (bool, error) {
		pt, err := s.SearchImage(ctx, q)
		at = pt
		return pt != nil, err
	})
	if err != nil || ctx.Err() != nil {
		return false, err
	}
	if !ok {
		s.Logf("Image %s not found within %d ms", q.Path, w.settings.Timeout)
		return false, nil
	}
	s.Logf("Image found at (%d, %d)", at.X, at.Y)
	return true, nil
}

// -- ClickImage --

// ClickImage waits for a template image and clicks its location.
type ClickImage struct{ settings ClickImageSettings }

func (*ClickImage) Type() CommandType { return TypeClickImage }

func (c *ClickImage) Execute(ctx context.Context, s *Scope) (bool, error) {
	q := c.settings.query()
	var at *schemas.Point
	ok, err := poll(ctx, s, millis(c.settings.Timeout), millis(c.settings.Interval), func(ctx context.Context) (bool, error) {
		pt, err := s.SearchImage(ctx, q)
		at = pt
		return pt != nil, err
	})
	if err != nil || ctx.Err() != nil {
		return false, err
	}
	if !ok {
		s.Logf("Image %s not found within %d ms", q.Path, c.settings.Timeout)
		return false, nil
	}

	button := buttonOrLeft(c.settings.Button)
	if err := s.Click(ctx, at.X, at.Y, button, q.Window); err != nil {
		if stopped(ctx, err) {
			return false, nil
		}
		return false, err
	}
	s.Logf("Clicked image at (%d, %d) with %s button", at.X, at.Y, button)
	return true, nil
}
