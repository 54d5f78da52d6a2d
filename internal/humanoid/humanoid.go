// internal/humanoid/humanoid.go
package humanoid

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/macro-cli/api/schemas"
	"github.com/xkilldash9x/macro-cli/internal/config"
)

// Humanoid turns click and hotkey requests into paced driver primitives: the
// cursor travels along a curved path, buttons and keys are held for a short
// randomised time, and every primitive waits on a shared rate limiter.
type Humanoid struct {
	driver  Driver
	cfg     config.HumanoidConfig
	limiter *rate.Limiter
	logger  *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
	pos Vector2D
}

// Option configures a Humanoid.
type Option func(*Humanoid)

// WithRand replaces the random source, for reproducible paths.
func WithRand(rng *rand.Rand) Option {
	return func(h *Humanoid) { h.rng = rng }
}

// WithStart sets the assumed initial cursor position.
func WithStart(x, y int) Option {
	return func(h *Humanoid) { h.pos = Vector2D{X: float64(x), Y: float64(y)} }
}

// New creates a Humanoid on top of driver.
func New(cfg config.HumanoidConfig, driver Driver, logger *zap.Logger, opts ...Option) (*Humanoid, error) {
	if driver == nil {
		return nil, fmt.Errorf("humanoid: driver is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("humanoid: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Humanoid{
		driver:  driver,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.EventsPerSecond), cfg.Burst),
		logger:  logger.Named("humanoid"),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Position returns the last position the cursor was moved to.
func (h *Humanoid) Position() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos.Round()
}

// Click moves to (x, y) and clicks button there.
func (h *Humanoid) Click(ctx context.Context, x, y int, button schemas.MouseButton, window schemas.WindowTarget) error {
	if button == "" {
		button = schemas.ButtonLeft
	}
	if err := h.moveTo(ctx, Vector2D{X: float64(x), Y: float64(y)}, window); err != nil {
		return fmt.Errorf("humanoid: move to (%d, %d): %w", x, y, err)
	}

	if err := h.paced(ctx, func() error { return h.driver.Press(ctx, button, window) }); err != nil {
		return fmt.Errorf("humanoid: press %s: %w", button, err)
	}
	holdErr := h.driver.Sleep(ctx, h.clickHold())
	// The button is released even when the hold was interrupted.
	if err := h.driver.Release(context.WithoutCancel(ctx), button, window); err != nil {
		return fmt.Errorf("humanoid: release %s: %w", button, err)
	}
	return holdErr
}

func (h *Humanoid) moveTo(ctx context.Context, target Vector2D, window schemas.WindowTarget) error {
	h.mu.Lock()
	path := generatePath(h.rng, h.pos, target)
	h.mu.Unlock()

	for _, p := range path {
		x, y := p.Round()
		if err := h.paced(ctx, func() error { return h.driver.MoveTo(ctx, x, y, window) }); err != nil {
			return err
		}
		h.mu.Lock()
		h.pos = p
		h.mu.Unlock()
	}
	return nil
}

// paced waits for the limiter before running one primitive.
func (h *Humanoid) paced(ctx context.Context, fn func() error) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return err
	}
	return fn()
}

func (h *Humanoid) clickHold() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	ms := h.cfg.ClickHoldMinMs
	if span := h.cfg.ClickHoldMaxMs - h.cfg.ClickHoldMinMs; span > 0 {
		ms += h.rng.Intn(span + 1)
	}
	return time.Duration(ms) * time.Millisecond
}
