// internal/engine/runner.go
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/xkilldash9x/macro-cli/api/schemas"
	"github.com/xkilldash9x/macro-cli/internal/config"
	"github.com/xkilldash9x/macro-cli/internal/macro"
)

// ErrBusy is returned by TryRun while another run is in flight.
var ErrBusy = errors.New("a macro is already running")

// Status is the outcome of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	// StatusStopped means a root command returned a stop signal, for
	// example an image that never appeared.
	StatusStopped   Status = "stopped"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Result summarises one run.
type Result struct {
	RunID    string
	Status   Status
	Duration time.Duration
	// LastLog is the last doing detail emitted, or the error for failed runs.
	LastLog string
	// Executed counts the commands that started.
	Executed int
	Err      error
}

// Runner executes macro trees one at a time.
type Runner struct {
	cfg      config.Interface
	logger   *zap.Logger
	services macro.Services
	notifier macro.Notifier
	sem      *semaphore.Weighted
}

// NewRunner creates a Runner. notifier may be nil.
func NewRunner(cfg config.Interface, logger *zap.Logger, services macro.Services, notifier macro.Notifier) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Runner{
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "runner")),
		services: services,
		notifier: notifier,
		sem:      semaphore.NewWeighted(1),
	}, nil
}

// Run waits for any in-flight run to finish, then executes tree. The error is
// non-nil only for failed runs and matches Result.Err.
func (r *Runner) Run(ctx context.Context, tree *macro.Tree) (*Result, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return &Result{Status: StatusCancelled, Err: err}, nil
	}
	defer r.sem.Release(1)
	return r.run(ctx, tree)
}

// TryRun executes tree unless a run is already in progress.
func (r *Runner) TryRun(ctx context.Context, tree *macro.Tree) (*Result, error) {
	if !r.sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer r.sem.Release(1)
	return r.run(ctx, tree)
}

func (r *Runner) run(ctx context.Context, tree *macro.Tree) (*Result, error) {
	engineCfg := r.cfg.Engine()
	if engineCfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, engineCfg.RunTimeout)
		defer cancel()
	}

	res := &Result{RunID: uuid.NewString(), Status: StatusCompleted}
	logger := r.logger.With(zap.String("run_id", res.RunID))
	track := &tracker{next: r.notifier}
	ec := macro.NewExecContext(r.services, track, logger,
		macro.WithWaitTick(engineCfg.WaitTick),
		macro.WithRunID(res.RunID),
	)

	exec := tree.Executable()
	logger.Info("Starting macro run", zap.Int("commands", exec.Len()))
	start := time.Now()
	ec.Emit(schemas.EventRunStart, "")

	for _, h := range exec.Roots() {
		if ctx.Err() != nil {
			res.Status = StatusCancelled
			break
		}
		ok, err := exec.Execute(ctx, ec, h)
		if err != nil {
			res.Status = StatusFailed
			res.Err = err
			break
		}
		if !ok {
			res.Status = StatusStopped
			if ctx.Err() != nil {
				res.Status = StatusCancelled
			}
			break
		}
	}

	exec.ResetProgress()
	tree.ResetProgress()
	res.Duration = time.Since(start)
	res.Executed, res.LastLog = track.snapshot()
	if res.Err != nil {
		res.LastLog = res.Err.Error()
	}
	ec.Emit(schemas.EventRunFinish, string(res.Status))

	fields := []zap.Field{
		zap.String("status", string(res.Status)),
		zap.Duration("duration", res.Duration),
		zap.Int("executed", res.Executed),
	}
	switch res.Status {
	case StatusFailed:
		logger.Error("Macro run failed", append(fields, zap.Error(res.Err))...)
	case StatusCompleted:
		logger.Info("Macro run completed", fields...)
	default:
		logger.Warn("Macro run ended early", append(fields, zap.String("last_log", res.LastLog))...)
	}
	return res, res.Err
}

// tracker counts started commands and remembers the last detail line before
// forwarding events.
type tracker struct {
	next macro.Notifier

	mu       sync.Mutex
	started  int
	lastLine string
}

func (t *tracker) Notify(ev schemas.Event) {
	t.mu.Lock()
	switch ev.Kind {
	case schemas.EventStart:
		t.started++
	case schemas.EventDoing:
		t.lastLine = ev.Detail
	}
	t.mu.Unlock()
	if t.next != nil {
		t.next.Notify(ev)
	}
}

func (t *tracker) snapshot() (int, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started, t.lastLine
}
