// internal/metrics/metrics.go
// Package metrics exports run events as prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/macro-cli/api/schemas"
)

type startKey struct {
	runID string
	line  int
}

// Collector turns the event stream into counters and histograms held in its
// own registry.
type Collector struct {
	registry *prometheus.Registry
	logger   *zap.Logger

	commandsStarted *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	runs            *prometheus.CounterVec
	runDuration     prometheus.Histogram

	mu      sync.Mutex
	started map[startKey]time.Time
}

// NewCollector registers the macro metrics and the Go runtime collectors on a
// fresh registry.
func NewCollector(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		logger:   logger.Named("metrics"),
		commandsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macro_commands_started_total",
				Help: "Total number of commands started, by command type.",
			},
			[]string{"command"},
		),
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macro_command_duration_seconds",
				Help:    "Time from a command's start event to its finish event.",
				Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
			},
			[]string{"command"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macro_runs_total",
				Help: "Total number of finished runs, by final status.",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "macro_run_duration_seconds",
			Help:    "Wall time of whole runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 8),
		}),
		started: make(map[startKey]time.Time),
	}
	c.registry.MustRegister(
		c.commandsStarted, c.commandDuration, c.runs, c.runDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Observe records one event.
func (c *Collector) Observe(ev schemas.Event) {
	key := startKey{runID: ev.RunID, line: ev.Line}
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case schemas.EventStart:
		c.commandsStarted.WithLabelValues(ev.Command).Inc()
		c.started[key] = ev.Timestamp
	case schemas.EventFinish:
		if at, ok := c.started[key]; ok {
			c.commandDuration.WithLabelValues(ev.Command).Observe(ev.Timestamp.Sub(at).Seconds())
			delete(c.started, key)
		}
	case schemas.EventRunStart:
		c.started[startKey{runID: ev.RunID, line: -1}] = ev.Timestamp
	case schemas.EventRunFinish:
		c.runs.WithLabelValues(ev.Detail).Inc()
		runKey := startKey{runID: ev.RunID, line: -1}
		if at, ok := c.started[runKey]; ok {
			c.runDuration.Observe(ev.Timestamp.Sub(at).Seconds())
		}
		// Drop whatever a failed run left open.
		for k := range c.started {
			if k.runID == ev.RunID {
				delete(c.started, k)
			}
		}
	}
}

// Consume observes events from ch until it closes or ctx is done.
func (c *Collector) Consume(ctx context.Context, ch <-chan schemas.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			c.Observe(ev)
		}
	}
}

// Handler serves the registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("Serving metrics", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	}
}
