// cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/macro-cli/api/schemas"
	"github.com/xkilldash9x/macro-cli/internal/bus"
	"github.com/xkilldash9x/macro-cli/internal/capture"
	"github.com/xkilldash9x/macro-cli/internal/config"
	"github.com/xkilldash9x/macro-cli/internal/engine"
	"github.com/xkilldash9x/macro-cli/internal/humanoid"
	"github.com/xkilldash9x/macro-cli/internal/macro"
	"github.com/xkilldash9x/macro-cli/internal/metrics"
	"github.com/xkilldash9x/macro-cli/internal/observability"
	"github.com/xkilldash9x/macro-cli/internal/process"
	"github.com/xkilldash9x/macro-cli/internal/variables"
)

var (
	// ErrStopped is returned when a macro ends on a stop signal, for example
	// an image that never appeared.
	ErrStopped = errors.New("macro stopped")
	// ErrCancelled is returned when a run is interrupted or times out.
	ErrCancelled = errors.New("macro cancelled")
)

// Event stream formats for `run --events`.
const (
	eventsNone = "none"
	eventsText = "text"
	eventsJSON = "json"
)

type runOptions struct {
	dryRun      bool
	events      string
	timeout     time.Duration
	metrics     bool
	metricsAddr string
	vars        map[string]string
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}
	runCmd := &cobra.Command{
		Use:   "run <macro.yaml>",
		Short: "Executes a macro file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			switch opts.events {
			case eventsNone, eventsText, eventsJSON:
			default:
				return fmt.Errorf("invalid --events value %q (expected none, text or json)", opts.events)
			}
			if cmd.Flags().Changed("timeout") {
				cfg.SetEngineRunTimeout(opts.timeout)
			}
			if opts.metrics {
				cfg.SetMetricsEnabled(true)
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.SetMetricsAddr(opts.metricsAddr)
			}

			res, err := runMacro(cmd.Context(), cfg, observability.GetLogger(), args[0], opts, cmd.OutOrStdout())
			if res != nil {
				cmd.PrintErrf("Run %s %s after %s: %d commands started\n", res.RunID, res.Status, res.Duration.Round(time.Millisecond), res.Executed)
			}
			return err
		},
	}

	runCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Log input instead of sending it, and write placeholder screenshots.")
	runCmd.Flags().StringVar(&opts.events, "events", eventsNone, "Stream run events to stdout: none, text or json.")
	runCmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Abort the run after this long. (Overrides config/env)")
	runCmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Serve prometheus metrics while the macro runs.")
	runCmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Listen address of the metrics endpoint. (Overrides config/env)")
	runCmd.Flags().StringToStringVar(&opts.vars, "var", nil, "Set a variable before the run, as name=value. Repeatable.")
	return runCmd
}

// runMacro loads, validates and executes one macro file. A completed run
// returns a nil error; stopped, cancelled and failed runs return an error
// alongside the result.
func runMacro(ctx context.Context, cfg *config.Config, logger *zap.Logger, path string, opts runOptions, out io.Writer) (*engine.Result, error) {
	m, err := macro.LoadMacro(path)
	if err != nil {
		return nil, err
	}
	tree, err := m.Tree()
	if err != nil {
		return nil, fmt.Errorf("invalid macro %s: %w", path, err)
	}
	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("invalid macro %s: %w", path, err)
	}

	store, err := variables.Open(ctx, cfg.Variables())
	if err != nil {
		return nil, fmt.Errorf("failed to open variable store: %w", err)
	}
	defer store.Close()
	for name, value := range opts.vars {
		if err := store.Set(ctx, name, value); err != nil {
			return nil, err
		}
	}

	services, err := buildServices(cfg, logger, store, opts.dryRun)
	if err != nil {
		return nil, err
	}

	eventBus := bus.New(logger, cfg.Engine().EventBuffer)
	var wg sync.WaitGroup
	consume := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	logCh, _ := eventBus.Subscribe()
	consume(func() { observability.LogEvents(logger, logCh) })
	if opts.events != eventsNone {
		ch, _ := eventBus.Subscribe()
		consume(func() { printEvents(out, opts.events, ch) })
	}

	metricsCtx, stopMetrics := context.WithCancel(ctx)
	defer stopMetrics()
	if cfg.Metrics().Enabled {
		collector := metrics.NewCollector(logger)
		ch, _ := eventBus.Subscribe(schemas.EventStart, schemas.EventFinish, schemas.EventRunStart, schemas.EventRunFinish)
		consume(func() { collector.Consume(context.Background(), ch) })
		consume(func() {
			if err := collector.Serve(metricsCtx, cfg.Metrics().Addr); err != nil {
				logger.Warn("Metrics endpoint stopped", zap.Error(err))
			}
		})
	}

	runner, err := engine.NewRunner(cfg, logger, services, eventBus)
	if err != nil {
		eventBus.Shutdown()
		stopMetrics()
		wg.Wait()
		return nil, err
	}
	logger.Info("Running macro", zap.String("name", m.Name), zap.String("path", path), zap.Bool("dry_run", opts.dryRun))
	res, runErr := runner.Run(ctx, tree)

	eventBus.Shutdown()
	stopMetrics()
	wg.Wait()

	switch {
	case runErr != nil:
		return res, runErr
	case res.Status == engine.StatusStopped:
		return res, fmt.Errorf("%w: %s", ErrStopped, res.LastLog)
	case res.Status == engine.StatusCancelled:
		return res, ErrCancelled
	}
	return res, nil
}

// buildServices wires the collaborators of a run. There is no native input
// or screen backend, so only dry runs get a mouse, a keyboard and screenshots;
// image search and detection are never available from the CLI.
func buildServices(cfg config.Interface, logger *zap.Logger, store macro.VariableStore, dryRun bool) (macro.Services, error) {
	services := macro.Services{Variables: store}
	if !dryRun {
		services.Process = process.NewLauncher(logger)
		logger.Warn("No input or capture backend on this platform; input and screenshot commands will fail. Use --dry-run to simulate them.")
		return services, nil
	}

	h, err := humanoid.New(cfg.Humanoid(), humanoid.NewLogDriver(logger), logger)
	if err != nil {
		return services, err
	}
	services.Mouse = h
	services.Keyboard = h
	services.Process = process.NewDryLauncher(logger)
	services.Screen = capture.NewSaver(capture.NewPlaceholder(cfg.Capture()), logger)
	return services, nil
}

// printEvents writes events from ch to out until ch is closed. The text form
// keeps to doing lines and run boundaries; json writes every event.
func printEvents(out io.Writer, format string, ch <-chan schemas.Event) {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
	for ev := range ch {
		if format == eventsJSON {
			_ = enc.Encode(ev)
			continue
		}
		switch ev.Kind {
		case schemas.EventDoing:
			fmt.Fprintf(out, "[%3d] %-17s %s\n", ev.Line, ev.Command, ev.Detail)
		case schemas.EventRunStart:
			fmt.Fprintf(out, "run %s started\n", ev.RunID)
		case schemas.EventRunFinish:
			fmt.Fprintf(out, "run %s %s\n", ev.RunID, ev.Detail)
		}
	}
}

// ExitCode maps the error of Execute to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrStopped):
		return 2
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
