// internal/process/launcher.go
// Package process starts the external programs a macro asks for.
package process

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

const waitDelay = time.Second

// Launcher starts programs on the local machine.
type Launcher struct {
	logger *zap.Logger
}

// NewLauncher returns a Launcher logging to logger.
func NewLauncher(logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{logger: logger.Named("process")}
}

// Start runs path with args split like a shell would. With waitForExit the
// call blocks until the program exits and a non zero exit is an error
// carrying the program's stderr. Otherwise the program is detached from ctx
// and reaped in the background.
func (l *Launcher) Start(ctx context.Context, path, args, workingDir string, waitForExit bool) error {
	argv, err := SplitArgs(args)
	if err != nil {
		return err
	}

	var cmd *exec.Cmd
	if waitForExit {
		cmd = exec.CommandContext(ctx, path, argv...)
	} else {
		cmd = exec.Command(path, argv...)
	}
	cmd.Dir = workingDir

	logger := l.logger.With(zap.String("path", path), zap.Strings("args", argv))
	if !waitForExit {
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("starting %s: %w", path, err)
		}
		logger.Debug("Started detached process", zap.Int("pid", cmd.Process.Pid))
		go func() {
			if err := cmd.Wait(); err != nil {
				logger.Debug("Detached process exited", zap.Error(err))
			}
		}()
		return nil
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Grandchildren may hold stderr open after the program is killed.
	cmd.WaitDelay = waitDelay
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("running %s: %w: %s", path, err, msg)
		}
		return fmt.Errorf("running %s: %w", path, err)
	}
	logger.Debug("Process exited", zap.Int("exit_code", cmd.ProcessState.ExitCode()))
	return nil
}

// SplitArgs splits an argument string on unquoted whitespace. Single quotes
// keep everything literally; double quotes allow \" and \\ escapes; a
// backslash outside quotes escapes the next character.
func SplitArgs(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			if quote == '"' && r != '"' && r != '\\' {
				cur.WriteRune('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inArg = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if escaped {
		return nil, fmt.Errorf("trailing backslash in arguments %q", s)
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote in arguments %q", quote, s)
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}

// DryLauncher records launches in the log without starting anything.
type DryLauncher struct {
	logger *zap.Logger
}

// NewDryLauncher returns a DryLauncher logging to logger.
func NewDryLauncher(logger *zap.Logger) *DryLauncher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DryLauncher{logger: logger.Named("process")}
}

// Start checks the arguments parse and logs the launch.
func (l *DryLauncher) Start(ctx context.Context, path, args, workingDir string, waitForExit bool) error {
	argv, err := SplitArgs(args)
	if err != nil {
		return err
	}
	l.logger.Info("Dry run: would start process",
		zap.String("path", path),
		zap.Strings("args", argv),
		zap.String("dir", workingDir),
		zap.Bool("wait", waitForExit),
	)
	return ctx.Err()
}
