package macro_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/macro-cli/api/schemas"
	"github.com/xkilldash9x/macro-cli/internal/macro"
	"github.com/xkilldash9x/macro-cli/internal/mocks"
	"github.com/xkilldash9x/macro-cli/internal/variables"
)

// harness wires a tree to mocked collaborators and an event recorder.
type harness struct {
	t        *testing.T
	tree     *macro.Tree
	rec      *mocks.Recorder
	mouse    *mocks.MockMouse
	keyboard *mocks.MockKeyboard
	launcher *mocks.MockLauncher
	screen   *mocks.MockCapturer
	images   *mocks.MockImageSearcher
	detector *mocks.MockDetector
	vars     *variables.MemoryStore
	ec       *macro.ExecContext
	nextLine int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		tree:     macro.NewTree(),
		rec:      &mocks.Recorder{},
		mouse:    new(mocks.MockMouse),
		keyboard: new(mocks.MockKeyboard),
		launcher: new(mocks.MockLauncher),
		screen:   new(mocks.MockCapturer),
		images:   new(mocks.MockImageSearcher),
		detector: new(mocks.MockDetector),
		vars:     variables.NewMemoryStore(nil),
		nextLine: 1,
	}
	services := macro.Services{
		Mouse:     h.mouse,
		Keyboard:  h.keyboard,
		Process:   h.launcher,
		Screen:    h.screen,
		Images:    h.images,
		Detector:  h.detector,
		Variables: h.vars,
	}
	h.ec = macro.NewExecContext(services, h.rec, zaptest.NewLogger(t), macro.WithWaitTick(5*time.Millisecond))
	return h
}

// withServices replaces the collaborators, keeping the recorder.
func (h *harness) withServices(s macro.Services) *harness {
	h.ec = macro.NewExecContext(s, h.rec, zaptest.NewLogger(h.t), macro.WithWaitTick(5*time.Millisecond))
	return h
}

// add builds a command from settings and appends it under parent.
func (h *harness) add(parent macro.Handle, s macro.Settings) macro.Handle {
	h.t.Helper()
	cmd, err := macro.Build(s)
	require.NoError(h.t, err)
	return h.addCmd(parent, cmd)
}

func (h *harness) addCmd(parent macro.Handle, cmd macro.Command) macro.Handle {
	h.t.Helper()
	handle, err := h.tree.Add(parent, h.nextLine, true, cmd)
	require.NoError(h.t, err)
	h.nextLine++
	return handle
}

func (h *harness) run(ctx context.Context, handle macro.Handle) (bool, error) {
	return h.tree.Execute(ctx, h.ec, handle)
}

// progress returns the percentages reported by the node on line.
func (h *harness) progress(line int) []int {
	var out []int
	for _, ev := range h.rec.OfKind(schemas.EventProgress) {
		if ev.Line == line {
			out = append(out, ev.Percent)
		}
	}
	return out
}

// probe is a test command that records each execution.
type probe struct {
	name   string
	result bool
	log    *callLog
	// seen records the node progress observed at the start of each run.
	seen []int
}

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func newProbe(name string, log *callLog) *probe {
	return &probe{name: name, result: true, log: log}
}

func (p *probe) Type() macro.CommandType { return "Probe" }

func (p *probe) Execute(_ context.Context, s *macro.Scope) (bool, error) {
	p.seen = append(p.seen, s.Node().Progress())
	p.log.add(p.name)
	s.ReportProgress(100)
	return p.result, nil
}

func assertNonDecreasing(t *testing.T, values []int) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		require.GreaterOrEqual(t, values[i], values[i-1], "progress went backwards at %d: %v", i, values)
	}
}

func cancelled() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
