// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/macro-cli/api/schemas"
	"github.com/xkilldash9x/macro-cli/internal/config"
	"github.com/xkilldash9x/macro-cli/internal/macro"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) Logger() config.LoggerConfig {
	return m.Called().Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Engine() config.EngineConfig {
	return m.Called().Get(0).(config.EngineConfig)
}

func (m *MockConfig) Humanoid() config.HumanoidConfig {
	return m.Called().Get(0).(config.HumanoidConfig)
}

func (m *MockConfig) Variables() config.VariablesConfig {
	return m.Called().Get(0).(config.VariablesConfig)
}

func (m *MockConfig) Metrics() config.MetricsConfig {
	return m.Called().Get(0).(config.MetricsConfig)
}

func (m *MockConfig) Capture() config.CaptureConfig {
	return m.Called().Get(0).(config.CaptureConfig)
}

func (m *MockConfig) SetEngineRunTimeout(d time.Duration) { m.Called(d) }
func (m *MockConfig) SetMetricsEnabled(b bool)            { m.Called(b) }
func (m *MockConfig) SetMetricsAddr(addr string)          { m.Called(addr) }

// -- Input Mocks --

// MockMouse mocks macro.Mouse.
type MockMouse struct {
	mock.Mock
}

func (m *MockMouse) Click(ctx context.Context, x, y int, button schemas.MouseButton, window schemas.WindowTarget) error {
	return m.Called(ctx, x, y, button, window).Error(0)
}

// MockKeyboard mocks macro.Keyboard.
type MockKeyboard struct {
	mock.Mock
}

func (m *MockKeyboard) SendHotkey(ctx context.Context, key string, mods schemas.KeyModifier, window schemas.WindowTarget) error {
	return m.Called(ctx, key, mods, window).Error(0)
}

// -- Process & Screen Mocks --

// MockLauncher mocks macro.ProcessLauncher.
type MockLauncher struct {
	mock.Mock
}

func (m *MockLauncher) Start(ctx context.Context, path, args, workingDir string, waitForExit bool) error {
	return m.Called(ctx, path, args, workingDir, waitForExit).Error(0)
}

// MockCapturer mocks macro.ScreenCapturer.
type MockCapturer struct {
	mock.Mock
}

func (m *MockCapturer) Capture(ctx context.Context, path string, window schemas.WindowTarget) error {
	return m.Called(ctx, path, window).Error(0)
}

// -- Vision Mocks --

// MockImageSearcher mocks macro.ImageSearcher.
type MockImageSearcher struct {
	mock.Mock
}

func (m *MockImageSearcher) Search(ctx context.Context, q macro.ImageQuery) (*schemas.Point, error) {
	args := m.Called(ctx, q)
	var pt *schemas.Point
	if v := args.Get(0); v != nil {
		pt = v.(*schemas.Point)
	}
	return pt, args.Error(1)
}

// MockDetector mocks macro.Detector.
type MockDetector struct {
	mock.Mock
}

func (m *MockDetector) Initialize(modelPath string, inputSize int, useGPU bool) error {
	return m.Called(modelPath, inputSize, useGPU).Error(0)
}

func (m *MockDetector) Detect(ctx context.Context, windowTitle string, conf, iou float64) ([]schemas.Detection, error) {
	args := m.Called(ctx, windowTitle, conf, iou)
	var ds []schemas.Detection
	if v := args.Get(0); v != nil {
		ds = v.([]schemas.Detection)
	}
	return ds, args.Error(1)
}

// -- Variable Store Mock --

// MockVariableStore mocks macro.VariableStore.
type MockVariableStore struct {
	mock.Mock
}

func (m *MockVariableStore) Get(ctx context.Context, name string) (string, bool, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockVariableStore) Set(ctx context.Context, name, value string) error {
	return m.Called(ctx, name, value).Error(0)
}

func (m *MockVariableStore) List(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	var vars map[string]string
	if v := args.Get(0); v != nil {
		vars = v.(map[string]string)
	}
	return vars, args.Error(1)
}

// -- Event Recorder --

// Recorder is a macro.Notifier that keeps every event for later assertions.
type Recorder struct {
	mu     sync.Mutex
	events []schemas.Event
}

func (r *Recorder) Notify(ev schemas.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []schemas.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]schemas.Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfKind returns the recorded events of one kind, in order.
func (r *Recorder) OfKind(kind schemas.EventKind) []schemas.Event {
	var out []schemas.Event
	for _, ev := range r.Events() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Details returns the detail strings of all doing events.
func (r *Recorder) Details() []string {
	var out []string
	for _, ev := range r.OfKind(schemas.EventDoing) {
		out = append(out, ev.Detail)
	}
	return out
}
