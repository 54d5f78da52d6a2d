// internal/macro/settings.go
package macro

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/macro-cli/api/schemas"
)

// All durations in settings are milliseconds, matching the values users type
// into a macro.

// -- Leaf Settings --

// ClickSettings clicks once at a fixed coordinate.
type ClickSettings struct {
	X               int                 `mapstructure:"x"`
	Y               int                 `mapstructure:"y"`
	Button          schemas.MouseButton `mapstructure:"button"`
	WindowTitle     string              `mapstructure:"window_title"`
	WindowClassName string              `mapstructure:"window_class_name"`
}

func (ClickSettings) CommandType() CommandType { return TypeClick }

func (s ClickSettings) Validate() error {
	_, err := schemas.ParseMouseButton(string(s.Button))
	return err
}

// HotkeySettings sends one key with optional modifiers.
type HotkeySettings struct {
	Key             string `mapstructure:"key"`
	Ctrl            bool   `mapstructure:"ctrl"`
	Alt             bool   `mapstructure:"alt"`
	Shift           bool   `mapstructure:"shift"`
	WindowTitle     string `mapstructure:"window_title"`
	WindowClassName string `mapstructure:"window_class_name"`
}

func (HotkeySettings) CommandType() CommandType { return TypeHotkey }

func (s HotkeySettings) Validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return fmt.Errorf("hotkey requires a key")
	}
	return nil
}

// WaitSettings pauses for Duration milliseconds.
type WaitSettings struct {
	Duration int `mapstructure:"duration"`
}

func (WaitSettings) CommandType() CommandType { return TypeWait }

// ImageSearch describes a template search shared by the image commands.
type ImageSearch struct {
	ImagePath       string  `mapstructure:"image_path"`
	Threshold       float64 `mapstructure:"threshold"`
	SearchColor     *int    `mapstructure:"search_color"`
	WindowTitle     string  `mapstructure:"window_title"`
	WindowClassName string  `mapstructure:"window_class_name"`
}

func (s ImageSearch) query() ImageQuery {
	return ImageQuery{
		Path:        s.ImagePath,
		Threshold:   s.Threshold,
		SearchColor: s.SearchColor,
		Window:      schemas.WindowTarget{Title: s.WindowTitle, ClassName: s.WindowClassName},
	}
}

func (s ImageSearch) validate() error {
	if s.ImagePath == "" {
		return fmt.Errorf("image_path is required")
	}
	if s.Threshold < 0 || s.Threshold > 1 {
		return fmt.Errorf("threshold must be between 0 and 1, got %v", s.Threshold)
	}
	return nil
}

// WaitImageSettings polls for an image until it appears or Timeout expires.
type WaitImageSettings struct {
	ImageSearch `mapstructure:",squash"`
	Timeout     int `mapstructure:"timeout"`
	Interval    int `mapstructure:"interval"`
}

func (WaitImageSettings) CommandType() CommandType { return TypeWaitImage }

func (s WaitImageSettings) Validate() error { return s.ImageSearch.validate() }

// ClickImageSettings polls for an image and clicks the match.
type ClickImageSettings struct {
	ImageSearch `mapstructure:",squash"`
	Timeout     int                 `mapstructure:"timeout"`
	Interval    int                 `mapstructure:"interval"`
	Button      schemas.MouseButton `mapstructure:"button"`
}

func (ClickImageSettings) CommandType() CommandType { return TypeClickImage }

func (s ClickImageSettings) Validate() error {
	if err := s.ImageSearch.validate(); err != nil {
		return err
	}
	_, err := schemas.ParseMouseButton(string(s.Button))
	return err
}

// AIModel names the detection model and how to load it.
type AIModel struct {
	ModelPath string `mapstructure:"model_path"`
	InputSize int    `mapstructure:"input_size"`
	UseGPU    bool   `mapstructure:"use_gpu"`
}

// AIQuery is one detection pass.
type AIQuery struct {
	WindowTitle   string  `mapstructure:"window_title"`
	ConfThreshold float64 `mapstructure:"conf_threshold"`
	IoUThreshold  float64 `mapstructure:"iou_threshold"`
}

// AIDetect combines the model, the query and the class a command looks for.
type AIDetect struct {
	AIModel `mapstructure:",squash"`
	AIQuery `mapstructure:",squash"`
	ClassID int `mapstructure:"class_id"`
}

func (s AIDetect) validate() error {
	if s.ModelPath == "" {
		return fmt.Errorf("model_path is required")
	}
	if s.ConfThreshold < 0 || s.ConfThreshold > 1 {
		return fmt.Errorf("conf_threshold must be between 0 and 1, got %v", s.ConfThreshold)
	}
	if s.IoUThreshold < 0 || s.IoUThreshold > 1 {
		return fmt.Errorf("iou_threshold must be between 0 and 1, got %v", s.IoUThreshold)
	}
	return nil
}

// ClickImageAISettings clicks the best detection of ClassID.
type ClickImageAISettings struct {
	AIDetect `mapstructure:",squash"`
	Button   schemas.MouseButton `mapstructure:"button"`
}

func (ClickImageAISettings) CommandType() CommandType { return TypeClickImageAI }

func (s ClickImageAISettings) Validate() error {
	if err := s.AIDetect.validate(); err != nil {
		return err
	}
	_, err := schemas.ParseMouseButton(string(s.Button))
	return err
}

// ExecuteSettings launches a program.
type ExecuteSettings struct {
	ProgramPath      string `mapstructure:"program_path"`
	Arguments        string `mapstructure:"arguments"`
	WorkingDirectory string `mapstructure:"working_directory"`
	WaitForExit      bool   `mapstructure:"wait_for_exit"`
}

func (ExecuteSettings) CommandType() CommandType { return TypeExecute }

func (s ExecuteSettings) Validate() error {
	if s.ProgramPath == "" {
		return fmt.Errorf("program_path is required")
	}
	return nil
}

// ScreenshotSettings saves a capture into SaveDirectory. Format selects the
// file extension and defaults to png.
type ScreenshotSettings struct {
	SaveDirectory   string `mapstructure:"save_directory"`
	Format          string `mapstructure:"format"`
	WindowTitle     string `mapstructure:"window_title"`
	WindowClassName string `mapstructure:"window_class_name"`
}

func (ScreenshotSettings) CommandType() CommandType { return TypeScreenshot }

// SetVariableSettings stores Value, rendered as a template, under Name.
type SetVariableSettings struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

func (SetVariableSettings) CommandType() CommandType { return TypeSetVariable }

func (s SetVariableSettings) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("variable name is required")
	}
	return nil
}

// SetVariableAI modes.
const (
	ModeClass = "Class"
	ModeCount = "Count"
)

// SetVariableAISettings stores the result of one detection pass. The mode is
// checked when the command runs.
type SetVariableAISettings struct {
	AIModel `mapstructure:",squash"`
	AIQuery `mapstructure:",squash"`
	Name    string `mapstructure:"name"`
	Mode    string `mapstructure:"mode"`
}

func (SetVariableAISettings) CommandType() CommandType { return TypeSetVariableAI }

func (s SetVariableAISettings) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("variable name is required")
	}
	return AIDetect{AIModel: s.AIModel, AIQuery: s.AIQuery}.validate()
}

// -- Control Flow Settings --

// LoopSettings repeats the children LoopCount times.
type LoopSettings struct {
	LoopCount int `mapstructure:"loop_count"`
}

func (LoopSettings) CommandType() CommandType { return TypeLoop }

type LoopEndSettings struct{}

func (LoopEndSettings) CommandType() CommandType { return TypeLoopEnd }

type LoopBreakSettings struct{}

func (LoopBreakSettings) CommandType() CommandType { return TypeLoopBreak }

type IfEndSettings struct{}

func (IfEndSettings) CommandType() CommandType { return TypeIfEnd }

// IfImageExistSettings runs the children when the image is on screen.
type IfImageExistSettings struct {
	ImageSearch `mapstructure:",squash"`
}

func (IfImageExistSettings) CommandType() CommandType { return TypeIfImageExist }

func (s IfImageExistSettings) Validate() error { return s.ImageSearch.validate() }

// IfImageNotExistSettings runs the children when the image is absent.
type IfImageNotExistSettings struct {
	ImageSearch `mapstructure:",squash"`
}

func (IfImageNotExistSettings) CommandType() CommandType { return TypeIfImageNotExist }

func (s IfImageNotExistSettings) Validate() error { return s.ImageSearch.validate() }

// IfImageExistAISettings runs the children when ClassID is detected.
type IfImageExistAISettings struct {
	AIDetect `mapstructure:",squash"`
}

func (IfImageExistAISettings) CommandType() CommandType { return TypeIfImageExistAI }

func (s IfImageExistAISettings) Validate() error { return s.AIDetect.validate() }

// IfImageNotExistAISettings runs the children when ClassID is not detected.
type IfImageNotExistAISettings struct {
	AIDetect `mapstructure:",squash"`
}

func (IfImageNotExistAISettings) CommandType() CommandType { return TypeIfImageNotExistAI }

func (s IfImageNotExistAISettings) Validate() error { return s.AIDetect.validate() }

// IfVariableSettings compares a stored variable with a literal.
type IfVariableSettings struct {
	Name     string `mapstructure:"name"`
	Operator string `mapstructure:"operator"`
	Value    string `mapstructure:"value"`
}

func (IfVariableSettings) CommandType() CommandType { return TypeIfVariable }

func (s IfVariableSettings) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("variable name is required")
	}
	return nil
}
