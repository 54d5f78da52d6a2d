// internal/macro/registry.go
package macro

import (
	"fmt"
	"sort"
)

// factory knows how to decode and construct one command type.
type factory struct {
	decode func(raw map[string]any) (Settings, error)
	build  func(s Settings) (Command, error)
}

func register[S Settings](build func(S) Command) factory {
	return factory{
		decode: func(raw map[string]any) (Settings, error) {
			var s S
			if err := decodeSettings(raw, &s); err != nil {
				return nil, err
			}
			return s, nil
		},
		build: func(s Settings) (Command, error) {
			typed, ok := s.(S)
			if !ok {
				var want S
				return nil, fmt.Errorf("%w: %s expects %T, got %T", ErrSettingsMismatch, want.CommandType(), want, s)
			}
			if v, ok := any(typed).(validator); ok {
				if err := v.Validate(); err != nil {
					return nil, err
				}
			}
			return build(typed), nil
		},
	}
}

// registry is the closed set of command types.
var registry = map[CommandType]factory{
	TypeClick:             register(func(s ClickSettings) Command { return &Click{settings: s} }),
	TypeHotkey:            register(func(s HotkeySettings) Command { return &Hotkey{settings: s} }),
	TypeWait:              register(func(s WaitSettings) Command { return &Wait{settings: s} }),
	TypeWaitImage:         register(func(s WaitImageSettings) Command { return &WaitImage{settings: s} }),
	TypeClickImage:        register(func(s ClickImageSettings) Command { return &ClickImage{settings: s} }),
	TypeClickImageAI:      register(func(s ClickImageAISettings) Command { return &ClickImageAI{settings: s} }),
	TypeExecute:           register(func(s ExecuteSettings) Command { return &Execute{settings: s} }),
	TypeScreenshot:        register(func(s ScreenshotSettings) Command { return &Screenshot{settings: s} }),
	TypeSetVariable:       register(func(s SetVariableSettings) Command { return &SetVariable{settings: s} }),
	TypeSetVariableAI:     register(func(s SetVariableAISettings) Command { return &SetVariableAI{settings: s} }),
	TypeLoop:              register(func(s LoopSettings) Command { return &Loop{settings: s} }),
	TypeLoopEnd:           register(func(LoopEndSettings) Command { return LoopEnd{} }),
	TypeLoopBreak:         register(func(LoopBreakSettings) Command { return LoopBreak{} }),
	TypeIfImageExist:      register(func(s IfImageExistSettings) Command { return &IfImageExist{settings: s} }),
	TypeIfImageNotExist:   register(func(s IfImageNotExistSettings) Command { return &IfImageNotExist{settings: s} }),
	TypeIfImageExistAI:    register(func(s IfImageExistAISettings) Command { return &IfImageExistAI{settings: s} }),
	TypeIfImageNotExistAI: register(func(s IfImageNotExistAISettings) Command { return &IfImageNotExistAI{settings: s} }),
	TypeIfVariable:        register(func(s IfVariableSettings) Command { return &IfVariable{settings: s} }),
	TypeIfEnd:             register(func(IfEndSettings) Command { return IfEnd{} }),
}

// New constructs a command of type t. The settings must be the settings type
// registered for t and must pass its validation.
func New(t CommandType, s Settings) (Command, error) {
	f, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, t)
	}
	return f.build(s)
}

// Build constructs the command its settings belong to.
func Build(s Settings) (Command, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil settings", ErrSettingsMismatch)
	}
	return New(s.CommandType(), s)
}

// DecodeSettings converts a loosely typed map into the settings of t.
func DecodeSettings(t CommandType, raw map[string]any) (Settings, error) {
	f, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, t)
	}
	return f.decode(raw)
}

// Types lists every registered command type in name order.
func Types() []CommandType {
	out := make([]CommandType, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// acceptsChildren reports whether a node of type t may own children.
func acceptsChildren(t CommandType) bool {
	return IsContainer(t) || t == TypeLoopEnd || t == TypeIfEnd
}
