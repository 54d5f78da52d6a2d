package schemas

import (
	"fmt"
	"strings"
)

// -- Input Schemas --

// KeyModifier represents keyboard modifiers held while a hotkey is sent.
type KeyModifier int

const (
	ModNone  KeyModifier = 0
	ModAlt   KeyModifier = 1
	ModCtrl  KeyModifier = 2
	ModMeta  KeyModifier = 4
	ModShift KeyModifier = 8
)

// Has reports whether all bits of m are set.
func (k KeyModifier) Has(m KeyModifier) bool { return k&m == m }

// String renders the modifier set in the conventional "Ctrl+Alt+Shift" order.
func (k KeyModifier) String() string {
	var parts []string
	if k.Has(ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if k.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if k.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if k.Has(ModMeta) {
		parts = append(parts, "Meta")
	}
	return strings.Join(parts, "+")
}

// Modifiers builds a KeyModifier from the three flags a hotkey step carries.
func Modifiers(ctrl, alt, shift bool) KeyModifier {
	m := ModNone
	if ctrl {
		m |= ModCtrl
	}
	if alt {
		m |= ModAlt
	}
	if shift {
		m |= ModShift
	}
	return m
}

// MouseButton names the mouse button used by a click.
type MouseButton string

const (
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

// ParseMouseButton converts a settings value to a MouseButton. An empty string
// means the left button.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return ButtonLeft, nil
	case "right":
		return ButtonRight, nil
	case "middle":
		return ButtonMiddle, nil
	default:
		return ButtonLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, or middle)", s)
	}
}

// WindowTarget scopes an input or capture operation to a window. Both fields
// empty means the whole desktop / foreground window.
type WindowTarget struct {
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	ClassName string `json:"class_name,omitempty" yaml:"class_name,omitempty"`
}

// IsZero reports whether no window was requested.
func (w WindowTarget) IsZero() bool { return w.Title == "" && w.ClassName == "" }

// -- Geometry Schemas --

// Point is a screen coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect is a screen rectangle.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the middle of the rectangle, rounded towards the origin.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Detection is one object reported by the AI detector.
type Detection struct {
	ClassID int     `json:"class_id"`
	Score   float64 `json:"score"`
	Rect    Rect    `json:"rect"`
}
