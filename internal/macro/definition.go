// internal/macro/definition.go
package macro

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Definition is the serialisable form of one node.
type Definition struct {
	Type     CommandType    `yaml:"type" json:"type"`
	Line     int            `yaml:"line,omitempty" json:"line,omitempty"`
	Enabled  *bool          `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Settings map[string]any `yaml:"settings,omitempty" json:"settings,omitempty"`
	Children []Definition   `yaml:"children,omitempty" json:"children,omitempty"`
}

// IsEnabled defaults to true when Enabled is unset.
func (d Definition) IsEnabled() bool { return d.Enabled == nil || *d.Enabled }

// Macro is a named list of root definitions, as stored in a macro file.
type Macro struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Commands    []Definition `yaml:"commands" json:"commands"`
}

// ParseMacro decodes a YAML macro document.
func ParseMacro(data []byte) (*Macro, error) {
	var m Macro
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse macro: %w", err)
	}
	if len(m.Commands) == 0 {
		return nil, errors.New("macro has no commands")
	}
	return &m, nil
}

// LoadMacro reads and parses a macro file. The path may start with ~.
func LoadMacro(path string) (*Macro, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read macro %s: %w", expanded, err)
	}
	return ParseMacro(data)
}

// Tree builds the macro's command tree.
func (m *Macro) Tree() (*Tree, error) { return BuildTree(m.Commands) }

// BuildTree constructs a tree from definitions. Nodes without a line number
// get the lowest unused number, assigned depth-first.
func BuildTree(defs []Definition) (*Tree, error) {
	used := make(map[int]bool)
	if err := collectLines(defs, used); err != nil {
		return nil, err
	}

	b := &treeBuilder{tree: NewTree(), used: used, next: 1}
	for _, d := range defs {
		if err := b.add(NoParent, d); err != nil {
			return nil, err
		}
	}
	return b.tree, nil
}

func collectLines(defs []Definition, used map[int]bool) error {
	for _, d := range defs {
		if d.Line < 0 {
			return fmt.Errorf("%s: negative line number %d", d.Type, d.Line)
		}
		if d.Line > 0 {
			if used[d.Line] {
				return fmt.Errorf("%w: %d", ErrDuplicateLine, d.Line)
			}
			used[d.Line] = true
		}
		if err := collectLines(d.Children, used); err != nil {
			return err
		}
	}
	return nil
}

type treeBuilder struct {
	tree *Tree
	used map[int]bool
	next int
}

func (b *treeBuilder) lineFor(d Definition) int {
	if d.Line > 0 {
		return d.Line
	}
	for b.used[b.next] {
		b.next++
	}
	b.used[b.next] = true
	return b.next
}

func (b *treeBuilder) add(parent Handle, d Definition) error {
	line := b.lineFor(d)
	wrap := func(err error) error {
		return &CommandError{Line: line, Type: d.Type, Err: err}
	}

	s, err := DecodeSettings(d.Type, d.Settings)
	if err != nil {
		return wrap(err)
	}
	cmd, err := New(d.Type, s)
	if err != nil {
		return wrap(err)
	}
	if len(d.Children) > 0 && !acceptsChildren(d.Type) {
		return wrap(ErrUnexpectedChildren)
	}

	h, err := b.tree.Add(parent, line, d.IsEnabled(), cmd)
	if err != nil {
		return wrap(err)
	}
	for _, c := range d.Children {
		if err := b.add(h, c); err != nil {
			return err
		}
	}
	return nil
}

// decodeSettings fills out from a loosely typed map. Unknown keys are
// rejected so typos in a macro file surface early.
func decodeSettings(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
