package macro_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/macro-cli/internal/macro"
)

const sampleMacro = `
name: farm
description: collect and repeat
commands:
  - type: SetVariable
    settings:
      name: round
      value: "0"
  - type: Loop
    line: 10
    settings:
      loop_count: "3"
    children:
      - type: ClickImage
        settings:
          image_path: ~/img/collect.png
          threshold: 0.85
          timeout: 2000
          interval: 100
          button: right
      - type: IfVariable
        settings:
          name: round
          operator: ">="
          value: 2
        children:
          - type: LoopBreak
      - type: Wait
        enabled: false
        settings:
          duration: 500
`

func TestParseMacro_BuildsTree(t *testing.T) {
	m, err := macro.ParseMacro([]byte(sampleMacro))
	require.NoError(t, err)
	assert.Equal(t, "farm", m.Name)

	tree, err := m.Tree()
	require.NoError(t, err)
	assert.Equal(t, 6, tree.Len())

	var lines []int
	var types []macro.CommandType
	tree.Walk(func(n *macro.Node) bool {
		lines = append(lines, n.LineNumber())
		types = append(types, n.Type())
		return true
	})
	assert.Equal(t, []int{1, 10, 2, 3, 4, 5}, lines)
	assert.Equal(t, []macro.CommandType{
		macro.TypeSetVariable, macro.TypeLoop, macro.TypeClickImage,
		macro.TypeIfVariable, macro.TypeLoopBreak, macro.TypeWait,
	}, types)

	wait, ok := tree.Lookup(5)
	require.True(t, ok)
	assert.False(t, wait.IsEnabled())
	assert.Equal(t, 5, tree.Executable().Len(), "disabled wait is dropped")
}

func TestDecodeSettings_WeakTypes(t *testing.T) {
	s, err := macro.DecodeSettings(macro.TypeWaitImage, map[string]any{
		"image_path":   "a.png",
		"threshold":    "0.5",
		"timeout":      "1500",
		"search_color": 255,
	})
	require.NoError(t, err)

	wi, ok := s.(macro.WaitImageSettings)
	require.True(t, ok)
	assert.Equal(t, 1500, wi.Timeout)
	assert.Equal(t, 0.5, wi.Threshold)
	require.NotNil(t, wi.SearchColor)
	assert.Equal(t, 255, *wi.SearchColor)
}

func TestBuildTree_Rejects(t *testing.T) {
	cases := map[string][]macro.Definition{
		"unknown type": {{Type: "Teleport"}},
		"unknown key":  {{Type: macro.TypeWait, Settings: map[string]any{"durration": 5}}},
		"leaf with children": {{
			Type:     macro.TypeWait,
			Children: []macro.Definition{{Type: macro.TypeLoopBreak}},
		}},
		"duplicate line": {
			{Type: macro.TypeLoopBreak, Line: 4},
			{Type: macro.TypeLoopBreak, Line: 4},
		},
		"invalid settings": {{Type: macro.TypeClick, Settings: map[string]any{"button": "sideways"}}},
	}
	for name, defs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := macro.BuildTree(defs)
			assert.Error(t, err)
		})
	}
}

func TestBuildTree_ErrorsNameTheLine(t *testing.T) {
	_, err := macro.BuildTree([]macro.Definition{
		{Type: macro.TypeLoopBreak},
		{Type: macro.TypeHotkey, Line: 7},
	})
	var ce *macro.CommandError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 7, ce.Line)
	assert.Equal(t, macro.TypeHotkey, ce.Type)
}

func TestLoadMacro(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleMacro), 0o600))

	m, err := macro.LoadMacro(path)
	require.NoError(t, err)
	assert.Len(t, m.Commands, 2)

	_, err = macro.LoadMacro(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = macro.ParseMacro([]byte("name: empty\ncommands: []\n"))
	assert.Error(t, err)
}
