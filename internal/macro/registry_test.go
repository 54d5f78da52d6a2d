package macro_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/macro-cli/internal/macro"
)

func TestRegistry_CoversEveryType(t *testing.T) {
	types := macro.Types()
	assert.Len(t, types, 19)
	for _, ct := range types {
		s, err := macro.DecodeSettings(ct, nil)
		require.NoError(t, err, ct)
		assert.Equal(t, ct, s.CommandType())
	}
}

func TestRegistry_RejectsMismatchedSettings(t *testing.T) {
	_, err := macro.New(macro.TypeLoop, macro.WaitSettings{Duration: 1})
	assert.ErrorIs(t, err, macro.ErrSettingsMismatch)

	_, err = macro.New("Teleport", macro.WaitSettings{})
	assert.ErrorIs(t, err, macro.ErrUnknownCommand)

	_, err = macro.Build(nil)
	assert.ErrorIs(t, err, macro.ErrSettingsMismatch)
}

func TestRegistry_ValidatesSettings(t *testing.T) {
	invalid := []macro.Settings{
		macro.ClickSettings{Button: "sideways"},
		macro.HotkeySettings{Key: " "},
		macro.WaitImageSettings{},
		macro.ClickImageSettings{ImageSearch: macro.ImageSearch{ImagePath: "a.png", Threshold: 1.5}},
		macro.ClickImageAISettings{},
		macro.ExecuteSettings{},
		macro.SetVariableSettings{Value: "1"},
		macro.SetVariableAISettings{Name: "x"},
		macro.IfVariableSettings{Operator: "=="},
	}
	for _, s := range invalid {
		_, err := macro.Build(s)
		assert.Error(t, err, "%T should be rejected", s)
	}
}

func TestRegistry_BuildsMatchingCommand(t *testing.T) {
	cmd, err := macro.Build(macro.LoopSettings{LoopCount: 2})
	require.NoError(t, err)
	assert.Equal(t, macro.TypeLoop, cmd.Type())
	assert.True(t, macro.IsContainer(cmd.Type()))
	assert.False(t, macro.IsContainer(macro.TypeIfEnd))
}
