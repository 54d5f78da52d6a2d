package schemas_test

import (
	"reflect"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/macro-cli/api/schemas"
)

// TestStructJSONTags pins the wire names of the event stream.
func TestStructJSONTags(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name         string
		structRef    interface{}
		expectedTags map[string]string
	}{
		{
			name:      "Event",
			structRef: schemas.Event{},
			expectedTags: map[string]string{
				"ID":        "id,omitempty",
				"RunID":     "run_id,omitempty",
				"Kind":      "kind",
				"Line":      "line",
				"Command":   "command,omitempty",
				"Detail":    "detail,omitempty",
				"Percent":   "percent,omitempty",
				"Timestamp": "timestamp",
			},
		},
		{
			name:      "Detection",
			structRef: schemas.Detection{},
			expectedTags: map[string]string{
				"ClassID": "class_id",
				"Score":   "score",
				"Rect":    "rect",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			typ := reflect.TypeOf(tc.structRef)
			assert.Equal(t, len(tc.expectedTags), typ.NumField())
			for field, want := range tc.expectedTags {
				f, ok := typ.FieldByName(field)
				require.True(t, ok, "field %s missing", field)
				assert.Equal(t, want, f.Tag.Get("json"), "field %s", field)
			}
		})
	}
}

func TestEventJSON(t *testing.T) {
	t.Parallel()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	data, err := jsoniter.Marshal(schemas.Event{Kind: schemas.EventDoing, Line: 3, Detail: "hi", Timestamp: at})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"doing","line":3,"detail":"hi","timestamp":"2024-05-01T12:00:00Z"}`, string(data))
}

func TestKeyModifier(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", schemas.ModNone.String())
	assert.Equal(t, "Ctrl+Alt+Shift", schemas.Modifiers(true, true, true).String())
	assert.Equal(t, "Alt+Meta", (schemas.ModAlt | schemas.ModMeta).String())

	m := schemas.Modifiers(false, true, false)
	assert.True(t, m.Has(schemas.ModAlt))
	assert.False(t, m.Has(schemas.ModCtrl))
	assert.False(t, m.Has(schemas.ModAlt|schemas.ModShift))
}

func TestParseMouseButton(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]schemas.MouseButton{
		"": schemas.ButtonLeft, "Left": schemas.ButtonLeft, " right ": schemas.ButtonRight, "MIDDLE": schemas.ButtonMiddle,
	} {
		got, err := schemas.ParseMouseButton(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := schemas.ParseMouseButton("thumb")
	assert.Error(t, err)
}

func TestGeometry(t *testing.T) {
	t.Parallel()
	assert.Equal(t, schemas.Point{X: 15, Y: 22}, schemas.Rect{X: 10, Y: 20, Width: 11, Height: 5}.Center())
	assert.True(t, schemas.WindowTarget{}.IsZero())
	assert.False(t, schemas.WindowTarget{ClassName: "Edit"}.IsZero())
}
