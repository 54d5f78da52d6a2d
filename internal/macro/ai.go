// internal/macro/ai.go
package macro

import (
	"context"
	"fmt"
	"strconv"

	"github.com/xkilldash9x/macro-cli/api/schemas"
)

// bestDetection returns the highest scoring detection. Ties keep the first
// one the detector enumerated.
func bestDetection(ds []schemas.Detection) (schemas.Detection, bool) {
	if len(ds) == 0 {
		return schemas.Detection{}, false
	}
	best := ds[0]
	for _, d := range ds[1:] {
		if d.Score > best.Score {
			best = d
		}
	}
	return best, true
}

func ofClass(ds []schemas.Detection, classID int) []schemas.Detection {
	var out []schemas.Detection
	for _, d := range ds {
		if d.ClassID == classID {
			out = append(out, d)
		}
	}
	return out
}

// detect loads the model and runs one detection pass.
func detect(ctx context.Context, s *Scope, m AIModel, q AIQuery) ([]schemas.Detection, error) {
	if err := s.InitializeAIModel(m.ModelPath, m.InputSize, m.UseGPU); err != nil {
		return nil, err
	}
	return s.DetectAI(ctx, q.WindowTitle, q.ConfThreshold, q.IoUThreshold)
}

// -- ClickImageAI --

// ClickImageAI clicks the centre of the best detection of a class. Finding
// nothing is not a stop signal.
type ClickImageAI struct{ settings ClickImageAISettings }

func (*ClickImageAI) Type() CommandType { return TypeClickImageAI }

func (c *ClickImageAI) Execute(ctx context.Context, s *Scope) (bool, error) {
	if ctx.Err() != nil {
		return false, nil
	}
	st := c.settings
	ds, err := detect(ctx, s, st.AIModel, st.AIQuery)
	if err != nil {
		return collaboratorResult(ctx, err)
	}
	best, ok := bestDetection(ofClass(ds, st.ClassID))
	if !ok {
		s.Logf("Class %d not detected", st.ClassID)
		return true, nil
	}

	at := best.Rect.Center()
	button := buttonOrLeft(st.Button)
	err = s.Click(ctx, at.X, at.Y, button, schemas.WindowTarget{Title: st.WindowTitle})
	if ok, err := collaboratorResult(ctx, err); !ok {
		return ok, err
	}
	s.Logf("Clicked class %d at (%d, %d), score %.2f", best.ClassID, at.X, at.Y, best.Score)
	return true, nil
}

// -- SetVariableAI --

// NoDetection is stored by SetVariableAI when nothing was detected.
const NoDetection = "-1"

// SetVariableAI stores either the class of the best detection or the number
// of detections.
type SetVariableAI struct{ settings SetVariableAISettings }

func (*SetVariableAI) Type() CommandType { return TypeSetVariableAI }

func (c *SetVariableAI) Execute(ctx context.Context, s *Scope) (bool, error) {
	st := c.settings
	if st.Mode != ModeClass && st.Mode != ModeCount {
		return false, fmt.Errorf("%w: %q", ErrUnknownMode, st.Mode)
	}
	if ctx.Err() != nil {
		return false, nil
	}

	ds, err := detect(ctx, s, st.AIModel, st.AIQuery)
	if err != nil {
		return collaboratorResult(ctx, err)
	}
	value := NoDetection
	if best, ok := bestDetection(ds); ok {
		if st.Mode == ModeClass {
			value = strconv.Itoa(best.ClassID)
		} else {
			value = strconv.Itoa(len(ds))
		}
	}
	if err := s.SetVariable(ctx, st.Name, value); err != nil {
		return collaboratorResult(ctx, err)
	}
	s.Logf("Set %s = %s", st.Name, value)
	return true, nil
}

// -- AI conditions --

// detected reports whether classID appears in a detection pass.
func detected(ctx context.Context, s *Scope, d AIDetect) (bool, error) {
	ds, err := detect(ctx, s, d.AIModel, d.AIQuery)
	if err != nil {
		return false, err
	}
	return len(ofClass(ds, d.ClassID)) > 0, nil
}
