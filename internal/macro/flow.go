// internal/macro/flow.go
package macro

import (
	"context"
)

// -- Loop --

// Loop runs its children LoopCount times. A child returning false ends the
// whole loop; the loop itself still completes with true so the siblings after
// it run. Cancellation is the exception and propagates as false.
type Loop struct{ settings LoopSettings }

func (*Loop) Type() CommandType { return TypeLoop }

func (l *Loop) Execute(ctx context.Context, s *Scope) (bool, error) {
	if err := s.requireChildren(); err != nil {
		return false, err
	}
	n := l.settings.LoopCount
	for i := 0; i < n; i++ {
		s.ResetChildren()
		for _, c := range s.Children() {
			if ctx.Err() != nil {
				return false, nil
			}
			ok, err := s.Run(ctx, c)
			if err != nil {
				return false, err
			}
			if !ok {
				if ctx.Err() != nil {
					return false, nil
				}
				s.Logf("Loop ended early in pass %d of %d", i+1, n)
				return true, nil
			}
		}
		s.ReportProgress((i + 1) * 100 / n)
	}
	return true, nil
}

// LoopBreak stops the innermost enclosing Loop.
type LoopBreak struct{}

func (LoopBreak) Type() CommandType { return TypeLoopBreak }

func (LoopBreak) Execute(ctx context.Context, s *Scope) (bool, error) {
	return false, nil
}

// LoopEnd and IfEnd close a block in the visual tree and do nothing else.
type LoopEnd struct{}

func (LoopEnd) Type() CommandType { return TypeLoopEnd }

func (LoopEnd) Execute(ctx context.Context, s *Scope) (bool, error) {
	s.ResetChildren()
	return true, nil
}

type IfEnd struct{}

func (IfEnd) Type() CommandType { return TypeIfEnd }

func (IfEnd) Execute(ctx context.Context, s *Scope) (bool, error) {
	s.ResetChildren()
	return true, nil
}

// -- Conditionals --

// condition evaluates an If node's test once.
type condition func(ctx context.Context, s *Scope) (bool, error)

// runIf evaluates cond and, when it holds, runs every child. Unlike Loop, a
// false from a child propagates out of the If node.
func runIf(ctx context.Context, s *Scope, cond condition) (bool, error) {
	if err := s.requireChildren(); err != nil {
		return false, err
	}
	if ctx.Err() != nil {
		return false, nil
	}
	holds, err := cond(ctx, s)
	if err != nil {
		return collaboratorResult(ctx, err)
	}
	if ctx.Err() != nil {
		return false, nil
	}
	if !holds {
		s.Log("Condition not met, skipping block")
		return true, nil
	}
	s.Log("Condition met")
	return s.RunChildren(ctx)
}

func imageCondition(q ImageQuery, want bool) condition {
	return func(ctx context.Context, s *Scope) (bool, error) {
		pt, err := s.SearchImage(ctx, q)
		if err != nil {
			return false, err
		}
		return (pt != nil) == want, nil
	}
}

func aiCondition(d AIDetect, want bool) condition {
	return func(ctx context.Context, s *Scope) (bool, error) {
		found, err := detected(ctx, s, d)
		if err != nil {
			return false, err
		}
		return found == want, nil
	}
}

type IfImageExist struct{ settings IfImageExistSettings }

func (*IfImageExist) Type() CommandType { return TypeIfImageExist }

func (c *IfImageExist) Execute(ctx context.Context, s *Scope) (bool, error) {
	return runIf(ctx, s, imageCondition(c.settings.query(), true))
}

type IfImageNotExist struct{ settings IfImageNotExistSettings }

func (*IfImageNotExist) Type() CommandType { return TypeIfImageNotExist }

func (c *IfImageNotExist) Execute(ctx context.Context, s *Scope) (bool, error) {
	return runIf(ctx, s, imageCondition(c.settings.query(), false))
}

type IfImageExistAI struct{ settings IfImageExistAISettings }

func (*IfImageExistAI) Type() CommandType { return TypeIfImageExistAI }

func (c *IfImageExistAI) Execute(ctx context.Context, s *Scope) (bool, error) {
	return runIf(ctx, s, aiCondition(c.settings.AIDetect, true))
}

type IfImageNotExistAI struct{ settings IfImageNotExistAISettings }

func (*IfImageNotExistAI) Type() CommandType { return TypeIfImageNotExistAI }

func (c *IfImageNotExistAI) Execute(ctx context.Context, s *Scope) (bool, error) {
	return runIf(ctx, s, aiCondition(c.settings.AIDetect, false))
}

// IfVariable compares a stored variable with a literal. A missing variable
// compares as the empty string.
type IfVariable struct{ settings IfVariableSettings }

func (*IfVariable) Type() CommandType { return TypeIfVariable }

func (c *IfVariable) Execute(ctx context.Context, s *Scope) (bool, error) {
	st := c.settings
	return runIf(ctx, s, func(ctx context.Context, s *Scope) (bool, error) {
		value, _, err := s.GetVariable(ctx, st.Name)
		if err != nil {
			return false, err
		}
		return CompareStrings(value, st.Operator, st.Value)
	})
}
