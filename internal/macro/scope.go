// internal/macro/scope.go
package macro

import "context"

// Scope is what a command sees while it runs: the node bound ExecContext plus
// access to its own children. Only container commands use the child methods.
type Scope struct {
	*ExecContext

	base *ExecContext
	tree *Tree
	node *Node
}

// Node returns the node being executed.
func (s *Scope) Node() *Node { return s.node }

// Children returns the ordered child handles.
func (s *Scope) Children() []Handle { return s.node.children }

func (s *Scope) requireChildren() error {
	if len(s.node.children) == 0 {
		return ErrNoChildren
	}
	return nil
}

// Run executes a single child.
func (s *Scope) Run(ctx context.Context, h Handle) (bool, error) {
	return s.tree.Execute(ctx, s.base, h)
}

// RunChildren executes every child in order. It stops at the first false or
// error and returns it unchanged; cancellation is checked before each child.
func (s *Scope) RunChildren(ctx context.Context) (bool, error) {
	for _, c := range s.node.children {
		if ctx.Err() != nil {
			return false, nil
		}
		ok, err := s.Run(ctx, c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// ResetChildren zeroes the progress of every descendant.
func (s *Scope) ResetChildren() {
	for _, c := range s.node.children {
		s.tree.resetSubtree(c)
	}
}
