// internal/macro/tree.go
package macro

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/xkilldash9x/macro-cli/api/schemas"
)

// Handle addresses a node inside its Tree.
type Handle int

// NoParent is the parent handle of root nodes.
const NoParent Handle = -1

// Node is one element of a macro tree. Structure is fixed once the node is
// added; only the transient progress value changes during a run.
type Node struct {
	handle   Handle
	parent   Handle
	children []Handle
	line     int
	enabled  bool
	level    int
	cmd      Command
	progress atomic.Int32
}

func (n *Node) Handle() Handle    { return n.handle }
func (n *Node) Parent() Handle    { return n.parent }
func (n *Node) LineNumber() int   { return n.line }
func (n *Node) IsEnabled() bool   { return n.enabled }
func (n *Node) NestLevel() int    { return n.level }
func (n *Node) Command() Command  { return n.cmd }
func (n *Node) Type() CommandType { return n.cmd.Type() }
func (n *Node) Progress() int     { return int(n.progress.Load()) }
func (n *Node) IsRoot() bool      { return n.parent == NoParent }

// CanExecute is always true; it exists for callers that gate nodes
// individually.
func (n *Node) CanExecute() bool { return true }

func (n *Node) resetProgress() { n.progress.Store(0) }

// Children returns a copy of the ordered child handles.
func (n *Node) Children() []Handle {
	out := make([]Handle, len(n.children))
	copy(out, n.children)
	return out
}

// Tree is an arena of nodes. Parents own their children through handle
// lists; the parent handle stored on a child is a plain back reference. Nodes
// can only be appended under an existing parent, so the tree is acyclic by
// construction.
type Tree struct {
	nodes []*Node
	roots []Handle
	lines map[int]Handle
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{lines: make(map[int]Handle)}
}

// Add appends a node under parent (NoParent for a root) and returns its
// handle. Line numbers must be unique within the tree.
func (t *Tree) Add(parent Handle, line int, enabled bool, cmd Command) (Handle, error) {
	if cmd == nil {
		return NoParent, fmt.Errorf("line %d: nil command", line)
	}
	if _, dup := t.lines[line]; dup {
		return NoParent, fmt.Errorf("%w: %d", ErrDuplicateLine, line)
	}
	level := 0
	if parent != NoParent {
		p := t.Node(parent)
		if p == nil {
			return NoParent, fmt.Errorf("%w: parent %d", ErrUnknownHandle, parent)
		}
		level = p.level + 1
	}

	h := Handle(len(t.nodes))
	t.nodes = append(t.nodes, &Node{
		handle:  h,
		parent:  parent,
		line:    line,
		enabled: enabled,
		level:   level,
		cmd:     cmd,
	})
	t.lines[line] = h
	if parent == NoParent {
		t.roots = append(t.roots, h)
	} else {
		p := t.nodes[parent]
		p.children = append(p.children, h)
	}
	return h, nil
}

// Node returns the node for h, or nil.
func (t *Tree) Node(h Handle) *Node {
	if h < 0 || int(h) >= len(t.nodes) {
		return nil
	}
	return t.nodes[h]
}

// Lookup finds a node by line number.
func (t *Tree) Lookup(line int) (*Node, bool) {
	h, ok := t.lines[line]
	if !ok {
		return nil, false
	}
	return t.nodes[h], true
}

// Roots returns the root handles in order.
func (t *Tree) Roots() []Handle {
	out := make([]Handle, len(t.roots))
	copy(out, t.roots)
	return out
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Walk visits nodes depth-first in execution order. Returning false from fn
// skips the node's subtree.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var visit func(h Handle)
	visit = func(h Handle) {
		n := t.nodes[h]
		if !fn(n) {
			return
		}
		for _, c := range n.children {
			visit(c)
		}
	}
	for _, r := range t.roots {
		visit(r)
	}
}

// Executable returns a new tree holding only enabled nodes. A disabled node
// drops its whole subtree. Commands are shared; they are immutable.
func (t *Tree) Executable() *Tree {
	out := NewTree()
	var copyNode func(h, parent Handle)
	copyNode = func(h, parent Handle) {
		n := t.nodes[h]
		if !n.enabled {
			return
		}
		nh, _ := out.Add(parent, n.line, true, n.cmd)
		for _, c := range n.children {
			copyNode(c, nh)
		}
	}
	for _, r := range t.roots {
		copyNode(r, NoParent)
	}
	return out
}

// ResetProgress zeroes the progress of every node.
func (t *Tree) ResetProgress() {
	for _, n := range t.nodes {
		n.resetProgress()
	}
}

// resetSubtree zeroes the progress of h and all its descendants.
func (t *Tree) resetSubtree(h Handle) {
	n := t.nodes[h]
	n.resetProgress()
	for _, c := range n.children {
		t.resetSubtree(c)
	}
}

// Validate reports containers without children ahead of a run. The same
// condition still fails at execution time.
func (t *Tree) Validate() error {
	var errs []error
	for _, n := range t.nodes {
		if IsContainer(n.Type()) && len(n.children) == 0 {
			errs = append(errs, &CommandError{Line: n.line, Type: n.Type(), Err: ErrNoChildren})
		}
	}
	return errors.Join(errs...)
}

// Execute runs the node at h: it emits start, runs the command body and
// emits finish. Fatal errors come back wrapped in a *CommandError naming the
// innermost node that raised them.
func (t *Tree) Execute(ctx context.Context, ec *ExecContext, h Handle) (bool, error) {
	n := t.Node(h)
	if n == nil {
		return false, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}

	nc := ec.bind(n)
	nc.logger.Debug("Executing command", zap.Int("level", n.level))
	nc.emit(schemas.EventStart, "", 0)
	ok, err := n.cmd.Execute(ctx, &Scope{ExecContext: nc, base: ec, tree: t, node: n})
	nc.emit(schemas.EventFinish, "", 0)

	if err != nil {
		var ce *CommandError
		if !errors.As(err, &ce) {
			err = &CommandError{Line: n.line, Type: n.Type(), Err: err}
		}
		return false, err
	}
	return ok, nil
}
