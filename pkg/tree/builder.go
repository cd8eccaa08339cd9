package tree

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/astmatch/pkg/alg/interval"
)

// Sentinel errors for tree construction.
var (
	ErrEmptyTree         = errors.New("tree has no nodes")
	ErrEmptyType         = errors.New("node type is empty")
	ErrMultipleRoots     = errors.New("tree already has a root")
	ErrUnknownParent     = errors.New("parent node does not exist")
	ErrRangeNotContained = errors.New("child range is not contained in parent range")
	ErrNegativeRange     = errors.New("node range is negative")
	ErrAlreadyBuilt      = errors.New("builder already built")
)

// Builder accumulates nodes for a Tree. The first error encountered is kept
// and reported by Build; later Add calls become no-ops returning NoNode.
type Builder struct {
	nodes []node
	err   error
	built bool
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Root adds the root node. Equivalent to Add(NoNode, ...).
func (b *Builder) Root(typ Type, label string, pos Pos) NodeID {
	return b.Add(NoNode, typ, label, pos)
}

// Add appends a node as the last child of parent, or as the root when parent
// is NoNode.
func (b *Builder) Add(parent NodeID, typ Type, label string, pos Pos) NodeID {
	if b.err != nil {
		return NoNode
	}

	if b.built {
		b.err = ErrAlreadyBuilt

		return NoNode
	}

	if err := b.check(parent, typ, pos); err != nil {
		b.err = err

		return NoNode
	}

	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, node{typ: typ, label: label, pos: pos, parent: parent})

	if parent != NoNode {
		b.nodes[parent].children = append(b.nodes[parent].children, id)
	}

	return id
}

func (b *Builder) check(parent NodeID, typ Type, pos Pos) error {
	if typ == "" {
		return ErrEmptyType
	}

	if pos.Start < 0 || pos.Length < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeRange, pos)
	}

	if parent == NoNode {
		if len(b.nodes) > 0 {
			return ErrMultipleRoots
		}

		return nil
	}

	if parent < 0 || int(parent) >= len(b.nodes) {
		return fmt.Errorf("%w: %d", ErrUnknownParent, parent)
	}

	if !b.nodes[parent].pos.Contains(pos) {
		return fmt.Errorf("%w: %s %s not in %s", ErrRangeNotContained, typ, pos, b.nodes[parent].pos)
	}

	return nil
}

// Build freezes the accumulated nodes into a Tree.
func (b *Builder) Build() (*Tree, error) {
	if b.err != nil {
		return nil, b.err
	}

	if len(b.nodes) == 0 {
		return nil, ErrEmptyTree
	}

	b.built = true

	t := &Tree{nodes: b.nodes, root: 0}
	t.computeOrder()
	t.computeHashes()
	t.buildIndex()

	return t, nil
}

func (t *Tree) computeOrder() {
	count := len(t.nodes)
	t.order = make([]NodeID, 0, count)
	t.rank = make([]int32, count)
	t.size = make([]int32, count)
	t.depth = make([]int32, count)

	stack := []NodeID{t.root}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		t.rank[id] = int32(len(t.order))
		t.order = append(t.order, id)

		if parent := t.nodes[id].parent; parent != NoNode {
			t.depth[id] = t.depth[parent] + 1
		}

		children := t.nodes[id].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	// Reverse pre-order visits every child before its parent.
	for i := len(t.order) - 1; i >= 0; i-- {
		id := t.order[i]
		t.size[id] = 1

		for _, child := range t.nodes[id].children {
			t.size[id] += t.size[child]
		}
	}
}

func (t *Tree) buildIndex() {
	items := make([]interval.Interval[int, NodeID], len(t.nodes))

	for id, n := range t.nodes {
		items[id] = interval.Interval[int, NodeID]{Low: n.pos.Start, High: n.pos.End(), Value: NodeID(id)}
	}

	t.index = interval.Build(items)
}
