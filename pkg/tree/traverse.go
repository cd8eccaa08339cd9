package tree

import "iter"

// PreOrder yields the subtree rooted at id in pre-order (root, then children
// left-to-right).
func (t *Tree) PreOrder(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		start := t.rank[id]
		for _, visit := range t.order[start : start+t.size[id]] {
			if !yield(visit) {
				return
			}
		}
	}
}

// PostOrder yields the subtree rooted at id in post-order (children
// left-to-right, then root).
func (t *Tree) PostOrder(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		type frame struct {
			id   NodeID
			next int
		}

		stack := []frame{{id: id}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := t.nodes[top.id].children

			if top.next < len(children) {
				child := children[top.next]
				top.next++
				stack = append(stack, frame{id: child})

				continue
			}

			stack = stack[:len(stack)-1]

			if !yield(top.id) {
				return
			}
		}
	}
}

// Leaves yields the leaves of the subtree rooted at id in pre-order.
func (t *Tree) Leaves(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for visit := range t.PreOrder(id) {
			if t.IsLeaf(visit) && !yield(visit) {
				return
			}
		}
	}
}
