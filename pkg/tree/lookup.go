package tree

// Locate resolves [start, end] to the first node in pre-order under root
// whose range lies within it. An empty typ accepts any node.
func (t *Tree) Locate(root NodeID, start, end int, typ Type) NodeID {
	if !t.Valid(root) {
		return NoNode
	}

	best := NoNode

	for _, candidate := range t.index.QueryContained(start, end) {
		id := candidate.Value
		if typ != "" && t.nodes[id].typ != typ {
			continue
		}

		if !t.IsDescendant(id, root) {
			continue
		}

		if best == NoNode || t.rank[id] < t.rank[best] {
			best = id
		}
	}

	return best
}
