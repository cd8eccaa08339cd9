package tree

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// hashBufSize holds one uint64 for arity or a child hash.
const hashBufSize = 8

// computeHashes fills structHash (type tags and arity) bottom-up.
func (t *Tree) computeHashes() {
	t.structHash = make([]uint64, len(t.nodes))

	var buf [hashBufSize]byte

	hasher := xxh3.New()

	for i := len(t.order) - 1; i >= 0; i-- {
		id := t.order[i]
		n := t.nodes[id]

		hasher.Reset()

		_, _ = hasher.WriteString(string(n.typ))

		binary.LittleEndian.PutUint64(buf[:], uint64(len(n.children)))
		_, _ = hasher.Write(buf[:])

		for _, child := range n.children {
			binary.LittleEndian.PutUint64(buf[:], t.structHash[child])
			_, _ = hasher.Write(buf[:])
		}

		t.structHash[id] = hasher.Sum64()
	}
}

// IsoStructural reports whether the subtree of a rooted at aid and the
// subtree of b rooted at bid have the same type tags and child arity at every
// corresponding position. Labels are ignored.
func IsoStructural(a *Tree, aid NodeID, b *Tree, bid NodeID) bool {
	if a.structHash[aid] != b.structHash[bid] || a.size[aid] != b.size[bid] {
		return false
	}

	return walkLockStep(a, aid, b, bid, func(x, y node) bool {
		return x.typ == y.typ && len(x.children) == len(y.children)
	})
}

// walkLockStep compares both subtrees in pre-order. Equal sizes plus equal
// arity at every visited pair guarantee the orders correspond.
func walkLockStep(a *Tree, aid NodeID, b *Tree, bid NodeID, same func(x, y node) bool) bool {
	aStart, bStart := a.rank[aid], b.rank[bid]

	for offset := range a.size[aid] {
		x := a.nodes[a.order[aStart+offset]]
		y := b.nodes[b.order[bStart+offset]]

		if !same(x, y) {
			return false
		}
	}

	return true
}

// Pairs returns the corresponding node pairs of two subtrees in pre-order.
// Callers must ensure IsoStructural holds.
func Pairs(a *Tree, aid NodeID, b *Tree, bid NodeID) [][2]NodeID {
	aStart, bStart := a.rank[aid], b.rank[bid]

	out := make([][2]NodeID, a.size[aid])
	for offset := range a.size[aid] {
		out[offset] = [2]NodeID{a.order[aStart+offset], b.order[bStart+offset]}
	}

	return out
}
