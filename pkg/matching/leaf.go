package matching

import (
	"cmp"
	"math"
	"slices"

	"github.com/Sumatoshi-tech/astmatch/pkg/alg/levenshtein"
	"github.com/Sumatoshi-tech/astmatch/pkg/mapping"
	"github.com/Sumatoshi-tech/astmatch/pkg/tree"
)

// LeafMatcher pairs unmapped leaves of the same type and label.
//
// Among equal-label candidates, assignment is greedy by structural position:
// matching parent type first, then the same depth and sibling index under the
// matched roots, then closeness of relative position, then pre-order rank, so
// the outcome depends only on the inputs. A LeafSimilarityThreshold below 1
// also admits leaves whose labels are merely similar, ranked by descending
// Levenshtein similarity ahead of position.
type LeafMatcher struct {
	opts Options
	lev  levenshtein.Context
}

// NewLeafMatcher creates a leaf matcher. It is not safe for concurrent use.
func NewLeafMatcher(opts Options) *LeafMatcher {
	return &LeafMatcher{opts: opts.withDefaults()}
}

type leafCandidate struct {
	src, dst   tree.NodeID
	score      float64
	sameParent bool
	sameSlot   bool
	posDelta   float64
}

// Match implements Matcher.
func (m *LeafMatcher) Match(src, dst tree.NodeID, store *mapping.Store) {
	srcTree, dstTree := store.Src(), store.Dst()
	if !srcTree.Valid(src) || !dstTree.Valid(dst) {
		return
	}

	var dstLeaves []tree.NodeID

	for leaf := range dstTree.Leaves(dst) {
		if !store.IsDstMapped(leaf) {
			dstLeaves = append(dstLeaves, leaf)
		}
	}

	if len(dstLeaves) == 0 {
		return
	}

	var candidates []leafCandidate

	for s := range srcTree.Leaves(src) {
		if store.IsSrcMapped(s) {
			continue
		}

		for _, d := range dstLeaves {
			if srcTree.Type(s) != dstTree.Type(d) {
				continue
			}

			score, ok := m.score(srcTree.Label(s), dstTree.Label(d))
			if !ok {
				continue
			}

			candidates = append(candidates, leafCandidate{
				src:        s,
				dst:        d,
				score:      score,
				sameParent: parentType(srcTree, s) == parentType(dstTree, d),
				sameSlot: srcTree.Depth(s)-srcTree.Depth(src) == dstTree.Depth(d)-dstTree.Depth(dst) &&
					srcTree.PositionInParent(s) == dstTree.PositionInParent(d),
				posDelta: math.Abs(relativePosition(srcTree, src, s) - relativePosition(dstTree, dst, d)),
			})
		}
	}

	slices.SortFunc(candidates, func(a, b leafCandidate) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}

		if c := preferTrue(a.sameParent, b.sameParent); c != 0 {
			return c
		}

		if c := preferTrue(a.sameSlot, b.sameSlot); c != 0 {
			return c
		}

		if c := cmp.Compare(a.posDelta, b.posDelta); c != 0 {
			return c
		}

		if c := cmp.Compare(srcTree.Rank(a.src), srcTree.Rank(b.src)); c != 0 {
			return c
		}

		return cmp.Compare(dstTree.Rank(a.dst), dstTree.Rank(b.dst))
	})

	for _, c := range candidates {
		if store.IsSrcMapped(c.src) || store.IsDstMapped(c.dst) {
			continue
		}

		store.Add(c.src, c.dst)
	}
}

// score reports whether two labels may pair and how strongly. At the default
// threshold only equal labels pair.
func (m *LeafMatcher) score(a, b string) (float64, bool) {
	if m.opts.LeafSimilarityThreshold >= ExactLabelThreshold {
		return 1, a == b
	}

	score := m.lev.Similarity(a, b)

	return score, score >= m.opts.LeafSimilarityThreshold
}

func preferTrue(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

func parentType(t *tree.Tree, id tree.NodeID) tree.Type {
	parent := t.Parent(id)
	if parent == tree.NoNode {
		return ""
	}

	return t.Type(parent)
}

// relativePosition places id within the subtree of root on [0, 1).
func relativePosition(t *tree.Tree, root, id tree.NodeID) float64 {
	return float64(t.Rank(id)-t.Rank(root)) / float64(t.Size(root))
}
