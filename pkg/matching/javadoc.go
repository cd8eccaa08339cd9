package matching

import (
	"github.com/Sumatoshi-tech/astmatch/pkg/mapping"
	"github.com/Sumatoshi-tech/astmatch/pkg/model"
	"github.com/Sumatoshi-tech/astmatch/pkg/tree"
)

// JavadocMatcher maps two versions of a documentation block.
//
// Isomorphic blocks that were not reformatted are mapped structurally.
// Otherwise, when the blocks share a tag or a fragment, the leaf matcher seeds
// textual matches, the block roots are mapped, and each common fragment pair
// with differing text is aligned: a tag element's text child pairs with a
// bare text element, and two text elements pair directly, lifting the match
// to their tag element parents when both are still unmapped.
type JavadocMatcher struct {
	diff *model.JavadocDiff
	opts Options
}

// NewJavadocMatcher creates a matcher for one documentation diff.
func NewJavadocMatcher(diff *model.JavadocDiff, opts Options) *JavadocMatcher {
	return &JavadocMatcher{diff: diff, opts: opts.withDefaults()}
}

// Match implements Matcher.
func (m *JavadocMatcher) Match(src, dst tree.NodeID, store *mapping.Store) {
	if m.diff == nil || m.diff.Before == nil || m.diff.After == nil {
		return
	}

	srcDoc := resolve(store.Src(), src, m.diff.Before.Location)
	dstDoc := resolve(store.Dst(), dst, m.diff.After.Location)

	if srcDoc == tree.NoNode || dstDoc == tree.NoNode {
		m.opts.Logger.Debug("javadoc did not resolve",
			"before", m.diff.Before.Location.String(), "after", m.diff.After.Location.String())

		return
	}

	if tree.IsoStructural(store.Src(), srcDoc, store.Dst(), dstDoc) && !m.diff.ManyToManyReformat {
		_ = store.AddRecursively(srcDoc, dstDoc)

		return
	}

	if !m.diff.HasCommonElements() {
		return
	}

	NewLeafMatcher(m.opts).Match(srcDoc, dstDoc, store)
	store.Add(srcDoc, dstDoc)

	for _, pair := range m.diff.CommonDocElements {
		// Fragments with identical text are never aligned explicitly.
		if pair.Before.Text == pair.After.Text {
			continue
		}

		s := resolve(store.Src(), srcDoc, pair.Before.Location)
		d := resolve(store.Dst(), dstDoc, pair.After.Location)

		if s == tree.NoNode || d == tree.NoNode {
			continue
		}

		if store.IsSrcMapped(s) && store.IsDstMapped(d) && !m.diff.ManyToManyReformat {
			continue
		}

		m.align(s, d, store)
	}
}

func (m *JavadocMatcher) align(s, d tree.NodeID, store *mapping.Store) {
	srcTree, dstTree := store.Src(), store.Dst()

	var (
		srcText, dstText = tree.NoNode, tree.NoNode
		matchParents     bool
	)

	switch {
	case srcTree.Is(s, tree.TypeTagElement) && dstTree.Is(d, tree.TypeTextElement):
		srcText, dstText = srcTree.Child(s, 0), d
	case srcTree.Is(s, tree.TypeTextElement) && dstTree.Is(d, tree.TypeTagElement):
		srcText, dstText = s, dstTree.Child(d, 0)
	case srcTree.Is(s, tree.TypeTextElement) && dstTree.Is(d, tree.TypeTextElement):
		srcText, dstText = s, d
		matchParents = true
	}

	if srcText == tree.NoNode || dstText == tree.NoNode {
		return
	}

	store.Add(srcText, dstText)

	if !matchParents {
		return
	}

	srcParent, dstParent := srcTree.Parent(srcText), dstTree.Parent(dstText)
	if srcParent == tree.NoNode || dstParent == tree.NoNode {
		return
	}

	if srcTree.Is(srcParent, tree.TypeTagElement) && dstTree.Is(dstParent, tree.TypeTagElement) &&
		!store.IsSrcMapped(srcParent) && !store.IsDstMapped(dstParent) {
		store.Add(srcParent, dstParent)
	}
}
