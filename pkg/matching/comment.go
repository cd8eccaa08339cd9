package matching

import (
	"github.com/Sumatoshi-tech/astmatch/pkg/mapping"
	"github.com/Sumatoshi-tech/astmatch/pkg/model"
	"github.com/Sumatoshi-tech/astmatch/pkg/tree"
)

// CommentMatcher maps the comments two versions of an element have in common.
type CommentMatcher struct {
	diff *model.CommentListDiff
	opts Options
	leaf *LeafMatcher
}

// NewCommentMatcher creates a matcher for one comment list diff.
func NewCommentMatcher(diff *model.CommentListDiff, opts Options) *CommentMatcher {
	opts = opts.withDefaults()

	return &CommentMatcher{diff: diff, opts: opts, leaf: NewLeafMatcher(opts)}
}

// Match implements Matcher.
func (m *CommentMatcher) Match(src, dst tree.NodeID, store *mapping.Store) {
	if m.diff == nil {
		return
	}

	for _, pair := range m.diff.CommonComments {
		s := resolve(store.Src(), src, pair.Before)
		if s == tree.NoNode {
			logUnresolved(m.opts.Logger, "comments", "before", pair.Before)

			continue
		}

		d := resolve(store.Dst(), dst, pair.After)
		if d == tree.NoNode {
			logUnresolved(m.opts.Logger, "comments", "after", pair.After)

			continue
		}

		if tree.IsoStructural(store.Src(), s, store.Dst(), d) {
			_ = store.AddRecursively(s, d)

			continue
		}

		store.Add(s, d)
		m.leaf.Match(s, d, store)
	}
}
