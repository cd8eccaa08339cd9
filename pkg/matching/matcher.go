// Package matching implements the specialized tree matchers.
//
// Every matcher implements Matcher: given the source and destination roots
// and a mutable mapping store, it adds zero or more mappings. Matchers never
// return errors; an element whose recorded location resolves to no tree node
// is skipped silently and logged at debug level.
package matching

import (
	"log/slog"

	"github.com/Sumatoshi-tech/astmatch/pkg/mapping"
	"github.com/Sumatoshi-tech/astmatch/pkg/model"
	"github.com/Sumatoshi-tech/astmatch/pkg/tree"
)

// ExactLabelThreshold makes the leaf matcher pair equal labels only.
const ExactLabelThreshold = 1.0

// DefaultLeafSimilarityThreshold is the minimum label similarity for the
// leaf matcher to pair two leaves. Anything below ExactLabelThreshold opts
// into fuzzy label matching.
const DefaultLeafSimilarityThreshold = ExactLabelThreshold

// Matcher adds mappings between the subtrees rooted at src and dst.
// The store must be bound to the trees src and dst belong to.
type Matcher interface {
	Match(src, dst tree.NodeID, store *mapping.Store)
}

// Options configures the matchers.
type Options struct {
	// LeafSimilarityThreshold is in [0, 1]. Zero selects the default, which
	// requires equal labels.
	LeafSimilarityThreshold float64
	Logger                  *slog.Logger
}

// DefaultOptions returns the default matcher configuration.
func DefaultOptions() Options {
	return Options{
		LeafSimilarityThreshold: DefaultLeafSimilarityThreshold,
		Logger:                  slog.Default(),
	}
}

func (o Options) withDefaults() Options {
	if o.LeafSimilarityThreshold <= 0 {
		o.LeafSimilarityThreshold = DefaultLeafSimilarityThreshold
	}

	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	return o
}

// resolve maps a model location to the first node under root inside it.
func resolve(t *tree.Tree, root tree.NodeID, loc model.Location) tree.NodeID {
	return t.Locate(root, loc.Start, loc.End(), tree.Type(loc.Type))
}

func logUnresolved(logger *slog.Logger, matcher, side string, loc model.Location) {
	logger.Debug("location did not resolve",
		"matcher", matcher, "side", side, "location", loc.String())
}

var (
	_ Matcher = (*LeafMatcher)(nil)
	_ Matcher = (*MethodBodyMatcher)(nil)
	_ Matcher = (*AnonymousClassMatcher)(nil)
	_ Matcher = (*JavadocMatcher)(nil)
	_ Matcher = (*CommentMatcher)(nil)
)
