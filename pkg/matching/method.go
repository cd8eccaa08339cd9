package matching

import (
	"github.com/Sumatoshi-tech/astmatch/pkg/mapping"
	"github.com/Sumatoshi-tech/astmatch/pkg/model"
	"github.com/Sumatoshi-tech/astmatch/pkg/tree"
)

// MethodBodyMatcher translates a precomputed operation body mapper into tree
// node mappings.
//
// The mappings of one body are built in a store of their own and cached in the
// optimization context. A later invocation over the same declaration pair
// merges the cached store instead of translating the statements again.
type MethodBodyMatcher struct {
	optCtx *OptimizationContext
	mapper *model.OperationBodyMapper
	opts   Options
	leaf   *LeafMatcher
}

// NewMethodBodyMatcher creates a matcher for one operation body mapper.
func NewMethodBodyMatcher(optCtx *OptimizationContext, mapper *model.OperationBodyMapper, opts Options) *MethodBodyMatcher {
	opts = opts.withDefaults()

	return &MethodBodyMatcher{
		optCtx: optCtx,
		mapper: mapper,
		opts:   opts,
		leaf:   NewLeafMatcher(opts),
	}
}

// Match implements Matcher. src and dst bound the search for the operation
// declarations; statements are then resolved under those declarations.
func (m *MethodBodyMatcher) Match(src, dst tree.NodeID, store *mapping.Store) {
	if m.mapper == nil {
		return
	}

	srcDecl := resolve(store.Src(), src, m.mapper.Before)
	if srcDecl == tree.NoNode {
		logUnresolved(m.opts.Logger, "method_body", "before", m.mapper.Before)

		return
	}

	dstDecl := resolve(store.Dst(), dst, m.mapper.After)
	if dstDecl == tree.NoNode {
		logUnresolved(m.opts.Logger, "method_body", "after", m.mapper.After)

		return
	}

	if m.optCtx.mergeSubtree(store, srcDecl, dstDecl) {
		m.opts.Logger.Debug("merged cached subtree mappings",
			"before", m.mapper.Before.String(), "after", m.mapper.After.String())
		m.optCtx.SetLastStepMappings(m.mapper.Mappings)

		return
	}

	sub := mapping.NewStore(store.Src(), store.Dst())
	sub.Add(srcDecl, dstDecl)

	for _, cm := range m.mapper.Mappings {
		if m.optCtx.AlreadyMatched(cm) {
			continue
		}

		m.matchStatement(srcDecl, dstDecl, cm, sub)
	}

	// Both stores are bound to the same trees.
	_ = store.Merge(sub)

	m.optCtx.SetSubtreeMappings(sub)
	m.optCtx.SetLastStepMappings(m.mapper.Mappings)
}

func (m *MethodBodyMatcher) matchStatement(srcDecl, dstDecl tree.NodeID, cm model.CodeMapping, store *mapping.Store) {
	s := resolve(store.Src(), srcDecl, cm.Before)
	if s == tree.NoNode {
		logUnresolved(m.opts.Logger, "method_body", "before", cm.Before)

		return
	}

	d := resolve(store.Dst(), dstDecl, cm.After)
	if d == tree.NoNode {
		logUnresolved(m.opts.Logger, "method_body", "after", cm.After)

		return
	}

	if tree.IsoStructural(store.Src(), s, store.Dst(), d) {
		_ = store.AddRecursively(s, d)

		return
	}

	store.Add(s, d)
	m.leaf.Match(s, d, store)
}
