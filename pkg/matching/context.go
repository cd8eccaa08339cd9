package matching

import (
	"slices"

	"github.com/Sumatoshi-tech/astmatch/pkg/mapping"
	"github.com/Sumatoshi-tech/astmatch/pkg/model"
	"github.com/Sumatoshi-tech/astmatch/pkg/tree"
)

// OptimizationContext carries reusable intermediate results between matcher
// invocations of one file-level run: the statement mappings most recently
// translated and a previously computed subtree store to merge instead of
// recompute. Create one per run and discard it afterwards.
type OptimizationContext struct {
	lastStepMappings []model.CodeMapping
	subtreeMappings  *mapping.Store
}

// NewOptimizationContext returns an empty context.
func NewOptimizationContext() *OptimizationContext {
	return &OptimizationContext{}
}

// LastStepMappings returns the statement mappings of the last translated body.
func (c *OptimizationContext) LastStepMappings() []model.CodeMapping {
	return c.lastStepMappings
}

// SetLastStepMappings replaces the last-step statement mappings.
func (c *OptimizationContext) SetLastStepMappings(mappings []model.CodeMapping) {
	c.lastStepMappings = mappings
}

// SubtreeMappings returns the cached subtree store, or nil.
func (c *OptimizationContext) SubtreeMappings() *mapping.Store {
	return c.subtreeMappings
}

// SetSubtreeMappings caches a subtree store for later merging.
func (c *OptimizationContext) SetSubtreeMappings(store *mapping.Store) {
	c.subtreeMappings = store
}

// AlreadyMatched reports whether m was translated in the last step.
func (c *OptimizationContext) AlreadyMatched(m model.CodeMapping) bool {
	return slices.Contains(c.lastStepMappings, m)
}

// mergeSubtree merges the cached subtree store into store when it was built
// for the srcDecl/dstDecl pair over the same trees. It reports whether a
// merge happened.
func (c *OptimizationContext) mergeSubtree(store *mapping.Store, srcDecl, dstDecl tree.NodeID) bool {
	sub := c.subtreeMappings
	if sub == nil || sub.Src() != store.Src() || sub.Dst() != store.Dst() {
		return false
	}

	if !sub.Has(srcDecl, dstDecl) {
		return false
	}

	return store.Merge(sub) == nil
}
