package matching

import (
	"github.com/Sumatoshi-tech/astmatch/pkg/mapping"
	"github.com/Sumatoshi-tech/astmatch/pkg/model"
	"github.com/Sumatoshi-tech/astmatch/pkg/tree"
)

// AnonymousClassMatcher delegates each member operation of an anonymous class
// diff to a MethodBodyMatcher sharing the same context. The class nodes
// themselves are left to the other facts.
type AnonymousClassMatcher struct {
	optCtx *OptimizationContext
	diff   *model.AnonymousClassDiff
	opts   Options
}

// NewAnonymousClassMatcher creates a matcher for one anonymous class diff.
func NewAnonymousClassMatcher(optCtx *OptimizationContext, diff *model.AnonymousClassDiff, opts Options) *AnonymousClassMatcher {
	return &AnonymousClassMatcher{optCtx: optCtx, diff: diff, opts: opts.withDefaults()}
}

// Match implements Matcher. Each member is resolved under src and dst as
// given.
func (m *AnonymousClassMatcher) Match(src, dst tree.NodeID, store *mapping.Store) {
	if m.diff == nil {
		return
	}

	for i := range m.diff.OperationBodyMappers {
		NewMethodBodyMatcher(m.optCtx, &m.diff.OperationBodyMappers[i], m.opts).Match(src, dst, store)
	}
}
