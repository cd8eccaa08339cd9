package matching_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/astmatch/pkg/mapping"
	"github.com/Sumatoshi-tech/astmatch/pkg/matching"
	"github.com/Sumatoshi-tech/astmatch/pkg/model"
	"github.com/Sumatoshi-tech/astmatch/pkg/tree"
)

type methodIDs struct {
	method, name, block tree.NodeID
	expr, exprName, ret tree.NodeID
	retName, exprExtra  tree.NodeID
}

// methodTree builds one version of:
//
//	MethodDeclaration [10,end]
//	├── SimpleName "run" [15,18]
//	└── Block [20,end]
//	    ├── ExpressionStatement [25,exprEnd] > SimpleName "count" [25,30] (+ SimpleName "extra" when grown)
//	    └── ReturnStatement [50,60] > SimpleName retLabel [56,60]
//
// under a CompilationUnit [0,200].
func methodTree(t *testing.T, grown bool, retLabel string) (*tree.Tree, methodIDs) {
	t.Helper()

	var ids methodIDs

	end, exprEnd := 100, 40
	if grown {
		end, exprEnd = 110, 45
	}

	b := tree.NewBuilder()
	cu := b.Root(tree.TypeCompilationUnit, "", tree.Pos{Start: 0, Length: 200})
	ids.method = b.Add(cu, tree.TypeMethodDeclaration, "", tree.Pos{Start: 10, Length: end - 10})
	ids.name = b.Add(ids.method, tree.TypeSimpleName, "run", tree.Pos{Start: 15, Length: 3})
	ids.block = b.Add(ids.method, tree.TypeBlock, "", tree.Pos{Start: 20, Length: end - 20})
	ids.expr = b.Add(ids.block, tree.TypeExpressionStatement, "", tree.Pos{Start: 25, Length: exprEnd - 25})
	ids.exprName = b.Add(ids.expr, tree.TypeSimpleName, "count", tree.Pos{Start: 25, Length: 5})
	ids.exprExtra = tree.NoNode

	if grown {
		ids.exprExtra = b.Add(ids.expr, tree.TypeSimpleName, "extra", tree.Pos{Start: 35, Length: 5})
	}

	ids.ret = b.Add(ids.block, tree.TypeReturnStatement, "", tree.Pos{Start: 50, Length: 10})
	ids.retName = b.Add(ids.ret, tree.TypeSimpleName, retLabel, tree.Pos{Start: 56, Length: 4})

	return build(t, b), ids
}

func bodyMapper() *model.OperationBodyMapper {
	return &model.OperationBodyMapper{
		Before: loc(10, 100),
		After:  loc(10, 110),
		Mappings: []model.CodeMapping{
			{Before: loc(25, 40), After: loc(25, 45), Kind: model.MappingComposite},
			{Before: loc(50, 60), After: loc(50, 60), Kind: model.MappingLeaf},
		},
	}
}

func TestMethodBodyMatcher_TranslatesStatements(t *testing.T) {
	t.Parallel()

	src, s := methodTree(t, false, "vals")
	dst, d := methodTree(t, true, "valz")
	store := mapping.NewStore(src, dst)
	optCtx := matching.NewOptimizationContext()
	mapper := bodyMapper()

	matching.NewMethodBodyMatcher(optCtx, mapper, matching.DefaultOptions()).Match(src.Root(), dst.Root(), store)

	want := []mapping.Mapping{
		{Src: s.method, Dst: d.method},
		{Src: s.expr, Dst: d.expr},
		{Src: s.exprName, Dst: d.exprName},
		{Src: s.ret, Dst: d.ret},
		{Src: s.retName, Dst: d.retName},
	}

	assert.ElementsMatch(t, want, store.All())
	assert.False(t, store.IsDstMapped(d.exprExtra))
	assert.Equal(t, mapper.Mappings, optCtx.LastStepMappings())
}

func TestMethodBodyMatcher_SkipsLastStepMappings(t *testing.T) {
	t.Parallel()

	src, s := methodTree(t, false, "vals")
	dst, d := methodTree(t, true, "vals")
	store := mapping.NewStore(src, dst)
	mapper := bodyMapper()

	optCtx := matching.NewOptimizationContext()
	optCtx.SetLastStepMappings(mapper.Mappings[1:])
	require.True(t, optCtx.AlreadyMatched(mapper.Mappings[1]))
	require.False(t, optCtx.AlreadyMatched(mapper.Mappings[0]))

	matching.NewMethodBodyMatcher(optCtx, mapper, matching.DefaultOptions()).Match(src.Root(), dst.Root(), store)

	assert.True(t, store.Has(s.expr, d.expr))
	assert.False(t, store.IsSrcMapped(s.ret))
}

func TestMethodBodyMatcher_CachesSubtreeMappings(t *testing.T) {
	t.Parallel()

	src, s := methodTree(t, false, "vals")
	dst, d := methodTree(t, true, "vals")
	store := mapping.NewStore(src, dst)
	optCtx := matching.NewOptimizationContext()

	matching.NewMethodBodyMatcher(optCtx, bodyMapper(), matching.DefaultOptions()).Match(src.Root(), dst.Root(), store)

	cached := optCtx.SubtreeMappings()
	require.NotNil(t, cached)
	assert.NotSame(t, store, cached)
	assert.Same(t, src, cached.Src())
	assert.Same(t, dst, cached.Dst())
	assert.True(t, cached.Has(s.method, d.method))
	assert.True(t, cached.Has(s.expr, d.expr))
	assert.Equal(t, store.Sorted(), cached.Sorted())
}

func TestMethodBodyMatcher_MergesSubtreeMappings(t *testing.T) {
	t.Parallel()

	src, s := methodTree(t, false, "vals")
	dst, d := methodTree(t, true, "vals")

	t.Run("same declarations", func(t *testing.T) {
		t.Parallel()

		cached := mapping.NewStore(src, dst)
		cached.Add(s.method, d.method)
		cached.Add(s.name, d.name)

		optCtx := matching.NewOptimizationContext()
		optCtx.SetSubtreeMappings(cached)

		store := mapping.NewStore(src, dst)
		mapper := bodyMapper()
		matching.NewMethodBodyMatcher(optCtx, mapper, matching.DefaultOptions()).Match(src.Root(), dst.Root(), store)

		assert.True(t, store.Has(s.name, d.name))
		assert.False(t, store.IsSrcMapped(s.expr), "statements are not translated again")
		assert.Equal(t, 2, store.Len())
		assert.Equal(t, mapper.Mappings, optCtx.LastStepMappings())
	})

	t.Run("other declarations", func(t *testing.T) {
		t.Parallel()

		cached := mapping.NewStore(src, dst)
		cached.Add(s.name, d.name)

		optCtx := matching.NewOptimizationContext()
		optCtx.SetSubtreeMappings(cached)

		store := mapping.NewStore(src, dst)
		matching.NewMethodBodyMatcher(optCtx, bodyMapper(), matching.DefaultOptions()).Match(src.Root(), dst.Root(), store)

		assert.False(t, store.IsSrcMapped(s.name))
		assert.True(t, store.Has(s.expr, d.expr))
	})

	t.Run("other trees", func(t *testing.T) {
		t.Parallel()

		cached := mapping.NewStore(dst, src)
		cached.Add(s.method, d.method)

		optCtx := matching.NewOptimizationContext()
		optCtx.SetSubtreeMappings(cached)

		store := mapping.NewStore(src, dst)
		matching.NewMethodBodyMatcher(optCtx, bodyMapper(), matching.DefaultOptions()).Match(src.Root(), dst.Root(), store)

		assert.True(t, store.Has(s.expr, d.expr))
		assert.NotSame(t, cached, optCtx.SubtreeMappings())
	})
}

func TestMethodBodyMatcher_UnresolvedDeclaration(t *testing.T) {
	t.Parallel()

	src, _ := methodTree(t, false, "vals")
	dst, _ := methodTree(t, true, "vals")
	store := mapping.NewStore(src, dst)

	mapper := bodyMapper()
	mapper.Before = loc(300, 400)

	optCtx := matching.NewOptimizationContext()
	matching.NewMethodBodyMatcher(optCtx, mapper, matching.DefaultOptions()).Match(src.Root(), dst.Root(), store)

	assert.Equal(t, 0, store.Len())
	assert.Empty(t, optCtx.LastStepMappings())
}

func TestMethodBodyMatcher_UnresolvedStatementIsSkipped(t *testing.T) {
	t.Parallel()

	src, s := methodTree(t, false, "vals")
	dst, d := methodTree(t, true, "vals")
	store := mapping.NewStore(src, dst)

	mapper := bodyMapper()
	mapper.Mappings[0].After = loc(150, 160)

	matching.NewMethodBodyMatcher(matching.NewOptimizationContext(), mapper, matching.DefaultOptions()).
		Match(src.Root(), dst.Root(), store)

	assert.False(t, store.IsSrcMapped(s.expr))
	assert.True(t, store.Has(s.ret, d.ret))
}

func TestAnonymousClassMatcher_DelegatesEachMember(t *testing.T) {
	t.Parallel()

	version := func(second string) (*tree.Tree, []tree.NodeID) {
		b := tree.NewBuilder()
		cu := b.Root(tree.TypeCompilationUnit, "", tree.Pos{Start: 0, Length: 300})
		class := b.Add(cu, tree.TypeAnonymousClassDeclaration, "", tree.Pos{Start: 20, Length: 180})
		first := b.Add(class, tree.TypeMethodDeclaration, "", tree.Pos{Start: 30, Length: 70})
		firstRet := b.Add(first, tree.TypeReturnStatement, "", tree.Pos{Start: 40, Length: 20})
		firstName := b.Add(firstRet, tree.TypeSimpleName, "a", tree.Pos{Start: 47, Length: 1})
		secondDecl := b.Add(class, tree.TypeMethodDeclaration, "", tree.Pos{Start: 110, Length: 80})
		secondRet := b.Add(secondDecl, tree.TypeReturnStatement, "", tree.Pos{Start: 120, Length: 20})
		b.Add(secondRet, tree.TypeSimpleName, second, tree.Pos{Start: 127, Length: 1})

		return build(t, b), []tree.NodeID{class, first, firstRet, firstName, secondDecl, secondRet}
	}

	src, s := version("b")
	dst, d := version("c")

	diff := &model.AnonymousClassDiff{
		Before: loc(20, 200),
		After:  loc(20, 200),
		OperationBodyMappers: []model.OperationBodyMapper{
			{
				Before:   loc(30, 100),
				After:    loc(30, 100),
				Mappings: []model.CodeMapping{{Before: loc(40, 60), After: loc(40, 60)}},
			},
			{
				Before:   loc(110, 190),
				After:    model.Location{Start: 500, Length: 10},
				Mappings: []model.CodeMapping{{Before: loc(120, 140), After: loc(120, 140)}},
			},
		},
	}

	store := mapping.NewStore(src, dst)
	optCtx := matching.NewOptimizationContext()

	matching.NewAnonymousClassMatcher(optCtx, diff, matching.DefaultOptions()).Match(src.Root(), dst.Root(), store)

	assert.False(t, store.IsSrcMapped(s[0]), "class nodes are left to other facts")
	assert.False(t, store.IsDstMapped(d[0]))
	assert.True(t, store.Has(s[1], d[1]), "first member")
	assert.True(t, store.Has(s[2], d[2]), "first return")
	assert.True(t, store.Has(s[3], d[3]), "first name")
	assert.False(t, store.IsSrcMapped(s[4]), "unresolved member is skipped")
	assert.False(t, store.IsSrcMapped(s[5]))
	assert.Equal(t, 3, store.Len())
}

func TestAnonymousClassMatcher_UnresolvedClassStillMapsMembers(t *testing.T) {
	t.Parallel()

	src, s := methodTree(t, false, "vals")
	dst, d := methodTree(t, true, "vals")
	store := mapping.NewStore(src, dst)

	diff := &model.AnonymousClassDiff{
		Before:               model.Location{Start: 10, Length: 90, Type: string(tree.TypeAnonymousClassDeclaration)},
		After:                loc(10, 110),
		OperationBodyMappers: []model.OperationBodyMapper{*bodyMapper()},
	}

	matching.NewAnonymousClassMatcher(matching.NewOptimizationContext(), diff, matching.DefaultOptions()).
		Match(src.Root(), dst.Root(), store)

	assert.True(t, store.Has(s.method, d.method))
	assert.True(t, store.Has(s.expr, d.expr))
	assert.True(t, store.Has(s.ret, d.ret))
}

func TestAnonymousClassMatcher_NilDiff(t *testing.T) {
	t.Parallel()

	src, _ := methodTree(t, false, "vals")
	dst, _ := methodTree(t, true, "vals")
	store := mapping.NewStore(src, dst)

	matching.NewAnonymousClassMatcher(matching.NewOptimizationContext(), nil, matching.DefaultOptions()).
		Match(src.Root(), dst.Root(), store)

	assert.Equal(t, 0, store.Len())
}
