// Package interval provides a static augmented interval tree for range
// queries over intervals that are known up front. The intervals are sorted
// once by Low (then High) and laid out as an implicit balanced binary search
// tree; every implicit node stores the maximum right endpoint (maxHigh) of its
// subtree, enabling subtree pruning during overlap queries.
//
// Build is O(N log N). QueryOverlap is O(log N + k), where k is the number of
// results; QueryContained filters the same search. Node positions nest, so
// the overlapping but not contained intervals are the few enclosing ones.
package interval

import (
	"cmp"
	"slices"
)

// Interval represents a closed range [Low, High] with an associated Value.
type Interval[K cmp.Ordered, V any] struct {
	Low   K
	High  K
	Value V
}

// Tree is an immutable augmented interval tree. It is safe for concurrent
// reads once built.
type Tree[K cmp.Ordered, V any] struct {
	items   []Interval[K, V]
	maxHigh []K
}

// Build creates a tree over a copy of items.
func Build[K cmp.Ordered, V any](items []Interval[K, V]) *Tree[K, V] {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, compareIntervals[K, V])

	t := &Tree[K, V]{
		items:   sorted,
		maxHigh: make([]K, len(sorted)),
	}

	t.augment(0, len(sorted))

	return t
}

// QueryOverlap returns all intervals that overlap with the query range [low, high],
// sorted by Low. An interval [a, b] overlaps [low, high] when a <= high AND b >= low.
func (t *Tree[K, V]) QueryOverlap(low, high K) []Interval[K, V] {
	if len(t.items) == 0 || low > high {
		return nil
	}

	var results []Interval[K, V]

	t.collectOverlap(0, len(t.items), low, high, &results)

	return results
}

// QueryContained returns all intervals [a, b] with low <= a and b <= high,
// sorted by Low, then High. Containment implies overlap, so the augmented
// overlap search prunes the candidates.
func (t *Tree[K, V]) QueryContained(low, high K) []Interval[K, V] {
	overlap := t.QueryOverlap(low, high)

	results := overlap[:0]

	for _, item := range overlap {
		if item.Low >= low && item.High <= high {
			results = append(results, item)
		}
	}

	if len(results) == 0 {
		return nil
	}

	return results
}

// augment fills maxHigh for the implicit subtree spanning items[lo:hi] and
// returns it. The implicit root of a span is its midpoint.
func (t *Tree[K, V]) augment(lo, hi int) K {
	var zero K

	if lo >= hi {
		return zero
	}

	mid := lo + (hi-lo)/2
	best := t.items[mid].High

	if lo < mid {
		best = max(best, t.augment(lo, mid))
	}

	if mid+1 < hi {
		best = max(best, t.augment(mid+1, hi))
	}

	t.maxHigh[mid] = best

	return best
}

// collectOverlap collects intervals overlapping [low, high] from the implicit
// subtree spanning items[lo:hi], in sorted order.
func (t *Tree[K, V]) collectOverlap(lo, hi int, low, high K, results *[]Interval[K, V]) {
	if lo >= hi {
		return
	}

	mid := lo + (hi-lo)/2

	// Prune: if maxHigh in this subtree is less than query low, no overlap possible.
	if t.maxHigh[mid] < low {
		return
	}

	t.collectOverlap(lo, mid, low, high, results)

	current := t.items[mid]

	// Prune right: if this interval starts after high, so does everything to its right.
	if current.Low > high {
		return
	}

	if current.High >= low {
		*results = append(*results, current)
	}

	t.collectOverlap(mid+1, hi, low, high, results)
}

// compareIntervals orders intervals by Low, then by High.
func compareIntervals[K cmp.Ordered, V any](a, b Interval[K, V]) int {
	if c := cmp.Compare(a.Low, b.Low); c != 0 {
		return c
	}

	return cmp.Compare(a.High, b.High)
}
