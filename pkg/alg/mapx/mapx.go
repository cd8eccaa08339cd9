// Package mapx provides the small generic map helpers shared by the engine
// and the report: set construction, additive merge and sorted-key extraction.
package mapx

import (
	"cmp"
	"slices"
)

// Numeric is the constraint for types that support the += operator.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Set builds a membership set from items. Duplicates collapse.
func Set[K comparable](items []K) map[K]struct{} {
	set := make(map[K]struct{}, len(items))

	for _, item := range items {
		set[item] = struct{}{}
	}

	return set
}

// MergeAdditive adds every src[k] onto dst[k]. A nil dst is left alone.
func MergeAdditive[K comparable, V Numeric](dst, src map[K]V) {
	if dst == nil {
		return
	}

	for k, v := range src {
		dst[k] += v
	}
}

// SortedKeys returns the keys of m in ascending order, nil for an empty map.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	if len(m) == 0 {
		return nil
	}

	keys := make([]K, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
