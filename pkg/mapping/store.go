// Package mapping provides the multi-mapping store recording node
// correspondences between a source and a destination tree.
//
// A Store is many-to-many: a source node may map to several destination nodes
// and vice versa. Mappings are only ever added. Conflicts between matchers are
// not arbitrated here; callers decide whether to add a competing pair.
// A Store is not safe for concurrent mutation.
package mapping

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/astmatch/pkg/tree"
)

// Sentinel errors for store operations.
var (
	ErrNotIsomorphic = errors.New("subtrees are not structurally isomorphic")
	ErrTreeMismatch  = errors.New("stores are bound to different trees")
	ErrInvalidNode   = errors.New("node does not belong to the bound tree")
)

// Mapping is one (source, destination) correspondence.
type Mapping struct {
	Src tree.NodeID
	Dst tree.NodeID
}

// Store records mappings between nodes of Src and Dst.
type Store struct {
	src *tree.Tree
	dst *tree.Tree

	pairs    []Mapping
	seen     map[Mapping]struct{}
	srcToDst map[tree.NodeID][]tree.NodeID
	dstToSrc map[tree.NodeID][]tree.NodeID
}

// NewStore creates an empty store bound to a tree pair.
func NewStore(src, dst *tree.Tree) *Store {
	return &Store{
		src:      src,
		dst:      dst,
		seen:     make(map[Mapping]struct{}),
		srcToDst: make(map[tree.NodeID][]tree.NodeID),
		dstToSrc: make(map[tree.NodeID][]tree.NodeID),
	}
}

// Src returns the source tree.
func (s *Store) Src() *tree.Tree {
	return s.src
}

// Dst returns the destination tree.
func (s *Store) Dst() *tree.Tree {
	return s.dst
}

// Add records (src, dst). It is idempotent and reports whether the pair was new.
// Ids outside the bound trees are ignored.
func (s *Store) Add(src, dst tree.NodeID) bool {
	if !s.src.Valid(src) || !s.dst.Valid(dst) {
		return false
	}

	pair := Mapping{Src: src, Dst: dst}
	if _, ok := s.seen[pair]; ok {
		return false
	}

	s.seen[pair] = struct{}{}
	s.pairs = append(s.pairs, pair)
	s.srcToDst[src] = append(s.srcToDst[src], dst)
	s.dstToSrc[dst] = append(s.dstToSrc[dst], src)

	return true
}

// AddRecursively maps src to dst and every pair of corresponding descendants.
// Both subtrees must be structurally isomorphic; otherwise nothing is added
// and ErrNotIsomorphic is returned.
func (s *Store) AddRecursively(src, dst tree.NodeID) error {
	if !s.src.Valid(src) || !s.dst.Valid(dst) {
		return fmt.Errorf("%w: %d -> %d", ErrInvalidNode, src, dst)
	}

	if !tree.IsoStructural(s.src, src, s.dst, dst) {
		return fmt.Errorf("%w: %s -> %s", ErrNotIsomorphic, s.src.String(src), s.dst.String(dst))
	}

	for _, pair := range tree.Pairs(s.src, src, s.dst, dst) {
		s.Add(pair[0], pair[1])
	}

	return nil
}

// IsSrcMapped reports whether src has at least one mapping.
func (s *Store) IsSrcMapped(src tree.NodeID) bool {
	return len(s.srcToDst[src]) > 0
}

// IsDstMapped reports whether dst has at least one mapping.
func (s *Store) IsDstMapped(dst tree.NodeID) bool {
	return len(s.dstToSrc[dst]) > 0
}

// Has reports whether the exact pair is recorded.
func (s *Store) Has(src, dst tree.NodeID) bool {
	_, ok := s.seen[Mapping{Src: src, Dst: dst}]

	return ok
}

// Dsts returns the destinations mapped to src in insertion order.
func (s *Store) Dsts(src tree.NodeID) []tree.NodeID {
	return slices.Clone(s.srcToDst[src])
}

// Srcs returns the sources mapped to dst in insertion order.
func (s *Store) Srcs(dst tree.NodeID) []tree.NodeID {
	return slices.Clone(s.dstToSrc[dst])
}

// Len returns the number of recorded pairs.
func (s *Store) Len() int {
	return len(s.pairs)
}

// All returns every pair in insertion order.
func (s *Store) All() []Mapping {
	return slices.Clone(s.pairs)
}

// Sorted returns every pair ordered by source pre-order rank, then
// destination pre-order rank. The order depends only on the trees and the
// set of pairs.
func (s *Store) Sorted() []Mapping {
	out := slices.Clone(s.pairs)

	slices.SortFunc(out, func(a, b Mapping) int {
		if c := cmp.Compare(s.src.Rank(a.Src), s.src.Rank(b.Src)); c != 0 {
			return c
		}

		return cmp.Compare(s.dst.Rank(a.Dst), s.dst.Rank(b.Dst))
	})

	return out
}

// Merge adds every pair of other. Both stores must be bound to the same trees.
func (s *Store) Merge(other *Store) error {
	if other.src != s.src || other.dst != s.dst {
		return ErrTreeMismatch
	}

	for _, pair := range other.pairs {
		s.Add(pair.Src, pair.Dst)
	}

	return nil
}

// Stats summarizes the store's shape.
type Stats struct {
	Mappings    int `json:"mappings"`
	MappedSrc   int `json:"mapped_src"`
	MappedDst   int `json:"mapped_dst"`
	MultiSrc    int `json:"multi_src"` // sources mapped to more than one destination
	MultiDst    int `json:"multi_dst"` // destinations mapped from more than one source
	UnmappedSrc int `json:"unmapped_src"`
	UnmappedDst int `json:"unmapped_dst"`
}

// Stats computes a summary of the store.
func (s *Store) Stats() Stats {
	st := Stats{
		Mappings:  len(s.pairs),
		MappedSrc: len(s.srcToDst),
		MappedDst: len(s.dstToSrc),
	}

	for _, dsts := range s.srcToDst {
		if len(dsts) > 1 {
			st.MultiSrc++
		}
	}

	for _, srcs := range s.dstToSrc {
		if len(srcs) > 1 {
			st.MultiDst++
		}
	}

	st.UnmappedSrc = s.src.Len() - st.MappedSrc
	st.UnmappedDst = s.dst.Len() - st.MappedDst

	return st
}
