// Package tree provides the immutable labeled ordered syntax tree consumed by
// the matching engine.
//
// A Tree is an arena: nodes live in one slice and are addressed by NodeID.
// Each node stores its children's ids (ordered, owned) and its parent's id
// (non-owning). Trees are built once through a Builder and never mutated
// afterwards, so a built Tree is safe for concurrent reads.
package tree

import (
	"fmt"

	"github.com/Sumatoshi-tech/astmatch/pkg/alg/interval"
)

// NodeID addresses a node inside one Tree.
type NodeID int32

// NoNode is the id returned when a lookup finds nothing.
const NoNode NodeID = -1

// Type is the tag discriminating the syntactic construct of a node.
type Type string

// Well-known type tags.
const (
	TypeCompilationUnit           Type = "CompilationUnit"
	TypeTypeDeclaration           Type = "TypeDeclaration"
	TypeMethodDeclaration         Type = "MethodDeclaration"
	TypeAnonymousClassDeclaration Type = "AnonymousClassDeclaration"
	TypeBlock                     Type = "Block"
	TypeSimpleName                Type = "SimpleName"
	TypeExpressionStatement       Type = "ExpressionStatement"
	TypeReturnStatement           Type = "ReturnStatement"
	TypeJavadoc                   Type = "Javadoc"
	TypeTagElement                Type = "TagElement"
	TypeTextElement               Type = "TextElement"
	TypeLineComment               Type = "LineComment"
	TypeBlockComment              Type = "BlockComment"
)

// Pos is a half-open source range [Start, Start+Length).
type Pos struct {
	Start  int `json:"start"  yaml:"start"`
	Length int `json:"length" yaml:"length"`
}

// End returns the exclusive end offset.
func (p Pos) End() int {
	return p.Start + p.Length
}

// Contains reports whether inner lies within p.
func (p Pos) Contains(inner Pos) bool {
	return inner.Start >= p.Start && inner.End() <= p.End()
}

func (p Pos) String() string {
	return fmt.Sprintf("[%d,%d]", p.Start, p.End())
}

type node struct {
	typ      Type
	label    string
	pos      Pos
	parent   NodeID
	children []NodeID
}

// Tree is an immutable arena of nodes with precomputed traversal order,
// structural hashes and a position index.
type Tree struct {
	nodes []node
	root  NodeID

	order []NodeID // pre-order sequence
	rank  []int32  // pre-order rank by id
	size  []int32  // subtree size by id
	depth []int32

	structHash []uint64

	index *interval.Tree[int, NodeID]
}

// Root returns the root node id.
func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Valid reports whether id addresses a node of t.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Type returns the node's type tag.
func (t *Tree) Type(id NodeID) Type {
	return t.nodes[id].typ
}

// Label returns the node's raw text, possibly empty.
func (t *Tree) Label(id NodeID) string {
	return t.nodes[id].label
}

// Pos returns the node's source range.
func (t *Tree) Pos(id NodeID) Pos {
	return t.nodes[id].pos
}

// Parent returns the parent id, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].parent
}

// Children returns the ordered child ids. The slice must not be modified.
func (t *Tree) Children(id NodeID) []NodeID {
	return t.nodes[id].children
}

// Child returns the i-th child, or NoNode when out of range.
func (t *Tree) Child(id NodeID, i int) NodeID {
	children := t.nodes[id].children
	if i < 0 || i >= len(children) {
		return NoNode
	}

	return children[i]
}

// IsLeaf reports whether the node has no children.
func (t *Tree) IsLeaf(id NodeID) bool {
	return len(t.nodes[id].children) == 0
}

// Is reports whether the node exists and carries the given type tag.
func (t *Tree) Is(id NodeID, typ Type) bool {
	return t.Valid(id) && t.nodes[id].typ == typ
}

// Rank returns the node's pre-order rank.
func (t *Tree) Rank(id NodeID) int {
	return int(t.rank[id])
}

// Size returns the number of nodes in the subtree rooted at id.
func (t *Tree) Size(id NodeID) int {
	return int(t.size[id])
}

// Depth returns the number of edges between id and the root.
func (t *Tree) Depth(id NodeID) int {
	return int(t.depth[id])
}

// IsDescendant reports whether id lies in the subtree rooted at ancestor
// (a node is its own descendant).
func (t *Tree) IsDescendant(id, ancestor NodeID) bool {
	r := t.rank[id]
	ar := t.rank[ancestor]

	return r >= ar && r < ar+t.size[ancestor]
}

// PositionInParent returns the index of id among its siblings, or -1 for the root.
func (t *Tree) PositionInParent(id NodeID) int {
	parent := t.nodes[id].parent
	if parent == NoNode {
		return -1
	}

	for i, child := range t.nodes[parent].children {
		if child == id {
			return i
		}
	}

	return -1
}

// String renders a node as "Type [start,end]".
func (t *Tree) String(id NodeID) string {
	if !t.Valid(id) {
		return "<none>"
	}

	n := t.nodes[id]

	return fmt.Sprintf("%s %s", n.typ, n.pos)
}
