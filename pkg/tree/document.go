package tree

import (
	"encoding/json"
	"fmt"
)

// Document is the nested, serializable form of a tree.
type Document struct {
	Type     Type        `json:"type"               yaml:"type"`
	Label    string      `json:"label,omitempty"    yaml:"label,omitempty"`
	Pos      Pos         `json:"pos"                yaml:"pos"`
	Children []*Document `json:"children,omitempty" yaml:"children,omitempty"`
}

// FromDocument builds a Tree from its nested form.
func FromDocument(doc *Document) (*Tree, error) {
	if doc == nil {
		return nil, ErrEmptyTree
	}

	type frame struct {
		doc    *Document
		parent NodeID
	}

	builder := NewBuilder()
	stack := []frame{{doc: doc, parent: NoNode}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := builder.Add(top.parent, top.doc.Type, top.doc.Label, top.doc.Pos)
		if id == NoNode {
			break
		}

		for i := len(top.doc.Children) - 1; i >= 0; i-- {
			if top.doc.Children[i] != nil {
				stack = append(stack, frame{doc: top.doc.Children[i], parent: id})
			}
		}
	}

	t, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}

	return t, nil
}

// Document returns the nested form of the subtree rooted at id.
func (t *Tree) Document(id NodeID) *Document {
	docs := make(map[NodeID]*Document, t.size[id])

	for visit := range t.PostOrder(id) {
		n := t.nodes[visit]
		doc := &Document{Type: n.typ, Label: n.label, Pos: n.pos}

		if len(n.children) > 0 {
			doc.Children = make([]*Document, len(n.children))
			for i, child := range n.children {
				doc.Children[i] = docs[child]
			}
		}

		docs[visit] = doc
	}

	return docs[id]
}

// MarshalJSON encodes the whole tree in its nested form.
func (t *Tree) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(t.Document(t.root))
	if err != nil {
		return nil, fmt.Errorf("marshal tree: %w", err)
	}

	return data, nil
}

// UnmarshalJSON decodes a nested tree document.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var doc Document

	err := json.Unmarshal(data, &doc)
	if err != nil {
		return fmt.Errorf("unmarshal tree: %w", err)
	}

	built, err := FromDocument(&doc)
	if err != nil {
		return err
	}

	*t = *built

	return nil
}
