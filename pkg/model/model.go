// Package model defines the semantic diff facts consumed by the matching
// engine. Facts are produced upstream by model-level differencing and are
// read-only inputs: they reference program elements by source location and,
// where applicable, carry a decomposition into comparable sub-elements.
package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for fact validation.
var (
	ErrUnknownKind    = errors.New("unknown fact kind")
	ErrMissingPayload = errors.New("fact payload missing for kind")
)

// Location references a model element by source range. Type optionally
// narrows resolution to tree nodes carrying that tag.
type Location struct {
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
	Start  int    `json:"start"          yaml:"start"`
	Length int    `json:"length"         yaml:"length"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
}

// End returns the exclusive end offset.
func (l Location) End() int {
	return l.Start + l.Length
}

func (l Location) String() string {
	if l.Type != "" {
		return fmt.Sprintf("%s[%d,%d]", l.Type, l.Start, l.End())
	}

	return fmt.Sprintf("[%d,%d]", l.Start, l.End())
}

// DocElement is one documentation fragment: a plain text run or the text of
// a tagged sub-element.
type DocElement struct {
	Text     string   `json:"text"     yaml:"text"`
	Location Location `json:"location" yaml:"location"`
}

// TagElement is a tagged documentation section such as "@param" or the
// untagged leading description.
type TagElement struct {
	Name      string       `json:"name,omitempty"      yaml:"name,omitempty"`
	Location  Location     `json:"location"            yaml:"location"`
	Fragments []DocElement `json:"fragments,omitempty" yaml:"fragments,omitempty"`
}

// Javadoc is a documentation block decomposed into tags.
type Javadoc struct {
	Location Location     `json:"location"       yaml:"location"`
	Tags     []TagElement `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// TagPair is a before/after pair of tags reported as common.
type TagPair struct {
	Before TagElement `json:"before" yaml:"before"`
	After  TagElement `json:"after"  yaml:"after"`
}

// DocElementPair is a before/after pair of fragments reported as common.
type DocElementPair struct {
	Before DocElement `json:"before" yaml:"before"`
	After  DocElement `json:"after"  yaml:"after"`
}

// JavadocDiff describes a change between two documentation blocks.
type JavadocDiff struct {
	Before            *Javadoc         `json:"before"                        yaml:"before"`
	After             *Javadoc         `json:"after"                         yaml:"after"`
	CommonTags        []TagPair        `json:"common_tags,omitempty"         yaml:"common_tags,omitempty"`
	CommonDocElements []DocElementPair `json:"common_doc_elements,omitempty" yaml:"common_doc_elements,omitempty"`

	// ManyToManyReformat marks fragments that were reflowed or reordered, so
	// that one fragment may correspond to several on the other side.
	ManyToManyReformat bool `json:"many_to_many_reformat,omitempty" yaml:"many_to_many_reformat,omitempty"`
}

// HasCommonElements reports whether the two blocks share a tag or a fragment.
func (d *JavadocDiff) HasCommonElements() bool {
	return len(d.CommonTags) > 0 || len(d.CommonDocElements) > 0
}

// MappingKind distinguishes statement mappings.
type MappingKind string

// Statement mapping kinds.
const (
	MappingLeaf      MappingKind = "leaf"
	MappingComposite MappingKind = "composite"
)

// CodeMapping is one statement-level correspondence inside an operation body.
type CodeMapping struct {
	Before Location    `json:"before"         yaml:"before"`
	After  Location    `json:"after"          yaml:"after"`
	Kind   MappingKind `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// OperationBodyMapper is the precomputed correspondence between two versions
// of one operation: its declaration locations and its statement mappings.
type OperationBodyMapper struct {
	Before   Location      `json:"before"             yaml:"before"`
	After    Location      `json:"after"              yaml:"after"`
	Mappings []CodeMapping `json:"mappings,omitempty" yaml:"mappings,omitempty"`
}

// AnonymousClassDiff describes a change between two versions of an
// anonymous class: one operation body mapper per member operation.
type AnonymousClassDiff struct {
	Before               Location              `json:"before"                           yaml:"before"`
	After                Location              `json:"after"                            yaml:"after"`
	OperationBodyMappers []OperationBodyMapper `json:"operation_body_mappers,omitempty" yaml:"operation_body_mappers,omitempty"`
}

// CommentPair is a before/after pair of comments reported as common.
type CommentPair struct {
	Before Location `json:"before" yaml:"before"`
	After  Location `json:"after"  yaml:"after"`
}

// CommentListDiff describes the comments common to two versions of an element.
type CommentListDiff struct {
	CommonComments []CommentPair `json:"common_comments,omitempty" yaml:"common_comments,omitempty"`
}
