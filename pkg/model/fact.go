package model

import "fmt"

// Kind identifies the kind of a semantic diff fact.
type Kind string

// Fact kinds. The set is closed: the orchestrator has one matcher per kind.
const (
	KindJavadoc        Kind = "javadoc"
	KindAnonymousClass Kind = "anonymous_class"
	KindOperationBody  Kind = "operation_body"
	KindComments       Kind = "comments"
)

// Kinds lists every fact kind in dispatch-table order.
func Kinds() []Kind {
	return []Kind{KindJavadoc, KindAnonymousClass, KindOperationBody, KindComments}
}

// Fact is a tagged union of the semantic diff facts. Exactly the payload
// matching Kind is expected to be set.
type Fact struct {
	Kind           Kind                 `json:"kind"                      yaml:"kind"`
	Javadoc        *JavadocDiff         `json:"javadoc,omitempty"         yaml:"javadoc,omitempty"`
	AnonymousClass *AnonymousClassDiff  `json:"anonymous_class,omitempty" yaml:"anonymous_class,omitempty"`
	OperationBody  *OperationBodyMapper `json:"operation_body,omitempty"  yaml:"operation_body,omitempty"`
	Comments       *CommentListDiff     `json:"comments,omitempty"        yaml:"comments,omitempty"`
}

// Validate checks that the fact's kind is known and its payload present.
func (f Fact) Validate() error {
	var present bool

	switch f.Kind {
	case KindJavadoc:
		present = f.Javadoc != nil
	case KindAnonymousClass:
		present = f.AnonymousClass != nil
	case KindOperationBody:
		present = f.OperationBody != nil
	case KindComments:
		present = f.Comments != nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, f.Kind)
	}

	if !present {
		return fmt.Errorf("%w: %s", ErrMissingPayload, f.Kind)
	}

	return nil
}

// NewJavadocFact wraps a documentation diff.
func NewJavadocFact(diff *JavadocDiff) Fact {
	return Fact{Kind: KindJavadoc, Javadoc: diff}
}

// NewAnonymousClassFact wraps an anonymous class diff.
func NewAnonymousClassFact(diff *AnonymousClassDiff) Fact {
	return Fact{Kind: KindAnonymousClass, AnonymousClass: diff}
}

// NewOperationBodyFact wraps an operation body mapper.
func NewOperationBodyFact(mapper *OperationBodyMapper) Fact {
	return Fact{Kind: KindOperationBody, OperationBody: mapper}
}

// NewCommentsFact wraps a comment list diff.
func NewCommentsFact(diff *CommentListDiff) Fact {
	return Fact{Kind: KindComments, Comments: diff}
}
