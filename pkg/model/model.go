// Package model defines the schema model algebra: immutable nodes describing
// payload shapes, HTTP routes and security requirements.
//
// Models are built once through the constructor functions of this package and
// are never mutated afterwards. Identity matters: two structurally equal
// records are still two different models, and every index in this module is
// keyed by the node pointer rather than by its contents.
package model

// Kind identifies the variant of a Model.
type Kind string

const (
	KindString      Kind = "string"
	KindNumber      Kind = "number"
	KindBoolean     Kind = "boolean"
	KindArray       Kind = "array"
	KindSet         Kind = "set"
	KindMap         Kind = "map"
	KindOptional    Kind = "optional"
	KindConstant    Kind = "constant"
	KindRecord      Kind = "record"
	KindTaggedUnion Kind = "tagged-union"
	KindDate        Kind = "date"
	KindTime        Kind = "time"
	KindDateTime    Kind = "datetime"
	KindUUID        Kind = "uuid"
)

// Node is anything the identity index can key: every Model and every *RoutesModel.
type Node interface {
	node()
}

// Model is a schema node. The set of implementations is closed to this package.
type Model interface {
	Node
	Kind() Kind
}

// Custom is a node carrying its own stable id: records, tagged unions and routes.
type Custom interface {
	Node
	ID() string
}

// Wrapper is implemented by the models that hold exactly one base model.
type Wrapper interface {
	Model
	Base() Model
}

// Meta carries the documentation fields shared by most kinds.
type Meta struct {
	Title       string
	Description string
	Deprecated  bool
	Examples    []any
}

// Unwrap strips optional, constant and collection wrappers until it reaches a
// model that is not a Wrapper.
func Unwrap(m Model) Model {
	for {
		w, ok := m.(Wrapper)
		if !ok {
			return m
		}
		m = w.Base()
	}
}

// IsPrimitive reports whether m is a string, number or boolean model.
func IsPrimitive(m Model) bool {
	switch m.(type) {
	case *StringModel, *NumberModel, *BooleanModel:
		return true
	}
	return false
}
