package model

// CollectionModel backs the array, set and map kinds. Map keys are always strings.
type CollectionModel struct {
	Meta
	kind        Kind
	base        Model
	Validations []Validation
}

// OptionalModel marks its base as nullable and may carry a default value.
type OptionalModel struct {
	base       Model
	Value      any
	HasDefault bool
}

// ConstantModel fixes the value of its base. Only primitive bases and records
// built from primitives can be rendered as literals.
type ConstantModel struct {
	Meta
	base  Model
	Value any
}

func (*CollectionModel) node() {}
func (*OptionalModel) node() {}
func (*ConstantModel) node() {}

func (m *CollectionModel) Kind() Kind { return m.kind }
func (*OptionalModel) Kind() Kind { return KindOptional }
func (*ConstantModel) Kind() Kind { return KindConstant }

func (m *CollectionModel) Base() Model { return m.base }
func (m *OptionalModel) Base() Model { return m.base }
func (m *ConstantModel) Base() Model { return m.base }

// Array returns a list of base. MinLength and MaxLength bound the item count.
func Array(base Model, opts ...Option) *CollectionModel { return collection(KindArray, base, opts) }

// Set returns a list of unique base values.
func Set(base Model, opts ...Option) *CollectionModel { return collection(KindSet, base, opts) }

// Map returns a string-keyed map of base values.
func Map(base Model, opts ...Option) *CollectionModel { return collection(KindMap, base, opts) }

func collection(k Kind, base Model, opts []Option) *CollectionModel {
	o := collect(opts)
	return &CollectionModel{Meta: o.meta, kind: k, base: base, Validations: NormalizeValidations(o.validations)}
}

// Optional wraps base as nullable. Pass Default to give it a default value.
func Optional(base Model, opts ...Option) *OptionalModel {
	o := collect(opts)
	return &OptionalModel{base: base, Value: o.def, HasDefault: o.hasDefault}
}

// OptionalWithDefault is Optional(base, Default(def)).
func OptionalWithDefault(base Model, def any) *OptionalModel {
	return Optional(base, Default(def))
}

// Constant fixes base to value. The value shape is checked when the model is
// registered, see CheckValue.
func Constant(base Model, value any, opts ...Option) *ConstantModel {
	return &ConstantModel{Meta: collect(opts).meta, base: base, Value: value}
}

// Collapse strips nested optionals so that optional(optional(T)) behaves as
// optional(T). The outermost default wins.
func (m *OptionalModel) Collapse() *OptionalModel {
	inner, ok := m.base.(*OptionalModel)
	if !ok {
		return m
	}
	c := inner.Collapse()
	if m.HasDefault {
		return &OptionalModel{base: c.base, Value: m.Value, HasDefault: true}
	}
	return c
}
