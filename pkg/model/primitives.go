package model

// NumberType selects the numeric representation of a number model.
type NumberType string

const (
	Short   NumberType = "short"
	Int     NumberType = "int"
	Long    NumberType = "long"
	Float   NumberType = "float"
	Double  NumberType = "double"
	Decimal NumberType = "decimal"
)

func (t NumberType) apply(o *options) { o.numberType = t }

// IsInteger reports whether t is short, int or long.
func (t NumberType) IsInteger() bool {
	return t == Short || t == Int || t == Long
}

type StringModel struct {
	Meta
	Validations []Validation
}

type NumberModel struct {
	Meta
	Type        NumberType
	Validations []Validation
}

type BooleanModel struct {
	Meta
}

// TemporalModel backs the date, time and datetime kinds.
type TemporalModel struct {
	Meta
	kind       Kind
	Default    any
	HasDefault bool
}

type UUIDModel struct {
	Meta
	Default    any
	HasDefault bool
}

func (*StringModel) node() {}
func (*NumberModel) node() {}
func (*BooleanModel) node() {}
func (*TemporalModel) node() {}
func (*UUIDModel) node() {}

func (*StringModel) Kind() Kind { return KindString }
func (*NumberModel) Kind() Kind { return KindNumber }
func (*BooleanModel) Kind() Kind { return KindBoolean }
func (m *TemporalModel) Kind() Kind { return m.kind }
func (*UUIDModel) Kind() Kind { return KindUUID }

// String returns a string model. Accepts Meta options and string validations.
func String(opts ...Option) *StringModel {
	o := collect(opts)
	return &StringModel{Meta: o.meta, Validations: NormalizeValidations(o.validations)}
}

// Number returns a number model. The numeric type defaults to Int.
func Number(opts ...Option) *NumberModel {
	o := collect(opts)
	t := o.numberType
	if t == "" {
		t = Int
	}
	return &NumberModel{Meta: o.meta, Type: t, Validations: NormalizeValidations(o.validations)}
}

// Boolean returns a boolean model.
func Boolean(opts ...Option) *BooleanModel {
	return &BooleanModel{Meta: collect(opts).meta}
}

// Date returns a calendar date model. Defaults are time.Time values.
func Date(opts ...Option) *TemporalModel { return temporal(KindDate, opts) }

// Time returns a local time-of-day model.
func Time(opts ...Option) *TemporalModel { return temporal(KindTime, opts) }

// DateTime returns a local date-time model.
func DateTime(opts ...Option) *TemporalModel { return temporal(KindDateTime, opts) }

func temporal(k Kind, opts []Option) *TemporalModel {
	o := collect(opts)
	return &TemporalModel{Meta: o.meta, kind: k, Default: o.def, HasDefault: o.hasDefault}
}

// UUID returns a UUID model. Defaults are strings or uuid.UUID values.
func UUID(opts ...Option) *UUIDModel {
	o := collect(opts)
	return &UUIDModel{Meta: o.meta, Default: o.def, HasDefault: o.hasDefault}
}
