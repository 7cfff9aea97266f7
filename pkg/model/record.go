package model

// Property is a named record field. It is also an Option for Record.
type Property struct {
	Name  string
	Model Model
}

// RecordModel is a named object type.
type RecordModel struct {
	Meta
	id         string
	Properties []Property
}

func (*RecordModel) node() {}
func (*RecordModel) Kind() Kind { return KindRecord }
func (r *RecordModel) ID() string { return r.id }

// Record returns a named record. id is dot-segmented: "billing.Invoice".
func Record(id string, opts ...Option) *RecordModel {
	o := collect(opts)
	return &RecordModel{Meta: o.meta, id: id, Properties: o.properties}
}

// Property returns the property called name.
func (r *RecordModel) Property(name string) (Model, bool) {
	for _, p := range r.Properties {
		if p.Name == name {
			return p.Model, true
		}
	}
	return nil, false
}

// Split partitions the properties into required, optional and constant ones,
// each in declaration order.
func (r *RecordModel) Split() (required, optional, constant []Property) {
	for _, p := range r.Properties {
		switch p.Model.(type) {
		case *ConstantModel:
			constant = append(constant, p)
		case *OptionalModel:
			optional = append(optional, p)
		default:
			required = append(required, p)
		}
	}
	return required, optional, constant
}
