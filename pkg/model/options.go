package model

// Option configures a model, route, operation or response constructor.
// Options that do not apply to the constructor they are passed to are ignored.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

type options struct {
	meta        Meta
	validations []Validation
	numberType  NumberType
	def         any
	hasDefault  bool

	properties []Property
	variants   []UnionVariant

	pathParams   []Param
	queryParams  []Param
	headerParams []Param
	content      Model
	contentType  string
	operations   []NamedOperation
	responses    []NamedResponse
	summary      string
	tags         []string
	security     SecurityGroups
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&o)
		}
	}
	return o
}

// Title sets the title of a model.
func Title(s string) Option {
	return optionFunc(func(o *options) { o.meta.Title = s })
}

// Description sets the description of a model, route, operation or response.
func Description(s string) Option {
	return optionFunc(func(o *options) { o.meta.Description = s })
}

// Deprecated marks a model or operation as deprecated.
func Deprecated() Option {
	return optionFunc(func(o *options) { o.meta.Deprecated = true })
}

// Examples attaches example values to a model.
func Examples(values ...any) Option {
	return optionFunc(func(o *options) { o.meta.Examples = append(o.meta.Examples, values...) })
}

// Default sets the default value of an optional, date, time, datetime or uuid model.
// Default(nil) declares an explicit null default.
func Default(v any) Option {
	return optionFunc(func(o *options) {
		o.def = v
		o.hasDefault = true
	})
}

// Summary sets the summary of a route or operation.
func Summary(s string) Option {
	return optionFunc(func(o *options) { o.summary = s })
}

// Tags appends tags to a route or operation.
func Tags(tags ...string) Option {
	return optionFunc(func(o *options) { o.tags = append(o.tags, tags...) })
}

// ContentType overrides the default application/json content type.
func ContentType(ct string) Option {
	return optionFunc(func(o *options) { o.contentType = ct })
}

// Content sets the request body of an operation or the body of a response.
func Content(m Model) Option {
	return optionFunc(func(o *options) { o.content = m })
}

// PathParam declares a typed path parameter on a route or operation.
func PathParam(name string, m Model) Option {
	return optionFunc(func(o *options) { o.pathParams = setParam(o.pathParams, name, m) })
}

// Query declares a query parameter on an operation.
func Query(name string, m Model) Option {
	return optionFunc(func(o *options) { o.queryParams = setParam(o.queryParams, name, m) })
}

// Header declares a request header on an operation or a response header on a response.
func Header(name string, m Model) Option {
	return optionFunc(func(o *options) { o.headerParams = setParam(o.headerParams, name, m) })
}

// Prop declares a record property. A later Prop with the same name replaces the
// earlier one in place.
func Prop(name string, m Model) Property {
	return Property{Name: name, Model: m}
}

func (p Property) apply(o *options) {
	for i := range o.properties {
		if o.properties[i].Name == p.Name {
			o.properties[i] = p
			return
		}
	}
	o.properties = append(o.properties, p)
}

// PropsOf copies every property of r, in order, into the record being built.
func PropsOf(r *RecordModel) Option {
	return optionFunc(func(o *options) {
		for _, p := range r.Properties {
			p.apply(o)
		}
	})
}

// Variant declares a tagged union variant.
func Variant(name string, m Model) VariantOption {
	return VariantOption{Name: name, Model: m}
}

// VariantOption is the Option form of a tagged union variant.
type VariantOption UnionVariant

func (v VariantOption) apply(o *options) {
	for i := range o.variants {
		if o.variants[i].Name == v.Name {
			o.variants[i] = UnionVariant(v)
			return
		}
	}
	o.variants = append(o.variants, UnionVariant(v))
}

// Op adds a named operation to a route.
func Op(name string, op *OperationModel) Option {
	return optionFunc(func(o *options) {
		o.operations = append(o.operations, NamedOperation{Name: name, Operation: op})
	})
}

// Resp adds a named response to an operation.
func Resp(name string, r *ResponseModel) Option {
	return optionFunc(func(o *options) {
		o.responses = append(o.responses, NamedResponse{Name: name, Response: r})
	})
}

// Secure appends security requirement groups to an operation.
func Secure(groups ...SecurityGroups) Option {
	return optionFunc(func(o *options) {
		for _, g := range groups {
			o.security = append(o.security, g...)
		}
	})
}

func setParam(params []Param, name string, m Model) []Param {
	for i := range params {
		if params[i].Name == name {
			params[i].Model = m
			return params
		}
	}
	return append(params, Param{Name: name, Model: m})
}
