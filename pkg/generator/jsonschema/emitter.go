// Package jsonschema renders models as JSON Schema draft 2020-12 documents.
//
// Records and tagged unions are emitted once per id into a definitions section
// and referenced with $ref everywhere else, which keeps shared and recursive
// graphs finite.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/blimu-dev/specgen/pkg/graph"
	"github.com/blimu-dev/specgen/pkg/model"
)

// Schema is one JSON Schema object.
type Schema map[string]any

// Reference prefixes.
const (
	DefsPrefix       = "#/$defs/"
	ComponentsPrefix = "#/components/schemas/"
)

// Draft2020 is the $schema URI written on standalone documents.
const Draft2020 = "https://json-schema.org/draft/2020-12/schema"

// Option configures an Emitter.
type Option func(*Emitter)

// WithRefPrefix sets the prefix of generated $ref values. DefsPrefix by default.
func WithRefPrefix(prefix string) Option {
	return func(e *Emitter) { e.refPrefix = prefix }
}

// WithInlineUnregistered inlines records and tagged unions the index does not
// know instead of failing with model.ErrReferenceNotFound. Used together with
// a relaxed index, where colliding models are dropped rather than rejected.
func WithInlineUnregistered() Option {
	return func(e *Emitter) { e.inline = true }
}

// WithRequired lists every non-optional record property under "required".
// Without it record schemas carry only type and properties.
func WithRequired() Option {
	return func(e *Emitter) { e.required = true }
}

// Emitter converts models to schemas and memoizes one definition per id.
type Emitter struct {
	index     *graph.Index
	refPrefix string
	inline    bool
	required  bool

	defs     map[string]Schema
	order    []string
	inlining map[model.Node]bool
}

// NewEmitter returns an emitter resolving ids through idx.
func NewEmitter(idx *graph.Index, opts ...Option) *Emitter {
	e := &Emitter{
		index:     idx,
		refPrefix: DefsPrefix,
		defs:      make(map[string]Schema),
		inlining:  make(map[model.Node]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schema returns the schema of m. Records and tagged unions are returned as a
// $ref; their definition is built on first use.
func (e *Emitter) Schema(m model.Model) (Schema, error) {
	switch m.(type) {
	case *model.RecordModel, *model.TaggedUnionModel:
		id, ok := e.index.ID(m)
		if !ok {
			return e.unregistered(m)
		}
		if _, err := e.define(id, m); err != nil {
			return nil, err
		}
		return Schema{"$ref": e.refPrefix + id}, nil
	}
	return e.body(m)
}

// Define returns the definition of a record or tagged union, building it on
// first use.
func (e *Emitter) Define(m model.Model) (Schema, error) {
	id, err := e.index.RequireID(m)
	if err != nil {
		return nil, err
	}
	return e.define(id, m)
}

// Definitions returns every definition built so far, keyed by id.
func (e *Emitter) Definitions() map[string]Schema {
	out := make(map[string]Schema, len(e.defs))
	for id, s := range e.defs {
		out[id] = s
	}
	return out
}

// DefinitionIDs returns the ids of the built definitions in build order.
func (e *Emitter) DefinitionIDs() []string {
	return append([]string(nil), e.order...)
}

// Document returns a standalone schema for m: its own body plus a $defs
// section holding every definition it transitively references.
func (e *Emitter) Document(m model.Model) (Schema, error) {
	var (
		root   Schema
		rootID string
		err    error
	)
	if c, ok := m.(model.Custom); ok {
		rootID, _ = e.index.ID(c)
	}
	if rootID != "" {
		root, err = e.define(rootID, m)
	} else {
		root, err = e.Schema(m)
	}
	if err != nil {
		return nil, err
	}

	doc := Schema{"$schema": Draft2020}
	for k, v := range root {
		doc[k] = v
	}

	defs := Schema{}
	queue := e.refs(root)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == rootID {
			continue
		}
		if _, done := defs[id]; done {
			continue
		}
		def, ok := e.defs[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrReferenceNotFound, id)
		}
		defs[id] = def
		queue = append(queue, e.refs(def)...)
	}
	if len(defs) > 0 {
		doc["$defs"] = defs
	}
	return doc, nil
}

func (e *Emitter) define(id string, m model.Model) (Schema, error) {
	if s, ok := e.defs[id]; ok {
		return s, nil
	}
	// Placeholder first so recursive references terminate.
	placeholder := Schema{}
	e.defs[id] = placeholder
	e.order = append(e.order, id)

	s, err := e.body(m)
	if err != nil {
		delete(e.defs, id)
		e.order = e.order[:len(e.order)-1]
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	for k, v := range s {
		placeholder[k] = v
	}
	return placeholder, nil
}

func (e *Emitter) unregistered(m model.Model) (Schema, error) {
	c := m.(model.Custom)
	if !e.inline {
		return nil, fmt.Errorf("%w: %s", model.ErrReferenceNotFound, c.ID())
	}
	if e.inlining[m] {
		return nil, fmt.Errorf("%w: %s is recursive but has no registered id", model.ErrReferenceNotFound, c.ID())
	}
	e.inlining[m] = true
	defer delete(e.inlining, m)
	return e.body(m)
}

func (e *Emitter) body(m model.Model) (Schema, error) {
	switch m := m.(type) {
	case *model.StringModel:
		s := Schema{"type": "string"}
		applyMeta(s, m.Meta)
		applyValidations(s, m.Validations, "minLength", "maxLength")
		return s, nil

	case *model.NumberModel:
		s := Schema{"type": "number"}
		if m.Type.IsInteger() {
			s["type"] = "integer"
		}
		switch m.Type {
		case model.Int:
			s["format"] = "int32"
		case model.Long:
			s["format"] = "int64"
		case model.Float, model.Double:
			s["format"] = string(m.Type)
		}
		applyMeta(s, m.Meta)
		applyValidations(s, m.Validations, "", "")
		return s, nil

	case *model.BooleanModel:
		s := Schema{"type": "boolean"}
		applyMeta(s, m.Meta)
		return s, nil

	case *model.TemporalModel:
		s := Schema{"type": "string", "format": temporalFormat(m.Kind())}
		applyMeta(s, m.Meta)
		if m.HasDefault {
			v, err := Literal(m, m.Default)
			if err != nil {
				return nil, err
			}
			s["default"] = v
		}
		return s, nil

	case *model.UUIDModel:
		s := Schema{"type": "string", "format": "uuid"}
		applyMeta(s, m.Meta)
		if m.HasDefault {
			v, err := Literal(m, m.Default)
			if err != nil {
				return nil, err
			}
			s["default"] = v
		}
		return s, nil

	case *model.CollectionModel:
		base, err := e.Schema(m.Base())
		if err != nil {
			return nil, err
		}
		var s Schema
		switch m.Kind() {
		case model.KindMap:
			s = Schema{"type": "object", "additionalProperties": base}
			applyValidations(s, m.Validations, "minProperties", "maxProperties")
		case model.KindSet:
			s = Schema{"type": "array", "items": base, "uniqueItems": true}
			applyValidations(s, m.Validations, "minItems", "maxItems")
		default:
			s = Schema{"type": "array", "items": base}
			applyValidations(s, m.Validations, "minItems", "maxItems")
		}
		applyMeta(s, m.Meta)
		return s, nil

	case *model.OptionalModel:
		c := m.Collapse()
		base, err := e.Schema(c.Base())
		if err != nil {
			return nil, err
		}
		if !c.HasDefault {
			return Schema{"oneOf": []any{Schema{"type": "null"}, base}}, nil
		}
		if c.Value == nil {
			return Schema{"oneOf": []any{Schema{"type": "null"}, base}, "default": nil}, nil
		}
		v, err := Literal(c.Base(), c.Value)
		if err != nil {
			return nil, err
		}
		s := clone(base)
		s["default"] = v
		return s, nil

	case *model.ConstantModel:
		base, err := e.Schema(m.Base())
		if err != nil {
			return nil, err
		}
		v, err := Literal(m.Base(), m.Value)
		if err != nil {
			return nil, err
		}
		s := clone(base)
		s["const"] = v
		applyMeta(s, m.Meta)
		return s, nil

	case *model.RecordModel:
		props := Schema{}
		var required []any
		for _, p := range m.Properties {
			ps, err := e.Schema(p.Model)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", p.Name, err)
			}
			props[p.Name] = ps
			if _, optional := p.Model.(*model.OptionalModel); !optional {
				required = append(required, p.Name)
			}
		}
		s := Schema{"type": "object", "properties": props}
		if e.required && len(required) > 0 {
			s["required"] = required
		}
		applyMeta(s, m.Meta)
		return s, nil

	case *model.TaggedUnionModel:
		variants := make([]any, 0, len(m.Variants))
		for _, v := range m.Variants {
			vs, err := e.Schema(v.Model)
			if err != nil {
				return nil, fmt.Errorf("variant %s: %w", v.Name, err)
			}
			variants = append(variants, vs)
		}
		s := Schema{"oneOf": variants}
		applyMeta(s, m.Meta)
		return s, nil

	case nil:
		return nil, fmt.Errorf("%w: nil model", model.ErrUnknownModelKind)
	}
	return nil, fmt.Errorf("%w: %T", model.ErrUnknownModelKind, m)
}

// refs returns the ids referenced by $ref values under s, sorted.
func (e *Emitter) refs(s Schema) []string {
	seen := make(map[string]bool)
	var walk func(v any)
	walk = func(v any) {
		switch v := v.(type) {
		case Schema:
			walk(map[string]any(v))
		case map[string]any:
			if ref, ok := v["$ref"].(string); ok && strings.HasPrefix(ref, e.refPrefix) {
				seen[strings.TrimPrefix(ref, e.refPrefix)] = true
			}
			for _, child := range v {
				walk(child)
			}
		case []any:
			for _, child := range v {
				walk(child)
			}
		}
	}
	walk(s)
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func applyMeta(s Schema, meta model.Meta) {
	if meta.Title != "" {
		s["title"] = meta.Title
	}
	if meta.Description != "" {
		s["description"] = meta.Description
	}
	if meta.Deprecated {
		s["deprecated"] = true
	}
	if len(meta.Examples) > 0 {
		s["examples"] = append([]any(nil), meta.Examples...)
	}
}

// applyValidations writes the rules of vs onto s. Length rules use the
// keywords minKey and maxKey, which differ between strings, arrays and maps.
func applyValidations(s Schema, vs []model.Validation, minKey, maxKey string) {
	for _, v := range vs {
		switch v.Kind {
		case model.ValidationMinLength:
			if minKey != "" {
				s[minKey] = int(v.Value)
			}
		case model.ValidationMaxLength:
			if maxKey != "" {
				s[maxKey] = int(v.Value)
			}
		case model.ValidationMinimum:
			if v.Inclusive {
				s["minimum"] = v.Value
			} else {
				s["exclusiveMinimum"] = v.Value
			}
		case model.ValidationMaximum:
			if v.Inclusive {
				s["maximum"] = v.Value
			} else {
				s["exclusiveMaximum"] = v.Value
			}
		case model.ValidationPattern:
			s["pattern"] = v.Pattern
		case model.ValidationFormat:
			s["format"] = v.Format
		}
	}
}

func temporalFormat(k model.Kind) string {
	switch k {
	case model.KindDate:
		return "date"
	case model.KindTime:
		return "time"
	}
	return "date-time"
}

func clone(s Schema) Schema {
	out := make(Schema, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Literal converts a Go value of model m to its JSON form: temporal values
// become strings in the layout of their kind, uuids their canonical text and
// decimals a json.Number.
func Literal(m model.Model, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch m := m.(type) {
	case *model.TemporalModel:
		t, err := model.ParseTemporal(m.Kind(), v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidConstant, err)
		}
		return formatTemporal(m.Kind(), t), nil
	case *model.UUIDModel:
		u, err := model.ParseUUID(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidConstant, err)
		}
		return u.String(), nil
	case *model.NumberModel:
		if m.Type == model.Decimal {
			d, err := model.ParseDecimal(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", model.ErrInvalidConstant, err)
			}
			return json.Number(d.String()), nil
		}
	case *model.OptionalModel:
		return Literal(m.Base(), v)
	case *model.ConstantModel:
		return Literal(m.Base(), v)
	case *model.CollectionModel:
		return collectionLiteral(m, v)
	case *model.RecordModel:
		return recordLiteral(m, v)
	case *model.TaggedUnionModel:
		r, err := model.SelectVariant(m, v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidConstant, err)
		}
		return recordLiteral(r, v)
	}
	return v, nil
}

func collectionLiteral(m *model.CollectionModel, v any) (any, error) {
	switch items := v.(type) {
	case []any:
		out := make([]any, 0, len(items))
		for _, item := range items {
			lit, err := Literal(m.Base(), item)
			if err != nil {
				return nil, err
			}
			out = append(out, lit)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(items))
		for k, item := range items {
			lit, err := Literal(m.Base(), item)
			if err != nil {
				return nil, err
			}
			out[k] = lit
		}
		return out, nil
	}
	return v, nil
}

func recordLiteral(r *model.RecordModel, v any) (any, error) {
	fields, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	out := make(map[string]any, len(fields))
	for _, p := range r.Properties {
		if c, ok := p.Model.(*model.ConstantModel); ok {
			lit, err := Literal(c.Base(), c.Value)
			if err != nil {
				return nil, err
			}
			out[p.Name] = lit
			continue
		}
		fv, present := fields[p.Name]
		if !present {
			continue
		}
		lit, err := Literal(p.Model, fv)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", r.ID(), p.Name, err)
		}
		out[p.Name] = lit
	}
	return out, nil
}

func formatTemporal(k model.Kind, t time.Time) string {
	switch k {
	case model.KindDate:
		return t.Format(model.DateLayout)
	case model.KindTime:
		return t.Format(model.TimeLayout)
	}
	return t.Format(model.DateTimeLayout)
}
