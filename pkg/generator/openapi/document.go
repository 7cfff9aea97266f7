// Package openapi builds OpenAPI 3.1.0 documents from routes and models.
package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/specgen/pkg/generator/jsonschema"
	"github.com/blimu-dev/specgen/pkg/graph"
	"github.com/blimu-dev/specgen/pkg/model"
)

// Version is the OpenAPI version written on every document.
const Version = "3.1.0"

// Document is an OpenAPI 3.1.0 document.
type Document struct {
	OpenAPI    string              `json:"openapi"`
	Info       *openapi3.Info      `json:"info"`
	Servers    openapi3.Servers    `json:"servers,omitempty"`
	Paths      map[string]PathItem `json:"paths"`
	Components Components          `json:"components"`
	Tags       openapi3.Tags       `json:"tags,omitempty"`
}

// PathItem maps a lower-case HTTP method to its operation.
type PathItem map[string]Operation

// Operation is an operation object. It is kept as a generic map so operations
// sharing a path and method can be deep-merged.
type Operation map[string]any

// Components holds the shared schemas and security schemes.
type Components struct {
	Schemas         *SchemaMap                          `json:"schemas"`
	SecuritySchemes map[string]*openapi3.SecurityScheme `json:"securitySchemes,omitempty"`
}

// SchemaMap is an insertion-ordered map of component schemas.
type SchemaMap struct {
	keys   []string
	values map[string]jsonschema.Schema
}

// NewSchemaMap returns an empty SchemaMap.
func NewSchemaMap() *SchemaMap {
	return &SchemaMap{values: make(map[string]jsonschema.Schema)}
}

// Set adds or replaces the schema under id.
func (m *SchemaMap) Set(id string, s jsonschema.Schema) {
	if _, ok := m.values[id]; !ok {
		m.keys = append(m.keys, id)
	}
	m.values[id] = s
}

// Get returns the schema stored under id.
func (m *SchemaMap) Get(id string) (jsonschema.Schema, bool) {
	s, ok := m.values[id]
	return s, ok
}

// Keys returns the ids in order.
func (m *SchemaMap) Keys() []string { return append([]string(nil), m.keys...) }

// Len returns the number of schemas.
func (m *SchemaMap) Len() int { return len(m.keys) }

// Sort orders the ids lexically.
func (m *SchemaMap) Sort() { sort.Strings(m.keys) }

func (m *SchemaMap) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", k, err)
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(value)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Options configure Build.
type Options struct {
	Info    *openapi3.Info
	Servers openapi3.Servers
	// SortSchemas orders components.schemas by id instead of traversal order.
	SortSchemas bool
	Logger      *slog.Logger
}

// Result is a built document and the warnings raised on the way.
type Result struct {
	Document *Document
	Warnings []graph.Warning
}

// Build creates the document for app. idx must hold every custom model of app;
// with a relaxed idx, models dropped after an id collision are inlined.
//
// Operations that resolve to the same path and method within a route are
// deep-merged: arrays are unioned, objects merged and differing scalars fail
// with model.ErrMergeConflict.
func Build(app *model.Application, idx *graph.Index, opts Options) (*Result, error) {
	emitterOpts := []jsonschema.Option{
		jsonschema.WithRefPrefix(jsonschema.ComponentsPrefix),
		jsonschema.WithRequired(),
	}
	if idx.Policy() == graph.Relaxed {
		emitterOpts = append(emitterOpts, jsonschema.WithInlineUnregistered())
	}
	b := &builder{
		app:      app,
		emitter:  jsonschema.NewEmitter(idx, emitterOpts...),
		warnings: graph.NewWarnings(opts.Logger),
		paths:    make(map[string]PathItem),
	}

	err := graph.Travel(app, idx, func(c model.Custom) error {
		switch c := c.(type) {
		case *model.RoutesModel:
			return b.routes(c)
		case model.Model:
			_, err := b.emitter.Define(c)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	schemes, err := securitySchemes(app.Securities)
	if err != nil {
		return nil, err
	}

	schemas := NewSchemaMap()
	defs := b.emitter.Definitions()
	for _, id := range b.emitter.DefinitionIDs() {
		schemas.Set(id, defs[id])
	}
	if opts.SortSchemas {
		schemas.Sort()
	}

	info := opts.Info
	if info == nil {
		info = &openapi3.Info{Title: "API", Version: "v1"}
	}

	doc := &Document{
		OpenAPI: Version,
		Info:    info,
		Servers: opts.Servers,
		Paths:   b.paths,
		Components: Components{
			Schemas:         schemas,
			SecuritySchemes: schemes,
		},
		Tags: tags(app),
	}
	return &Result{Document: doc, Warnings: b.warnings.List()}, nil
}

type builder struct {
	app      *model.Application
	emitter  *jsonschema.Emitter
	warnings *graph.Warnings
	paths    map[string]PathItem
}

type pending struct {
	name      string
	operation Operation
	hasBody   bool
}

func (b *builder) routes(route *model.RoutesModel) error {
	byPath := make(map[string]map[string][]pending)
	var pathOrder []string

	for _, named := range route.Operations {
		op := named.Operation
		full := model.NormalizePath(route.Path + "/" + op.Path)
		obj, err := b.operation(route, named.Name, op, full)
		if err != nil {
			return fmt.Errorf("route %s operation %s: %w", route.ID(), named.Name, err)
		}
		methods, ok := byPath[full]
		if !ok {
			methods = make(map[string][]pending)
			byPath[full] = methods
			pathOrder = append(pathOrder, full)
		}
		method := strings.ToLower(op.Method)
		methods[method] = append(methods[method], pending{name: named.Name, operation: obj, hasBody: op.Content != nil})
	}

	for _, p := range pathOrder {
		if _, taken := b.paths[p]; taken {
			return fmt.Errorf("%w: %s (route %s)", model.ErrDuplicateRoutePath, p, route.ID())
		}
		item := PathItem{}
		for method, ops := range byPath[p] {
			merged, err := mergeOperations(ops)
			if err != nil {
				return fmt.Errorf("route %s %s %s: %w", route.ID(), strings.ToUpper(method), p, err)
			}
			item[method] = merged
		}
		b.paths[p] = item
	}
	return nil
}

func (b *builder) operation(route *model.RoutesModel, name string, op *model.OperationModel, full string) (Operation, error) {
	obj := Operation{}

	summary := op.Summary
	if summary == "" {
		summary = name
	}
	obj["summary"] = summary
	if op.Description != "" {
		obj["description"] = op.Description
	}
	if op.Deprecated {
		obj["deprecated"] = true
	}
	if t := unionStrings(route.Tags, op.Tags); len(t) > 0 {
		obj["tags"] = t
	}

	var params []any
	for _, group := range []struct {
		in     string
		params []model.Param
	}{{"path", op.PathParams}, {"query", op.QueryParams}, {"header", op.HeaderParams}} {
		for _, p := range group.params {
			s, err := b.emitter.Schema(p.Model)
			if err != nil {
				return nil, fmt.Errorf("%s parameter %s: %w", group.in, p.Name, err)
			}
			_, optional := p.Model.(*model.OptionalModel)
			params = append(params, map[string]any{
				"name":     p.Name,
				"in":       group.in,
				"required": group.in == "path" || !optional,
				"schema":   s,
			})
		}
	}
	if len(params) > 0 {
		obj["parameters"] = params
	}

	if op.Content != nil {
		s, err := b.emitter.Schema(op.Content)
		if err != nil {
			return nil, fmt.Errorf("request body: %w", err)
		}
		_, optional := op.Content.(*model.OptionalModel)
		obj["requestBody"] = map[string]any{
			"required": !optional,
			"content":  map[string]any{op.ContentType: map[string]any{"schema": s}},
		}
	}

	responses := map[string]any{}
	for _, named := range op.Responses {
		r := named.Response
		status := strconv.Itoa(r.Status)
		if _, dup := responses[status]; dup {
			return nil, fmt.Errorf("%w: %d (response %s)", model.ErrDuplicateResponseStatus, r.Status, named.Name)
		}
		resp := map[string]any{"description": r.Description}
		if len(r.Headers) > 0 {
			headers := map[string]any{}
			for _, h := range r.Headers {
				s, err := b.emitter.Schema(h.Model)
				if err != nil {
					return nil, fmt.Errorf("response %s header %s: %w", named.Name, h.Name, err)
				}
				headers[h.Name] = map[string]any{"schema": s}
			}
			resp["headers"] = headers
		}
		if r.Content != nil {
			s, err := b.emitter.Schema(r.Content)
			if err != nil {
				return nil, fmt.Errorf("response %s: %w", named.Name, err)
			}
			resp["content"] = map[string]any{r.ContentType: map[string]any{"schema": s}}
		}
		responses[status] = resp
	}
	obj["responses"] = responses

	if len(op.Security) > 0 {
		obj["security"] = b.security(op.Security, strings.ToUpper(op.Method)+" "+full)
	}
	return obj, nil
}

func tags(app *model.Application) openapi3.Tags {
	var out openapi3.Tags
	seen := make(map[string]bool)
	add := func(name, description string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, &openapi3.Tag{Name: name, Description: description})
	}
	for _, t := range app.Tags {
		add(t.Name, t.Description)
	}
	for _, r := range app.Routes {
		add(r.Summary, r.Description)
	}
	return out
}

func unionStrings(lists ...[]string) []any {
	var out []any
	seen := make(map[string]bool)
	for _, l := range lists {
		for _, s := range l {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// JSON renders the document with two-space indentation.
func (d *Document) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// YAML renders the document as block-style YAML, keeping the key order of
// the JSON rendering.
func (d *Document) YAML() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("convert to yaml: %w", err)
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// blockStyle clears the flow and quoting styles the JSON input left on n.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
