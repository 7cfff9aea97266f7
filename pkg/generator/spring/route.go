// Package spring renders routes as Spring Boot route interfaces and
// controllers. Records and tagged unions reuse the java package.
package spring

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/blimu-dev/specgen/pkg/generator/java"
	"github.com/blimu-dev/specgen/pkg/graph"
	"github.com/blimu-dev/specgen/pkg/model"
)

// ErrNoResponses is returned for an operation without responses: its sealed
// response interface would permit nothing.
var ErrNoResponses = errors.New("spring: operation declares no responses")

//go:embed templates/*
var templatesFS embed.FS

var templates = template.Must(template.New("spring").Funcs(funcMap()).ParseFS(templatesFS, "templates/*.gotmpl"))

func funcMap() template.FuncMap {
	funcMap := template.FuncMap{}
	// Merge sprig functions
	for k, v := range sprig.TxtFuncMap() {
		funcMap[k] = v
	}
	funcMap["jstr"] = java.Quote
	return funcMap
}

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return b.String(), nil
}

// Context resolves route ids to Java names. It embeds the java context used
// for every model signature.
type Context struct {
	*java.Context
}

// NewContext returns a context for baseNamespace.
func NewContext(baseNamespace string) *Context {
	return &Context{Context: java.NewContext(baseNamespace)}
}

// operation carries the Java names derived from one named operation.
type operation struct {
	name     string
	method   string
	response string
	request  string
	op       *model.OperationModel
}

func operations(r *model.RoutesModel) ([]operation, error) {
	out := make([]operation, 0, len(r.Operations))
	seen := make(map[string]string)
	for _, named := range r.Operations {
		method := java.FieldName(named.Name)
		if other, ok := seen[method]; ok {
			return nil, fmt.Errorf("routes %s: operations %q and %q both map to %s", r.ID(), other, named.Name, method)
		}
		seen[method] = named.Name
		if len(named.Operation.Responses) == 0 {
			return nil, fmt.Errorf("%w: %s.%s", ErrNoResponses, r.ID(), named.Name)
		}
		prefix := java.TypeName(named.Name)
		out = append(out, operation{
			name:     named.Name,
			method:   method,
			response: prefix + "Response",
			request:  prefix + "Request",
			op:       named.Operation,
		})
	}
	return out, nil
}

type operationDecl struct {
	Method   string
	Response string
	Request  string
}

type routeView struct {
	Name       string
	Doc        string
	Operations []operationDecl
	Responses  []string
	Requests   []string
}

type responseView struct {
	Name     string
	Permits  []string
	Variants []string
}

type requestView struct {
	Name       string
	Components []string
	Groups     []string
}

// RouteFile renders the route interface: one method per operation taking a
// request record and returning a sealed response interface.
func (c *Context) RouteFile(r *model.RoutesModel) (string, error) {
	ops, err := operations(r)
	if err != nil {
		return "", err
	}
	mod := graph.NewModule(r.ID())
	mod.DependsOn(java.TypeNullMarked)
	pkg, name := c.ResolveID(r.ID())

	view := routeView{Name: name, Doc: strings.TrimSpace(r.Description)}
	for _, o := range ops {
		view.Operations = append(view.Operations, operationDecl{Method: o.method, Response: o.response, Request: o.request})

		resp, err := c.responseDecl(r, o, mod)
		if err != nil {
			return "", err
		}
		view.Responses = append(view.Responses, resp)

		req, err := c.requestDecl(r, o, mod)
		if err != nil {
			return "", err
		}
		view.Requests = append(view.Requests, req)
	}

	body, err := render("route", view)
	if err != nil {
		return "", err
	}
	return java.File(pkg, mod, body)
}

// responseDecl renders one variant record per named response. Each record
// holds a constant name, the content and one component per header.
func (c *Context) responseDecl(r *model.RoutesModel, o operation, mod *graph.Module) (string, error) {
	view := responseView{Name: o.response}
	seen := make(map[string]string)
	for _, named := range o.op.Responses {
		variant := java.TypeName(named.Name)
		if other, ok := seen[variant]; ok {
			return "", fmt.Errorf("routes %s.%s: responses %q and %q both map to %s", r.ID(), o.name, other, named.Name, variant)
		}
		seen[variant] = named.Name

		rec := responseRecord(r, o, named)
		decl, err := c.RecordDecl(rec, mod, java.DeclOptions{Name: variant, Implements: o.response, Nested: true})
		if err != nil {
			return "", err
		}
		view.Permits = append(view.Permits, o.response+"."+variant)
		view.Variants = append(view.Variants, decl)
	}
	return render("response", view)
}

func responseRecord(r *model.RoutesModel, o operation, named model.NamedResponse) *model.RecordModel {
	opts := []model.Option{model.Prop("name", model.Constant(model.String(), named.Name))}
	if named.Response.Content != nil {
		opts = append(opts, model.Prop("content", named.Response.Content))
	}
	for _, h := range named.Response.Headers {
		opts = append(opts, model.Prop(headerField(h.Name), h.Model))
	}
	return model.Record(r.ID()+"."+o.response+"."+named.Name, opts...)
}

// requestDecl renders the request record with its nested parameter groups.
func (c *Context) requestDecl(r *model.RoutesModel, o operation, mod *graph.Module) (string, error) {
	view := requestView{Name: o.request}
	if o.op.Content != nil {
		sig, err := c.Signature(o.op.Content, mod)
		if err != nil {
			return "", fmt.Errorf("routes %s.%s content: %w", r.ID(), o.name, err)
		}
		view.Components = append(view.Components, sig+" content")
	}
	for _, g := range groupsOf(o.op) {
		rec := groupRecord(r, o, g)
		decl, err := c.RecordDecl(rec, mod, java.DeclOptions{Name: g.typeName, Nested: true})
		if err != nil {
			return "", err
		}
		view.Components = append(view.Components, g.typeName+" "+g.field)
		view.Groups = append(view.Groups, decl)
	}
	return render("request", view)
}

// group is a non-empty set of path, query or header parameters.
type group struct {
	typeName string
	field    string
	local    string
	prefix   string
	params   []model.Param
}

func groupsOf(op *model.OperationModel) []group {
	var out []group
	add := func(typeName, field, prefix string, params []model.Param) {
		ordered := orderParams(params)
		if len(ordered) > 0 {
			out = append(out, group{typeName: typeName, field: field, local: field + "$", prefix: prefix, params: ordered})
		}
	}
	add("PathParameters", "pathParameters", "path", op.PathParams)
	add("QueryParameters", "queryParameters", "query", op.QueryParams)
	add("HeaderParameters", "headerParameters", "header", op.HeaderParams)
	return out
}

// orderParams lists required parameters, then optional ones, the component
// order of the generated records. Constant parameters take no argument.
func orderParams(params []model.Param) []model.Param {
	var required, optional []model.Param
	for _, p := range params {
		switch p.Model.(type) {
		case *model.ConstantModel:
		case *model.OptionalModel:
			optional = append(optional, p)
		default:
			required = append(required, p)
		}
	}
	return append(required, optional...)
}

func groupRecord(r *model.RoutesModel, o operation, g group) *model.RecordModel {
	opts := make([]model.Option, 0, len(g.params))
	for _, p := range g.params {
		opts = append(opts, model.Prop(p.Name, p.Model))
	}
	return model.Record(r.ID()+"."+o.request+"."+g.typeName, opts...)
}

func headerField(name string) string {
	return "header" + java.TypeName(name)
}
