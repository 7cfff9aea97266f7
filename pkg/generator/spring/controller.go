package spring

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/blimu-dev/specgen/pkg/generator/java"
	"github.com/blimu-dev/specgen/pkg/generator/jsonschema"
	"github.com/blimu-dev/specgen/pkg/graph"
	"github.com/blimu-dev/specgen/pkg/model"
)

// Spring and Jackson types referenced by controllers.
const (
	TypeRestController = "org.springframework.web.bind.annotation.RestController"
	TypeRequestMapping = "org.springframework.web.bind.annotation.RequestMapping"
	TypeRequestMethod  = "org.springframework.web.bind.annotation.RequestMethod"
	TypeRequestBody    = "org.springframework.web.bind.annotation.RequestBody"
	TypePathVariable   = "org.springframework.web.bind.annotation.PathVariable"
	TypeRequestParam   = "org.springframework.web.bind.annotation.RequestParam"
	TypeRequestHeader  = "org.springframework.web.bind.annotation.RequestHeader"
	TypeResponseEntity = "org.springframework.http.ResponseEntity"
	TypeHTTPHeaders    = "org.springframework.http.HttpHeaders"
	TypeObjectMapper   = "tools.jackson.databind.ObjectMapper"
)

var shortcuts = map[string]string{
	http.MethodGet:    "GetMapping",
	http.MethodPost:   "PostMapping",
	http.MethodPut:    "PutMapping",
	http.MethodDelete: "DeleteMapping",
	http.MethodPatch:  "PatchMapping",
}

var requestMethods = map[string]bool{
	http.MethodOptions: true,
	http.MethodHead:    true,
	http.MethodTrace:   true,
}

type controllerView struct {
	Name    string
	Route   string
	Path    string
	Methods []methodView
}

type methodView struct {
	Name    string
	Mapping string
	Params  []string
	Prelude []string
	Request string
	Cases   []caseView
}

type caseView struct {
	Type    string
	Status  int
	Headers []string
	Body    bool
}

// ControllerFile renders the controller of r. Each handler builds the request
// record, calls the route implementation and switches over every response
// variant, so the Java compiler rejects a missing case.
func (c *Context) ControllerFile(r *model.RoutesModel) (string, error) {
	ops, err := operations(r)
	if err != nil {
		return "", err
	}
	mod := graph.NewModule(r.ID() + "Controller")
	for _, t := range []string{TypeRestController, TypeRequestMapping, TypeResponseEntity, TypeObjectMapper} {
		mod.DependsOn(t)
	}
	pkg, route := c.ResolveID(r.ID())

	view := controllerView{Name: route + "Controller", Route: route, Path: model.NormalizePath(r.Path)}
	for _, o := range ops {
		m, err := c.handler(route, o, mod)
		if err != nil {
			return "", fmt.Errorf("routes %s.%s: %w", r.ID(), o.name, err)
		}
		view.Methods = append(view.Methods, m)
	}

	body, err := render("controller", view)
	if err != nil {
		return "", err
	}
	return java.File(pkg, mod, body)
}

func (c *Context) handler(route string, o operation, mod *graph.Module) (methodView, error) {
	mapping, err := mappingAnnotation(o.op.Method, o.op.Path, mod)
	if err != nil {
		return methodView{}, err
	}
	m := methodView{Name: o.method, Mapping: mapping}
	request := route + "." + o.request
	var args []string

	if o.op.Content != nil {
		sig, err := c.Signature(o.op.Content, mod)
		if err != nil {
			return m, err
		}
		mod.DependsOn(TypeRequestBody)
		annotation := "@RequestBody"
		if _, ok := o.op.Content.(*model.OptionalModel); ok {
			annotation = "@RequestBody(required = false)"
		}
		m.Params = append(m.Params, annotation+" "+sig+" content")
		args = append(args, "content")
	}

	for _, g := range groupsOf(o.op) {
		var names []string
		for _, p := range g.params {
			param, err := c.parameter(g.prefix, p, mod)
			if err != nil {
				return m, err
			}
			name := g.prefix + java.TypeName(p.Name)
			m.Params = append(m.Params, param+" "+name)
			names = append(names, name)
		}
		m.Prelude = append(m.Prelude, fmt.Sprintf("var %s = new %s.%s(%s);", g.local, request, g.typeName, strings.Join(names, ", ")))
		args = append(args, g.local)
	}
	m.Request = "new " + request + "(" + strings.Join(args, ", ") + ")"

	for _, named := range o.op.Responses {
		m.Cases = append(m.Cases, responseCase(route, o, named, mod))
	}
	return m, nil
}

// parameter returns the annotation and type of one handler argument.
func (c *Context) parameter(prefix string, p model.Param, mod *graph.Module) (string, error) {
	sig, err := c.Signature(p.Model, mod)
	if err != nil {
		return "", fmt.Errorf("parameter %s: %w", p.Name, err)
	}
	if prefix == "path" {
		mod.DependsOn(TypePathVariable)
		return "@PathVariable(" + java.Quote(p.Name) + ") " + sig, nil
	}

	annotation := "RequestParam"
	mod.DependsOn(TypeRequestParam)
	if prefix == "header" {
		annotation = "RequestHeader"
		mod.DependsOn(TypeRequestHeader)
	}
	args := []string{"name = " + java.Quote(p.Name)}
	opt, optional := p.Model.(*model.OptionalModel)
	args = append(args, "required = "+strconv.FormatBool(!optional))
	if optional {
		opt = opt.Collapse()
		if opt.HasDefault && opt.Value != nil {
			def, err := defaultValue(opt.Base(), opt.Value)
			if err != nil {
				return "", fmt.Errorf("parameter %s default: %w", p.Name, err)
			}
			args = append(args, "defaultValue = "+java.Quote(def))
		}
	}
	return "@" + annotation + "(" + strings.Join(args, ", ") + ") " + sig, nil
}

// defaultValue renders v the way Spring expects it in an annotation: as the
// string the request would carry.
func defaultValue(m model.Model, v any) (string, error) {
	lit, err := jsonschema.Literal(m, v)
	if err != nil {
		return "", err
	}
	return cast.ToStringE(lit)
}

func mappingAnnotation(method, path string, mod *graph.Module) (string, error) {
	if short, ok := shortcuts[method]; ok {
		mod.DependsOn("org.springframework.web.bind.annotation." + short)
		return "@" + short + "(" + java.Quote(path) + ")", nil
	}
	if requestMethods[method] {
		mod.DependsOn(TypeRequestMapping)
		mod.DependsOn(TypeRequestMethod)
		return "@RequestMapping(value = " + java.Quote(path) + ", method = RequestMethod." + method + ")", nil
	}
	return "", fmt.Errorf("%w: HTTP method %q", model.ErrUnknownModelKind, method)
}

func responseCase(route string, o operation, named model.NamedResponse, mod *graph.Module) caseView {
	cv := caseView{
		Type:   route + "." + o.response + "." + java.TypeName(named.Name),
		Status: named.Response.Status,
		Body:   named.Response.Content != nil,
	}
	for _, h := range named.Response.Headers {
		mod.DependsOn(TypeHTTPHeaders)
		accessor := "o." + java.FieldName(headerField(h.Name)) + "()"
		value := accessor
		base := h.Model
		opt, optional := h.Model.(*model.OptionalModel)
		if optional {
			base = opt.Collapse().Base()
		}
		if _, ok := base.(*model.StringModel); !ok {
			value = "objectMapper.writeValueAsString(" + accessor + ")"
		}
		line := "headers.add(" + java.Quote(h.Name) + ", " + value + ");"
		if optional {
			line = "if (" + accessor + " != null) " + line
		}
		cv.Headers = append(cv.Headers, line)
	}
	return cv
}
