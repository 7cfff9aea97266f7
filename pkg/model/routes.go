package model

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/blimu-dev/specgen/pkg/utils"
)

// DefaultContentType is used by operations and responses that do not set one.
const DefaultContentType = "application/json"

// Param is a named path, query or header parameter.
type Param struct {
	Name  string
	Model Model
}

// NamedOperation pairs an operation with its name inside a route.
type NamedOperation struct {
	Name      string
	Operation *OperationModel
}

// NamedResponse pairs a response with its name inside an operation.
type NamedResponse struct {
	Name     string
	Response *ResponseModel
}

// RoutesModel groups operations under a common path template.
type RoutesModel struct {
	id          string
	Path        string
	PathParams  []Param
	Operations  []NamedOperation
	Summary     string
	Description string
	Tags        []string
}

// OperationModel is one HTTP method on a sub-path of a route.
type OperationModel struct {
	Method       string
	Path         string
	ContentType  string
	PathParams   []Param
	QueryParams  []Param
	HeaderParams []Param
	Content      Model
	Responses    []NamedResponse
	Summary      string
	Description  string
	Tags         []string
	Deprecated   bool
	Security     SecurityGroups
}

// ResponseModel is one declared outcome of an operation.
type ResponseModel struct {
	Status      int
	ContentType string
	Headers     []Param
	Content     Model
	Description string
}

func (*RoutesModel) node() {}
func (r *RoutesModel) ID() string { return r.id }

var placeholder = regexp.MustCompile(`\{([^}]+)\}`)

// Routes builds a route. Every {name} placeholder found in the route path joined
// with an operation path becomes a path parameter; placeholders without a
// PathParam option default to String(). Each operation receives exactly the
// parameters its own full path declares. An empty id is derived from the static
// path segments: "/widgets/{id}" gives "WidgetsRoutes".
func Routes(id, path string, opts ...Option) *RoutesModel {
	o := collect(opts)
	if id == "" {
		id = DeriveRoutesID(path)
	}

	typed := make(map[string]Model, len(o.pathParams))
	for _, p := range o.pathParams {
		typed[p.Name] = p.Model
	}

	var params []Param
	resolved := make(map[string]Model)
	resolve := func(name string) Model {
		if m, ok := resolved[name]; ok {
			return m
		}
		m, ok := typed[name]
		if !ok || m == nil {
			m = String()
		}
		resolved[name] = m
		params = append(params, Param{Name: name, Model: m})
		return m
	}

	ops := make([]NamedOperation, 0, len(o.operations))
	for _, named := range o.operations {
		full := NormalizePath(path + "/" + named.Operation.Path)
		var own []Param
		for _, name := range ExtractPathParams(full) {
			own = append(own, Param{Name: name, Model: resolve(name)})
		}
		op := *named.Operation
		op.PathParams = own
		ops = append(ops, NamedOperation{Name: named.Name, Operation: &op})
	}

	return &RoutesModel{
		id:          id,
		Path:        path,
		PathParams:  params,
		Operations:  ops,
		Summary:     o.summary,
		Description: o.meta.Description,
		Tags:        o.tags,
	}
}

// Operation builds an operation. method is case-insensitive.
func Operation(method, path string, opts ...Option) *OperationModel {
	o := collect(opts)
	ct := o.contentType
	if ct == "" {
		ct = DefaultContentType
	}
	return &OperationModel{
		Method:       strings.ToUpper(method),
		Path:         path,
		ContentType:  ct,
		PathParams:   o.pathParams,
		QueryParams:  o.queryParams,
		HeaderParams: o.headerParams,
		Content:      o.content,
		Responses:    o.responses,
		Summary:      o.summary,
		Description:  o.meta.Description,
		Tags:         o.tags,
		Deprecated:   o.meta.Deprecated,
		Security:     o.security,
	}
}

// Response builds a response. Header options declare response headers.
func Response(status int, opts ...Option) *ResponseModel {
	o := collect(opts)
	ct := o.contentType
	if ct == "" {
		ct = DefaultContentType
	}
	return &ResponseModel{
		Status:      status,
		ContentType: ct,
		Headers:     o.headerParams,
		Content:     o.content,
		Description: o.meta.Description,
	}
}

// Get, Post, Put, Patch and Delete are shorthands for Operation.
func Get(path string, opts ...Option) *OperationModel { return Operation(http.MethodGet, path, opts...) }

func Post(path string, opts ...Option) *OperationModel {
	return Operation(http.MethodPost, path, opts...)
}

func Put(path string, opts ...Option) *OperationModel { return Operation(http.MethodPut, path, opts...) }

func Patch(path string, opts ...Option) *OperationModel {
	return Operation(http.MethodPatch, path, opts...)
}

func Delete(path string, opts ...Option) *OperationModel {
	return Operation(http.MethodDelete, path, opts...)
}

// NormalizePath prefixes a slash, collapses repeated slashes and drops a
// trailing slash: "books//{id}/" gives "/books/{id}".
func NormalizePath(p string) string {
	var b strings.Builder
	b.Grow(len(p) + 1)
	prev := byte(0)
	for _, c := range []byte("/" + p) {
		if c == '/' && prev == '/' {
			continue
		}
		b.WriteByte(c)
		prev = c
	}
	out := b.String()
	if len(out) > 1 {
		out = strings.TrimSuffix(out, "/")
	}
	return out
}

// ExtractPathParams returns the distinct {name} placeholders of p in order.
func ExtractPathParams(p string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(p, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// DeriveRoutesID turns the static segments of a path into an id.
func DeriveRoutesID(path string) string {
	var b strings.Builder
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || placeholder.MatchString(seg) {
			continue
		}
		b.WriteString(utils.ToPascalCase(seg))
	}
	if b.Len() == 0 {
		return "RootRoutes"
	}
	return b.String() + "Routes"
}

// WithOperations returns a copy of r under the same id holding only ops, which
// must come from r. Route path parameters no remaining operation uses are dropped.
func (r *RoutesModel) WithOperations(ops []NamedOperation) *RoutesModel {
	used := make(map[string]bool)
	for _, named := range ops {
		for _, p := range named.Operation.PathParams {
			used[p.Name] = true
		}
	}
	out := *r
	out.Operations = append([]NamedOperation(nil), ops...)
	out.PathParams = nil
	for _, p := range r.PathParams {
		if used[p.Name] {
			out.PathParams = append(out.PathParams, p)
		}
	}
	return &out
}
