package java

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/blimu-dev/specgen/pkg/graph"
	"github.com/blimu-dev/specgen/pkg/model"
	"github.com/blimu-dev/specgen/pkg/utils"
)

// Header opens every generated Java file.
const Header = "// Code generated by specgen. DO NOT EDIT."

//go:embed templates/*
var templatesFS embed.FS

var templates = template.Must(template.New("java").Funcs(funcMap()).ParseFS(templatesFS, "templates/*.gotmpl"))

func funcMap() template.FuncMap {
	funcMap := template.FuncMap{}
	// Merge sprig functions
	for k, v := range sprig.TxtFuncMap() {
		funcMap[k] = v
	}
	funcMap["jstr"] = Quote
	return funcMap
}

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return b.String(), nil
}

// DeclOptions tunes a declaration.
type DeclOptions struct {
	// Name overrides the simple name derived from the model id.
	Name string
	// Implements is the interface a record implements or a union extends.
	Implements string
	// Nested declarations sit inside another type and inherit its
	// @NullMarked scope.
	Nested bool
}

// Component is a record component.
type Component struct {
	Name      string
	JSONName  string
	Signature string
	Renamed   bool
}

// Constant is a constant property, rendered as a static field and accessor.
type Constant struct {
	Name      string
	JSONName  string
	Signature string
	Value     string
}

// RecordView is the template data of a record declaration.
type RecordView struct {
	Name             string
	Implements       string
	Doc              string
	Deprecated       bool
	Nested           bool
	Required         []Component
	Optional         []Component
	Constants        []Constant
	MinimalArguments []string
}

// Components returns the canonical constructor components in order.
func (v RecordView) Components() []Component {
	return append(append([]Component(nil), v.Required...), v.Optional...)
}

// ComponentNames returns the names of Components.
func (v RecordView) ComponentNames() []string {
	var out []string
	for _, c := range v.Components() {
		out = append(out, c.Name)
	}
	return out
}

// VariantView is a variant record of a sealed interface.
type VariantView struct {
	Name      string
	Signature string
}

// UnionView is the template data of a sealed interface.
type UnionView struct {
	Name       string
	Extends    string
	Doc        string
	Deprecated bool
	Nested     bool
	Variants   []VariantView
	Permits    []string
}

// FileView is the template data of a compilation unit.
type FileView struct {
	Header  string
	Package string
	Imports []string
	Body    string
}

// RecordDecl renders r as a Java record. Required components come first,
// then optional ones; constants become static fields with an accessor.
func (c *Context) RecordDecl(r *model.RecordModel, mod *graph.Module, opts DeclOptions) (string, error) {
	view, err := c.recordView(r, mod, opts)
	if err != nil {
		return "", err
	}
	return render("record", view)
}

func (c *Context) recordView(r *model.RecordModel, mod *graph.Module, opts DeclOptions) (RecordView, error) {
	name := opts.Name
	if name == "" {
		_, name = c.ResolveID(r.ID())
	}
	view := RecordView{
		Name:       name,
		Implements: opts.Implements,
		Doc:        javadoc(r.Description),
		Deprecated: r.Deprecated,
		Nested:     opts.Nested,
	}
	if !opts.Nested {
		mod.DependsOn(TypeNullMarked)
	}

	seen := make(map[string]string)
	claim := func(p model.Property) (string, error) {
		field := FieldName(p.Name)
		if other, ok := seen[field]; ok {
			return "", fmt.Errorf("record %s: properties %q and %q both map to %s", r.ID(), other, p.Name, field)
		}
		seen[field] = p.Name
		return field, nil
	}

	required, optional, constant := r.Split()
	for _, p := range required {
		comp, err := c.component(p, mod, claim)
		if err != nil {
			return view, err
		}
		view.Required = append(view.Required, comp)
		view.MinimalArguments = append(view.MinimalArguments, comp.Name)
	}
	for _, p := range optional {
		comp, err := c.component(p, mod, claim)
		if err != nil {
			return view, err
		}
		opt := p.Model.(*model.OptionalModel).Collapse()
		def, err := c.Instance(opt, opt.Value, mod)
		if err != nil {
			return view, fmt.Errorf("record %s.%s default: %w", r.ID(), p.Name, err)
		}
		view.Optional = append(view.Optional, comp)
		view.MinimalArguments = append(view.MinimalArguments, def)
	}
	for _, p := range constant {
		field, err := claim(p)
		if err != nil {
			return view, err
		}
		cm := p.Model.(*model.ConstantModel)
		sig, err := c.Signature(cm, mod)
		if err != nil {
			return view, err
		}
		value, err := c.Instance(cm.Base(), cm.Value, mod)
		if err != nil {
			return view, fmt.Errorf("record %s.%s: %w", r.ID(), p.Name, err)
		}
		mod.DependsOn(TypeJSONProperty)
		view.Constants = append(view.Constants, Constant{Name: field, JSONName: p.Name, Signature: sig, Value: value})
	}
	return view, nil
}

func (c *Context) component(p model.Property, mod *graph.Module, claim func(model.Property) (string, error)) (Component, error) {
	field, err := claim(p)
	if err != nil {
		return Component{}, err
	}
	sig, err := c.Signature(p.Model, mod)
	if err != nil {
		return Component{}, fmt.Errorf("property %s: %w", p.Name, err)
	}
	comp := Component{Name: field, JSONName: p.Name, Signature: sig, Renamed: field != p.Name}
	if comp.Renamed {
		mod.DependsOn(TypeJSONProperty)
	}
	return comp, nil
}

// UnionDecl renders u as a sealed interface whose permitted subtypes wrap
// each variant in a single-component record.
func (c *Context) UnionDecl(u *model.TaggedUnionModel, mod *graph.Module, opts DeclOptions) (string, error) {
	name := opts.Name
	if name == "" {
		_, name = c.ResolveID(u.ID())
	}
	view := UnionView{
		Name:       name,
		Extends:    opts.Implements,
		Doc:        javadoc(u.Description),
		Deprecated: u.Deprecated,
		Nested:     opts.Nested,
	}
	if !opts.Nested {
		mod.DependsOn(TypeNullMarked)
	}
	mod.DependsOn(TypeJSONCreator)
	mod.DependsOn(TypeJSONValue)

	seen := make(map[string]bool)
	for _, v := range u.Variants {
		vn := TypeName(v.Name)
		if seen[vn] {
			return "", fmt.Errorf("tagged union %s: variant %q declared twice", u.ID(), vn)
		}
		seen[vn] = true
		sig, err := c.Signature(v.Model, mod)
		if err != nil {
			return "", fmt.Errorf("tagged union %s variant %s: %w", u.ID(), v.Name, err)
		}
		view.Variants = append(view.Variants, VariantView{Name: vn, Signature: sig})
		view.Permits = append(view.Permits, name+"."+vn)
	}
	return render("union", view)
}

// File wraps body into a compilation unit of package pkg, importing every
// dependency of mod outside java.lang and pkg.
func File(pkg string, mod *graph.Module, body string) (string, error) {
	var imports []string
	for _, d := range mod.Dependencies() {
		dp, _ := utils.SplitNamespace(d)
		if dp == "java.lang" || dp == pkg {
			continue
		}
		imports = append(imports, d)
	}
	return render("file", FileView{Header: Header, Package: pkg, Imports: imports, Body: body})
}

func javadoc(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "*/", "*&#47;"))
}
