package java

import (
	"fmt"
	"strings"

	"github.com/blimu-dev/specgen/pkg/graph"
	"github.com/blimu-dev/specgen/pkg/model"
)

var boxed = map[string]string{
	"boolean": "Boolean",
	"short":   "Short",
	"int":     "Integer",
	"long":    "Long",
	"float":   "Float",
	"double":  "Double",
}

// Signature returns the Java type of m and records on mod every type the
// signature needs imported. Optional models are annotated @Nullable and
// primitives under an optional are boxed.
func (c *Context) Signature(m model.Model, mod *graph.Module) (string, error) {
	return c.signature(m, mod, false)
}

// BoxedSignature is Signature with primitives boxed, as required for generic
// type arguments.
func (c *Context) BoxedSignature(m model.Model, mod *graph.Module) (string, error) {
	return c.signature(m, mod, true)
}

func (c *Context) signature(m model.Model, mod *graph.Module, box bool) (string, error) {
	switch m := m.(type) {
	case *model.BooleanModel:
		return primitive("boolean", box), nil

	case *model.StringModel:
		return "String", nil

	case *model.NumberModel:
		if m.Type == model.Decimal {
			mod.DependsOn(TypeBigDecimal)
			return "BigDecimal", nil
		}
		if _, ok := boxed[string(m.Type)]; !ok {
			return "", fmt.Errorf("%w: number type %q", model.ErrUnknownModelKind, m.Type)
		}
		return primitive(string(m.Type), box), nil

	case *model.TemporalModel:
		switch m.Kind() {
		case model.KindDate:
			mod.DependsOn(TypeLocalDate)
			return "LocalDate", nil
		case model.KindTime:
			mod.DependsOn(TypeLocalTime)
			return "LocalTime", nil
		default:
			mod.DependsOn(TypeLocalDateTime)
			return "LocalDateTime", nil
		}

	case *model.UUIDModel:
		mod.DependsOn(TypeUUID)
		return "UUID", nil

	case *model.CollectionModel:
		base, err := c.signature(m.Base(), mod, true)
		if err != nil {
			return "", err
		}
		switch m.Kind() {
		case model.KindSet:
			mod.DependsOn(TypeSet)
			return "Set<" + base + ">", nil
		case model.KindMap:
			mod.DependsOn(TypeMap)
			return "Map<String, " + base + ">", nil
		default:
			mod.DependsOn(TypeList)
			return "List<" + base + ">", nil
		}

	case *model.ConstantModel:
		return c.signature(m.Base(), mod, box)

	case *model.OptionalModel:
		base, err := c.signature(m.Collapse().Base(), mod, true)
		if err != nil {
			return "", err
		}
		mod.DependsOn(TypeNullable)
		return Nullable(base), nil

	case *model.RecordModel:
		return c.QualifiedName(m.ID()), nil

	case *model.TaggedUnionModel:
		return c.QualifiedName(m.ID()), nil

	case nil:
		return "", fmt.Errorf("%w: nil model", model.ErrUnknownModelKind)
	}
	return "", fmt.Errorf("%w: %T", model.ErrUnknownModelKind, m)
}

func primitive(name string, box bool) string {
	if box {
		return boxed[name]
	}
	return name
}

// Nullable annotates a type. Qualified names take the annotation before their
// simple name: "com.example.Book" gives "com.example.@Nullable Book".
func Nullable(sig string) string {
	head := sig
	if i := strings.IndexByte(sig, '<'); i >= 0 {
		head = sig[:i]
	}
	if i := strings.LastIndexByte(head, '.'); i >= 0 {
		return sig[:i+1] + "@Nullable " + sig[i+1:]
	}
	return "@Nullable " + sig
}
