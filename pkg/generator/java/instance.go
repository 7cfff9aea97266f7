package java

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/spf13/cast"

	"github.com/blimu-dev/specgen/pkg/graph"
	"github.com/blimu-dev/specgen/pkg/model"
)

// Instance renders v as a Java expression of the type of m. Types the
// expression refers to are recorded on mod.
func (c *Context) Instance(m model.Model, v any, mod *graph.Module) (string, error) {
	switch m := m.(type) {
	case *model.OptionalModel:
		if v == nil {
			return "null", nil
		}
		return c.Instance(m.Collapse().Base(), v, mod)

	case *model.ConstantModel:
		return c.Instance(m.Base(), v, mod)

	case *model.StringModel:
		s, ok := v.(string)
		if !ok {
			return "", invalid(m, v)
		}
		return Quote(s), nil

	case *model.BooleanModel:
		b, ok := v.(bool)
		if !ok {
			return "", invalid(m, v)
		}
		return strconv.FormatBool(b), nil

	case *model.NumberModel:
		return c.number(m, v, mod)

	case *model.TemporalModel:
		t, err := model.ParseTemporal(m.Kind(), v)
		if err != nil {
			return "", fmt.Errorf("%w: %v", model.ErrInvalidConstant, err)
		}
		return temporal(m.Kind(), t, mod), nil

	case *model.UUIDModel:
		u, err := model.ParseUUID(v)
		if err != nil {
			return "", fmt.Errorf("%w: %v", model.ErrInvalidConstant, err)
		}
		mod.DependsOn(TypeUUID)
		return "UUID.fromString(" + Quote(u.String()) + ")", nil

	case *model.CollectionModel:
		return c.collection(m, v, mod)

	case *model.RecordModel:
		fields, ok := v.(map[string]any)
		if !ok {
			return "", invalid(m, v)
		}
		return c.record(m, fields, mod)

	case *model.TaggedUnionModel:
		rec, err := model.SelectVariant(m, v)
		if err != nil {
			return "", fmt.Errorf("%w: %v", model.ErrInvalidConstant, err)
		}
		return c.variant(m, rec, v.(map[string]any), mod)
	}
	return "", fmt.Errorf("%w: %T", model.ErrUnknownModelKind, m)
}

func invalid(m model.Model, v any) error {
	return fmt.Errorf("%w: %T is not a %s", model.ErrInvalidConstant, v, m.Kind())
}

func (c *Context) number(m *model.NumberModel, v any, mod *graph.Module) (string, error) {
	if m.Type == model.Decimal {
		d, err := model.ParseDecimal(v)
		if err != nil {
			return "", fmt.Errorf("%w: %v", model.ErrInvalidConstant, err)
		}
		mod.DependsOn(TypeBigDecimal)
		return "new BigDecimal(" + Quote(d.String()) + ")", nil
	}
	if m.Type.IsInteger() {
		n, err := model.ParseInteger(m.Type, v)
		if err != nil {
			return "", fmt.Errorf("%w: %v", model.ErrInvalidConstant, err)
		}
		switch m.Type {
		case model.Short:
			return "(short) " + strconv.FormatInt(n, 10), nil
		case model.Long:
			return strconv.FormatInt(n, 10) + "L", nil
		}
		return strconv.FormatInt(n, 10), nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return "", invalid(m, v)
	}
	switch m.Type {
	case model.Float:
		return strconv.FormatFloat(f, 'g', -1, 32) + "f", nil
	default:
		return strconv.FormatFloat(f, 'g', -1, 64) + "d", nil
	}
}

func temporal(k model.Kind, t time.Time, mod *graph.Module) string {
	clock := fmt.Sprintf("%d, %d, %d", t.Hour(), t.Minute(), t.Second())
	if t.Nanosecond() != 0 {
		clock += ", " + strconv.Itoa(t.Nanosecond())
	}
	switch k {
	case model.KindDate:
		mod.DependsOn(TypeLocalDate)
		return fmt.Sprintf("LocalDate.of(%d, %d, %d)", t.Year(), int(t.Month()), t.Day())
	case model.KindTime:
		mod.DependsOn(TypeLocalTime)
		return "LocalTime.of(" + clock + ")"
	}
	mod.DependsOn(TypeLocalDateTime)
	return fmt.Sprintf("LocalDateTime.of(%d, %d, %d, %s)", t.Year(), int(t.Month()), t.Day(), clock)
}

func (c *Context) collection(m *model.CollectionModel, v any, mod *graph.Module) (string, error) {
	rv := reflect.ValueOf(v)
	if m.Kind() == model.KindMap {
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return "", invalid(m, v)
		}
		mod.DependsOn(TypeMap)
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		entries := make([]string, 0, len(keys))
		for _, k := range keys {
			item, err := c.Instance(m.Base(), rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface(), mod)
			if err != nil {
				return "", fmt.Errorf("key %q: %w", k, err)
			}
			entries = append(entries, "Map.entry("+Quote(k)+", "+item+")")
		}
		if len(entries) == 0 {
			return "Map.of()", nil
		}
		return "Map.ofEntries(" + strings.Join(entries, ", ") + ")", nil
	}

	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return "", invalid(m, v)
	}
	items := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item, err := c.Instance(m.Base(), rv.Index(i).Interface(), mod)
		if err != nil {
			return "", fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	factory := "List.of("
	if m.Kind() == model.KindSet {
		mod.DependsOn(TypeSet)
		factory = "Set.of("
	} else {
		mod.DependsOn(TypeList)
	}
	return factory + strings.Join(items, ", ") + ")", nil
}

// record calls the canonical constructor: required components first, then
// optional ones. Constants are not components. Absent optionals take their
// default, or null.
func (c *Context) record(r *model.RecordModel, fields map[string]any, mod *graph.Module) (string, error) {
	required, optional, _ := r.Split()
	args := make([]string, 0, len(required)+len(optional))
	for _, p := range required {
		v, ok := fields[p.Name]
		if !ok {
			return "", fmt.Errorf("%w: record %s: missing property %q", model.ErrInvalidConstant, r.ID(), p.Name)
		}
		arg, err := c.Instance(p.Model, v, mod)
		if err != nil {
			return "", fmt.Errorf("%s.%s: %w", r.ID(), p.Name, err)
		}
		args = append(args, arg)
	}
	for _, p := range optional {
		opt := p.Model.(*model.OptionalModel).Collapse()
		v, ok := fields[p.Name]
		if !ok {
			v = opt.Value
		}
		arg, err := c.Instance(opt, v, mod)
		if err != nil {
			return "", fmt.Errorf("%s.%s: %w", r.ID(), p.Name, err)
		}
		args = append(args, arg)
	}
	return "new " + c.QualifiedName(r.ID()) + "(" + strings.Join(args, ", ") + ")", nil
}

// variant wraps the record instance into the variant records of u, nesting
// through inner unions.
func (c *Context) variant(u *model.TaggedUnionModel, rec *model.RecordModel, fields map[string]any, mod *graph.Module) (string, error) {
	for _, v := range u.Variants {
		wrapper := c.QualifiedName(u.ID()) + "." + TypeName(v.Name)
		switch m := v.Model.(type) {
		case *model.RecordModel:
			if m != rec {
				continue
			}
			inner, err := c.record(rec, fields, mod)
			if err != nil {
				return "", err
			}
			return "new " + wrapper + "(" + inner + ")", nil
		case *model.TaggedUnionModel:
			if !contains(m.Records(), rec) {
				continue
			}
			inner, err := c.variant(m, rec, fields, mod)
			if err != nil {
				return "", err
			}
			return "new " + wrapper + "(" + inner + ")", nil
		}
	}
	return "", fmt.Errorf("%w: record %s is not a variant of %s", model.ErrInvalidConstant, rec.ID(), u.ID())
}

func contains(records []*model.RecordModel, r *model.RecordModel) bool {
	for _, x := range records {
		if x == r {
			return true
		}
	}
	return false
}

// Quote returns s as a Java string literal. Characters outside printable
// ASCII are written as \u escapes.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r >= 0x20 && r < 0x7f {
				b.WriteRune(r)
				continue
			}
			if r > 0xffff {
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
				continue
			}
			fmt.Fprintf(&b, `\u%04x`, r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
