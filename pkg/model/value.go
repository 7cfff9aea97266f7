package model

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// CheckValue reports whether v is a valid instance of m. A nil error means the
// value can be embedded as a literal.
func CheckValue(m Model, v any) error {
	if err := checkValue(m, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConstant, err)
	}
	return nil
}

func checkValue(m Model, v any) error {
	switch m := m.(type) {
	case *StringModel:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("want string, got %T", v)
		}
	case *NumberModel:
		return checkNumber(m, v)
	case *BooleanModel:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("want bool, got %T", v)
		}
	case *TemporalModel:
		if _, err := ParseTemporal(m.Kind(), v); err != nil {
			return err
		}
	case *UUIDModel:
		if _, err := ParseUUID(v); err != nil {
			return err
		}
	case *OptionalModel:
		if v == nil {
			return nil
		}
		return checkValue(m.Base(), v)
	case *ConstantModel:
		return checkValue(m.Base(), v)
	case *CollectionModel:
		return checkCollection(m, v)
	case *RecordModel:
		return checkRecord(m, v)
	case *TaggedUnionModel:
		rec, err := SelectVariant(m, v)
		if err != nil {
			return err
		}
		return checkRecord(rec, v)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownModelKind, m)
	}
	return nil
}

func checkNumber(m *NumberModel, v any) error {
	if m.Type == Decimal {
		_, err := ParseDecimal(v)
		return err
	}
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
	default:
		return fmt.Errorf("want number, got %T", v)
	}
	switch {
	case m.Type.IsInteger():
		_, err := ParseInteger(m.Type, v)
		return err
	case m.Type == Float:
		if f := cast.ToFloat64(v); math.Abs(f) > math.MaxFloat32 {
			return fmt.Errorf("%v is out of range for float", v)
		}
	}
	return nil
}

func checkCollection(m *CollectionModel, v any) error {
	rv := reflect.ValueOf(v)
	switch m.Kind() {
	case KindMap:
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("want string-keyed map, got %T", v)
		}
		iter := rv.MapRange()
		for iter.Next() {
			if err := checkValue(m.Base(), iter.Value().Interface()); err != nil {
				return fmt.Errorf("key %q: %w", iter.Key().String(), err)
			}
		}
	default:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return fmt.Errorf("want list, got %T", v)
		}
		for i := 0; i < rv.Len(); i++ {
			if err := checkValue(m.Base(), rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}

func checkRecord(r *RecordModel, v any) error {
	fields, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("record %s: want map[string]any, got %T", r.ID(), v)
	}
	for _, p := range r.Properties {
		value, present := fields[p.Name]
		switch p.Model.(type) {
		case *ConstantModel:
			continue
		case *OptionalModel:
			if !present {
				continue
			}
		default:
			if !present {
				return fmt.Errorf("record %s: missing property %q", r.ID(), p.Name)
			}
		}
		if err := checkValue(p.Model, value); err != nil {
			return fmt.Errorf("record %s.%s: %w", r.ID(), p.Name, err)
		}
	}
	return nil
}

// SelectVariant picks the record of u whose discriminator constant equals the
// discriminator entry of v.
func SelectVariant(u *TaggedUnionModel, v any) (*RecordModel, error) {
	fields, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("union %s: want map[string]any, got %T", u.ID(), v)
	}
	tag, ok := fields[u.Discriminator]
	if !ok {
		return nil, fmt.Errorf("union %s: missing discriminator %q", u.ID(), u.Discriminator)
	}
	for _, r := range u.Records() {
		m, _ := r.Property(u.Discriminator)
		if discriminatorKey(m.(*ConstantModel).Value) == discriminatorKey(tag) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("union %s: no variant with %s=%v", u.ID(), u.Discriminator, tag)
}

// Layouts used for temporal values given as strings.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// ParseTemporal accepts a time.Time or a string in the layout of kind k.
func ParseTemporal(k Kind, v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		layout := DateTimeLayout
		switch k {
		case KindDate:
			layout = DateLayout
		case KindTime:
			layout = TimeLayout
		}
		parsed, err := time.Parse(layout, t)
		if err != nil && k == KindDateTime {
			parsed, err = time.Parse(time.RFC3339, t)
		}
		return parsed, err
	}
	return time.Time{}, fmt.Errorf("want time.Time or string for %s, got %T", k, v)
}

// ParseUUID accepts a uuid.UUID or its string form.
func ParseUUID(v any) (uuid.UUID, error) {
	switch u := v.(type) {
	case uuid.UUID:
		return u, nil
	case string:
		return uuid.Parse(u)
	}
	return uuid.Nil, fmt.Errorf("want uuid, got %T", v)
}

// ParseDecimal accepts a decimal.Decimal, a numeric string or any Go number.
func ParseDecimal(v any) (decimal.Decimal, error) {
	switch d := v.(type) {
	case decimal.Decimal:
		return d, nil
	case string:
		return decimal.NewFromString(d)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("want decimal, got %T", v)
	}
	return decimal.NewFromFloat(f), nil
}

// ParseInteger accepts any Go integer, or a float without a fractional part,
// that fits the range of the integer type t.
func ParseInteger(t NumberType, v any) (int64, error) {
	var n int64
	switch x := v.(type) {
	case int, int8, int16, int32, int64:
		n = reflect.ValueOf(x).Int()
	case uint, uint8, uint16, uint32, uint64:
		u := reflect.ValueOf(x).Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%v is out of range for %s", v, t)
		}
		n = int64(u)
	case float32, float64:
		f := reflect.ValueOf(x).Float()
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("want integral %s, got %v", t, v)
		}
		// float64(math.MaxInt64) rounds up to 2^63.
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("%v is out of range for %s", v, t)
		}
		n = int64(f)
	default:
		return 0, fmt.Errorf("want %s, got %T", t, v)
	}

	lo, hi := int64(math.MinInt64), int64(math.MaxInt64)
	switch t {
	case Short:
		lo, hi = math.MinInt16, math.MaxInt16
	case Int:
		lo, hi = math.MinInt32, math.MaxInt32
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%v is out of range for %s", v, t)
	}
	return n, nil
}
