package model

import (
	"fmt"

	"github.com/spf13/cast"
)

// UnionVariant is a named member of a tagged union: a record or a nested tagged union.
type UnionVariant struct {
	Name  string
	Model Model
}

// TaggedUnionModel is a named closed union of records told apart by the
// constant value of the Discriminator property.
type TaggedUnionModel struct {
	Meta
	id            string
	Variants      []UnionVariant
	Discriminator string
}

func (*TaggedUnionModel) node() {}
func (*TaggedUnionModel) Kind() Kind { return KindTaggedUnion }
func (u *TaggedUnionModel) ID() string { return u.id }

// TaggedUnion builds a tagged union and infers its discriminator.
func TaggedUnion(id string, opts ...Option) (*TaggedUnionModel, error) {
	o := collect(opts)
	d, err := InferDiscriminator(o.variants)
	if err != nil {
		return nil, fmt.Errorf("tagged union %s: %w", id, err)
	}
	return &TaggedUnionModel{Meta: o.meta, id: id, Variants: o.variants, Discriminator: d}, nil
}

// MustTaggedUnion is like TaggedUnion but panics on error. It simplifies
// package-level model declarations.
func MustTaggedUnion(id string, opts ...Option) *TaggedUnionModel {
	u, err := TaggedUnion(id, opts...)
	if err != nil {
		panic(err)
	}
	return u
}

// Records flattens the variants of u, recursing through nested unions.
func (u *TaggedUnionModel) Records() []*RecordModel {
	records, _ := flattenVariants(u.Variants)
	return records
}

// InferDiscriminator returns the property that tells the flattened variant
// records apart: present in every record as a constant over a primitive, with
// pairwise distinct values. Candidates are tried in the property order of the
// first record.
func InferDiscriminator(variants []UnionVariant) (string, error) {
	records, err := flattenVariants(variants)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", fmt.Errorf("%w: union has no record variants", ErrNoDiscriminatorFound)
	}

	var candidates []string
	for _, p := range records[0].Properties {
		if isDiscriminatorCandidate(p.Model) {
			candidates = append(candidates, p.Name)
		}
	}
	candidates = filterCandidates(candidates, records[1:])
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no property is a primitive constant in every variant", ErrNoDiscriminatorFound)
	}

	for _, name := range candidates {
		seen := make(map[any]struct{}, len(records))
		for _, r := range records {
			m, _ := r.Property(name)
			seen[discriminatorKey(m.(*ConstantModel).Value)] = struct{}{}
		}
		if len(seen) == len(records) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: candidates %v", ErrDuplicateDiscriminatorValues, candidates)
}

func filterCandidates(candidates []string, records []*RecordModel) []string {
	out := candidates[:0]
	for _, name := range candidates {
		ok := true
		for _, r := range records {
			m, found := r.Property(name)
			if !found || !isDiscriminatorCandidate(m) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, name)
		}
	}
	return out
}

func isDiscriminatorCandidate(m Model) bool {
	c, ok := m.(*ConstantModel)
	return ok && IsPrimitive(c.Base())
}

// discriminatorKey folds numeric values onto float64 so 1 and 1.0 collide.
func discriminatorKey(v any) any {
	switch v.(type) {
	case string, bool:
		return v
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return f
	}
	return fmt.Sprint(v)
}

func flattenVariants(variants []UnionVariant) ([]*RecordModel, error) {
	var out []*RecordModel
	for _, v := range variants {
		switch m := v.Model.(type) {
		case *RecordModel:
			out = append(out, m)
		case *TaggedUnionModel:
			nested, err := flattenVariants(m.Variants)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		default:
			return nil, fmt.Errorf("%w: variant %q is a %s, not a record", ErrNoDiscriminatorFound, v.Name, kindOf(v.Model))
		}
	}
	return out, nil
}

func kindOf(m Model) string {
	if m == nil {
		return "nil model"
	}
	return string(m.Kind())
}
