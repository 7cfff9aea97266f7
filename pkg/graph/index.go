// Package graph assigns stable ids to model nodes and walks an application's
// model graph in a fixed order.
package graph

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/blimu-dev/specgen/pkg/model"
)

// Policy selects how an Index reacts to an id claimed by a second model.
type Policy int

const (
	// Strict fails with model.ErrDuplicateID.
	Strict Policy = iota
	// Relaxed keeps the first model. A structurally equal newcomer becomes an
	// alias of the same id; any other newcomer is dropped with a warning.
	Relaxed
)

func (p Policy) String() string {
	if p == Relaxed {
		return "relaxed"
	}
	return "strict"
}

// Index maps node identity to a stable id. Keys are node pointers, so two
// structurally identical records never share an entry by accident.
type Index struct {
	policy   Policy
	byID     map[string]model.Node
	ids      map[model.Node]string
	order    []model.Node
	warnings *Warnings
}

// NewIndex returns an empty index. A nil logger logs to slog.Default.
func NewIndex(policy Policy, logger *slog.Logger) *Index {
	return &Index{
		policy:   policy,
		byID:     make(map[string]model.Node),
		ids:      make(map[model.Node]string),
		warnings: NewWarnings(logger),
	}
}

// Policy returns the collision policy of x.
func (x *Index) Policy() Policy { return x.policy }

// AddModel binds id to n. Re-adding the same node under the same id is a no-op.
func (x *Index) AddModel(id string, n model.Node) error {
	if existing, ok := x.byID[id]; ok {
		if existing == n {
			return nil
		}
		if x.policy == Strict {
			return fmt.Errorf("%w: %q is bound to another model", model.ErrDuplicateID, id)
		}
		if reflect.DeepEqual(existing, n) {
			x.ids[n] = id
			return nil
		}
		x.warnings.Add(WarnDuplicateID, id, "id already bound to a different model; keeping the first")
		return nil
	}
	if prev, ok := x.ids[n]; ok && prev != id {
		return fmt.Errorf("%w: model registered as %q cannot also be %q", model.ErrDuplicateID, prev, id)
	}
	x.byID[id] = n
	x.ids[n] = id
	x.order = append(x.order, n)
	return nil
}

// RequireID returns the id n was registered under.
func (x *Index) RequireID(n model.Node) (string, error) {
	if id, ok := x.ids[n]; ok {
		return id, nil
	}
	if c, ok := n.(model.Custom); ok {
		return "", fmt.Errorf("%w: %s", model.ErrReferenceNotFound, c.ID())
	}
	return "", fmt.Errorf("%w: %T", model.ErrReferenceNotFound, n)
}

// ID returns the id of n, if any.
func (x *Index) ID(n model.Node) (string, bool) {
	id, ok := x.ids[n]
	return id, ok
}

// Lookup returns the node bound to id.
func (x *Index) Lookup(id string) (model.Node, bool) {
	n, ok := x.byID[id]
	return n, ok
}

// Nodes returns the registered nodes in registration order.
func (x *Index) Nodes() []model.Node {
	return append([]model.Node(nil), x.order...)
}

// Warnings returns the warnings raised by the relaxed policy.
func (x *Index) Warnings() []Warning { return x.warnings.List() }

// Register walks app depth-first and binds every record, tagged union and
// route to its own id. Constant and default values are checked on the way.
func (x *Index) Register(app *model.Application) error {
	r := registrar{index: x, seen: make(map[model.Node]bool)}
	for _, route := range app.Routes {
		if err := r.routes(route); err != nil {
			return err
		}
	}
	for _, m := range app.Models {
		if err := r.model(m); err != nil {
			return err
		}
	}
	return nil
}

// NewRegisteredIndex builds an index and registers app in one step.
func NewRegisteredIndex(app *model.Application, policy Policy, logger *slog.Logger) (*Index, error) {
	x := NewIndex(policy, logger)
	if err := x.Register(app); err != nil {
		return nil, err
	}
	return x, nil
}

type registrar struct {
	index *Index
	seen  map[model.Node]bool
}

func (r *registrar) routes(route *model.RoutesModel) error {
	if r.seen[route] {
		return nil
	}
	r.seen[route] = true
	if err := r.index.AddModel(route.ID(), route); err != nil {
		return err
	}
	return eachRouteModel(route, r.model)
}

func (r *registrar) model(m model.Model) error {
	if m == nil || r.seen[m] {
		return nil
	}
	r.seen[m] = true

	switch m := m.(type) {
	case *model.RecordModel:
		if err := r.index.AddModel(m.ID(), m); err != nil {
			return err
		}
		for _, p := range m.Properties {
			if err := r.model(p.Model); err != nil {
				return err
			}
		}
	case *model.TaggedUnionModel:
		if err := r.index.AddModel(m.ID(), m); err != nil {
			return err
		}
		for _, v := range m.Variants {
			if err := r.model(v.Model); err != nil {
				return err
			}
		}
	case *model.ConstantModel:
		if err := model.CheckValue(m.Base(), m.Value); err != nil {
			return fmt.Errorf("constant: %w", err)
		}
		return r.model(m.Base())
	case *model.OptionalModel:
		if m.HasDefault && m.Value != nil {
			if err := model.CheckValue(m.Base(), m.Value); err != nil {
				return fmt.Errorf("optional default: %w", err)
			}
		}
		return r.model(m.Base())
	case model.Wrapper:
		return r.model(m.Base())
	}
	return nil
}

// eachRouteModel calls fn for every parameter, body and header model of route
// in traversal order.
func eachRouteModel(route *model.RoutesModel, fn func(model.Model) error) error {
	for _, p := range route.PathParams {
		if err := fn(p.Model); err != nil {
			return err
		}
	}
	for _, named := range route.Operations {
		if err := eachOperationModel(named.Operation, fn); err != nil {
			return fmt.Errorf("operation %s: %w", named.Name, err)
		}
	}
	return nil
}

func eachOperationModel(op *model.OperationModel, fn func(model.Model) error) error {
	for _, group := range [][]model.Param{op.PathParams, op.QueryParams, op.HeaderParams} {
		for _, p := range group {
			if err := fn(p.Model); err != nil {
				return err
			}
		}
	}
	if err := fn(op.Content); err != nil {
		return err
	}
	for _, named := range op.Responses {
		for _, h := range named.Response.Headers {
			if err := fn(h.Model); err != nil {
				return err
			}
		}
		if err := fn(named.Response.Content); err != nil {
			return err
		}
	}
	return nil
}
