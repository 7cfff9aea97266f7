package graph

import (
	"github.com/blimu-dev/specgen/pkg/model"
)

// Visitor receives each distinct custom model once: *model.RecordModel,
// *model.TaggedUnionModel or *model.RoutesModel.
type Visitor func(model.Custom) error

// Travel walks the root set of app and calls visit once per distinct id.
//
// For every route, in order: the route path parameters, then per operation its
// path, query and header parameters and request content, then per response its
// headers and content; then the route itself. Finally the standalone models of
// app. A record or tagged union is visited before its own properties or
// variants are walked. Optional, constant and collection wrappers are unwrapped
// and never visited themselves.
//
// Every custom model must be registered in idx; an unregistered one fails with
// model.ErrReferenceNotFound. Under the Relaxed policy unregistered models, the
// ones dropped after an id collision, are skipped instead.
func Travel(app *model.Application, idx *Index, visit Visitor) error {
	t := &traversal{index: idx, visit: visit, visited: make(map[string]bool)}
	for _, route := range app.Routes {
		if err := eachRouteModel(route, t.walk); err != nil {
			return err
		}
		first, err := t.mark(route)
		if err != nil {
			return err
		}
		if first {
			if err := visit(route); err != nil {
				return err
			}
		}
	}
	for _, m := range app.Models {
		if err := t.walk(m); err != nil {
			return err
		}
	}
	return nil
}

type traversal struct {
	index   *Index
	visit   Visitor
	visited map[string]bool
}

func (t *traversal) mark(n model.Node) (bool, error) {
	id, err := t.index.RequireID(n)
	if err != nil {
		if t.index.Policy() == Relaxed {
			return false, nil
		}
		return false, err
	}
	if t.visited[id] {
		return false, nil
	}
	t.visited[id] = true
	return true, nil
}

func (t *traversal) walk(m model.Model) error {
	switch m := m.(type) {
	case nil:
		return nil
	case *model.RecordModel:
		first, err := t.mark(m)
		if err != nil || !first {
			return err
		}
		if err := t.visit(m); err != nil {
			return err
		}
		for _, p := range m.Properties {
			if err := t.walk(p.Model); err != nil {
				return err
			}
		}
	case *model.TaggedUnionModel:
		first, err := t.mark(m)
		if err != nil || !first {
			return err
		}
		if err := t.visit(m); err != nil {
			return err
		}
		for _, v := range m.Variants {
			if err := t.walk(v.Model); err != nil {
				return err
			}
		}
	case model.Wrapper:
		return t.walk(m.Base())
	}
	return nil
}
