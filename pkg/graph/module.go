package graph

import "sort"

// Module accumulates the external type names one output file depends on.
// Emitters call DependsOn while computing signatures and read Dependencies
// when rendering the file header.
type Module struct {
	ID   string
	deps map[string]struct{}
}

// NewModule returns an empty module context for the output unit id.
func NewModule(id string) *Module {
	return &Module{ID: id, deps: make(map[string]struct{})}
}

// DependsOn records a fully qualified type name.
func (m *Module) DependsOn(name string) {
	m.deps[name] = struct{}{}
}

// Has reports whether name was recorded.
func (m *Module) Has(name string) bool {
	_, ok := m.deps[name]
	return ok
}

// Merge copies every dependency of other into m.
func (m *Module) Merge(other *Module) {
	for d := range other.deps {
		m.deps[d] = struct{}{}
	}
}

// Dependencies returns the recorded names sorted.
func (m *Module) Dependencies() []string {
	out := make([]string, 0, len(m.deps))
	for d := range m.deps {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
