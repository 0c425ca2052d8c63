package tool

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Registry holds the tool definitions a model advertises, keyed by name and
// iterated in insertion order. Adding a definition with an existing name
// replaces it in place.
type Registry struct {
	defs *orderedmap.OrderedMap[string, Definition]
}

// NewRegistry builds a registry from the given definitions.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{defs: orderedmap.New[string, Definition]()}
	for _, def := range defs {
		r.Add(def)
	}
	return r
}

// Add inserts or replaces a definition by name.
func (r *Registry) Add(def Definition) {
	r.defs.Set(def.Name, def)
}

// Get looks up a definition by name.
func (r *Registry) Get(name string) (Definition, bool) {
	return r.defs.Get(name)
}

// Definitions returns the registered tools in insertion order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, r.defs.Len())
	for pair := r.defs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	return r.defs.Len()
}
