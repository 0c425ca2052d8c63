// Package registry provides the concurrency-safe name index backing the
// router table.
package registry

import (
	"sort"

	"github.com/alphadose/haxmap"
)

// Registry maps names to values. Reads are lock-free; the factory consults
// it on every model construction.
type Registry[T any] interface {
	Get(name string) (T, bool)
	Add(name string, value T)
	GetOrAdd(name string, value func() T) (T, bool)
	Del(name string)
	Names() []string
}

type registry[T any] struct {
	values *haxmap.Map[string, T]
}

// New builds an empty registry.
func New[T any]() Registry[T] {
	return &registry[T]{
		values: haxmap.New[string, T](),
	}
}

func (r *registry[T]) Get(name string) (T, bool) {
	return r.values.Get(name)
}

func (r *registry[T]) Add(name string, value T) {
	r.values.Set(name, value)
}

func (r *registry[T]) GetOrAdd(name string, valueFn func() T) (T, bool) {
	return r.values.GetOrCompute(name, valueFn)
}

func (r *registry[T]) Del(name string) {
	r.values.Del(name)
}

// Names returns every registered name in sorted order, for stable error
// messages.
func (r *registry[T]) Names() []string {
	names := make([]string, 0, int(r.values.Len()))
	r.values.ForEach(func(name string, _ T) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}
