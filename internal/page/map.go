// internal/page/map.go
package page

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/xkilldash9x/robustdom/internal/element"
	"github.com/xkilldash9x/robustdom/internal/locator"
)

// ErrUnsupportedMutation is returned by every Map mutator.
var ErrUnsupportedMutation = errors.New("component map is read-only")

// Entry is one collected component: its eagerly computed key, its root
// handle, and the component value built on first use.
type Entry[K comparable, V any] struct {
	key    K
	handle *element.Handle
	parent Container
	kind   *Kind[K, V]

	value V
	built bool
}

func (e *Entry[K, V]) Key() K                  { return e.key }
func (e *Entry[K, V]) Handle() *element.Handle { return e.handle }

// Value builds the component on first call and returns the same instance
// afterwards. A failed build is not cached.
func (e *Entry[K, V]) Value() (V, error) {
	if e.built {
		return e.value, nil
	}
	v, err := e.kind.build(e.handle, e.parent)
	if err != nil {
		return v, err
	}
	e.value = v
	e.built = true
	return v, nil
}

// Map is a read-only, ordered view of the components matching a locator at
// the moment it was built. Keys need not be unique; lookups return the first
// match. Size and membership never re-query the driver.
//
// Like element handles, a Map is owned by a single goroutine.
type Map[K comparable, V any] struct {
	kind    Kind[K, V]
	parent  Container
	by      locator.By
	entries []*Entry[K, V]
}

// NewMap snapshots every match of by under parent and computes each key.
func NewMap[K comparable, V any](ctx context.Context, parent Container, kind Kind[K, V], by locator.By) (*Map[K, V], error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, fmt.Errorf("component map %q needs a parent container", kind.Name)
	}

	handles, err := element.GetAll(ctx, parent, by)
	if err != nil {
		return nil, fmt.Errorf("collecting %s with %s: %w", kind.Name, by, err)
	}

	m := &Map[K, V]{kind: kind, parent: parent, by: by, entries: make([]*Entry[K, V], 0, len(handles))}
	for i, h := range handles {
		key, err := kind.Key(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("keying %s %d: %w", kind.Name, i, err)
		}
		m.entries = append(m.entries, &Entry[K, V]{key: key, handle: h, parent: parent, kind: &m.kind})
	}
	parent.Logger().Debug("Collected components.",
		zap.String("kind", kind.Name), zap.Stringer("locator", by), zap.Int("count", len(m.entries)))
	return m, nil
}

// NewMapFor is NewMap with the kind resolved from a registry by name.
func NewMapFor[K comparable, V any](ctx context.Context, parent Container, r *Registry, name string, by locator.By) (*Map[K, V], error) {
	kind, err := Lookup[K, V](r, name)
	if err != nil {
		return nil, err
	}
	return NewMap(ctx, parent, kind, by)
}

func (m *Map[K, V]) Len() int            { return len(m.entries) }
func (m *Map[K, V]) Locator() locator.By { return m.by }
func (m *Map[K, V]) Parent() Container   { return m.parent }

// Get returns the first entry keyed key.
func (m *Map[K, V]) Get(key K) (*Entry[K, V], bool) {
	for _, e := range m.entries {
		if e.key == key {
			return e, true
		}
	}
	return nil, false
}

// Value returns the component of the first entry keyed key, building it if
// necessary. ok is false when no entry has that key.
func (m *Map[K, V]) Value(key K) (v V, ok bool, err error) {
	e, ok := m.Get(key)
	if !ok {
		return v, false, nil
	}
	v, err = e.Value()
	return v, true, err
}

func (m *Map[K, V]) ContainsKey(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// ContainsValue reports whether any entry is rooted at h's element, as
// judged by handle identity. No component is built.
func (m *Map[K, V]) ContainsValue(h *element.Handle) bool {
	for _, e := range m.entries {
		if e.handle.Equal(h) {
			return true
		}
	}
	return false
}

// Entries returns the entries in match order. The slice is a copy.
func (m *Map[K, V]) Entries() []*Entry[K, V] {
	return append([]*Entry[K, V](nil), m.entries...)
}

// Keys returns every key in match order, duplicates included.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.key
	}
	return keys
}

// All iterates keys and entries in match order.
func (m *Map[K, V]) All() iter.Seq2[K, *Entry[K, V]] {
	return func(yield func(K, *Entry[K, V]) bool) {
		for _, e := range m.entries {
			if !yield(e.key, e) {
				return
			}
		}
	}
}

func (m *Map[K, V]) Put(K, V) error { return m.unsupported("put") }
func (m *Map[K, V]) Remove(K) error { return m.unsupported("remove") }
func (m *Map[K, V]) Clear() error   { return m.unsupported("clear") }
func (m *Map[K, V]) RemoveAll(func(K, *Entry[K, V]) bool) error {
	return m.unsupported("remove all")
}

func (m *Map[K, V]) unsupported(op string) error {
	return fmt.Errorf("%w: %s on %s", ErrUnsupportedMutation, op, m.kind.Name)
}
