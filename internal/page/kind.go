// internal/page/kind.go
package page

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xkilldash9x/robustdom/internal/element"
)

var (
	// ErrUnknownKind is returned when a registry has no kind under a name.
	ErrUnknownKind = errors.New("unknown component kind")
	// ErrKindMismatch is returned when a kind is looked up with a key or
	// value type other than the one it was registered with.
	ErrKindMismatch = errors.New("component kind signature mismatch")
)

// Kind describes a collectible component: how to key it, how to build it
// from a handle, and an optional hook applied once after construction.
type Kind[K comparable, V any] struct {
	Name string
	// New builds a component rooted at h under parent.
	New func(h *element.Handle, parent Container) (V, error)
	// Key extracts the component's key from its root handle.
	Key func(ctx context.Context, h *element.Handle) (K, error)
	// Enhance may wrap or replace a freshly built component. Nil means identity.
	Enhance func(v V) V
}

// Validate reports whether k can be collected.
func (k Kind[K, V]) Validate() error {
	if k.Name == "" {
		return fmt.Errorf("component kind must be named")
	}
	if k.New == nil {
		return fmt.Errorf("component kind %q has no constructor", k.Name)
	}
	if k.Key == nil {
		return fmt.Errorf("component kind %q has no key function", k.Name)
	}
	return nil
}

func (k Kind[K, V]) build(h *element.Handle, parent Container) (V, error) {
	v, err := k.New(h, parent)
	if err != nil {
		var zero V
		return zero, fmt.Errorf("constructing %s: %w", k.Name, err)
	}
	if k.Enhance != nil {
		v = k.Enhance(v)
	}
	return v, nil
}

// Registry resolves component kinds by name. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]any
}

// DefaultRegistry is the process-wide registry used by NewMapFor callers that
// have no registry of their own.
var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]any)}
}

// Names returns the registered kind names in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.kinds))
	for n := range r.kinds {
		names = append(names, n)
	}
	return names
}

// Register adds kind to r. Names are unique within a registry.
func Register[K comparable, V any](r *Registry, kind Kind[K, V]) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.kinds[kind.Name]; dup {
		return fmt.Errorf("component kind %q is already registered", kind.Name)
	}
	r.kinds[kind.Name] = kind
	return nil
}

// Lookup returns the kind registered under name, provided it was registered
// with exactly the key type K and value type V.
func Lookup[K comparable, V any](r *Registry, name string) (Kind[K, V], error) {
	r.mu.RLock()
	raw, ok := r.kinds[name]
	r.mu.RUnlock()
	if !ok {
		return Kind[K, V]{}, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	kind, ok := raw.(Kind[K, V])
	if !ok {
		return Kind[K, V]{}, fmt.Errorf("%w: %q is %T, not %T", ErrKindMismatch, name, raw, Kind[K, V]{})
	}
	return kind, nil
}
