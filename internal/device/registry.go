package device

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrBackendExists  = errors.New("device: backend already registered")
	ErrBackendNil     = errors.New("device: backend factory is nil")
	ErrUnknownBackend = errors.New("device: no backend for kind")
)

// Factory builds a fresh Connection for one backend kind.
type Factory func() Connection

// Registry stores backend factories by kind.
type Registry struct {
	mu    sync.RWMutex
	items map[Kind]Factory
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[Kind]Factory)}
}

// Register adds a backend factory for a kind.
func (r *Registry) Register(kind Kind, f Factory) error {
	if f == nil {
		return ErrBackendNil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[kind]; ok {
		return ErrBackendExists
	}
	r.items[kind] = f
	return nil
}

// Resolve builds a Connection for the kind.
func (r *Registry) Resolve(kind Kind) (Connection, error) {
	r.mu.RLock()
	f, ok := r.items[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownBackend
	}
	return f(), nil
}

// Kinds returns the registered kinds in deterministic order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.items))
	for k := range r.items {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
