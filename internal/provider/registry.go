package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the configured source adapters by name
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]SourceAdapter
}

// NewRegistry creates an empty adapter registry
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]SourceAdapter)}
}

// Register adds an adapter; duplicate names are rejected
func (r *Registry) Register(adapter SourceAdapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := adapter.Name()
	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("adapter %s already registered", name)
	}
	r.adapters[name] = adapter
	return nil
}

// Get returns the adapter registered under name
func (r *Registry) Get(name string) (SourceAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, exists := r.adapters[name]
	if !exists {
		return nil, fmt.Errorf("adapter %s not registered", name)
	}
	return adapter, nil
}

// Names returns the registered adapter names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithCapability returns the registered adapters that advertise cap
func (r *Registry) WithCapability(cap Capability) []SourceAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []SourceAdapter
	for _, adapter := range r.adapters {
		if Supports(adapter, cap) {
			matches = append(matches, adapter)
		}
	}
	return matches
}
