package section

import (
	"sort"
	"sync"
)

// DefaultPortal is the name of the single document-level portal most
// applications render floating UI into.
const DefaultPortal = "portal"

// PortalEntry describes how a named portal is resolved.
type PortalEntry struct {
	Name string

	// Definition, when set, is the base every portal section bound to this
	// name must extend. Anonymous portal sections are built on top of it.
	Definition *Definition

	// TestID is searched over the entire document. Defaults to the name.
	TestID string
}

// PortalOption configures a portal registration.
type PortalOption func(*PortalEntry)

// PortalDefinition sets the concrete definition of a portal.
func PortalDefinition(def *Definition) PortalOption {
	return func(e *PortalEntry) {
		e.Definition = def
	}
}

// PortalTestID sets the test id the portal container is found by.
func PortalTestID(id string) PortalOption {
	return func(e *PortalEntry) {
		e.TestID = id
	}
}

// Registry maps portal names to their resolution. Each test configuration
// owns one registry and resets it between independent runs.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]PortalEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]PortalEntry),
	}
}

// Register adds a portal. A name can be registered once per registry
// lifetime.
func (r *Registry) Register(name string, opts ...PortalOption) error {
	if name == "" {
		return &ConfigurationError{Message: "portal name must not be empty"}
	}

	entry := PortalEntry{Name: name}
	for _, opt := range opts {
		opt(&entry)
	}
	if entry.TestID == "" {
		entry.TestID = name
	}
	entry.TestID = normalizeTestID(entry.TestID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return &DuplicatePortalError{Name: name}
	}
	r.entries[name] = entry
	return nil
}

// RegisterDefault registers DefaultPortal with the given test id.
func (r *Registry) RegisterDefault(testID string, opts ...PortalOption) error {
	return r.Register(DefaultPortal, append([]PortalOption{PortalTestID(testID)}, opts...)...)
}

// Lookup returns the registration for name.
func (r *Registry) Lookup(name string) (PortalEntry, error) {
	if r == nil {
		return PortalEntry{}, &PortalNotConfiguredError{Name: name}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return PortalEntry{}, &PortalNotConfiguredError{Name: name}
	}
	return entry, nil
}

// Names returns the registered portal names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears every registration.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]PortalEntry)
}
