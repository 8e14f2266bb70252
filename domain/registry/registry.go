// Package registry holds the validated mapping from symbolic element names to
// locators that page objects and tests resolve against.
package registry

import (
	"sync"

	"site_uitest/domain/entities"
)

// Registry is an ordered, unique-by-name collection of selector entries.
// It is safe for concurrent use; in a test run it is loaded once and then
// only read.
type Registry struct {
	mu      sync.RWMutex
	entries []entities.SelectorEntry
	index   map[string]int
}

// New - creates an empty registry
func New() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register - validates and adds an entry. The name must not already be
// registered, whatever its locator or kind.
func (r *Registry) Register(name, locator string, kind entities.LocatorKind, description ...string) (entities.SelectorEntry, error) {
	entry := entities.SelectorEntry{
		Name:    name,
		Locator: locator,
		Kind:    kind,
	}
	if len(description) > 0 {
		entry.Description = description[0]
	}
	if err := r.Add(entry); err != nil {
		return entities.SelectorEntry{}, err
	}
	return entry, nil
}

// Add - registers a prepared entry
func (r *Registry) Add(entry entities.SelectorEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[entry.Name]; ok {
		return &entities.DuplicateNameError{Name: entry.Name}
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	r.index[entry.Name] = len(r.entries)
	r.entries = append(r.entries, entry)
	return nil
}

// Resolve - looks up an entry by name
func (r *Registry) Resolve(name string) (entities.SelectorEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[name]
	if !ok {
		return entities.SelectorEntry{}, &entities.UnknownSelectorError{Name: name}
	}
	return r.entries[i], nil
}

// Has - reports whether name is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[name]
	return ok
}

// Entries - returns a copy of all entries in registration order
func (r *Registry) Entries() []entities.SelectorEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entities.SelectorEntry(nil), r.entries...)
}

// Names - returns all names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Len - number of entries
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Subset - returns a new registry holding only the named entries. Names the
// registry does not know are left out, so resolving them later fails with
// UnknownSelectorError.
func (r *Registry) Subset(names ...string) *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub := New()
	for _, name := range names {
		i, ok := r.index[name]
		if !ok {
			continue
		}
		if _, dup := sub.index[name]; dup {
			continue
		}
		sub.index[name] = len(sub.entries)
		sub.entries = append(sub.entries, r.entries[i])
	}
	return sub
}

// Missing - returns the names not present in the registry
func (r *Registry) Missing(names ...string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []string
	for _, name := range names {
		if _, ok := r.index[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// FromEntries - builds a registry from entries, failing on the first invalid
// or duplicate one
func FromEntries(entries []entities.SelectorEntry) (*Registry, error) {
	r := New()
	for _, e := range entries {
		if err := r.Add(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}
