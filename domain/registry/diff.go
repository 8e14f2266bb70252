package registry

import (
	"fmt"
	"sort"

	"site_uitest/domain/entities"
)

// Change is an entry whose locator, kind or description differs
type Change struct {
	Old entities.SelectorEntry
	New entities.SelectorEntry
}

// Changes summarizes the difference between two registries
type Changes struct {
	Added   []entities.SelectorEntry
	Removed []entities.SelectorEntry
	Changed []Change
}

// Empty - true when both registries hold the same entries
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

func (c Changes) String() string {
	return fmt.Sprintf("%d added, %d removed, %d changed", len(c.Added), len(c.Removed), len(c.Changed))
}

// Diff - compares two registries by name. Order is ignored.
func Diff(prev, next *Registry) Changes {
	var c Changes
	oldEntries := byName(prev)
	newEntries := byName(next)

	for name, n := range newEntries {
		o, ok := oldEntries[name]
		switch {
		case !ok:
			c.Added = append(c.Added, n)
		case o != n:
			c.Changed = append(c.Changed, Change{Old: o, New: n})
		}
	}
	for name, o := range oldEntries {
		if _, ok := newEntries[name]; !ok {
			c.Removed = append(c.Removed, o)
		}
	}

	sort.Slice(c.Added, func(i, j int) bool { return c.Added[i].Name < c.Added[j].Name })
	sort.Slice(c.Removed, func(i, j int) bool { return c.Removed[i].Name < c.Removed[j].Name })
	sort.Slice(c.Changed, func(i, j int) bool { return c.Changed[i].New.Name < c.Changed[j].New.Name })
	return c
}

// Merge - returns base with update layered on top: entries in update replace
// same-named entries in base, new names are appended, nothing is dropped
func Merge(base, update *Registry) *Registry {
	out := New()
	updates := byName(update)
	for _, e := range base.Entries() {
		if u, ok := updates[e.Name]; ok {
			e = u
		}
		out.index[e.Name] = len(out.entries)
		out.entries = append(out.entries, e)
	}
	for _, e := range update.Entries() {
		if _, ok := out.index[e.Name]; ok {
			continue
		}
		out.index[e.Name] = len(out.entries)
		out.entries = append(out.entries, e)
	}
	return out
}

func byName(r *Registry) map[string]entities.SelectorEntry {
	m := make(map[string]entities.SelectorEntry)
	if r == nil {
		return m
	}
	for _, e := range r.Entries() {
		m[e.Name] = e
	}
	return m
}
