// Package permission implements (resource, action) permissions and a
// hierarchical role tree. Registries and role managers are frozen after
// setup; resolution after Freeze is lock-free reads.
package permission

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// Permission is one grantable capability, addressed by resource and action.
type Permission struct {
	Resource string
	Action   string
}

// Slug returns the canonical "resource:action" form used in tokens,
// middleware requirements, and audit events.
func (p Permission) Slug() string {
	return p.Resource + ":" + p.Action
}

// ParseSlug splits a "resource:action" slug. Both halves must be
// non-empty.
func ParseSlug(slug string) (Permission, error) {
	resource, action, ok := strings.Cut(slug, ":")
	if !ok || resource == "" || action == "" {
		return Permission{}, errors.New("invalid permission slug: " + slug)
	}
	return Permission{Resource: resource, Action: action}, nil
}

// Registry is the set of known permissions. Register before Freeze;
// lookups of unknown slugs fail closed everywhere downstream.
type Registry struct {
	mu     sync.RWMutex
	bySlug map[string]Permission
	frozen bool
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{
		bySlug: make(map[string]Permission),
	}
}

// Register adds a permission. Duplicate slugs and registrations after
// Freeze are errors.
func (r *Registry) Register(resource, action string) (Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return Permission{}, errors.New("registry frozen")
	}
	if resource == "" || action == "" {
		return Permission{}, errors.New("permission resource and action must not be empty")
	}

	p := Permission{Resource: resource, Action: action}
	if _, exists := r.bySlug[p.Slug()]; exists {
		return Permission{}, errors.New("permission already registered: " + p.Slug())
	}

	r.bySlug[p.Slug()] = p
	return p, nil
}

// Lookup returns the permission for a slug, or false when unknown.
func (r *Registry) Lookup(slug string) (Permission, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.bySlug[slug]
	return p, ok
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered permissions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySlug)
}

// Slugs returns every registered slug, sorted.
func (r *Registry) Slugs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.bySlug))
	for slug := range r.bySlug {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}
