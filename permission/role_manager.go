package permission

import (
	"errors"
	"sort"
	"sync"
)

type role struct {
	name   string
	parent string
	direct map[string]struct{}
}

// RoleManager holds the role tree. Parents must be registered before
// their children, which keeps the hierarchy acyclic by construction; the
// resolver still guards against cycles so a future mutation path cannot
// loop it.
type RoleManager struct {
	registry *Registry

	mu     sync.RWMutex
	roles  map[string]*role
	frozen bool
}

// NewRoleManager returns an empty role manager over registry.
func NewRoleManager(registry *Registry) *RoleManager {
	return &RoleManager{
		registry: registry,
		roles:    make(map[string]*role),
	}
}

// RegisterRole adds a role with its directly granted permission slugs.
// parent is empty for a root role, otherwise it must already be
// registered. Every slug must exist in the registry.
func (rm *RoleManager) RegisterRole(name, parent string, slugs ...string) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.frozen {
		return errors.New("role manager frozen")
	}
	if name == "" {
		return errors.New("role name must not be empty")
	}
	if _, exists := rm.roles[name]; exists {
		return errors.New("role already registered: " + name)
	}
	if parent != "" {
		if _, ok := rm.roles[parent]; !ok {
			return errors.New("parent role not registered: " + parent)
		}
	}

	direct := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		if _, ok := rm.registry.Lookup(slug); !ok {
			return errors.New("permission not registered: " + slug)
		}
		direct[slug] = struct{}{}
	}

	rm.roles[name] = &role{name: name, parent: parent, direct: direct}
	return nil
}

// EffectivePermissions resolves the union of a role's direct grants and
// every ancestor's grants, sorted and deduplicated. Unknown roles resolve
// to an error, never to a permissive default.
func (rm *RoleManager) EffectivePermissions(name string) ([]string, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	r, ok := rm.roles[name]
	if !ok {
		return nil, errors.New("unknown role: " + name)
	}

	effective := make(map[string]struct{})
	visited := make(map[string]struct{})

	for r != nil {
		if _, seen := visited[r.name]; seen {
			return nil, errors.New("role hierarchy cycle at: " + r.name)
		}
		visited[r.name] = struct{}{}

		for slug := range r.direct {
			effective[slug] = struct{}{}
		}

		if r.parent == "" {
			break
		}
		next, ok := rm.roles[r.parent]
		if !ok {
			return nil, errors.New("dangling parent role: " + r.parent)
		}
		r = next
	}

	out := make([]string, 0, len(effective))
	for slug := range effective {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out, nil
}

// Allowed reports whether the role's effective set contains the slug.
// Any resolution failure is a denial.
func (rm *RoleManager) Allowed(name, slug string) bool {
	perms, err := rm.EffectivePermissions(name)
	if err != nil {
		return false
	}
	for _, have := range perms {
		if have == slug {
			return true
		}
	}
	return false
}

// Known reports whether the role exists.
func (rm *RoleManager) Known(name string) bool {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	_, ok := rm.roles[name]
	return ok
}

// Freeze prevents further role registrations.
func (rm *RoleManager) Freeze() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.frozen = true
}

// Count returns the number of registered roles.
func (rm *RoleManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.roles)
}
