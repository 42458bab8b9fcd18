package permission

// Role names installed by Seed.
const (
	RolePassenger = "PASSENGER"
	RoleAdmin     = "ADMIN"
)

// Permission slugs installed by Seed.
const (
	SlugFlightSearch  = "flight:search"
	SlugProfileUpdate = "profile:update"
	SlugAuditRead     = "audit:read"
)

// Seed installs the default permission set and role tree: PASSENGER gets
// flight search and profile update, ADMIN inherits PASSENGER and adds
// audit read. Both registry and manager come back frozen.
func Seed() (*Registry, *RoleManager, error) {
	registry := NewRegistry()

	for _, p := range []Permission{
		{Resource: "flight", Action: "search"},
		{Resource: "profile", Action: "update"},
		{Resource: "audit", Action: "read"},
	} {
		if _, err := registry.Register(p.Resource, p.Action); err != nil {
			return nil, nil, err
		}
	}
	registry.Freeze()

	manager := NewRoleManager(registry)
	if err := manager.RegisterRole(RolePassenger, "", SlugFlightSearch, SlugProfileUpdate); err != nil {
		return nil, nil, err
	}
	if err := manager.RegisterRole(RoleAdmin, RolePassenger, SlugAuditRead); err != nil {
		return nil, nil, err
	}
	manager.Freeze()

	return registry, manager, nil
}
