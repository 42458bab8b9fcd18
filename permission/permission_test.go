package permission

import (
	"testing"
)

func TestSlugRoundTrip(t *testing.T) {
	p := Permission{Resource: "flight", Action: "search"}
	if p.Slug() != "flight:search" {
		t.Fatalf("Slug = %q", p.Slug())
	}

	parsed, err := ParseSlug("flight:search")
	if err != nil {
		t.Fatalf("ParseSlug: %v", err)
	}
	if parsed != p {
		t.Fatalf("parsed = %+v", parsed)
	}

	for _, bad := range []string{"", "flight", ":search", "flight:"} {
		if _, err := ParseSlug(bad); err == nil {
			t.Fatalf("ParseSlug(%q) accepted", bad)
		}
	}
}

func TestRegistryFreeze(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("flight", "search"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := r.Register("flight", "search"); err == nil {
		t.Fatal("duplicate registration accepted")
	}

	r.Freeze()
	if _, err := r.Register("flight", "book"); err == nil {
		t.Fatal("registration after Freeze accepted")
	}
	if r.Count() != 1 {
		t.Fatalf("Count = %d", r.Count())
	}
}

func TestEffectivePermissionsInheritance(t *testing.T) {
	_, rm, err := Seed()
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}

	passenger, err := rm.EffectivePermissions(RolePassenger)
	if err != nil {
		t.Fatalf("EffectivePermissions: %v", err)
	}
	wantPassenger := []string{SlugFlightSearch, SlugProfileUpdate}
	if len(passenger) != len(wantPassenger) {
		t.Fatalf("passenger perms = %v", passenger)
	}
	for i, slug := range wantPassenger {
		if passenger[i] != slug {
			t.Fatalf("passenger perms = %v, want %v", passenger, wantPassenger)
		}
	}

	admin, err := rm.EffectivePermissions(RoleAdmin)
	if err != nil {
		t.Fatalf("EffectivePermissions: %v", err)
	}
	want := []string{SlugAuditRead, SlugFlightSearch, SlugProfileUpdate}
	if len(admin) != len(want) {
		t.Fatalf("admin perms = %v", admin)
	}
	for i, slug := range want {
		if admin[i] != slug {
			t.Fatalf("admin perms = %v, want %v", admin, want)
		}
	}
}

func TestEffectivePermissionsDeduplicates(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("doc", "read"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := r.Register("doc", "write"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.Freeze()

	rm := NewRoleManager(r)
	if err := rm.RegisterRole("viewer", "", "doc:read"); err != nil {
		t.Fatalf("RegisterRole: %v", err)
	}
	// child re-grants a permission the parent already holds
	if err := rm.RegisterRole("editor", "viewer", "doc:read", "doc:write"); err != nil {
		t.Fatalf("RegisterRole: %v", err)
	}

	perms, err := rm.EffectivePermissions("editor")
	if err != nil {
		t.Fatalf("EffectivePermissions: %v", err)
	}
	if len(perms) != 2 {
		t.Fatalf("perms = %v, want 2 unique entries", perms)
	}
}

func TestUnknownRoleFailsClosed(t *testing.T) {
	_, rm, err := Seed()
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if _, err := rm.EffectivePermissions("GHOST"); err == nil {
		t.Fatal("unknown role resolved")
	}
	if rm.Allowed("GHOST", SlugFlightSearch) {
		t.Fatal("unknown role allowed")
	}
}

func TestRegisterRoleValidation(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("doc", "read"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.Freeze()
	rm := NewRoleManager(r)

	if err := rm.RegisterRole("orphan", "missing-parent", "doc:read"); err == nil {
		t.Fatal("role with unregistered parent accepted")
	}
	if err := rm.RegisterRole("viewer", "", "doc:delete"); err == nil {
		t.Fatal("role with unregistered permission accepted")
	}

	if err := rm.RegisterRole("viewer", "", "doc:read"); err != nil {
		t.Fatalf("RegisterRole: %v", err)
	}
	rm.Freeze()
	if err := rm.RegisterRole("late", "", "doc:read"); err == nil {
		t.Fatal("registration after Freeze accepted")
	}
}

func TestAllowed(t *testing.T) {
	_, rm, err := Seed()
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if !rm.Allowed(RolePassenger, SlugFlightSearch) {
		t.Fatal("passenger denied flight:search")
	}
	if rm.Allowed(RolePassenger, SlugAuditRead) {
		t.Fatal("passenger allowed audit:read")
	}
	if !rm.Allowed(RoleAdmin, SlugFlightSearch) {
		t.Fatal("admin denied inherited flight:search")
	}
	if !rm.Allowed(RoleAdmin, SlugAuditRead) {
		t.Fatal("admin denied audit:read")
	}
}
