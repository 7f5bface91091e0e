package domain

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"administrador":   RoleAdministrator,
		"Admin":           RoleAdministrator,
		" administrator ": RoleAdministrator,
		"tecnico":         RoleTechnician,
		"technician":      RoleTechnician,
		"estudiante":      RoleUser,
		"superuser":       RoleUser,
		"":                RoleUser,
	}
	for raw, want := range cases {
		if got := ParseRole(raw); got != want {
			t.Fatalf("ParseRole(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestPrincipalName(t *testing.T) {
	p := Principal{SubjectID: "u1", Email: "u1@example.com"}
	if p.Name() != "u1@example.com" {
		t.Fatalf("expected email fallback, got %q", p.Name())
	}
	p.DisplayName = "Ana"
	if p.Name() != "Ana" {
		t.Fatalf("expected display name, got %q", p.Name())
	}
}

func TestTicketCloneIsDeep(t *testing.T) {
	cat := int64(3)
	orig := Ticket{ID: 1, CategoryID: &cat}
	c := orig.Clone()
	*c.CategoryID = 9
	if *orig.CategoryID != 3 {
		t.Fatalf("clone shares category pointer")
	}
}
