package domain

import (
	"strings"
	"time"
)

// Role is the closed set of roles the service distinguishes.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleTechnician    Role = "technician"
	RoleUser          Role = "user"
)

// ParseRole decodes a role string supplied by the identity provider.
// Unknown values map to RoleUser.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "administrador", "administrator", "admin":
		return RoleAdministrator
	case "tecnico", "técnico", "technician":
		return RoleTechnician
	default:
		return RoleUser
	}
}

// Principal is a verified caller as reported by the identity provider.
type Principal struct {
	SubjectID   string
	Email       string
	DisplayName string
	Role        Role
}

// IsAdministrator reports whether the principal holds the administrator role.
func (p Principal) IsAdministrator() bool {
	return p.Role == RoleAdministrator
}

// IsTechnician reports technician-or-better.
func (p Principal) IsTechnician() bool {
	return p.Role == RoleTechnician || p.Role == RoleAdministrator
}

// Name returns the display name, falling back to email and then the subject id.
func (p Principal) Name() string {
	if strings.TrimSpace(p.DisplayName) != "" {
		return p.DisplayName
	}
	if p.Email != "" {
		return p.Email
	}
	return p.SubjectID
}

// KnownPrincipal is a principal persisted after first contact.
type KnownPrincipal struct {
	Principal
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
