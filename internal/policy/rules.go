// Package policy holds the authorization rules for ticket operations.
// Every function is pure: it inspects the principal and, where relevant,
// the ticket, and returns a forbidden error with a readable reason.
package policy

import (
	"github.com/campus360/incident-service/internal/domain"
	apperrors "github.com/campus360/incident-service/pkg/util"
)

// CanCreateTicket allows any authenticated principal.
func CanCreateTicket(p domain.Principal) error {
	if p.SubjectID == "" {
		return apperrors.NewForbidden("authenticated principal required")
	}
	return nil
}

// CanReadTicket allows administrators and the ticket's reporter.
func CanReadTicket(p domain.Principal, t *domain.Ticket) error {
	if p.IsAdministrator() || isReporter(p, t) {
		return nil
	}
	return apperrors.NewForbidden("cannot access tickets reported by other users")
}

// ScopeReporter returns the reporter id a listing must be restricted to.
// Administrators see everything and get the requested filter back unchanged.
func ScopeReporter(p domain.Principal, requested *string) *string {
	if p.IsAdministrator() {
		return requested
	}
	own := p.SubjectID
	return &own
}

func CanUpdateTicket(p domain.Principal) error {
	return requireAdministrator(p, "only administrators can edit tickets")
}

func CanAssignResponsible(p domain.Principal) error {
	return requireAdministrator(p, "only administrators can assign a responsible")
}

func CanChangeState(p domain.Principal) error {
	return requireAdministrator(p, "only administrators can change ticket state")
}

func CanDeleteTicket(p domain.Principal) error {
	return requireAdministrator(p, "only administrators can delete tickets")
}

// CanComment allows administrators and the ticket's reporter.
func CanComment(p domain.Principal, t *domain.Ticket) error {
	if p.IsAdministrator() || isReporter(p, t) {
		return nil
	}
	return apperrors.NewForbidden("only the ticket reporter can comment")
}

// CanSeeInternalComments is a filter, not a gate: callers drop internal
// comments when it returns false.
func CanSeeInternalComments(p domain.Principal) bool {
	return p.IsAdministrator()
}

// CanPostInternalComment restricts internal notes to administrators.
func CanPostInternalComment(p domain.Principal) error {
	return requireAdministrator(p, "only administrators can post internal comments")
}

func CanManageCatalog(p domain.Principal) error {
	return requireAdministrator(p, "only administrators can manage catalogs")
}

func CanListTechnicians(p domain.Principal) error {
	return requireAdministrator(p, "only administrators can list technicians")
}

// RequireTechnician allows technicians and administrators.
func RequireTechnician(p domain.Principal) error {
	if p.IsTechnician() {
		return nil
	}
	return apperrors.NewForbidden("technician or administrator role required")
}

func requireAdministrator(p domain.Principal, reason string) error {
	if p.IsAdministrator() {
		return nil
	}
	return apperrors.NewForbidden(reason)
}

func isReporter(p domain.Principal, t *domain.Ticket) bool {
	return t != nil && p.SubjectID != "" && t.ReporterID == p.SubjectID
}
