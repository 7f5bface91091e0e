package service

import (
	"context"
	"fmt"

	"github.com/campus360/incident-service/internal/domain"
	"github.com/campus360/incident-service/internal/repository"
)

// AuditTrail appends and reads ticket history through the repositories of
// the caller's transaction, so a failed append aborts the whole operation.
type AuditTrail struct{}

// NewAuditTrail constructs the trail.
func NewAuditTrail() *AuditTrail {
	return &AuditTrail{}
}

// Append writes one entry. Entries are never updated afterwards.
func (a *AuditTrail) Append(ctx context.Context, repos repository.Repositories, entry *domain.AuditEntry) error {
	if entry.TicketID == 0 || entry.Action == "" {
		return fmt.Errorf("audit entry requires ticket id and action")
	}
	if err := repos.History().Create(ctx, entry); err != nil {
		return fmt.Errorf("append %s entry: %w", entry.Action, err)
	}
	return nil
}

// List returns a ticket's entries most recent first.
func (a *AuditTrail) List(ctx context.Context, repos repository.Repositories, ticketID int64) ([]domain.AuditEntry, error) {
	entries, err := repos.History().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return entries, nil
}

func newAuditEntry(ticketID int64, action string, actor domain.Principal, description string, oldValue, newValue *string) *domain.AuditEntry {
	entry := &domain.AuditEntry{
		TicketID: ticketID,
		Action:   action,
		ActorID:  actor.SubjectID,
		OldValue: oldValue,
		NewValue: newValue,
	}
	if description != "" {
		entry.Description = &description
	}
	return entry
}
