package repository

import (
	"context"

	"github.com/campus360/incident-service/internal/domain"
)

// TicketHistoryRepository stores audit entries. Entries are never updated.
type TicketHistoryRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	// ListByTicket returns entries most recent first.
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.AuditEntry, error)
}

type ticketHistoryRepository struct {
	db dbtx
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(db dbtx) TicketHistoryRepository {
	return &ticketHistoryRepository{db: db}
}

func (r *ticketHistoryRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO ticket_history (ticket_id, action, actor_id, description, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.TicketID,
		entry.Action,
		entry.ActorID,
		entry.Description,
		entry.OldValue,
		entry.NewValue,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.AuditEntry, error) {
	const query = `
        SELECT id, ticket_id, action, actor_id, description, old_value, new_value, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Action,
			&entry.ActorID,
			&entry.Description,
			&entry.OldValue,
			&entry.NewValue,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
