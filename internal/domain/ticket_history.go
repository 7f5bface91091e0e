package domain

import "time"

// Audit actions recorded in a ticket's history.
const (
	ActionCreated             = "created"
	ActionResponsibleAssigned = "responsable_asignado"
	ActionStateChanged        = "estado_cambiado"
	ActionCommentAdded        = "comentario_agregado"
)

// Ticket fields tracked by update entries.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPriority    = "priority"
	FieldCategory    = "category"
	FieldLocation    = "location"
)

// FieldUpdatedAction returns the action tag for a changed field.
func FieldUpdatedAction(field string) string {
	return field + "_updated"
}

// AuditEntry is an immutable audit trail entry.
type AuditEntry struct {
	ID          int64
	TicketID    int64
	Action      string
	ActorID     string
	Description *string
	OldValue    *string
	NewValue    *string
	CreatedAt   time.Time
}
