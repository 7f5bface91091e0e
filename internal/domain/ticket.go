package domain

import "time"

// State catalog codes seeded for the ticket lifecycle.
const (
	StatePending    = "pendiente"
	StateAssigned   = "asignada"
	StateInProgress = "en_proceso"
	StateResolved   = "resuelta"
	StateClosed     = "cerrada"
	StateCancelled  = "cancelada"
)

// Priority catalog codes.
const (
	PriorityLow    = "baja"
	PriorityMedium = "media"
	PriorityHigh   = "alta"
	PriorityUrgent = "urgente"
)

// MaxTitleLength bounds ticket titles.
const MaxTitleLength = 200

// Ticket is the aggregate for incident reports.
type Ticket struct {
	ID            int64
	Title         string
	Description   string
	StateID       int64
	PriorityID    int64
	CategoryID    *int64
	LocationID    *int64
	ReporterID    string
	ResponsibleID *string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	ResolvedAt    *time.Time
}

// Clone returns a deep copy so callers can diff against the original.
func (t Ticket) Clone() Ticket {
	out := t
	out.CategoryID = cloneInt64(t.CategoryID)
	out.LocationID = cloneInt64(t.LocationID)
	out.ResponsibleID = cloneString(t.ResponsibleID)
	out.UpdatedAt = cloneTime(t.UpdatedAt)
	out.ResolvedAt = cloneTime(t.ResolvedAt)
	return out
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
