package events

import (
	"time"

	"github.com/campus360/incident-service/internal/domain"
)

// EventType enumerates supported event identifiers. Values double as
// broker routing keys.
type EventType string

const (
	EventTicketCreated      EventType = "ticket.created"
	EventTicketUpdated      EventType = "ticket.updated"
	EventTicketAssigned     EventType = "ticket.assigned"
	EventTicketStateChanged EventType = "ticket.state_changed"
	EventTicketCommentAdded EventType = "ticket.comment_added"
	EventTicketDeleted      EventType = "ticket.deleted"
)

// AllEventTypes lists every event the ticket engine emits.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketAssigned,
	EventTicketStateChanged,
	EventTicketCommentAdded,
	EventTicketDeleted,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	SubjectID string      `json:"subject_id"`
	Role      domain.Role `json:"role"`
}

// Event represents a domain event emitted after a committed mutation.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string  `json:"title"`
	Priority string  `json:"priority"`
	Category *string `json:"category,omitempty"`
	Location *string `json:"location,omitempty"`
}

// TicketUpdatedPayload lists the fields that changed.
type TicketUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldResponsibleID *string `json:"old_responsible_id,omitempty"`
	NewResponsibleID string  `json:"new_responsible_id"`
	StateAdvanced    bool    `json:"state_advanced"`
}

// TicketStateChangedPayload payload.
type TicketStateChangedPayload struct {
	OldState string `json:"old_state"`
	NewState string `json:"new_state"`
	Comment  string `json:"comment,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID   int64  `json:"comment_id"`
	AuthorID    string `json:"author_id"`
	Internal    bool   `json:"internal"`
	BodyPreview string `json:"body_preview"`
}
