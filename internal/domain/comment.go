package domain

import "time"

// Comment is a note attached to a ticket. Internal comments are hidden from non-administrators.
type Comment struct {
	ID        int64
	TicketID  int64
	AuthorID  string
	Content   string
	Internal  bool
	CreatedAt time.Time
}

// Attachment stores metadata for files uploaded against a ticket.
type Attachment struct {
	ID         int64
	TicketID   int64
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
	UploaderID string
	CreatedAt  time.Time
}
