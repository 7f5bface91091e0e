package dto

import "time"

// CreateTicketRequest payload. Catalog references are codes.
type CreateTicketRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    *string `json:"priority"`
	Category    *string `json:"category"`
	Location    *string `json:"location"`
}

// UpdateTicketRequest payload; omitted fields stay untouched.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Category    *string `json:"category"`
	Location    *string `json:"location"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	ResponsibleID string  `json:"responsible_id"`
	Comment       *string `json:"comment"`
}

// ChangeStateRequest payload.
type ChangeStateRequest struct {
	State   string  `json:"state"`
	Comment *string `json:"comment"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content  string `json:"content"`
	Internal bool   `json:"internal"`
}

// CatalogRef is the compact form of a catalog entry embedded in tickets.
type CatalogRef struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// TicketResponse is the resolved view of a ticket.
type TicketResponse struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	State         *CatalogRef `json:"state"`
	Priority      *CatalogRef `json:"priority"`
	Category      *CatalogRef `json:"category"`
	Location      *CatalogRef `json:"location"`
	ReporterID    string      `json:"reporter_id"`
	ResponsibleID *string     `json:"responsible_id"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     *time.Time  `json:"updated_at"`
	ResolvedAt    *time.Time  `json:"resolved_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketResponse
	History     []AuditEntryResponse `json:"history"`
	Comments    []CommentResponse    `json:"comments"`
	Attachments []AttachmentResponse `json:"attachments"`
}

// TicketPageResponse is one page of a listing.
type TicketPageResponse struct {
	Items   []TicketResponse `json:"items"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
	HasMore bool             `json:"has_more"`
}

// AuditEntryResponse is one audit trail entry.
type AuditEntryResponse struct {
	ID          int64     `json:"id"`
	Action      string    `json:"action"`
	ActorID     string    `json:"actor_id"`
	Description *string   `json:"description"`
	OldValue    *string   `json:"old_value"`
	NewValue    *string   `json:"new_value"`
	CreatedAt   time.Time `json:"created_at"`
}

// CommentResponse represents a comment.
type CommentResponse struct {
	ID        int64     `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	Internal  bool      `json:"internal"`
	CreatedAt time.Time `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploaderID string    `json:"uploader_id"`
	CreatedAt  time.Time `json:"created_at"`
}
