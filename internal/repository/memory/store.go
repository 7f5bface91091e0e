// Package memory provides an in-process implementation of the repository
// interfaces. It backs local development when no database is configured and
// the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campus360/incident-service/internal/domain"
	"github.com/campus360/incident-service/internal/repository"
)

// Store holds every table in memory. Transactions are serialized by a single
// writer lock and work on a copy of the ticket tables that replaces the
// committed copy only when the callback succeeds.
type Store struct {
	mu   sync.Mutex
	data *tables
	now  func() time.Time

	catalog    *catalogTable
	principals *principalTable
}

// NewStore builds an empty store. A nil clock defaults to time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		data:       newTables(),
		now:        now,
		catalog:    newCatalogTable(now),
		principals: newPrincipalTable(now),
	}
}

// Catalog exposes the catalog table.
func (s *Store) Catalog() repository.CatalogRepository { return s.catalog }

// Principals exposes the principal table.
func (s *Store) Principals() repository.PrincipalRepository { return s.principals }

// WithTx implements repository.Store.
func (s *Store) WithTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.data.clone()
	if err := fn(txRepositories{t: work, now: s.now}); err != nil {
		return err
	}
	s.data = work
	return nil
}

type tables struct {
	tickets     map[int64]domain.Ticket
	history     []domain.AuditEntry
	comments    []domain.Comment
	attachments []domain.Attachment

	nextTicket     int64
	nextHistory    int64
	nextComment    int64
	nextAttachment int64
}

func newTables() *tables {
	return &tables{tickets: map[int64]domain.Ticket{}}
}

func (t *tables) clone() *tables {
	out := *t
	out.tickets = make(map[int64]domain.Ticket, len(t.tickets))
	for id, ticket := range t.tickets {
		out.tickets[id] = ticket.Clone()
	}
	out.history = append([]domain.AuditEntry(nil), t.history...)
	out.comments = append([]domain.Comment(nil), t.comments...)
	out.attachments = append([]domain.Attachment(nil), t.attachments...)
	return &out
}

type txRepositories struct {
	t   *tables
	now func() time.Time
}

func (r txRepositories) Tickets() repository.TicketRepository { return ticketTable(r) }

func (r txRepositories) History() repository.TicketHistoryRepository { return historyTable(r) }

func (r txRepositories) Comments() repository.CommentRepository { return commentTable(r) }

func (r txRepositories) Attachments() repository.AttachmentRepository { return attachmentTable(r) }

type ticketTable txRepositories

func (r ticketTable) Create(_ context.Context, ticket *domain.Ticket) error {
	r.t.nextTicket++
	ticket.ID = r.t.nextTicket
	ticket.CreatedAt = r.now()
	r.t.tickets[ticket.ID] = ticket.Clone()
	return nil
}

func (r ticketTable) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.t.tickets[ticket.ID]; !ok {
		return repository.ErrNotFound
	}
	now := r.now()
	ticket.UpdatedAt = &now
	r.t.tickets[ticket.ID] = ticket.Clone()
	return nil
}

func (r ticketTable) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.t.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := ticket.Clone()
	return &c, nil
}

// GetForUpdate needs no row lock: the transaction already holds the store lock.
func (r ticketTable) GetForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r ticketTable) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	var matched []domain.Ticket
	for _, ticket := range r.t.tickets {
		if !matches(ticket, filter) {
			continue
		}
		matched = append(matched, ticket.Clone())
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Ticket{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r ticketTable) DeleteCascade(_ context.Context, id int64) error {
	if _, ok := r.t.tickets[id]; !ok {
		return repository.ErrNotFound
	}
	r.t.attachments = dropByTicket(r.t.attachments, id, func(a domain.Attachment) int64 { return a.TicketID })
	r.t.comments = dropByTicket(r.t.comments, id, func(c domain.Comment) int64 { return c.TicketID })
	r.t.history = dropByTicket(r.t.history, id, func(e domain.AuditEntry) int64 { return e.TicketID })
	delete(r.t.tickets, id)
	return nil
}

func matches(t domain.Ticket, f repository.TicketFilter) bool {
	if f.StateID != nil && t.StateID != *f.StateID {
		return false
	}
	if f.PriorityID != nil && t.PriorityID != *f.PriorityID {
		return false
	}
	if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
		return false
	}
	if f.ReporterID != nil && t.ReporterID != *f.ReporterID {
		return false
	}
	if f.ResponsibleID != nil && (t.ResponsibleID == nil || *t.ResponsibleID != *f.ResponsibleID) {
		return false
	}
	return true
}

func dropByTicket[T any](items []T, ticketID int64, key func(T) int64) []T {
	out := items[:0]
	for _, item := range items {
		if key(item) != ticketID {
			out = append(out, item)
		}
	}
	return out
}

type historyTable txRepositories

func (r historyTable) Create(_ context.Context, entry *domain.AuditEntry) error {
	r.t.nextHistory++
	entry.ID = r.t.nextHistory
	entry.CreatedAt = r.now()
	r.t.history = append(r.t.history, *entry)
	return nil
}

func (r historyTable) ListByTicket(_ context.Context, ticketID int64) ([]domain.AuditEntry, error) {
	var result []domain.AuditEntry
	for _, entry := range r.t.history {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

type commentTable txRepositories

func (r commentTable) Create(_ context.Context, comment *domain.Comment) error {
	r.t.nextComment++
	comment.ID = r.t.nextComment
	comment.CreatedAt = r.now()
	r.t.comments = append(r.t.comments, *comment)
	return nil
}

func (r commentTable) ListByTicket(_ context.Context, ticketID int64, includeInternal bool) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, comment := range r.t.comments {
		if comment.TicketID != ticketID || (comment.Internal && !includeInternal) {
			continue
		}
		result = append(result, comment)
	}
	return result, nil
}

type attachmentTable txRepositories

func (r attachmentTable) Create(_ context.Context, attachment *domain.Attachment) error {
	r.t.nextAttachment++
	attachment.ID = r.t.nextAttachment
	attachment.CreatedAt = r.now()
	r.t.attachments = append(r.t.attachments, *attachment)
	return nil
}

func (r attachmentTable) ListByTicket(_ context.Context, ticketID int64) ([]domain.Attachment, error) {
	var result []domain.Attachment
	for _, attachment := range r.t.attachments {
		if attachment.TicketID == ticketID {
			result = append(result, attachment)
		}
	}
	return result, nil
}
