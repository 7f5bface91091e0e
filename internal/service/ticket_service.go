package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus360/incident-service/internal/domain"
	"github.com/campus360/incident-service/internal/events"
	"github.com/campus360/incident-service/internal/policy"
	"github.com/campus360/incident-service/internal/repository"
	apperrors "github.com/campus360/incident-service/pkg/util"
)

// TicketService is the ticket lifecycle engine. Every mutation runs in one
// store transaction that locks the ticket row, writes the new row together
// with its audit entries and commits; events go out only after commit.
type TicketService struct {
	store        repository.Store
	resolver     *CatalogResolver
	principals   repository.PrincipalRepository
	audit        *AuditTrail
	transitions  *TransitionTable
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	now          func() time.Time
	defaultLimit int
	maxLimit     int
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store        repository.Store
	Resolver     *CatalogResolver
	Principals   repository.PrincipalRepository
	Audit        *AuditTrail
	Transitions  *TransitionTable
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Clock        func() time.Time
	DefaultLimit int
	MaxLimit     int
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title        string
	Description  string
	PriorityCode *string
	CategoryCode *string
	LocationCode *string
}

// TicketUpdateInput carries the fields to change; nil means untouched.
type TicketUpdateInput struct {
	Title        *string
	Description  *string
	PriorityCode *string
	CategoryCode *string
	LocationCode *string
}

// TicketListFilter describes listing filters. Catalog filters are codes.
type TicketListFilter struct {
	StateCode     *string
	PriorityCode  *string
	CategoryCode  *string
	ReporterID    *string
	ResponsibleID *string
	Limit         int
	Offset        int
}

// TicketView is a ticket with its catalog references resolved.
type TicketView struct {
	Ticket   domain.Ticket
	State    *domain.CatalogEntry
	Priority *domain.CatalogEntry
	Category *domain.CatalogEntry
	Location *domain.CatalogEntry
}

// TicketDetail is the full read model of one ticket.
type TicketDetail struct {
	TicketView
	History     []domain.AuditEntry
	Comments    []domain.Comment
	Attachments []domain.Attachment
}

// TicketPage is one page of a listing.
type TicketPage struct {
	Items   []TicketView
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		store:        deps.Store,
		resolver:     deps.Resolver,
		principals:   deps.Principals,
		audit:        deps.Audit,
		transitions:  deps.Transitions,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
		now:          deps.Clock,
		defaultLimit: deps.DefaultLimit,
		maxLimit:     deps.MaxLimit,
	}
	if svc.audit == nil {
		svc.audit = NewAuditTrail()
	}
	if svc.transitions == nil {
		svc.transitions = AllowAll()
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.defaultLimit <= 0 {
		svc.defaultLimit = 10
	}
	if svc.maxLimit <= 0 {
		svc.maxLimit = 100
	}
	return svc
}

// Create opens a ticket in the pendiente state.
func (s *TicketService) Create(ctx context.Context, actor domain.Principal, input TicketCreateInput) (*TicketView, error) {
	if err := policy.CanCreateTicket(actor); err != nil {
		return nil, err
	}
	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(input.Description)
	if err != nil {
		return nil, err
	}

	priorityCode := domain.PriorityMedium
	if input.PriorityCode != nil && strings.TrimSpace(*input.PriorityCode) != "" {
		priorityCode = strings.TrimSpace(*input.PriorityCode)
	}
	priority, err := s.resolveReference(ctx, domain.CatalogPriority, priorityCode)
	if err != nil {
		return nil, err
	}
	state, err := s.resolveBaselineState(ctx, domain.StatePending)
	if err != nil {
		return nil, err
	}
	category, err := s.resolveOptional(ctx, domain.CatalogCategory, input.CategoryCode)
	if err != nil {
		return nil, err
	}
	location, err := s.resolveOptional(ctx, domain.CatalogLocation, input.LocationCode)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		StateID:     state.ID,
		PriorityID:  priority.ID,
		ReporterID:  actor.SubjectID,
	}
	if category != nil {
		ticket.CategoryID = &category.ID
	}
	if location != nil {
		ticket.LocationID = &location.ID
	}

	err = s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		return s.audit.Append(ctx, repos, newAuditEntry(ticket.ID, domain.ActionCreated, actor, "Incidencia creada", nil, nil))
	})
	if err != nil {
		return nil, s.failure("create", 0, err)
	}

	s.logger.Info("ticket created",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("reporter_id", ticket.ReporterID),
		zap.String("priority", priority.Code))
	s.publishEvent(ctx, events.EventTicketCreated, ticket.ID, actor, events.TicketCreatedPayload{
		Title:    ticket.Title,
		Priority: priority.Code,
		Category: entryCode(category),
		Location: entryCode(location),
	})
	return &TicketView{Ticket: *ticket, State: state, Priority: priority, Category: category, Location: location}, nil
}

// Read returns the ticket with history, visible comments and attachments.
func (s *TicketService) Read(ctx context.Context, actor domain.Principal, id int64) (*TicketDetail, error) {
	var detail TicketDetail
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		ticket, err := s.loadTicket(ctx, repos, id, false)
		if err != nil {
			return err
		}
		if err := policy.CanReadTicket(actor, ticket); err != nil {
			return err
		}
		if detail.History, err = s.audit.List(ctx, repos, id); err != nil {
			return err
		}
		if detail.Comments, err = repos.Comments().ListByTicket(ctx, id, policy.CanSeeInternalComments(actor)); err != nil {
			return err
		}
		if detail.Attachments, err = repos.Attachments().ListByTicket(ctx, id); err != nil {
			return err
		}
		detail.Ticket = *ticket
		return nil
	})
	if err != nil {
		return nil, s.failure("read", id, err)
	}
	if detail.Comments == nil {
		detail.Comments = []domain.Comment{}
	}
	if detail.Attachments == nil {
		detail.Attachments = []domain.Attachment{}
	}
	view, err := s.view(ctx, detail.Ticket, nil)
	if err != nil {
		return nil, err
	}
	detail.TicketView = *view
	return &detail, nil
}

// List returns a page of tickets, newest first. Non-administrators only ever
// see tickets they reported.
func (s *TicketService) List(ctx context.Context, actor domain.Principal, filter TicketListFilter) (*TicketPage, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	page := &TicketPage{Items: []TicketView{}, Limit: limit, Offset: offset}

	repoFilter := repository.TicketFilter{
		ReporterID:    policy.ScopeReporter(actor, nonEmpty(filter.ReporterID)),
		ResponsibleID: nonEmpty(filter.ResponsibleID),
		Limit:         limit,
		Offset:        offset,
	}
	for _, f := range []struct {
		kind domain.CatalogKind
		code *string
		dest **int64
	}{
		{domain.CatalogState, filter.StateCode, &repoFilter.StateID},
		{domain.CatalogPriority, filter.PriorityCode, &repoFilter.PriorityID},
		{domain.CatalogCategory, filter.CategoryCode, &repoFilter.CategoryID},
	} {
		code := nonEmpty(f.code)
		if code == nil {
			continue
		}
		entry, err := s.resolver.Resolve(ctx, f.kind, *code)
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			// an unresolvable filter matches nothing
			return page, nil
		}
		if err != nil {
			return nil, err
		}
		id := entry.ID
		*f.dest = &id
	}

	var tickets []domain.Ticket
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		var err error
		tickets, page.Total, err = repos.Tickets().List(ctx, repoFilter)
		return err
	})
	if err != nil {
		return nil, s.failure("list", 0, err)
	}

	cache := map[catalogRef]*domain.CatalogEntry{}
	for _, ticket := range tickets {
		view, err := s.view(ctx, ticket, cache)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, *view)
	}
	page.HasMore = offset < page.Total && limit < page.Total-offset
	return page, nil
}

// Update applies the provided fields and records one entry per field whose
// value actually changed.
func (s *TicketService) Update(ctx context.Context, actor domain.Principal, id int64, input TicketUpdateInput) (*TicketView, error) {
	if err := policy.CanUpdateTicket(actor); err != nil {
		return nil, err
	}
	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		input.Title = &title
	}
	if input.Description != nil {
		description, err := validateDescription(*input.Description)
		if err != nil {
			return nil, err
		}
		input.Description = &description
	}

	var (
		updated domain.Ticket
		changed []string
	)
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		ticket, err := s.loadTicket(ctx, repos, id, true)
		if err != nil {
			return err
		}

		var entries []*domain.AuditEntry
		record := func(field string, oldValue, newValue *string) {
			entries = append(entries, newAuditEntry(ticket.ID, domain.FieldUpdatedAction(field), actor,
				"Campo "+field+" actualizado", oldValue, newValue))
			changed = append(changed, field)
		}

		if input.Title != nil && *input.Title != ticket.Title {
			old := ticket.Title
			ticket.Title = *input.Title
			record(domain.FieldTitle, &old, input.Title)
		}
		if input.Description != nil && *input.Description != ticket.Description {
			old := ticket.Description
			ticket.Description = *input.Description
			record(domain.FieldDescription, &old, input.Description)
		}
		if input.PriorityCode != nil {
			priority, err := s.resolveReference(ctx, domain.CatalogPriority, *input.PriorityCode)
			if err != nil {
				return err
			}
			if priority.ID != ticket.PriorityID {
				old, err := s.codeOf(ctx, domain.CatalogPriority, &ticket.PriorityID)
				if err != nil {
					return err
				}
				ticket.PriorityID = priority.ID
				record(domain.FieldPriority, old, &priority.Code)
			}
		}
		if input.CategoryCode != nil {
			category, err := s.resolveReference(ctx, domain.CatalogCategory, *input.CategoryCode)
			if err != nil {
				return err
			}
			if ticket.CategoryID == nil || *ticket.CategoryID != category.ID {
				old, err := s.codeOf(ctx, domain.CatalogCategory, ticket.CategoryID)
				if err != nil {
					return err
				}
				ticket.CategoryID = &category.ID
				record(domain.FieldCategory, old, &category.Code)
			}
		}
		if input.LocationCode != nil {
			location, err := s.resolveReference(ctx, domain.CatalogLocation, *input.LocationCode)
			if err != nil {
				return err
			}
			if ticket.LocationID == nil || *ticket.LocationID != location.ID {
				old, err := s.codeOf(ctx, domain.CatalogLocation, ticket.LocationID)
				if err != nil {
					return err
				}
				ticket.LocationID = &location.ID
				record(domain.FieldLocation, old, &location.Code)
			}
		}

		if len(entries) > 0 {
			if err := repos.Tickets().Update(ctx, ticket); err != nil {
				return err
			}
			for _, entry := range entries {
				if err := s.audit.Append(ctx, repos, entry); err != nil {
					return err
				}
			}
		}
		updated = *ticket
		return nil
	})
	if err != nil {
		return nil, s.failure("update", id, err)
	}

	if len(changed) > 0 {
		s.logger.Info("ticket updated", zap.Int64("ticket_id", id), zap.Strings("fields", changed))
		s.publishEvent(ctx, events.EventTicketUpdated, id, actor, events.TicketUpdatedPayload{Fields: changed})
	}
	return s.view(ctx, updated, nil)
}

// AssignResponsible sets the responsible principal. A pending ticket moves
// to asignada in the same transaction; the single responsable_asignado entry
// covers both effects.
func (s *TicketService) AssignResponsible(ctx context.Context, actor domain.Principal, id int64, responsibleID string, comment *string) (*TicketView, error) {
	if err := policy.CanAssignResponsible(actor); err != nil {
		return nil, err
	}
	responsibleID = strings.TrimSpace(responsibleID)
	if responsibleID == "" {
		return nil, apperrors.NewValidationError("responsible_id is required", nil)
	}

	var (
		updated  domain.Ticket
		previous *string
		advanced bool
	)
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		ticket, err := s.loadTicket(ctx, repos, id, true)
		if err != nil {
			return err
		}
		responsible, err := s.principals.GetByID(ctx, responsibleID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewInvalidReference("responsible", responsibleID)
			}
			return err
		}
		current, err := s.resolver.Get(ctx, domain.CatalogState, ticket.StateID)
		if err != nil {
			return err
		}

		previous = assignResponsible(ticket, responsible.SubjectID)
		if current.Code == domain.StatePending {
			target, err := s.resolveBaselineState(ctx, domain.StateAssigned)
			if err != nil {
				return err
			}
			if err := applyTransition(s.transitions, ticket, current, target, s.now()); err != nil {
				return err
			}
			advanced = true
		}
		if err := repos.Tickets().Update(ctx, ticket); err != nil {
			return err
		}

		description := "Responsable asignado: " + responsible.Name()
		if text := nonEmpty(comment); text != nil {
			description = *text
		}
		oldName, err := s.principalName(ctx, previous)
		if err != nil {
			return err
		}
		newName := responsible.Name()
		if err := s.audit.Append(ctx, repos, newAuditEntry(ticket.ID, domain.ActionResponsibleAssigned, actor, description, oldName, &newName)); err != nil {
			return err
		}
		updated = *ticket
		return nil
	})
	if err != nil {
		return nil, s.failure("assign", id, err)
	}

	s.logger.Info("ticket assigned",
		zap.Int64("ticket_id", id),
		zap.String("responsible_id", responsibleID),
		zap.Bool("state_advanced", advanced))
	s.publishEvent(ctx, events.EventTicketAssigned, id, actor, events.TicketAssignedPayload{
		OldResponsibleID: previous,
		NewResponsibleID: responsibleID,
		StateAdvanced:    advanced,
	})
	return s.view(ctx, updated, nil)
}

// ChangeState moves the ticket to the state named by stateCode.
func (s *TicketService) ChangeState(ctx context.Context, actor domain.Principal, id int64, stateCode string, comment *string) (*TicketView, error) {
	if err := policy.CanChangeState(actor); err != nil {
		return nil, err
	}

	var (
		updated         domain.Ticket
		current, target *domain.CatalogEntry
	)
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		ticket, err := s.loadTicket(ctx, repos, id, true)
		if err != nil {
			return err
		}
		if target, err = s.resolveReference(ctx, domain.CatalogState, stateCode); err != nil {
			return err
		}
		if current, err = s.resolver.Get(ctx, domain.CatalogState, ticket.StateID); err != nil {
			return err
		}
		if err := applyTransition(s.transitions, ticket, current, target, s.now()); err != nil {
			return err
		}
		if err := repos.Tickets().Update(ctx, ticket); err != nil {
			return err
		}

		description := "Estado cambiado a " + target.Name
		if text := nonEmpty(comment); text != nil {
			description = *text
		}
		if err := s.audit.Append(ctx, repos, newAuditEntry(ticket.ID, domain.ActionStateChanged, actor, description, &current.Name, &target.Name)); err != nil {
			return err
		}
		updated = *ticket
		return nil
	})
	if err != nil {
		return nil, s.failure("change_state", id, err)
	}

	payload := events.TicketStateChangedPayload{OldState: current.Code, NewState: target.Code}
	if text := nonEmpty(comment); text != nil {
		payload.Comment = *text
	}
	s.logger.Info("ticket state changed",
		zap.Int64("ticket_id", id),
		zap.String("from", current.Code),
		zap.String("to", target.Code))
	s.publishEvent(ctx, events.EventTicketStateChanged, id, actor, payload)
	return s.view(ctx, updated, nil)
}

// Delete purges the ticket with its history, comments and attachments.
func (s *TicketService) Delete(ctx context.Context, actor domain.Principal, id int64) error {
	if err := policy.CanDeleteTicket(actor); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if _, err := s.loadTicket(ctx, repos, id, true); err != nil {
			return err
		}
		return repos.Tickets().DeleteCascade(ctx, id)
	})
	if err != nil {
		return s.failure("delete", id, err)
	}
	s.logger.Info("ticket deleted", zap.Int64("ticket_id", id), zap.String("actor_id", actor.SubjectID))
	s.publishEvent(ctx, events.EventTicketDeleted, id, actor, nil)
	return nil
}

// AddComment appends a comment. Only administrators may post internal ones.
func (s *TicketService) AddComment(ctx context.Context, actor domain.Principal, id int64, content string, internal bool) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content is required", nil)
	}

	comment := &domain.Comment{TicketID: id, AuthorID: actor.SubjectID, Content: content, Internal: internal}
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		ticket, err := s.loadTicket(ctx, repos, id, true)
		if err != nil {
			return err
		}
		if err := policy.CanComment(actor, ticket); err != nil {
			return err
		}
		if internal {
			if err := policy.CanPostInternalComment(actor); err != nil {
				return err
			}
		}
		if err := repos.Comments().Create(ctx, comment); err != nil {
			return err
		}
		return s.audit.Append(ctx, repos, newAuditEntry(id, domain.ActionCommentAdded, actor, "Nuevo comentario agregado", nil, nil))
	})
	if err != nil {
		return nil, s.failure("add_comment", id, err)
	}

	s.logger.Info("comment added", zap.Int64("ticket_id", id), zap.Int64("comment_id", comment.ID), zap.Bool("internal", internal))
	s.publishEvent(ctx, events.EventTicketCommentAdded, id, actor, events.TicketCommentAddedPayload{
		CommentID:   comment.ID,
		AuthorID:    comment.AuthorID,
		Internal:    comment.Internal,
		BodyPreview: stringPreview(comment.Content, 120),
	})
	return comment, nil
}

// ListComments returns the comments the actor may see, oldest first.
func (s *TicketService) ListComments(ctx context.Context, actor domain.Principal, id int64) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		ticket, err := s.loadTicket(ctx, repos, id, false)
		if err != nil {
			return err
		}
		if err := policy.CanReadTicket(actor, ticket); err != nil {
			return err
		}
		comments, err = repos.Comments().ListByTicket(ctx, id, policy.CanSeeInternalComments(actor))
		return err
	})
	if err != nil {
		return nil, s.failure("list_comments", id, err)
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

// History returns the audit trail, most recent first.
func (s *TicketService) History(ctx context.Context, actor domain.Principal, id int64) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		ticket, err := s.loadTicket(ctx, repos, id, false)
		if err != nil {
			return err
		}
		if err := policy.CanReadTicket(actor, ticket); err != nil {
			return err
		}
		entries, err = s.audit.List(ctx, repos, id)
		return err
	})
	if err != nil {
		return nil, s.failure("history", id, err)
	}
	return entries, nil
}

func (s *TicketService) loadTicket(ctx context.Context, repos repository.Repositories, id int64, lock bool) (*domain.Ticket, error) {
	var (
		ticket *domain.Ticket
		err    error
	)
	if lock {
		ticket, err = repos.Tickets().GetForUpdate(ctx, id)
	} else {
		ticket, err = repos.Tickets().GetByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, err
	}
	return ticket, nil
}

// resolveReference resolves a caller-supplied code, reporting a miss as an
// invalid reference rather than a missing resource.
func (s *TicketService) resolveReference(ctx context.Context, kind domain.CatalogKind, code string) (*domain.CatalogEntry, error) {
	entry, err := s.resolver.Resolve(ctx, kind, code)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		return nil, apperrors.NewInvalidReference(string(kind), strings.TrimSpace(code))
	}
	return entry, err
}

// resolveOptional treats an empty or unresolvable code as absent.
func (s *TicketService) resolveOptional(ctx context.Context, kind domain.CatalogKind, code *string) (*domain.CatalogEntry, error) {
	code = nonEmpty(code)
	if code == nil {
		return nil, nil
	}
	entry, err := s.resolver.Resolve(ctx, kind, *code)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		return nil, nil
	}
	return entry, err
}

// resolveBaselineState resolves a seeded state; its absence means the
// deployment was not provisioned.
func (s *TicketService) resolveBaselineState(ctx context.Context, code string) (*domain.CatalogEntry, error) {
	entry, err := s.resolver.Resolve(ctx, domain.CatalogState, code)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		s.logger.Error("baseline state missing from catalog", zap.String("code", code))
		return nil, apperrors.NewConfigurationFault("state " + code + " is not provisioned in the catalog")
	}
	return entry, err
}

func (s *TicketService) codeOf(ctx context.Context, kind domain.CatalogKind, id *int64) (*string, error) {
	entry, err := s.resolver.getOptional(ctx, kind, id)
	if err != nil || entry == nil {
		return nil, err
	}
	return &entry.Code, nil
}

func (s *TicketService) principalName(ctx context.Context, subjectID *string) (*string, error) {
	if subjectID == nil {
		return nil, nil
	}
	known, err := s.principals.GetByID(ctx, *subjectID)
	if errors.Is(err, repository.ErrNotFound) {
		return subjectID, nil
	}
	if err != nil {
		return nil, err
	}
	name := known.Name()
	return &name, nil
}

type catalogRef struct {
	kind domain.CatalogKind
	id   int64
}

func (s *TicketService) view(ctx context.Context, ticket domain.Ticket, cache map[catalogRef]*domain.CatalogEntry) (*TicketView, error) {
	lookup := func(kind domain.CatalogKind, id *int64) (*domain.CatalogEntry, error) {
		if id == nil {
			return nil, nil
		}
		ref := catalogRef{kind, *id}
		if entry, ok := cache[ref]; ok {
			return entry, nil
		}
		entry, err := s.resolver.getOptional(ctx, kind, id)
		if err != nil {
			return nil, err
		}
		if cache != nil {
			cache[ref] = entry
		}
		return entry, nil
	}

	view := &TicketView{Ticket: ticket}
	var err error
	if view.State, err = lookup(domain.CatalogState, &ticket.StateID); err != nil {
		return nil, err
	}
	if view.Priority, err = lookup(domain.CatalogPriority, &ticket.PriorityID); err != nil {
		return nil, err
	}
	if view.Category, err = lookup(domain.CatalogCategory, ticket.CategoryID); err != nil {
		return nil, err
	}
	if view.Location, err = lookup(domain.CatalogLocation, ticket.LocationID); err != nil {
		return nil, err
	}
	return view, nil
}

// failure passes domain errors through and wraps anything else as internal.
func (s *TicketService) failure(operation string, ticketID int64, err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	s.logger.Error("ticket operation failed",
		zap.String("operation", operation),
		zap.Int64("ticket_id", ticketID),
		zap.Error(err))
	return apperrors.NewInternalError(err)
}

func (s *TicketService) publishEvent(ctx context.Context, eventType events.EventType, ticketID int64, actor domain.Principal, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     events.Actor{SubjectID: actor.SubjectID, Role: actor.Role},
		Timestamp: s.now(),
		Payload:   payload,
	})
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", apperrors.NewValidationError("title is required", nil)
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return "", apperrors.NewValidationError("title too long", map[string]any{"max": domain.MaxTitleLength})
	}
	return title, nil
}

func validateDescription(raw string) (string, error) {
	description := strings.TrimSpace(raw)
	if description == "" {
		return "", apperrors.NewValidationError("description is required", nil)
	}
	return description, nil
}

func nonEmpty(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func entryCode(entry *domain.CatalogEntry) *string {
	if entry == nil {
		return nil
	}
	return &entry.Code
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
