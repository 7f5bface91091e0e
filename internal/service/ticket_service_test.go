package service

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/campus360/incident-service/internal/domain"
	"github.com/campus360/incident-service/internal/events"
	"github.com/campus360/incident-service/internal/repository/memory"
	"github.com/campus360/incident-service/internal/seed"
	apperrors "github.com/campus360/incident-service/pkg/util"
)

var (
	adminUser  = domain.Principal{SubjectID: "admin-1", Email: "ana@campus.edu", DisplayName: "Ana Admin", Role: domain.RoleAdministrator}
	techUser   = domain.Principal{SubjectID: "tech-1", Email: "tomas@campus.edu", DisplayName: "Tomás Técnico", Role: domain.RoleTechnician}
	reporterU1 = domain.Principal{SubjectID: "user-1", Email: "u1@campus.edu", DisplayName: "Usuario Uno", Role: domain.RoleUser}
	strangerU2 = domain.Principal{SubjectID: "user-2", Email: "u2@campus.edu", DisplayName: "Usuario Dos", Role: domain.RoleUser}
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type harness struct {
	ctx       context.Context
	store     *memory.Store
	clock     *fakeClock
	resolver  *CatalogResolver
	tickets   *TicketService
	published []events.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, nil, nil)
}

// newHarnessWith seeds the catalogs kept by keep (all when nil) and wires the
// engine with the given transition table.
func newHarnessWith(t *testing.T, keep func(domain.CatalogEntry) bool, table *TransitionTable) *harness {
	t.Helper()
	h := &harness{
		ctx:   context.Background(),
		clock: &fakeClock{now: time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)},
	}
	h.store = memory.NewStore(h.clock.Now)

	entries, err := seed.Catalogs()
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	var selected []domain.CatalogEntry
	for _, entry := range entries {
		if keep == nil || keep(entry) {
			selected = append(selected, entry)
		}
	}
	if _, err := h.store.Catalog().Seed(h.ctx, selected); err != nil {
		t.Fatalf("seed catalogs: %v", err)
	}
	for _, p := range []domain.Principal{adminUser, techUser, reporterU1, strangerU2} {
		if err := h.store.Principals().Upsert(h.ctx, p); err != nil {
			t.Fatalf("upsert principal: %v", err)
		}
	}

	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			h.published = append(h.published, event)
			return nil
		})
	}

	h.resolver = NewCatalogResolver(h.store.Catalog())
	h.tickets = NewTicketService(TicketDependencies{
		Store:       h.store,
		Resolver:    h.resolver,
		Principals:  h.store.Principals(),
		Transitions: table,
		Dispatcher:  dispatcher,
		Logger:      zap.NewNop(),
		Clock:       h.clock.Now,
	})
	return h
}

func (h *harness) create(t *testing.T, actor domain.Principal, title, priority string) *TicketView {
	t.Helper()
	input := TicketCreateInput{Title: title, Description: "Descripción de " + title}
	if priority != "" {
		input.PriorityCode = &priority
	}
	view, err := h.tickets.Create(h.ctx, actor, input)
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return view
}

func (h *harness) history(t *testing.T, id int64) []domain.AuditEntry {
	t.Helper()
	entries, err := h.tickets.History(h.ctx, adminUser, id)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	return entries
}

func strPtr(s string) *string { return &s }

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !apperrors.HasCode(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestCreateTicketStartsPending(t *testing.T) {
	h := newHarness(t)

	view, err := h.tickets.Create(h.ctx, reporterU1, TicketCreateInput{
		Title:        "Projector broken",
		Description:  "No image",
		PriorityCode: strPtr(domain.PriorityHigh),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.State.Code != domain.StatePending {
		t.Fatalf("expected pendiente, got %s", view.State.Code)
	}
	if view.Priority.Code != domain.PriorityHigh {
		t.Fatalf("expected alta, got %s", view.Priority.Code)
	}
	if view.Ticket.ReporterID != reporterU1.SubjectID || view.Ticket.ResponsibleID != nil {
		t.Fatalf("unexpected ownership %+v", view.Ticket)
	}

	entries := h.history(t, view.Ticket.ID)
	if len(entries) != 1 || entries[0].Action != domain.ActionCreated {
		t.Fatalf("expected one created entry, got %+v", entries)
	}
	if entries[0].ActorID != reporterU1.SubjectID {
		t.Fatalf("expected actor %s, got %s", reporterU1.SubjectID, entries[0].ActorID)
	}
	if len(h.published) != 1 || h.published[0].Type != events.EventTicketCreated {
		t.Fatalf("expected a created event, got %+v", h.published)
	}
}

func TestCreateDefaultsPriorityAndDropsUnknownOptionalCodes(t *testing.T) {
	h := newHarness(t)

	view, err := h.tickets.Create(h.ctx, reporterU1, TicketCreateInput{
		Title:        "Fuga de agua",
		Description:  "Baño del piso 2",
		CategoryCode: strPtr("no_existe"),
		LocationCode: strPtr(" edificio_a_p2 "),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Priority.Code != domain.PriorityMedium {
		t.Fatalf("expected default media, got %s", view.Priority.Code)
	}
	if view.Category != nil || view.Ticket.CategoryID != nil {
		t.Fatalf("expected unknown category to be dropped")
	}
	if view.Location == nil || view.Location.Code != "edificio_a_p2" {
		t.Fatalf("expected location to resolve, got %+v", view.Location)
	}
}

func TestCreateRejectsUnknownPriority(t *testing.T) {
	h := newHarness(t)

	_, err := h.tickets.Create(h.ctx, reporterU1, TicketCreateInput{
		Title:        "Silla rota",
		Description:  "Aula 3",
		PriorityCode: strPtr("critica"),
	})
	expectCode(t, err, apperrors.CodeInvalidReference)

	page, _ := h.tickets.List(h.ctx, adminUser, TicketListFilter{})
	if page.Total != 0 {
		t.Fatalf("expected nothing persisted, found %d", page.Total)
	}
}

func TestCreateWithoutPendingStateIsConfigurationFault(t *testing.T) {
	h := newHarnessWith(t, func(e domain.CatalogEntry) bool {
		return !(e.Kind == domain.CatalogState && e.Code == domain.StatePending)
	}, nil)

	_, err := h.tickets.Create(h.ctx, reporterU1, TicketCreateInput{Title: "t", Description: "d"})
	expectCode(t, err, apperrors.CodeConfigurationFault)
}

func TestCreateValidatesContent(t *testing.T) {
	h := newHarness(t)

	cases := []TicketCreateInput{
		{Title: "   ", Description: "d"},
		{Title: "t", Description: ""},
		{Title: strings.Repeat("á", domain.MaxTitleLength+1), Description: "d"},
	}
	for _, input := range cases {
		_, err := h.tickets.Create(h.ctx, reporterU1, input)
		expectCode(t, err, apperrors.CodeValidation)
	}

	if _, err := h.tickets.Create(h.ctx, reporterU1, TicketCreateInput{
		Title:       strings.Repeat("á", domain.MaxTitleLength),
		Description: "d",
	}); err != nil {
		t.Fatalf("title at the limit rejected: %v", err)
	}
}

func TestAssignResponsibleAdvancesPendingTicket(t *testing.T) {
	h := newHarness(t)
	ticket := h.create(t, reporterU1, "Proyector", "")

	view, err := h.tickets.AssignResponsible(h.ctx, adminUser, ticket.Ticket.ID, techUser.SubjectID, nil)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if view.State.Code != domain.StateAssigned {
		t.Fatalf("expected asignada, got %s", view.State.Code)
	}
	if view.Ticket.ResponsibleID == nil || *view.Ticket.ResponsibleID != techUser.SubjectID {
		t.Fatalf("responsible not recorded: %+v", view.Ticket.ResponsibleID)
	}

	entries := h.history(t, ticket.Ticket.ID)
	if len(entries) != 2 {
		t.Fatalf("expected exactly one new entry, got %d total", len(entries))
	}
	latest := entries[0]
	if latest.Action != domain.ActionResponsibleAssigned {
		t.Fatalf("expected responsable_asignado, got %s", latest.Action)
	}
	if latest.OldValue != nil || latest.NewValue == nil || *latest.NewValue != techUser.DisplayName {
		t.Fatalf("unexpected old/new values %v %v", latest.OldValue, latest.NewValue)
	}
	if latest.Description == nil || *latest.Description != "Responsable asignado: "+techUser.DisplayName {
		t.Fatalf("unexpected description %v", latest.Description)
	}
}

func TestAssignResponsibleKeepsLaterStates(t *testing.T) {
	h := newHarness(t)
	ticket := h.create(t, reporterU1, "Red caída", "urgente")

	if _, err := h.tickets.ChangeState(h.ctx, adminUser, ticket.Ticket.ID, domain.StateInProgress, nil); err != nil {
		t.Fatalf("change state: %v", err)
	}
	view, err := h.tickets.AssignResponsible(h.ctx, adminUser, ticket.Ticket.ID, adminUser.SubjectID, strPtr("Lo tomo yo"))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if view.State.Code != domain.StateInProgress {
		t.Fatalf("expected state to stay en_proceso, got %s", view.State.Code)
	}
	entries := h.history(t, ticket.Ticket.ID)
	if *entries[0].Description != "Lo tomo yo" {
		t.Fatalf("expected comment as description, got %q", *entries[0].Description)
	}
}

func TestAssignResponsibleRejectsUnknownPrincipal(t *testing.T) {
	h := newHarness(t)
	ticket := h.create(t, reporterU1, "Puerta", "")

	_, err := h.tickets.AssignResponsible(h.ctx, adminUser, ticket.Ticket.ID, "ghost", nil)
	expectCode(t, err, apperrors.CodeInvalidReference)

	detail, err := h.tickets.Read(h.ctx, adminUser, ticket.Ticket.ID)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if detail.State.Code != domain.StatePending || detail.Ticket.ResponsibleID != nil {
		t.Fatalf("failed assignment leaked changes: %+v", detail.Ticket)
	}
	if len(detail.History) != 1 {
		t.Fatalf("expected no new entry, got %d", len(detail.History))
	}

	_, err = h.tickets.AssignResponsible(h.ctx, adminUser, 999, techUser.SubjectID, nil)
	expectCode(t, err, apperrors.CodeNotFound)
}

func TestAdministrativeOperationsRequireAdministrator(t *testing.T) {
	h := newHarness(t)
	ticket := h.create(t, reporterU1, "Ventana", "")
	id := ticket.Ticket.ID

	for _, actor := range []domain.Principal{reporterU1, techUser, strangerU2} {
		_, err := h.tickets.AssignResponsible(h.ctx, actor, id, techUser.SubjectID, nil)
		expectCode(t, err, apperrors.CodeForbidden)
		_, err = h.tickets.ChangeState(h.ctx, actor, id, domain.StateClosed, nil)
		expectCode(t, err, apperrors.CodeForbidden)
		_, err = h.tickets.Update(h.ctx, actor, id, TicketUpdateInput{Title: strPtr("x")})
		expectCode(t, err, apperrors.CodeForbidden)
		expectCode(t, h.tickets.Delete(h.ctx, actor, id), apperrors.CodeForbidden)
	}
	if got := len(h.history(t, id)); got != 1 {
		t.Fatalf("denied operations must not write history, got %d entries", got)
	}
}

func TestChangeStateTracksResolutionTimestamp(t *testing.T) {
	h := newHarness(t)
	ticket := h.create(t, reporterU1, "Aire acondicionado", "")
	id := ticket.Ticket.ID

	h.clock.Advance(time.Hour)
	resolvedAt := h.clock.Now()
	view, err := h.tickets.ChangeState(h.ctx, adminUser, id, domain.StateResolved, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if view.Ticket.ResolvedAt == nil || !view.Ticket.ResolvedAt.Equal(resolvedAt) {
		t.Fatalf("expected resolution timestamp %v, got %v", resolvedAt, view.Ticket.ResolvedAt)
	}

	entries := h.history(t, id)
	latest := entries[0]
	if latest.Action != domain.ActionStateChanged || *latest.OldValue != "Pendiente" || *latest.NewValue != "Resuelta" {
		t.Fatalf("unexpected state entry %+v", latest)
	}

	h.clock.Advance(time.Hour)
	view, err = h.tickets.ChangeState(h.ctx, adminUser, id, domain.StateInProgress, strPtr("Reabierto"))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if view.Ticket.ResolvedAt != nil {
		t.Fatalf("expected resolution timestamp cleared, got %v", view.Ticket.ResolvedAt)
	}
	if got := len(h.history(t, id)); got != 3 {
		t.Fatalf("expected one entry per state change, got %d", got)
	}
}

func TestChangeStateLeavesTerminalStatesUnderDefaultTable(t *testing.T) {
	h := newHarness(t)
	ticket := h.create(t, reporterU1, "Cerradura", "")

	if _, err := h.tickets.ChangeState(h.ctx, adminUser, ticket.Ticket.ID, domain.StateClosed, nil); err != nil {
		t.Fatalf("close: %v", err)
	}
	view, err := h.tickets.ChangeState(h.ctx, adminUser, ticket.Ticket.ID, domain.StatePending, nil)
	if err != nil {
		t.Fatalf("reopen closed ticket: %v", err)
	}
	if view.State.Code != domain.StatePending {
		t.Fatalf("expected pendiente, got %s", view.State.Code)
	}
}

func TestChangeStateRejectsUnknownCode(t *testing.T) {
	h := newHarness(t)
	ticket := h.create(t, reporterU1, "Luz", "")

	_, err := h.tickets.ChangeState(h.ctx, adminUser, ticket.Ticket.ID, "archivada", nil)
	expectCode(t, err, apperrors.CodeInvalidReference)

	_, err = h.tickets.ChangeState(h.ctx, adminUser, 404, domain.StateClosed, nil)
	expectCode(t, err, apperrors.CodeNotFound)
}

func TestChangeStateHonoursTransitionTable(t *testing.T) {
	strict := NewTransitionTable(map[string][]string{
		domain.StatePending:  {domain.StateAssigned},
		domain.StateAssigned: {domain.StateInProgress},
	})
	h := newHarnessWith(t, nil, strict)
	ticket := h.create(t, reporterU1, "Tablero", "")

	_, err := h.tickets.ChangeState(h.ctx, adminUser, ticket.Ticket.ID, domain.StateClosed, nil)
	expectCode(t, err, apperrors.CodeInvalidTransition)

	if _, err := h.tickets.AssignResponsible(h.ctx, adminUser, ticket.Ticket.ID, techUser.SubjectID, nil); err != nil {
		t.Fatalf("implicit transition should be allowed: %v", err)
	}
	if got := len(h.history(t, ticket.Ticket.ID)); got != 2 {
		t.Fatalf("expected denied transition to leave no entry, got %d", got)
	}
}

func TestUpdateRecordsOnlyChangedFields(t *testing.T) {
	h := newHarness(t)
	ticket := h.create(t, reporterU1, "Proyector", "")
	id := ticket.Ticket.ID

	view, err := h.tickets.Update(h.ctx, adminUser, id, TicketUpdateInput{
		Title:        strPtr("Proyector"),
		PriorityCode: strPtr(domain.PriorityHigh),
		CategoryCode: strPtr("tecnologia"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if view.Priority.Code != domain.PriorityHigh || view.Category.Code != "tecnologia" {
		t.Fatalf("update not applied: %+v", view)
	}

	entries := h.history(t, id)
	if len(entries) != 3 {
		t.Fatalf("expected created + 2 field entries, got %d", len(entries))
	}
	byAction := map[string]domain.AuditEntry{}
	for _, entry := range entries {
		byAction[entry.Action] = entry
	}
	priority, ok := byAction["priority_updated"]
	if !ok || *priority.OldValue != domain.PriorityMedium || *priority.NewValue != domain.PriorityHigh {
		t.Fatalf("unexpected priority entry %+v", priority)
	}
	category, ok := byAction["category_updated"]
	if !ok || category.OldValue != nil || *category.NewValue != "tecnologia" {
		t.Fatalf("unexpected category entry %+v", category)
	}
	if _, ok := byAction["title_updated"]; ok {
		t.Fatalf("unchanged title produced an entry")
	}
}

func TestNoOpUpdateLeavesTicketUntouched(t *testing.T) {
	h := newHarness(t)
	ticket := h.create(t, reporterU1, "Proyector", domain.PriorityLow)
	before := len(h.published)

	view, err := h.tickets.Update(h.ctx, adminUser, ticket.Ticket.ID, TicketUpdateInput{
		Title:        strPtr(" Proyector "),
		Description:  strPtr(ticket.Ticket.Description),
		PriorityCode: strPtr(domain.PriorityLow),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if view.Ticket.UpdatedAt != nil {
		t.Fatalf("no-op update touched the row")
	}
	if got := len(h.history(t, ticket.Ticket.ID)); got != 1 {
		t.Fatalf("expected no new entries, got %d", got)
	}
	if len(h.published) != before {
		t.Fatalf("no-op update published an event")
	}
}

func TestUpdateRejectsUnknownCodesAtomically(t *testing.T) {
	h := newHarness(t)
	ticket := h.create(t, reporterU1, "Proyector", "")

	_, err := h.tickets.Update(h.ctx, adminUser, ticket.Ticket.ID, TicketUpdateInput{
		Title:        strPtr("Nuevo título"),
		LocationCode: strPtr("marte"),
	})
	expectCode(t, err, apperrors.CodeInvalidReference)

	detail, _ := h.tickets.Read(h.ctx, adminUser, ticket.Ticket.ID)
	if detail.Ticket.Title != "Proyector" || len(detail.History) != 1 {
		t.Fatalf("failed update leaked changes: %+v", detail.Ticket)
	}

	_, err = h.tickets.Update(h.ctx, adminUser, 77, TicketUpdateInput{Title: strPtr("x")})
	expectCode(t, err, apperrors.CodeNotFound)
}

func TestCommentRulesAndVisibility(t *testing.T) {
	h := newHarness(t)
	ticket := h.create(t, reporterU1, "Enchufe", "")
	id := ticket.Ticket.ID

	_, err := h.tickets.AddComment(h.ctx, strangerU2, id, "¿Ya lo vieron?", false)
	expectCode(t, err, apperrors.CodeForbidden)
	if got := len(h.history(t, id)); got != 1 {
		t.Fatalf("denied comment wrote history")
	}

	if _, err := h.tickets.AddComment(h.ctx, reporterU1, id, "Sigue sin funcionar", false); err != nil {
		t.Fatalf("reporter comment: %v", err)
	}
	if _, err := h.tickets.AddComment(h.ctx, adminUser, id, "Pedir repuesto", true); err != nil {
		t.Fatalf("admin internal comment: %v", err)
	}
	_, err = h.tickets.AddComment(h.ctx, reporterU1, id, "nota privada", true)
	expectCode(t, err, apperrors.CodeForbidden)

	_, err = h.tickets.AddComment(h.ctx, reporterU1, id, "   ", false)
	expectCode(t, err, apperrors.CodeValidation)
	_, err = h.tickets.AddComment(h.ctx, adminUser, 500, "hola", false)
	expectCode(t, err, apperrors.CodeNotFound)

	visible, err := h.tickets.ListComments(h.ctx, reporterU1, id)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(visible) != 1 || visible[0].Internal {
		t.Fatalf("reporter should only see the public comment, got %+v", visible)
	}
	all, _ := h.tickets.ListComments(h.ctx, adminUser, id)
	if len(all) != 2 {
		t.Fatalf("admin should see both comments, got %d", len(all))
	}

	entries := h.history(t, id)
	if len(entries) != 3 || entries[0].Action != domain.ActionCommentAdded {
		t.Fatalf("expected two comment entries on top of created, got %+v", entries)
	}
	if entries[0].NewValue != nil {
		t.Fatalf("comment content must not be copied into the trail")
	}
}

func TestReadIsScopedToReporter(t *testing.T) {
	h := newHarness(t)
	ticket := h.create(t, reporterU1, "Mesa", "")
	id := ticket.Ticket.ID

	_, err := h.tickets.Read(h.ctx, strangerU2, id)
	expectCode(t, err, apperrors.CodeForbidden)
	_, err = h.tickets.History(h.ctx, strangerU2, id)
	expectCode(t, err, apperrors.CodeForbidden)
	_, err = h.tickets.ListComments(h.ctx, techUser, id)
	expectCode(t, err, apperrors.CodeForbidden)

	_, err = h.tickets.Read(h.ctx, reporterU1, 12345)
	expectCode(t, err, apperrors.CodeNotFound)

	detail, err := h.tickets.Read(h.ctx, reporterU1, id)
	if err != nil {
		t.Fatalf("reporter read: %v", err)
	}
	if detail.State == nil || detail.Priority == nil || len(detail.History) != 1 {
		t.Fatalf("detail incomplete: %+v", detail)
	}
	if detail.Comments == nil || detail.Attachments == nil {
		t.Fatalf("expected empty slices, not nil")
	}
}

func TestListScopesAndPaginates(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 3; i++ {
		h.create(t, reporterU1, "Reporte U1", domain.PriorityHigh)
		h.clock.Advance(time.Minute)
	}
	for i := 0; i < 2; i++ {
		h.create(t, strangerU2, "Reporte U2", domain.PriorityLow)
		h.clock.Advance(time.Minute)
	}

	page, err := h.tickets.List(h.ctx, reporterU1, TicketListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("reporter should see own 3 tickets, got %d", page.Total)
	}
	for _, item := range page.Items {
		if item.Ticket.ReporterID != reporterU1.SubjectID {
			t.Fatalf("listing leaked ticket %d of %s", item.Ticket.ID, item.Ticket.ReporterID)
		}
	}

	page, _ = h.tickets.List(h.ctx, strangerU2, TicketListFilter{ReporterID: strPtr(reporterU1.SubjectID)})
	if page.Total != 2 {
		t.Fatalf("reporter filter must not widen scope, got %d", page.Total)
	}

	page, _ = h.tickets.List(h.ctx, adminUser, TicketListFilter{Limit: 2})
	if page.Total != 5 || len(page.Items) != 2 || !page.HasMore {
		t.Fatalf("unexpected admin page %+v", page)
	}
	if page.Items[0].Ticket.ID != 5 || page.Items[1].Ticket.ID != 4 {
		t.Fatalf("expected newest first, got %d, %d", page.Items[0].Ticket.ID, page.Items[1].Ticket.ID)
	}
	page, _ = h.tickets.List(h.ctx, adminUser, TicketListFilter{Limit: 2, Offset: 4})
	if len(page.Items) != 1 || page.HasMore {
		t.Fatalf("unexpected last page %+v", page)
	}

	page, _ = h.tickets.List(h.ctx, adminUser, TicketListFilter{PriorityCode: strPtr(domain.PriorityLow)})
	if page.Total != 2 {
		t.Fatalf("priority filter: expected 2, got %d", page.Total)
	}
	page, _ = h.tickets.List(h.ctx, adminUser, TicketListFilter{StateCode: strPtr("inexistente")})
	if page.Total != 0 || len(page.Items) != 0 || page.HasMore {
		t.Fatalf("unknown filter code must yield an empty page, got %+v", page)
	}

	page, _ = h.tickets.List(h.ctx, adminUser, TicketListFilter{Limit: 1000, Offset: -3})
	if page.Limit != 100 || page.Offset != 0 {
		t.Fatalf("expected clamped paging, got limit=%d offset=%d", page.Limit, page.Offset)
	}

	page, err = h.tickets.List(h.ctx, adminUser, TicketListFilter{Limit: 10, Offset: math.MaxInt})
	if err != nil {
		t.Fatalf("list past the end: %v", err)
	}
	if page.Total != 5 || len(page.Items) != 0 || page.HasMore {
		t.Fatalf("offset past the end must not report more results, got %+v", page)
	}
	page, _ = h.tickets.List(h.ctx, adminUser, TicketListFilter{Limit: 10, Offset: math.MaxInt - 5})
	if page.HasMore {
		t.Fatalf("offset near the integer limit must not report more results, got %+v", page)
	}
}

func TestListByResponsible(t *testing.T) {
	h := newHarness(t)
	a := h.create(t, reporterU1, "A", "")
	h.create(t, reporterU1, "B", "")
	if _, err := h.tickets.AssignResponsible(h.ctx, adminUser, a.Ticket.ID, techUser.SubjectID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}

	page, _ := h.tickets.List(h.ctx, adminUser, TicketListFilter{
		ResponsibleID: strPtr(techUser.SubjectID),
		StateCode:     strPtr(domain.StateAssigned),
	})
	if page.Total != 1 || page.Items[0].Ticket.ID != a.Ticket.ID {
		t.Fatalf("unexpected responsible listing %+v", page)
	}
}

func TestDeletePurgesTicket(t *testing.T) {
	h := newHarness(t)
	ticket := h.create(t, reporterU1, "Basura", "")
	id := ticket.Ticket.ID
	if _, err := h.tickets.AddComment(h.ctx, reporterU1, id, "urgente", false); err != nil {
		t.Fatalf("comment: %v", err)
	}

	if err := h.tickets.Delete(h.ctx, adminUser, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := h.tickets.Read(h.ctx, adminUser, id)
	expectCode(t, err, apperrors.CodeNotFound)
	_, err = h.tickets.History(h.ctx, adminUser, id)
	expectCode(t, err, apperrors.CodeNotFound)
	expectCode(t, h.tickets.Delete(h.ctx, adminUser, id), apperrors.CodeNotFound)

	last := h.published[len(h.published)-1]
	if last.Type != events.EventTicketDeleted || last.TicketID != id {
		t.Fatalf("expected deleted event, got %+v", last)
	}
}

func TestDeactivatedCatalogEntryIsNotRetroactive(t *testing.T) {
	h := newHarness(t)
	view, err := h.tickets.Create(h.ctx, reporterU1, TicketCreateInput{
		Title:        "Wifi",
		Description:  "Sin señal",
		CategoryCode: strPtr("tecnologia"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.store.Catalog().SetActive(h.ctx, domain.CatalogCategory, "tecnologia", false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	detail, err := h.tickets.Read(h.ctx, reporterU1, view.Ticket.ID)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if detail.Category == nil || detail.Category.Code != "tecnologia" {
		t.Fatalf("existing ticket lost its category: %+v", detail.Category)
	}

	again, err := h.tickets.Create(h.ctx, reporterU1, TicketCreateInput{
		Title:        "Wifi 2",
		Description:  "Sin señal",
		CategoryCode: strPtr("tecnologia"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if again.Category != nil {
		t.Fatalf("inactive category resolved on a new ticket")
	}

	_, err = h.tickets.Update(h.ctx, adminUser, view.Ticket.ID, TicketUpdateInput{CategoryCode: strPtr("tecnologia")})
	expectCode(t, err, apperrors.CodeInvalidReference)
}

func TestAuditCountGrowsByOperation(t *testing.T) {
	h := newHarness(t)
	ticket := h.create(t, reporterU1, "Conteo", "")
	id := ticket.Ticket.ID

	steps := []struct {
		name string
		run  func() error
		want int
	}{
		{"update two fields", func() error {
			_, err := h.tickets.Update(h.ctx, adminUser, id, TicketUpdateInput{Title: strPtr("Conteo 2"), Description: strPtr("otra")})
			return err
		}, 2},
		{"assign", func() error {
			_, err := h.tickets.AssignResponsible(h.ctx, adminUser, id, techUser.SubjectID, nil)
			return err
		}, 1},
		{"change state", func() error {
			_, err := h.tickets.ChangeState(h.ctx, adminUser, id, domain.StateResolved, nil)
			return err
		}, 1},
		{"resolve again", func() error {
			_, err := h.tickets.ChangeState(h.ctx, adminUser, id, domain.StateResolved, nil)
			return err
		}, 1},
		{"comment", func() error {
			_, err := h.tickets.AddComment(h.ctx, adminUser, id, "listo", false)
			return err
		}, 1},
	}

	count := len(h.history(t, id))
	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		got := len(h.history(t, id))
		if got-count != step.want {
			t.Fatalf("%s: expected +%d entries, got +%d", step.name, step.want, got-count)
		}
		count = got
	}

	detail, _ := h.tickets.Read(h.ctx, adminUser, id)
	if detail.Ticket.ResolvedAt == nil {
		t.Fatalf("resolving twice must keep the ticket resolved")
	}
}
