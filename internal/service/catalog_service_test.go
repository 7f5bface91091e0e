package service

import (
	"testing"

	"go.uber.org/zap"

	"github.com/campus360/incident-service/internal/domain"
	apperrors "github.com/campus360/incident-service/pkg/util"
)

func TestResolverOnlyResolvesActiveEntries(t *testing.T) {
	h := newHarness(t)

	entry, err := h.resolver.Resolve(h.ctx, domain.CatalogPriority, " urgente ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if entry.Code != domain.PriorityUrgent || entry.Level != 4 {
		t.Fatalf("unexpected entry %+v", entry)
	}

	_, err = h.resolver.Resolve(h.ctx, domain.CatalogPriority, "")
	expectCode(t, err, apperrors.CodeNotFound)
	_, err = h.resolver.Resolve(h.ctx, domain.CatalogKind("color"), "rojo")
	expectCode(t, err, apperrors.CodeNotFound)
	_, err = h.resolver.Resolve(h.ctx, domain.CatalogState, domain.PriorityHigh)
	expectCode(t, err, apperrors.CodeNotFound)

	if _, err := h.store.Catalog().SetActive(h.ctx, domain.CatalogLocation, "cafeteria", false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	cafeteria, err := h.store.Catalog().GetByCode(h.ctx, domain.CatalogLocation, "cafeteria")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_, err = h.resolver.Resolve(h.ctx, domain.CatalogLocation, "cafeteria")
	expectCode(t, err, apperrors.CodeNotFound)

	byID, err := h.resolver.Get(h.ctx, domain.CatalogLocation, cafeteria.ID)
	if err != nil || byID.Code != "cafeteria" {
		t.Fatalf("inactive entries must stay readable by id: %v %+v", err, byID)
	}
}

func TestCatalogServiceListing(t *testing.T) {
	h := newHarness(t)
	svc := NewCatalogService(h.store.Catalog(), h.resolver, zap.NewNop())

	states, err := svc.List(h.ctx, reporterU1, domain.CatalogState, false)
	if err != nil {
		t.Fatalf("list states: %v", err)
	}
	if len(states) != 6 || states[0].Code != domain.StatePending || states[5].Code != domain.StateCancelled {
		t.Fatalf("unexpected state order %+v", states)
	}

	priorities, _ := svc.List(h.ctx, reporterU1, domain.CatalogPriority, false)
	if len(priorities) != 4 || priorities[0].Code != domain.PriorityLow || priorities[3].Code != domain.PriorityUrgent {
		t.Fatalf("unexpected priority order %+v", priorities)
	}

	_, err = svc.List(h.ctx, reporterU1, domain.CatalogCategory, true)
	expectCode(t, err, apperrors.CodeForbidden)
	_, err = svc.List(h.ctx, adminUser, domain.CatalogKind("zona"), false)
	expectCode(t, err, apperrors.CodeNotFound)
}

func TestCatalogServiceEdits(t *testing.T) {
	h := newHarness(t)
	svc := NewCatalogService(h.store.Catalog(), h.resolver, zap.NewNop())

	created, err := svc.CreateEntry(h.ctx, adminUser, domain.CatalogLocation, CatalogEntryInput{
		Code:     " Gimnasio ",
		Name:     "Gimnasio",
		Building: "Deportes",
		Floor:    "1",
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if created.Code != "gimnasio" || !created.Active || created.Building != "Deportes" {
		t.Fatalf("unexpected entry %+v", created)
	}
	if _, err := h.resolver.Resolve(h.ctx, domain.CatalogLocation, "gimnasio"); err != nil {
		t.Fatalf("new entry should resolve: %v", err)
	}

	_, err = svc.CreateEntry(h.ctx, adminUser, domain.CatalogLocation, CatalogEntryInput{Code: "gimnasio", Name: "Otro"})
	expectCode(t, err, apperrors.CodeConflict)
	_, err = svc.CreateEntry(h.ctx, adminUser, domain.CatalogCategory, CatalogEntryInput{Code: "", Name: "x"})
	expectCode(t, err, apperrors.CodeValidation)
	_, err = svc.CreateEntry(h.ctx, adminUser, domain.CatalogState, CatalogEntryInput{Code: "archivada", Name: "Archivada"})
	expectCode(t, err, apperrors.CodeValidation)
	_, err = svc.CreateEntry(h.ctx, techUser, domain.CatalogCategory, CatalogEntryInput{Code: "jardines", Name: "Jardines"})
	expectCode(t, err, apperrors.CodeForbidden)

	toggled, err := svc.SetActive(h.ctx, adminUser, domain.CatalogCategory, "otros", false)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if toggled.Active {
		t.Fatalf("entry still active")
	}
	active, _ := svc.List(h.ctx, adminUser, domain.CatalogCategory, false)
	all, _ := svc.List(h.ctx, adminUser, domain.CatalogCategory, true)
	if len(all) != len(active)+1 {
		t.Fatalf("expected one inactive category, active=%d all=%d", len(active), len(all))
	}

	_, err = svc.SetActive(h.ctx, adminUser, domain.CatalogCategory, "no_existe", true)
	expectCode(t, err, apperrors.CodeNotFound)
	_, err = svc.SetActive(h.ctx, adminUser, domain.CatalogPriority, domain.PriorityLow, false)
	expectCode(t, err, apperrors.CodeValidation)
}

func TestPrincipalServiceListsTechnicians(t *testing.T) {
	h := newHarness(t)
	svc := NewPrincipalService(h.store.Principals(), zap.NewNop())

	_, err := svc.ListTechnicians(h.ctx, techUser)
	expectCode(t, err, apperrors.CodeForbidden)

	list, err := svc.ListTechnicians(h.ctx, adminUser)
	if err != nil {
		t.Fatalf("list technicians: %v", err)
	}
	if len(list) != 2 || list[0].SubjectID != adminUser.SubjectID || list[1].SubjectID != techUser.SubjectID {
		t.Fatalf("unexpected technicians %+v", list)
	}

	expectCode(t, svc.Sync(h.ctx, domain.Principal{}), apperrors.CodeUnauthorized)

	promoted := reporterU1
	promoted.Role = domain.RoleTechnician
	if err := svc.Sync(h.ctx, promoted); err != nil {
		t.Fatalf("sync: %v", err)
	}
	list, _ = svc.ListTechnicians(h.ctx, adminUser)
	if len(list) != 3 {
		t.Fatalf("promoted principal missing, got %d", len(list))
	}
}

func TestTransitionTables(t *testing.T) {
	all := AllowAll()
	for _, from := range lifecycleStates {
		for _, to := range lifecycleStates {
			if !all.Allows(from, to) {
				t.Fatalf("AllowAll rejected %s -> %s", from, to)
			}
		}
	}
	if all.Allows(domain.StatePending, "archivada") {
		t.Fatalf("AllowAll accepted an unknown state")
	}

	strict := NewTransitionTable(map[string][]string{domain.StateResolved: {domain.StateClosed}})
	if !strict.Allows(domain.StateResolved, domain.StateClosed) {
		t.Fatalf("listed pair rejected")
	}
	if strict.Allows(domain.StateClosed, domain.StateResolved) || strict.Allows(domain.StatePending, domain.StateClosed) {
		t.Fatalf("unlisted pair accepted")
	}
}
