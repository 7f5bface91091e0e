package seed

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/campus360/incident-service/internal/domain"
	"github.com/campus360/incident-service/internal/repository/memory"
)

func TestCatalogsContainLifecycleBaseline(t *testing.T) {
	entries, err := Catalogs()
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}

	byKind := map[domain.CatalogKind]map[string]domain.CatalogEntry{}
	for _, e := range entries {
		if byKind[e.Kind] == nil {
			byKind[e.Kind] = map[string]domain.CatalogEntry{}
		}
		byKind[e.Kind][e.Code] = e
	}

	for _, code := range []string{
		domain.StatePending, domain.StateAssigned, domain.StateInProgress,
		domain.StateResolved, domain.StateClosed, domain.StateCancelled,
	} {
		if _, ok := byKind[domain.CatalogState][code]; !ok {
			t.Fatalf("missing state %q", code)
		}
	}
	if byKind[domain.CatalogState][domain.StatePending].Order != 1 {
		t.Fatalf("pending state must be first in display order")
	}
	if byKind[domain.CatalogPriority][domain.PriorityUrgent].Level != 4 {
		t.Fatalf("unexpected urgent level")
	}
	if byKind[domain.CatalogLocation]["biblioteca"].Floor != "PB" {
		t.Fatalf("location floor not decoded")
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	doc := []byte("states:\n  - {code: a, name: A}\n  - {code: a, name: B}\n")
	if _, err := Parse(doc); err == nil {
		t.Fatalf("expected duplicate code error")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)

	first, err := Apply(ctx, store.Catalog(), zap.NewNop())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	entries, _ := Catalogs()
	if first != len(entries) {
		t.Fatalf("expected %d inserts, got %d", len(entries), first)
	}

	if _, err := store.Catalog().SetActive(ctx, domain.CatalogCategory, "otros", false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	second, err := Apply(ctx, store.Catalog(), zap.NewNop())
	if err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if second != 0 {
		t.Fatalf("expected no inserts on rerun, got %d", second)
	}
	otros, err := store.Catalog().GetByCode(ctx, domain.CatalogCategory, "otros")
	if err != nil || otros.Active {
		t.Fatalf("reseeding must not reactivate entries: %v %+v", err, otros)
	}
}
