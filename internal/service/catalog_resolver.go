package service

import (
	"context"
	"errors"
	"strings"

	"github.com/campus360/incident-service/internal/domain"
	"github.com/campus360/incident-service/internal/repository"
	apperrors "github.com/campus360/incident-service/pkg/util"
)

// CatalogResolver turns human-facing catalog codes into internal entries.
// Only active entries resolve.
type CatalogResolver struct {
	catalog repository.CatalogRepository
}

// NewCatalogResolver constructs the resolver.
func NewCatalogResolver(catalog repository.CatalogRepository) *CatalogResolver {
	return &CatalogResolver{catalog: catalog}
}

// Resolve returns the active entry for (kind, code) or a NOT_FOUND error.
func (r *CatalogResolver) Resolve(ctx context.Context, kind domain.CatalogKind, code string) (*domain.CatalogEntry, error) {
	code = strings.TrimSpace(code)
	details := map[string]any{"kind": string(kind), "code": code}
	if !kind.Valid() || code == "" {
		return nil, apperrors.NewNotFound("catalog entry", details)
	}
	entry, err := r.catalog.GetByCode(ctx, kind, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("catalog entry", details)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !entry.Active {
		return nil, apperrors.NewNotFound("catalog entry", details)
	}
	return entry, nil
}

// Get loads an entry by internal id whether or not it is still active;
// tickets keep pointing at entries deactivated after assignment.
func (r *CatalogResolver) Get(ctx context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogEntry, error) {
	entry, err := r.catalog.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("catalog entry", map[string]any{"kind": string(kind), "id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return entry, nil
}

// List returns the entries of a kind in display order.
func (r *CatalogResolver) List(ctx context.Context, kind domain.CatalogKind, includeInactive bool) ([]domain.CatalogEntry, error) {
	if !kind.Valid() {
		return nil, apperrors.NewNotFound("catalog", map[string]any{"kind": string(kind)})
	}
	entries, err := r.catalog.List(ctx, kind, includeInactive)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}

// getOptional resolves an optional id for read views; a dangling id reads as nil.
func (r *CatalogResolver) getOptional(ctx context.Context, kind domain.CatalogKind, id *int64) (*domain.CatalogEntry, error) {
	if id == nil {
		return nil, nil
	}
	entry, err := r.Get(ctx, kind, *id)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		return nil, nil
	}
	return entry, err
}
