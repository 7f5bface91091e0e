package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/campus360/incident-service/internal/domain"
	"github.com/campus360/incident-service/internal/policy"
	"github.com/campus360/incident-service/internal/repository"
	apperrors "github.com/campus360/incident-service/pkg/util"
)

// CatalogService exposes catalog listing and the administrative edits
// allowed on categories and locations.
type CatalogService struct {
	catalog  repository.CatalogRepository
	resolver *CatalogResolver
	logger   *zap.Logger
}

// CatalogEntryInput describes a new category or location.
type CatalogEntryInput struct {
	Code        string
	Name        string
	Description string
	Building    string
	Floor       string
}

// NewCatalogService constructs the service.
func NewCatalogService(catalog repository.CatalogRepository, resolver *CatalogResolver, logger *zap.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, resolver: resolver, logger: logger}
}

// List returns entries of kind. Inactive entries are only listed for administrators.
func (s *CatalogService) List(ctx context.Context, actor domain.Principal, kind domain.CatalogKind, includeInactive bool) ([]domain.CatalogEntry, error) {
	if includeInactive {
		if err := policy.CanManageCatalog(actor); err != nil {
			return nil, err
		}
	}
	return s.resolver.List(ctx, kind, includeInactive)
}

// CreateEntry adds an active category or location.
func (s *CatalogService) CreateEntry(ctx context.Context, actor domain.Principal, kind domain.CatalogKind, input CatalogEntryInput) (*domain.CatalogEntry, error) {
	if err := policy.CanManageCatalog(actor); err != nil {
		return nil, err
	}
	if err := requireEditable(kind); err != nil {
		return nil, err
	}
	entry := &domain.CatalogEntry{
		Kind:        kind,
		Code:        strings.ToLower(strings.TrimSpace(input.Code)),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Active:      true,
	}
	if kind == domain.CatalogLocation {
		entry.Building = strings.TrimSpace(input.Building)
		entry.Floor = strings.TrimSpace(input.Floor)
	}
	if entry.Code == "" || entry.Name == "" {
		return nil, apperrors.NewValidationError("code and name are required", nil)
	}
	if len(entry.Code) > 50 || len(entry.Name) > 100 {
		return nil, apperrors.NewValidationError("code or name too long", map[string]any{"code_max": 50, "name_max": 100})
	}

	if err := s.catalog.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("catalog code already exists", map[string]any{"kind": string(kind), "code": entry.Code})
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("catalog entry created",
		zap.String("kind", string(kind)),
		zap.String("code", entry.Code),
		zap.String("actor_id", actor.SubjectID))
	return entry, nil
}

// SetActive toggles a category or location. Tickets already pointing at the
// entry keep it.
func (s *CatalogService) SetActive(ctx context.Context, actor domain.Principal, kind domain.CatalogKind, code string, active bool) (*domain.CatalogEntry, error) {
	if err := policy.CanManageCatalog(actor); err != nil {
		return nil, err
	}
	if err := requireEditable(kind); err != nil {
		return nil, err
	}
	entry, err := s.catalog.SetActive(ctx, kind, strings.TrimSpace(code), active)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("catalog entry", map[string]any{"kind": string(kind), "code": code})
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("catalog entry toggled",
		zap.String("kind", string(kind)),
		zap.String("code", entry.Code),
		zap.Bool("active", active),
		zap.String("actor_id", actor.SubjectID))
	return entry, nil
}

func requireEditable(kind domain.CatalogKind) error {
	if !kind.Valid() {
		return apperrors.NewNotFound("catalog", map[string]any{"kind": string(kind)})
	}
	if !kind.Editable() {
		return apperrors.NewValidationError("catalog kind is fixed", map[string]any{"kind": string(kind)})
	}
	return nil
}
