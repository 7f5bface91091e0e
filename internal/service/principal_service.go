package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campus360/incident-service/internal/domain"
	"github.com/campus360/incident-service/internal/policy"
	"github.com/campus360/incident-service/internal/repository"
	apperrors "github.com/campus360/incident-service/pkg/util"
)

// PrincipalService keeps a local record of the principals vouched for by the
// identity provider.
type PrincipalService struct {
	principals repository.PrincipalRepository
	logger     *zap.Logger
}

// NewPrincipalService constructs the service.
func NewPrincipalService(principals repository.PrincipalRepository, logger *zap.Logger) *PrincipalService {
	return &PrincipalService{principals: principals, logger: logger}
}

// Sync records or refreshes a verified principal.
func (s *PrincipalService) Sync(ctx context.Context, principal domain.Principal) error {
	if principal.SubjectID == "" {
		return apperrors.NewUnauthorized("principal without subject")
	}
	if err := s.principals.Upsert(ctx, principal); err != nil {
		s.logger.Error("principal sync failed", zap.String("subject_id", principal.SubjectID), zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	return nil
}

// ListTechnicians returns the principals that can be made responsible for a
// ticket: technicians and administrators.
func (s *PrincipalService) ListTechnicians(ctx context.Context, actor domain.Principal) ([]domain.KnownPrincipal, error) {
	if err := policy.CanListTechnicians(actor); err != nil {
		return nil, err
	}
	known, err := s.principals.ListByRoles(ctx, domain.RoleTechnician, domain.RoleAdministrator)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if known == nil {
		known = []domain.KnownPrincipal{}
	}
	return known, nil
}
