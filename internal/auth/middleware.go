package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/campus360/incident-service/internal/domain"
	apperrors "github.com/campus360/incident-service/pkg/util"
)

const principalKey = "auth_principal"

// PrincipalRecorder persists principals on first contact.
type PrincipalRecorder interface {
	Sync(ctx context.Context, principal domain.Principal) error
}

// AuthMiddleware validates bearer tokens and stores the verified principal.
type AuthMiddleware struct {
	provider IdentityProvider
	recorder PrincipalRecorder
	logger   *zap.Logger
}

// NewAuthMiddleware constructs middleware. recorder may be nil.
func NewAuthMiddleware(provider IdentityProvider, recorder PrincipalRecorder, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{provider: provider, recorder: recorder, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	principal, err := m.provider.Verify(c.UserContext(), strings.TrimSpace(parts[1]))
	if err != nil {
		return err
	}

	if m.recorder != nil {
		if err := m.recorder.Sync(c.UserContext(), principal); err != nil {
			// the request can proceed; only responsible validation depends on the record
			m.logger.Warn("principal sync failed", zap.String("subject_id", principal.SubjectID), zap.Error(err))
		}
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (domain.Principal, bool) {
	principal, ok := c.Locals(principalKey).(domain.Principal)
	return principal, ok
}
