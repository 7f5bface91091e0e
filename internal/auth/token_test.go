package auth

import (
	"context"
	"testing"
	"time"

	"github.com/campus360/incident-service/internal/domain"
	apperrors "github.com/campus360/incident-service/pkg/util"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	issued := domain.Principal{SubjectID: "42", Email: "ana@campus.edu", DisplayName: "Ana", Role: domain.RoleAdministrator}

	token, expiresAt, err := tm.GenerateToken(issued)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("token already expired")
	}

	verified, err := tm.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified != issued {
		t.Fatalf("expected %+v, got %+v", issued, verified)
	}
}

func TestTokenRejections(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, _, err := tm.GenerateToken(domain.Principal{SubjectID: "7", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewTokenManager("another-secret", time.Hour)
	_, err = other.Verify(context.Background(), token)
	if !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for foreign signature, got %v", err)
	}

	expired := NewTokenManager("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.GenerateToken(domain.Principal{SubjectID: "7"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	_, err = tm.Verify(context.Background(), stale)
	if !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}

	_, err = tm.Verify(context.Background(), "not-a-jwt")
	if !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for garbage, got %v", err)
	}

	if _, _, err := tm.GenerateToken(domain.Principal{}); err == nil {
		t.Fatalf("expected error for empty subject")
	}
}

func TestUnknownRoleClaimIsLeastPrivilege(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, _, _ := tm.GenerateToken(domain.Principal{SubjectID: "9", Role: domain.Role("superuser")})
	principal, err := tm.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if principal.Role != domain.RoleUser {
		t.Fatalf("expected user role, got %s", principal.Role)
	}
}
