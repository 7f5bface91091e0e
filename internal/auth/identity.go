package auth

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/campus360/incident-service/internal/domain"
	apperrors "github.com/campus360/incident-service/pkg/util"
)

// IdentityProvider turns a bearer token into a verified principal.
type IdentityProvider interface {
	Verify(ctx context.Context, token string) (domain.Principal, error)
}

// RemoteIdentityProvider delegates verification to the authentication
// service and caches positive answers in Redis under a hash of the token.
type RemoteIdentityProvider struct {
	url      string
	client   *http.Client
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewRemoteIdentityProvider builds the provider. cache may be nil.
func NewRemoteIdentityProvider(url string, timeout time.Duration, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *RemoteIdentityProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteIdentityProvider{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type cachedPrincipal struct {
	SubjectID   string `json:"sub"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	Role        string `json:"role"`
}

// Verify implements IdentityProvider.
func (p *RemoteIdentityProvider) Verify(ctx context.Context, token string) (domain.Principal, error) {
	key := identityCacheKey(token)
	if principal, ok := p.cached(ctx, key); ok {
		return principal, nil
	}

	body, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return domain.Principal{}, apperrors.NewInternalError(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return domain.Principal{}, apperrors.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("identity provider unreachable", zap.Error(err))
		return domain.Principal{}, apperrors.NewServiceUnavailable("authentication service unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Principal{}, apperrors.NewUnauthorized("invalid or expired token")
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Principal{}, apperrors.NewUnauthorized("malformed identity response")
	}
	principal := principalFromPayload(payload)
	if principal.SubjectID == "" {
		return domain.Principal{}, apperrors.NewUnauthorized("identity response without subject")
	}

	p.store(ctx, key, principal)
	return principal, nil
}

func (p *RemoteIdentityProvider) cached(ctx context.Context, key string) (domain.Principal, bool) {
	if p.cache == nil || p.cacheTTL <= 0 {
		return domain.Principal{}, false
	}
	raw, err := p.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			p.logger.Warn("identity cache read failed", zap.Error(err))
		}
		return domain.Principal{}, false
	}
	var entry cachedPrincipal
	if err := json.Unmarshal(raw, &entry); err != nil || entry.SubjectID == "" {
		return domain.Principal{}, false
	}
	return domain.Principal{
		SubjectID:   entry.SubjectID,
		Email:       entry.Email,
		DisplayName: entry.DisplayName,
		Role:        domain.ParseRole(entry.Role),
	}, true
}

func (p *RemoteIdentityProvider) store(ctx context.Context, key string, principal domain.Principal) {
	if p.cache == nil || p.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(cachedPrincipal{
		SubjectID:   principal.SubjectID,
		Email:       principal.Email,
		DisplayName: principal.DisplayName,
		Role:        string(principal.Role),
	})
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, key, raw, p.cacheTTL).Err(); err != nil {
		p.logger.Warn("identity cache write failed", zap.Error(err))
	}
}

// identityCacheKey never embeds the raw token.
func identityCacheKey(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return "identity:" + hex.EncodeToString(sum[:])
}

// principalFromPayload accepts the field spellings the authentication
// service has used over time.
func principalFromPayload(payload map[string]any) domain.Principal {
	return domain.Principal{
		SubjectID:   firstString(payload, "sub", "user_id", "id"),
		Email:       firstString(payload, "email", "correo"),
		DisplayName: firstString(payload, "name", "nombre", "full_name"),
		Role:        domain.ParseRole(firstString(payload, "role", "tipo_usuario")),
	}
}

func firstString(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := payload[key]
		if !ok || value == nil {
			continue
		}
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case float64:
			s = fmt.Sprintf("%.0f", v)
		default:
			s = fmt.Sprint(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
