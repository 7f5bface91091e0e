package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campus360/incident-service/internal/domain"
)

// CachedCatalogRepository serves catalog reads from Redis and falls through
// to the wrapped repository on a miss or any Redis failure. Cache keys carry
// a per-kind generation; writes bump it so entries fetched before the write
// land under a key no reader uses again.
type CachedCatalogRepository struct {
	next   CatalogRepository
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCatalogRepository wraps next with a Redis read-through cache.
func NewCachedCatalogRepository(next CatalogRepository, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedCatalogRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedCatalogRepository{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedCatalogRepository) GetByCode(ctx context.Context, kind domain.CatalogKind, code string) (*domain.CatalogEntry, error) {
	return readThrough(ctx, c, kind, "code:"+code, func() (*domain.CatalogEntry, error) {
		return c.next.GetByCode(ctx, kind, code)
	})
}

func (c *CachedCatalogRepository) GetByID(ctx context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogEntry, error) {
	return readThrough(ctx, c, kind, fmt.Sprintf("id:%d", id), func() (*domain.CatalogEntry, error) {
		return c.next.GetByID(ctx, kind, id)
	})
}

func (c *CachedCatalogRepository) List(ctx context.Context, kind domain.CatalogKind, includeInactive bool) ([]domain.CatalogEntry, error) {
	suffix := "list:active"
	if includeInactive {
		suffix = "list:all"
	}
	return readThrough(ctx, c, kind, suffix, func() ([]domain.CatalogEntry, error) {
		return c.next.List(ctx, kind, includeInactive)
	})
}

func (c *CachedCatalogRepository) Create(ctx context.Context, entry *domain.CatalogEntry) error {
	if err := c.next.Create(ctx, entry); err != nil {
		return err
	}
	c.bump(ctx, entry.Kind)
	return nil
}

func (c *CachedCatalogRepository) SetActive(ctx context.Context, kind domain.CatalogKind, code string, active bool) (*domain.CatalogEntry, error) {
	entry, err := c.next.SetActive(ctx, kind, code, active)
	if err != nil {
		return nil, err
	}
	c.bump(ctx, kind)
	return entry, nil
}

func (c *CachedCatalogRepository) Seed(ctx context.Context, entries []domain.CatalogEntry) (int, error) {
	inserted, err := c.next.Seed(ctx, entries)
	if inserted > 0 {
		for _, kind := range domain.CatalogKinds {
			c.bump(ctx, kind)
		}
	}
	return inserted, err
}

// readThrough reads the generation before the source so that a write
// committed after the source read always invalidates the key being filled.
func readThrough[T any](ctx context.Context, c *CachedCatalogRepository, kind domain.CatalogKind, suffix string, fetch func() (T, error)) (T, error) {
	gen, ok := c.generation(ctx, kind)
	if !ok {
		return fetch()
	}
	key := fmt.Sprintf("catalog:%s:g%d:%s", kind, gen, suffix)
	var cached T
	if c.load(ctx, key, &cached) {
		return cached, nil
	}
	found, err := fetch()
	if err != nil {
		return found, err
	}
	c.store(ctx, key, found)
	return found, nil
}

func generationKey(kind domain.CatalogKind) string {
	return fmt.Sprintf("catalog:%s:generation", kind)
}

func (c *CachedCatalogRepository) generation(ctx context.Context, kind domain.CatalogKind) (int64, bool) {
	gen, err := c.client.Get(ctx, generationKey(kind)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		c.logger.Debug("catalog cache generation read failed", zap.String("kind", string(kind)), zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (c *CachedCatalogRepository) bump(ctx context.Context, kind domain.CatalogKind) {
	if err := c.client.Incr(ctx, generationKey(kind)).Err(); err != nil {
		c.logger.Warn("catalog cache invalidation failed", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (c *CachedCatalogRepository) load(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedCatalogRepository) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
