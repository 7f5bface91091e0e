package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/campus360/incident-service/internal/domain"
	"github.com/campus360/incident-service/internal/repository"
)

type catalogKey struct {
	kind domain.CatalogKind
	code string
}

type catalogTable struct {
	mu      sync.RWMutex
	now     func() time.Time
	nextID  int64
	entries map[catalogKey]domain.CatalogEntry
}

func newCatalogTable(now func() time.Time) *catalogTable {
	return &catalogTable{now: now, entries: map[catalogKey]domain.CatalogEntry{}}
}

func (c *catalogTable) GetByCode(_ context.Context, kind domain.CatalogKind, code string) (*domain.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[catalogKey{kind, code}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entry, nil
}

func (c *catalogTable) GetByID(_ context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for key, entry := range c.entries {
		if key.kind == kind && entry.ID == id {
			return &entry, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (c *catalogTable) List(_ context.Context, kind domain.CatalogKind, includeInactive bool) ([]domain.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := []domain.CatalogEntry{}
	for key, entry := range c.entries {
		if key.kind != kind || (!entry.Active && !includeInactive) {
			continue
		}
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		if a.Building != b.Building {
			return a.Building < b.Building
		}
		if a.Floor != b.Floor {
			return a.Floor < b.Floor
		}
		return a.Name < b.Name
	})
	return result, nil
}

func (c *catalogTable) Create(_ context.Context, entry *domain.CatalogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := catalogKey{entry.Kind, entry.Code}
	if _, exists := c.entries[key]; exists {
		return fmt.Errorf("%w: %s/%s", repository.ErrDuplicate, entry.Kind, entry.Code)
	}
	c.insert(entry)
	return nil
}

func (c *catalogTable) SetActive(_ context.Context, kind domain.CatalogKind, code string, active bool) (*domain.CatalogEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := catalogKey{kind, code}
	entry, ok := c.entries[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	entry.Active = active
	c.entries[key] = entry
	return &entry, nil
}

func (c *catalogTable) Seed(_ context.Context, entries []domain.CatalogEntry) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	inserted := 0
	for i := range entries {
		entry := entries[i]
		if _, exists := c.entries[catalogKey{entry.Kind, entry.Code}]; exists {
			continue
		}
		c.insert(&entry)
		inserted++
	}
	return inserted, nil
}

func (c *catalogTable) insert(entry *domain.CatalogEntry) {
	c.nextID++
	entry.ID = c.nextID
	entry.CreatedAt = c.now()
	c.entries[catalogKey{entry.Kind, entry.Code}] = *entry
}

type principalTable struct {
	mu    sync.RWMutex
	now   func() time.Time
	known map[string]domain.KnownPrincipal
}

func newPrincipalTable(now func() time.Time) *principalTable {
	return &principalTable{now: now, known: map[string]domain.KnownPrincipal{}}
}

func (p *principalTable) Upsert(_ context.Context, principal domain.Principal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	existing, ok := p.known[principal.SubjectID]
	if !ok {
		existing = domain.KnownPrincipal{Active: true, CreatedAt: now}
	}
	existing.Principal = principal
	existing.UpdatedAt = now
	p.known[principal.SubjectID] = existing
	return nil
}

func (p *principalTable) GetByID(_ context.Context, subjectID string) (*domain.KnownPrincipal, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	known, ok := p.known[subjectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &known, nil
}

func (p *principalTable) ListByRoles(_ context.Context, roles ...domain.Role) ([]domain.KnownPrincipal, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	wanted := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		wanted[role] = true
	}
	result := []domain.KnownPrincipal{}
	for _, known := range p.known {
		if known.Active && wanted[known.Role] {
			result = append(result, known)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DisplayName != result[j].DisplayName {
			return result[i].DisplayName < result[j].DisplayName
		}
		return result[i].SubjectID < result[j].SubjectID
	})
	return result, nil
}
