// Package seed ships the baseline catalog entries every deployment needs.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/campus360/incident-service/internal/domain"
	"github.com/campus360/incident-service/internal/repository"
)

//go:embed catalogs.yaml
var catalogsYAML []byte

type catalogEntry struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Order       int    `yaml:"order"`
	Level       int    `yaml:"level"`
	Color       string `yaml:"color"`
	Building    string `yaml:"building"`
	Floor       string `yaml:"floor"`
}

type catalogFile struct {
	States     []catalogEntry `yaml:"states"`
	Priorities []catalogEntry `yaml:"priorities"`
	Categories []catalogEntry `yaml:"categories"`
	Locations  []catalogEntry `yaml:"locations"`
}

// Catalogs returns the embedded baseline entries, all active.
func Catalogs() ([]domain.CatalogEntry, error) {
	return Parse(catalogsYAML)
}

// Parse decodes a catalog seed document.
func Parse(data []byte) ([]domain.CatalogEntry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog seed: %w", err)
	}

	var out []domain.CatalogEntry
	groups := []struct {
		kind    domain.CatalogKind
		entries []catalogEntry
	}{
		{domain.CatalogState, file.States},
		{domain.CatalogPriority, file.Priorities},
		{domain.CatalogCategory, file.Categories},
		{domain.CatalogLocation, file.Locations},
	}
	for _, group := range groups {
		seen := make(map[string]struct{}, len(group.entries))
		for _, e := range group.entries {
			if e.Code == "" || e.Name == "" {
				return nil, fmt.Errorf("catalog seed: %s entry missing code or name", group.kind)
			}
			if _, dup := seen[e.Code]; dup {
				return nil, fmt.Errorf("catalog seed: duplicate %s code %q", group.kind, e.Code)
			}
			seen[e.Code] = struct{}{}
			out = append(out, domain.CatalogEntry{
				Kind:        group.kind,
				Code:        e.Code,
				Name:        e.Name,
				Description: e.Description,
				Order:       e.Order,
				Level:       e.Level,
				Color:       e.Color,
				Building:    e.Building,
				Floor:       e.Floor,
				Active:      true,
			})
		}
	}
	return out, nil
}

// Apply inserts the baseline entries that repo does not have yet. Existing
// entries, including deactivated ones, are left untouched.
func Apply(ctx context.Context, repo repository.CatalogRepository, logger *zap.Logger) (int, error) {
	entries, err := Catalogs()
	if err != nil {
		return 0, err
	}
	inserted, err := repo.Seed(ctx, entries)
	if err != nil {
		return 0, fmt.Errorf("seed catalogs: %w", err)
	}
	logger.Info("catalog seed applied", zap.Int("inserted", inserted), zap.Int("known", len(entries)))
	return inserted, nil
}
