package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campus360/incident-service/internal/domain"
)

// ErrDuplicate is returned when a unique key already exists.
var ErrDuplicate = errors.New("duplicate record")

// CatalogRepository manages the reference dictionaries.
type CatalogRepository interface {
	// GetByCode returns the entry regardless of its active flag.
	GetByCode(ctx context.Context, kind domain.CatalogKind, code string) (*domain.CatalogEntry, error)
	GetByID(ctx context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogEntry, error)
	List(ctx context.Context, kind domain.CatalogKind, includeInactive bool) ([]domain.CatalogEntry, error)
	Create(ctx context.Context, entry *domain.CatalogEntry) error
	SetActive(ctx context.Context, kind domain.CatalogKind, code string, active bool) (*domain.CatalogEntry, error)
	// Seed inserts entries whose (kind, code) is missing and reports how many were added.
	Seed(ctx context.Context, entries []domain.CatalogEntry) (int, error)
}

type catalogRepository struct {
	db dbtx
}

// NewCatalogRepository builds the repository.
func NewCatalogRepository(db dbtx) CatalogRepository {
	return &catalogRepository{db: db}
}

const catalogColumns = `id, kind, code, name, description, sort_order, level, color, building, floor, active, created_at`

func (r *catalogRepository) GetByCode(ctx context.Context, kind domain.CatalogKind, code string) (*domain.CatalogEntry, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_entries WHERE kind=$1 AND code=$2`
	entry, err := scanCatalogEntry(r.db.QueryRow(ctx, query, string(kind), code))
	if err != nil {
		return nil, notFound(err)
	}
	return entry, nil
}

func (r *catalogRepository) GetByID(ctx context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogEntry, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_entries WHERE kind=$1 AND id=$2`
	entry, err := scanCatalogEntry(r.db.QueryRow(ctx, query, string(kind), id))
	if err != nil {
		return nil, notFound(err)
	}
	return entry, nil
}

func (r *catalogRepository) List(ctx context.Context, kind domain.CatalogKind, includeInactive bool) ([]domain.CatalogEntry, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_entries WHERE kind=$1`
	if !includeInactive {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY sort_order ASC, level ASC, building ASC, floor ASC, name ASC`

	rows, err := r.db.Query(ctx, query, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CatalogEntry
	for rows.Next() {
		entry, err := scanCatalogEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

func (r *catalogRepository) Create(ctx context.Context, entry *domain.CatalogEntry) error {
	const query = `
        INSERT INTO catalog_entries (kind, code, name, description, sort_order, level, color, building, floor, active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		string(entry.Kind),
		entry.Code,
		entry.Name,
		entry.Description,
		entry.Order,
		entry.Level,
		entry.Color,
		entry.Building,
		entry.Floor,
		entry.Active,
	).Scan(&entry.ID, &entry.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s/%s", ErrDuplicate, entry.Kind, entry.Code)
	}
	return err
}

func (r *catalogRepository) SetActive(ctx context.Context, kind domain.CatalogKind, code string, active bool) (*domain.CatalogEntry, error) {
	query := `UPDATE catalog_entries SET active=$1 WHERE kind=$2 AND code=$3 RETURNING ` + catalogColumns
	entry, err := scanCatalogEntry(r.db.QueryRow(ctx, query, active, string(kind), code))
	if err != nil {
		return nil, notFound(err)
	}
	return entry, nil
}

func (r *catalogRepository) Seed(ctx context.Context, entries []domain.CatalogEntry) (int, error) {
	const query = `
        INSERT INTO catalog_entries (kind, code, name, description, sort_order, level, color, building, floor, active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (kind, code) DO NOTHING`
	inserted := 0
	for _, entry := range entries {
		cmd, err := r.db.Exec(ctx, query,
			string(entry.Kind),
			entry.Code,
			entry.Name,
			entry.Description,
			entry.Order,
			entry.Level,
			entry.Color,
			entry.Building,
			entry.Floor,
			entry.Active,
		)
		if err != nil {
			return inserted, fmt.Errorf("seed %s/%s: %w", entry.Kind, entry.Code, err)
		}
		inserted += int(cmd.RowsAffected())
	}
	return inserted, nil
}

func scanCatalogEntry(row pgx.Row) (*domain.CatalogEntry, error) {
	var (
		entry domain.CatalogEntry
		kind  string
	)
	if err := row.Scan(
		&entry.ID,
		&kind,
		&entry.Code,
		&entry.Name,
		&entry.Description,
		&entry.Order,
		&entry.Level,
		&entry.Color,
		&entry.Building,
		&entry.Floor,
		&entry.Active,
		&entry.CreatedAt,
	); err != nil {
		return nil, err
	}
	entry.Kind = domain.CatalogKind(kind)
	return &entry, nil
}
