package repository

import (
	"context"

	"github.com/campus360/incident-service/internal/domain"
)

// PrincipalRepository keeps the principals seen by the service so
// responsibles can be validated and technicians listed.
type PrincipalRepository interface {
	Upsert(ctx context.Context, principal domain.Principal) error
	GetByID(ctx context.Context, subjectID string) (*domain.KnownPrincipal, error)
	ListByRoles(ctx context.Context, roles ...domain.Role) ([]domain.KnownPrincipal, error)
}

type principalRepository struct {
	db dbtx
}

// NewPrincipalRepository returns a Postgres-backed implementation.
func NewPrincipalRepository(db dbtx) PrincipalRepository {
	return &principalRepository{db: db}
}

func (r *principalRepository) Upsert(ctx context.Context, principal domain.Principal) error {
	const query = `
        INSERT INTO principals (subject_id, email, display_name, role)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (subject_id) DO UPDATE
        SET email=EXCLUDED.email, display_name=EXCLUDED.display_name, role=EXCLUDED.role, updated_at=NOW()`
	_, err := r.db.Exec(ctx, query,
		principal.SubjectID,
		principal.Email,
		principal.DisplayName,
		string(principal.Role),
	)
	return err
}

func (r *principalRepository) GetByID(ctx context.Context, subjectID string) (*domain.KnownPrincipal, error) {
	const query = `
        SELECT subject_id, email, display_name, role, active, created_at, updated_at
        FROM principals WHERE subject_id=$1`

	var (
		known domain.KnownPrincipal
		role  string
	)
	if err := r.db.QueryRow(ctx, query, subjectID).Scan(
		&known.SubjectID,
		&known.Email,
		&known.DisplayName,
		&role,
		&known.Active,
		&known.CreatedAt,
		&known.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	known.Role = domain.Role(role)
	return &known, nil
}

func (r *principalRepository) ListByRoles(ctx context.Context, roles ...domain.Role) ([]domain.KnownPrincipal, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	const query = `
        SELECT subject_id, email, display_name, role, active, created_at, updated_at
        FROM principals WHERE active = TRUE AND role = ANY($1)
        ORDER BY display_name ASC, subject_id ASC`
	rows, err := r.db.Query(ctx, query, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.KnownPrincipal
	for rows.Next() {
		var (
			known domain.KnownPrincipal
			role  string
		)
		if err := rows.Scan(
			&known.SubjectID,
			&known.Email,
			&known.DisplayName,
			&role,
			&known.Active,
			&known.CreatedAt,
			&known.UpdatedAt,
		); err != nil {
			return nil, err
		}
		known.Role = domain.Role(role)
		result = append(result, known)
	}
	return result, rows.Err()
}
