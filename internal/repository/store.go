package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("record not found")

// Repositories exposes the ticket-owned collections bound to one transaction.
type Repositories interface {
	Tickets() TicketRepository
	History() TicketHistoryRepository
	Comments() CommentRepository
	Attachments() AttachmentRepository
}

// Store is the transaction boundary. fn runs against repositories bound to a
// single transaction which commits when fn returns nil and rolls back otherwise.
type Store interface {
	WithTx(ctx context.Context, fn func(repos Repositories) error) error
}

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore runs transactions on a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore builds the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// WithTx opens a read-committed transaction; ticket rows are locked explicitly
// through TicketRepository.GetForUpdate.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(repos Repositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(pgRepositories{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type pgRepositories struct {
	db dbtx
}

func (r pgRepositories) Tickets() TicketRepository { return NewTicketRepository(r.db) }

func (r pgRepositories) History() TicketHistoryRepository { return NewTicketHistoryRepository(r.db) }

func (r pgRepositories) Comments() CommentRepository { return NewCommentRepository(r.db) }

func (r pgRepositories) Attachments() AttachmentRepository { return NewAttachmentRepository(r.db) }

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
