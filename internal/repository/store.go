package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same repository code runs inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles the repositories over a shared connection source. InTx runs
// the given function against a transaction-backed Store; the multi-row
// aggregate cascade (message -> ticket -> user) must always go through it so
// readers never observe a half-synchronized state.
type Store interface {
	Users() UserRepository
	Tickets() TicketRepository
	Messages() MessageRepository
	InTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	pool *pgxpool.Pool
	db   Querier
}

// NewStore builds a pgx-backed Store.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *pgStore) Tickets() TicketRepository {
	return NewTicketRepository(s.db)
}

func (s *pgStore) Messages() MessageRepository {
	return NewMessageRepository(s.db)
}

func (s *pgStore) InTx(ctx context.Context, fn func(Store) error) error {
	if _, nested := s.db.(pgx.Tx); nested {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(&pgStore{pool: s.pool, db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
