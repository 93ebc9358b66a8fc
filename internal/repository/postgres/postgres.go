package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Pierre48/hrcard/internal/repository"
)

const uniqueViolationCode = "23505"

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// mapWriteError translates driver-level uniqueness conflicts into the
// repository sentinel so callers can react without importing pgconn.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return repository.ErrDuplicate
	}
	return err
}

// Repositories aggregates the PostgreSQL-backed repositories.
type Repositories struct {
	Accounts    *AccountRepository
	Authorities *AuthorityRepository
}

// NewRepositories wires all repositories on top of a shared pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Accounts:    NewAccountRepository(pool),
		Authorities: NewAuthorityRepository(pool),
	}
}
