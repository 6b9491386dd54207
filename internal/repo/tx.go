package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Transactor runs a unit of work against a ServiceRepo bound to a single
// database transaction. When fn returns an error every write it made is
// rolled back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ServiceRepo) error) error
}

// beginner is satisfied by *pgxpool.Pool and by pgx.Tx, which nests through a
// savepoint. Integration tests rely on the latter to run a Transactor inside
// their own rolled-back transaction.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgTransactor struct {
	db beginner
}

// NewTransactor returns a Transactor that opens transactions on db.
func NewTransactor(db beginner) Transactor {
	return &pgTransactor{db: db}
}

// WithinTx begins a transaction, hands fn a repo bound to it, and commits if
// fn succeeds.
func (t *pgTransactor) WithinTx(ctx context.Context, fn func(ServiceRepo) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.Transactor.WithinTx: begin: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewServiceRepo(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.Transactor.WithinTx: commit: %w", err)
	}
	return nil
}
