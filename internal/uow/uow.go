// Package uow runs a transactional write together with a queue of
// post-commit effects. The booking flow uses it so confirmation emails,
// payment sessions and cache invalidation only ever fire for rows that
// actually committed.
package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	postgres "github.com/nightowl-club/tablepass/internal/repository/postgres"
)

// Effect is a post-commit follow-up. Effects run in enqueue order, outside
// the transaction, and their failures cannot unwind the committed write.
type Effect func(ctx context.Context)

// TxStore is the transactional surface of the persistence layer.
type TxStore interface {
	RunTx(ctx context.Context, opts *pgx.TxOptions, fn func(ctx context.Context, tx postgres.DB) error) error
}

type UnitOfWork struct {
	store TxStore
}

func New(store TxStore) *UnitOfWork {
	return &UnitOfWork{store: store}
}

// Do runs fn inside a transaction and, after a successful commit, drains
// the effects fn enqueued. A rollback discards the queue untouched.
func (u *UnitOfWork) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx postgres.DB, enqueue func(Effect)) error,
) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// DoWithOpts is Do with explicit transaction options.
func (u *UnitOfWork) DoWithOpts(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, tx postgres.DB, enqueue func(Effect)) error,
) error {
	var effects []Effect

	err := u.store.RunTx(ctx, opts, func(ctx context.Context, tx postgres.DB) error {
		return fn(ctx, tx, func(e Effect) {
			effects = append(effects, e)
		})
	})
	if err != nil {
		return err
	}

	for _, e := range effects {
		e(ctx)
	}

	return nil
}
