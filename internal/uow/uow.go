package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	postgresrepo "github.com/guillermo-martinez42/cc6-trivago/internal/repository/postgres"
)

// UoW runs ticket and transaction writes atomically against the history
// store.
type UoW struct {
	store *postgresrepo.Store
}

func NewUoW(store *postgresrepo.Store) *UoW {
	return &UoW{store: store}
}

// Do runs fn inside a serializable transaction.
func (u *UoW) Do(ctx context.Context, fn func(ctx context.Context, tx postgresrepo.DB) error) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// DoWithOpts is Do with explicit transaction options.
func (u *UoW) DoWithOpts(ctx context.Context, opts *pgx.TxOptions, fn func(ctx context.Context, tx postgresrepo.DB) error) error {
	return u.store.RunTx(ctx, opts, fn)
}
