package booking

import (
	"context"

	"github.com/guillermo-martinez42/cc6-trivago/internal/domain"
	postgresrepo "github.com/guillermo-martinez42/cc6-trivago/internal/repository/postgres"
	"github.com/guillermo-martinez42/cc6-trivago/internal/uow"
)

// Ledger is the durable side of a purchase: issued tickets and the
// transaction trail, appended and read back by user identity.
type Ledger interface {
	RecordPurchase(ctx context.Context, tickets []domain.Ticket, txn domain.Transaction) error
	RecordAttempt(ctx context.Context, txn domain.Transaction) error
	TicketsByUser(ctx context.Context, userID int64) ([]domain.Ticket, error)
	TransactionsByUser(ctx context.Context, userID int64) ([]domain.Transaction, error)
}

// PgLedger implements Ledger on the postgres history store. A purchase
// writes its tickets and transaction in one serializable transaction.
type PgLedger struct {
	store *postgresrepo.Store
	uow   *uow.UoW
}

func NewPgLedger(store *postgresrepo.Store) *PgLedger {
	return &PgLedger{store: store, uow: uow.NewUoW(store)}
}

func (l *PgLedger) RecordPurchase(ctx context.Context, tickets []domain.Ticket, txn domain.Transaction) error {
	return l.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB) error {
		if err := l.store.History().With(tx).AppendTickets(ctx, tickets); err != nil {
			return err
		}
		return l.store.History().With(tx).AppendTransaction(ctx, txn)
	})
}

func (l *PgLedger) RecordAttempt(ctx context.Context, txn domain.Transaction) error {
	return l.store.History().AppendTransaction(ctx, txn)
}

func (l *PgLedger) TicketsByUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	return l.store.History().TicketsByUser(ctx, userID)
}

func (l *PgLedger) TransactionsByUser(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	return l.store.History().TransactionsByUser(ctx, userID)
}

var _ Ledger = (*PgLedger)(nil)
