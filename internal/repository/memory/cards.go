package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/guillermo-martinez42/cc6-trivago/internal/domain"
	"github.com/guillermo-martinez42/cc6-trivago/internal/repository"
)

// CardRegistry is the mock card store. Balances mutate under a single lock,
// so a debit can never race another debit below zero.
type CardRegistry struct {
	mu    sync.Mutex
	cards []domain.CardAccount
}

// NewCardRegistry copies the seed records so the caller's slice stays pristine.
func NewCardRegistry(seed []domain.CardAccount) *CardRegistry {
	return &CardRegistry{cards: append([]domain.CardAccount(nil), seed...)}
}

// Find matches a card by exact number, expiry and CVV, and case-insensitive
// holder name. Returns a copy; balances are only changed through Debit/Credit.
func (r *CardRegistry) Find(number, holder, expiry, cvv string) (domain.CardAccount, error) {
	const op = "memory.CardRegistry.Find"

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.cards {
		if c.Number == number &&
			strings.EqualFold(c.Holder, holder) &&
			c.Expiry == expiry &&
			c.CVV == cvv {
			return c, nil
		}
	}

	return domain.CardAccount{}, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
}

// Debit decreases the available balance by amount. The balance is re-checked
// under the lock; a debit that would go negative fails with no mutation.
func (r *CardRegistry) Debit(number string, amount float64) (remaining float64, err error) {
	const op = "memory.CardRegistry.Debit"

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.cards {
		if r.cards[i].Number != number {
			continue
		}
		if r.cards[i].Available < amount {
			return r.cards[i].Available, fmt.Errorf("%s: %w", op, repository.ErrInsufficientFunds)
		}
		r.cards[i].Available -= amount
		return r.cards[i].Available, nil
	}

	return 0, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
}

// Credit returns funds to a card, used when a booking fails after an
// approved authorization. Capped at the credit limit.
func (r *CardRegistry) Credit(number string, amount float64) error {
	const op = "memory.CardRegistry.Credit"

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.cards {
		if r.cards[i].Number != number {
			continue
		}
		r.cards[i].Available += amount
		if r.cards[i].Available > r.cards[i].Limit {
			r.cards[i].Available = r.cards[i].Limit
		}
		return nil
	}

	return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
}

// Available reports the current balance of a card by number.
func (r *CardRegistry) Available(number string) (float64, error) {
	const op = "memory.CardRegistry.Available"

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.cards {
		if c.Number == number {
			return c.Available, nil
		}
	}

	return 0, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
}
