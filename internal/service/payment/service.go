// Package payment implements the mock card processor: matching a card
// against the registry, the expiry and funds checks, and balance decrement
// on approval.
package payment

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/guillermo-martinez42/cc6-trivago/internal/domain"
	"github.com/guillermo-martinez42/cc6-trivago/internal/repository"
	"github.com/guillermo-martinez42/cc6-trivago/internal/repository/memory"
)

// RateLimiter caps authorization attempts per client key. The redis
// sliding-window limiter satisfies it in production; tests use fakes.
type RateLimiter interface {
	Allow(ctx context.Context, clientID string) (allowed bool, retryAfter time.Duration, err error)
}

type Service struct {
	registry *memory.CardRegistry
	limiter  RateLimiter
	now      func() time.Time
}

func New(registry *memory.CardRegistry, limiter RateLimiter) *Service {
	return &Service{
		registry: registry,
		limiter:  limiter,
		now:      time.Now,
	}
}

// WithClock overrides the expiry-check clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AuthorizeInput carries the raw card fields from the payment form.
// Number may include spaces; Expiry may be "YYYY-MM" or "YYYYMM".
type AuthorizeInput struct {
	Number string
	Holder string
	Expiry string
	CVV    string
	Amount float64
}

// Authorize validates a card against the registry and, on approval,
// decrements its available balance by the amount and returns a 6-digit
// authorization code.
//
// A denial is a normal outcome, returned as a DENEGADO authorization with
// the first failing reason in check order: card_not_found, expired,
// insufficient_funds. The balance is untouched on every denial path.
//
// Returns payment.ErrRateLimited when the caller exceeded the attempt
// window identified by rlKey.
func (s *Service) Authorize(ctx context.Context, in AuthorizeInput, rlKey string) (domain.Authorization, error) {
	const op = "service.payment.Authorize"

	if s.limiter != nil && rlKey != "" {
		ok, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return domain.Authorization{}, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return domain.Authorization{}, fmt.Errorf("%s: retry in %s: %w", op, retry, ErrRateLimited)
		}
	}

	number := strings.ReplaceAll(in.Number, " ", "")
	expiry := strings.ReplaceAll(in.Expiry, "-", "")

	card, err := s.registry.Find(number, strings.TrimSpace(in.Holder), expiry, in.CVV)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return denied(domain.DenialCardNotFound), nil
		}
		return domain.Authorization{}, fmt.Errorf("%s: %w", op, err)
	}

	if expiry < s.now().Format("200601") {
		return denied(domain.DenialExpired), nil
	}

	if _, err := s.registry.Debit(number, in.Amount); err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			return denied(domain.DenialInsufficientFunds), nil
		}
		return domain.Authorization{}, fmt.Errorf("%s: %w", op, err)
	}

	return domain.Authorization{
		Status: domain.AuthApproved,
		Code:   authCode(),
		Issuer: card.Issuer,
	}, nil
}

// Refund returns an authorized amount to the card, used when the booking
// fails after approval.
func (s *Service) Refund(number string, amount float64) error {
	const op = "service.payment.Refund"

	if err := s.registry.Credit(strings.ReplaceAll(number, " ", ""), amount); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func denied(reason domain.DenialReason) domain.Authorization {
	return domain.Authorization{
		Status: domain.AuthDenied,
		Code:   "0",
		Reason: reason,
	}
}

// authCode generates a zero-padded 6-digit authorization code from a
// cryptographic source, so codes are not guessable across sessions.
func authCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// Luhn reports whether a card number passes the Luhn checksum. It is a
// syntactic sanity check only; registry matching never depends on it.
func Luhn(number string) bool {
	sum := 0
	alternate := false

	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		n := int(c - '0')

		if alternate {
			n *= 2
			if n > 9 {
				n = n%10 + 1
			}
		}

		sum += n
		alternate = !alternate
	}

	return sum%10 == 0
}

// MaskNumber renders a card number for logs and history, keeping only the
// last four digits.
func MaskNumber(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	if len(number) < 4 {
		return number
	}
	return "**** **** **** " + number[len(number)-4:]
}

// LastFour returns the trailing digits stored with a transaction record.
func LastFour(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	if len(number) < 4 {
		return number
	}
	return number[len(number)-4:]
}
