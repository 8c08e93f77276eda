package payment

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/guillermo-martinez42/cc6-trivago/internal/domain"
	"github.com/guillermo-martinez42/cc6-trivago/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClock = func() time.Time {
	return time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService() (*Service, *memory.CardRegistry) {
	registry := memory.NewCardRegistry([]domain.CardAccount{
		{Number: "5555444433332222", Holder: "CARLOS RODRIGUEZ", Expiry: "202610", CVV: "789", Limit: 3000, Available: 2800, Issuer: "VISA"},
		{Number: "1111222233334444", Holder: "LUIS GOMEZ", Expiry: "202409", CVV: "654", Limit: 6000, Available: 4500, Issuer: "AMEX"},
	})
	return New(registry, nil).WithClock(testClock), registry
}

func validInput(amount float64) AuthorizeInput {
	return AuthorizeInput{
		Number: "5555444433332222",
		Holder: "CARLOS RODRIGUEZ",
		Expiry: "202610",
		CVV:    "789",
		Amount: amount,
	}
}

func TestAuthorizeApproved(t *testing.T) {
	svc, registry := newTestService()

	auth, err := svc.Authorize(context.Background(), validInput(900), "")
	require.NoError(t, err)

	assert.Equal(t, domain.AuthApproved, auth.Status)
	assert.Equal(t, "VISA", auth.Issuer)
	assert.Empty(t, auth.Reason)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), auth.Code)

	avail, err := registry.Available("5555444433332222")
	require.NoError(t, err)
	assert.Equal(t, 1900.0, avail)
}

func TestAuthorizeNormalizesInput(t *testing.T) {
	svc, _ := newTestService()

	in := AuthorizeInput{
		Number: "5555 4444 3333 2222",
		Holder: " carlos rodriguez ",
		Expiry: "2026-10",
		CVV:    "789",
		Amount: 100,
	}

	auth, err := svc.Authorize(context.Background(), in, "")
	require.NoError(t, err)
	assert.Equal(t, domain.AuthApproved, auth.Status)
}

func TestAuthorizeCardNotFound(t *testing.T) {
	svc, registry := newTestService()

	in := validInput(100)
	in.CVV = "000"

	auth, err := svc.Authorize(context.Background(), in, "")
	require.NoError(t, err)

	assert.Equal(t, domain.AuthDenied, auth.Status)
	assert.Equal(t, domain.DenialCardNotFound, auth.Reason)
	assert.Equal(t, "0", auth.Code)

	avail, _ := registry.Available("5555444433332222")
	assert.Equal(t, 2800.0, avail)
}

func TestAuthorizeExpired(t *testing.T) {
	svc, registry := newTestService()

	// LUIS GOMEZ's card expired 2024-09, clock is 2025-09
	in := AuthorizeInput{
		Number: "1111222233334444",
		Holder: "LUIS GOMEZ",
		Expiry: "202409",
		CVV:    "654",
		Amount: 100,
	}

	auth, err := svc.Authorize(context.Background(), in, "")
	require.NoError(t, err)

	assert.Equal(t, domain.AuthDenied, auth.Status)
	assert.Equal(t, domain.DenialExpired, auth.Reason)

	avail, _ := registry.Available("1111222233334444")
	assert.Equal(t, 4500.0, avail)
}

func TestAuthorizeExpiryMonthBoundary(t *testing.T) {
	svc, _ := newTestService()

	// a card expiring the current month is still valid
	svc.WithClock(func() time.Time {
		return time.Date(2026, time.October, 31, 23, 0, 0, 0, time.UTC)
	})

	auth, err := svc.Authorize(context.Background(), validInput(100), "")
	require.NoError(t, err)
	assert.Equal(t, domain.AuthApproved, auth.Status)

	svc.WithClock(func() time.Time {
		return time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
	})

	auth, err = svc.Authorize(context.Background(), validInput(100), "")
	require.NoError(t, err)
	assert.Equal(t, domain.AuthDenied, auth.Status)
	assert.Equal(t, domain.DenialExpired, auth.Reason)
}

func TestAuthorizeInsufficientFunds(t *testing.T) {
	svc, registry := newTestService()

	auth, err := svc.Authorize(context.Background(), validInput(2801), "")
	require.NoError(t, err)

	assert.Equal(t, domain.AuthDenied, auth.Status)
	assert.Equal(t, domain.DenialInsufficientFunds, auth.Reason)

	avail, _ := registry.Available("5555444433332222")
	assert.Equal(t, 2800.0, avail)
}

func TestAuthorizeExactBalance(t *testing.T) {
	svc, registry := newTestService()

	auth, err := svc.Authorize(context.Background(), validInput(2800), "")
	require.NoError(t, err)
	assert.Equal(t, domain.AuthApproved, auth.Status)

	avail, _ := registry.Available("5555444433332222")
	assert.Equal(t, 0.0, avail)
}

type denyAllLimiter struct {
	retry time.Duration
}

func (l denyAllLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, l.retry, nil
}

func TestAuthorizeRateLimited(t *testing.T) {
	registry := memory.NewCardRegistry([]domain.CardAccount{
		{Number: "5555444433332222", Holder: "CARLOS RODRIGUEZ", Expiry: "202610", CVV: "789", Limit: 3000, Available: 2800, Issuer: "VISA"},
	})
	svc := New(registry, denyAllLimiter{retry: 30 * time.Second}).WithClock(testClock)

	_, err := svc.Authorize(context.Background(), validInput(100), "card:10.0.0.1")
	require.ErrorIs(t, err, ErrRateLimited)

	avail, _ := registry.Available("5555444433332222")
	assert.Equal(t, 2800.0, avail)
}

func TestRefund(t *testing.T) {
	svc, registry := newTestService()

	_, err := svc.Authorize(context.Background(), validInput(900), "")
	require.NoError(t, err)

	require.NoError(t, svc.Refund("5555 4444 3333 2222", 900))

	avail, _ := registry.Available("5555444433332222")
	assert.Equal(t, 2800.0, avail)
}

func TestLuhn(t *testing.T) {
	assert.True(t, Luhn("4532015112830366"))
	assert.False(t, Luhn("4532015112830367"))
	assert.False(t, Luhn("4532 0151 1283 0366")) // digits only
	assert.False(t, Luhn("abcd"))
}

func TestMaskNumber(t *testing.T) {
	assert.Equal(t, "**** **** **** 2222", MaskNumber("5555444433332222"))
	assert.Equal(t, "**** **** **** 2222", MaskNumber("5555 4444 3333 2222"))
	assert.Equal(t, "123", MaskNumber("123"))
}

func TestLastFour(t *testing.T) {
	assert.Equal(t, "2222", LastFour("5555 4444 3333 2222"))
	assert.Equal(t, "123", LastFour("123"))
}
