package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/guillermo-martinez42/cc6-trivago/internal/domain"
	"github.com/guillermo-martinez42/cc6-trivago/internal/repository/memory"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/flights"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/payment"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/seats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ledgerMock struct {
	mock.Mock
}

func (m *ledgerMock) RecordPurchase(ctx context.Context, tickets []domain.Ticket, txn domain.Transaction) error {
	args := m.Called(ctx, tickets, txn)
	return args.Error(0)
}

func (m *ledgerMock) RecordAttempt(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *ledgerMock) TicketsByUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ledgerMock) TransactionsByUser(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]domain.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

var testClock = func() time.Time {
	return time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)
}

type fixture struct {
	svc      *Service
	seats    *seats.Service
	registry *memory.CardRegistry
	sessions *memory.BookingStore
	ledger   *ledgerMock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	inv := memory.NewSeatInventory(nil)
	seatSvc := seats.New(inv, nil, nil, seats.Config{})
	flightSvc := flights.New(seatSvc, nil, flights.Config{})

	registry := memory.NewCardRegistry([]domain.CardAccount{
		{Number: "5555444433332222", Holder: "CARLOS RODRIGUEZ", Expiry: "202610", CVV: "789", Limit: 3000, Available: 2800, Issuer: "VISA"},
	})
	paySvc := payment.New(registry, nil).WithClock(testClock)

	sessions := memory.NewBookingStore()
	ledger := &ledgerMock{}

	svc := New(sessions, seatSvc, flightSvc, paySvc, ledger).WithClock(testClock)

	return &fixture{
		svc:      svc,
		seats:    seatSvc,
		registry: registry,
		sessions: sessions,
		ledger:   ledger,
	}
}

func testUser() domain.User {
	return domain.User{ID: 7, FullName: "Carlos Rodriguez", Document: "1234567890101", Email: "carlos@example.com"}
}

func validCard() payment.AuthorizeInput {
	return payment.AuthorizeInput{
		Number: "5555444433332222",
		Holder: "CARLOS RODRIGUEZ",
		Expiry: "202610",
		CVV:    "789",
	}
}

// 2025-09-08 is a Monday; CA123 runs GUA->FLW on Mondays.
const (
	testDate = "2025-09-08"
	testKey  = "CA-123-20250908"
)

func createBooking(t *testing.T, f *fixture, passengers int) *domain.Booking {
	t.Helper()

	b, err := f.svc.Create(context.Background(), testUser(), "CA", "123", testDate, passengers)
	require.NoError(t, err)
	return b
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	b := createBooking(t, f, 2)

	assert.Equal(t, domain.StateFlightSelected, b.State)
	assert.Equal(t, "CA123", b.Flight.Code())
	assert.Equal(t, 900.0, b.TotalPrice)
	assert.Equal(t, "09:15", b.Flight.ArrivalTime)

	got, err := f.svc.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestCreateUnknownFlight(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), testUser(), "CA", "999", testDate, 1)
	assert.ErrorIs(t, err, ErrFlightNotFound)
}

func TestCreateBadDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), testUser(), "CA", "123", "08/09/2025", 1)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestCreateNonOperatingDay(t *testing.T) {
	f := newFixture(t)

	// CA123 does not run on Tuesdays
	_, err := f.svc.Create(context.Background(), testUser(), "CA", "123", "2025-09-09", 1)
	assert.ErrorIs(t, err, ErrNotOperating)
}

func TestGetUnknownBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestSelectSeats(t *testing.T) {
	f := newFixture(t)
	b := createBooking(t, f, 2)

	got, err := f.svc.SelectSeats(context.Background(), b.ID, []string{"4A", "4B"})
	require.NoError(t, err)

	assert.Equal(t, domain.StateSeatsSelected, got.State)
	assert.Equal(t, []string{"4A", "4B"}, got.Seats)
}

func TestSelectSeatsOccupied(t *testing.T) {
	f := newFixture(t)
	b := createBooking(t, f, 1)

	require.NoError(t, f.seats.Reserve(context.Background(), testKey, "4A"))

	_, err := f.svc.SelectSeats(context.Background(), b.ID, []string{"4A"})

	var conflict *seats.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"4A"}, conflict.Seats)
}

func TestSelectSeatsCountMismatch(t *testing.T) {
	f := newFixture(t)
	b := createBooking(t, f, 2)

	_, err := f.svc.SelectSeats(context.Background(), b.ID, []string{"4A"})
	assert.ErrorIs(t, err, domain.ErrSeatCountMismatch)
}

func TestPayApproved(t *testing.T) {
	f := newFixture(t)
	b := createBooking(t, f, 2)
	ctx := context.Background()

	_, err := f.svc.SelectSeats(ctx, b.ID, []string{"4A", "4B"})
	require.NoError(t, err)

	f.ledger.On("RecordPurchase", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.Pay(ctx, b.ID, validCard(), "")
	require.NoError(t, err)

	assert.Equal(t, domain.AuthApproved, result.Authorization.Status)
	require.Len(t, result.Tickets, 2)

	tk := result.Tickets[0]
	assert.Equal(t, "4A", tk.Seat)
	assert.Equal(t, "Carlos Rodriguez", tk.Passenger)
	assert.Equal(t, result.Authorization.Code, tk.AuthCode)
	assert.Len(t, tk.Number, 14)
	assert.Equal(t, "CA123", tk.Number[:5])
	assert.NotEqual(t, result.Tickets[0].Number, result.Tickets[1].Number)

	// seats committed, balance charged, session gone
	assert.Equal(t, 78, f.seats.AvailableCount(testKey, "Airbus A320"))
	avail, _ := f.registry.Available("5555444433332222")
	assert.Equal(t, 1900.0, avail)
	_, err = f.svc.Get(ctx, b.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	f.ledger.AssertExpectations(t)
}

func TestPayDeniedReleasesSeats(t *testing.T) {
	f := newFixture(t)
	b := createBooking(t, f, 1)
	ctx := context.Background()

	_, err := f.svc.SelectSeats(ctx, b.ID, []string{"4A"})
	require.NoError(t, err)

	f.ledger.On("RecordAttempt", mock.Anything, mock.Anything).Return(nil)

	card := validCard()
	card.CVV = "000"

	result, err := f.svc.Pay(ctx, b.ID, card, "")
	require.NoError(t, err)

	assert.Equal(t, domain.AuthDenied, result.Authorization.Status)
	assert.Equal(t, domain.DenialCardNotFound, result.Authorization.Reason)
	assert.Empty(t, result.Tickets)

	// seats back on the market, session still retryable
	assert.Equal(t, 80, f.seats.AvailableCount(testKey, "Airbus A320"))
	got, err := f.svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateSeatsSelected, got.State)

	f.ledger.AssertExpectations(t)
}

func TestPaySeatConflict(t *testing.T) {
	f := newFixture(t)
	b := createBooking(t, f, 1)
	ctx := context.Background()

	_, err := f.svc.SelectSeats(ctx, b.ID, []string{"4A"})
	require.NoError(t, err)

	// a concurrent session grabs the seat before payment commits
	require.NoError(t, f.seats.Reserve(ctx, testKey, "4A"))

	_, err = f.svc.Pay(ctx, b.ID, validCard(), "")

	var conflict *seats.ConflictError
	require.ErrorAs(t, err, &conflict)

	// nothing charged
	avail, _ := f.registry.Available("5555444433332222")
	assert.Equal(t, 2800.0, avail)
}

func TestPayLedgerFailureRefunds(t *testing.T) {
	f := newFixture(t)
	b := createBooking(t, f, 1)
	ctx := context.Background()

	_, err := f.svc.SelectSeats(ctx, b.ID, []string{"4A"})
	require.NoError(t, err)

	f.ledger.On("RecordPurchase", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("db down"))

	_, err = f.svc.Pay(ctx, b.ID, validCard(), "")
	require.Error(t, err)

	// seats released and funds returned
	assert.Equal(t, 80, f.seats.AvailableCount(testKey, "Airbus A320"))
	avail, _ := f.registry.Available("5555444433332222")
	assert.Equal(t, 2800.0, avail)
}

func TestPayRequiresSeatsSelected(t *testing.T) {
	f := newFixture(t)
	b := createBooking(t, f, 1)

	_, err := f.svc.Pay(context.Background(), b.ID, validCard(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPayRecordsTransaction(t *testing.T) {
	f := newFixture(t)
	b := createBooking(t, f, 1)
	ctx := context.Background()

	_, err := f.svc.SelectSeats(ctx, b.ID, []string{"4A"})
	require.NoError(t, err)

	f.ledger.On("RecordPurchase", mock.Anything, mock.Anything, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.UserID == 7 &&
			txn.FlightCode == "CA123" &&
			txn.Amount == 450 &&
			txn.Status == domain.AuthApproved &&
			txn.CardLastFour == "2222" &&
			len(txn.TicketNumbers) == 1
	})).Return(nil)

	_, err = f.svc.Pay(ctx, b.ID, validCard(), "")
	require.NoError(t, err)

	f.ledger.AssertExpectations(t)
}

func TestAbandon(t *testing.T) {
	f := newFixture(t)
	b := createBooking(t, f, 1)
	ctx := context.Background()

	require.NoError(t, f.svc.Abandon(ctx, b.ID))

	_, err := f.svc.Get(ctx, b.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestAbandonUnknownBooking(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Abandon(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestSelectFlightResetsSeats(t *testing.T) {
	f := newFixture(t)
	b := createBooking(t, f, 2)
	ctx := context.Background()

	_, err := f.svc.SelectSeats(ctx, b.ID, []string{"4A", "4B"})
	require.NoError(t, err)

	// Wednesday; CA123 also runs on Wednesdays
	got, err := f.svc.SelectFlight(ctx, b.ID, "CA", "123", "2025-09-10", 1)
	require.NoError(t, err)

	assert.Equal(t, domain.StateFlightSelected, got.State)
	assert.Empty(t, got.Seats)
	assert.Equal(t, 450.0, got.TotalPrice)
}

func TestTicketsAndTransactionsDelegate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.ledger.On("TicketsByUser", mock.Anything, int64(7)).
		Return([]domain.Ticket{{Number: "CA123000000001"}}, nil)
	f.ledger.On("TransactionsByUser", mock.Anything, int64(7)).
		Return([]domain.Transaction{{FlightCode: "CA123"}}, nil)

	tickets, err := f.svc.Tickets(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)

	txns, err := f.svc.Transactions(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, txns, 1)

	f.ledger.AssertExpectations(t)
}
