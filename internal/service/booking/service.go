// Package booking drives a purchase end to end: the per-session state
// machine, the commit-time seat reservation, card authorization and ticket
// issuance, and the durable purchase trail.
package booking

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/guillermo-martinez42/cc6-trivago/internal/domain"
	"github.com/guillermo-martinez42/cc6-trivago/internal/refdata"
	"github.com/guillermo-martinez42/cc6-trivago/internal/repository/memory"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/flights"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/payment"
	"github.com/guillermo-martinez42/cc6-trivago/internal/service/seats"
)

type Service struct {
	sessions *memory.BookingStore
	seats    *seats.Service
	flights  *flights.Service
	payment  *payment.Service
	ledger   Ledger
	now      func() time.Time
}

func New(
	sessions *memory.BookingStore,
	seatSvc *seats.Service,
	flightSvc *flights.Service,
	paymentSvc *payment.Service,
	ledger Ledger,
) *Service {
	return &Service{
		sessions: sessions,
		seats:    seatSvc,
		flights:  flightSvc,
		payment:  paymentSvc,
		ledger:   ledger,
		now:      time.Now,
	}
}

// WithClock overrides the issuance clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create opens a booking session for an already-authenticated user and
// selects a flight for a date.
//
// Returns booking.ErrFlightNotFound, booking.ErrInvalidDate or
// booking.ErrNotOperating on bad selection input.
func (s *Service) Create(ctx context.Context, user domain.User, airline, number, date string, passengers int) (*domain.Booking, error) {
	const op = "service.booking.Create"

	f := refdata.FlightByKey(airline, number)
	if f == nil {
		return nil, fmt.Errorf("%s: %s%s: %w", op, airline, number, ErrFlightNotFound)
	}

	day, err := refdata.DayOfWeek(date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidDate)
	}
	if !f.OperatesOn(day) {
		return nil, fmt.Errorf("%s: %s%s on %s: %w", op, airline, number, day, ErrNotOperating)
	}

	b := domain.NewBooking(user)
	if err := b.SelectFlight(s.flights.Enrich(*f, date), date, passengers); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.sessions.Put(b)

	return b, nil
}

// Get returns an in-progress booking session.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Get"

	b, err := s.sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	}
	return b, nil
}

// SelectFlight re-selects the flight of an existing session, resetting any
// chosen seats.
func (s *Service) SelectFlight(ctx context.Context, id uuid.UUID, airline, number, date string, passengers int) (*domain.Booking, error) {
	const op = "service.booking.SelectFlight"

	b, err := s.sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	}

	f := refdata.FlightByKey(airline, number)
	if f == nil {
		return nil, fmt.Errorf("%s: %s%s: %w", op, airline, number, ErrFlightNotFound)
	}

	day, err := refdata.DayOfWeek(date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidDate)
	}
	if !f.OperatesOn(day) {
		return nil, fmt.Errorf("%s: %s%s on %s: %w", op, airline, number, day, ErrNotOperating)
	}

	if err := b.SelectFlight(s.flights.Enrich(*f, date), date, passengers); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// SelectSeats records the chosen seats on the session. Seats are only
// checked against current occupancy here; the binding check happens again
// at payment commit.
func (s *Service) SelectSeats(ctx context.Context, id uuid.UUID, seatCodes []string) (*domain.Booking, error) {
	const op = "service.booking.SelectSeats"

	b, err := s.sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	}

	key := refdata.InstanceKey(b.Flight.Airline, b.Flight.Number, b.Date)
	free := make(map[string]struct{})
	for _, seat := range s.seats.AvailableSeats(key, b.Flight.Aircraft) {
		free[seat.Code] = struct{}{}
	}
	for _, code := range seatCodes {
		if _, ok := free[code]; !ok {
			return nil, fmt.Errorf("%s: %w", op, &seats.ConflictError{FlightKey: key, Seats: []string{code}})
		}
	}

	if err := b.SelectSeats(seatCodes); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// PayResult is the outcome of a payment attempt. Tickets is populated only
// when the authorization was approved and the seats were reserved.
type PayResult struct {
	Authorization domain.Authorization `json:"authorization"`
	Tickets       []domain.Ticket      `json:"tickets,omitempty"`
}

// Pay completes a booking: reserves the selected seats all-or-nothing,
// authorizes the card, issues one ticket per seat and appends the purchase
// to the ledger. A denied card releases the seats and leaves the session in
// SeatsSelected so the user can retry with corrected input.
//
// Returns a seats.ConflictError when any selected seat was taken since
// selection; nothing is reserved or charged in that case.
func (s *Service) Pay(ctx context.Context, id uuid.UUID, card payment.AuthorizeInput, rlKey string) (*PayResult, error) {
	const op = "service.booking.Pay"

	b, err := s.sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	}

	if b.State != domain.StateSeatsSelected {
		return nil, fmt.Errorf("%s: state %s: %w", op, b.State, domain.ErrInvalidTransition)
	}

	card.Amount = b.TotalPrice
	key := refdata.InstanceKey(b.Flight.Airline, b.Flight.Number, b.Date)

	// Commit-time reservation: re-checks occupancy under the inventory lock.
	if err := s.seats.ReserveAll(ctx, key, b.Seats); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	auth, err := s.payment.Authorize(ctx, card, rlKey)
	if err != nil {
		s.seats.Release(ctx, key, b.Seats)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if auth.Status == domain.AuthDenied {
		s.seats.Release(ctx, key, b.Seats)
		s.recordAttempt(ctx, b, card, auth)
		return &PayResult{Authorization: auth}, nil
	}

	tickets := s.buildTickets(b, auth)

	txn := domain.Transaction{
		ID:           uuid.New(),
		UserID:       b.User.ID,
		FlightCode:   b.Flight.Code(),
		Date:         b.Date,
		Seats:        b.Seats,
		Amount:       b.TotalPrice,
		Status:       domain.AuthApproved,
		AuthCode:     auth.Code,
		CardLastFour: payment.LastFour(card.Number),
		CreatedAt:    s.now(),
	}
	for _, t := range tickets {
		txn.TicketNumbers = append(txn.TicketNumbers, t.Number)
	}

	if err := s.ledger.RecordPurchase(ctx, tickets, txn); err != nil {
		s.seats.Release(ctx, key, b.Seats)
		_ = s.payment.Refund(card.Number, b.TotalPrice)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := b.Authorize(auth.Code); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := b.Issue(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.sessions.Delete(b.ID)

	return &PayResult{Authorization: auth, Tickets: tickets}, nil
}

// Abandon discards a session prior to ticket issuance. Seats are only held
// inside Pay, so there is nothing to roll back besides the session itself.
func (s *Service) Abandon(ctx context.Context, id uuid.UUID) error {
	const op = "service.booking.Abandon"

	b, err := s.sessions.Get(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	}
	if !b.Abandonable() {
		return fmt.Errorf("%s: state %s: %w", op, b.State, domain.ErrInvalidTransition)
	}

	s.sessions.Delete(id)

	return nil
}

// Tickets returns a user's issued tickets from the ledger.
func (s *Service) Tickets(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	const op = "service.booking.Tickets"

	out, err := s.ledger.TicketsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Transactions returns a user's payment history from the ledger.
func (s *Service) Transactions(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	const op = "service.booking.Transactions"

	out, err := s.ledger.TransactionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (s *Service) recordAttempt(ctx context.Context, b *domain.Booking, card payment.AuthorizeInput, auth domain.Authorization) {
	_ = s.ledger.RecordAttempt(ctx, domain.Transaction{
		ID:           uuid.New(),
		UserID:       b.User.ID,
		FlightCode:   b.Flight.Code(),
		Date:         b.Date,
		Seats:        b.Seats,
		Amount:       b.TotalPrice,
		Status:       domain.AuthDenied,
		CardLastFour: payment.LastFour(card.Number),
		CreatedAt:    s.now(),
	})
}

func (s *Service) buildTickets(b *domain.Booking, auth domain.Authorization) []domain.Ticket {
	issued := s.now()
	used := make(map[string]struct{}, len(b.Seats))

	tickets := make([]domain.Ticket, 0, len(b.Seats))
	for _, seat := range b.Seats {
		num := ticketNumber(b.Flight.Airline, b.Flight.Number, issued)
		for {
			if _, dup := used[num]; !dup {
				break
			}
			num = ticketNumber(b.Flight.Airline, b.Flight.Number, issued)
		}
		used[num] = struct{}{}

		tickets = append(tickets, domain.Ticket{
			ID:            uuid.New(),
			Number:        num,
			UserID:        b.User.ID,
			Passenger:     b.User.FullName,
			Document:      b.User.Document,
			Airline:       b.Flight.Airline,
			AirlineName:   b.Flight.AirlineName,
			FlightNumber:  b.Flight.Number,
			Origin:        b.Flight.Origin,
			Destination:   b.Flight.Destination,
			Date:          b.Date,
			DepartureTime: b.Flight.DepartureTime,
			Duration:      b.Flight.Duration,
			Aircraft:      b.Flight.Aircraft,
			Seat:          seat,
			Price:         b.Flight.Price,
			AuthCode:      auth.Code,
			IssuedAt:      issued,
		})
	}

	return tickets
}

// ticketNumber builds airline+flight+the trailing six digits of the
// issuance timestamp+a random 3-digit suffix, e.g. "CA123456789042".
func ticketNumber(airline, number string, issued time.Time) string {
	ts := strconv.FormatInt(issued.UnixMilli(), 10)
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}

	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		n = big.NewInt(0)
	}

	return fmt.Sprintf("%s%s%s%03d", airline, number, ts, n.Int64())
}
