package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// BookingState is the stage of an in-progress booking. Transitions are
// strictly ordered; selecting a new flight resets the booking to
// StateFlightSelected.
type BookingState string

const (
	StateSearchingFlights  BookingState = "SEARCHING_FLIGHTS"
	StateFlightSelected    BookingState = "FLIGHT_SELECTED"
	StateSeatsSelected     BookingState = "SEATS_SELECTED"
	StatePaymentAuthorized BookingState = "PAYMENT_AUTHORIZED"
	StateTicketIssued      BookingState = "TICKET_ISSUED"
)

var (
	ErrInvalidTransition = errors.New("invalid booking transition")
	ErrSeatCountMismatch = errors.New("selected seats must match passenger count")
)

// Booking is the transient per-session state of a purchase in progress.
// It is discarded after ticket issuance or abandonment.
type Booking struct {
	ID         uuid.UUID      `json:"id"`
	User       User           `json:"user"`
	State      BookingState   `json:"state"`
	Flight     EnrichedFlight `json:"flight"`
	Date       string         `json:"date"`
	Passengers int            `json:"passengers"`
	Seats      []string       `json:"seats"`
	TotalPrice float64        `json:"total_price"`
	AuthCode   string         `json:"auth_code,omitempty"`
}

// NewBooking starts a booking session in the searching state.
func NewBooking(user User) *Booking {
	return &Booking{
		ID:    uuid.New(),
		User:  user,
		State: StateSearchingFlights,
	}
}

// SelectFlight moves the booking to StateFlightSelected. Re-selecting a
// flight from any pre-payment state resets seats and total.
func (b *Booking) SelectFlight(f EnrichedFlight, date string, passengers int) error {
	if b.State == StatePaymentAuthorized || b.State == StateTicketIssued {
		return fmt.Errorf("%w: cannot select flight in state %s", ErrInvalidTransition, b.State)
	}
	if passengers < 1 {
		return fmt.Errorf("%w: passengers must be positive", ErrInvalidTransition)
	}

	b.Flight = f
	b.Date = date
	b.Passengers = passengers
	b.Seats = nil
	b.TotalPrice = f.Price * float64(passengers)
	b.State = StateFlightSelected

	return nil
}

// SelectSeats records the chosen seats. The seat count must equal the
// passenger count before payment can be attempted.
func (b *Booking) SelectSeats(seats []string) error {
	if b.State != StateFlightSelected && b.State != StateSeatsSelected {
		return fmt.Errorf("%w: cannot select seats in state %s", ErrInvalidTransition, b.State)
	}
	if len(seats) != b.Passengers {
		return fmt.Errorf("%w: got %d seats for %d passengers", ErrSeatCountMismatch, len(seats), b.Passengers)
	}

	seen := make(map[string]struct{}, len(seats))
	for _, s := range seats {
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: duplicate seat %s", ErrSeatCountMismatch, s)
		}
		seen[s] = struct{}{}
	}

	b.Seats = append([]string(nil), seats...)
	b.State = StateSeatsSelected

	return nil
}

// Authorize records an approved payment. Only valid once all seats are chosen.
func (b *Booking) Authorize(authCode string) error {
	if b.State != StateSeatsSelected {
		return fmt.Errorf("%w: cannot authorize in state %s", ErrInvalidTransition, b.State)
	}

	b.AuthCode = authCode
	b.State = StatePaymentAuthorized

	return nil
}

// Issue marks the booking complete. Only valid after authorization.
func (b *Booking) Issue() error {
	if b.State != StatePaymentAuthorized {
		return fmt.Errorf("%w: cannot issue tickets in state %s", ErrInvalidTransition, b.State)
	}

	b.State = StateTicketIssued

	return nil
}

// Abandonable reports whether the session may still be discarded by the user.
func (b *Booking) Abandonable() bool {
	return b.State != StateTicketIssued
}
