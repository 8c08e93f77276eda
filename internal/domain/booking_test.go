package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlight() EnrichedFlight {
	return EnrichedFlight{
		Flight: Flight{
			Airline: "CA", AirlineName: "Air China", Number: "123",
			Origin: "GUA", Destination: "FLW",
			DepartureTime: "0800", Duration: "01:15",
			Price: 450, Aircraft: "Airbus A320",
		},
		Date: "2025-09-08",
	}
}

func TestBookingHappyPath(t *testing.T) {
	b := NewBooking(User{ID: 1, FullName: "Juan Perez"})
	assert.Equal(t, StateSearchingFlights, b.State)

	require.NoError(t, b.SelectFlight(testFlight(), "2025-09-08", 2))
	assert.Equal(t, StateFlightSelected, b.State)
	assert.Equal(t, 900.0, b.TotalPrice)

	require.NoError(t, b.SelectSeats([]string{"4A", "4B"}))
	assert.Equal(t, StateSeatsSelected, b.State)

	require.NoError(t, b.Authorize("123456"))
	assert.Equal(t, StatePaymentAuthorized, b.State)
	assert.Equal(t, "123456", b.AuthCode)

	require.NoError(t, b.Issue())
	assert.Equal(t, StateTicketIssued, b.State)
	assert.False(t, b.Abandonable())
}

func TestSelectFlightResetsSeats(t *testing.T) {
	b := NewBooking(User{ID: 1})
	require.NoError(t, b.SelectFlight(testFlight(), "2025-09-08", 2))
	require.NoError(t, b.SelectSeats([]string{"4A", "4B"}))

	require.NoError(t, b.SelectFlight(testFlight(), "2025-09-10", 1))
	assert.Equal(t, StateFlightSelected, b.State)
	assert.Empty(t, b.Seats)
	assert.Equal(t, 450.0, b.TotalPrice)
}

func TestSelectFlightAfterAuthorizationFails(t *testing.T) {
	b := NewBooking(User{ID: 1})
	require.NoError(t, b.SelectFlight(testFlight(), "2025-09-08", 1))
	require.NoError(t, b.SelectSeats([]string{"4A"}))
	require.NoError(t, b.Authorize("654321"))

	err := b.SelectFlight(testFlight(), "2025-09-10", 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSelectSeatsCountMismatch(t *testing.T) {
	b := NewBooking(User{ID: 1})
	require.NoError(t, b.SelectFlight(testFlight(), "2025-09-08", 2))

	assert.ErrorIs(t, b.SelectSeats([]string{"4A"}), ErrSeatCountMismatch)
	assert.ErrorIs(t, b.SelectSeats([]string{"4A", "4B", "4C"}), ErrSeatCountMismatch)
	assert.Equal(t, StateFlightSelected, b.State)
}

func TestSelectSeatsRejectsDuplicates(t *testing.T) {
	b := NewBooking(User{ID: 1})
	require.NoError(t, b.SelectFlight(testFlight(), "2025-09-08", 2))

	assert.ErrorIs(t, b.SelectSeats([]string{"4A", "4A"}), ErrSeatCountMismatch)
}

func TestSelectSeatsBeforeFlightFails(t *testing.T) {
	b := NewBooking(User{ID: 1})
	assert.ErrorIs(t, b.SelectSeats([]string{"4A"}), ErrInvalidTransition)
}

func TestAuthorizeRequiresSeats(t *testing.T) {
	b := NewBooking(User{ID: 1})
	require.NoError(t, b.SelectFlight(testFlight(), "2025-09-08", 1))

	assert.ErrorIs(t, b.Authorize("123456"), ErrInvalidTransition)
}

func TestIssueRequiresAuthorization(t *testing.T) {
	b := NewBooking(User{ID: 1})
	require.NoError(t, b.SelectFlight(testFlight(), "2025-09-08", 1))
	require.NoError(t, b.SelectSeats([]string{"4A"}))

	assert.ErrorIs(t, b.Issue(), ErrInvalidTransition)
}

func TestReselectSeatsBeforePayment(t *testing.T) {
	b := NewBooking(User{ID: 1})
	require.NoError(t, b.SelectFlight(testFlight(), "2025-09-08", 1))
	require.NoError(t, b.SelectSeats([]string{"4A"}))
	require.NoError(t, b.SelectSeats([]string{"5C"}))

	assert.Equal(t, []string{"5C"}, b.Seats)
}
