package seats

import (
	"context"
	"testing"

	"github.com/guillermo-martinez42/cc6-trivago/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(seed map[string][]string) *Service {
	return New(memory.NewSeatInventory(seed), nil, nil, Config{})
}

func TestAvailableSeatsRowMajor(t *testing.T) {
	svc := newTestService(nil)

	seats := svc.AvailableSeats("CA-123-20250908", "Airbus A320")
	require.Len(t, seats, 80)

	assert.Equal(t, "1A", seats[0].Code)
	assert.Equal(t, "1B", seats[1].Code)
	assert.Equal(t, "1D", seats[3].Code)
	assert.Equal(t, "2A", seats[4].Code)
	assert.Equal(t, "20D", seats[79].Code)
}

func TestAvailableSeatsExcludesOccupied(t *testing.T) {
	svc := newTestService(map[string][]string{
		"CA-123-20250909": {"1A", "1B"},
	})

	seats := svc.AvailableSeats("CA-123-20250909", "Airbus A320")
	require.Len(t, seats, 78)
	assert.Equal(t, "1C", seats[0].Code)

	// other instances of the same flight are untouched
	assert.Len(t, svc.AvailableSeats("CA-123-20250910", "Airbus A320"), 80)
}

func TestAvailableSeatsUnknownAircraft(t *testing.T) {
	svc := newTestService(nil)

	assert.Nil(t, svc.AvailableSeats("CA-123-20250908", "Concorde"))
	assert.Equal(t, 0, svc.AvailableCount("CA-123-20250908", "Concorde"))
}

func TestAvailableCount(t *testing.T) {
	svc := newTestService(map[string][]string{
		"CA-123-20250909": {"1A", "1B", "2C"},
	})

	assert.Equal(t, 77, svc.AvailableCount("CA-123-20250909", "Airbus A320"))
	assert.Equal(t, 80, svc.AvailableCount("CA-124-20250909", "Airbus A320"))
}

func TestSeatMap(t *testing.T) {
	svc := newTestService(map[string][]string{
		"CA-123-20250908": {"1A"},
	})

	seatMap, err := svc.SeatMap(context.Background(), "CA", "123", "2025-09-08")
	require.NoError(t, err)
	require.Len(t, seatMap, 80)

	assert.Equal(t, "1A", seatMap[0].Code)
	assert.True(t, seatMap[0].Occupied)
	assert.False(t, seatMap[1].Occupied)
}

func TestSeatMapUnknownFlight(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.SeatMap(context.Background(), "XX", "999", "2025-09-08")
	assert.ErrorIs(t, err, ErrFlightNotFound)
}

func TestReserveAllConflict(t *testing.T) {
	svc := newTestService(map[string][]string{
		"CA-123-20250909": {"5B"},
	})

	err := svc.ReserveAll(context.Background(), "CA-123-20250909", []string{"5A", "5B"})
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"5B"}, conflict.Seats)
	assert.ErrorIs(t, err, ErrSeatOccupied)

	// nothing partially reserved
	assert.Equal(t, 79, svc.AvailableCount("CA-123-20250909", "Airbus A320"))
}

func TestReserveAllThenRelease(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	require.NoError(t, svc.ReserveAll(ctx, "AV-801-20250910", []string{"2A", "2B"}))
	assert.Equal(t, 78, svc.AvailableCount("AV-801-20250910", "Airbus A320"))

	svc.Release(ctx, "AV-801-20250910", []string{"2A", "2B"})
	assert.Equal(t, 80, svc.AvailableCount("AV-801-20250910", "Airbus A320"))
}

func TestReserveSingleSeat(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	require.NoError(t, svc.Reserve(ctx, "CA-123-20250908", "7C"))

	err := svc.Reserve(ctx, "CA-123-20250908", "7C")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"7C"}, conflict.Seats)
}
