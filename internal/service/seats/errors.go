package seats

import "errors"

var (
	ErrFlightNotFound = errors.New("flight not found")
	ErrSeatOccupied   = errors.New("seat already occupied")
)

// ConflictError lists the seats that were already taken when an
// all-or-nothing reservation failed.
type ConflictError struct {
	FlightKey string
	Seats     []string
}

func (e *ConflictError) Error() string {
	return "seats unavailable on " + e.FlightKey
}

func (e *ConflictError) Unwrap() error { return ErrSeatOccupied }
