package booking

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrFlightNotFound  = errors.New("flight not found")
	ErrInvalidDate     = errors.New("invalid travel date")
	ErrNotOperating    = errors.New("flight does not operate on that date")
)
