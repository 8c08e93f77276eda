package flights

import "errors"

var (
	ErrInvalidSearch  = errors.New("invalid search parameters")
	ErrFlightNotFound = errors.New("flight not found")
)
