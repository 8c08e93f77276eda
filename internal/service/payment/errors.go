package payment

import "errors"

var (
	ErrRateLimited = errors.New("too many authorization attempts")
)
