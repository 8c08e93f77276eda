package repository

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrSeatOccupied      = errors.New("seat already occupied")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
