package models

import "errors"

// Custom errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateKey       = errors.New("duplicate key violation")
	ErrInvalidRaceKey     = errors.New("invalid race key")
	ErrMalformedTicket    = errors.New("malformed ticket notation")
	ErrInsufficientField  = errors.New("insufficient riders for analysis")
	ErrOutcomeIncomplete  = errors.New("race outcome incomplete")
)
