package models

import "errors"

// Failure kinds returned by the ledger services. Controllers map these to HTTP
// statuses with errors.Is; everything else is treated as an internal error.
var (
	ErrNotFound          = errors.New("record not found")
	ErrUnauthorized      = errors.New("caller is not the record owner")
	ErrInvalidState      = errors.New("operation not permitted in current status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrValidation        = errors.New("validation failed")
)
