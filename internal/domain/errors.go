package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")

	// ErrCounterUnderflow means a counter decrement would have taken an
	// aggregate below zero, i.e. the ledger and the counters disagree. It is
	// surfaced, never clamped; the caller reconciles by recount.
	ErrCounterUnderflow = errors.New("vote counter underflow")
)
