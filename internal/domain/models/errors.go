package models

import "errors"

var (
	// ErrUnknownTicker is returned when the requested ticker has no metadata record.
	ErrUnknownTicker = errors.New("no metadata for ticker")
	// ErrInvalidAllocation is returned when the requested ticker's current allocation is zero or missing.
	ErrInvalidAllocation = errors.New("invalid or zero allocation for ticker")
	// ErrDegenerateAllocation is returned when every proposed allocation collapses to zero.
	ErrDegenerateAllocation = errors.New("proposed allocations sum to zero")
)
