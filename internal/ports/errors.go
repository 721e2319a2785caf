package ports

import "errors"

// Standard application-level errors.
// Adapters and strategy packages wrap underlying failures with these so
// callers can branch with errors.Is without knowing the source package.
var (
	// Core taxonomy
	ErrConfiguration    = errors.New("invalid or missing configuration")
	ErrInsufficientData = errors.New("not enough data for the requested window")
	ErrDataIntegrity    = errors.New("non-monotonic or duplicate dates in series")

	// General Errors
	ErrNotFound        = errors.New("resource not found")
	ErrTimeout         = errors.New("operation timed out")
	ErrContextCanceled = errors.New("operation canceled via context")

	// Market Data Specific Errors
	ErrExchangeUnavailable = errors.New("exchange API is unavailable")
	ErrConnectionFailed    = errors.New("failed to connect to the exchange")
	ErrRateLimited         = errors.New("API rate limit exceeded")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)
