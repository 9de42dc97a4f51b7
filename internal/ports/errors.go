package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// Validation errors, raised synchronously before a simulation starts.
	ErrInsufficientData     = errors.New("price series must contain at least two samples")
	ErrInvalidData          = errors.New("price series is malformed or not in chronological order")
	ErrInvalidConfiguration = errors.New("invalid backtest configuration")

	// External I/O errors. These never corrupt in-memory results.
	ErrDataRetrieval = errors.New("failed to retrieve historical price data")
	ErrExport        = errors.New("failed to export backtest results")

	// Database specific errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrNotFound     = errors.New("record not found")
)
