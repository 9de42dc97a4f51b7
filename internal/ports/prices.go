package ports

import (
	"context"
	"time"

	"wheelhouse/internal/domain"
)

// PriceSource defines the interface for retrieving historical weekly prices.
// The simulation core only ever sees the ordered series this produces; all
// network and file I/O stays behind this boundary.
type PriceSource interface {
	// GetWeeklyCloses retrieves weekly closing prices for the ticker over
	// [start, end], ordered by date ascending. Retrieval failures are
	// wrapped with ErrDataRetrieval.
	GetWeeklyCloses(ctx context.Context, ticker string, start, end time.Time) ([]domain.PricePoint, error)
}
