package ports

import (
	"context"

	"wheelhouse/internal/domain"
)

// RunRepository defines the interface for storing and retrieving backtest runs
// together with their trade-event logs.
type RunRepository interface {
	// SaveRun persists a completed run and its full event log atomically,
	// returning the assigned run ID.
	SaveRun(ctx context.Context, run *domain.BacktestRun, events []domain.TradeEvent) (int64, error)
	// FindRuns retrieves all stored runs, ordered by creation time descending.
	FindRuns(ctx context.Context) ([]*domain.BacktestRun, error)
	// FindRunsByTicker retrieves stored runs for one ticker, newest first.
	FindRunsByTicker(ctx context.Context, ticker string) ([]*domain.BacktestRun, error)
	// FindEventsByRun retrieves the ordered trade-event log for a run.
	FindEventsByRun(ctx context.Context, runID int64) ([]domain.TradeEvent, error)
}
