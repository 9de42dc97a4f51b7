package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BacktestRun represents a completed backtest stored for later analysis.
type BacktestRun struct {
	ID             int64           // Unique identifier (assigned by the repository)
	Ticker         string          // Stock ticker the run covered
	StartDate      time.Time       // First day of the requested range
	EndDate        time.Time       // Last day of the requested range
	InitialCapital decimal.Decimal // Starting cash
	FinalValue     decimal.Decimal // Cash plus stock value at run end
	TotalReturnPct decimal.Decimal // Total return over the run, in percent
	CreatedAt      time.Time       // When the run was recorded
}
