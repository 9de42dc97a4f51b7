package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint represents a single weekly closing price sample.
type PricePoint struct {
	Date  time.Time       // Sample date (typically the Friday of the trading week)
	Close decimal.Decimal // Closing price for the week; always positive
}
