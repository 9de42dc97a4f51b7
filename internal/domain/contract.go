package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractType represents the kind of option contract sold (PUT or CALL).
type ContractType string

const (
	Put  ContractType = "PUT"
	Call ContractType = "CALL"
)

// Contract represents a single short option contract currently open.
// A position holds at most one contract at a time.
type Contract struct {
	Type       ContractType    // PUT or CALL
	Strike     decimal.Decimal // Strike price per share
	Premium    decimal.Decimal // Premium collected for the whole contract at sale
	WeekOpened time.Time       // Week the contract was sold
}

// Position represents the account state threaded through a backtest run.
// It is owned exclusively by one run and advanced once per week.
type Position struct {
	Cash         decimal.Decimal // Available cash; premiums credited at sale
	SharesHeld   int64           // Owned shares (0 or one lot)
	CostBasis    decimal.Decimal // Per-share acquisition price; zero when no shares are held
	OpenContract *Contract       // Currently open contract, nil when none
}

// OwnsStock reports whether the position currently holds shares.
func (p *Position) OwnsStock() bool {
	return p.SharesHeld > 0
}

// HasOpenContract reports whether an option contract is currently open.
func (p *Position) HasOpenContract() bool {
	return p.OpenContract != nil
}
