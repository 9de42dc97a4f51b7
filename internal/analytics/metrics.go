// Package analytics derives performance metrics from a finished wheel run.
// Everything here is a deterministic pure function of the final position,
// the frozen trade-event log and the price series; no hidden state, no I/O.
package analytics

import (
	"math"

	"github.com/shopspring/decimal"

	"wheelhouse/internal/domain"
)

// Annualization is skipped for ranges too short to compound meaningfully.
const annualizationEpsilon = 1e-6

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Metrics holds comprehensive performance metrics for a wheel strategy run
// alongside a buy-and-hold baseline over the same period.
type Metrics struct {
	// Final values
	InitialCapital      decimal.Decimal
	FinalCash           decimal.Decimal
	StockValue          decimal.Decimal
	TotalValue          decimal.Decimal
	TotalProfit         decimal.Decimal
	TotalReturnPct      decimal.Decimal
	AnnualizedReturnPct decimal.Decimal

	// Component returns
	TotalPremiums   decimal.Decimal
	TotalStockGains decimal.Decimal
	UnrealizedGain  decimal.Decimal

	// Buy and hold comparison
	BuyHoldValue     decimal.Decimal
	BuyHoldProfit    decimal.Decimal
	BuyHoldReturnPct decimal.Decimal
	Outperformance   decimal.Decimal

	// Trade statistics
	TotalWeeks       int
	PutTrades        int
	CallTrades       int
	TimesAssigned    int
	TimesCalledAway  int
	AvgWeeklyPremium decimal.Decimal

	// Stock metrics
	StartingPrice  decimal.Decimal
	EndingPrice    decimal.Decimal
	StockReturnPct decimal.Decimal
	OwnsStockAtEnd bool

	// Time
	DaysHeld  int
	YearsHeld float64
}

// Compute derives the full metrics snapshot from the run outputs.
// The series must be the same one the run consumed.
func Compute(final domain.Position, events []domain.TradeEvent, series []domain.PricePoint, initialCapital decimal.Decimal) *Metrics {
	m := &Metrics{InitialCapital: initialCapital}
	if len(series) == 0 {
		return m
	}

	first := series[0]
	last := series[len(series)-1]
	shares := decimal.NewFromInt(final.SharesHeld)

	for _, ev := range events {
		switch ev.Type {
		case domain.PutSold:
			m.PutTrades++
			m.TotalPremiums = m.TotalPremiums.Add(ev.Premium)
		case domain.CallSold:
			m.CallTrades++
			m.TotalPremiums = m.TotalPremiums.Add(ev.Premium)
		case domain.PutAssigned:
			m.TimesAssigned++
		case domain.CalledAway:
			m.TimesCalledAway++
			if ev.RealizedGain != nil {
				m.TotalStockGains = m.TotalStockGains.Add(*ev.RealizedGain)
			}
		}
	}

	m.FinalCash = final.Cash
	m.StockValue = last.Close.Mul(shares)
	m.TotalValue = m.FinalCash.Add(m.StockValue)
	m.TotalProfit = m.TotalValue.Sub(initialCapital)
	m.TotalReturnPct = m.TotalProfit.Div(initialCapital).Mul(hundred)

	if final.OwnsStock() {
		m.UnrealizedGain = last.Close.Sub(final.CostBasis).Mul(shares)
		m.OwnsStockAtEnd = true
	}

	// Buy-and-hold baseline: put all the capital into shares at the first
	// close and hold to the last.
	m.BuyHoldValue = initialCapital.Mul(last.Close).Div(first.Close)
	m.BuyHoldProfit = m.BuyHoldValue.Sub(initialCapital)
	m.BuyHoldReturnPct = m.BuyHoldProfit.Div(initialCapital).Mul(hundred)
	m.Outperformance = m.TotalValue.Sub(m.BuyHoldValue)

	m.TotalWeeks = len(series)
	m.AvgWeeklyPremium = m.TotalPremiums.Div(decimal.NewFromInt(int64(m.TotalWeeks)))

	m.StartingPrice = first.Close
	m.EndingPrice = last.Close
	m.StockReturnPct = last.Close.Div(first.Close).Sub(one).Mul(hundred)

	m.DaysHeld = int(last.Date.Sub(first.Date).Hours() / 24)
	m.YearsHeld = float64(m.DaysHeld) / 365.25
	m.AnnualizedReturnPct = annualize(m.TotalValue, initialCapital, m.YearsHeld, m.TotalReturnPct)

	return m
}

// annualize compounds the total return over the holding period. The
// exponentiation is inherently transcendental, so it goes through float64;
// every cash-flow figure stays exact decimal.
func annualize(totalValue, initialCapital decimal.Decimal, years float64, totalReturnPct decimal.Decimal) decimal.Decimal {
	if years < annualizationEpsilon {
		return totalReturnPct
	}
	growth, _ := totalValue.Div(initialCapital).Float64()
	if growth <= 0 {
		return totalReturnPct
	}
	return decimal.NewFromFloat((math.Pow(growth, 1/years) - 1) * 100)
}
