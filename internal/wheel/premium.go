package wheel

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	one = decimal.NewFromInt(1)

	// Premiums shrink linearly with distance from spot, floored at 30%.
	minAdjustment  = decimal.NewFromFloat(0.3)
	distanceFactor = decimal.NewFromInt(5)
)

// Model estimates weekly option premiums as a fixed percentage of the strike.
// This is a deliberate simplification standing in for real option pricing:
// no implied volatility, Greeks or spreads. Callers must not interpret the
// estimates as market-accurate.
type Model struct {
	rate decimal.Decimal
}

// NewModel creates a premium model with the given weekly rate.
// The rate must lie strictly between 0 and 1 (e.g. 0.02 for 2% of strike).
func NewModel(rate decimal.Decimal) (Model, error) {
	if rate.LessThanOrEqual(decimal.Zero) || rate.GreaterThanOrEqual(one) {
		return Model{}, fmt.Errorf("premium rate must be in (0,1), got %s", rate)
	}
	return Model{rate: rate}, nil
}

// Estimate returns the per-share premium for a contract at the given strike,
// rounded to currency precision. Pure and total.
func (m Model) Estimate(strike decimal.Decimal) decimal.Decimal {
	return strike.Mul(m.rate).Round(2)
}

// EstimateAdjusted discounts the flat estimate by how far the strike sits
// from spot: adjustment = max(0.3, 1 - 5*|strike-spot|/spot). Far
// out-of-the-money contracts command less premium.
func (m Model) EstimateAdjusted(strike, spot decimal.Decimal) decimal.Decimal {
	distance := strike.Sub(spot).Abs().Div(spot)
	adjustment := one.Sub(distance.Mul(distanceFactor))
	if adjustment.LessThan(minAdjustment) {
		adjustment = minAdjustment
	}
	return strike.Mul(m.rate).Mul(adjustment).Round(2)
}
