// Package wheel implements the weekly state machine of the wheel
// options-income strategy: sell cash-secured puts until assigned, then sell
// covered calls until the shares are called away, collecting premium at
// every sale. All money arithmetic uses shopspring/decimal; rounding happens
// only at strike/premium selection and at presentation.
package wheel

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"wheelhouse/internal/domain"
	"wheelhouse/internal/ports"
)

// Config holds parameters for a wheel strategy run.
type Config struct {
	InitialCapital decimal.Decimal // Starting cash
	PutOTMPct      decimal.Decimal // How far below spot puts are struck (e.g. 0.05)
	CallOTMPct     decimal.Decimal // How far above spot calls are struck (e.g. 0.05)
	PremiumPct     decimal.Decimal // Weekly premium as a fraction of strike (e.g. 0.02)
	OTMAdjust      bool            // Discount premiums by strike distance from spot
	LotSize        int64           // Shares per contract (e.g. 100)
}

func (c Config) validate() error {
	var errs []string
	if !c.InitialCapital.IsPositive() {
		errs = append(errs, "initial capital must be positive")
	}
	if c.PutOTMPct.LessThanOrEqual(decimal.Zero) || c.PutOTMPct.GreaterThanOrEqual(one) {
		errs = append(errs, "put OTM percentage must be between 0 and 1 (exclusive)")
	}
	if c.CallOTMPct.LessThanOrEqual(decimal.Zero) || c.CallOTMPct.GreaterThanOrEqual(one) {
		errs = append(errs, "call OTM percentage must be between 0 and 1 (exclusive)")
	}
	if _, err := NewModel(c.PremiumPct); err != nil {
		errs = append(errs, err.Error())
	}
	if c.LotSize <= 0 {
		errs = append(errs, "lot size must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ports.ErrInvalidConfiguration, strings.Join(errs, "; "))
	}
	return nil
}

// Result holds the outputs of a completed run: the final position snapshot,
// the frozen trade-event log, and the week-by-week account value.
type Result struct {
	FinalPosition domain.Position
	Events        []domain.TradeEvent
	Equity        []decimal.Decimal // cash + stock value after each processed week
}

// Engine runs the wheel state machine over a weekly price series.
// Each Run creates a fresh position and event log, so independent backtests
// may execute concurrently on separate Engine instances.
type Engine struct {
	cfg    Config
	logger ports.Logger
}

// New creates a new Engine instance.
func New(cfg Config, logger ports.Logger) (*Engine, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for the wheel engine")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

// ValidateSeries checks the ordering guarantees the state machine relies on.
// It fails fast so a run never produces partial results.
func ValidateSeries(series []domain.PricePoint) error {
	if len(series) < 2 {
		return fmt.Errorf("%w: got %d", ports.ErrInsufficientData, len(series))
	}
	for i, pt := range series {
		if !pt.Close.IsPositive() {
			return fmt.Errorf("%w: non-positive close %s at %s",
				ports.ErrInvalidData, pt.Close, pt.Date.Format("2006-01-02"))
		}
		if i > 0 && !series[i-1].Date.Before(pt.Date) {
			return fmt.Errorf("%w: dates not strictly ascending at %s",
				ports.ErrInvalidData, pt.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Run executes the full simulation over the series.
func (e *Engine) Run(ctx context.Context, series []domain.PricePoint) (*Result, error) {
	if err := ValidateSeries(series); err != nil {
		return nil, err
	}

	pos := domain.Position{Cash: e.cfg.InitialCapital, CostBasis: decimal.Zero}
	result := &Result{
		Events: make([]domain.TradeEvent, 0, 2*len(series)),
		Equity: make([]decimal.Decimal, 0, len(series)),
	}

	for week, pt := range series {
		var events []domain.TradeEvent
		pos, events = Step(pos, pt, e.cfg)

		// Violations here are programming defects, not user errors.
		if pos.Cash.IsNegative() {
			panic(fmt.Sprintf("wheel: negative cash %s at week %d", pos.Cash, week+1))
		}
		if pos.SharesHeld < 0 {
			panic(fmt.Sprintf("wheel: negative share count %d at week %d", pos.SharesHeld, week+1))
		}
		if pos.SharesHeld > 0 && pos.SharesHeld != e.cfg.LotSize {
			panic(fmt.Sprintf("wheel: partial lot of %d shares at week %d", pos.SharesHeld, week+1))
		}

		result.Events = append(result.Events, events...)
		result.Equity = append(result.Equity, equityValue(pos, pt))

		e.logger.Debug(ctx, "Week processed", map[string]interface{}{
			"week":   week + 1,
			"date":   pt.Date.Format("2006-01-02"),
			"close":  pt.Close,
			"cash":   pos.Cash,
			"shares": pos.SharesHeld,
		})
	}

	result.FinalPosition = pos
	return result, nil
}

// Step advances a position by one week and returns the new position along
// with the events the week produced. It is a pure function of its inputs:
// any contract left open from a prior week resolves against this week's
// close, then a new contract is sold at the same close. A put assignment is
// therefore immediately followed by a covered-call sale in the same week.
func Step(pos domain.Position, pt domain.PricePoint, cfg Config) (domain.Position, []domain.TradeEvent) {
	var events []domain.TradeEvent

	if pos.HasOpenContract() {
		var resolved domain.TradeEvent
		pos, resolved = resolveContract(pos, pt, cfg)
		events = append(events, resolved)
	}

	pos, sold := sellContract(pos, pt, cfg)
	events = append(events, sold)
	return pos, events
}

// resolveContract settles the open contract against the week's close.
// Ties go to the option holder: a put assigns at close == strike and a call
// is exercised at close == strike.
func resolveContract(pos domain.Position, pt domain.PricePoint, cfg Config) (domain.Position, domain.TradeEvent) {
	c := *pos.OpenContract
	pos.OpenContract = nil
	lot := decimal.NewFromInt(cfg.LotSize)

	ev := domain.TradeEvent{
		Date:       pt.Date,
		Strike:     c.Strike,
		Premium:    c.Premium,
		StockPrice: pt.Close,
	}

	switch c.Type {
	case domain.Put:
		// Assignment needs the full collateral in cash; an uncovered put
		// lapses as expired so cash can never go negative.
		cost := c.Strike.Mul(lot)
		if pt.Close.LessThanOrEqual(c.Strike) && pos.Cash.GreaterThanOrEqual(cost) {
			pos.Cash = pos.Cash.Sub(cost)
			pos.SharesHeld = cfg.LotSize
			pos.CostBasis = c.Strike
			ev.Type = domain.PutAssigned
		} else {
			ev.Type = domain.PutExpired
		}
	case domain.Call:
		if pt.Close.GreaterThanOrEqual(c.Strike) {
			// Called away: sell the lot at the strike.
			gain := c.Strike.Sub(pos.CostBasis).Mul(lot)
			pos.Cash = pos.Cash.Add(c.Strike.Mul(lot))
			pos.SharesHeld = 0
			pos.CostBasis = decimal.Zero
			ev.Type = domain.CalledAway
			ev.RealizedGain = &gain
		} else {
			unrealized := pt.Close.Sub(pos.CostBasis).Mul(lot)
			ev.Type = domain.CallExpired
			ev.UnrealizedGain = &unrealized
		}
	}
	return pos, ev
}

// sellContract opens the week's new contract: a cash-secured put when flat,
// a covered call when holding shares. The premium settles at sale and is
// kept regardless of the eventual outcome.
func sellContract(pos domain.Position, pt domain.PricePoint, cfg Config) (domain.Position, domain.TradeEvent) {
	model, err := NewModel(cfg.PremiumPct)
	if err != nil {
		// Config.validate rejects bad rates before a run starts.
		panic(fmt.Sprintf("wheel: %v", err))
	}
	lot := decimal.NewFromInt(cfg.LotSize)

	var ctype domain.ContractType
	var eventType domain.EventType
	var strike decimal.Decimal
	if pos.SharesHeld == 0 {
		ctype = domain.Put
		eventType = domain.PutSold
		strike = pt.Close.Mul(one.Sub(cfg.PutOTMPct)).Round(2)
	} else {
		ctype = domain.Call
		eventType = domain.CallSold
		strike = pt.Close.Mul(one.Add(cfg.CallOTMPct)).Round(2)
	}

	perShare := model.Estimate(strike)
	if cfg.OTMAdjust {
		perShare = model.EstimateAdjusted(strike, pt.Close)
	}
	premium := perShare.Mul(lot)

	pos.Cash = pos.Cash.Add(premium)
	pos.OpenContract = &domain.Contract{
		Type:       ctype,
		Strike:     strike,
		Premium:    premium,
		WeekOpened: pt.Date,
	}

	return pos, domain.TradeEvent{
		Date:       pt.Date,
		Type:       eventType,
		Strike:     strike,
		Premium:    premium,
		StockPrice: pt.Close,
	}
}

func equityValue(pos domain.Position, pt domain.PricePoint) decimal.Decimal {
	return pos.Cash.Add(pt.Close.Mul(decimal.NewFromInt(pos.SharesHeld)))
}
