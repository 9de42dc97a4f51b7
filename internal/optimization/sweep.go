// Package optimization sweeps wheel strategy parameters over a price series
// to rank the best-performing combinations. Every combination runs its own
// engine instance, so the sweep parallelizes freely.
package optimization

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"wheelhouse/internal/analytics"
	"wheelhouse/internal/domain"
	"wheelhouse/internal/ports"
	"wheelhouse/internal/wheel"
)

// ParameterRange defines the values a swept parameter takes, from Min to Max
// inclusive in increments of Step.
type ParameterRange struct {
	Min  float64
	Max  float64
	Step float64
}

func (r ParameterRange) validate(name string) error {
	if r.Step <= 0 {
		return fmt.Errorf("%w: %s step must be positive", ports.ErrInvalidConfiguration, name)
	}
	if r.Max < r.Min {
		return fmt.Errorf("%w: %s max %v is below min %v", ports.ErrInvalidConfiguration, name, r.Max, r.Min)
	}
	return nil
}

// values expands the range. The half-step epsilon keeps the endpoint included
// despite float accumulation.
func (r ParameterRange) values() []float64 {
	var out []float64
	for v := r.Min; v <= r.Max+r.Step/2; v += r.Step {
		out = append(out, v)
	}
	return out
}

// Config holds the sweep space and the fixed run parameters.
type Config struct {
	PutOTMPct  ParameterRange
	CallOTMPct ParameterRange
	PremiumPct ParameterRange

	InitialCapital decimal.Decimal
	LotSize        int64
	OTMAdjust      bool

	// Score ranks a finished run; higher is better. Defaults to final
	// account value.
	Score  func(*analytics.Metrics) float64
	Logger ports.Logger
}

// Result pairs one parameter combination with its run outcome.
type Result struct {
	Params  wheel.Config
	Metrics *analytics.Metrics
	Score   float64
}

// Sweeper runs a wheel backtest for every parameter combination.
type Sweeper struct {
	cfg Config
}

// New creates a Sweeper after validating the parameter ranges.
func New(cfg Config) (*Sweeper, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for the parameter sweep")
	}
	for _, rv := range []struct {
		name string
		r    ParameterRange
	}{
		{"put OTM", cfg.PutOTMPct},
		{"call OTM", cfg.CallOTMPct},
		{"premium", cfg.PremiumPct},
	} {
		if err := rv.r.validate(rv.name); err != nil {
			return nil, err
		}
	}
	if cfg.Score == nil {
		cfg.Score = DefaultScore
	}
	return &Sweeper{cfg: cfg}, nil
}

// Run executes every combination against the series and returns the results
// ranked by score, best first. Combinations that fail engine validation are
// skipped rather than aborting the sweep.
func (s *Sweeper) Run(ctx context.Context, series []domain.PricePoint) ([]Result, error) {
	if err := wheel.ValidateSeries(series); err != nil {
		return nil, err
	}

	combos := s.combinations()
	resultChan := make(chan Result, len(combos))
	var wg sync.WaitGroup

	for _, params := range combos {
		wg.Add(1)
		go func(params wheel.Config) {
			defer wg.Done()

			engine, err := wheel.New(params, s.cfg.Logger)
			if err != nil {
				s.cfg.Logger.Warn(ctx, "Skipping invalid combination", map[string]interface{}{"error": err.Error()})
				return
			}
			run, err := engine.Run(ctx, series)
			if err != nil {
				return
			}

			m := analytics.Compute(run.FinalPosition, run.Events, series, params.InitialCapital)
			resultChan <- Result{Params: params, Metrics: m, Score: s.cfg.Score(m)}
		}(params)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var results []Result
	for r := range resultChan {
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results, nil
}

// combinations builds the full cartesian product of the three ranges.
func (s *Sweeper) combinations() []wheel.Config {
	var combos []wheel.Config
	for _, putOTM := range s.cfg.PutOTMPct.values() {
		for _, callOTM := range s.cfg.CallOTMPct.values() {
			for _, premium := range s.cfg.PremiumPct.values() {
				combos = append(combos, wheel.Config{
					InitialCapital: s.cfg.InitialCapital,
					PutOTMPct:      decimal.NewFromFloat(putOTM),
					CallOTMPct:     decimal.NewFromFloat(callOTM),
					PremiumPct:     decimal.NewFromFloat(premium),
					OTMAdjust:      s.cfg.OTMAdjust,
					LotSize:        s.cfg.LotSize,
				})
			}
		}
	}
	return combos
}

// DefaultScore ranks runs by final account value.
func DefaultScore(m *analytics.Metrics) float64 {
	return m.TotalValue.InexactFloat64()
}
