package optimization

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wheelhouse/internal/analytics"
	"wheelhouse/internal/domain"
	"wheelhouse/internal/ports"
)

type quietLogger struct{}

func (quietLogger) Debug(_ context.Context, _ string, _ ...map[string]interface{}) {}
func (quietLogger) Info(_ context.Context, _ string, _ ...map[string]interface{})  {}
func (quietLogger) Warn(_ context.Context, _ string, _ ...map[string]interface{})  {}
func (quietLogger) Error(_ context.Context, _ error, _ string, _ ...map[string]interface{}) {}

func weeklySeries(closes ...string) []domain.PricePoint {
	start := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	series := make([]domain.PricePoint, len(closes))
	for i, c := range closes {
		series[i] = domain.PricePoint{Date: start.AddDate(0, 0, 7*i), Close: decimal.RequireFromString(c)}
	}
	return series
}

func testSweepConfig() Config {
	return Config{
		PutOTMPct:      ParameterRange{Min: 0.03, Max: 0.07, Step: 0.02},
		CallOTMPct:     ParameterRange{Min: 0.05, Max: 0.05, Step: 0.01},
		PremiumPct:     ParameterRange{Min: 0.01, Max: 0.03, Step: 0.01},
		InitialCapital: decimal.NewFromInt(20000),
		LotSize:        100,
		Logger:         quietLogger{},
	}
}

func TestNewValidation(t *testing.T) {
	cfg := testSweepConfig()
	cfg.Logger = nil
	if _, err := New(cfg); err == nil {
		t.Error("expected an error without a logger")
	}

	cfg = testSweepConfig()
	cfg.PutOTMPct.Step = 0
	if _, err := New(cfg); !errors.Is(err, ports.ErrInvalidConfiguration) {
		t.Errorf("zero step error = %v, want ErrInvalidConfiguration", err)
	}

	cfg = testSweepConfig()
	cfg.PremiumPct = ParameterRange{Min: 0.05, Max: 0.01, Step: 0.01}
	if _, err := New(cfg); !errors.Is(err, ports.ErrInvalidConfiguration) {
		t.Errorf("inverted range error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestRunCoversAllCombinations(t *testing.T) {
	sweeper, err := New(testSweepConfig())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	// 3 put OTM values x 1 call OTM value x 3 premium values.
	results, err := sweeper.Run(context.Background(), weeklySeries("100", "97", "103", "99", "105"))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(results) != 9 {
		t.Fatalf("got %d results, want 9", len(results))
	}

	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted by score: results[%d]=%f > results[%d]=%f",
				i, results[i].Score, i-1, results[i-1].Score)
		}
	}

	// A higher premium rate on the same series always collects more cash than
	// the same OTM distances at a lower rate, so the winner sells at 3%.
	best := results[0]
	if best.Params.PremiumPct.StringFixed(2) != "0.03" {
		t.Errorf("best premium rate = %s, want 0.03", best.Params.PremiumPct)
	}
}

func TestRunSkipsInvalidCombinations(t *testing.T) {
	cfg := testSweepConfig()
	// The first put OTM value is invalid for the engine (zero), the rest run.
	cfg.PutOTMPct = ParameterRange{Min: 0, Max: 0.05, Step: 0.05}
	sweeper, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	results, err := sweeper.Run(context.Background(), weeklySeries("100", "101", "102"))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	// 1 valid put OTM x 1 call OTM x 3 premiums.
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
}

func TestRunRejectsBadSeries(t *testing.T) {
	sweeper, err := New(testSweepConfig())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := sweeper.Run(context.Background(), weeklySeries("100")); !errors.Is(err, ports.ErrInsufficientData) {
		t.Errorf("Run error = %v, want ErrInsufficientData", err)
	}
}

func TestCustomScore(t *testing.T) {
	cfg := testSweepConfig()
	cfg.Score = func(m *analytics.Metrics) float64 {
		return m.TotalPremiums.InexactFloat64()
	}
	sweeper, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	results, err := sweeper.Run(context.Background(), weeklySeries("50", "52", "48", "55"))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	for _, r := range results {
		if want := r.Metrics.TotalPremiums.InexactFloat64(); r.Score != want {
			t.Errorf("score = %f, want total premiums %f", r.Score, want)
		}
	}
}
