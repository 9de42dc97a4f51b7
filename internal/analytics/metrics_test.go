package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wheelhouse/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func weeklySeries(closes ...string) []domain.PricePoint {
	start := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	series := make([]domain.PricePoint, len(closes))
	for i, c := range closes {
		series[i] = domain.PricePoint{Date: start.AddDate(0, 0, 7*i), Close: dec(c)}
	}
	return series
}

func TestComputeAssignmentCycle(t *testing.T) {
	// A put assigns in week two, the covered call sold that week expires in
	// week three, and the run ends holding the lot.
	series := weeklySeries("100", "95", "96")
	events := []domain.TradeEvent{
		{Date: series[0].Date, Type: domain.PutSold, Strike: dec("95"), Premium: dec("190"), StockPrice: dec("100")},
		{Date: series[1].Date, Type: domain.PutAssigned, Strike: dec("95"), Premium: dec("190"), StockPrice: dec("95")},
		{Date: series[1].Date, Type: domain.CallSold, Strike: dec("99.75"), Premium: dec("200"), StockPrice: dec("95")},
		{Date: series[2].Date, Type: domain.CallExpired, Strike: dec("99.75"), Premium: dec("200"), StockPrice: dec("96"), UnrealizedGain: decPtr("100")},
		{Date: series[2].Date, Type: domain.CallSold, Strike: dec("100.80"), Premium: dec("202"), StockPrice: dec("96")},
	}
	final := domain.Position{Cash: dec("1092"), SharesHeld: 100, CostBasis: dec("95")}

	m := Compute(final, events, series, dec("10000"))

	checks := []struct {
		name string
		got  string
		want string
	}{
		{"FinalCash", m.FinalCash.StringFixed(2), "1092.00"},
		{"StockValue", m.StockValue.StringFixed(2), "9600.00"},
		{"TotalValue", m.TotalValue.StringFixed(2), "10692.00"},
		{"TotalProfit", m.TotalProfit.StringFixed(2), "692.00"},
		{"TotalReturnPct", m.TotalReturnPct.StringFixed(2), "6.92"},
		{"TotalPremiums", m.TotalPremiums.StringFixed(2), "592.00"},
		{"TotalStockGains", m.TotalStockGains.StringFixed(2), "0.00"},
		{"UnrealizedGain", m.UnrealizedGain.StringFixed(2), "100.00"},
		{"BuyHoldValue", m.BuyHoldValue.StringFixed(2), "9600.00"},
		{"BuyHoldProfit", m.BuyHoldProfit.StringFixed(2), "-400.00"},
		{"BuyHoldReturnPct", m.BuyHoldReturnPct.StringFixed(2), "-4.00"},
		{"Outperformance", m.Outperformance.StringFixed(2), "1092.00"},
		{"AvgWeeklyPremium", m.AvgWeeklyPremium.StringFixed(2), "197.33"},
		{"StartingPrice", m.StartingPrice.StringFixed(2), "100.00"},
		{"EndingPrice", m.EndingPrice.StringFixed(2), "96.00"},
		{"StockReturnPct", m.StockReturnPct.StringFixed(2), "-4.00"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}

	if m.PutTrades != 1 || m.CallTrades != 2 {
		t.Errorf("trades = %d puts / %d calls, want 1 / 2", m.PutTrades, m.CallTrades)
	}
	if m.TimesAssigned != 1 || m.TimesCalledAway != 0 {
		t.Errorf("assignments = %d, called away = %d, want 1 / 0", m.TimesAssigned, m.TimesCalledAway)
	}
	if m.TotalWeeks != 3 {
		t.Errorf("TotalWeeks = %d, want 3", m.TotalWeeks)
	}
	if !m.OwnsStockAtEnd {
		t.Error("OwnsStockAtEnd = false, want true")
	}
	if m.DaysHeld != 14 {
		t.Errorf("DaysHeld = %d, want 14", m.DaysHeld)
	}
	// Two positive weeks compound to a much larger annualized figure.
	if !m.AnnualizedReturnPct.GreaterThan(m.TotalReturnPct) {
		t.Errorf("AnnualizedReturnPct = %s, want > %s", m.AnnualizedReturnPct, m.TotalReturnPct)
	}
}

func TestComputeRealizedGains(t *testing.T) {
	series := weeklySeries("100", "94", "101")
	events := []domain.TradeEvent{
		{Date: series[0].Date, Type: domain.PutSold, Strike: dec("95"), Premium: dec("190")},
		{Date: series[1].Date, Type: domain.PutAssigned, Strike: dec("95"), Premium: dec("190")},
		{Date: series[1].Date, Type: domain.CallSold, Strike: dec("98.70"), Premium: dec("197")},
		{Date: series[2].Date, Type: domain.CalledAway, Strike: dec("98.70"), Premium: dec("197"), RealizedGain: decPtr("370")},
	}
	final := domain.Position{Cash: dec("10757")}

	m := Compute(final, events, series, dec("10000"))

	if m.TotalStockGains.StringFixed(2) != "370.00" {
		t.Errorf("TotalStockGains = %s, want 370.00", m.TotalStockGains.StringFixed(2))
	}
	if m.TimesCalledAway != 1 {
		t.Errorf("TimesCalledAway = %d, want 1", m.TimesCalledAway)
	}
	if m.OwnsStockAtEnd {
		t.Error("OwnsStockAtEnd = true, want false")
	}
	if m.UnrealizedGain.StringFixed(2) != "0.00" {
		t.Errorf("UnrealizedGain = %s, want 0.00", m.UnrealizedGain.StringFixed(2))
	}
}

func TestComputeShortPeriodSkipsAnnualization(t *testing.T) {
	series := weeklySeries("100")
	final := domain.Position{Cash: dec("10200")}

	m := Compute(final, nil, series, dec("10000"))

	if m.DaysHeld != 0 {
		t.Errorf("DaysHeld = %d, want 0", m.DaysHeld)
	}
	if !m.AnnualizedReturnPct.Equal(m.TotalReturnPct) {
		t.Errorf("AnnualizedReturnPct = %s, want TotalReturnPct %s for near-zero period",
			m.AnnualizedReturnPct, m.TotalReturnPct)
	}
}

func TestComputeEmptySeries(t *testing.T) {
	m := Compute(domain.Position{}, nil, nil, dec("10000"))
	if m.InitialCapital.StringFixed(2) != "10000.00" {
		t.Errorf("InitialCapital = %s, want 10000.00", m.InitialCapital.StringFixed(2))
	}
	if m.TotalWeeks != 0 || !m.TotalValue.IsZero() {
		t.Errorf("expected zero-valued metrics for empty series, got %+v", m)
	}
}
