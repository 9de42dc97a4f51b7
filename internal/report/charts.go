package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/shopspring/decimal"

	"wheelhouse/internal/analytics"
	"wheelhouse/internal/domain"
	"wheelhouse/internal/ports"
)

const premiumBins = 10

// RenderCharts writes the four result charts to a single HTML page.
func RenderCharts(filename, ticker string, series []domain.PricePoint, events []domain.TradeEvent, equity []decimal.Decimal, m *analytics.Metrics) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Wheel Strategy Backtest: %s", ticker)
	page.AddCharts(
		priceAndStrikesChart(ticker, series, events),
		cumulativePremiumChart(events, m),
		portfolioValueChart(series, equity, m),
		premiumHistogram(events, m),
	)

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ports.ErrExport, filename, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("%w: rendering charts: %v", ports.ErrExport, err)
	}
	return nil
}

// priceAndStrikesChart plots the weekly close with put and call strikes
// overlaid as scatter points on the weeks they were sold.
func priceAndStrikesChart(ticker string, series []domain.PricePoint, events []domain.TradeEvent) *charts.Line {
	dates := make([]string, len(series))
	closes := make([]opts.LineData, len(series))
	weekIndex := make(map[string]int, len(series))
	for i, p := range series {
		dates[i] = p.Date.Format("2006-01-02")
		closes[i] = opts.LineData{Value: p.Close.InexactFloat64()}
		weekIndex[dates[i]] = i
	}

	putStrikes := make([]opts.ScatterData, len(series))
	callStrikes := make([]opts.ScatterData, len(series))
	for i := range series {
		putStrikes[i] = opts.ScatterData{Value: "-"}
		callStrikes[i] = opts.ScatterData{Value: "-"}
	}
	for _, ev := range events {
		i, ok := weekIndex[ev.Date.Format("2006-01-02")]
		if !ok {
			continue
		}
		switch ev.Type {
		case domain.PutSold:
			putStrikes[i] = opts.ScatterData{Value: ev.Strike.InexactFloat64()}
		case domain.CallSold:
			callStrikes[i] = opts.ScatterData{Value: ev.Strike.InexactFloat64()}
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
		Title: fmt.Sprintf("%s Price & Option Strikes", ticker),
	}))
	line.SetXAxis(dates).AddSeries("Close", closes)

	scatter := charts.NewScatter()
	scatter.SetXAxis(dates).
		AddSeries("Put Strikes", putStrikes).
		AddSeries("Call Strikes", callStrikes)
	line.Overlap(scatter)
	return line
}

// cumulativePremiumChart shows premium income accumulating over time.
func cumulativePremiumChart(events []domain.TradeEvent, m *analytics.Metrics) *charts.Line {
	var dates []string
	var data []opts.LineData
	running := decimal.Zero
	for _, ev := range events {
		if ev.Type != domain.PutSold && ev.Type != domain.CallSold {
			continue
		}
		running = running.Add(ev.Premium)
		dates = append(dates, ev.Date.Format("2006-01-02"))
		data = append(data, opts.LineData{Value: running.InexactFloat64()})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
		Title:    "Cumulative Premium Income",
		Subtitle: fmt.Sprintf("Total: $%s", m.TotalPremiums.StringFixed(2)),
	}))
	line.SetXAxis(dates).AddSeries("Premiums", data)
	return line
}

// portfolioValueChart compares the wheel equity curve against buying
// and holding the same initial capital.
func portfolioValueChart(series []domain.PricePoint, equity []decimal.Decimal, m *analytics.Metrics) *charts.Line {
	dates := make([]string, len(series))
	wheel := make([]opts.LineData, len(series))
	buyHold := make([]opts.LineData, len(series))
	first := series[0].Close
	for i, p := range series {
		dates[i] = p.Date.Format("2006-01-02")
		if i < len(equity) {
			wheel[i] = opts.LineData{Value: equity[i].InexactFloat64()}
		}
		buyHold[i] = opts.LineData{Value: m.InitialCapital.Mul(p.Close).Div(first).InexactFloat64()}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
		Title:    "Portfolio Value: Wheel vs Buy & Hold",
		Subtitle: fmt.Sprintf("Outperformance: $%s", m.Outperformance.StringFixed(2)),
	}))
	line.SetXAxis(dates).
		AddSeries("Wheel Strategy", wheel).
		AddSeries("Buy & Hold", buyHold)
	return line
}

// premiumHistogram bins the weekly premium amounts collected at sale.
func premiumHistogram(events []domain.TradeEvent, m *analytics.Metrics) *charts.Bar {
	var premiums []float64
	for _, ev := range events {
		if ev.Type == domain.PutSold || ev.Type == domain.CallSold {
			premiums = append(premiums, ev.Premium.InexactFloat64())
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
		Title:    "Weekly Premium Distribution",
		Subtitle: fmt.Sprintf("Average: $%s", m.AvgWeeklyPremium.StringFixed(2)),
	}))
	if len(premiums) == 0 {
		return bar
	}

	min, max := premiums[0], premiums[0]
	for _, p := range premiums {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	width := (max - min) / premiumBins
	if width == 0 {
		width = 1
	}

	labels := make([]string, premiumBins)
	counts := make([]int, premiumBins)
	for i := range labels {
		labels[i] = fmt.Sprintf("$%.0f", min+width*float64(i))
	}
	for _, p := range premiums {
		i := int((p - min) / width)
		if i >= premiumBins {
			i = premiumBins - 1
		}
		counts[i]++
	}

	data := make([]opts.BarData, premiumBins)
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}
	bar.SetXAxis(labels).AddSeries("Weeks", data)
	return bar
}
