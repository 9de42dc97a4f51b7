// Package report formats finished backtest results for the terminal,
// CSV export and chart rendering. No simulation logic lives here.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"wheelhouse/internal/analytics"
	"wheelhouse/internal/domain"
)

const reportWidth = 70

// PrintResults writes the full human-readable results report.
func PrintResults(w io.Writer, ticker string, m *analytics.Metrics) {
	line := strings.Repeat("=", reportWidth)
	rule := strings.Repeat("-", reportWidth)

	fmt.Fprintf(w, "\n%s\nBACKTEST RESULTS: %s\n%s\n\n", line, ticker, line)

	fmt.Fprintln(w, "PERFORMANCE SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Initial Capital:        $%15s\n", m.InitialCapital.StringFixed(2))
	fmt.Fprintf(w, "Final Cash:             $%15s\n", m.FinalCash.StringFixed(2))
	fmt.Fprintf(w, "Stock Holdings:         $%15s\n", m.StockValue.StringFixed(2))
	fmt.Fprintf(w, "Total Account Value:    $%15s\n", m.TotalValue.StringFixed(2))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total Profit:           $%15s\n", m.TotalProfit.StringFixed(2))
	fmt.Fprintf(w, "Total Return:           %15s%%\n", m.TotalReturnPct.StringFixed(2))
	fmt.Fprintf(w, "Annualized Return:      %15s%%\n", m.AnnualizedReturnPct.StringFixed(2))

	fmt.Fprintln(w, "\nPROFIT BREAKDOWN")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total Premiums:         $%15s\n", m.TotalPremiums.StringFixed(2))
	fmt.Fprintf(w, "Realized Stock Gains:   $%15s\n", m.TotalStockGains.StringFixed(2))
	fmt.Fprintf(w, "Unrealized Gains:       $%15s\n", m.UnrealizedGain.StringFixed(2))

	fmt.Fprintln(w, "\nBUY & HOLD COMPARISON")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Buy & Hold Value:       $%15s\n", m.BuyHoldValue.StringFixed(2))
	fmt.Fprintf(w, "Buy & Hold Profit:      $%15s\n", m.BuyHoldProfit.StringFixed(2))
	fmt.Fprintf(w, "Buy & Hold Return:      %15s%%\n", m.BuyHoldReturnPct.StringFixed(2))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Wheel Outperformance:   $%15s\n", m.Outperformance.StringFixed(2))
	if m.Outperformance.IsPositive() {
		fmt.Fprintf(w, "Wheel strategy BEAT buy-and-hold by $%s\n", m.Outperformance.StringFixed(2))
	} else {
		fmt.Fprintf(w, "Buy-and-hold BEAT wheel strategy by $%s\n", m.Outperformance.Abs().StringFixed(2))
	}

	fmt.Fprintln(w, "\nTRADE STATISTICS")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total Weeks Traded:     %15d\n", m.TotalWeeks)
	fmt.Fprintf(w, "Put Contracts Sold:     %15d\n", m.PutTrades)
	fmt.Fprintf(w, "Call Contracts Sold:    %15d\n", m.CallTrades)
	fmt.Fprintf(w, "Times Assigned:         %15d\n", m.TimesAssigned)
	fmt.Fprintf(w, "Times Called Away:      %15d\n", m.TimesCalledAway)
	fmt.Fprintf(w, "Avg Weekly Premium:     $%15s\n", m.AvgWeeklyPremium.StringFixed(2))

	fmt.Fprintln(w, "\nSTOCK PERFORMANCE")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Starting Price:         $%15s\n", m.StartingPrice.StringFixed(2))
	fmt.Fprintf(w, "Ending Price:           $%15s\n", m.EndingPrice.StringFixed(2))
	fmt.Fprintf(w, "Stock Return:           %15s%%\n", m.StockReturnPct.StringFixed(2))
	owns := "No"
	if m.OwnsStockAtEnd {
		owns = "Yes"
	}
	fmt.Fprintf(w, "Currently Own Stock:    %15s\n", owns)

	fmt.Fprintln(w, "\nTIME METRICS")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Days in Trade:          %15d\n", m.DaysHeld)
	fmt.Fprintf(w, "Years:                  %15.2f\n", m.YearsHeld)
	fmt.Fprintf(w, "\n%s\n\n", line)
}

// PrintTradeLog writes the event log as an aligned table.
func PrintTradeLog(w io.Writer, events []domain.TradeEvent) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tSTRIKE\tPREMIUM\tPRICE\tREALIZED\tUNREALIZED")
	for _, ev := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			ev.Date.Format("2006-01-02"),
			ev.Type,
			ev.Strike.StringFixed(2),
			ev.Premium.StringFixed(2),
			ev.StockPrice.StringFixed(2),
			optional(ev.RealizedGain),
			optional(ev.UnrealizedGain),
		)
	}
	tw.Flush()
}

// ComparisonRow pairs a ticker with its computed metrics for the
// quick-start comparison table.
type ComparisonRow struct {
	Ticker  string
	Metrics *analytics.Metrics
}

// PrintComparison summarizes several runs side by side.
func PrintComparison(w io.Writer, rows []ComparisonRow) {
	fmt.Fprintf(w, "\n%s\nCOMPARISON: which stock worked best for the wheel?\n%s\n",
		strings.Repeat("=", reportWidth), strings.Repeat("=", reportWidth))

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TICKER\tRETURN\tPREMIUMS\tVS BUY-HOLD\tWINNER\t")
	for _, row := range rows {
		winner := "no"
		if row.Metrics.Outperformance.IsPositive() {
			winner = "YES"
		}
		fmt.Fprintf(tw, "%s\t%s%%\t$%s\t$%s\t%s\t\n",
			row.Ticker,
			row.Metrics.TotalReturnPct.StringFixed(2),
			row.Metrics.TotalPremiums.StringFixed(0),
			row.Metrics.Outperformance.StringFixed(0),
			winner,
		)
	}
	tw.Flush()
}

func optional(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}
