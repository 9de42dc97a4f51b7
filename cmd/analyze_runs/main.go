package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"wheelhouse/config"
	"wheelhouse/internal/adapters/logger"
	"wheelhouse/internal/adapters/sqlite"
	"wheelhouse/internal/domain"
)

func main() {
	ticker := flag.String("ticker", "", "only analyze runs for this symbol")
	withEvents := flag.Bool("events", false, "break down trade events per run")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("Error opening run repository: %v", err)
	}
	defer repo.Close()

	var runs []*domain.BacktestRun
	if *ticker != "" {
		runs, err = repo.FindRunsByTicker(ctx, *ticker)
	} else {
		runs, err = repo.FindRuns(ctx)
	}
	if err != nil {
		log.Fatalf("Error loading runs: %v", err)
	}
	if len(runs) == 0 {
		log.Println("No saved runs found. Run a backtest first.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "ID\tTicker\tStart\tEnd\tCapital\tFinal\tReturn%\t")
	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			run.ID,
			run.Ticker,
			run.StartDate.Format("2006-01-02"),
			run.EndDate.Format("2006-01-02"),
			run.InitialCapital.StringFixed(0),
			run.FinalValue.StringFixed(2),
			run.TotalReturnPct.StringFixed(2),
		)
	}
	w.Flush()

	printTickerAggregates(runs)

	if *withEvents {
		for _, run := range runs {
			events, err := repo.FindEventsByRun(ctx, run.ID)
			if err != nil {
				log.Printf("Error loading events for run %d: %v", run.ID, err)
				continue
			}
			printEventBreakdown(run, events)
		}
	}
}

// tickerStats aggregates the saved runs of one symbol.
type tickerStats struct {
	Runs       int
	BestPct    decimal.Decimal
	WorstPct   decimal.Decimal
	SumPct     decimal.Decimal
	Profitable int
}

func printTickerAggregates(runs []*domain.BacktestRun) {
	byTicker := make(map[string]*tickerStats)
	for _, run := range runs {
		stats, ok := byTicker[run.Ticker]
		if !ok {
			stats = &tickerStats{BestPct: run.TotalReturnPct, WorstPct: run.TotalReturnPct}
			byTicker[run.Ticker] = stats
		}
		stats.Runs++
		stats.SumPct = stats.SumPct.Add(run.TotalReturnPct)
		if run.TotalReturnPct.GreaterThan(stats.BestPct) {
			stats.BestPct = run.TotalReturnPct
		}
		if run.TotalReturnPct.LessThan(stats.WorstPct) {
			stats.WorstPct = run.TotalReturnPct
		}
		if run.FinalValue.GreaterThan(run.InitialCapital) {
			stats.Profitable++
		}
	}

	tickers := make([]string, 0, len(byTicker))
	for t := range byTicker {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	fmt.Println("\n## Per-Ticker Summary")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Ticker\tRuns\tProfitable\tAvgRet%\tBest%\tWorst%\t")
	for _, t := range tickers {
		stats := byTicker[t]
		avg := stats.SumPct.Div(decimal.NewFromInt(int64(stats.Runs)))
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\t\n",
			t, stats.Runs, stats.Profitable,
			avg.StringFixed(2), stats.BestPct.StringFixed(2), stats.WorstPct.StringFixed(2))
	}
	w.Flush()
}

func printEventBreakdown(run *domain.BacktestRun, events []domain.TradeEvent) {
	counts := make(map[domain.EventType]int)
	premiums := make(map[domain.EventType]decimal.Decimal)
	for _, ev := range events {
		counts[ev.Type]++
		premiums[ev.Type] = premiums[ev.Type].Add(ev.Premium)
	}

	types := make([]domain.EventType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	fmt.Printf("\nRun %d (%s %s to %s):\n",
		run.ID, run.Ticker, run.StartDate.Format("2006-01-02"), run.EndDate.Format("2006-01-02"))
	for _, t := range types {
		fmt.Printf("  %-12s %3d events, premiums: %s\n", t, counts[t], premiums[t].StringFixed(2))
	}
}
