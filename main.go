package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"wheelhouse/config"
	"wheelhouse/internal/adapters/logger"
	"wheelhouse/internal/adapters/sqlite"
	"wheelhouse/internal/adapters/stooq"
	"wheelhouse/internal/analytics"
	"wheelhouse/internal/domain"
	"wheelhouse/internal/optimization"
	"wheelhouse/internal/ports"
	"wheelhouse/internal/report"
	"wheelhouse/internal/utils"
	"wheelhouse/internal/wheel"
)

const dateLayout = "2006-01-02"

// quickStartRuns are known-interesting backtests for a first look at
// how the wheel behaves across different stocks.
var quickStartRuns = []struct {
	ticker  string
	start   string
	end     string
	capital int64
}{
	{"TSLA", "2025-01-01", "2025-12-31", 40_000},
	{"HOOD", "2024-01-01", "2025-01-10", 12_000},
	{"AFRM", "2024-01-01", "2024-12-31", 10_000},
}

func main() {
	var (
		capital    = flag.Float64("capital", 50_000, "initial capital in dollars")
		noPlot     = flag.Bool("no-plot", false, "skip chart rendering")
		noCSV      = flag.Bool("no-csv", false, "skip trade log CSV export")
		quickStart = flag.Bool("quick-start", false, "run preset backtests and compare")
		optimize   = flag.Bool("optimize", false, "sweep OTM and premium parameters instead of a single run")
		pricesPath = flag.String("prices", "", "read weekly closes from a CSV file instead of fetching")
	)
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: log})
	if err != nil {
		log.Error(ctx, err, "Failed to open run repository", map[string]interface{}{"dbPath": cfg.DBPath})
		os.Exit(1)
	}
	defer repo.Close()

	source, err := stooq.New(stooq.Config{
		BaseURL: cfg.PriceBaseURL,
		Timeout: cfg.HTTPTimeout,
		Logger:  log,
	})
	if err != nil {
		log.Error(ctx, err, "Failed to build price source", nil)
		os.Exit(1)
	}

	if *quickStart {
		runQuickStart(ctx, cfg, log, source, repo)
		return
	}

	if flag.NArg() != 3 {
		usage()
		os.Exit(2)
	}
	ticker := flag.Arg(0)
	start, err := time.Parse(dateLayout, flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid start date %q: expected YYYY-MM-DD\n", flag.Arg(1))
		os.Exit(2)
	}
	end, err := time.Parse(dateLayout, flag.Arg(2))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid end date %q: expected YYYY-MM-DD\n", flag.Arg(2))
		os.Exit(2)
	}
	initialCapital := decimal.NewFromFloat(*capital)
	if err := config.ValidateRunParams(ticker, start, end, initialCapital); err != nil {
		fmt.Fprintf(os.Stderr, "invalid run parameters: %v\n", err)
		os.Exit(2)
	}

	var series []domain.PricePoint
	if *pricesPath != "" {
		series, err = utils.ReadPricePointsFromCSV(*pricesPath)
	} else {
		series, err = source.GetWeeklyCloses(ctx, ticker, start, end)
	}
	if err != nil {
		log.Error(ctx, err, "Failed to load price series", map[string]interface{}{"ticker": ticker})
		os.Exit(1)
	}

	if *optimize {
		if err := runSweep(ctx, cfg, log, ticker, series, initialCapital); err != nil {
			log.Error(ctx, err, "Parameter sweep failed", map[string]interface{}{"ticker": ticker})
			os.Exit(1)
		}
		return
	}

	m, result, err := runBacktest(ctx, cfg, log, ticker, series, initialCapital)
	if err != nil {
		log.Error(ctx, err, "Backtest failed", map[string]interface{}{"ticker": ticker})
		os.Exit(1)
	}

	report.PrintResults(os.Stdout, ticker, m)
	report.PrintTradeLog(os.Stdout, result.Events)

	if !*noCSV {
		name, err := utils.ExportFilename("wheel_trades", ticker, start, end, "csv")
		if err == nil {
			err = utils.WriteTradeEventsToCSV(result.Events, name)
		}
		if err != nil {
			log.Error(ctx, err, "Failed to export trade log", map[string]interface{}{"ticker": ticker})
		} else {
			fmt.Printf("Trade log written to %s\n", name)
		}
	}

	if !*noPlot {
		name, err := utils.ExportFilename("wheel_charts", ticker, start, end, "html")
		if err == nil {
			err = report.RenderCharts(name, ticker, series, result.Events, result.Equity, m)
		}
		if err != nil {
			log.Error(ctx, err, "Failed to render charts", map[string]interface{}{"ticker": ticker})
		} else {
			fmt.Printf("Charts written to %s\n", name)
		}
	}

	saveRun(ctx, log, repo, ticker, start, end, initialCapital, m, result)
}

// runBacktest drives the engine over a loaded series and computes metrics.
func runBacktest(ctx context.Context, cfg *config.Config, log ports.Logger, ticker string, series []domain.PricePoint, initialCapital decimal.Decimal) (*analytics.Metrics, *wheel.Result, error) {
	engine, err := wheel.New(wheel.Config{
		InitialCapital: initialCapital,
		PutOTMPct:      cfg.PutOTMPct,
		CallOTMPct:     cfg.CallOTMPct,
		PremiumPct:     cfg.PremiumPct,
		OTMAdjust:      cfg.PremiumOTMAdjust,
		LotSize:        cfg.LotSize,
	}, log)
	if err != nil {
		return nil, nil, err
	}

	result, err := engine.Run(ctx, series)
	if err != nil {
		return nil, nil, err
	}

	m := analytics.Compute(result.FinalPosition, result.Events, series, initialCapital)
	log.Info(ctx, "Backtest complete", map[string]interface{}{
		"ticker":      ticker,
		"weeks":       m.TotalWeeks,
		"totalReturn": m.TotalReturnPct.StringFixed(2) + "%",
	})
	return m, result, nil
}

// runSweep grid-searches the OTM and premium parameters around their
// configured defaults and prints the top combinations.
func runSweep(ctx context.Context, cfg *config.Config, log ports.Logger, ticker string, series []domain.PricePoint, initialCapital decimal.Decimal) error {
	sweeper, err := optimization.New(optimization.Config{
		PutOTMPct:      optimization.ParameterRange{Min: 0.02, Max: 0.10, Step: 0.02},
		CallOTMPct:     optimization.ParameterRange{Min: 0.02, Max: 0.10, Step: 0.02},
		PremiumPct:     optimization.ParameterRange{Min: 0.01, Max: 0.03, Step: 0.005},
		InitialCapital: initialCapital,
		LotSize:        cfg.LotSize,
		OTMAdjust:      cfg.PremiumOTMAdjust,
		Logger:         log,
	})
	if err != nil {
		return err
	}

	results, err := sweeper.Run(ctx, series)
	if err != nil {
		return err
	}

	top := results
	if len(top) > 10 {
		top = top[:10]
	}
	fmt.Printf("\nTop parameter combinations for %s (%d tested):\n\n", ticker, len(results))
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PUT OTM\tCALL OTM\tPREMIUM\tRETURN\tVS BUY-HOLD\t")
	for _, r := range top {
		fmt.Fprintf(tw, "%s%%\t%s%%\t%s%%\t%s%%\t$%s\t\n",
			r.Params.PutOTMPct.Mul(decimal.NewFromInt(100)).StringFixed(1),
			r.Params.CallOTMPct.Mul(decimal.NewFromInt(100)).StringFixed(1),
			r.Params.PremiumPct.Mul(decimal.NewFromInt(100)).StringFixed(1),
			r.Metrics.TotalReturnPct.StringFixed(2),
			r.Metrics.Outperformance.StringFixed(0),
		)
	}
	return tw.Flush()
}

func runQuickStart(ctx context.Context, cfg *config.Config, log ports.Logger, source ports.PriceSource, repo ports.RunRepository) {
	var rows []report.ComparisonRow
	for _, qs := range quickStartRuns {
		start, _ := time.Parse(dateLayout, qs.start)
		end, _ := time.Parse(dateLayout, qs.end)
		initialCapital := decimal.NewFromInt(qs.capital)

		series, err := source.GetWeeklyCloses(ctx, qs.ticker, start, end)
		if err != nil {
			log.Error(ctx, err, "Failed to load price series", map[string]interface{}{"ticker": qs.ticker})
			continue
		}
		m, result, err := runBacktest(ctx, cfg, log, qs.ticker, series, initialCapital)
		if err != nil {
			log.Error(ctx, err, "Backtest failed", map[string]interface{}{"ticker": qs.ticker})
			continue
		}

		report.PrintResults(os.Stdout, qs.ticker, m)
		saveRun(ctx, log, repo, qs.ticker, start, end, initialCapital, m, result)
		rows = append(rows, report.ComparisonRow{Ticker: qs.ticker, Metrics: m})
	}
	if len(rows) > 0 {
		report.PrintComparison(os.Stdout, rows)
	}
}

func saveRun(ctx context.Context, log ports.Logger, repo ports.RunRepository, ticker string, start, end time.Time, initialCapital decimal.Decimal, m *analytics.Metrics, result *wheel.Result) {
	run := &domain.BacktestRun{
		Ticker:         ticker,
		StartDate:      start,
		EndDate:        end,
		InitialCapital: initialCapital,
		FinalValue:     m.TotalValue,
		TotalReturnPct: m.TotalReturnPct,
	}
	id, err := repo.SaveRun(ctx, run, result.Events)
	if err != nil {
		log.Error(ctx, err, "Failed to save run", map[string]interface{}{"ticker": ticker})
		return
	}
	log.Info(ctx, "Run saved", map[string]interface{}{"runID": id, "ticker": ticker})
}

func usage() {
	fmt.Fprintf(os.Stderr, `Wheel strategy backtester

Usage:
  wheelhouse [flags] TICKER START END
  wheelhouse --quick-start

Arguments:
  TICKER   stock symbol, 1-5 letters (e.g. TSLA)
  START    backtest start date, YYYY-MM-DD
  END      backtest end date, YYYY-MM-DD

Flags:
`)
	flag.PrintDefaults()
}
