package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"wheelhouse/config"
	"wheelhouse/internal/adapters/logger"
	"wheelhouse/internal/adapters/stooq"
	"wheelhouse/internal/utils"
)

const dateLayout = "2006-01-02"

func main() {
	ticker := flag.String("ticker", "TSLA", "stock symbol to fetch")
	startStr := flag.String("start", "", "start date YYYY-MM-DD (default: one year ago)")
	endStr := flag.String("end", "", "end date YYYY-MM-DD (default: today)")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Price Source (Stooq Adapter)
	client, err := stooq.New(stooq.Config{
		BaseURL: cfg.PriceBaseURL,
		Timeout: cfg.HTTPTimeout,
		Logger:  appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize price source")
		log.Fatalf("FATAL: Failed to initialize price source: %v", err)
	}

	end := time.Now()
	start := end.AddDate(-1, 0, 0)
	if *startStr != "" {
		if start, err = time.Parse(dateLayout, *startStr); err != nil {
			log.Fatalf("Invalid start date %q: %v", *startStr, err)
		}
	}
	if *endStr != "" {
		if end, err = time.Parse(dateLayout, *endStr); err != nil {
			log.Fatalf("Invalid end date %q: %v", *endStr, err)
		}
	}

	fmt.Printf("Fetching weekly closes for %s from %s to %s...\n",
		*ticker, start.Format(dateLayout), end.Format(dateLayout))
	points, err := client.GetWeeklyCloses(context.Background(), *ticker, start, end)
	if err != nil {
		appLogger.Error(context.Background(), err, "Error fetching prices")
		log.Fatalf("Error fetching prices: %v", err)
	}
	appLogger.Info(context.Background(), "Fetched weekly closes", map[string]interface{}{"count": len(points)})

	if err := os.MkdirAll("data", 0755); err != nil {
		log.Fatalf("Error creating data directory: %v", err)
	}
	filename, err := utils.ExportFilename("data/prices", *ticker, start, end, "csv")
	if err != nil {
		log.Fatalf("Error building filename: %v", err)
	}
	if err := utils.WritePricePointsToCSV(points, filename); err != nil {
		appLogger.Error(context.Background(), err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(context.Background(), "Saved to", map[string]interface{}{"filename": filename})
}
