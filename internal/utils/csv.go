package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"wheelhouse/internal/domain"
	"wheelhouse/internal/ports"
)

// Export filenames embed the ticker; anything that could smuggle in path
// components is rejected outright.
var safeTickerPattern = regexp.MustCompile(`^[A-Za-z]{1,5}$`)

// ExportFilename builds a deterministic filename for an export artifact,
// e.g. "wheel_backtest_TSLA_20240105_20241227.csv".
func ExportFilename(prefix, ticker string, start, end time.Time, ext string) (string, error) {
	if !safeTickerPattern.MatchString(ticker) {
		return "", fmt.Errorf("%w: unsafe ticker %q in export filename", ports.ErrExport, ticker)
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s",
		prefix, strings.ToUpper(ticker), start.Format("20060102"), end.Format("20060102"), ext), nil
}

// WriteTradeEventsToCSV exports a trade-event log with one row per event.
// Gains are left empty where the event carries none.
func WriteTradeEventsToCSV(events []domain.TradeEvent, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrExport, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"date", "type", "strike", "premium", "stock_price", "realized_gain", "unrealized_gain"})

	for _, ev := range events {
		writer.Write([]string{
			ev.Date.Format("2006-01-02"),
			string(ev.Type),
			ev.Strike.StringFixed(2),
			ev.Premium.StringFixed(2),
			ev.StockPrice.StringFixed(2),
			formatOptional(ev.RealizedGain),
			formatOptional(ev.UnrealizedGain),
		})
	}
	if err := writer.Error(); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrExport, err)
	}
	return nil
}

// WritePricePointsToCSV exports a weekly price series.
func WritePricePointsToCSV(points []domain.PricePoint, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrExport, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"date", "close"})
	for _, p := range points {
		writer.Write([]string{
			p.Date.Format("2006-01-02"),
			p.Close.String(),
		})
	}
	if err := writer.Error(); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrExport, err)
	}
	return nil
}

// ReadPricePointsFromCSV loads a weekly price series previously written by
// WritePricePointsToCSV (or any CSV with date,close columns).
func ReadPricePointsFromCSV(filename string) ([]domain.PricePoint, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrDataRetrieval, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrDataRetrieval, err)
	}

	var points []domain.PricePoint
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == "date" {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("%w: malformed row %d in %s", ports.ErrDataRetrieval, i+1, filename)
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			return nil, fmt.Errorf("%w: parsing date on row %d: %v", ports.ErrDataRetrieval, i+1, err)
		}
		closePrice, err := decimal.NewFromString(rec[1])
		if err != nil {
			return nil, fmt.Errorf("%w: parsing close on row %d: %v", ports.ErrDataRetrieval, i+1, err)
		}
		points = append(points, domain.PricePoint{Date: date, Close: closePrice})
	}
	return points, nil
}

func formatOptional(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}
