// Package stooq implements ports.PriceSource against the Stooq historical
// quote endpoint, which serves plain CSV and needs no API key.
package stooq

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"wheelhouse/internal/domain"
	"wheelhouse/internal/ports"
)

const (
	defaultBaseURL = "https://stooq.com"
	defaultTimeout = 30 * time.Second
)

// Config holds configuration for the Stooq client.
type Config struct {
	BaseURL string        // Defaults to the public Stooq endpoint
	Timeout time.Duration // HTTP timeout; defaults to 30s
	Logger  ports.Logger
}

// Client retrieves historical weekly quotes from Stooq.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     ports.Logger
}

// New creates a new Stooq client.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for the stooq client")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}, nil
}

// GetWeeklyCloses downloads weekly closing prices for a US-listed ticker
// over [start, end]. Stooq returns one row per trading week, oldest first.
func (c *Client) GetWeeklyCloses(ctx context.Context, ticker string, start, end time.Time) ([]domain.PricePoint, error) {
	symbol := strings.ToLower(ticker) + ".us"
	endpoint := fmt.Sprintf("%s/q/d/l/?s=%s&d1=%s&d2=%s&i=w",
		c.baseURL,
		url.QueryEscape(symbol),
		start.Format("20060102"),
		end.Format("20060102"),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ports.ErrDataRetrieval, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrDataRetrieval, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ports.ErrDataRetrieval, resp.StatusCode, c.baseURL)
	}

	points, err := parseQuotes(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrDataRetrieval, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no data found for %s", ports.ErrDataRetrieval, ticker)
	}

	c.logger.Info(ctx, "Downloaded weekly quotes", map[string]interface{}{
		"ticker": ticker,
		"weeks":  len(points),
		"first":  points[0].Close,
		"last":   points[len(points)-1].Close,
		"from":   points[0].Date.Format("2006-01-02"),
		"to":     points[len(points)-1].Date.Format("2006-01-02"),
	})
	return points, nil
}

// parseQuotes parses Stooq's download CSV (Date,Open,High,Low,Close,Volume).
func parseQuotes(r io.Reader) ([]domain.PricePoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading quote CSV: %v", err)
	}

	var points []domain.PricePoint
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == "Date" {
			continue // header row
		}
		if len(rec) > 0 && strings.HasPrefix(rec[0], "No data") {
			return nil, nil
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("malformed quote row %d: %q", i+1, rec)
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			return nil, fmt.Errorf("parsing date on row %d: %v", i+1, err)
		}
		closePrice, err := decimal.NewFromString(rec[4])
		if err != nil {
			return nil, fmt.Errorf("parsing close on row %d: %v", i+1, err)
		}
		points = append(points, domain.PricePoint{Date: date, Close: closePrice})
	}
	return points, nil
}
