package stooq

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheelhouse/internal/adapters/logger"
	"wheelhouse/internal/ports"
)

const sampleCSV = `Date,Open,High,Low,Close,Volume
2025-01-03,100.50,105.20,99.10,104.30,1200000
2025-01-10,104.50,108.00,103.20,107.85,980000
2025-01-17,107.90,110.40,105.00,106.12,1100000
`

func testLogger() ports.Logger {
	return logger.NewStdLoggerWithWriter(logger.LevelError, io.Discard)
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err, "expected an error without a logger")

	client, err := New(Config{Logger: testLogger()})
	require.NoError(t, err)
	assert.Equal(t, defaultBaseURL, client.baseURL)
}

func TestGetWeeklyCloses(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		io.WriteString(w, sampleCSV)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, Logger: testLogger()})
	require.NoError(t, err)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	points, err := client.GetWeeklyCloses(context.Background(), "TSLA", start, end)
	require.NoError(t, err)

	assert.Equal(t, "/q/d/l/", gotPath)
	assert.Contains(t, gotQuery, "s=tsla.us")
	assert.Contains(t, gotQuery, "d1=20250101")
	assert.Contains(t, gotQuery, "d2=20250131")
	assert.Contains(t, gotQuery, "i=w")

	require.Len(t, points, 3)
	assert.Equal(t, "2025-01-03", points[0].Date.Format("2006-01-02"))
	assert.Equal(t, "104.30", points[0].Close.StringFixed(2))
	assert.Equal(t, "106.12", points[2].Close.StringFixed(2))
}

func TestGetWeeklyClosesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, Logger: testLogger()})
	require.NoError(t, err)

	_, err = client.GetWeeklyCloses(context.Background(), "TSLA", time.Now().AddDate(0, -1, 0), time.Now())
	assert.ErrorIs(t, err, ports.ErrDataRetrieval)
}

func TestGetWeeklyClosesNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "No data\n")
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, Logger: testLogger()})
	require.NoError(t, err)

	_, err = client.GetWeeklyCloses(context.Background(), "ZZZZZ", time.Now().AddDate(0, -1, 0), time.Now())
	assert.ErrorIs(t, err, ports.ErrDataRetrieval)
}

func TestParseQuotes(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{name: "with header", input: sampleCSV, wantCount: 3},
		{name: "no header", input: "2025-01-03,100,105,99,104.30,1200\n", wantCount: 1},
		{name: "empty input", input: "", wantCount: 0},
		{name: "no data marker", input: "No data\n", wantCount: 0},
		{name: "malformed row", input: "2025-01-03,100\n", wantErr: true},
		{name: "bad date", input: "03/01/2025,100,105,99,104.30,1200\n", wantErr: true},
		{name: "bad close", input: "2025-01-03,100,105,99,abc,1200\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := parseQuotes(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, points, tt.wantCount)
		})
	}
}
