package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"wheelhouse/internal/adapters/logger" // Import the logger package for LogLevel
	"wheelhouse/internal/ports"
)

// Capital bounds for a single run.
const (
	MinCapital = 1_000
	MaxCapital = 100_000_000
)

var tickerPattern = regexp.MustCompile(`^[A-Za-z]{1,5}$`)

// Config holds all application configuration.
type Config struct {
	// Strategy Parameters
	InitialCapital   decimal.Decimal // Default starting capital (overridable per run)
	PutOTMPct        decimal.Decimal // How far out-of-the-money to sell puts (e.g. 0.05)
	CallOTMPct       decimal.Decimal // How far out-of-the-money to sell calls (e.g. 0.05)
	PremiumPct       decimal.Decimal // Estimated weekly premium as % of strike (e.g. 0.02)
	PremiumOTMAdjust bool            // Discount premiums by distance from spot
	LotSize          int64           // Shares per contract

	// Database
	DBPath string

	// Price source
	PriceBaseURL string
	HTTPTimeout  time.Duration

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	capital, err := getEnvAsFloatRequired("INITIAL_CAPITAL", 50000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_CAPITAL: %v", err))
	} else if capital <= 0 {
		errs = append(errs, "INITIAL_CAPITAL must be positive")
	} else {
		cfg.InitialCapital = decimal.NewFromFloat(capital)
	}

	putOTM, err := getEnvAsFloatRequired("PUT_OTM_PCT", 0.05)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PUT_OTM_PCT: %v", err))
	} else if putOTM <= 0 || putOTM >= 1.0 {
		errs = append(errs, "PUT_OTM_PCT must be between 0.0 and 1.0 (exclusive)")
	} else {
		cfg.PutOTMPct = decimal.NewFromFloat(putOTM)
	}

	callOTM, err := getEnvAsFloatRequired("CALL_OTM_PCT", 0.05)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CALL_OTM_PCT: %v", err))
	} else if callOTM <= 0 || callOTM >= 1.0 {
		errs = append(errs, "CALL_OTM_PCT must be between 0.0 and 1.0 (exclusive)")
	} else {
		cfg.CallOTMPct = decimal.NewFromFloat(callOTM)
	}

	premium, err := getEnvAsFloatRequired("PREMIUM_PCT", 0.02)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PREMIUM_PCT: %v", err))
	} else if premium <= 0 || premium >= 1.0 {
		errs = append(errs, "PREMIUM_PCT must be between 0.0 and 1.0 (exclusive)")
	} else {
		cfg.PremiumPct = decimal.NewFromFloat(premium)
	}

	cfg.PremiumOTMAdjust = getEnvAsBool("PREMIUM_OTM_ADJUST", false)

	lotSize, err := getEnvAsIntRequired("LOT_SIZE", 100)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LOT_SIZE: %v", err))
	} else if lotSize <= 0 {
		errs = append(errs, "LOT_SIZE must be positive")
	} else {
		cfg.LotSize = int64(lotSize)
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/wheelhouse.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Price source
	cfg.PriceBaseURL = getEnv("PRICE_BASE_URL", "")
	timeoutSeconds := getEnvAsInt("HTTP_TIMEOUT_SECONDS", 30)
	if timeoutSeconds <= 0 {
		errs = append(errs, "HTTP_TIMEOUT_SECONDS must be positive")
	}
	cfg.HTTPTimeout = time.Duration(timeoutSeconds) * time.Second

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// ValidateRunParams checks the per-run inputs (usually from the CLI) before
// any data is fetched. All violations surface as ErrInvalidConfiguration.
func ValidateRunParams(ticker string, start, end time.Time, capital decimal.Decimal) error {
	var errs []string

	if !tickerPattern.MatchString(ticker) {
		errs = append(errs, fmt.Sprintf("invalid ticker %q: must be 1-5 alphabetic characters (e.g. TSLA, AAPL)", ticker))
	}
	if capital.LessThan(decimal.NewFromInt(MinCapital)) || capital.GreaterThan(decimal.NewFromInt(MaxCapital)) {
		errs = append(errs, fmt.Sprintf("capital must be between %d and %d, got %s", MinCapital, MaxCapital, capital))
	}
	if !start.Before(end) {
		errs = append(errs, fmt.Sprintf("start date (%s) must be before end date (%s)",
			start.Format("2006-01-02"), end.Format("2006-01-02")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ports.ErrInvalidConfiguration, strings.Join(errs, "; "))
	}
	return nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
