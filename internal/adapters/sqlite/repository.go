package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"wheelhouse/internal/domain"
	"wheelhouse/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.RunRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/wheelhouse.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("%w: creating data directory '%s': %v", ports.ErrDBConnection, filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("%w: opening database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: pinging database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from a
	// single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("initializing database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite database ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS backtest_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker TEXT NOT NULL,
		start_date TIMESTAMP NOT NULL,
		end_date TIMESTAMP NOT NULL,
		initial_capital TEXT NOT NULL,
		final_value TEXT NOT NULL,
		total_return_pct TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trade_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES backtest_runs(id),
		event_date TIMESTAMP NOT NULL,
		event_type TEXT NOT NULL,
		strike TEXT NOT NULL,
		premium TEXT NOT NULL,
		stock_price TEXT NOT NULL,
		realized_gain TEXT NULL,
		unrealized_gain TEXT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_backtest_runs_ticker ON backtest_runs (ticker);
	CREATE INDEX IF NOT EXISTS idx_trade_events_run ON trade_events (run_id);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// SaveRun persists a run and its event log in one transaction.
// Decimals are stored as TEXT to avoid float round-tripping.
func (r *Repository) SaveRun(ctx context.Context, run *domain.BacktestRun, events []domain.TradeEvent) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: beginning transaction: %v", ports.ErrQueryFailed, err)
	}
	defer tx.Rollback()

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO backtest_runs (ticker, start_date, end_date, initial_capital, final_value, total_return_pct, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.Ticker, run.StartDate, run.EndDate,
		run.InitialCapital.String(), run.FinalValue.String(), run.TotalReturnPct.String(),
		createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: inserting run: %v", ports.ErrQueryFailed, err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: reading run id: %v", ports.ErrQueryFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trade_events (run_id, event_date, event_type, strike, premium, stock_price, realized_gain, unrealized_gain)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("%w: preparing event insert: %v", ports.ErrQueryFailed, err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx,
			runID, ev.Date, string(ev.Type),
			ev.Strike.String(), ev.Premium.String(), ev.StockPrice.String(),
			nullDecimal(ev.RealizedGain), nullDecimal(ev.UnrealizedGain),
		); err != nil {
			return 0, fmt.Errorf("%w: inserting event: %v", ports.ErrQueryFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: committing run: %v", ports.ErrQueryFailed, err)
	}

	run.ID = runID
	run.CreatedAt = createdAt
	r.logger.Debug(ctx, "Run persisted", map[string]interface{}{"runID": runID, "events": len(events)})
	return runID, nil
}

// FindRuns retrieves all stored runs, newest first.
func (r *Repository) FindRuns(ctx context.Context) ([]*domain.BacktestRun, error) {
	return r.queryRuns(ctx, `
		SELECT id, ticker, start_date, end_date, initial_capital, final_value, total_return_pct, created_at
		FROM backtest_runs ORDER BY created_at DESC, id DESC`)
}

// FindRunsByTicker retrieves stored runs for one ticker, newest first.
func (r *Repository) FindRunsByTicker(ctx context.Context, ticker string) ([]*domain.BacktestRun, error) {
	return r.queryRuns(ctx, `
		SELECT id, ticker, start_date, end_date, initial_capital, final_value, total_return_pct, created_at
		FROM backtest_runs WHERE ticker = ? ORDER BY created_at DESC, id DESC`, ticker)
}

func (r *Repository) queryRuns(ctx context.Context, query string, args ...interface{}) ([]*domain.BacktestRun, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying runs: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var runs []*domain.BacktestRun
	for rows.Next() {
		var run domain.BacktestRun
		var capital, finalValue, returnPct string
		if err := rows.Scan(&run.ID, &run.Ticker, &run.StartDate, &run.EndDate, &capital, &finalValue, &returnPct, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning run: %v", ports.ErrQueryFailed, err)
		}
		if run.InitialCapital, err = decimal.NewFromString(capital); err != nil {
			return nil, fmt.Errorf("%w: decoding initial capital: %v", ports.ErrQueryFailed, err)
		}
		if run.FinalValue, err = decimal.NewFromString(finalValue); err != nil {
			return nil, fmt.Errorf("%w: decoding final value: %v", ports.ErrQueryFailed, err)
		}
		if run.TotalReturnPct, err = decimal.NewFromString(returnPct); err != nil {
			return nil, fmt.Errorf("%w: decoding return pct: %v", ports.ErrQueryFailed, err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating runs: %v", ports.ErrQueryFailed, err)
	}
	return runs, nil
}

// FindEventsByRun retrieves the ordered event log for a run.
func (r *Repository) FindEventsByRun(ctx context.Context, runID int64) ([]domain.TradeEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT event_date, event_type, strike, premium, stock_price, realized_gain, unrealized_gain
		FROM trade_events WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying events: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var events []domain.TradeEvent
	for rows.Next() {
		var ev domain.TradeEvent
		var eventType, strike, premium, stockPrice string
		var realized, unrealized sql.NullString
		if err := rows.Scan(&ev.Date, &eventType, &strike, &premium, &stockPrice, &realized, &unrealized); err != nil {
			return nil, fmt.Errorf("%w: scanning event: %v", ports.ErrQueryFailed, err)
		}
		ev.Type = domain.EventType(eventType)
		if ev.Strike, err = decimal.NewFromString(strike); err != nil {
			return nil, fmt.Errorf("%w: decoding strike: %v", ports.ErrQueryFailed, err)
		}
		if ev.Premium, err = decimal.NewFromString(premium); err != nil {
			return nil, fmt.Errorf("%w: decoding premium: %v", ports.ErrQueryFailed, err)
		}
		if ev.StockPrice, err = decimal.NewFromString(stockPrice); err != nil {
			return nil, fmt.Errorf("%w: decoding stock price: %v", ports.ErrQueryFailed, err)
		}
		if ev.RealizedGain, err = scanNullDecimal(realized); err != nil {
			return nil, fmt.Errorf("%w: decoding realized gain: %v", ports.ErrQueryFailed, err)
		}
		if ev.UnrealizedGain, err = scanNullDecimal(unrealized); err != nil {
			return nil, fmt.Errorf("%w: decoding unrealized gain: %v", ports.ErrQueryFailed, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating events: %v", ports.ErrQueryFailed, err)
	}
	return events, nil
}

func nullDecimal(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

func scanNullDecimal(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
