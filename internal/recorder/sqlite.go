package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"StockScope/internal/model"
)

// SQLiteRecorder persists bars and indicator output to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the HTTP server read while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.With().Str("component", "sqlite").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			symbol     TEXT NOT NULL,
			provider   TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			bar_count  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON runs(symbol, fetched_at)`,

		`CREATE TABLE IF NOT EXISTS bars (
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			open   REAL,
			high   REAL,
			low    REAL,
			close  REAL,
			volume INTEGER,
			PRIMARY KEY (symbol, date)
		)`,

		`CREATE TABLE IF NOT EXISTS indicator_points (
			run_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			series TEXT NOT NULL,
			date   TEXT NOT NULL,
			value  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_points_run ON indicator_points(run_id, series)`,
		`CREATE INDEX IF NOT EXISTS idx_points_symbol ON indicator_points(symbol, series, date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", strings.TrimSpace(s)[:40], err)
		}
	}
	return nil
}

// RecordReport stores one run in a single transaction: the run row, an upsert
// of every bar and all indicator points.
func (r *SQLiteRecorder) RecordReport(ctx context.Context, report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.New().String()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO runs (id, symbol, provider, fetched_at, bar_count)
		VALUES (?,?,?,?,?)`,
		runID, report.Symbol, report.Provider, report.FetchedAt.Unix(), len(report.Bars),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	barStmt, err := tx.PrepareContext(ctx, `INSERT INTO bars (symbol, date, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low,
			close = excluded.close, volume = excluded.volume`)
	if err != nil {
		return fmt.Errorf("prepare bars: %w", err)
	}
	defer barStmt.Close()
	for _, b := range report.Bars {
		if _, err := barStmt.ExecContext(ctx, report.Symbol, formatDate(b.Date),
			b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("upsert bar %s: %w", formatDate(b.Date), err)
		}
	}

	pointStmt, err := tx.PrepareContext(ctx, `INSERT INTO indicator_points (run_id, symbol, series, date, value)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare points: %w", err)
	}
	defer pointStmt.Close()
	points := 0
	for _, s := range Flatten(report) {
		for _, p := range s.Points {
			if _, err := pointStmt.ExecContext(ctx, runID, report.Symbol, s.Name, formatDate(p.Date), p.Value); err != nil {
				return fmt.Errorf("insert %s point: %w", s.Name, err)
			}
			points++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Debug().Str("symbol", report.Symbol).Str("run_id", runID).
		Int("bars", len(report.Bars)).Int("points", points).Msg("report recorded")
	return nil
}

// LoadBars returns every stored bar for symbol, ascending by date.
func (r *SQLiteRecorder) LoadBars(ctx context.Context, symbol string) ([]model.Bar, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, open, high, low, close, volume
		FROM bars WHERE symbol = ? ORDER BY date ASC`, strings.ToUpper(symbol))
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var (
			day string
			b   model.Bar
		)
		if err := rows.Scan(&day, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		if b.Date, err = time.Parse(dateLayout, day); err != nil {
			return nil, fmt.Errorf("parse bar date %q: %w", day, err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// SeriesValues returns the points of one indicator series from the latest run
// recorded for symbol.
func (r *SQLiteRecorder) SeriesValues(ctx context.Context, symbol, series string) ([]model.Point, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT p.date, p.value FROM indicator_points p
		WHERE p.run_id = (SELECT id FROM runs WHERE symbol = ? ORDER BY fetched_at DESC, rowid DESC LIMIT 1)
		  AND p.series = ?
		ORDER BY p.date ASC`, strings.ToUpper(symbol), series)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", series, err)
	}
	defer rows.Close()

	var points []model.Point
	for rows.Next() {
		var (
			day string
			p   model.Point
		)
		if err := rows.Scan(&day, &p.Value); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		if p.Date, err = time.Parse(dateLayout, day); err != nil {
			return nil, fmt.Errorf("parse point date %q: %w", day, err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
