package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"adaptiveMABot/internal/domain"
	"adaptiveMABot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.ResultRepository using SQLite, so repeated
// optimization runs accumulate a queryable history.
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
		return nil, fmt.Errorf("%w: logger is required for SQLite repository", ports.ErrConfiguration)
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/optimization.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from
	// a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite result repository ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS optimization_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_label TEXT NOT NULL,
		symbol TEXT NOT NULL,
		ma_type TEXT NOT NULL,
		ma_pair TEXT NOT NULL,
		volatility REAL NOT NULL,
		trend_strength REAL NOT NULL,
		total_return REAL NOT NULL,
		win_rate REAL NOT NULL,
		sharpe REAL NOT NULL,
		max_drawdown REAL NOT NULL,
		trades INTEGER NOT NULL,
		row_rank INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_opt_results_symbol_return ON optimization_results (symbol, total_return);
	CREATE INDEX IF NOT EXISTS idx_opt_results_run ON optimization_results (run_label);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveRows stores one run's ranked rows in a single transaction; rank is
// the row's position in the ranked table.
func (r *Repository) SaveRows(ctx context.Context, runLabel string, rows []domain.ResultRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ports.ErrQueryFailed, err)
	}
	defer tx.Rollback()

	const query = `
	INSERT INTO optimization_results
		(run_label, symbol, ma_type, ma_pair, volatility, trend_strength,
		 total_return, win_rate, sharpe, max_drawdown, trades, row_rank)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare insert: %v", ports.ErrQueryFailed, err)
	}
	defer stmt.Close()

	for rank, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			runLabel, row.Symbol, string(row.MAType), row.MAPair, row.Volatility, row.TrendStrength,
			row.Return, row.WinRate, row.Sharpe, row.MaxDD, row.Trades, rank); err != nil {
			return fmt.Errorf("%w: failed to insert result row for %s %s: %v", ports.ErrQueryFailed, row.Symbol, row.MAPair, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit result rows: %v", ports.ErrQueryFailed, err)
	}
	r.logger.Debug(ctx, "Result rows saved", map[string]interface{}{"runLabel": runLabel, "rows": len(rows)})
	return nil
}

// FindBySymbol retrieves the rows of the most recent run covering a
// symbol, best-ranked first, up to limit.
func (r *Repository) FindBySymbol(ctx context.Context, symbol string, limit int) ([]domain.ResultRow, error) {
	const query = `
	SELECT symbol, ma_type, ma_pair, volatility, trend_strength,
	       total_return, win_rate, sharpe, max_drawdown, trades
	FROM optimization_results
	WHERE symbol = ?
	  AND run_label = (SELECT run_label FROM optimization_results WHERE symbol = ? ORDER BY id DESC LIMIT 1)
	ORDER BY row_rank
	LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query results for symbol %s: %v", ports.ErrQueryFailed, symbol, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// BestPerSymbol retrieves the single highest-return row ever stored for
// each symbol, ordered by symbol. Ties resolve to the earliest row, which
// keeps the answer stable across reruns.
func (r *Repository) BestPerSymbol(ctx context.Context) ([]domain.ResultRow, error) {
	const query = `
	SELECT symbol, ma_type, ma_pair, volatility, trend_strength,
	       total_return, win_rate, sharpe, max_drawdown, trades
	FROM optimization_results r
	WHERE id = (
		SELECT id FROM optimization_results
		WHERE symbol = r.symbol
		ORDER BY total_return DESC, id ASC
		LIMIT 1
	)
	ORDER BY symbol`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query best rows per symbol: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]domain.ResultRow, error) {
	results := make([]domain.ResultRow, 0)
	for rows.Next() {
		var row domain.ResultRow
		var maType string
		if err := rows.Scan(&row.Symbol, &maType, &row.MAPair, &row.Volatility, &row.TrendStrength,
			&row.Return, &row.WinRate, &row.Sharpe, &row.MaxDD, &row.Trades); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		row.MAType = domain.MAType(maType)
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return results, nil
}
