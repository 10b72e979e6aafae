package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"options-backtester/internal/models"
)

// QuoteStore is a SQLite-backed cache of normalized stock and option series.
// Ingest once from CSV, then run backtests from the cache.
type QuoteStore struct {
	db *sql.DB
}

// NewQuoteStore opens (or creates) a quote cache at dbPath.
func NewQuoteStore(dbPath string) (*QuoteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &QuoteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *QuoteStore) initSchema() error {
	schema := `
	-- Daily adjusted stock prices
	CREATE TABLE IF NOT EXISTS stock_quotes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		adj_close REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, date)
	);

	-- End-of-day option quotes
	CREATE TABLE IF NOT EXISTS option_quotes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date DATETIME NOT NULL,
		contract TEXT NOT NULL,
		underlying TEXT NOT NULL,
		underlying_price REAL NOT NULL,
		expiration DATETIME NOT NULL,
		type TEXT NOT NULL,
		strike REAL NOT NULL,
		bid REAL NOT NULL,
		ask REAL NOT NULL,
		last REAL NOT NULL,
		volume INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(contract, date)
	);

	CREATE INDEX IF NOT EXISTS idx_stock_quotes_date ON stock_quotes(date);
	CREATE INDEX IF NOT EXISTS idx_option_quotes_date ON option_quotes(date);
	CREATE INDEX IF NOT EXISTS idx_option_quotes_contract ON option_quotes(contract);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *QuoteStore) Close() error {
	return s.db.Close()
}

// SaveStockSeries upserts every row of the series into the cache.
func (s *QuoteStore) SaveStockSeries(ctx context.Context, series *StockSeries) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO stock_quotes (date, symbol, adj_close)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, date := range series.Dates() {
		for _, q := range series.Slice(date) {
			if _, err := stmt.ExecContext(ctx, q.Date, q.Symbol, q.AdjClose); err != nil {
				return fmt.Errorf("failed to insert stock quote: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LoadStockSeries reads all cached stock quotes with from <= date <= to. Zero
// bounds load the whole table.
func (s *QuoteStore) LoadStockSeries(ctx context.Context, from, to time.Time) (*StockSeries, error) {
	if to.IsZero() {
		to = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, symbol, adj_close
		FROM stock_quotes
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, symbol ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock quotes: %w", err)
	}
	defer rows.Close()

	var quotes []StockQuote
	for rows.Next() {
		var q StockQuote
		if err := rows.Scan(&q.Date, &q.Symbol, &q.AdjClose); err != nil {
			return nil, fmt.Errorf("failed to scan stock quote: %w", err)
		}
		q.Date = q.Date.UTC()
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock quotes: %w", err)
	}

	return NewStockSeries(DefaultStockSchema(), quotes), nil
}

// SaveOptionSeries upserts every row of the series into the cache.
func (s *QuoteStore) SaveOptionSeries(ctx context.Context, series *OptionSeries) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO option_quotes
			(date, contract, underlying, underlying_price, expiration, type, strike, bid, ask, last, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, date := range series.Dates() {
		for _, q := range series.Slice(date) {
			_, err := stmt.ExecContext(ctx,
				q.Date, q.Contract, q.Underlying, q.UnderlyingPrice,
				q.Expiration, string(q.Type), q.Strike, q.Bid, q.Ask, q.Last, q.Volume)
			if err != nil {
				return fmt.Errorf("failed to insert option quote: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LoadOptionSeries reads all cached option quotes with from <= date <= to.
// Zero bounds load the whole table.
func (s *QuoteStore) LoadOptionSeries(ctx context.Context, from, to time.Time) (*OptionSeries, error) {
	if to.IsZero() {
		to = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, contract, underlying, underlying_price, expiration, type, strike, bid, ask, last, volume
		FROM option_quotes
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, contract ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query option quotes: %w", err)
	}
	defer rows.Close()

	var quotes []OptionQuote
	for rows.Next() {
		var q OptionQuote
		var optType string
		if err := rows.Scan(&q.Date, &q.Contract, &q.Underlying, &q.UnderlyingPrice,
			&q.Expiration, &optType, &q.Strike, &q.Bid, &q.Ask, &q.Last, &q.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan option quote: %w", err)
		}
		q.Date = q.Date.UTC()
		q.Expiration = q.Expiration.UTC()
		q.Type = models.OptionType(optType)
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating option quotes: %w", err)
	}

	return NewOptionSeries(DefaultOptionSchema(), quotes), nil
}
