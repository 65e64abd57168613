package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cryptofam/crypto_notify_bot/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS prices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			price_usd REAL NOT NULL,
			price_eur REAL NOT NULL,
			volume_24h REAL NOT NULL DEFAULT 0,
			change_24h REAL,
			high_24h REAL NOT NULL DEFAULT 0,
			low_24h REAL NOT NULL DEFAULT 0,
			recorded_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_prices_symbol_time ON prices(symbol, recorded_at);`,
		`CREATE TABLE IF NOT EXISTS run_stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			total_checks INTEGER NOT NULL,
			total_alerts INTEGER NOT NULL,
			total_errors INTEGER NOT NULL,
			uptime_seconds INTEGER NOT NULL,
			recorded_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_run_stats_time ON run_stats(recorded_at);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}

	return nil
}

// HistoryRepository Implementation

func (s *SQLiteStore) SavePrice(ctx context.Context, price domain.CryptoPrice) error {
	query := `INSERT INTO prices (symbol, price_usd, price_eur, volume_24h, change_24h, high_24h, low_24h, recorded_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		price.Symbol, price.PriceUSD, price.PriceEUR, price.Volume24h, price.Change24h,
		price.High24h, price.Low24h, price.Timestamp)
	return err
}

func (s *SQLiteStore) GetPriceHistory(ctx context.Context, symbol string, since time.Time) ([]domain.CryptoPrice, error) {
	query := `SELECT symbol, price_usd, price_eur, volume_24h, change_24h, high_24h, low_24h, recorded_at
			  FROM prices WHERE symbol = ? AND recorded_at >= ? ORDER BY recorded_at ASC`
	rows, err := s.db.QueryContext(ctx, query, symbol, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []domain.CryptoPrice
	for rows.Next() {
		var p domain.CryptoPrice
		var change sql.NullFloat64
		if err := rows.Scan(&p.Symbol, &p.PriceUSD, &p.PriceEUR, &p.Volume24h, &change, &p.High24h, &p.Low24h, &p.Timestamp); err != nil {
			return nil, err
		}
		if change.Valid {
			v := change.Float64
			p.Change24h = &v
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

func (s *SQLiteStore) SaveStats(ctx context.Context, stats domain.RunStats) error {
	query := `INSERT INTO run_stats (total_checks, total_alerts, total_errors, uptime_seconds, recorded_at)
			  VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		stats.TotalChecks, stats.TotalAlerts, stats.TotalErrors, stats.UptimeSeconds, stats.RecordedAt)
	return err
}

func (s *SQLiteStore) GetStatsSummary(ctx context.Context, days int) (*domain.StatsSummary, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)

	query := `SELECT COALESCE(MAX(total_checks), 0), COALESCE(MAX(total_alerts), 0), COALESCE(MAX(total_errors), 0)
			  FROM run_stats WHERE recorded_at >= ?`
	row := s.db.QueryRowContext(ctx, query, since)

	summary := &domain.StatsSummary{WindowDays: days}
	if err := row.Scan(&summary.TotalChecks, &summary.TotalAlerts, &summary.TotalErrors); err != nil {
		return nil, err
	}
	summary.AvgChecksPerDay = float64(summary.TotalChecks) / float64(days)
	return summary, nil
}

func (s *SQLiteStore) CleanupOldData(ctx context.Context, keepDays int) error {
	if keepDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -keepDays)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM prices WHERE recorded_at < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup prices: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM run_stats WHERE recorded_at < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup run_stats: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
