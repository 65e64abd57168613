package domain

import (
	"context"
	"time"
)

// MarketSource fetches market data for one symbol. The daemon is the only
// caller; the generation core receives pre-fetched snapshots and performs
// no I/O of its own.
type MarketSource interface {
	GetSnapshot(ctx context.Context, symbol string) (*MarketSnapshot, error)
	GetPriceHistory(ctx context.Context, symbol string, hours int) ([]CryptoPrice, error)
}

// MessageSender delivers a finished message to the user-facing channel
// (Telegram in production, a logger in dry-run mode).
type MessageSender interface {
	SendMessage(ctx context.Context, text string) error
}

// HistoryRepository persists price points and run stats across restarts.
type HistoryRepository interface {
	SavePrice(ctx context.Context, price CryptoPrice) error
	GetPriceHistory(ctx context.Context, symbol string, since time.Time) ([]CryptoPrice, error)
	SaveStats(ctx context.Context, stats RunStats) error
	GetStatsSummary(ctx context.Context, days int) (*StatsSummary, error)
	CleanupOldData(ctx context.Context, keepDays int) error
}
