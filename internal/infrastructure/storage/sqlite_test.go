package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptofam/crypto_notify_bot/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSavePriceRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	change := 2.5
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.SavePrice(ctx, domain.CryptoPrice{
		Symbol:    "BTC",
		PriceUSD:  48000,
		PriceEUR:  45000,
		Volume24h: 2e9,
		Change24h: &change,
		High24h:   46000,
		Low24h:    44000,
		Timestamp: now,
	}))
	require.NoError(t, store.SavePrice(ctx, domain.CryptoPrice{
		Symbol:    "ETH",
		PriceUSD:  3200,
		PriceEUR:  3000,
		Timestamp: now,
	}))

	prices, err := store.GetPriceHistory(ctx, "BTC", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, "BTC", prices[0].Symbol)
	assert.Equal(t, 45000.0, prices[0].PriceEUR)
	require.NotNil(t, prices[0].Change24h)
	assert.Equal(t, 2.5, *prices[0].Change24h)
}

func TestNilChangeSurvivesStorage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, store.SavePrice(ctx, domain.CryptoPrice{
		Symbol:    "SOL",
		PriceUSD:  150,
		PriceEUR:  140,
		Timestamp: now,
	}))

	prices, err := store.GetPriceHistory(ctx, "SOL", now.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Nil(t, prices[0].Change24h)
}

func TestGetPriceHistoryWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, age := range []time.Duration{48 * time.Hour, 2 * time.Hour, time.Hour} {
		require.NoError(t, store.SavePrice(ctx, domain.CryptoPrice{
			Symbol:    "BTC",
			PriceUSD:  100,
			PriceEUR:  92,
			Timestamp: now.Add(-age),
		}))
	}

	prices, err := store.GetPriceHistory(ctx, "BTC", now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, prices, 2)
	// Oldest first.
	assert.True(t, prices[0].Timestamp.Before(prices[1].Timestamp))
}

func TestStatsSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, checks := range []int{10, 25, 40} {
		require.NoError(t, store.SaveStats(ctx, domain.RunStats{
			TotalChecks:   checks,
			TotalAlerts:   i,
			TotalErrors:   1,
			UptimeSeconds: checks * 60,
			RecordedAt:    now.Add(-time.Duration(i) * time.Hour),
		}))
	}

	summary, err := store.GetStatsSummary(ctx, 7)
	require.NoError(t, err)
	// Counters are cumulative, the summary takes the maximum.
	assert.Equal(t, 40, summary.TotalChecks)
	assert.Equal(t, 2, summary.TotalAlerts)
	assert.Equal(t, 7, summary.WindowDays)
	assert.InDelta(t, 40.0/7.0, summary.AvgChecksPerDay, 1e-9)
}

func TestStatsSummaryEmpty(t *testing.T) {
	store := newTestStore(t)

	summary, err := store.GetStatsSummary(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalChecks)
}

func TestCleanupOldData(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, store.SavePrice(ctx, domain.CryptoPrice{
		Symbol: "BTC", PriceUSD: 100, PriceEUR: 92, Timestamp: now.AddDate(0, 0, -60),
	}))
	require.NoError(t, store.SavePrice(ctx, domain.CryptoPrice{
		Symbol: "BTC", PriceUSD: 100, PriceEUR: 92, Timestamp: now,
	}))

	require.NoError(t, store.CleanupOldData(ctx, 30))

	prices, err := store.GetPriceHistory(ctx, "BTC", now.AddDate(0, 0, -365))
	require.NoError(t, err)
	assert.Len(t, prices, 1)

	// keepDays <= 0 is a no-op, nothing else is deleted.
	require.NoError(t, store.CleanupOldData(ctx, 0))
	prices, err = store.GetPriceHistory(ctx, "BTC", now.AddDate(0, 0, -365))
	require.NoError(t, err)
	assert.Len(t, prices, 1)
}
