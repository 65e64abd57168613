package brokers_test

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/cryptofam/crypto_notify_bot/internal/config"
	"github.com/cryptofam/crypto_notify_bot/internal/domain"
	"github.com/cryptofam/crypto_notify_bot/internal/infrastructure/brokers"
)

func snapshotAt(price float64) *domain.MarketSnapshot {
	return &domain.MarketSnapshot{
		Symbol:       "BTC",
		CurrentPrice: &domain.CryptoPrice{Symbol: "BTC", PriceEUR: price},
	}
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestBinanceBrokerQuote(t *testing.T) {
	b := brokers.NewBinanceBroker(nil)

	q, ok := b.Quote("BTC", snapshotAt(1000))
	if !ok {
		t.Fatal("expected a quote")
	}
	if !closeTo(q.BuyPrice, 1001) {
		t.Errorf("buy price = %f, want 1001", q.BuyPrice)
	}
	if !closeTo(q.SellPrice, 999) {
		t.Errorf("sell price = %f, want 999", q.SellPrice)
	}
	if q.Currency != "€" {
		t.Errorf("currency = %q", q.Currency)
	}
}

func TestBinanceBrokerCustomFee(t *testing.T) {
	b := brokers.NewBinanceBroker(map[string]float64{"fee_pct": 0.01})

	q, ok := b.Quote("BTC", snapshotAt(1000))
	if !ok {
		t.Fatal("expected a quote")
	}
	if !closeTo(q.BuyPrice, 1010) {
		t.Errorf("buy price = %f, want 1010", q.BuyPrice)
	}
}

func TestRevolutBrokerQuote(t *testing.T) {
	b := brokers.NewRevolutBroker(nil)

	q, ok := b.Quote("ETH", snapshotAt(1000))
	if !ok {
		t.Fatal("expected a quote")
	}
	// Spread then fee on top.
	if !closeTo(q.BuyPrice, 1000*1.005*1.015) {
		t.Errorf("buy price = %f", q.BuyPrice)
	}
	if !closeTo(q.SellPrice, 1000*0.995*0.985) {
		t.Errorf("sell price = %f", q.SellPrice)
	}
}

func TestBrokersNoQuoteWithoutPrice(t *testing.T) {
	cases := []struct {
		name   string
		market *domain.MarketSnapshot
	}{
		{"nil snapshot", nil},
		{"nil price", &domain.MarketSnapshot{Symbol: "BTC"}},
		{"zero price", snapshotAt(0)},
	}

	all := []domain.Broker{
		brokers.NewBinanceBroker(nil),
		brokers.NewRevolutBroker(nil),
	}
	for _, b := range all {
		for _, tc := range cases {
			if _, ok := b.Quote("BTC", tc.market); ok {
				t.Errorf("%s: %s: quote should be suppressed", b.Name(), tc.name)
			}
		}
	}
}

func TestFromConfigOrderAndUnknown(t *testing.T) {
	cfg := &config.Config{
		EnabledBrokers: []string{"Revolut", "nope", "binance"},
		BrokerSettings: map[string]map[string]float64{
			"binance": {"fee_pct": 0.002},
		},
	}

	got := brokers.FromConfig(cfg, zap.NewNop())
	if len(got) != 2 {
		t.Fatalf("broker count = %d, want 2", len(got))
	}
	if got[0].Name() != "Revolut" || got[1].Name() != "Binance" {
		t.Errorf("broker order = %s, %s", got[0].Name(), got[1].Name())
	}

	q, ok := got[1].Quote("BTC", snapshotAt(1000))
	if !ok || !closeTo(q.BuyPrice, 1002) {
		t.Errorf("custom fee not applied, buy = %f", q.BuyPrice)
	}
}
