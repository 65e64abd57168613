package usecase

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cryptofam/crypto_notify_bot/internal/config"
	"github.com/cryptofam/crypto_notify_bot/internal/domain"
)

func fixedClock(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 3, 14, hour, 30, 0, 0, time.UTC)
	}
}

func btcSnapshot() *domain.MarketSnapshot {
	change := 2.5
	rsi := 45.0
	return &domain.MarketSnapshot{
		Symbol: "BTC",
		CurrentPrice: &domain.CryptoPrice{
			Symbol:    "BTC",
			PriceEUR:  45000.0,
			Volume24h: 2_000_000_000,
			Change24h: &change,
			Timestamp: time.Now(),
		},
		Indicators: domain.TechnicalIndicators{RSI: &rsi, MA20: 44000, MA50: 43000},
	}
}

func btcOpportunity(score int) *domain.OpportunityScore {
	return &domain.OpportunityScore{
		Symbol:         "BTC",
		Score:          score,
		Recommendation: "Bonne opportunité",
	}
}

func newTestNotificationService(cfg *config.Config, hour int) *NotificationService {
	s := NewNotificationService(cfg, nil, zap.NewNop())
	s.timeNow = fixedClock(hour)
	return s
}

func minimalConfig() *config.Config {
	cfg := &config.Config{InvestmentAmount: 100}
	cfg.Notification.SendGlossary = false
	return cfg
}

func TestGenerateCoinNotificationNilPriceSuppressed(t *testing.T) {
	s := newTestNotificationService(minimalConfig(), 12)

	market := btcSnapshot()
	market.CurrentPrice = nil
	if _, ok := s.GenerateCoinNotification("BTC", market, nil, btcOpportunity(8)); ok {
		t.Error("notification must be suppressed without a current price")
	}
	if _, ok := s.GenerateCoinNotification("BTC", nil, nil, nil); ok {
		t.Error("notification must be suppressed without market data")
	}
}

func TestGenerateCoinNotificationHourGate(t *testing.T) {
	cfg := minimalConfig()
	hours := config.HourList{9, 18}
	cfg.CoinSettings = map[string]*config.CoinSettings{
		"BTC": {CoinOptionOverrides: config.CoinOptionOverrides{NotificationHours: &hours}},
	}

	s := newTestNotificationService(cfg, 12)
	if _, ok := s.GenerateCoinNotification("BTC", btcSnapshot(), nil, btcOpportunity(8)); ok {
		t.Error("hour 12 is outside notification_hours, expected suppression")
	}

	s = newTestNotificationService(cfg, 9)
	if _, ok := s.GenerateCoinNotification("BTC", btcSnapshot(), nil, btcOpportunity(8)); !ok {
		t.Error("hour 9 is inside notification_hours, expected a notification")
	}
}

func TestGenerateCoinNotificationExcluded(t *testing.T) {
	cfg := minimalConfig()
	off := false
	cfg.CoinSettings = map[string]*config.CoinSettings{
		"BTC": {CoinOptionOverrides: config.CoinOptionOverrides{IncludeNotification: &off}},
	}
	s := newTestNotificationService(cfg, 12)

	if _, ok := s.GenerateCoinNotification("BTC", btcSnapshot(), nil, btcOpportunity(8)); ok {
		t.Error("include_notification=false must suppress the notification")
	}
}

func TestGenerateCoinNotificationThresholdMonotonic(t *testing.T) {
	run := func(minScore int) bool {
		cfg := minimalConfig()
		cfg.Notification.Thresholds = map[string]*config.Thresholds{
			"BTC": {MinScore: &minScore},
		}
		s := newTestNotificationService(cfg, 12)
		_, ok := s.GenerateCoinNotification("BTC", btcSnapshot(), nil, btcOpportunity(8))
		return ok
	}

	if !run(6) {
		t.Error("min_score=6 with score 8 should generate")
	}
	if run(9) {
		t.Error("min_score=9 with score 8 should suppress")
	}
	// Re-lowering the bound re-enables generation.
	if !run(2) {
		t.Error("min_score=2 with score 8 should generate")
	}
}

func TestGenerateCoinNotificationContents(t *testing.T) {
	s := newTestNotificationService(minimalConfig(), 12)

	msg, ok := s.GenerateCoinNotification("BTC", btcSnapshot(), nil, btcOpportunity(8))
	if !ok {
		t.Fatal("expected a notification")
	}
	if !strings.Contains(msg, "45000.00€") {
		t.Errorf("message should contain the price line:\n%s", msg)
	}
	if !strings.Contains(msg, "Bonne opportunité") {
		t.Errorf("message should contain the opportunity line:\n%s", msg)
	}
	if !strings.Contains(msg, "BTC") {
		t.Errorf("message should name the symbol:\n%s", msg)
	}
	if strings.Contains(msg, "\n\n\n") {
		t.Errorf("blank sub-results must be omitted, not rendered:\n%s", msg)
	}
}

func TestGenerateCoinNotificationsSortedAndFiltered(t *testing.T) {
	cfg := minimalConfig()
	off := false
	cfg.CoinSettings = map[string]*config.CoinSettings{
		"ETH": {CoinOptionOverrides: config.CoinOptionOverrides{IncludeNotification: &off}},
	}
	s := newTestNotificationService(cfg, 12)

	eth := btcSnapshot()
	eth.Symbol = "ETH"
	markets := map[string]*domain.MarketSnapshot{"ETH": eth, "BTC": btcSnapshot()}
	opps := map[string]*domain.OpportunityScore{"BTC": btcOpportunity(8), "ETH": btcOpportunity(8)}

	msgs := s.GenerateCoinNotifications(markets, nil, opps)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 notification (ETH excluded), got %d", len(msgs))
	}
	if !strings.Contains(msgs[0], "BTC") {
		t.Errorf("remaining notification should be BTC's:\n%s", msgs[0])
	}
}

func TestGenerateGlossaryNotification(t *testing.T) {
	s := newTestNotificationService(minimalConfig(), 12)

	msg := s.GenerateGlossaryNotification()
	if !strings.Contains(msg, "RSI") {
		t.Errorf("glossary should contain the stock RSI entry:\n%s", msg)
	}
	if !strings.Contains(msg, "<b>") {
		t.Errorf("glossary terms use the HTML subset:\n%s", msg)
	}
}
