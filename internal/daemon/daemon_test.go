package daemon

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cryptofam/crypto_notify_bot/internal/config"
	"github.com/cryptofam/crypto_notify_bot/internal/domain"
	"github.com/cryptofam/crypto_notify_bot/internal/usecase"
)

type fakeMarket struct {
	snapshots map[string]*domain.MarketSnapshot
}

func (f *fakeMarket) GetSnapshot(ctx context.Context, symbol string) (*domain.MarketSnapshot, error) {
	snap, ok := f.snapshots[symbol]
	if !ok {
		return nil, fmt.Errorf("no data for %s", symbol)
	}
	return snap, nil
}

func (f *fakeMarket) GetPriceHistory(ctx context.Context, symbol string, hours int) ([]domain.CryptoPrice, error) {
	return nil, nil
}

type fakeRepo struct {
	savedPrices []domain.CryptoPrice
	savedStats  []domain.RunStats
	cleanups    int
}

func (f *fakeRepo) SavePrice(ctx context.Context, price domain.CryptoPrice) error {
	f.savedPrices = append(f.savedPrices, price)
	return nil
}

func (f *fakeRepo) GetPriceHistory(ctx context.Context, symbol string, since time.Time) ([]domain.CryptoPrice, error) {
	return nil, nil
}

func (f *fakeRepo) SaveStats(ctx context.Context, stats domain.RunStats) error {
	f.savedStats = append(f.savedStats, stats)
	return nil
}

func (f *fakeRepo) GetStatsSummary(ctx context.Context, days int) (*domain.StatsSummary, error) {
	return &domain.StatsSummary{TotalChecks: 10, WindowDays: days}, nil
}

func (f *fakeRepo) CleanupOldData(ctx context.Context, keepDays int) error {
	f.cleanups++
	return nil
}

type fakeSender struct {
	sent []string
}

func (f *fakeSender) SendMessage(ctx context.Context, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func allHours() config.HourList {
	hours := make(config.HourList, 0, 24)
	for h := 0; h < 24; h++ {
		hours = append(hours, h)
	}
	return hours
}

func daemonConfig() *config.Config {
	cfg := &config.Config{}
	cfg.CryptoSymbols = []string{"BTC", "ETH"}
	cfg.CheckIntervalSeconds = 300
	cfg.SummaryHours = allHours()
	cfg.Notification.SendGlossary = false
	cfg.Database.KeepHistoryDays = 30
	return cfg
}

func btcSnapshot(price float64) *domain.MarketSnapshot {
	change := 2.5
	return &domain.MarketSnapshot{
		Symbol: "BTC",
		CurrentPrice: &domain.CryptoPrice{
			Symbol:    "BTC",
			PriceEUR:  price,
			PriceUSD:  price * 1.08,
			Volume24h: 1e9,
			Change24h: &change,
			Timestamp: time.Now().UTC(),
		},
	}
}

func newTestDaemon(cfg *config.Config, market *fakeMarket, repo *fakeRepo, sender *fakeSender) *Daemon {
	logger := zap.NewNop()
	summary := usecase.NewSummaryService(cfg)
	return NewDaemon(
		cfg,
		market,
		repo,
		sender,
		usecase.NewMarketAnalyzer(),
		usecase.NewNotificationService(cfg, nil, logger),
		summary,
		usecase.NewReportService(cfg, summary, nil, logger),
		usecase.NewAlertService(cfg),
		logger,
	)
}

func fixedHour(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2024, 6, 1, hour, 30, 0, 0, time.UTC)
	}
}

func TestCheckCycleCountsAndPersists(t *testing.T) {
	cfg := daemonConfig()
	cfg.SummaryHours = nil // no summaries in this test

	market := &fakeMarket{snapshots: map[string]*domain.MarketSnapshot{
		"BTC": btcSnapshot(45000),
		// ETH missing so its fetch fails
	}}
	repo := &fakeRepo{}
	sender := &fakeSender{}
	d := newTestDaemon(cfg, market, repo, sender)
	d.mu.Lock()
	d.startedAt = time.Now()
	d.mu.Unlock()

	d.checkCycle(context.Background())

	status := d.Status()
	if status.TotalChecks != 1 {
		t.Errorf("checks = %d, want 1", status.TotalChecks)
	}
	if status.TotalErrors != 1 {
		t.Errorf("errors = %d, want 1", status.TotalErrors)
	}
	if len(repo.savedPrices) != 1 || repo.savedPrices[0].Symbol != "BTC" {
		t.Errorf("saved prices = %+v, want one BTC point", repo.savedPrices)
	}
	if len(repo.savedStats) != 1 {
		t.Fatalf("saved stats = %d, want 1", len(repo.savedStats))
	}
	if repo.savedStats[0].TotalChecks != 1 {
		t.Errorf("persisted checks = %d, want 1", repo.savedStats[0].TotalChecks)
	}
}

func TestAutoSummaryDispatch(t *testing.T) {
	cfg := daemonConfig()
	cfg.CryptoSymbols = []string{"BTC"}
	cfg.Notification.SendGlossary = true

	market := &fakeMarket{snapshots: map[string]*domain.MarketSnapshot{
		"BTC": btcSnapshot(45000),
	}}
	repo := &fakeRepo{}
	sender := &fakeSender{}
	d := newTestDaemon(cfg, market, repo, sender)
	d.mu.Lock()
	d.startedAt = time.Now()
	d.mu.Unlock()

	d.checkCycle(context.Background())

	// Summary, one coin notification, glossary.
	if len(sender.sent) != 3 {
		t.Fatalf("sent %d messages, want 3: %q", len(sender.sent), sender.sent)
	}
	if !strings.Contains(sender.sent[0], "RÉSUMÉ") {
		t.Errorf("first message should be the summary, got %q", sender.sent[0])
	}
	if !strings.Contains(sender.sent[1], "BTC") {
		t.Errorf("second message should be the BTC notification, got %q", sender.sent[1])
	}
	if !strings.Contains(sender.sent[2], "Lexique") {
		t.Errorf("third message should be the glossary, got %q", sender.sent[2])
	}

	if got := d.Status().TotalAlerts; got != 1 {
		t.Errorf("alerts = %d, want 1", got)
	}

	// Same hour again, summary already consumed.
	sender.sent = nil
	d.checkCycle(context.Background())
	if len(sender.sent) != 0 {
		t.Errorf("second cycle in the same hour sent %d messages", len(sender.sent))
	}
}

func TestQuietModeSuppressesSending(t *testing.T) {
	cfg := daemonConfig()
	cfg.QuietHours.Enabled = true
	cfg.QuietHours.StartHour = 0
	cfg.QuietHours.EndHour = 24

	market := &fakeMarket{snapshots: map[string]*domain.MarketSnapshot{
		"BTC": btcSnapshot(45000),
		"ETH": btcSnapshot(3000),
	}}
	repo := &fakeRepo{}
	sender := &fakeSender{}
	d := newTestDaemon(cfg, market, repo, sender)
	d.mu.Lock()
	d.startedAt = time.Now()
	d.mu.Unlock()

	d.checkCycle(context.Background())

	if len(sender.sent) != 0 {
		t.Errorf("quiet cycle sent %d messages", len(sender.sent))
	}
	if !d.Status().QuietMode {
		t.Error("status should report quiet mode")
	}
	// Prices still persisted during quiet hours.
	if len(repo.savedPrices) != 2 {
		t.Errorf("saved prices = %d, want 2", len(repo.savedPrices))
	}
}

func TestLastReportRefreshed(t *testing.T) {
	cfg := daemonConfig()
	cfg.SummaryHours = nil

	market := &fakeMarket{snapshots: map[string]*domain.MarketSnapshot{
		"BTC": btcSnapshot(45000),
		"ETH": btcSnapshot(3000),
	}}
	d := newTestDaemon(cfg, market, &fakeRepo{}, &fakeSender{})
	d.mu.Lock()
	d.startedAt = time.Now()
	d.mu.Unlock()

	if d.LastReport() != "" {
		t.Fatal("report should be empty before the first cycle")
	}
	d.checkCycle(context.Background())

	report := d.LastReport()
	if !strings.Contains(report, "RAPPORT COMPLET") {
		t.Errorf("report missing header: %q", report)
	}
	if !strings.Contains(report, "BTC") {
		t.Error("report missing symbol data")
	}
}

func snapshotWithDrop(symbol string, pct float64) *domain.MarketSnapshot {
	now := time.Now().UTC()
	snap := btcSnapshot(45000)
	snap.Symbol = symbol
	snap.PriceHistory = []domain.CryptoPrice{
		{Symbol: symbol, PriceEUR: 100, Timestamp: now.Add(-30 * time.Minute)},
		{Symbol: symbol, PriceEUR: 100 + pct, Timestamp: now},
	}
	return snap
}

func TestImportantAlertSentOutsideQuietHours(t *testing.T) {
	cfg := daemonConfig()
	cfg.CryptoSymbols = []string{"BTC"}
	cfg.SummaryHours = nil
	cfg.Alerts.LookbackMinutes = 120
	cfg.Alerts.PriceDropPct = 10
	cfg.Alerts.PriceSpikePct = 10

	market := &fakeMarket{snapshots: map[string]*domain.MarketSnapshot{
		"BTC": snapshotWithDrop("BTC", -12),
	}}
	sender := &fakeSender{}
	d := newTestDaemon(cfg, market, &fakeRepo{}, sender)
	d.mu.Lock()
	d.startedAt = time.Now()
	d.mu.Unlock()

	d.checkCycle(context.Background())

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want the drop alert: %q", len(sender.sent), sender.sent)
	}
	if !strings.Contains(sender.sent[0], "Chute rapide") {
		t.Errorf("alert text = %q", sender.sent[0])
	}
	if got := d.Status().TotalAlerts; got != 1 {
		t.Errorf("alerts = %d, want 1", got)
	}
}

func TestQuietHoursPassCriticalAlertsOnly(t *testing.T) {
	low := 40000.0
	cfg := daemonConfig()
	cfg.CryptoSymbols = []string{"BTC"}
	cfg.QuietHours.Enabled = true
	cfg.QuietHours.StartHour = 0
	cfg.QuietHours.EndHour = 24
	cfg.Alerts.LookbackMinutes = 120
	cfg.Alerts.PriceDropPct = 10
	cfg.Alerts.PriceSpikePct = 10
	cfg.Alerts.LevelBufferEUR = 2
	cfg.Alerts.PriceLevels = map[string]config.PriceLevelRange{
		"BTC": {Low: &low},
	}

	// Level broken and a rapid drop at once: only the critical level
	// break may cross the quiet window.
	snap := snapshotWithDrop("BTC", -12)
	snap.CurrentPrice.PriceEUR = 35000

	market := &fakeMarket{snapshots: map[string]*domain.MarketSnapshot{"BTC": snap}}
	sender := &fakeSender{}
	d := newTestDaemon(cfg, market, &fakeRepo{}, sender)
	d.mu.Lock()
	d.startedAt = time.Now()
	d.mu.Unlock()

	d.checkCycle(context.Background())

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want only the critical alert: %q", len(sender.sent), sender.sent)
	}
	if !strings.Contains(sender.sent[0], "a cassé le niveau") {
		t.Errorf("alert text = %q", sender.sent[0])
	}

	// With critical alerts disallowed at night, nothing goes out.
	allow := false
	cfg2 := *cfg
	cfg2.QuietHours.AllowCritical = &allow
	sender2 := &fakeSender{}
	d2 := newTestDaemon(&cfg2, market, &fakeRepo{}, sender2)
	d2.mu.Lock()
	d2.startedAt = time.Now()
	d2.mu.Unlock()

	d2.checkCycle(context.Background())
	if len(sender2.sent) != 0 {
		t.Errorf("quiet cycle with allow_critical=false sent %q", sender2.sent)
	}
}

func TestSummaryVariantsByHour(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{0, "RÉSUMÉ DU MATIN"},
		{12, "RÉSUMÉ DÉTAILLÉ"},
		{23, "RÉSUMÉ DU SOIR"},
	}
	for _, tc := range cases {
		cfg := daemonConfig()
		cfg.CryptoSymbols = []string{"BTC"}

		market := &fakeMarket{snapshots: map[string]*domain.MarketSnapshot{
			"BTC": btcSnapshot(45000),
		}}
		sender := &fakeSender{}
		d := newTestDaemon(cfg, market, &fakeRepo{}, sender)
		d.timeNow = fixedHour(tc.hour)
		d.mu.Lock()
		d.startedAt = time.Now()
		d.mu.Unlock()

		d.checkCycle(context.Background())

		if len(sender.sent) == 0 {
			t.Fatalf("hour %d: nothing sent", tc.hour)
		}
		if !strings.Contains(sender.sent[0], tc.want) {
			t.Errorf("hour %d: summary = %q, want it to contain %q", tc.hour, sender.sent[0], tc.want)
		}
	}
}
