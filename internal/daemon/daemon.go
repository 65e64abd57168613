package daemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cryptofam/crypto_notify_bot/internal/config"
	"github.com/cryptofam/crypto_notify_bot/internal/domain"
	"github.com/cryptofam/crypto_notify_bot/internal/usecase"
)

// cleanupEvery is the cycle count between old-data purges.
const cleanupEvery = 100

// Status is the daemon's counter snapshot served by the web layer.
type Status struct {
	Running       bool      `json:"running"`
	StartedAt     time.Time `json:"started_at"`
	UptimeSeconds int       `json:"uptime_seconds"`
	TotalChecks   int       `json:"total_checks"`
	TotalAlerts   int       `json:"total_alerts"`
	TotalErrors   int       `json:"total_errors"`
	QuietMode     bool      `json:"quiet_mode"`
}

// Daemon drives the check cycle: fetch market data per symbol, analyze,
// persist, and dispatch notifications and summaries on schedule.
type Daemon struct {
	cfg      *config.Config
	market   domain.MarketSource
	repo     domain.HistoryRepository
	sender   domain.MessageSender
	analyzer *usecase.MarketAnalyzer
	notifier *usecase.NotificationService
	summary  *usecase.SummaryService
	report   *usecase.ReportService
	alerter  *usecase.AlertService
	logger   *zap.Logger

	timeNow func() time.Time

	mu         sync.RWMutex
	startedAt  time.Time
	checks     int
	alerts     int
	errors     int
	quietMode  bool
	lastReport string
}

func NewDaemon(
	cfg *config.Config,
	market domain.MarketSource,
	repo domain.HistoryRepository,
	sender domain.MessageSender,
	analyzer *usecase.MarketAnalyzer,
	notifier *usecase.NotificationService,
	summary *usecase.SummaryService,
	report *usecase.ReportService,
	alerter *usecase.AlertService,
	logger *zap.Logger,
) *Daemon {
	return &Daemon{
		cfg:      cfg,
		market:   market,
		repo:     repo,
		sender:   sender,
		analyzer: analyzer,
		notifier: notifier,
		summary:  summary,
		report:   report,
		alerter:  alerter,
		logger:   logger,
		timeNow:  time.Now,
	}
}

// Run blocks until ctx is cancelled. The first cycle runs immediately,
// then cycles repeat on the configured interval.
func (d *Daemon) Run(ctx context.Context) {
	interval := time.Duration(d.cfg.CheckIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	d.mu.Lock()
	d.startedAt = d.timeNow()
	d.mu.Unlock()

	d.logger.Info("daemon started",
		zap.Strings("symbols", d.cfg.CryptoSymbols),
		zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.checkCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("daemon stopping")
			return
		case <-ticker.C:
			d.checkCycle(ctx)
		}
	}
}

// Status returns a snapshot of the daemon counters.
func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	uptime := 0
	if !d.startedAt.IsZero() {
		uptime = int(d.timeNow().Sub(d.startedAt).Seconds())
	}
	return Status{
		Running:       !d.startedAt.IsZero(),
		StartedAt:     d.startedAt,
		UptimeSeconds: uptime,
		TotalChecks:   d.checks,
		TotalAlerts:   d.alerts,
		TotalErrors:   d.errors,
		QuietMode:     d.quietMode,
	}
}

// LastReport returns the most recent full report, or "" before the
// first completed cycle.
func (d *Daemon) LastReport() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastReport
}

func (d *Daemon) checkCycle(ctx context.Context) {
	hour := d.timeNow().Hour()
	quiet := d.cfg.QuietHours.Enabled && d.cfg.IsQuietHour(hour)

	d.mu.Lock()
	d.checks++
	checks := d.checks
	d.quietMode = quiet
	d.mu.Unlock()

	d.logger.Info("check cycle", zap.Int("check", checks), zap.Bool("quiet", quiet))

	markets := make(map[string]*domain.MarketSnapshot)
	predictions := make(map[string]*domain.Prediction)
	opportunities := make(map[string]*domain.OpportunityScore)

	for _, symbol := range d.cfg.CryptoSymbols {
		snapshot := d.processSymbol(ctx, symbol)
		if snapshot == nil {
			continue
		}
		markets[symbol] = snapshot

		pred := d.analyzer.PredictMovement(snapshot)
		predictions[symbol] = &pred
		opp := d.analyzer.ScoreOpportunity(snapshot, pred)
		opportunities[symbol] = &opp

		d.dispatchAlerts(ctx, snapshot, &pred, quiet)

		if snapshot.CurrentPrice != nil {
			d.logger.Info("symbol checked",
				zap.String("symbol", symbol),
				zap.Float64("price_eur", snapshot.CurrentPrice.PriceEUR),
				zap.String("trend", pred.Trend.Label()),
				zap.Int("opportunity", opp.Score))
		}
	}

	if !quiet && d.summary.ShouldSendSummary() {
		d.sendAutoSummary(ctx, hour, markets, predictions, opportunities)
	}

	d.refreshReport(ctx, markets, predictions, opportunities)
	d.saveStats(ctx)

	if checks%cleanupEvery == 0 {
		if err := d.repo.CleanupOldData(ctx, d.cfg.Database.KeepHistoryDays); err != nil {
			d.logger.Error("cleanup failed", zap.Error(err))
		}
	}
}

// processSymbol fetches and persists one symbol. A failed fetch counts
// as an error and yields nil.
func (d *Daemon) processSymbol(ctx context.Context, symbol string) *domain.MarketSnapshot {
	snapshot, err := d.market.GetSnapshot(ctx, symbol)
	if err != nil {
		d.logger.Error("snapshot fetch failed", zap.String("symbol", symbol), zap.Error(err))
		d.countError()
		return nil
	}
	if snapshot == nil {
		snapshot = &domain.MarketSnapshot{Symbol: symbol}
	}

	if prices := snapshot.PriceValues(); len(prices) > 0 {
		snapshot.Indicators = d.analyzer.ComputeIndicators(prices)
	}

	if snapshot.CurrentPrice != nil {
		if err := d.repo.SavePrice(ctx, *snapshot.CurrentPrice); err != nil {
			d.logger.Error("price save failed", zap.String("symbol", symbol), zap.Error(err))
			d.countError()
		}
	} else {
		d.logger.Warn("no current price", zap.String("symbol", symbol))
	}
	return snapshot
}

// dispatchAlerts delivers the triggered alert conditions for one symbol.
// Important and critical alerts go to Telegram; during quiet hours only
// critical ones pass, and only when the config allows them.
func (d *Daemon) dispatchAlerts(ctx context.Context, market *domain.MarketSnapshot, pred *domain.Prediction, quiet bool) {
	if d.alerter == nil {
		return
	}
	for _, a := range d.alerter.CheckAlerts(market, pred) {
		d.logger.Info("alert",
			zap.String("symbol", a.Symbol),
			zap.String("level", a.Level.Label()),
			zap.String("message", a.Message))

		send := a.Level >= domain.AlertImportant
		if quiet {
			send = d.cfg.QuietAllowCritical() && a.Level == domain.AlertCritical
		}
		if !send {
			continue
		}
		text := fmt.Sprintf("%s <b>%s</b>\n%s", a.Level.Emoji(), a.Symbol, a.Message)
		if d.send(ctx, text) {
			d.countAlert()
		}
	}
}

// sendAutoSummary delivers the scheduled summary plus the per-coin
// notifications and the optional glossary. With several summary hours
// configured, the first gets the morning variant and the last the
// evening one.
func (d *Daemon) sendAutoSummary(
	ctx context.Context,
	hour int,
	markets map[string]*domain.MarketSnapshot,
	predictions map[string]*domain.Prediction,
	opportunities map[string]*domain.OpportunityScore,
) {
	if len(markets) == 0 {
		return
	}

	if !d.cfg.Notification.PerCoin {
		hours := d.cfg.SummaryHours
		var text string
		switch {
		case len(hours) >= 2 && hour == hours[0]:
			text = d.summary.GenerateMorningSummary(markets, opportunities)
		case len(hours) >= 2 && hour == hours[len(hours)-1]:
			text = d.summary.GenerateEveningSummary(markets, opportunities)
		default:
			text = d.summary.GenerateSummary(markets, predictions, opportunities, d.cfg.UseSimpleLanguage)
		}
		d.send(ctx, text)
	}

	for _, msg := range d.notifier.GenerateCoinNotifications(markets, predictions, opportunities) {
		if d.send(ctx, msg) {
			d.countAlert()
		}
	}

	if d.cfg.Notification.SendGlossary {
		if text := d.notifier.GenerateGlossaryNotification(); text != "" {
			d.send(ctx, text)
		}
	}
}

// refreshReport rebuilds the full report served by the web layer.
func (d *Daemon) refreshReport(
	ctx context.Context,
	markets map[string]*domain.MarketSnapshot,
	predictions map[string]*domain.Prediction,
	opportunities map[string]*domain.OpportunityScore,
) {
	stats, err := d.repo.GetStatsSummary(ctx, 7)
	if err != nil {
		d.logger.Warn("stats summary unavailable", zap.Error(err))
		stats = nil
	}

	text := d.report.GenerateCompleteReport(markets, predictions, opportunities, stats)
	d.mu.Lock()
	d.lastReport = text
	d.mu.Unlock()
}

func (d *Daemon) saveStats(ctx context.Context) {
	d.mu.RLock()
	stats := domain.RunStats{
		TotalChecks:   d.checks,
		TotalAlerts:   d.alerts,
		TotalErrors:   d.errors,
		RecordedAt:    d.timeNow(),
		UptimeSeconds: int(d.timeNow().Sub(d.startedAt).Seconds()),
	}
	d.mu.RUnlock()

	if err := d.repo.SaveStats(ctx, stats); err != nil {
		d.logger.Error("stats save failed", zap.Error(err))
	}
}

func (d *Daemon) send(ctx context.Context, text string) bool {
	if text == "" {
		return false
	}
	if err := d.sender.SendMessage(ctx, text); err != nil {
		d.logger.Error("send failed", zap.Error(err))
		d.countError()
		return false
	}
	return true
}

func (d *Daemon) countError() {
	d.mu.Lock()
	d.errors++
	d.mu.Unlock()
}

func (d *Daemon) countAlert() {
	d.mu.Lock()
	d.alerts++
	d.mu.Unlock()
}
