package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cryptofam/crypto_notify_bot/internal/config"
	"github.com/cryptofam/crypto_notify_bot/internal/domain"
)

const (
	reportRule  = "======================================================================"
	sectionRule = "----------------------------------------------------------------------"
	cryptoRule  = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

	priceUnavailable = "données de prix indisponibles"
	unavailable      = "indisponible"
)

// ReportService builds the full multi-section text report. Every section
// degrades to fixed "indisponible" text when its data is missing; the
// report never fails to generate.
type ReportService struct {
	cfg      *config.Config
	settings *SettingsResolver
	content  *ContentResolver
	summary  *SummaryService
	brokers  []domain.Broker
	logger   *zap.Logger
	timeNow  func() time.Time // For testing
}

func NewReportService(cfg *config.Config, summary *SummaryService, brokers []domain.Broker, logger *zap.Logger) *ReportService {
	return &ReportService{
		cfg:      cfg,
		settings: NewSettingsResolver(cfg),
		content:  NewContentResolver(cfg),
		summary:  summary,
		brokers:  brokers,
		logger:   logger,
		timeNow:  time.Now,
	}
}

// GenerateCompleteReport assembles every enabled section. Absent data
// never aborts the report.
func (s *ReportService) GenerateCompleteReport(
	markets map[string]*domain.MarketSnapshot,
	predictions map[string]*domain.Prediction,
	opportunities map[string]*domain.OpportunityScore,
	stats *domain.StatsSummary,
) string {
	var b strings.Builder

	if s.cfg.SectionEnabled("header") {
		b.WriteString(reportRule + "\n")
		b.WriteString("RAPPORT COMPLET - CRYPTO BOT\n")
		b.WriteString(s.timeNow().Format("02/01/2006 15:04:05") + "\n")
		b.WriteString(reportRule + "\n\n")
	}

	if s.cfg.SectionEnabled("executive_summary") {
		b.WriteString(s.executiveSummary(markets, opportunities))
		b.WriteString("\n")
	}

	if s.cfg.SectionEnabled("telegram_summary") && s.cfg.ReportIncludeSummary() && s.summary != nil && len(markets) > 0 {
		b.WriteString(s.summary.GenerateSummary(markets, predictions, opportunities, true))
		b.WriteString("\n\n")
	}

	if s.cfg.SectionEnabled("crypto_details") {
		hour := s.timeNow().Hour()
		for _, symbol := range sortedSymbols(markets) {
			opts := s.settings.ResolveAt(symbol, hour)
			if !opts.IncludeReport || !opts.ReportHours.Contains(hour) {
				continue
			}
			b.WriteString(s.cryptoSection(symbol, markets[symbol], predictions[symbol], opportunities[symbol]))
			b.WriteString("\n")
		}
	}

	if s.cfg.SectionEnabled("comparison") {
		b.WriteString(s.comparisonSection(markets, opportunities))
		b.WriteString("\n")
	}

	if s.cfg.SectionEnabled("recommendations") {
		b.WriteString(s.recommendationsSection(markets, opportunities))
		b.WriteString("\n")
	}

	if s.cfg.SectionEnabled("advanced_analytics") {
		b.WriteString(s.analyticsSection(markets))
		b.WriteString("\n")
	}

	if s.cfg.SectionEnabled("charts") && (s.cfg.ReportIncludeChart() || s.cfg.ReportIncludeDCA()) {
		if section := s.chartsSection(markets); section != "" {
			b.WriteString(section)
			b.WriteString("\n")
		}
	}

	if s.cfg.SectionEnabled("telegram_report") && s.cfg.ReportIncludeTelegramReport() && s.summary != nil && len(markets) > 0 {
		b.WriteString("📱 RAPPORT TELEGRAM\n")
		b.WriteString(sectionRule + "\n\n")
		b.WriteString(stripHTMLBold(s.summary.GenerateSummary(markets, predictions, opportunities, false)))
		b.WriteString("\n\n")
	}

	if s.cfg.SectionEnabled("stats") && stats != nil {
		b.WriteString(s.statsSection(stats))
		b.WriteString("\n")
	}

	if s.cfg.SectionEnabled("glossary") {
		content := s.content.ResolveContent("default")
		if section := glossarySection(content.Glossary); section != "" {
			b.WriteString(stripHTMLBold(section))
			b.WriteString("\n\n")
		}
	}

	if s.cfg.SectionEnabled("footer") {
		b.WriteString(reportRule + "\n")
		b.WriteString("Fin du rapport\n")
		b.WriteString(reportRule + "\n")
	}

	return b.String()
}

func (s *ReportService) executiveSummary(markets map[string]*domain.MarketSnapshot, opportunities map[string]*domain.OpportunityScore) string {
	var b strings.Builder
	b.WriteString("📊 RÉSUMÉ EXÉCUTIF\n")
	b.WriteString(sectionRule + "\n\n")

	if best, worst := bestWorst(opportunities); best == nil {
		b.WriteString("Aucune opportunité calculée pour ce cycle.\n")
	} else {
		b.WriteString(fmt.Sprintf("🎯 Meilleure opportunité : %s (Score: %d/10, %s)\n",
			best.Symbol, best.Score, s.priceDisplay(markets[best.Symbol])))
		b.WriteString(fmt.Sprintf("⚠️ À éviter : %s (Score: %d/10)\n", worst.Symbol, worst.Score))
	}

	if len(markets) == 0 {
		b.WriteString("Aucune donnée de marché disponible.\n")
		return b.String()
	}

	// Average 24h change over symbols that have one; nil entries are
	// skipped, not counted as zero.
	var sum float64
	var n int
	for _, m := range markets {
		if m == nil || m.CurrentPrice == nil || m.CurrentPrice.Change24h == nil {
			continue
		}
		sum += *m.CurrentPrice.Change24h
		n++
	}
	if n == 0 {
		b.WriteString("Tendance générale 24h : " + unavailable + "\n")
	} else {
		avg := sum / float64(n)
		trend := "📉 Baissière"
		if avg > 0 {
			trend = "📈 Haussière"
		}
		b.WriteString(fmt.Sprintf("Tendance générale 24h : %s (%+.2f%%)\n", trend, avg))
	}

	return b.String()
}

func (s *ReportService) cryptoSection(symbol string, market *domain.MarketSnapshot, prediction *domain.Prediction, opportunity *domain.OpportunityScore) string {
	minimal := s.cfg.DetailLevel == "minimal"
	detailed := s.cfg.DetailLevel == "detailed"

	var b strings.Builder
	b.WriteString(cryptoRule + "\n")
	b.WriteString("💎 " + symbol + "\n")
	b.WriteString(cryptoRule + "\n\n")

	if market == nil || market.CurrentPrice == nil {
		b.WriteString("Prix actuel : " + unavailable + "\n\n")
	} else {
		p := market.CurrentPrice
		b.WriteString(fmt.Sprintf("Prix actuel : %.2f€\n", p.PriceEUR))
		if p.Change24h != nil {
			b.WriteString(fmt.Sprintf("Changement 24h : %+.2f%%\n", *p.Change24h))
		} else {
			b.WriteString("Changement 24h : " + unavailable + "\n")
		}
		if detailed && market.Change7d != nil {
			b.WriteString(fmt.Sprintf("Changement 7j : %+.2f%%\n", *market.Change7d))
		}
		b.WriteString(fmt.Sprintf("Volume 24h : %.0f\n\n", p.Volume24h))

		if !minimal {
			ti := market.Indicators
			b.WriteString("Indicateurs techniques :\n")
			if ti.RSI != nil {
				b.WriteString(fmt.Sprintf("  • RSI : %.0f", *ti.RSI))
				if *ti.RSI < 30 {
					b.WriteString(" (survendu 🟢)")
				} else if *ti.RSI > 70 {
					b.WriteString(" (suracheté 🔴)")
				}
				b.WriteString("\n")
			} else {
				b.WriteString("  • RSI : " + unavailable + "\n")
			}
			if ti.MA20 > 0 {
				b.WriteString(fmt.Sprintf("  • MA20 : %.2f€\n", ti.MA20))
			}
			if ti.Support != nil {
				b.WriteString(fmt.Sprintf("  • Support : %.2f€\n", *ti.Support))
			}
			if ti.Resistance != nil {
				b.WriteString(fmt.Sprintf("  • Résistance : %.2f€\n", *ti.Resistance))
			}
			b.WriteString("\n")
		}

		if !minimal && (market.FundingRate != nil || market.OpenInterest != nil) {
			b.WriteString("Dérivés :\n")
			if market.FundingRate != nil {
				b.WriteString(fmt.Sprintf("  • Taux de financement : %+.4f%%\n", *market.FundingRate))
			}
			if market.OpenInterest != nil {
				b.WriteString(fmt.Sprintf("  • Intérêt ouvert : %.0f\n", *market.OpenInterest))
			}
			b.WriteString("\n")
		}
	}

	if prediction != nil {
		b.WriteString(fmt.Sprintf("🔮 Prédiction : %s %s\n", prediction.Trend.Arrow(), prediction.Trend.Label()))
		b.WriteString(fmt.Sprintf("   Confiance : %d%%\n", prediction.Confidence))
		if prediction.TargetHigh > 0 {
			b.WriteString(fmt.Sprintf("   Cible haute : %.2f€\n", prediction.TargetHigh))
		}
		if prediction.TargetLow > 0 {
			b.WriteString(fmt.Sprintf("   Cible basse : %.2f€\n", prediction.TargetLow))
		}
		b.WriteString("\n")
	}

	if opportunity != nil {
		b.WriteString(fmt.Sprintf("⭐ Score opportunité : %d/10\n", opportunity.Score))
		b.WriteString("   " + opportunity.Recommendation + "\n")
		if !minimal && len(opportunity.Reasons) > 0 {
			b.WriteString("   Raisons :\n")
			for _, reason := range opportunity.Reasons {
				b.WriteString("   • " + reason + "\n")
			}
		}
		b.WriteString("\n")
	}

	if !minimal && market != nil && market.FearGreedIndex != nil {
		b.WriteString(fmt.Sprintf("😱 Fear & Greed Index : %d/100\n\n", *market.FearGreedIndex))
	}

	if s.cfg.ReportIncludeBrokerPrices() {
		if lines := brokerQuoteLines(s.brokers, symbol, market); len(lines) > 0 {
			b.WriteString("🏦 Prix par courtier :\n")
			b.WriteString(strings.Join(lines, "\n"))
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

// chartsSection renders the chart availability and DCA projections as
// text. Actual image rendering is a display concern left to clients.
func (s *ReportService) chartsSection(markets map[string]*domain.MarketSnapshot) string {
	hour := s.timeNow().Hour()
	amount := s.cfg.InvestmentAmount

	var b strings.Builder
	b.WriteString("📉 GRAPHIQUES & DCA\n")
	b.WriteString(sectionRule + "\n\n")

	var wrote bool
	if s.cfg.ReportIncludeChart() {
		for _, symbol := range sortedSymbols(markets) {
			opts := s.settings.ResolveAt(symbol, hour)
			if len(opts.ChartTimeframes) == 0 {
				continue
			}
			spans := make([]string, 0, len(opts.ChartTimeframes))
			for _, tf := range opts.ChartTimeframes {
				spans = append(spans, fmt.Sprintf("%dh", tf))
			}
			b.WriteString(fmt.Sprintf("  • %s : courbes disponibles sur %s\n", symbol, strings.Join(spans, ", ")))
			wrote = true
		}
		if wrote {
			b.WriteString("\n")
		}
	}

	if s.cfg.ReportIncludeDCA() && amount > 0 {
		for _, symbol := range sortedSymbols(markets) {
			market := markets[symbol]
			if market == nil || market.CurrentPrice == nil || market.CurrentPrice.PriceEUR <= 0 {
				continue
			}
			units := amount / market.CurrentPrice.PriceEUR
			b.WriteString(fmt.Sprintf("  • DCA %s : %.2f€ ≈ %.6f unités au prix actuel\n", symbol, amount, units))
			wrote = true
		}
	}

	if !wrote {
		return ""
	}
	return b.String()
}

func (s *ReportService) comparisonSection(markets map[string]*domain.MarketSnapshot, opportunities map[string]*domain.OpportunityScore) string {
	var b strings.Builder
	b.WriteString("📊 COMPARAISON\n")
	b.WriteString(sectionRule + "\n\n")

	if len(markets) == 0 {
		b.WriteString("Données " + unavailable + "s.\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%-10s %-14s %-10s %-8s %-8s\n", "Symbole", "Prix", "24h", "RSI", "Score"))
	b.WriteString(sectionRule + "\n")

	for _, symbol := range sortedSymbols(markets) {
		market := markets[symbol]

		price := unavailable
		change := unavailable
		if market != nil && market.CurrentPrice != nil {
			price = fmt.Sprintf("%.2f€", market.CurrentPrice.PriceEUR)
			if market.CurrentPrice.Change24h != nil {
				change = fmt.Sprintf("%+.2f%%", *market.CurrentPrice.Change24h)
			}
		}
		rsi := unavailable
		if market != nil && market.Indicators.RSI != nil {
			rsi = fmt.Sprintf("%.0f", *market.Indicators.RSI)
		}
		score := "-"
		if opp := opportunities[symbol]; opp != nil {
			score = fmt.Sprintf("%d/10", opp.Score)
		}

		b.WriteString(fmt.Sprintf("%-10s %-14s %-10s %-8s %-8s\n", symbol, price, change, rsi, score))
	}
	b.WriteString("\n")
	return b.String()
}

func (s *ReportService) recommendationsSection(markets map[string]*domain.MarketSnapshot, opportunities map[string]*domain.OpportunityScore) string {
	var b strings.Builder
	b.WriteString("💡 RECOMMANDATIONS\n")
	b.WriteString(sectionRule + "\n\n")

	sorted := sortedByScore(opportunities)

	b.WriteString("À acheter maintenant :\n")
	var buys int
	for _, opp := range sorted {
		if opp.Score < 7 {
			continue
		}
		b.WriteString(fmt.Sprintf("  ✅ %s à %s (Score: %d/10)\n", opp.Symbol, s.priceDisplay(markets[opp.Symbol]), opp.Score))
		buys++
	}
	if buys == 0 {
		b.WriteString("  Aucune opportunité excellente actuellement\n")
	}
	b.WriteString("\n")

	b.WriteString("À surveiller :\n")
	var watches int
	for _, opp := range sorted {
		if opp.Score < 5 || opp.Score >= 7 || watches == 3 {
			continue
		}
		b.WriteString(fmt.Sprintf("  👀 %s à %s (Score: %d/10)\n", opp.Symbol, s.priceDisplay(markets[opp.Symbol]), opp.Score))
		watches++
	}
	if watches == 0 {
		b.WriteString("  Aucune crypto à surveiller particulièrement\n")
	}
	b.WriteString("\n")

	b.WriteString("À éviter pour le moment :\n")
	var avoids int
	for _, opp := range sorted {
		if opp.Score >= 5 {
			continue
		}
		b.WriteString(fmt.Sprintf("  ❌ %s (Score: %d/10)\n", opp.Symbol, opp.Score))
		avoids++
	}
	if avoids == 0 {
		b.WriteString("  Toutes les cryptos ont un score correct\n")
	}
	b.WriteString("\n")

	return b.String()
}

func (s *ReportService) analyticsSection(markets map[string]*domain.MarketSnapshot) string {
	var b strings.Builder
	b.WriteString("🔬 ANALYSES AVANCÉES\n")
	b.WriteString(sectionRule + "\n\n")

	if len(markets) == 0 {
		b.WriteString("Données " + unavailable + "s.\n")
		return b.String()
	}

	returnsBySymbol := make(map[string][]float64)

	for _, symbol := range sortedSymbols(markets) {
		market := markets[symbol]
		b.WriteString(symbol + " :\n")
		if market == nil {
			b.WriteString("  " + priceUnavailable + "\n\n")
			continue
		}

		prices := market.PriceValues()
		returnsBySymbol[symbol] = Returns(prices)

		var vol, dd float64
		var volOK, ddOK bool
		if s.cfg.MetricEnabled("volatility") {
			vol, volOK = Volatility(prices)
			if volOK {
				b.WriteString(fmt.Sprintf("  • Volatilité : %.2f%%\n", vol))
			} else {
				b.WriteString("  • Volatilité : " + unavailable + "\n")
			}
		}
		if s.cfg.MetricEnabled("drawdown") {
			dd, ddOK = MaxDrawdown(prices)
			if ddOK {
				b.WriteString(fmt.Sprintf("  • Drawdown max : -%.2f%%\n", dd))
			} else {
				b.WriteString("  • Drawdown max : " + unavailable + "\n")
			}
		}
		if s.cfg.MetricEnabled("trend_strength") {
			var change24h *float64
			if market.CurrentPrice != nil {
				change24h = market.CurrentPrice.Change24h
			}
			strength := TrendStrength(change24h, market.Change7d, market.Indicators.MACDHistogram, market.Indicators.RSI)
			b.WriteString(fmt.Sprintf("  • Force de tendance : %.1f/10\n", strength))
		}
		if s.cfg.MetricEnabled("risk") {
			if volOK && ddOK {
				b.WriteString("  • " + RiskLabel(vol, dd) + "\n")
			} else {
				b.WriteString("  • Risque : " + unavailable + "\n")
			}
		}
		if s.cfg.MetricEnabled("dca") && market.CurrentPrice != nil {
			if avg, diff, ok := DCAProjection(prices, market.CurrentPrice.PriceEUR); ok {
				b.WriteString(fmt.Sprintf("  • DCA : prix moyen récent %.2f€, prix actuel %+.1f%% au-dessus\n", avg, diff))
			}
		}
		b.WriteString("\n")
	}

	if s.cfg.MetricEnabled("correlation") && len(returnsBySymbol) >= 2 {
		b.WriteString("Corrélations (rendements) :\n")
		symbols := make([]string, 0, len(returnsBySymbol))
		for symbol := range returnsBySymbol {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
		for i := 0; i < len(symbols); i++ {
			for j := i + 1; j < len(symbols); j++ {
				if r, ok := PearsonCorrelation(returnsBySymbol[symbols[i]], returnsBySymbol[symbols[j]]); ok {
					b.WriteString(fmt.Sprintf("  • %s / %s : %.2f\n", symbols[i], symbols[j], r))
				}
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (s *ReportService) statsSection(stats *domain.StatsSummary) string {
	var b strings.Builder
	b.WriteString("📈 STATISTIQUES\n")
	b.WriteString(sectionRule + "\n\n")
	b.WriteString(fmt.Sprintf("Vérifications totales : %d\n", stats.TotalChecks))
	b.WriteString(fmt.Sprintf("Alertes envoyées : %d\n", stats.TotalAlerts))
	b.WriteString(fmt.Sprintf("Erreurs : %d\n", stats.TotalErrors))
	b.WriteString(fmt.Sprintf("Moyenne vérifications/jour : %.1f\n", stats.AvgChecksPerDay))
	return b.String()
}

func (s *ReportService) priceDisplay(market *domain.MarketSnapshot) string {
	if market == nil || market.CurrentPrice == nil {
		return priceUnavailable
	}
	return fmt.Sprintf("%.2f€", market.CurrentPrice.PriceEUR)
}

func bestWorst(opportunities map[string]*domain.OpportunityScore) (best, worst *domain.OpportunityScore) {
	for _, symbol := range sortedSymbols(opportunities) {
		opp := opportunities[symbol]
		if opp == nil {
			continue
		}
		if best == nil || opp.Score > best.Score {
			best = opp
		}
		if worst == nil || opp.Score < worst.Score {
			worst = opp
		}
	}
	return best, worst
}

func sortedByScore(opportunities map[string]*domain.OpportunityScore) []*domain.OpportunityScore {
	out := make([]*domain.OpportunityScore, 0, len(opportunities))
	for _, opp := range opportunities {
		if opp != nil {
			out = append(out, opp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

func sortedSymbols[V any](m map[string]V) []string {
	symbols := make([]string, 0, len(m))
	for symbol := range m {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func stripHTMLBold(s string) string {
	s = strings.ReplaceAll(s, "<b>", "")
	s = strings.ReplaceAll(s, "</b>", "")
	s = strings.ReplaceAll(s, "<i>", "")
	return strings.ReplaceAll(s, "</i>", "")
}
