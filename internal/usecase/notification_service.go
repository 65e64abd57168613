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

// NotificationService assembles per-coin Telegram notifications from
// pre-fetched market, prediction and opportunity data.
type NotificationService struct {
	cfg      *config.Config
	settings *SettingsResolver
	content  *ContentResolver
	brokers  []domain.Broker
	logger   *zap.Logger
	timeNow  func() time.Time // For testing
}

func NewNotificationService(cfg *config.Config, brokers []domain.Broker, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		cfg:      cfg,
		settings: NewSettingsResolver(cfg),
		content:  NewContentResolver(cfg),
		brokers:  brokers,
		logger:   logger,
		timeNow:  time.Now,
	}
}

// GenerateCoinNotification builds the notification for one symbol.
// Returns false when any gate suppresses it: the coin is excluded, the
// current hour is outside its notification hours, a threshold bound is
// not met, or there is no current price.
func (s *NotificationService) GenerateCoinNotification(
	symbol string,
	market *domain.MarketSnapshot,
	prediction *domain.Prediction,
	opportunity *domain.OpportunityScore,
) (string, bool) {
	hour := s.timeNow().Hour()
	opts := s.settings.ResolveAt(symbol, hour)

	if !opts.IncludeNotification {
		return "", false
	}
	if !opts.NotificationHours.Contains(hour) {
		return "", false
	}
	if !s.passesThresholds(symbol, market, opportunity) {
		return "", false
	}
	if market == nil || market.CurrentPrice == nil {
		return "", false
	}

	content := s.content.ResolveContent(symbol)
	ctx := s.renderContext(symbol, market, prediction, opportunity, opts)

	var blocks []string
	add := func(block string) {
		block = strings.TrimSpace(block)
		if block != "" {
			blocks = append(blocks, block)
		}
	}

	add(RenderTemplate(content.Title, ctx))
	add(RenderTemplate(content.Intro, ctx))

	if opts.ShowPrice {
		add(s.priceBlock(market))
	}
	if opts.ShowCurves {
		add(s.curvesBlock(symbol, opts))
	}
	if opts.ShowPrediction && prediction != nil {
		add(s.predictionBlock(*prediction))
	}
	if opts.ShowOpportunity && opportunity != nil {
		add(s.opportunityBlock(*opportunity))
	}
	if opts.ShowFearGreed && market.FearGreedIndex != nil {
		add(s.fearGreedBlock(*market.FearGreedIndex))
	}
	if opts.ShowGainLoss {
		add(s.gainLossBlock(market, opts.InvestmentAmount))
	}
	for _, line := range content.CustomLines {
		add(RenderTemplate(line, ctx))
	}
	add(s.hintLine(market, opportunity))
	add(s.outlookLine(prediction, market))
	add(RenderTemplate(content.Outro, ctx))
	if content.Glossary.Enabled {
		add(glossarySection(content.Glossary))
	}
	if opts.ShowBrokers {
		add(s.brokersBlock(symbol, market))
	}

	msg := strings.TrimSpace(strings.Join(blocks, "\n\n"))
	if msg == "" {
		return "", false
	}
	return msg, true
}

// GenerateCoinNotifications builds notifications for every symbol in
// markets, in sorted symbol order, skipping suppressed coins.
func (s *NotificationService) GenerateCoinNotifications(
	markets map[string]*domain.MarketSnapshot,
	predictions map[string]*domain.Prediction,
	opportunities map[string]*domain.OpportunityScore,
) []string {
	symbols := make([]string, 0, len(markets))
	for symbol := range markets {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var out []string
	for _, symbol := range symbols {
		msg, ok := s.GenerateCoinNotification(symbol, markets[symbol], predictions[symbol], opportunities[symbol])
		if !ok {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// GenerateGlossaryNotification builds the standalone glossary message.
func (s *NotificationService) GenerateGlossaryNotification() string {
	content := s.content.ResolveContent("default")
	g := content.Glossary
	g.Enabled = true
	return glossarySection(g)
}

func (s *NotificationService) passesThresholds(symbol string, market *domain.MarketSnapshot, opportunity *domain.OpportunityScore) bool {
	th := s.settings.ResolveThresholds(symbol)

	if th.MinScore != nil || th.MaxScore != nil {
		if opportunity == nil {
			return false
		}
		if th.MinScore != nil && opportunity.Score < *th.MinScore {
			return false
		}
		if th.MaxScore != nil && opportunity.Score > *th.MaxScore {
			return false
		}
	}

	if th.MinChangePct != nil || th.MaxChangePct != nil {
		if market == nil || market.CurrentPrice == nil || market.CurrentPrice.Change24h == nil {
			return false
		}
		change := *market.CurrentPrice.Change24h
		if th.MinChangePct != nil && change < *th.MinChangePct {
			return false
		}
		if th.MaxChangePct != nil && change > *th.MaxChangePct {
			return false
		}
	}

	return true
}

func (s *NotificationService) renderContext(
	symbol string,
	market *domain.MarketSnapshot,
	prediction *domain.Prediction,
	opportunity *domain.OpportunityScore,
	opts CoinOptions,
) map[string]string {
	ctx := map[string]string{"symbol": upperSymbol(symbol)}
	if market != nil && market.CurrentPrice != nil {
		p := market.CurrentPrice
		ctx["price"] = fmt.Sprintf("%.2f€", p.PriceEUR)
		ctx["volume_24h"] = fmt.Sprintf("%.0f€", p.Volume24h)
		if p.Change24h != nil {
			ctx["change_24h"] = fmt.Sprintf("%+.1f%%", *p.Change24h)
			gain := opts.InvestmentAmount * *p.Change24h / 100
			ctx["gain"] = fmt.Sprintf("%+.2f€", gain)
		}
	}
	if market != nil && market.FearGreedIndex != nil {
		ctx["fear_greed"] = fmt.Sprintf("%d/100", *market.FearGreedIndex)
	}
	if prediction != nil {
		ctx["prediction"] = prediction.Trend.Label()
	}
	if opportunity != nil {
		ctx["opportunity"] = opportunity.Recommendation
		ctx["opportunity_score"] = fmt.Sprintf("%d/10", opportunity.Score)
	}
	return ctx
}

func (s *NotificationService) priceBlock(market *domain.MarketSnapshot) string {
	p := market.CurrentPrice
	lines := []string{fmt.Sprintf("💰 Prix actuel : %.2f€", p.PriceEUR)}

	if p.Change24h != nil {
		change := *p.Change24h
		emoji := "➡️"
		if change > 0 {
			emoji = "📈"
		} else if change < 0 {
			emoji = "📉"
		}
		lines = append(lines, fmt.Sprintf("%s Variation 24h : %+.1f%%", emoji, change))
	}
	if p.Volume24h > 0 {
		lines = append(lines, fmt.Sprintf("🔊 Volume 24h : %.0f€", p.Volume24h))
	}

	var comments []string
	if c, ok := ChangeComment(p.Change24h); ok {
		comments = append(comments, c)
	}
	if c, ok := RSIComment(market.Indicators.RSI); ok {
		comments = append(comments, c)
	}
	if c, ok := PriceLevelComment(p.PriceEUR, market.Indicators.Support, market.Indicators.Resistance); ok {
		comments = append(comments, c)
	}
	if c, ok := MAComment(p.PriceEUR, market.Indicators.MA20, market.Indicators.MA50); ok {
		comments = append(comments, c)
	}
	if c, ok := VolumeComment(p.Volume24h); ok {
		comments = append(comments, c)
	}
	for _, c := range comments {
		lines = append(lines, "💬 "+c)
	}
	return strings.Join(lines, "\n")
}

func (s *NotificationService) curvesBlock(symbol string, opts CoinOptions) string {
	if len(opts.ChartTimeframes) == 0 {
		return ""
	}
	lines := make([]string, 0, len(opts.ChartTimeframes))
	for _, tf := range opts.ChartTimeframes {
		lines = append(lines, fmt.Sprintf("📊 Graphique %dh : envoyé séparément", tf))
	}
	return strings.Join(lines, "\n")
}

func (s *NotificationService) predictionBlock(pred domain.Prediction) string {
	lines := []string{
		fmt.Sprintf("🔮 Tendance : %s %s", pred.Trend.Arrow(), pred.Trend.Label()),
		fmt.Sprintf("Confiance : %d%%", pred.Confidence),
	}
	if c, ok := ConfidenceComment(pred.Confidence); ok {
		lines = append(lines, "💬 "+c)
	}
	if pred.TargetHigh > 0 && pred.TargetLow > 0 {
		lines = append(lines, fmt.Sprintf("Cibles : %.2f€ / %.2f€", pred.TargetLow, pred.TargetHigh))
	}
	return strings.Join(lines, "\n")
}

func (s *NotificationService) opportunityBlock(opp domain.OpportunityScore) string {
	lines := []string{
		fmt.Sprintf("⭐ Opportunité : %d/10 %s", opp.Score, scoreStars(opp.Score)),
	}
	if opp.Recommendation != "" {
		lines = append(lines, "💡 "+opp.Recommendation)
	}
	for i, reason := range opp.Reasons {
		if i == 3 {
			break
		}
		lines = append(lines, "  • "+reason)
	}
	return strings.Join(lines, "\n")
}

func (s *NotificationService) fearGreedBlock(index int) string {
	lines := []string{fmt.Sprintf("😱 Fear & Greed : %d/100", index)}
	if c, ok := FearGreedComment(&index); ok {
		lines = append(lines, c)
	}
	return strings.Join(lines, "\n")
}

func (s *NotificationService) gainLossBlock(market *domain.MarketSnapshot, amount float64) string {
	p := market.CurrentPrice
	if p == nil || p.Change24h == nil || amount <= 0 {
		return ""
	}
	change := *p.Change24h
	gain := amount * change / 100
	emoji := "✅"
	if gain < 0 {
		emoji = "❌"
	}
	return fmt.Sprintf("%s Investissement de %.0f€ il y a 24h\nGain/Perte : %+.2f€ (%+.1f%%)", emoji, amount, gain, change)
}

func (s *NotificationService) hintLine(market *domain.MarketSnapshot, opportunity *domain.OpportunityScore) string {
	if opportunity != nil {
		if c, ok := OpportunityComment(opportunity.Score); ok {
			return "💡 " + c
		}
	}
	if market != nil && market.CurrentPrice != nil {
		if c, ok := ChangeComment(market.CurrentPrice.Change24h); ok {
			return "💡 " + c
		}
	}
	return ""
}

func (s *NotificationService) outlookLine(pred *domain.Prediction, market *domain.MarketSnapshot) string {
	if pred == nil {
		return ""
	}
	direction := "stable"
	if market != nil && market.CurrentPrice != nil && market.CurrentPrice.Change24h != nil {
		if *market.CurrentPrice.Change24h > 0 {
			direction = "en hausse"
		} else if *market.CurrentPrice.Change24h < 0 {
			direction = "en baisse"
		}
	}
	return fmt.Sprintf("%s Perspective : tendance %s, prix %s sur 24h (confiance %d%%)",
		pred.Trend.Arrow(), strings.ToLower(pred.Trend.Label()), direction, pred.Confidence)
}

func (s *NotificationService) brokersBlock(symbol string, market *domain.MarketSnapshot) string {
	lines := brokerQuoteLines(s.brokers, symbol, market)
	if len(lines) == 0 {
		return ""
	}
	return "🏦 Prix par courtier :\n" + strings.Join(lines, "\n")
}

func brokerQuoteLines(brokers []domain.Broker, symbol string, market *domain.MarketSnapshot) []string {
	var lines []string
	for _, b := range brokers {
		if !b.Supports(symbol) {
			continue
		}
		q, ok := b.Quote(symbol, market)
		if !ok {
			continue
		}
		line := fmt.Sprintf("  • %s : achat %.2f%s | vente %.2f%s", q.Broker, q.BuyPrice, q.Currency, q.SellPrice, q.Currency)
		if q.Notes != "" {
			line += " (" + q.Notes + ")"
		}
		lines = append(lines, line)
	}
	return lines
}

func glossarySection(g Glossary) string {
	if len(g.Entries) == 0 {
		return ""
	}
	var lines []string
	if g.Title != "" {
		lines = append(lines, g.Title)
	}
	if g.Intro != "" {
		lines = append(lines, g.Intro)
	}
	terms := make([]string, 0, len(g.Entries))
	for term := range g.Entries {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	entryCount := 0
	for _, term := range terms {
		def := strings.TrimSpace(g.Entries[term])
		if strings.TrimSpace(term) == "" || def == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("• <b>%s</b> : %s", term, def))
		entryCount++
	}
	if entryCount == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func scoreStars(score int) string {
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return strings.Repeat("⭐", score) + strings.Repeat("☆", 10-score)
}
