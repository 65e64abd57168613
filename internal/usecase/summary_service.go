package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cryptofam/crypto_notify_bot/internal/config"
	"github.com/cryptofam/crypto_notify_bot/internal/domain"
)

// SummaryService builds the periodic Telegram summaries.
type SummaryService struct {
	cfg             *config.Config
	timeNow         func() time.Time // For testing
	lastSummaryHour int
}

func NewSummaryService(cfg *config.Config) *SummaryService {
	return &SummaryService{cfg: cfg, timeNow: time.Now, lastSummaryHour: -1}
}

// ShouldSendSummary reports whether a summary is due right now: the
// current hour is configured, no summary was sent this hour yet, and
// quiet hours do not apply. Marks the hour as consumed when it returns
// true.
func (s *SummaryService) ShouldSendSummary() bool {
	hour := s.timeNow().Hour()

	if s.cfg.SummaryHours.Empty() {
		return false
	}
	if !s.cfg.SummaryHours.Contains(hour) {
		return false
	}
	if s.lastSummaryHour == hour {
		return false
	}
	if s.cfg.IsQuietHour(hour) {
		return false
	}

	s.lastSummaryHour = hour
	return true
}

// GenerateSummary builds either the simple or the detailed variant.
func (s *SummaryService) GenerateSummary(
	markets map[string]*domain.MarketSnapshot,
	predictions map[string]*domain.Prediction,
	opportunities map[string]*domain.OpportunityScore,
	simple bool,
) string {
	if simple {
		return s.simpleSummary(markets, opportunities)
	}
	return s.detailedSummary(markets, predictions, opportunities)
}

func (s *SummaryService) simpleSummary(markets map[string]*domain.MarketSnapshot, opportunities map[string]*domain.OpportunityScore) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>RÉSUMÉ %s</b>\n\n", s.timeNow().Format("15:04")))

	if best, _ := bestWorst(opportunities); best != nil && best.Score >= 7 {
		b.WriteString("🎯 <b>MEILLEURE OPPORTUNITÉ</b>\n")
		b.WriteString(fmt.Sprintf("%s à %s\n", best.Symbol, marketPrice(markets[best.Symbol])))
		b.WriteString(fmt.Sprintf("Score: %d/10 ⭐\n", best.Score))
		b.WriteString(best.Recommendation + "\n\n")
	}

	b.WriteString("<b>Prix actuels:</b>\n")
	for _, symbol := range sortedSymbols(markets) {
		market := markets[symbol]
		if market == nil || market.CurrentPrice == nil {
			b.WriteString(fmt.Sprintf("⚪ %s: %s\n", symbol, priceUnavailable))
			continue
		}
		p := market.CurrentPrice
		emoji := "📉"
		change := "n/a"
		if p.Change24h != nil {
			if *p.Change24h > 0 {
				emoji = "📈"
			}
			change = fmt.Sprintf("%+.1f%%", *p.Change24h)
		}
		b.WriteString(fmt.Sprintf("%s %s: %.2f€ (%s)\n", emoji, symbol, p.PriceEUR, change))
	}

	b.WriteString("\n🕒 Prochain résumé à " + s.nextSummaryTime())
	return b.String()
}

func (s *SummaryService) detailedSummary(
	markets map[string]*domain.MarketSnapshot,
	predictions map[string]*domain.Prediction,
	opportunities map[string]*domain.OpportunityScore,
) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>RÉSUMÉ DÉTAILLÉ - %s</b>\n\n", s.timeNow().Format("02/01 15:04")))

	b.WriteString("<b>🌍 VUE D'ENSEMBLE</b>\n")
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
		b.WriteString("Tendance globale: " + unavailable + "\n\n")
	} else {
		avg := sum / float64(n)
		emoji := "📉"
		if avg > 0 {
			emoji = "📈"
		}
		b.WriteString(fmt.Sprintf("%s Tendance globale: %+.2f%%\n\n", emoji, avg))
	}

	sorted := sortedByScore(opportunities)

	b.WriteString("<b>⭐ TOP OPPORTUNITÉS</b>\n")
	for i, opp := range sorted {
		if i == 3 {
			break
		}
		b.WriteString(fmt.Sprintf("\n<b>%s</b> - Score %d/10\n", opp.Symbol, opp.Score))
		market := markets[opp.Symbol]
		b.WriteString("Prix: " + marketPrice(market))
		if market != nil && market.CurrentPrice != nil && market.CurrentPrice.Change24h != nil {
			b.WriteString(fmt.Sprintf(" (%+.1f%%)", *market.CurrentPrice.Change24h))
		}
		b.WriteString("\n")
		if pred := predictions[opp.Symbol]; pred != nil {
			b.WriteString(fmt.Sprintf("Prédiction: %s %s\n", pred.Trend.Arrow(), pred.Trend.Label()))
		}
		if market != nil && market.Indicators.RSI != nil {
			b.WriteString(fmt.Sprintf("RSI: %.0f\n", *market.Indicators.RSI))
		}
	}

	var avoided []string
	for _, opp := range sorted {
		if opp.Score < 5 {
			avoided = append(avoided, fmt.Sprintf("• %s (Score: %d/10)", opp.Symbol, opp.Score))
		}
	}
	if len(avoided) > 0 {
		b.WriteString("\n<b>⚠️ À ÉVITER</b>\n")
		b.WriteString(strings.Join(avoided, "\n") + "\n")
	}

	var fgiSum, fgiN int
	for _, m := range markets {
		if m != nil && m.FearGreedIndex != nil {
			fgiSum += *m.FearGreedIndex
			fgiN++
		}
	}
	if fgiN > 0 {
		avg := fgiSum / fgiN
		b.WriteString(fmt.Sprintf("\n<b>😱 Fear & Greed: %d/100</b>\n", avg))
		if avg < 30 {
			b.WriteString("Peur extrême - Opportunité d'achat\n")
		} else if avg > 70 {
			b.WriteString("Avidité extrême - Prudence recommandée\n")
		}
	}

	b.WriteString("\n🕒 Prochain résumé: " + s.nextSummaryTime())
	return b.String()
}

// GenerateMorningSummary is the breakfast variant.
func (s *SummaryService) GenerateMorningSummary(markets map[string]*domain.MarketSnapshot, opportunities map[string]*domain.OpportunityScore) string {
	var b strings.Builder
	b.WriteString("☀️ <b>BONJOUR - RÉSUMÉ DU MATIN</b>\n\n")

	sorted := sortedByScore(opportunities)
	b.WriteString("<b>🎯 OPPORTUNITÉS DU JOUR</b>\n")
	for i, opp := range sorted {
		if i == 2 {
			break
		}
		b.WriteString(fmt.Sprintf("\n%s: %d/10 ⭐\n", opp.Symbol, opp.Score))
		b.WriteString("Prix: " + marketPrice(markets[opp.Symbol]) + "\n")
		b.WriteString(opp.Recommendation + "\n")
	}

	b.WriteString("\n<b>📊 CHANGEMENTS 24H</b>\n")
	for _, symbol := range sortedSymbols(markets) {
		market := markets[symbol]
		if market == nil || market.CurrentPrice == nil || market.CurrentPrice.Change24h == nil {
			continue
		}
		change := *market.CurrentPrice.Change24h
		emoji := "🔴"
		if change > 0 {
			emoji = "🟢"
		}
		b.WriteString(fmt.Sprintf("%s %s: %+.1f%%\n", emoji, symbol, change))
	}

	b.WriteString("\n<i>Bonne journée de trading ! 🚀</i>")
	return b.String()
}

// GenerateEveningSummary is the end-of-day variant.
func (s *SummaryService) GenerateEveningSummary(markets map[string]*domain.MarketSnapshot, opportunities map[string]*domain.OpportunityScore) string {
	var b strings.Builder
	b.WriteString("🌙 <b>RÉSUMÉ DU SOIR</b>\n\n")
	b.WriteString("<b>📈 BILAN DE LA JOURNÉE</b>\n")

	type mover struct {
		symbol string
		change float64
	}
	var gainers, losers []mover
	for _, symbol := range sortedSymbols(markets) {
		market := markets[symbol]
		if market == nil || market.CurrentPrice == nil || market.CurrentPrice.Change24h == nil {
			continue
		}
		change := *market.CurrentPrice.Change24h
		if change > 0 {
			gainers = append(gainers, mover{symbol, change})
		} else {
			losers = append(losers, mover{symbol, change})
		}
	}
	sort.Slice(gainers, func(i, j int) bool { return gainers[i].change > gainers[j].change })
	sort.Slice(losers, func(i, j int) bool { return losers[i].change < losers[j].change })

	if len(gainers) > 0 {
		b.WriteString("\n🟢 Meilleures performances:\n")
		for i, g := range gainers {
			if i == 3 {
				break
			}
			b.WriteString(fmt.Sprintf("  • %s: +%.1f%%\n", g.symbol, g.change))
		}
	}
	if len(losers) > 0 {
		b.WriteString("\n🔴 Plus grosses baisses:\n")
		for i, l := range losers {
			if i == 3 {
				break
			}
			b.WriteString(fmt.Sprintf("  • %s: %.1f%%\n", l.symbol, l.change))
		}
	}

	if best, _ := bestWorst(opportunities); best != nil && best.Score >= 6 {
		b.WriteString("\n<b>💡 OPPORTUNITÉ POUR DEMAIN</b>\n")
		b.WriteString(fmt.Sprintf("%s - Score %d/10\n", best.Symbol, best.Score))
		b.WriteString(best.Recommendation + "\n")
	}

	b.WriteString("\n<i>Bonne soirée ! 🌟</i>")
	return b.String()
}

func (s *SummaryService) nextSummaryTime() string {
	hour := s.timeNow().Hour()
	for _, h := range s.cfg.SummaryHours {
		if h > hour {
			return fmt.Sprintf("%d:00", h)
		}
	}
	if s.cfg.SummaryHours.Empty() {
		return unavailable
	}
	return fmt.Sprintf("%d:00 (demain)", s.cfg.SummaryHours[0])
}

func marketPrice(market *domain.MarketSnapshot) string {
	if market == nil || market.CurrentPrice == nil {
		return priceUnavailable
	}
	return fmt.Sprintf("%.2f€", market.CurrentPrice.PriceEUR)
}
