package usecase

import (
	"fmt"
	"math"

	"github.com/cryptofam/crypto_notify_bot/internal/domain"
)

// MarketAnalyzer derives predictions, opportunity scores and technical
// indicators from market snapshots. Pure computation, no I/O.
type MarketAnalyzer struct{}

func NewMarketAnalyzer() *MarketAnalyzer {
	return &MarketAnalyzer{}
}

// PredictMovement scores the indicator set into a 5-way trend with a
// confidence percentage and a target band.
func (a *MarketAnalyzer) PredictMovement(market *domain.MarketSnapshot) domain.Prediction {
	pred := domain.Prediction{Symbol: market.Symbol, Trend: domain.TrendNeutral, Confidence: 50}
	if market.CurrentPrice == nil {
		return pred
	}

	ti := market.Indicators
	price := market.CurrentPrice.PriceEUR
	score := 0
	var signals []string

	if ti.RSI != nil {
		switch rsi := *ti.RSI; {
		case rsi < 30:
			score += 2
			signals = append(signals, "RSI survendu (rebond probable)")
		case rsi < 40:
			score++
			signals = append(signals, "RSI bas (opportunité)")
		case rsi > 70:
			score -= 2
			signals = append(signals, "RSI suracheté (correction possible)")
		case rsi > 60:
			score--
			signals = append(signals, "RSI élevé (prudence)")
		}
	}

	if ti.MACDHistogram > 0 {
		score++
		signals = append(signals, "MACD positif")
	} else {
		score--
		signals = append(signals, "MACD négatif")
	}

	if ti.MA20 > 0 {
		if price > ti.MA20 {
			score++
			signals = append(signals, "Au-dessus MA20")
		} else {
			score--
			signals = append(signals, "En-dessous MA20")
		}
	}

	if ti.BollingerLower != nil && *ti.BollingerLower > 0 && price < *ti.BollingerLower {
		score++
		signals = append(signals, "Prix sous bande de Bollinger (survente)")
	} else if ti.BollingerUpper != nil && *ti.BollingerUpper > 0 && price > *ti.BollingerUpper {
		score--
		signals = append(signals, "Prix au-dessus bande de Bollinger (surachat)")
	}

	if ti.Support != nil && *ti.Support > 0 {
		if abs(price-*ti.Support)/price*100 < 2 {
			score++
			signals = append(signals, "Proche du support")
		}
	}
	if ti.Resistance != nil && *ti.Resistance > 0 {
		if abs(*ti.Resistance-price)/price*100 < 2 {
			score--
			signals = append(signals, "Proche résistance")
		}
	}

	pred.TrendScore = score
	pred.Signals = signals

	resistance := price * 1.05
	if ti.Resistance != nil && *ti.Resistance > 0 {
		resistance = *ti.Resistance
	}
	support := price * 0.95
	if ti.Support != nil && *ti.Support > 0 {
		support = *ti.Support
	}

	switch {
	case score >= 3:
		pred.Trend = domain.TrendBullish
		pred.Confidence = minInt(85, 60+score*5)
		pred.TargetHigh = resistance
		pred.TargetLow = price * 0.97
	case score >= 1:
		pred.Trend = domain.TrendSlightlyBullish
		pred.Confidence = 55 + score*5
		pred.TargetHigh = price * 1.03
		pred.TargetLow = price * 0.98
	case score <= -3:
		pred.Trend = domain.TrendBearish
		pred.Confidence = minInt(85, 60-score*5)
		pred.TargetHigh = price * 1.03
		pred.TargetLow = support
	case score <= -1:
		pred.Trend = domain.TrendSlightlyBearish
		pred.Confidence = 55 - score*5
		pred.TargetHigh = price * 1.02
		pred.TargetLow = price * 0.97
	default:
		pred.Trend = domain.TrendNeutral
		pred.Confidence = 50
		pred.TargetHigh = resistance
		pred.TargetLow = support
	}

	return pred
}

// ScoreOpportunity rates buying conditions on a 0-10 scale starting from
// a neutral 5 and keeping at most five reasons.
func (a *MarketAnalyzer) ScoreOpportunity(market *domain.MarketSnapshot, pred domain.Prediction) domain.OpportunityScore {
	score := 5.0
	var reasons []string

	switch pred.Trend {
	case domain.TrendBullish:
		if pred.Confidence >= 75 {
			score += 2
			reasons = append(reasons, "✅ Signal très haussier")
		} else {
			score++
			reasons = append(reasons, "✅ Signal haussier")
		}
	case domain.TrendSlightlyBullish:
		score += 0.5
		reasons = append(reasons, "✅ Tendance légèrement positive")
	case domain.TrendBearish:
		score -= 2
		reasons = append(reasons, "⚠️ Signal baissier")
	case domain.TrendSlightlyBearish:
		score--
		reasons = append(reasons, "⚠️ Tendance légèrement négative")
	}

	if rsi := market.Indicators.RSI; rsi != nil {
		switch {
		case *rsi < 30:
			score += 2
			reasons = append(reasons, "✅ Prix très bas (survendu)")
		case *rsi < 40:
			score++
			reasons = append(reasons, "✅ Prix assez bas")
		case *rsi > 70:
			score -= 1.5
			reasons = append(reasons, "⚠️ Prix très haut (suracheté)")
		}
	}

	if fgi := market.FearGreedIndex; fgi != nil {
		switch {
		case *fgi <= 25:
			score += 2
			reasons = append(reasons, "✅ Marché en peur extrême")
		case *fgi <= 40:
			score++
			reasons = append(reasons, "✅ Marché craintif")
		case *fgi >= 75:
			score -= 1.5
			reasons = append(reasons, "⚠️ Marché très euphorique")
		}
	}

	if market.CurrentPrice != nil && market.CurrentPrice.Change24h != nil {
		switch change := *market.CurrentPrice.Change24h; {
		case change < -10:
			score += 1.5
			reasons = append(reasons, fmt.Sprintf("✅ Forte baisse récente (%.1f%%)", change))
		case change < -5:
			score += 0.5
			reasons = append(reasons, "✅ Baisse récente")
		case change > 15:
			score--
			reasons = append(reasons, "⚠️ Forte hausse récente")
		}
	}

	// Position vs the 7-day extremes from the on-hand history.
	if market.CurrentPrice != nil {
		if low, high, ok := extremes(market.PriceHistory); ok && low > 0 {
			current := market.CurrentPrice.PriceEUR
			if (current-low)/low*100 < 10 {
				score += 1.5
				reasons = append(reasons, "✅ Proche du plus bas récent")
			} else if high > 0 && (high-current)/high*100 < 10 {
				score--
				reasons = append(reasons, "⚠️ Proche du plus haut récent")
			}
		}
	}

	final := int(score)
	if final < 0 {
		final = 0
	} else if final > 10 {
		final = 10
	}

	var recommendation string
	switch {
	case final >= 8:
		recommendation = "EXCELLENTE opportunité d'achat ! 🎯"
	case final >= 7:
		recommendation = "Très bonne opportunité 💎"
	case final >= 6:
		recommendation = "Opportunité correcte"
	case final >= 4:
		recommendation = "Moment neutre ⚖️"
	default:
		recommendation = "Pas un bon moment ❌"
	}

	if len(reasons) > 5 {
		reasons = reasons[:5]
	}
	return domain.OpportunityScore{
		Symbol:         market.Symbol,
		Score:          final,
		Recommendation: recommendation,
		Reasons:        reasons,
	}
}

// ComputeIndicators builds the indicator set from a price series, oldest
// first. Indicators requiring more history than available stay nil/zero.
func (a *MarketAnalyzer) ComputeIndicators(prices []float64) domain.TechnicalIndicators {
	var ti domain.TechnicalIndicators

	if rsi, ok := computeRSI(prices, 14); ok {
		ti.RSI = &rsi
	}
	ti.MA20 = movingAverage(prices, 20)
	ti.MA50 = movingAverage(prices, 50)
	ti.MA200 = movingAverage(prices, 200)

	if macd, signal, ok := computeMACD(prices); ok {
		ti.MACD = macd
		ti.MACDSignal = signal
		ti.MACDHistogram = macd - signal
	}

	if upper, lower, ok := computeBollinger(prices, 20, 2); ok {
		ti.BollingerUpper = &upper
		ti.BollingerLower = &lower
	}

	if low, high, ok := extremesFloat(prices, 50); ok {
		ti.Support = &low
		ti.Resistance = &high
	}

	return ti
}

func computeRSI(prices []float64, period int) (float64, bool) {
	if len(prices) < period+1 {
		return 0, false
	}
	var gains, losses float64
	recent := prices[len(prices)-period-1:]
	for i := 1; i < len(recent); i++ {
		delta := recent[i] - recent[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	if losses == 0 {
		return 100, true
	}
	rs := (gains / float64(period)) / (losses / float64(period))
	return 100 - 100/(1+rs), true
}

func movingAverage(prices []float64, period int) float64 {
	if len(prices) < period {
		return 0
	}
	var sum float64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

func ema(prices []float64, period int) (float64, bool) {
	if len(prices) < period {
		return 0, false
	}
	k := 2.0 / (float64(period) + 1)
	e := movingAverage(prices[:period], period)
	for _, p := range prices[period:] {
		e = p*k + e*(1-k)
	}
	return e, true
}

func computeMACD(prices []float64) (macd, signal float64, ok bool) {
	ema12, ok12 := ema(prices, 12)
	ema26, ok26 := ema(prices, 26)
	if !ok12 || !ok26 {
		return 0, 0, false
	}
	macd = ema12 - ema26
	// Signal line approximated from the MACD series over the last 9 steps.
	if len(prices) < 26+9 {
		return macd, macd, true
	}
	var series []float64
	for i := len(prices) - 9; i <= len(prices); i++ {
		e12, _ := ema(prices[:i], 12)
		e26, _ := ema(prices[:i], 26)
		series = append(series, e12-e26)
	}
	sig, _ := ema(series, 9)
	return macd, sig, true
}

func computeBollinger(prices []float64, period int, width float64) (upper, lower float64, ok bool) {
	if len(prices) < period {
		return 0, 0, false
	}
	window := prices[len(prices)-period:]
	mean := movingAverage(prices, period)
	var variance float64
	for _, p := range window {
		variance += (p - mean) * (p - mean)
	}
	stdev := math.Sqrt(variance / float64(period))
	return mean + width*stdev, mean - width*stdev, true
}

func extremes(history []domain.CryptoPrice) (low, high float64, ok bool) {
	if len(history) == 0 {
		return 0, 0, false
	}
	low, high = history[0].PriceEUR, history[0].PriceEUR
	for _, p := range history[1:] {
		if p.PriceEUR < low {
			low = p.PriceEUR
		}
		if p.PriceEUR > high {
			high = p.PriceEUR
		}
	}
	return low, high, true
}

func extremesFloat(prices []float64, window int) (low, high float64, ok bool) {
	if len(prices) == 0 {
		return 0, 0, false
	}
	if len(prices) > window {
		prices = prices[len(prices)-window:]
	}
	low, high = prices[0], prices[0]
	for _, p := range prices[1:] {
		if p < low {
			low = p
		}
		if p > high {
			high = p
		}
	}
	return low, high, true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
