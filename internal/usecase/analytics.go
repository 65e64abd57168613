package usecase

import (
	"math"
)

// Advanced analytics for the full report. All functions take a price
// series oldest first and report false when the series is too short.

// Returns computes the period-over-period return series.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		out = append(out, (prices[i]-prices[i-1])/prices[i-1])
	}
	return out
}

// Volatility is the sample standard deviation of returns, in percent.
func Volatility(prices []float64) (float64, bool) {
	returns := Returns(prices)
	if len(returns) < 2 {
		return 0, false
	}
	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance) * 100, true
}

// MaxDrawdown is the largest peak-to-trough decline in percent, as a
// positive number.
func MaxDrawdown(prices []float64) (float64, bool) {
	if len(prices) < 2 {
		return 0, false
	}
	peak := prices[0]
	var worst float64
	for _, p := range prices[1:] {
		if p > peak {
			peak = p
			continue
		}
		if peak > 0 {
			dd := (peak - p) / peak * 100
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst, true
}

// TrendStrength blends the 24h and 7d change, the MACD histogram sign
// and the RSI distance from 50 into a [0,10] score. Missing components
// contribute their neutral value.
func TrendStrength(change24h, change7d *float64, macdHistogram float64, rsi *float64) float64 {
	score := 5.0

	if change24h != nil {
		score += clamp(*change24h/5, -2, 2)
	}
	if change7d != nil {
		score += clamp(*change7d/10, -1.5, 1.5)
	}
	if macdHistogram > 0 {
		score += 0.75
	} else if macdHistogram < 0 {
		score -= 0.75
	}
	if rsi != nil {
		score += clamp((*rsi-50)/25, -0.75, 0.75)
	}

	return clamp(score, 0, 10)
}

// RiskLabel buckets a composite of volatility and drawdown into three
// tiers.
func RiskLabel(volatility, drawdown float64) string {
	composite := volatility + drawdown/2
	switch {
	case composite < 5:
		return "Risque faible 🟢"
	case composite < 15:
		return "Risque modéré 🟡"
	default:
		return "Risque élevé 🔴"
	}
}

// DCAProjection compares the mean of the last n (≤30) samples against
// the current price, in percent. Positive means the current price sits
// above the recent average.
func DCAProjection(prices []float64, current float64) (avg, diffPct float64, ok bool) {
	if len(prices) == 0 || current <= 0 {
		return 0, 0, false
	}
	window := prices
	if len(window) > 30 {
		window = window[len(window)-30:]
	}
	var sum float64
	for _, p := range window {
		sum += p
	}
	avg = sum / float64(len(window))
	if avg == 0 {
		return 0, 0, false
	}
	return avg, (current - avg) / avg * 100, true
}

// PearsonCorrelation of two return series, truncated to the shorter one.
func PearsonCorrelation(a, b []float64) (float64, bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return 0, false
	}
	a, b = a[:n], b[:n]

	var meanA, meanB float64
	for i := 0; i < n; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varA*varB), true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
