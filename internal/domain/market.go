package domain

import "time"

// CryptoPrice is one observed price point for a symbol.
type CryptoPrice struct {
	Symbol    string    `json:"symbol" yaml:"symbol"`
	PriceUSD  float64   `json:"price_usd" yaml:"price_usd"`
	PriceEUR  float64   `json:"price_eur" yaml:"price_eur"`
	Volume24h float64   `json:"volume_24h" yaml:"volume_24h"`
	Change24h *float64  `json:"change_24h" yaml:"change_24h"`
	High24h   float64   `json:"high_24h" yaml:"high_24h"`
	Low24h    float64   `json:"low_24h" yaml:"low_24h"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// TechnicalIndicators holds the computed indicator set for one symbol.
// Optional indicators are pointers: nil means "not computable from the
// available history" and every consumer must degrade gracefully.
type TechnicalIndicators struct {
	RSI            *float64 `json:"rsi" yaml:"rsi"`
	MACD           float64  `json:"macd" yaml:"macd"`
	MACDSignal     float64  `json:"macd_signal" yaml:"macd_signal"`
	MACDHistogram  float64  `json:"macd_histogram" yaml:"macd_histogram"`
	MA20           float64  `json:"ma20" yaml:"ma20"`
	MA50           float64  `json:"ma50" yaml:"ma50"`
	MA200          float64  `json:"ma200" yaml:"ma200"`
	BollingerUpper *float64 `json:"bollinger_upper" yaml:"bollinger_upper"`
	BollingerLower *float64 `json:"bollinger_lower" yaml:"bollinger_lower"`
	Support        *float64 `json:"support" yaml:"support"`
	Resistance     *float64 `json:"resistance" yaml:"resistance"`
}

// MarketSnapshot is the full market view for one symbol at one cycle.
// CurrentPrice may be nil when the upstream fetch failed; report formatting
// must fall back to "indisponible" text and notifications must be suppressed.
type MarketSnapshot struct {
	Symbol         string              `json:"symbol" yaml:"symbol"`
	CurrentPrice   *CryptoPrice        `json:"current_price" yaml:"current_price"`
	Indicators     TechnicalIndicators `json:"indicators" yaml:"indicators"`
	Change7d       *float64            `json:"change_7d" yaml:"change_7d"`
	FearGreedIndex *int                `json:"fear_greed_index" yaml:"fear_greed_index"`
	FundingRate    *float64            `json:"funding_rate" yaml:"funding_rate"`
	OpenInterest   *float64            `json:"open_interest" yaml:"open_interest"`
	PriceHistory   []CryptoPrice       `json:"price_history" yaml:"price_history"`
}

// PriceValues extracts the EUR price series from the history, oldest first.
func (m *MarketSnapshot) PriceValues() []float64 {
	if m == nil || len(m.PriceHistory) == 0 {
		return nil
	}
	values := make([]float64, 0, len(m.PriceHistory))
	for _, p := range m.PriceHistory {
		values = append(values, p.PriceEUR)
	}
	return values
}

// PriceChange returns the % change over the last window of history, or
// false when fewer than two points fall inside the window.
func (m *MarketSnapshot) PriceChange(window time.Duration, now time.Time) (float64, bool) {
	if m == nil || len(m.PriceHistory) < 2 {
		return 0, false
	}
	cutoff := now.Add(-window)
	var oldest, newest *CryptoPrice
	for i := range m.PriceHistory {
		p := &m.PriceHistory[i]
		if p.Timestamp.Before(cutoff) {
			continue
		}
		if oldest == nil || p.Timestamp.Before(oldest.Timestamp) {
			oldest = p
		}
		if newest == nil || p.Timestamp.After(newest.Timestamp) {
			newest = p
		}
	}
	if oldest == nil || newest == nil || oldest == newest || oldest.PriceEUR == 0 {
		return 0, false
	}
	return (newest.PriceEUR - oldest.PriceEUR) / oldest.PriceEUR * 100, true
}
