package domain

// Trend is the 5-way predicted direction of a symbol.
type Trend int

const (
	TrendBearish Trend = iota - 2
	TrendSlightlyBearish
	TrendNeutral
	TrendSlightlyBullish
	TrendBullish
)

// Label returns the French display name used in messages.
func (t Trend) Label() string {
	switch t {
	case TrendBullish:
		return "HAUSSIER"
	case TrendSlightlyBullish:
		return "LÉGÈREMENT HAUSSIER"
	case TrendSlightlyBearish:
		return "LÉGÈREMENT BAISSIER"
	case TrendBearish:
		return "BAISSIER"
	default:
		return "NEUTRE"
	}
}

// Arrow returns the direction emoji used next to the label.
func (t Trend) Arrow() string {
	switch t {
	case TrendBullish:
		return "📈"
	case TrendSlightlyBullish:
		return "↗️"
	case TrendSlightlyBearish:
		return "↘️"
	case TrendBearish:
		return "📉"
	default:
		return "➡️"
	}
}

// Bullish reports whether the trend points up at all.
func (t Trend) Bullish() bool { return t > TrendNeutral }

// Bearish reports whether the trend points down at all.
func (t Trend) Bearish() bool { return t < TrendNeutral }

// Prediction is the heuristic forecast computed fresh each cycle.
// Not persisted anywhere.
type Prediction struct {
	Symbol     string   `json:"symbol" yaml:"symbol"`
	Trend      Trend    `json:"trend" yaml:"trend"`
	Confidence int      `json:"confidence" yaml:"confidence"` // 0-100
	TrendScore int      `json:"trend_score" yaml:"trend_score"`
	Signals    []string `json:"signals" yaml:"signals"`
	TargetHigh float64  `json:"target_high" yaml:"target_high"`
	TargetLow  float64  `json:"target_low" yaml:"target_low"`
}
