package domain

// OpportunityScore rates how favorable current conditions are for buying
// a coin, on an integer 0-10 scale. Derived from a MarketSnapshot and its
// Prediction; rebuilt every cycle.
type OpportunityScore struct {
	Symbol         string   `json:"symbol" yaml:"symbol"`
	Score          int      `json:"score" yaml:"score"` // 0-10
	Recommendation string   `json:"recommendation" yaml:"recommendation"`
	Reasons        []string `json:"reasons" yaml:"reasons"`
}
