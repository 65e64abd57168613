package domain

// BrokerQuote is one broker's buy/sell quote for a symbol.
type BrokerQuote struct {
	Broker    string  `json:"broker" yaml:"broker"`
	BuyPrice  float64 `json:"buy_price" yaml:"buy_price"`
	SellPrice float64 `json:"sell_price" yaml:"sell_price"`
	Currency  string  `json:"currency" yaml:"currency"`
	Notes     string  `json:"notes" yaml:"notes"`
}

// Broker produces quotes from a market snapshot. Implementations model a
// venue's fee/spread structure; they never perform I/O.
type Broker interface {
	Name() string
	Supports(symbol string) bool
	Quote(symbol string, market *MarketSnapshot) (BrokerQuote, bool)
}
