package brokers

import "github.com/cryptofam/crypto_notify_bot/internal/domain"

const (
	defaultRevolutSpreadPct = 0.005
	defaultRevolutFeePct    = 0.015
)

// RevolutBroker approximates buy/sell prices with a spread on the
// current EUR price plus a per transaction fee.
type RevolutBroker struct {
	spreadPct float64
	feePct    float64
}

func NewRevolutBroker(settings map[string]float64) *RevolutBroker {
	b := &RevolutBroker{
		spreadPct: defaultRevolutSpreadPct,
		feePct:    defaultRevolutFeePct,
	}
	if spread, ok := settings["spread_pct"]; ok && spread >= 0 {
		b.spreadPct = spread
	}
	if fee, ok := settings["fee_pct"]; ok && fee >= 0 {
		b.feePct = fee
	}
	return b
}

func (b *RevolutBroker) Name() string { return "Revolut" }

func (b *RevolutBroker) Supports(symbol string) bool { return true }

func (b *RevolutBroker) Quote(symbol string, market *domain.MarketSnapshot) (domain.BrokerQuote, bool) {
	if market == nil || market.CurrentPrice == nil {
		return domain.BrokerQuote{}, false
	}
	price := market.CurrentPrice.PriceEUR
	if price <= 0 {
		return domain.BrokerQuote{}, false
	}
	return domain.BrokerQuote{
		Broker:    b.Name(),
		BuyPrice:  price * (1 + b.spreadPct) * (1 + b.feePct),
		SellPrice: price * (1 - b.spreadPct) * (1 - b.feePct),
		Currency:  "€",
		Notes:     "Estimation Revolut : spread 0,5% + frais 1,5% sur l'achat/vente.",
	}, true
}
