package brokers

import "github.com/cryptofam/crypto_notify_bot/internal/domain"

const defaultBinanceFeePct = 0.001

// BinanceBroker quotes buy/sell prices from the current EUR price plus
// the estimated maker/taker fee.
type BinanceBroker struct {
	feePct float64
}

func NewBinanceBroker(settings map[string]float64) *BinanceBroker {
	b := &BinanceBroker{feePct: defaultBinanceFeePct}
	if fee, ok := settings["fee_pct"]; ok && fee >= 0 {
		b.feePct = fee
	}
	return b
}

func (b *BinanceBroker) Name() string { return "Binance" }

func (b *BinanceBroker) Supports(symbol string) bool { return true }

func (b *BinanceBroker) Quote(symbol string, market *domain.MarketSnapshot) (domain.BrokerQuote, bool) {
	if market == nil || market.CurrentPrice == nil {
		return domain.BrokerQuote{}, false
	}
	price := market.CurrentPrice.PriceEUR
	if price <= 0 {
		return domain.BrokerQuote{}, false
	}
	return domain.BrokerQuote{
		Broker:    b.Name(),
		BuyPrice:  price * (1 + b.feePct),
		SellPrice: price * (1 - b.feePct),
		Currency:  "€",
		Notes:     "Inclut les frais maker/taker Binance estimés à 0,1%.",
	}, true
}
