package brokers

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cryptofam/crypto_notify_bot/internal/config"
	"github.com/cryptofam/crypto_notify_bot/internal/domain"
)

// FromConfig builds the enabled broker set in configured order.
// Unknown broker names are logged and skipped.
func FromConfig(cfg *config.Config, logger *zap.Logger) []domain.Broker {
	var out []domain.Broker
	for _, name := range cfg.EnabledBrokers {
		slug := strings.ToLower(strings.TrimSpace(name))
		settings := cfg.BrokerSettings[slug]
		switch slug {
		case "binance":
			out = append(out, NewBinanceBroker(settings))
		case "revolut":
			out = append(out, NewRevolutBroker(settings))
		case "":
			continue
		default:
			logger.Warn("unknown broker in config", zap.String("broker", name))
		}
	}
	return out
}
