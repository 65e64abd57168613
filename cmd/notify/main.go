package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cryptofam/crypto_notify_bot/internal/config"
	"github.com/cryptofam/crypto_notify_bot/internal/domain"
	"github.com/cryptofam/crypto_notify_bot/internal/infrastructure/brokers"
	"github.com/cryptofam/crypto_notify_bot/internal/infrastructure/logger"
	"github.com/cryptofam/crypto_notify_bot/internal/infrastructure/market"
	"github.com/cryptofam/crypto_notify_bot/internal/infrastructure/telegram"
	"github.com/cryptofam/crypto_notify_bot/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	dryRun := flag.Bool("dry-run", false, "print notifications instead of sending them")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	analyzer := usecase.NewMarketAnalyzer()
	binance := market.NewBinanceAdapter(cfg.Binance.RESTEndpoint, cfg.Binance.WSEndpoint, log)

	markets := make(map[string]*domain.MarketSnapshot, len(cfg.CryptoSymbols))
	predictions := make(map[string]*domain.Prediction, len(cfg.CryptoSymbols))
	opportunities := make(map[string]*domain.OpportunityScore, len(cfg.CryptoSymbols))
	for _, symbol := range cfg.CryptoSymbols {
		snapshot, err := binance.GetSnapshot(ctx, symbol)
		if err != nil || snapshot == nil {
			log.Warn("no data", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		if prices := snapshot.PriceValues(); len(prices) > 0 {
			snapshot.Indicators = analyzer.ComputeIndicators(prices)
		}
		markets[symbol] = snapshot

		pred := analyzer.PredictMovement(snapshot)
		predictions[symbol] = &pred
		opp := analyzer.ScoreOpportunity(snapshot, pred)
		opportunities[symbol] = &opp
	}

	notifier := usecase.NewNotificationService(cfg, brokers.FromConfig(cfg, log), log)
	messages := notifier.GenerateCoinNotifications(markets, predictions, opportunities)
	if cfg.Notification.SendGlossary {
		if text := notifier.GenerateGlossaryNotification(); text != "" {
			messages = append(messages, text)
		}
	}

	if len(messages) == 0 {
		fmt.Println("No notifications to send.")
		return
	}

	if *dryRun {
		for i, msg := range messages {
			if i > 0 {
				fmt.Println("\n---")
			}
			fmt.Println(msg)
		}
		return
	}

	sender := telegram.NewClient(
		cfg.Telegram.BotToken,
		cfg.Telegram.ChatID,
		time.Duration(cfg.Telegram.MessageDelay*float64(time.Second)),
		cfg.Telegram.TestMode,
		log,
	)
	for _, msg := range messages {
		if err := sender.SendMessage(ctx, msg); err != nil {
			log.Error("send failed", zap.Error(err))
		}
	}
}
