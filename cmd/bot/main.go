package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cryptofam/crypto_notify_bot/internal/config"
	"github.com/cryptofam/crypto_notify_bot/internal/daemon"
	"github.com/cryptofam/crypto_notify_bot/internal/infrastructure/brokers"
	"github.com/cryptofam/crypto_notify_bot/internal/infrastructure/logger"
	"github.com/cryptofam/crypto_notify_bot/internal/infrastructure/market"
	"github.com/cryptofam/crypto_notify_bot/internal/infrastructure/storage"
	"github.com/cryptofam/crypto_notify_bot/internal/infrastructure/telegram"
	"github.com/cryptofam/crypto_notify_bot/internal/usecase"
	"github.com/cryptofam/crypto_notify_bot/internal/web"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	// .env is optional, real env vars win either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := newLoggerFromConfig(cfg)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := storage.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	binance := market.NewBinanceAdapter(cfg.Binance.RESTEndpoint, cfg.Binance.WSEndpoint, log)
	if err := binance.ConnectWS(cfg.CryptoSymbols); err != nil {
		log.Warn("Websocket stream unavailable, REST only", zap.Error(err))
	}
	defer binance.Close()

	sender := telegram.NewClient(
		cfg.Telegram.BotToken,
		cfg.Telegram.ChatID,
		time.Duration(cfg.Telegram.MessageDelay*float64(time.Second)),
		cfg.Telegram.TestMode,
		log,
	)

	brokerSet := brokers.FromConfig(cfg, log)
	notifier := usecase.NewNotificationService(cfg, brokerSet, log)
	summary := usecase.NewSummaryService(cfg)
	report := usecase.NewReportService(cfg, summary, brokerSet, log)
	alerter := usecase.NewAlertService(cfg)

	d := daemon.NewDaemon(cfg, binance, store, sender, usecase.NewMarketAnalyzer(), notifier, summary, report, alerter, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go d.Run(ctx)

	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	server := web.NewServer(port, d, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-stop

	log.Info("Shutting down...")
	cancel()
	server.Shutdown(context.Background())
}

func newLoggerFromConfig(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Logging.File != "" {
		return logger.NewFileLogger(cfg.Logging.File, cfg.Logging.Level)
	}
	return logger.NewLogger(cfg.Logging.Level)
}
