package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cryptofam/crypto_notify_bot/internal/config"
	"github.com/cryptofam/crypto_notify_bot/internal/domain"
	"github.com/cryptofam/crypto_notify_bot/internal/infrastructure/brokers"
	"github.com/cryptofam/crypto_notify_bot/internal/infrastructure/market"
	"github.com/cryptofam/crypto_notify_bot/internal/infrastructure/storage"
	"github.com/cryptofam/crypto_notify_bot/internal/usecase"
)

// fixtureFile holds pre-recorded market snapshots for offline report
// generation.
type fixtureFile struct {
	Markets map[string]*domain.MarketSnapshot `yaml:"markets"`
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	fixturesPath := flag.String("fixtures", "", "YAML file with market snapshots instead of live data")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := zap.NewNop()
	ctx := context.Background()
	analyzer := usecase.NewMarketAnalyzer()

	var markets map[string]*domain.MarketSnapshot
	var stats *domain.StatsSummary

	if *fixturesPath != "" {
		markets, err = loadFixtures(*fixturesPath, analyzer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load fixtures: %v\n", err)
			os.Exit(1)
		}
	} else {
		binance := market.NewBinanceAdapter(cfg.Binance.RESTEndpoint, cfg.Binance.WSEndpoint, log)
		markets = fetchLive(ctx, cfg, binance, analyzer)

		if store, err := storage.NewSQLiteStore(cfg.Database.Path); err == nil {
			stats, _ = store.GetStatsSummary(ctx, 7)
			store.Close()
		}
	}

	predictions := make(map[string]*domain.Prediction, len(markets))
	opportunities := make(map[string]*domain.OpportunityScore, len(markets))
	for symbol, snapshot := range markets {
		pred := analyzer.PredictMovement(snapshot)
		predictions[symbol] = &pred
		opp := analyzer.ScoreOpportunity(snapshot, pred)
		opportunities[symbol] = &opp
	}

	summary := usecase.NewSummaryService(cfg)
	report := usecase.NewReportService(cfg, summary, brokers.FromConfig(cfg, log), log)
	fmt.Println(report.GenerateCompleteReport(markets, predictions, opportunities, stats))
}

func loadFixtures(path string, analyzer *usecase.MarketAnalyzer) (map[string]*domain.MarketSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var fixtures fixtureFile
	if err := yaml.NewDecoder(f).Decode(&fixtures); err != nil {
		return nil, err
	}

	empty := domain.TechnicalIndicators{}
	for _, snapshot := range fixtures.Markets {
		if snapshot == nil {
			continue
		}
		if snapshot.Indicators == empty {
			if prices := snapshot.PriceValues(); len(prices) > 0 {
				snapshot.Indicators = analyzer.ComputeIndicators(prices)
			}
		}
	}
	return fixtures.Markets, nil
}

func fetchLive(ctx context.Context, cfg *config.Config, source domain.MarketSource, analyzer *usecase.MarketAnalyzer) map[string]*domain.MarketSnapshot {
	markets := make(map[string]*domain.MarketSnapshot, len(cfg.CryptoSymbols))
	for _, symbol := range cfg.CryptoSymbols {
		snapshot, err := source.GetSnapshot(ctx, symbol)
		if err != nil || snapshot == nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: no data\n", symbol)
			continue
		}
		if prices := snapshot.PriceValues(); len(prices) > 0 {
			snapshot.Indicators = analyzer.ComputeIndicators(prices)
		}
		markets[symbol] = snapshot
	}
	return markets
}
