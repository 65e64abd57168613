package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cryptofam/crypto_notify_bot/internal/domain"
)

const (
	BinanceBaseURL = "https://api.binance.com"
	BinanceWSURL   = "wss://stream.binance.com:9443/ws"

	binanceFuturesURL   = "https://fapi.binance.com"
	defaultFearGreedURL = "https://api.alternative.me/fng/?limit=1"

	// Fallback rate used until the first successful fetch.
	defaultUSDToEUR = 0.92
	rateTTL         = time.Hour
)

var exchangeRateURLs = []string{
	"https://api.exchangerate-api.com/v4/latest/USD",
	"https://open.er-api.com/v6/latest/USD",
}

// usdEURRate is the cached USD to EUR conversion rate. FetchedAt is the
// zero time until the first successful fetch.
type usdEURRate struct {
	Rate      float64
	FetchedAt time.Time
}

func (r usdEURRate) Fresh(now time.Time) bool {
	return !r.FetchedAt.IsZero() && now.Sub(r.FetchedAt) < rateTTL
}

// BinanceAdapter fetches market data from the Binance spot and futures
// REST APIs and keeps last prices fresh over a miniTicker websocket
// stream. All fetches degrade to nil fields instead of failing the
// whole snapshot.
type BinanceAdapter struct {
	baseURL      string
	futuresURL   string
	wsURL        string
	fearGreedURL string
	rateURLs     []string
	client       *http.Client
	logger       *zap.Logger

	rateMu sync.Mutex
	rate   usdEURRate

	wsMu       sync.Mutex
	wsConn     *websocket.Conn
	lastPrices map[string]float64

	timeNow func() time.Time
}

func NewBinanceAdapter(baseURL, wsURL string, logger *zap.Logger) *BinanceAdapter {
	if baseURL == "" {
		baseURL = BinanceBaseURL
	}
	if wsURL == "" {
		wsURL = BinanceWSURL
	}
	return &BinanceAdapter{
		baseURL:      baseURL,
		futuresURL:   binanceFuturesURL,
		wsURL:        wsURL,
		fearGreedURL: defaultFearGreedURL,
		rateURLs:     exchangeRateURLs,
		client:       &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
		rate:         usdEURRate{Rate: defaultUSDToEUR},
		lastPrices:   make(map[string]float64),
		timeNow:      time.Now,
	}
}

// pair maps a bare symbol like "BTC" to its Binance USDT pair.
func pair(symbol string) string {
	return strings.ToUpper(symbol) + "USDT"
}

func (b *BinanceAdapter) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

// GetSnapshot assembles the full market view for one symbol. The
// current price falls back to the last websocket tick when the REST
// ticker is unavailable, and stays nil when neither source has data.
// Derivative and sentiment fields are best effort.
func (b *BinanceAdapter) GetSnapshot(ctx context.Context, symbol string) (*domain.MarketSnapshot, error) {
	snapshot := &domain.MarketSnapshot{Symbol: symbol}

	current, err := b.fetchTicker(ctx, symbol)
	if err != nil {
		b.logger.Warn("ticker fetch failed", zap.String("symbol", symbol), zap.Error(err))
		current = b.priceFromStream(symbol)
	}
	snapshot.CurrentPrice = current

	history, err := b.fetchKlines(ctx, symbol, "1h", 168)
	if err != nil {
		b.logger.Warn("history fetch failed", zap.String("symbol", symbol), zap.Error(err))
	}
	snapshot.PriceHistory = history

	if len(history) >= 2 {
		first := history[0].PriceEUR
		last := history[len(history)-1].PriceEUR
		if first > 0 {
			change := (last - first) / first * 100
			snapshot.Change7d = &change
		}
	}

	if rate, err := b.fetchFundingRate(ctx, symbol); err == nil {
		snapshot.FundingRate = &rate
	}
	if oi, err := b.fetchOpenInterest(ctx, symbol); err == nil {
		snapshot.OpenInterest = &oi
	}
	if fgi, err := b.fetchFearGreed(ctx); err == nil {
		snapshot.FearGreedIndex = &fgi
	}

	if err := ctx.Err(); err != nil {
		return snapshot, err
	}
	return snapshot, nil
}

// GetPriceHistory returns hourly closes for the last N hours.
func (b *BinanceAdapter) GetPriceHistory(ctx context.Context, symbol string, hours int) ([]domain.CryptoPrice, error) {
	if hours <= 0 {
		hours = 24
	}
	return b.fetchKlines(ctx, symbol, "1h", hours)
}

func (b *BinanceAdapter) fetchTicker(ctx context.Context, symbol string) (*domain.CryptoPrice, error) {
	url := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", b.baseURL, pair(symbol))

	var ticker struct {
		LastPrice          string `json:"lastPrice"`
		PriceChangePercent string `json:"priceChangePercent"`
		Volume             string `json:"volume"`
		HighPrice          string `json:"highPrice"`
		LowPrice           string `json:"lowPrice"`
	}
	if err := b.getJSON(ctx, url, &ticker); err != nil {
		return nil, err
	}

	last, err := strconv.ParseFloat(ticker.LastPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("bad last price %q: %w", ticker.LastPrice, err)
	}
	change, _ := strconv.ParseFloat(ticker.PriceChangePercent, 64)
	volume, _ := strconv.ParseFloat(ticker.Volume, 64)
	high, _ := strconv.ParseFloat(ticker.HighPrice, 64)
	low, _ := strconv.ParseFloat(ticker.LowPrice, 64)

	rate := b.usdToEUR(ctx)
	return &domain.CryptoPrice{
		Symbol:    symbol,
		PriceUSD:  last,
		PriceEUR:  last * rate,
		Volume24h: volume,
		Change24h: &change,
		High24h:   high * rate,
		Low24h:    low * rate,
		Timestamp: b.timeNow().UTC(),
	}, nil
}

func (b *BinanceAdapter) fetchKlines(ctx context.Context, symbol, interval string, limit int) ([]domain.CryptoPrice, error) {
	if limit > 1000 {
		limit = 1000
	}
	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d", b.baseURL, pair(symbol), interval, limit)

	// Rows mix numeric timestamps with string prices:
	// [openTime, "open", "high", "low", "close", "volume", ...]
	var rows [][]interface{}
	if err := b.getJSON(ctx, url, &rows); err != nil {
		return nil, err
	}

	rate := b.usdToEUR(ctx)
	prices := make([]domain.CryptoPrice, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		openTime, ok := row[0].(float64)
		if !ok {
			continue
		}
		closePrice := parseField(row[4])
		volume := parseField(row[5])
		prices = append(prices, domain.CryptoPrice{
			Symbol:    symbol,
			PriceUSD:  closePrice,
			PriceEUR:  closePrice * rate,
			Volume24h: volume,
			Timestamp: time.UnixMilli(int64(openTime)).UTC(),
		})
	}
	return prices, nil
}

func parseField(v interface{}) float64 {
	switch x := v.(type) {
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	case float64:
		return x
	}
	return 0
}

// fetchFundingRate returns the latest funding rate as a percentage.
func (b *BinanceAdapter) fetchFundingRate(ctx context.Context, symbol string) (float64, error) {
	url := fmt.Sprintf("%s/fapi/v1/fundingRate?symbol=%s&limit=1", b.futuresURL, pair(symbol))

	var rows []struct {
		FundingRate string `json:"fundingRate"`
	}
	if err := b.getJSON(ctx, url, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("no funding data for %s", symbol)
	}
	rate, err := strconv.ParseFloat(rows[len(rows)-1].FundingRate, 64)
	if err != nil {
		return 0, err
	}
	return rate * 100, nil
}

func (b *BinanceAdapter) fetchOpenInterest(ctx context.Context, symbol string) (float64, error) {
	url := fmt.Sprintf("%s/fapi/v1/openInterest?symbol=%s", b.futuresURL, pair(symbol))

	var result struct {
		OpenInterest string `json:"openInterest"`
	}
	if err := b.getJSON(ctx, url, &result); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(result.OpenInterest, 64)
}

func (b *BinanceAdapter) fetchFearGreed(ctx context.Context) (int, error) {
	var result struct {
		Data []struct {
			Value string `json:"value"`
		} `json:"data"`
	}
	if err := b.getJSON(ctx, b.fearGreedURL, &result); err != nil {
		return 0, err
	}
	if len(result.Data) == 0 {
		return 0, fmt.Errorf("empty fear and greed response")
	}
	return strconv.Atoi(result.Data[0].Value)
}

// usdToEUR returns the cached conversion rate, refreshing it when the
// TTL has expired. A failed refresh keeps the previous rate.
func (b *BinanceAdapter) usdToEUR(ctx context.Context) float64 {
	b.rateMu.Lock()
	defer b.rateMu.Unlock()

	now := b.timeNow()
	if b.rate.Fresh(now) {
		return b.rate.Rate
	}

	for _, url := range b.rateURLs {
		var result struct {
			Rates map[string]float64 `json:"rates"`
		}
		if err := b.getJSON(ctx, url, &result); err != nil {
			continue
		}
		if rate, ok := result.Rates["EUR"]; ok && rate > 0 {
			b.rate = usdEURRate{Rate: rate, FetchedAt: now}
			return rate
		}
	}

	b.logger.Warn("exchange rate refresh failed, keeping previous rate",
		zap.Float64("rate", b.rate.Rate))
	return b.rate.Rate
}

// priceFromStream builds a minimal price point from the last websocket
// tick, or nil when no tick has arrived for the symbol.
func (b *BinanceAdapter) priceFromStream(symbol string) *domain.CryptoPrice {
	b.wsMu.Lock()
	last, ok := b.lastPrices[strings.ToUpper(symbol)]
	b.wsMu.Unlock()
	if !ok {
		return nil
	}

	b.rateMu.Lock()
	rate := b.rate.Rate
	b.rateMu.Unlock()

	return &domain.CryptoPrice{
		Symbol:    symbol,
		PriceUSD:  last,
		PriceEUR:  last * rate,
		Timestamp: b.timeNow().UTC(),
	}
}

// --- WebSocket ---

// ConnectWS opens the miniTicker stream for the given symbols. Prices
// received on the stream serve as a fallback when the REST ticker is
// down.
func (b *BinanceAdapter) ConnectWS(symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}

	b.wsMu.Lock()
	defer b.wsMu.Unlock()

	if b.wsConn == nil {
		c, _, err := websocket.DefaultDialer.Dial(b.wsURL, nil)
		if err != nil {
			return err
		}
		b.wsConn = c
		go b.readLoop(c)
	}

	params := make([]string, 0, len(symbols))
	for _, s := range symbols {
		params = append(params, strings.ToLower(pair(s))+"@miniTicker")
	}
	return b.wsConn.WriteJSON(map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": params,
		"id":     1,
	})
}

func (b *BinanceAdapter) readLoop(conn *websocket.Conn) {
	defer func() {
		conn.Close()
		b.wsMu.Lock()
		if b.wsConn == conn {
			b.wsConn = nil
		}
		b.wsMu.Unlock()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			b.logger.Warn("websocket read failed", zap.Error(err))
			return
		}

		var event struct {
			EventType string `json:"e"`
			Symbol    string `json:"s"`
			Close     string `json:"c"`
		}
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}
		if event.EventType != "24hrMiniTicker" {
			continue
		}
		price, err := strconv.ParseFloat(event.Close, 64)
		if err != nil {
			continue
		}

		symbol := strings.TrimSuffix(event.Symbol, "USDT")
		b.wsMu.Lock()
		b.lastPrices[symbol] = price
		b.wsMu.Unlock()
	}
}

// Close shuts down the websocket stream if one is open.
func (b *BinanceAdapter) Close() error {
	b.wsMu.Lock()
	defer b.wsMu.Unlock()
	if b.wsConn == nil {
		return nil
	}
	err := b.wsConn.Close()
	b.wsConn = nil
	return err
}
