package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the full bot configuration, loaded once and treated as an
// immutable snapshot for the duration of each generation cycle.
type Config struct {
	Telegram struct {
		BotToken     string  `yaml:"bot_token"`
		ChatID       string  `yaml:"chat_id"`
		MessageDelay float64 `yaml:"message_delay"`
		TestMode     bool    `yaml:"test_mode"`
	} `yaml:"telegram"`

	CryptoSymbols    []string `yaml:"crypto_symbols"`
	InvestmentAmount float64  `yaml:"investment_amount"`

	CheckIntervalSeconds int      `yaml:"check_interval_seconds"`
	SummaryHours         HourList `yaml:"summary_hours"`

	QuietHours struct {
		Enabled       bool  `yaml:"enabled"`
		StartHour     int   `yaml:"start_hour"`
		EndHour       int   `yaml:"end_hour"`
		AllowCritical *bool `yaml:"allow_critical"`
	} `yaml:"quiet_hours"`

	UseSimpleLanguage bool   `yaml:"use_simple_language"`
	DetailLevel       string `yaml:"detail_level"`

	Report struct {
		EnabledSections       map[string]bool `yaml:"enabled_sections"`
		AdvancedMetrics       map[string]bool `yaml:"advanced_metrics"`
		IncludeSummary        *bool           `yaml:"include_summary"`
		IncludeTelegramReport *bool           `yaml:"include_telegram_report"`
		IncludeChart          *bool           `yaml:"include_chart"`
		IncludeDCA            *bool           `yaml:"include_dca"`
		IncludeBrokerPrices   *bool           `yaml:"include_broker_prices"`
	} `yaml:"report"`

	Alerts struct {
		Enabled              *bool                      `yaml:"enabled"`
		LookbackMinutes      int                        `yaml:"lookback_minutes"`
		PriceDropPct         float64                    `yaml:"price_drop_pct"`
		PriceSpikePct        float64                    `yaml:"price_spike_pct"`
		FundingNegativePct   float64                    `yaml:"funding_negative_pct"`
		FearGreedMax         int                        `yaml:"fear_greed_max"`
		PriceLevels          map[string]PriceLevelRange `yaml:"price_levels"`
		LevelBufferEUR       float64                    `yaml:"level_buffer_eur"`
		LevelCooldownMinutes int                        `yaml:"level_cooldown_minutes"`
	} `yaml:"alerts"`

	Notification struct {
		PerCoin         bool                        `yaml:"per_coin"`
		IncludeChart    bool                        `yaml:"include_chart"`
		ChartTimeframes TimeframeList               `yaml:"chart_timeframes"`
		IncludeBrokers  bool                        `yaml:"include_brokers"`
		SendGlossary    bool                        `yaml:"send_glossary"`
		Thresholds      map[string]*Thresholds      `yaml:"thresholds"`
		ContentByCoin   map[string]*ContentOverride `yaml:"content_by_coin"`
	} `yaml:"notification"`

	CoinSettings map[string]*CoinSettings `yaml:"coin_settings"`

	EnabledBrokers []string                      `yaml:"enabled_brokers"`
	BrokerSettings map[string]map[string]float64 `yaml:"broker_settings"`

	Binance struct {
		RESTEndpoint string `yaml:"rest_endpoint"`
		WSEndpoint   string `yaml:"ws_endpoint"`
	} `yaml:"binance"`

	Database struct {
		Path            string `yaml:"path"`
		KeepHistoryDays int    `yaml:"keep_history_days"`
	} `yaml:"database"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`

	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

// Load reads and decodes the YAML config file, then applies defaults and
// environment overrides for secrets.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.CryptoSymbols) == 0 {
		c.CryptoSymbols = []string{"BTC", "ETH", "SOL"}
	}
	if c.InvestmentAmount == 0 {
		c.InvestmentAmount = 100.0
	}
	if c.CheckIntervalSeconds == 0 {
		c.CheckIntervalSeconds = 900
	}
	if len(c.SummaryHours) == 0 {
		c.SummaryHours = HourList{9, 12, 18}
	}
	if len(c.Notification.ChartTimeframes) == 0 {
		c.Notification.ChartTimeframes = TimeframeList{24, 168}
	}
	if len(c.EnabledBrokers) == 0 {
		c.EnabledBrokers = []string{"binance", "revolut"}
	}
	if c.Binance.RESTEndpoint == "" {
		c.Binance.RESTEndpoint = "https://api.binance.com"
	}
	if c.Binance.WSEndpoint == "" {
		c.Binance.WSEndpoint = "wss://stream.binance.com:9443/ws"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/crypto_bot.db"
	}
	if c.Database.KeepHistoryDays == 0 {
		c.Database.KeepHistoryDays = 30
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Telegram.MessageDelay == 0 {
		c.Telegram.MessageDelay = 0.5
	}
	if c.DetailLevel == "" {
		c.DetailLevel = "normal"
	}
	if c.Alerts.LookbackMinutes == 0 {
		c.Alerts.LookbackMinutes = 120
	}
	if c.Alerts.PriceDropPct == 0 {
		c.Alerts.PriceDropPct = 10.0
	}
	if c.Alerts.PriceSpikePct == 0 {
		c.Alerts.PriceSpikePct = 10.0
	}
	if c.Alerts.FundingNegativePct == 0 {
		c.Alerts.FundingNegativePct = -0.03
	}
	if c.Alerts.FearGreedMax == 0 {
		c.Alerts.FearGreedMax = 30
	}
	if c.Alerts.LevelBufferEUR == 0 {
		c.Alerts.LevelBufferEUR = 2.0
	}
	if c.Alerts.LevelCooldownMinutes == 0 {
		c.Alerts.LevelCooldownMinutes = 30
	}
}

// applyEnv lets secrets come from the environment (or a .env file loaded
// by the entrypoint) instead of the config file.
func (c *Config) applyEnv() {
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		c.Telegram.BotToken = token
	}
	if chat := os.Getenv("TELEGRAM_CHAT_ID"); chat != "" {
		c.Telegram.ChatID = chat
	}
}

// CoinSettingsFor returns the raw settings block for a symbol, matching
// case-insensitively the way symbols are keyed in the YAML file.
func (c *Config) CoinSettingsFor(symbol string) *CoinSettings {
	if c.CoinSettings == nil {
		return nil
	}
	if s, ok := c.CoinSettings[symbol]; ok {
		return s
	}
	return c.CoinSettings[strings.ToUpper(symbol)]
}

// IsQuietHour reports whether hour falls inside the configured quiet
// window. A window that crosses midnight (start > end) wraps around.
func (c *Config) IsQuietHour(hour int) bool {
	if !c.QuietHours.Enabled {
		return false
	}
	start, end := c.QuietHours.StartHour, c.QuietHours.EndHour
	if start < end {
		return start <= hour && hour < end
	}
	return hour >= start || hour < end
}

// SectionEnabled reports whether a report section is on. Absent keys
// default to enabled.
func (c *Config) SectionEnabled(name string) bool {
	if c.Report.EnabledSections == nil {
		return true
	}
	enabled, ok := c.Report.EnabledSections[name]
	if !ok {
		return true
	}
	return enabled
}

// MetricEnabled reports whether an advanced report metric is on. Absent
// keys default to enabled, matching SectionEnabled.
func (c *Config) MetricEnabled(name string) bool {
	if c.Report.AdvancedMetrics == nil {
		return true
	}
	enabled, ok := c.Report.AdvancedMetrics[name]
	if !ok {
		return true
	}
	return enabled
}

// PriceLevelRange is an optional pair of watched price levels for one
// symbol. Crossing either side triggers a critical alert.
type PriceLevelRange struct {
	Low  *float64 `yaml:"low"`
	High *float64 `yaml:"high"`
}

// optOn interprets an absent optional flag as enabled.
func optOn(v *bool) bool { return v == nil || *v }

// AlertsEnabled reports whether cycle alert checks run at all.
func (c *Config) AlertsEnabled() bool { return optOn(c.Alerts.Enabled) }

// QuietAllowCritical reports whether critical alerts still go out
// during quiet hours.
func (c *Config) QuietAllowCritical() bool { return optOn(c.QuietHours.AllowCritical) }

// The report add-on knobs below refine individual sections. Like
// section toggles, an absent knob means enabled.

func (c *Config) ReportIncludeSummary() bool        { return optOn(c.Report.IncludeSummary) }
func (c *Config) ReportIncludeTelegramReport() bool { return optOn(c.Report.IncludeTelegramReport) }
func (c *Config) ReportIncludeChart() bool          { return optOn(c.Report.IncludeChart) }
func (c *Config) ReportIncludeDCA() bool            { return optOn(c.Report.IncludeDCA) }
func (c *Config) ReportIncludeBrokerPrices() bool   { return optOn(c.Report.IncludeBrokerPrices) }
