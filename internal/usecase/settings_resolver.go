package usecase

import (
	"time"

	"github.com/cryptofam/crypto_notify_bot/internal/config"
)

// SettingsKind selects which gate family of a resolved CoinOptions a
// caller consults.
type SettingsKind string

const (
	KindNotification SettingsKind = "notification"
	KindReport       SettingsKind = "report"
)

// CoinOptions is the flattened per-symbol option set after all overlay
// layers have been applied. Every field holds a concrete value.
type CoinOptions struct {
	IncludeNotification bool
	IncludeReport       bool
	IncludeSummary      bool

	ShowPrice       bool
	ShowCurves      bool
	ShowBrokers     bool
	ShowPrediction  bool
	ShowOpportunity bool
	ShowFearGreed   bool
	ShowGainLoss    bool

	NotificationHours config.HourList
	ReportHours       config.HourList
	ChartTimeframes   config.TimeframeList

	InvestmentAmount float64
}

// Included reports whether the coin participates in the given surface.
func (o CoinOptions) Included(kind SettingsKind) bool {
	if kind == KindReport {
		return o.IncludeReport
	}
	return o.IncludeNotification
}

// ActiveAt reports whether the coin's hour gate for the given surface
// allows the given hour. An empty hour list allows every hour.
func (o CoinOptions) ActiveAt(kind SettingsKind, hour int) bool {
	if kind == KindReport {
		return o.ReportHours.Contains(hour)
	}
	return o.NotificationHours.Contains(hour)
}

// SettingsResolver flattens global defaults, per-coin overrides and
// hour-gated profiles into a CoinOptions. Pure apart from reading the
// config snapshot; resolving twice with the same hour gives the same
// result.
type SettingsResolver struct {
	cfg     *config.Config
	timeNow func() time.Time // For testing
}

func NewSettingsResolver(cfg *config.Config) *SettingsResolver {
	return &SettingsResolver{cfg: cfg, timeNow: time.Now}
}

// Resolve builds the option set for symbol at the current hour.
func (r *SettingsResolver) Resolve(symbol string) CoinOptions {
	return r.ResolveAt(symbol, r.timeNow().Hour())
}

// ResolveAt builds the option set for symbol at an explicit hour.
// Layers, in order: global defaults, the coin's base layer (its "default"
// sub-block when profiles exist, its inline options otherwise), then each
// profile active at hour, in list order. Last write wins per field.
func (r *SettingsResolver) ResolveAt(symbol string, hour int) CoinOptions {
	opts := r.defaults()

	raw := r.cfg.CoinSettingsFor(symbol)
	if raw == nil {
		return opts
	}

	if len(raw.Profiles) > 0 {
		if raw.Default != nil {
			opts.apply(raw.Default)
		}
		for i := range raw.Profiles {
			p := &raw.Profiles[i]
			if !p.Hours.Contains(hour) {
				continue
			}
			opts.apply(&p.Options)
		}
		return opts
	}

	opts.apply(&raw.CoinOptionOverrides)
	return opts
}

func (r *SettingsResolver) defaults() CoinOptions {
	return CoinOptions{
		IncludeNotification: true,
		IncludeReport:       true,
		IncludeSummary:      true,
		ShowPrice:           true,
		ShowCurves:          r.cfg.Notification.IncludeChart,
		ShowBrokers:         r.cfg.Notification.IncludeBrokers,
		ShowPrediction:      true,
		ShowOpportunity:     true,
		ShowFearGreed:       true,
		ShowGainLoss:        true,
		ChartTimeframes:     r.cfg.Notification.ChartTimeframes,
		InvestmentAmount:    r.cfg.InvestmentAmount,
	}
}

// apply overlays every non-nil field of the override onto o.
func (o *CoinOptions) apply(ov *config.CoinOptionOverrides) {
	if ov == nil {
		return
	}
	if ov.IncludeNotification != nil {
		o.IncludeNotification = *ov.IncludeNotification
	}
	if ov.IncludeReport != nil {
		o.IncludeReport = *ov.IncludeReport
	}
	if ov.IncludeSummary != nil {
		o.IncludeSummary = *ov.IncludeSummary
	}
	if ov.ShowPrice != nil {
		o.ShowPrice = *ov.ShowPrice
	}
	if ov.ShowCurves != nil {
		o.ShowCurves = *ov.ShowCurves
	}
	if ov.ShowBrokers != nil {
		o.ShowBrokers = *ov.ShowBrokers
	}
	if ov.ShowPrediction != nil {
		o.ShowPrediction = *ov.ShowPrediction
	}
	if ov.ShowOpportunity != nil {
		o.ShowOpportunity = *ov.ShowOpportunity
	}
	if ov.ShowFearGreed != nil {
		o.ShowFearGreed = *ov.ShowFearGreed
	}
	if ov.ShowGainLoss != nil {
		o.ShowGainLoss = *ov.ShowGainLoss
	}
	if ov.NotificationHours != nil {
		o.NotificationHours = *ov.NotificationHours
	}
	if ov.ReportHours != nil {
		o.ReportHours = *ov.ReportHours
	}
	if ov.ChartTimeframes != nil {
		o.ChartTimeframes = *ov.ChartTimeframes
	}
	if ov.InvestmentAmount != nil {
		o.InvestmentAmount = *ov.InvestmentAmount
	}
}

// ResolveThresholds merges the global "default" threshold block with the
// symbol-specific one, symbol fields winning.
func (r *SettingsResolver) ResolveThresholds(symbol string) config.Thresholds {
	var merged config.Thresholds
	m := r.cfg.Notification.Thresholds
	if m == nil {
		return merged
	}
	merged = merged.Merge(m["default"])
	merged = merged.Merge(m[upperSymbol(symbol)])
	return merged
}
