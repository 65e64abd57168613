package config

// CoinOptionOverrides is one overlay layer of per-coin display options.
// Every field is optional; nil means "inherit from the layer below".
// Resolution applies layers as sequential field assignment so the
// last-write-wins contract stays explicit and type-checked.
type CoinOptionOverrides struct {
	IncludeNotification *bool `yaml:"include_notification"`
	IncludeReport       *bool `yaml:"include_report"`
	IncludeSummary      *bool `yaml:"include_summary"`

	ShowPrice       *bool `yaml:"show_price"`
	ShowCurves      *bool `yaml:"show_curves"`
	ShowBrokers     *bool `yaml:"show_brokers"`
	ShowPrediction  *bool `yaml:"show_prediction"`
	ShowOpportunity *bool `yaml:"show_opportunity"`
	ShowFearGreed   *bool `yaml:"show_fear_greed"`
	ShowGainLoss    *bool `yaml:"show_gain_loss"`

	NotificationHours *HourList      `yaml:"notification_hours"`
	ReportHours       *HourList      `yaml:"report_hours"`
	ChartTimeframes   *TimeframeList `yaml:"chart_timeframes"`

	InvestmentAmount *float64 `yaml:"investment_amount"`
}

// CoinProfile is a named, hour-gated override bundle. A profile whose
// hour list is empty (or entirely malformed) is always active.
type CoinProfile struct {
	Name    string              `yaml:"name"`
	Hours   HourList            `yaml:"hours"`
	Options CoinOptionOverrides `yaml:"options"`
}

// CoinSettings is the raw per-coin configuration block. When Profiles is
// non-empty resolution starts from Default (if present) and overlays each
// active profile in list order; otherwise the inline options apply directly.
type CoinSettings struct {
	CoinOptionOverrides `yaml:",inline"`

	Default  *CoinOptionOverrides `yaml:"default"`
	Profiles []CoinProfile        `yaml:"profiles"`
}

// Thresholds gate notification sending. Bounds are optional; every bound
// that is set must be satisfied.
type Thresholds struct {
	MinScore     *int     `yaml:"min_score"`
	MaxScore     *int     `yaml:"max_score"`
	MinChangePct *float64 `yaml:"min_change_pct"`
	MaxChangePct *float64 `yaml:"max_change_pct"`
}

// Merge overlays o onto t field by field and returns the result.
func (t Thresholds) Merge(o *Thresholds) Thresholds {
	if o == nil {
		return t
	}
	if o.MinScore != nil {
		t.MinScore = o.MinScore
	}
	if o.MaxScore != nil {
		t.MaxScore = o.MaxScore
	}
	if o.MinChangePct != nil {
		t.MinChangePct = o.MinChangePct
	}
	if o.MaxChangePct != nil {
		t.MaxChangePct = o.MaxChangePct
	}
	return t
}
