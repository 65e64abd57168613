package domain

import "time"

// RunStats accumulates daemon counters persisted after each cycle.
type RunStats struct {
	TotalChecks   int       `json:"total_checks"`
	TotalAlerts   int       `json:"total_alerts"`
	TotalErrors   int       `json:"total_errors"`
	UptimeSeconds int       `json:"uptime_seconds"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// StatsSummary aggregates RunStats rows over a window for display.
type StatsSummary struct {
	TotalChecks     int     `json:"total_checks"`
	TotalAlerts     int     `json:"total_alerts"`
	TotalErrors     int     `json:"total_errors"`
	AvgChecksPerDay float64 `json:"avg_checks_per_day"`
	WindowDays      int     `json:"window_days"`
}
