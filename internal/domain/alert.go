package domain

// AlertLevel ranks an alert's urgency. Ordering matters: the daemon
// compares levels to decide what reaches Telegram.
type AlertLevel int

const (
	AlertInfo AlertLevel = iota
	AlertWarning
	AlertImportant
	AlertCritical
)

// Label returns the French display name used in logs and messages.
func (l AlertLevel) Label() string {
	switch l {
	case AlertCritical:
		return "CRITIQUE"
	case AlertImportant:
		return "IMPORTANT"
	case AlertWarning:
		return "ATTENTION"
	default:
		return "INFO"
	}
}

// Emoji returns the marker prefixed to delivered alert messages.
func (l AlertLevel) Emoji() string {
	switch l {
	case AlertCritical:
		return "🚨"
	case AlertImportant:
		return "❗"
	case AlertWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// Alert is one triggered condition for a symbol, computed fresh each
// cycle. Not persisted anywhere.
type Alert struct {
	Symbol  string     `json:"symbol" yaml:"symbol"`
	Level   AlertLevel `json:"level" yaml:"level"`
	Message string     `json:"message" yaml:"message"`
}
