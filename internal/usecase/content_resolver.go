package usecase

import (
	"strings"

	"github.com/cryptofam/crypto_notify_bot/internal/config"
)

// Glossary is the resolved glossary block of a notification.
type Glossary struct {
	Enabled bool
	Title   string
	Intro   string
	Entries map[string]string
}

// NotificationContent is the resolved text bundle for one symbol.
type NotificationContent struct {
	Title       string
	Intro       string
	Outro       string
	CustomLines []string
	Glossary    Glossary
}

// DefaultGlossaryEntries are the stock term definitions appended when no
// per-coin override supplies its own.
var DefaultGlossaryEntries = map[string]string{
	"RSI":          "Indicateur de force relative (0-100). Au-dessus de 70 : suracheté, en dessous de 30 : survendu.",
	"MACD":         "Indicateur de tendance basé sur des moyennes mobiles. Un histogramme positif suggère une dynamique haussière.",
	"Support":      "Niveau de prix où les acheteurs ont tendance à intervenir, freinant la baisse.",
	"Résistance":   "Niveau de prix où les vendeurs ont tendance à intervenir, freinant la hausse.",
	"Volume":       "Montant total échangé sur la période. Un volume élevé confirme un mouvement.",
	"Volatilité":   "Amplitude des variations de prix. Plus elle est élevée, plus le risque est grand.",
	"MA20":         "Moyenne mobile sur 20 périodes, tendance de court terme.",
	"Fear & Greed": "Indice de sentiment du marché (0-100). Bas : peur, haut : avidité.",
	"DCA":          "Achat régulier d'un montant fixe pour lisser le prix d'entrée.",
}

// ContentResolver merges default and per-coin notification text.
type ContentResolver struct {
	cfg *config.Config
}

func NewContentResolver(cfg *config.Config) *ContentResolver {
	return &ContentResolver{cfg: cfg}
}

// ResolveContent merges content["default"] with content[SYMBOL] field by
// field. Custom lines replace wholesale; the glossary sub-merges its
// enabled/title/intro fields and replaces entries wholesale when the
// override provides any.
func (r *ContentResolver) ResolveContent(symbol string) NotificationContent {
	content := NotificationContent{
		Title: "🔔 <b>{symbol}</b>",
		Glossary: Glossary{
			Enabled: r.cfg.Notification.SendGlossary,
			Title:   "📖 <b>Lexique</b>",
			Entries: DefaultGlossaryEntries,
		},
	}

	m := r.cfg.Notification.ContentByCoin
	if m == nil {
		return content
	}
	content.applyOverride(m["default"])
	content.applyOverride(m[upperSymbol(symbol)])
	return content
}

func (c *NotificationContent) applyOverride(ov *config.ContentOverride) {
	if ov == nil {
		return
	}
	if ov.Title != nil {
		c.Title = *ov.Title
	}
	if ov.Intro != nil {
		c.Intro = *ov.Intro
	}
	if ov.Outro != nil {
		c.Outro = *ov.Outro
	}
	if ov.CustomLines != nil {
		c.CustomLines = *ov.CustomLines
	}
	if g := ov.Glossary; g != nil {
		if g.Enabled != nil {
			c.Glossary.Enabled = *g.Enabled
		}
		if g.Title != nil {
			c.Glossary.Title = *g.Title
		}
		if g.Intro != nil {
			c.Glossary.Intro = *g.Intro
		}
		if g.Entries != nil {
			c.Glossary.Entries = g.Entries
		}
	}
}

// RenderTemplate substitutes {placeholder} tokens from ctx. Unknown
// placeholders render as the empty string; the result is space-trimmed.
func RenderTemplate(tmpl string, ctx map[string]string) string {
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); {
		open := strings.IndexByte(tmpl[i:], '{')
		if open < 0 {
			b.WriteString(tmpl[i:])
			break
		}
		open += i
		close := strings.IndexByte(tmpl[open:], '}')
		if close < 0 {
			b.WriteString(tmpl[i:])
			break
		}
		close += open
		b.WriteString(tmpl[i:open])
		key := tmpl[open+1 : close]
		b.WriteString(ctx[key])
		i = close + 1
	}
	return strings.TrimSpace(b.String())
}

func upperSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
