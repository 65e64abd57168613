package usecase_test

import (
	"testing"

	"github.com/cryptofam/crypto_notify_bot/internal/config"
	"github.com/cryptofam/crypto_notify_bot/internal/usecase"
)

func strPtr(s string) *string { return &s }

func contentConfig(byCoin map[string]*config.ContentOverride) *config.Config {
	cfg := &config.Config{}
	cfg.Notification.ContentByCoin = byCoin
	cfg.Notification.SendGlossary = true
	return cfg
}

func TestResolveContentFieldLevelMerge(t *testing.T) {
	cfg := contentConfig(map[string]*config.ContentOverride{
		"default": {
			Title: strPtr("🔔 {symbol}"),
			Intro: strPtr("Voici les nouvelles de {symbol}"),
		},
		"BTC": {
			Title: strPtr("👑 Bitcoin"),
		},
	})
	r := usecase.NewContentResolver(cfg)

	content := r.ResolveContent("btc")
	if content.Title != "👑 Bitcoin" {
		t.Errorf("Title = %q, want the BTC override", content.Title)
	}
	// Setting only title must not erase the default intro.
	if content.Intro != "Voici les nouvelles de {symbol}" {
		t.Errorf("Intro = %q, want the default intro", content.Intro)
	}
}

func TestResolveContentGlossarySubMerge(t *testing.T) {
	cfg := contentConfig(map[string]*config.ContentOverride{
		"default": {
			Glossary: &config.GlossaryOverride{
				Title:   strPtr("📖 Lexique maison"),
				Entries: map[string]string{"RSI": "force relative", "MACD": "tendance"},
			},
		},
		"ETH": {
			Glossary: &config.GlossaryOverride{
				Intro:   strPtr("Les termes du jour"),
				Entries: map[string]string{"Gas": "frais de transaction"},
			},
		},
	})
	r := usecase.NewContentResolver(cfg)

	content := r.ResolveContent("ETH")
	if content.Glossary.Title != "📖 Lexique maison" {
		t.Errorf("glossary title should survive the sub-merge, got %q", content.Glossary.Title)
	}
	if content.Glossary.Intro != "Les termes du jour" {
		t.Errorf("glossary intro = %q", content.Glossary.Intro)
	}
	// Entries replace wholesale, not key by key.
	if len(content.Glossary.Entries) != 1 {
		t.Fatalf("entries should be replaced wholesale, got %v", content.Glossary.Entries)
	}
	if content.Glossary.Entries["Gas"] != "frais de transaction" {
		t.Errorf("entries = %v", content.Glossary.Entries)
	}
}

func TestResolveContentCustomLinesReplace(t *testing.T) {
	defLines := []string{"ligne un", "ligne deux"}
	coinLines := []string{"ligne spéciale"}
	cfg := contentConfig(map[string]*config.ContentOverride{
		"default": {CustomLines: &defLines},
		"SOL":     {CustomLines: &coinLines},
	})
	r := usecase.NewContentResolver(cfg)

	content := r.ResolveContent("SOL")
	if len(content.CustomLines) != 1 || content.CustomLines[0] != "ligne spéciale" {
		t.Errorf("custom lines should replace the whole list, got %v", content.CustomLines)
	}
}

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		ctx  map[string]string
		want string
	}{
		{"substitution", "Prix de {symbol} : {price}", map[string]string{"symbol": "BTC", "price": "45000.00€"}, "Prix de BTC : 45000.00€"},
		{"missing key renders empty", "Gain : {gain} !", nil, "Gain :  !"},
		{"no placeholders", "bonjour", nil, "bonjour"},
		{"unclosed brace kept literal", "a {symbol", map[string]string{"symbol": "X"}, "a {symbol"},
		{"trims whitespace", "  {symbol}  ", map[string]string{"symbol": "BTC"}, "BTC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecase.RenderTemplate(tt.tmpl, tt.ctx)
			if got != tt.want {
				t.Errorf("RenderTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}
