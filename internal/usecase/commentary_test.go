package usecase_test

import (
	"testing"

	"github.com/cryptofam/crypto_notify_bot/internal/usecase"
)

func TestRSICommentExhaustive(t *testing.T) {
	// Every value in [0,100] must produce exactly one comment.
	for v := 0.0; v <= 100.0; v += 0.5 {
		rsi := v
		comment, ok := usecase.RSIComment(&rsi)
		if !ok || comment == "" {
			t.Fatalf("RSIComment(%v) produced no comment", v)
		}
	}
}

func TestRSICommentBands(t *testing.T) {
	tests := []struct {
		rsi  float64
		want string
	}{
		{85, "RSI en surchauffe, correction probable 🔴"},
		{80, "RSI en surchauffe, correction probable 🔴"},
		{75, "RSI suracheté, prudence 🔴"},
		{65, "RSI élevé, le marché s'échauffe"},
		{50, "RSI neutre"},
		{35, "RSI bas, prix attractif"},
		{25, "RSI survendu, rebond possible 🟢"},
		{20, "RSI en capitulation, le marché vend tout 🟢"},
		{5, "RSI en capitulation, le marché vend tout 🟢"},
	}
	for _, tt := range tests {
		rsi := tt.rsi
		got, ok := usecase.RSIComment(&rsi)
		if !ok || got != tt.want {
			t.Errorf("RSIComment(%v) = %q, want %q", tt.rsi, got, tt.want)
		}
	}
}

func TestCommentsMissingInputs(t *testing.T) {
	if _, ok := usecase.RSIComment(nil); ok {
		t.Error("RSIComment(nil) should report no comment")
	}
	if _, ok := usecase.ChangeComment(nil); ok {
		t.Error("ChangeComment(nil) should report no comment")
	}
	if _, ok := usecase.FearGreedComment(nil); ok {
		t.Error("FearGreedComment(nil) should report no comment")
	}
	if _, ok := usecase.VolumeComment(0); ok {
		t.Error("VolumeComment(0) should report no comment")
	}
	if _, ok := usecase.PriceLevelComment(100, nil, nil); ok {
		t.Error("PriceLevelComment without levels should report no comment")
	}
	if _, ok := usecase.MAComment(100, 0, 0); ok {
		t.Error("MAComment without MA20 should report no comment")
	}
}

func TestChangeCommentBands(t *testing.T) {
	tests := []struct {
		change float64
		want   string
	}{
		{8, "Forte hausse aujourd'hui !"},
		{3, "Hausse modérée"},
		{0, "Prix stable"},
		{-3, "Baisse modérée"},
		{-8, "Forte baisse aujourd'hui"},
	}
	for _, tt := range tests {
		c := tt.change
		got, ok := usecase.ChangeComment(&c)
		if !ok || got != tt.want {
			t.Errorf("ChangeComment(%v) = %q, want %q", tt.change, got, tt.want)
		}
	}
}

func TestFearGreedCommentBands(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{10, "Peur extrême : le marché vend massivement."},
		{30, "Peur sur le marché, prudence recommandée."},
		{50, "Sentiment neutre, le marché reste équilibré."},
		{60, "Avidité croissante : l'optimisme domine."},
		{90, "Avidité extrême : attention au retournement."},
	}
	for _, tt := range tests {
		idx := tt.index
		got, ok := usecase.FearGreedComment(&idx)
		if !ok || got != tt.want {
			t.Errorf("FearGreedComment(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestPriceLevelCommentSupportWins(t *testing.T) {
	support := 99.0
	resistance := 101.0
	got, ok := usecase.PriceLevelComment(100, &support, &resistance)
	if !ok {
		t.Fatal("expected a comment when both levels are close")
	}
	if got != "Proche du support (99.00€) 🟢" {
		t.Errorf("support proximity should win, got %q", got)
	}
}
