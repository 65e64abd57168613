package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestSplitMessageShort(t *testing.T) {
	chunks := splitMessage("hello")
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Errorf("chunks = %q", chunks)
	}
}

func TestSplitMessagePrefersParagraphs(t *testing.T) {
	para := strings.Repeat("a", 3000)
	text := para + "\n\n" + para

	chunks := splitMessage(text)
	if len(chunks) != 2 {
		t.Fatalf("chunk count = %d, want 2", len(chunks))
	}
	if chunks[0] != para || chunks[1] != para {
		t.Error("chunks should split on the paragraph boundary")
	}
}

func TestSplitMessageFallsBackToLines(t *testing.T) {
	line := strings.Repeat("b", 2500)
	text := line + "\n" + line + "\n" + line

	for _, chunk := range splitMessage(text) {
		if len(chunk) > maxMessageLength {
			t.Errorf("chunk length %d exceeds limit", len(chunk))
		}
		if strings.HasPrefix(chunk, "\n") || strings.HasSuffix(chunk, "\n") {
			t.Error("chunk has boundary whitespace")
		}
	}
}

func TestSplitMessageHardCutKeepsRunesIntact(t *testing.T) {
	// No newlines at all, multi-byte runes throughout.
	text := strings.Repeat("é", 5000)

	for _, chunk := range splitMessage(text) {
		if len(chunk) > maxMessageLength {
			t.Errorf("chunk length %d exceeds limit", len(chunk))
		}
		for _, r := range chunk {
			if r != 'é' {
				t.Fatalf("rune split across chunks, got %q", r)
			}
		}
	}
}

func TestSendMessageTestModeSkipsNetwork(t *testing.T) {
	c := NewClient("token", "chat", 0, true, zap.NewNop())
	// Unreachable base URL proves nothing is sent.
	c.baseURL = "http://127.0.0.1:1"

	if err := c.SendMessage(context.Background(), "bonjour"); err != nil {
		t.Fatalf("test mode send: %v", err)
	}
}

func TestSendMessagePostsHTML(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient("token", "chat42", 0, false, zap.NewNop())
	c.baseURL = srv.URL

	if err := c.SendMessage(context.Background(), "<b>BTC</b> 45000€"); err != nil {
		t.Fatal(err)
	}
	if got.ChatID != "chat42" {
		t.Errorf("chat id = %q", got.ChatID)
	}
	if got.ParseMode != "HTML" {
		t.Errorf("parse mode = %q", got.ParseMode)
	}
	if got.Text != "<b>BTC</b> 45000€" {
		t.Errorf("text = %q", got.Text)
	}
}

func TestSendMessageAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: message is too long"}`))
	}))
	defer srv.Close()

	c := NewClient("token", "chat", 0, false, zap.NewNop())
	c.baseURL = srv.URL

	err := c.SendMessage(context.Background(), "oops")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "message is too long") {
		t.Errorf("error should carry the API description: %v", err)
	}
}
