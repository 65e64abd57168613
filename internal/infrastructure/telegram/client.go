package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Telegram caps messages at 4096 characters.
const maxMessageLength = 4096

// Client posts messages to the Telegram Bot API with parse_mode=HTML.
// In test mode it logs instead of sending.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	chatID       string
	messageDelay time.Duration
	testMode     bool
	logger       *zap.Logger

	lastSend time.Time
}

func NewClient(token, chatID string, messageDelay time.Duration, testMode bool, logger *zap.Logger) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      fmt.Sprintf("https://api.telegram.org/bot%s", token),
		chatID:       chatID,
		messageDelay: messageDelay,
		testMode:     testMode,
		logger:       logger,
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage delivers a message, splitting it at 4096 characters on
// paragraph boundaries and pacing consecutive sends by the configured
// delay.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	for _, chunk := range splitMessage(text) {
		if c.testMode {
			c.logger.Info("test mode, message not sent", zap.Int("length", len(chunk)))
			continue
		}
		if err := c.sendChunk(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) sendChunk(ctx context.Context, text string) error {
	if c.messageDelay > 0 && !c.lastSend.IsZero() {
		if wait := c.messageDelay - time.Since(c.lastSend); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                c.chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal sendMessage: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sendMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post sendMessage: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed apiResponse
	_ = json.Unmarshal(raw, &parsed)
	if resp.StatusCode != http.StatusOK || !parsed.OK {
		return fmt.Errorf("telegram sendMessage failed (%d): %s", resp.StatusCode, parsed.Description)
	}

	c.lastSend = time.Now()
	return nil
}

// splitMessage cuts text into chunks small enough for Telegram,
// preferring paragraph boundaries, then line boundaries, then a hard
// cut. The limit is applied to bytes, which never exceeds what Telegram
// counts in characters.
func splitMessage(text string) []string {
	if len(text) <= maxMessageLength {
		return []string{text}
	}

	var out []string
	for len(text) > 0 {
		if len(text) <= maxMessageLength {
			if chunk := strings.TrimSpace(text); chunk != "" {
				out = append(out, chunk)
			}
			break
		}
		window := text[:maxMessageLength]
		cut := strings.LastIndex(window, "\n\n")
		if cut <= 0 {
			cut = strings.LastIndex(window, "\n")
		}
		if cut <= 0 {
			// Hard cut, aligned back to a rune boundary.
			cut = maxMessageLength
			for cut > 0 && !isRuneStart(text[cut]) {
				cut--
			}
		}
		if chunk := strings.TrimSpace(text[:cut]); chunk != "" {
			out = append(out, chunk)
		}
		text = strings.TrimLeft(text[cut:], "\n ")
	}
	return out
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
