package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram sends messages through the Telegram bot API.
type Telegram struct {
	botToken string
	chatID   string
	client   *http.Client
	apiBase  string // overridable for tests
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(botToken, chatID string) (*Telegram, error) {
	if botToken == "" {
		return nil, fmt.Errorf("telegram: bot_token is required (set TELEGRAM_BOT_TOKEN)")
	}
	if chatID == "" {
		return nil, fmt.Errorf("telegram: chat_id is required (set TELEGRAM_CHAT_ID)")
	}
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 30 * time.Second},
		apiBase:  telegramAPIBase,
	}, nil
}

func (t *Telegram) Name() string { return "telegram" }

// Send delivers the message via sendMessage.
func (t *Telegram) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    decorate(msg),
	})
	if err != nil {
		return fmt.Errorf("telegram: marshalling message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: sending message: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("telegram: decoding response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram: sendMessage failed: %s", result.Description)
	}
	return nil
}
