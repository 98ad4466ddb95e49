package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Slack posts messages to a Slack incoming webhook.
type Slack struct {
	webhookURL string
	client     *http.Client
}

// NewSlack creates a Slack notifier for the given webhook URL.
func NewSlack(webhookURL string) (*Slack, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("slack: webhook URL is required (set SLACK_WEBHOOK_URL)")
	}
	return &Slack{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *Slack) Name() string { return "slack" }

// Send posts the message text to the webhook.
func (s *Slack) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(map[string]string{"text": decorate(msg)})
	if err != nil {
		return fmt.Errorf("slack: marshalling message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: posting webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("slack: webhook returned %d", resp.StatusCode)
	}
	return nil
}

func decorate(msg Message) string {
	switch msg.Level {
	case LevelSuccess:
		return ":white_check_mark: " + msg.Text
	case LevelError:
		return ":rotating_light: " + msg.Text
	default:
		return msg.Text
	}
}
