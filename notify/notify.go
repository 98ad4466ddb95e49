// Package notify delivers run outcome notifications to chat channels.
package notify

import (
	"context"

	"github.com/cr-imson-co/layer-updater/pipeline"
)

// Level classifies a notification for channel-side formatting.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Message is a single outbound notification.
type Message struct {
	Level Level
	Text  string
}

// Notifier sends a message to one chat channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Broadcast delivers a message to every notifier, best effort. Delivery
// failures are logged, never fatal: a broken webhook must not change the
// build outcome.
func Broadcast(ctx context.Context, notifiers []Notifier, msg Message, log pipeline.Logger) {
	for _, n := range notifiers {
		if err := n.Send(ctx, msg); err != nil {
			log.Warn("notification delivery failed", map[string]any{
				"channel": n.Name(),
				"error":   err.Error(),
			})
		}
	}
}
