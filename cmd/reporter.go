package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/cr-imson-co/layer-updater/config"
	"github.com/cr-imson-co/layer-updater/notify"
	"github.com/cr-imson-co/layer-updater/pipeline"
	"github.com/cr-imson-co/layer-updater/status"
)

// reporter pushes run outcomes to the commit-status API and chat channels.
// Either side may be unconfigured; reporting is always best effort.
type reporter struct {
	status    *status.Client
	notifiers []notify.Notifier
	log       pipeline.Logger
	layerName string
}

func newReporter(cfg *config.Config, log pipeline.Logger, getenv func(string) string) *reporter {
	r := &reporter{log: log, layerName: cfg.Layer.Name}

	sc, err := status.New(getenv("GITLAB_URL"), getenv("GITLAB_TOKEN"), getenv("CI_PROJECT_ID"), getenv("CI_COMMIT_SHA"))
	if err != nil {
		log.Debug("commit status reporting disabled", map[string]any{"reason": err.Error()})
	} else {
		r.status = sc
	}

	for _, channel := range cfg.Notify.Channels {
		var n notify.Notifier
		var nerr error
		switch channel {
		case "slack":
			n, nerr = notify.NewSlack(getenv("SLACK_WEBHOOK_URL"))
		case "telegram":
			n, nerr = notify.NewTelegram(getenv("TELEGRAM_BOT_TOKEN"), getenv("TELEGRAM_CHAT_ID"))
		default:
			log.Warn("unknown notify channel", map[string]any{"channel": channel})
			continue
		}
		if nerr != nil {
			log.Warn("notify channel disabled", map[string]any{"channel": channel, "reason": nerr.Error()})
			continue
		}
		r.notifiers = append(r.notifiers, n)
	}

	return r
}

func (r *reporter) running(ctx context.Context, runID string) {
	if r.status == nil {
		return
	}
	if err := r.status.Publish(ctx, status.StateRunning, "layer build "+runID); err != nil {
		r.log.Warn("commit status update failed", map[string]any{"error": err.Error()})
	}
}

// finished reports the final outcome. It uses a fresh context so that
// aborted runs still get reported.
func (r *reporter) finished(outcome pipeline.Outcome, bc *pipeline.BuildContext, runErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if r.status != nil {
		state := statusFor(outcome)
		desc := fmt.Sprintf("layer build %s", outcome)
		if err := r.status.Publish(ctx, state, desc); err != nil {
			r.log.Warn("commit status update failed", map[string]any{"error": err.Error()})
		}
	}

	notify.Broadcast(ctx, r.notifiers, r.message(outcome, bc, runErr), r.log)
}

// statusFor maps outcomes to commit states. Unstable counts as failed.
func statusFor(outcome pipeline.Outcome) status.State {
	switch outcome {
	case pipeline.OutcomeSuccess:
		return status.StateSuccess
	case pipeline.OutcomeCanceled:
		return status.StateCanceled
	default:
		return status.StateFailed
	}
}

func (r *reporter) message(outcome pipeline.Outcome, bc *pipeline.BuildContext, runErr error) notify.Message {
	switch outcome {
	case pipeline.OutcomeSuccess:
		text := fmt.Sprintf("λ %s layer build succeeded (run %s)", r.layerName, bc.RunID)
		if bc.Published {
			text += fmt.Sprintf(", published v%d", bc.LayerVersion)
		}
		return notify.Message{Level: notify.LevelSuccess, Text: text}
	case pipeline.OutcomeCanceled:
		return notify.Message{
			Level: notify.LevelInfo,
			Text:  fmt.Sprintf("λ %s layer build canceled (run %s)", r.layerName, bc.RunID),
		}
	default:
		return notify.Message{
			Level: notify.LevelError,
			Text:  fmt.Sprintf("λ! %s layer build %s (run %s): %v", r.layerName, outcome, bc.RunID, runErr),
		}
	}
}
