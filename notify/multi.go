package notify

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// MultiNotifier sends notifications to multiple notifiers.
type MultiNotifier struct {
	Notifiers []Notifier
	Logger    *slog.Logger
}

// NewMultiNotifier creates a notifier that fans out to multiple notifiers.
// Errors from individual notifiers are logged but don't stop other notifications.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{
		Notifiers: notifiers,
		Logger:    slog.Default(),
	}
}

// Notify implements Notifier.
func (n *MultiNotifier) Notify(ctx context.Context, event Event) error {
	var lastErr error
	for _, notifier := range n.Notifiers {
		if err := notifier.Notify(ctx, event); err != nil {
			lastErr = err
			if n.Logger != nil {
				n.Logger.Warn("notifier failed",
					"error", err,
					"event_type", event.Type,
				)
			}
		}
	}
	return lastErr // Return last error, if any
}

// NopNotifier is a no-op notifier that discards all notifications.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(ctx context.Context, event Event) error {
	return nil
}

// New builds the notifier tidynote runs with: always a LogNotifier, plus a
// webhook when webhookURL is set. Slack incoming-webhook URLs get the Slack
// payload format.
func New(webhookURL string, logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	logNotifier := NewLogNotifier(logger)
	if webhookURL == "" {
		return logNotifier
	}

	var remote Notifier = NewWebhookNotifier(webhookURL, nil)
	if isSlackURL(webhookURL) {
		remote = NewSlackNotifier(webhookURL)
	}

	multi := NewMultiNotifier(logNotifier, remote)
	multi.Logger = logger
	return multi
}

func isSlackURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), "hooks.slack.com")
}
