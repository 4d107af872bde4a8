// Package notify delivers pass completion and failure messages to outbound
// webhooks. Delivery is best effort: the sync owns no guarantee.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/klauern/notesync/internal/logging"
)

// webhookTimeout bounds each delivery attempt.
const webhookTimeout = 10 * time.Second

// Notifier receives a message about a completed or failed pass.
type Notifier interface {
	Notify(ctx context.Context, message string, isError bool)
}

// Noop is the notifier used when no webhooks are configured.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, string, bool) {}

// Webhook posts to Slack and/or Discord incoming webhooks. Empty URLs are
// skipped. Failures are logged and swallowed.
type Webhook struct {
	slackURL   string
	discordURL string
	client     *http.Client
}

// NewWebhook creates a webhook notifier. Pass empty strings to disable a
// channel.
func NewWebhook(slackURL, discordURL string) *Webhook {
	return &Webhook{
		slackURL:   slackURL,
		discordURL: discordURL,
		client:     &http.Client{Timeout: webhookTimeout},
	}
}

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, message string, isError bool) {
	prefix := "notesync"
	if isError {
		prefix = "notesync error"
	}
	text := fmt.Sprintf("%s: %s", prefix, message)

	if w.slackURL != "" {
		w.post(ctx, w.slackURL, map[string]string{
			"text":     text,
			"username": "notesync",
		})
	}
	if w.discordURL != "" {
		w.post(ctx, w.discordURL, map[string]string{
			"content": text,
		})
	}
}

func (w *Webhook) post(ctx context.Context, url string, payload map[string]string) {
	body, err := json.Marshal(payload)
	if err != nil {
		logging.Error("failed to encode notification", logging.Err(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		logging.Error("failed to build notification request", logging.Err(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		logging.Warn("notification delivery failed", logging.Err(err))
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.Warn("notification rejected",
			logging.Operation("notify"),
			logging.Count(resp.StatusCode),
		)
		return
	}
	logging.Debug("notification sent")
}
