// Package notify implements the best-effort notification side channel: a
// plain-text webhook sender behind an asynchronous dispatcher. Nothing in
// this package ever surfaces an error to the business operation that
// triggered the message.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const sendTimeout = 10 * time.Second

// WebhookSender posts plain-text messages to a configured webhook URL.
type WebhookSender struct {
	url    string
	client *http.Client
}

func NewWebhookSender(url string) *WebhookSender {
	return &WebhookSender{
		url:    url,
		client: &http.Client{Timeout: sendTimeout},
	}
}

// Send delivers a single message. Called by the dispatcher workers, never
// directly by the services.
func (w *WebhookSender) Send(ctx context.Context, message string) error {
	if w.url == "" {
		return fmt.Errorf("webhook url not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
