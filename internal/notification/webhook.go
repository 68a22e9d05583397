package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookNotifier implements the Notifier interface for webhook notifications
type WebhookNotifier struct {
	BaseNotifier
}

var _ Notifier = (*WebhookNotifier)(nil)

// WebhookPayload represents the common structure for all webhook payloads
type WebhookPayload struct {
	Event     string                 `json:"event"`
	Channel   string                 `json:"channel"`
	Timestamp string                 `json:"timestamp"`
	Details   map[string]interface{} `json:"details"`
	Host      string                 `json:"host,omitempty"`
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(config NotificationConfig) *WebhookNotifier {
	webhook := &WebhookNotifier{}
	_ = webhook.Configure(config)
	return webhook
}

// sendWebhook sends a webhook notification
func (w *WebhookNotifier) sendWebhook(payload WebhookPayload) error {
	if payload.Host == "" {
		payload.Host = getHostname()
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, w.Config.Endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if w.Config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+w.Config.Token)
	}

	resp, err := w.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned non-success status code: %d", resp.StatusCode)
	}

	return nil
}

// SendChannelSet sends a webhook notification when a release is set on a channel
func (w *WebhookNotifier) SendChannelSet(channel, publicationID string) error {
	if !w.ShouldNotifyOnSet() {
		return nil
	}

	return w.sendWebhook(WebhookPayload{
		Event:     "channel_set",
		Channel:   channel,
		Timestamp: time.Now().Format(time.RFC3339),
		Details: map[string]interface{}{
			"publication_id": publicationID,
		},
	})
}

// SendRollback sends a webhook notification when a channel entry is rolled back
func (w *WebhookNotifier) SendRollback(channel, channelID, targetPublicationID string, reverted bool) error {
	if !w.ShouldNotifyOnRollback() {
		return nil
	}

	return w.sendWebhook(WebhookPayload{
		Event:     "channel_rollback",
		Channel:   channel,
		Timestamp: time.Now().Format(time.RFC3339),
		Details: map[string]interface{}{
			"channel_id":            channelID,
			"target_publication_id": targetPublicationID,
			"reverted":              reverted,
		},
	})
}
