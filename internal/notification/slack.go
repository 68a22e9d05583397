package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SlackNotifier implements the Notifier interface for Slack
type SlackNotifier struct {
	BaseNotifier
}

var _ Notifier = (*SlackNotifier)(nil)

// NewSlackNotifier creates a new Slack notifier
func NewSlackNotifier(config NotificationConfig) *SlackNotifier {
	slack := &SlackNotifier{}
	_ = slack.Configure(config)
	return slack
}

// slackMessage represents a Slack message payload
type slackMessage struct {
	Channel     string            `json:"channel"`
	Text        string            `json:"text,omitempty"`
	Attachments []slackAttachment `json:"attachments,omitempty"`
}

// slackAttachment represents a Slack message attachment
type slackAttachment struct {
	Color  string       `json:"color"` // good, warning, danger
	Fields []slackField `json:"fields,omitempty"`
	Footer string       `json:"footer,omitempty"`
	Ts     json.Number  `json:"ts,omitempty"`
}

// slackField represents a field in a Slack attachment
type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// sendSlackMessage sends a message to Slack
func (s *SlackNotifier) sendSlackMessage(message slackMessage) error {
	if message.Channel == "" {
		message.Channel = s.Config.Channel
	}

	jsonMessage, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.Config.Endpoint, bytes.NewBuffer(jsonMessage))
	if err != nil {
		return fmt.Errorf("failed to create Slack request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if s.Config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Config.Token)
	}

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack API returned non-success status code: %d", resp.StatusCode)
	}

	return nil
}

func (s *SlackNotifier) attachment(color string, fields ...slackField) slackAttachment {
	fields = append(fields, slackField{Title: "Host", Value: getHostname(), Short: true})
	return slackAttachment{
		Color:  color,
		Fields: fields,
		Footer: "pubctl",
		Ts:     json.Number(fmt.Sprintf("%d", time.Now().Unix())),
	}
}

// SendChannelSet sends a Slack notification when a release is set on a channel
func (s *SlackNotifier) SendChannelSet(channel, publicationID string) error {
	if !s.ShouldNotifyOnSet() {
		return nil
	}

	return s.sendSlackMessage(slackMessage{
		Text: fmt.Sprintf("Channel *%s* now serves publication *%s*", channel, publicationID),
		Attachments: []slackAttachment{s.attachment("good",
			slackField{Title: "Channel", Value: channel, Short: true},
			slackField{Title: "Publication", Value: publicationID, Short: true},
		)},
	})
}

// SendRollback sends a Slack notification for a rollback
func (s *SlackNotifier) SendRollback(channel, channelID, targetPublicationID string, reverted bool) error {
	if !s.ShouldNotifyOnRollback() {
		return nil
	}

	text := fmt.Sprintf("Rolled back entry *%s* on channel *%s*; users receive publication *%s*", channelID, channel, targetPublicationID)
	reason := "live publication unchanged"
	if reverted {
		reason = "reverted to previous publication"
	}

	return s.sendSlackMessage(slackMessage{
		Text: text,
		Attachments: []slackAttachment{s.attachment("warning",
			slackField{Title: "Channel", Value: channel, Short: true},
			slackField{Title: "Channel ID", Value: channelID, Short: true},
			slackField{Title: "Publication", Value: targetPublicationID, Short: true},
			slackField{Title: "Effect", Value: reason, Short: true},
		)},
	})
}
