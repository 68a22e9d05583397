// Package notification sends notices about channel changes (a release set on
// a channel, a channel entry rolled back) to webhooks and Slack.
package notification

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// NotificationType represents the type of notification provider
type NotificationType string

const (
	// SlackNotification represents a Slack notification
	SlackNotification NotificationType = "slack"
	// WebhookNotification represents a webhook notification
	WebhookNotification NotificationType = "webhook"
)

const sendTimeout = 10 * time.Second

// NotificationConfig represents the configuration for a notification service
type NotificationConfig struct {
	// Type is the notification type: "slack" or "webhook"
	Type string `json:"type" yaml:"type" mapstructure:"type"`
	// Endpoint is the URL of the notification service
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	// Token is the bearer token sent with each request (optional)
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`
	// Channel is the channel name (for Slack)
	Channel string `json:"channel,omitempty" yaml:"channel,omitempty" mapstructure:"channel"`
	// OnSet determines whether to notify when a release is set on a channel
	OnSet bool `json:"onSet" yaml:"on_set" mapstructure:"on_set"`
	// OnRollback determines whether to notify when a channel entry is rolled back
	OnRollback bool `json:"onRollback" yaml:"on_rollback" mapstructure:"on_rollback"`
}

// Validate checks the notification configuration for correctness
func (c NotificationConfig) Validate() error {
	if c.Type == "" {
		return errors.New("notification type cannot be empty")
	}

	if c.Endpoint == "" {
		return errors.New("notification endpoint cannot be empty")
	}

	switch NotificationType(c.Type) {
	case SlackNotification:
		if c.Channel == "" {
			return errors.New("Slack channel is required")
		}
	case WebhookNotification:
	default:
		return fmt.Errorf("unsupported notification type: %s", c.Type)
	}

	return nil
}

// Notifier is the interface that all notification implementations must satisfy
type Notifier interface {
	// SendChannelSet reports that channel now serves publicationID
	SendChannelSet(channel, publicationID string) error

	// SendRollback reports that entry channelID of channel was rolled back and
	// users now receive targetPublicationID
	SendRollback(channel, channelID, targetPublicationID string, reverted bool) error
}

// BaseNotifier provides common functionality for notifier implementations
type BaseNotifier struct {
	Config NotificationConfig
	client *http.Client
}

// Configure sets up the base notifier with the provided configuration
func (n *BaseNotifier) Configure(config NotificationConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	n.Config = config
	n.client = &http.Client{Timeout: sendTimeout}
	return nil
}

// ShouldNotifyOnSet returns whether to notify when a release is set
func (n *BaseNotifier) ShouldNotifyOnSet() bool {
	return n.Config.OnSet
}

// ShouldNotifyOnRollback returns whether to notify on rollbacks
func (n *BaseNotifier) ShouldNotifyOnRollback() bool {
	return n.Config.OnRollback
}

func (n *BaseNotifier) httpClient() *http.Client {
	if n.client == nil {
		return &http.Client{Timeout: sendTimeout}
	}
	return n.client
}

// NewNotifier creates the notifier for config.Type
func NewNotifier(config NotificationConfig) (Notifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch NotificationType(config.Type) {
	case SlackNotification:
		return NewSlackNotifier(config), nil
	default:
		return NewWebhookNotifier(config), nil
	}
}

// Multi fans a notice out to several notifiers. Every notifier is tried;
// the errors are joined.
type Multi []Notifier

var _ Notifier = Multi(nil)

// NewMulti builds a Multi from configs, failing on the first invalid one
func NewMulti(configs []NotificationConfig) (Multi, error) {
	m := make(Multi, 0, len(configs))
	for i, c := range configs {
		n, err := NewNotifier(c)
		if err != nil {
			return nil, fmt.Errorf("notification %d: %w", i, err)
		}
		m = append(m, n)
	}
	return m, nil
}

func (m Multi) SendChannelSet(channel, publicationID string) error {
	var errs []error
	for _, n := range m {
		if err := n.SendChannelSet(channel, publicationID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) SendRollback(channel, channelID, targetPublicationID string, reverted bool) error {
	var errs []error
	for _, n := range m {
		if err := n.SendRollback(channel, channelID, targetPublicationID, reverted); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// getHostname retrieves the hostname of the machine running pubctl
func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
