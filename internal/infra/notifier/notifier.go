// Package notifier formats structured paper messages into channel-native
// payloads and delivers them with a single webhook POST.
//
// Supported kinds are Slack Incoming Webhooks (Block Kit), Discord webhooks
// (embeds) and a log-only kind for dry runs. Deliveries are not retried.
package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"arxiv-digest/internal/domain/entity"
)

// Channel kinds.
const (
	KindSlack   = "slack"
	KindDiscord = "discord"
	KindLog     = "log"
)

// Notifier posts one message to one destination.
type Notifier interface {
	// Post delivers msg and returns the HTTP status of the delivery.
	// A non-2xx status or transport failure returns *entity.DeliveryError.
	Post(ctx context.Context, msg entity.StructuredMessage) (int, error)
}

// ChannelConfig describes one named destination.
type ChannelConfig struct {
	// Name is the channel identifier used by the routing table.
	Name string

	// Kind selects the payload format: "slack", "discord" or "log".
	Kind string

	// WebhookURL is the destination endpoint (includes its credential).
	WebhookURL string

	// Timeout is the HTTP request timeout for the POST.
	Timeout time.Duration
}

// New creates the notifier for config.Kind. A nil httpClient gets a client
// with config.Timeout.
func New(config ChannelConfig, httpClient *http.Client) (Notifier, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	switch config.Kind {
	case KindSlack:
		return NewSlackNotifier(config, httpClient), nil
	case KindDiscord:
		return NewDiscordNotifier(config, httpClient), nil
	case KindLog:
		return NewLogNotifier(config.Name), nil
	default:
		return nil, fmt.Errorf("channel %q: unknown kind %q", config.Name, config.Kind)
	}
}
