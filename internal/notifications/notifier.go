package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fantamorto/internal/config"
	"fantamorto/internal/logging"
	"fantamorto/internal/services"
)

const (
	userAgent      = "fantamorto/0.1"
	defaultTimeout = 10 * time.Second
)

// Notifier sends one human-readable message.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string) error

func (f NotifierFunc) Notify(ctx context.Context, message string) error { return f(ctx, message) }

// Channel is a named notifier inside a Fanout.
type Channel struct {
	Name     string
	Notifier Notifier
}

// Fanout delivers each message to every channel in order. One failing
// channel does not stop the others.
type Fanout struct {
	channels []Channel
	logger   *slog.Logger
}

// NewFanout builds a fan-out notifier over channels.
func NewFanout(logger *slog.Logger, channels ...Channel) *Fanout {
	return &Fanout{channels: channels, logger: logging.NewComponentLogger(logger, "notifications")}
}

// Channels returns the configured channel names.
func (f *Fanout) Channels() []string {
	names := make([]string, 0, len(f.channels))
	for _, ch := range f.channels {
		names = append(names, ch.Name)
	}
	return names
}

// Notify sends message to all channels. The returned error joins every
// channel failure and is tagged services.ErrNotification.
func (f *Fanout) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, ch := range f.channels {
		if err := ch.Notifier.Notify(ctx, message); err != nil {
			logging.WarnWithContext(f.logger, "notification channel failed", "notification_failed",
				logging.String("channel", ch.Name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the channel URL and credentials"),
				logging.String(logging.FieldImpact, "message not delivered on this channel; lists already saved"),
			)
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name, err))
			continue
		}
		f.logger.Debug("notification delivered", logging.String("channel", ch.Name))
	}
	if len(errs) == 0 {
		return nil
	}
	return services.Wrap(services.ErrNotification, "notifications", "notify", "", errors.Join(errs...))
}

// NewFromConfig builds the fan-out notifier for the configured channels.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Fanout, error) {
	if cfg == nil {
		return nil, errors.New("notifications: config required")
	}
	httpClient := &http.Client{Timeout: cfg.NotificationTimeout()}
	n := cfg.Notifications

	webhook, err := NewWebhook(n.WebhookURL, WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	channels := []Channel{{Name: "webhook", Notifier: webhook}}

	if topic := strings.TrimSpace(n.NtfyTopic); topic != "" {
		channels = append(channels, Channel{Name: "ntfy", Notifier: NewNtfy(topic, WithHTTPClient(httpClient))})
	}
	if n.DiscordWebhookID != "" {
		discord, err := NewDiscord(n.DiscordWebhookID, n.DiscordWebhookToken, WithHTTPClient(httpClient))
		if err != nil {
			return nil, err
		}
		channels = append(channels, Channel{Name: "discord", Notifier: discord})
	}
	return NewFanout(logger, channels...), nil
}

// Option configures HTTP-backed notifiers.
type Option func(*httpOptions)

type httpOptions struct {
	client *http.Client
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *httpOptions) {
		if client != nil {
			o.client = client
		}
	}
}

func applyOptions(opts []Option) httpOptions {
	o := httpOptions{client: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
