package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"fantamorto/internal/services"
)

// Validate ensures the configuration is usable. Absent required settings are
// tagged with services.ErrConfigurationMissing so callers can abort before any
// network call.
func (c *Config) Validate() error {
	if err := c.validateRoster(); err != nil {
		return err
	}
	if err := c.validateWikipedia(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRoster() error {
	if strings.TrimSpace(c.Roster.Path) == "" {
		return missing("roster.path", "ROSTER_PATH")
	}
	return nil
}

func (c *Config) validateWikipedia() error {
	w := c.Wikipedia
	if len(w.Languages) == 0 {
		return errors.New("wikipedia.languages must include at least one language")
	}
	if !strings.Contains(w.EndpointTemplate, "{lang}") {
		return errors.New("wikipedia.endpoint_template must contain the {lang} placeholder")
	}
	if w.BatchSize < 1 || w.BatchSize > MaxWikipediaBatch {
		return fmt.Errorf("wikipedia.batch_size must be between 1 and %d", MaxWikipediaBatch)
	}
	switch w.Unresolved {
	case UnresolvedAbort, UnresolvedDrop:
	default:
		return fmt.Errorf("wikipedia.unresolved must be %q or %q, got %q", UnresolvedAbort, UnresolvedDrop, w.Unresolved)
	}
	return nil
}

func (c *Config) validateStorage() error {
	s := c.Storage
	if s.ConfirmedDocument == "" {
		return missing("storage.confirmed_document", "DEAD_LIST_DOCUMENT")
	}
	if s.MaybeDocument == "" {
		return missing("storage.maybe_document", "MAYBE_DEAD_LIST_DOCUMENT")
	}
	if s.ConfirmedDocument == s.MaybeDocument {
		return errors.New("storage.confirmed_document and storage.maybe_document must differ")
	}
	if s.YearsDocument != "" && (s.YearsDocument == s.ConfirmedDocument || s.YearsDocument == s.MaybeDocument) {
		return errors.New("storage.years_document must differ from the list documents")
	}
	switch s.Backend {
	case BackendSQLite:
		if strings.TrimSpace(s.SQLitePath) == "" {
			return missing("storage.sqlite_path", "")
		}
	case BackendGDrive:
		required := []struct{ key, env, value string }{
			{"storage.client_id", "CLIENT_ID", s.ClientID},
			{"storage.client_secret", "CLIENT_SECRET", s.ClientSecret},
			{"storage.access_token", "ACCESS_TOKEN", s.AccessToken},
			{"storage.refresh_token", "REFRESH_TOKEN", s.RefreshToken},
		}
		for _, field := range required {
			if field.value == "" {
				return missing(field.key, field.env)
			}
		}
	case BackendRedis:
		if s.RedisAddress == "" {
			return missing("storage.redis_address", "REDIS_ADDRESS")
		}
	default:
		return fmt.Errorf("storage.backend must be one of %q, %q, %q, got %q", BackendSQLite, BackendGDrive, BackendRedis, s.Backend)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	n := c.Notifications
	if n.WebhookURL == "" {
		return missing("notifications.webhook_url", "WEBHOOK_URL")
	}
	if parsed, err := url.Parse(n.WebhookURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("notifications.webhook_url must be an absolute URL, got %q", n.WebhookURL)
	}
	if (n.DiscordWebhookID == "") != (n.DiscordWebhookToken == "") {
		return errors.New("notifications.discord_webhook_id and notifications.discord_webhook_token must be set together")
	}
	if n.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must be >= 0")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.IntervalMinutes < 0 {
		return errors.New("schedule.interval_minutes must be >= 0")
	}
	return nil
}

func missing(key, env string) error {
	hint := "edit the config file (create with 'fantamorto config init')"
	if env != "" {
		hint = fmt.Sprintf("set %s or %s", env, hint)
	}
	return services.Wrap(services.ErrConfigurationMissing, "config", "validate", fmt.Sprintf("%s is required; %s", key, hint), nil)
}
