package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"fantamorto/internal/config"
)

// ConfigOption adjusts a test config after its paths are laid out.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig returns a default config whose state, logs, roster and sqlite
// paths all live under a fresh t.TempDir. Timeouts are shortened to keep
// failing tests quick.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.LockFile = filepath.Join(base, "state", "run.lock")
	cfg.Roster.Path = filepath.Join(base, "roster.json")
	cfg.Storage.SQLitePath = filepath.Join(base, "state", "lists.db")
	cfg.Storage.ConfirmedDocument = "morti.json"
	cfg.Storage.MaybeDocument = "forse-morti.json"
	cfg.Storage.YearsDocument = "anni-morti.json"
	cfg.Notifications.WebhookURL = "http://127.0.0.1:0/hook"
	cfg.Notifications.RequestTimeout = 2
	cfg.Wikipedia.RequestTimeout = 2

	builder := &configBuilder{
		t:   t,
		cfg: &cfg,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRoster writes roster JSON to the configured roster path.
func WithRoster(content string) ConfigOption {
	return func(b *configBuilder) {
		if err := os.WriteFile(b.cfg.Roster.Path, []byte(content), 0o644); err != nil {
			b.t.Fatalf("write roster: %v", err)
		}
	}
}

// WithWikiServer points the Wikipedia endpoint at a fake server.
func WithWikiServer(server *WikiServer) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Wikipedia.EndpointTemplate = server.Template()
	}
}

// WithWebhook sets the notification webhook URL.
func WithWebhook(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.WebhookURL = url
	}
}

// WithLanguages overrides the language cascade.
func WithLanguages(langs ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Wikipedia.Languages = langs
	}
}

// WithDropUnresolved switches the unresolved policy to drop.
func WithDropUnresolved() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Wikipedia.Unresolved = config.UnresolvedDrop
	}
}
