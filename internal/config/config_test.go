package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"fantamorto/internal/config"
	"fantamorto/internal/services"
)

// isolateEnv points HOME at a temp dir and clears every variable the config
// layer consults so the host environment cannot leak into assertions.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"ENV_FILE", "ROSTER_PATH", "DEAD_LIST_DOCUMENT", "DOCUMENT_NAME", "MAYBE_DEAD_LIST_DOCUMENT",
		"CLIENT_ID", "CLIENT_SECRET", "ACCESS_TOKEN", "REFRESH_TOKEN",
		"REDIS_ADDRESS", "REDIS_PASSWORD", "WEBHOOK_URL", "NTFY_TOPIC",
		"DISCORD_WEBHOOK_ID", "DISCORD_WEBHOOK_TOKEN",
	} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
	t.Chdir(t.TempDir())
	return home
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DEAD_LIST_DOCUMENT", "morti.json")
	t.Setenv("MAYBE_DEAD_LIST_DOCUMENT", "forse-morti.json")
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/T000/B000")
}

func TestLoadFromEnvironmentExpandsPaths(t *testing.T) {
	home := isolateEnv(t)
	setRequiredEnv(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(home, ".local", "share", "fantamorto")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Storage.SQLitePath != filepath.Join(wantState, "lists.db") {
		t.Fatalf("unexpected sqlite path: %q", cfg.Storage.SQLitePath)
	}
	if cfg.Storage.Backend != config.BackendSQLite {
		t.Fatalf("expected sqlite backend by default, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.ConfirmedDocument != "morti.json" || cfg.Storage.MaybeDocument != "forse-morti.json" {
		t.Fatalf("unexpected documents: %+v", cfg.Storage)
	}
	if got := strings.Join(cfg.Wikipedia.Languages, ","); got != "it,en,de" {
		t.Fatalf("unexpected default languages: %q", got)
	}
	if cfg.Wikipedia.BatchSize != config.MaxWikipediaBatch {
		t.Fatalf("unexpected batch size: %d", cfg.Wikipedia.BatchSize)
	}
	if !cfg.AbortOnUnresolved() {
		t.Fatal("expected abort-on-unresolved by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadMissingWebhookFailsFast(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DEAD_LIST_DOCUMENT", "morti.json")
	t.Setenv("MAYBE_DEAD_LIST_DOCUMENT", "forse-morti.json")

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error when webhook url missing")
	}
	if !errors.Is(err, services.ErrConfigurationMissing) {
		t.Fatalf("expected configuration missing marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "WEBHOOK_URL") {
		t.Fatalf("expected env hint in error, got %q", err.Error())
	}
}

func TestLoadDocumentNameAlias(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DOCUMENT_NAME", "legacy.json")
	t.Setenv("MAYBE_DEAD_LIST_DOCUMENT", "forse-morti.json")
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/x")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.ConfirmedDocument != "legacy.json" {
		t.Fatalf("expected DOCUMENT_NAME fallback, got %q", cfg.Storage.ConfirmedDocument)
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolateEnv(t)
	t.Setenv("CLIENT_ID", "id")
	t.Setenv("CLIENT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN", "access")
	t.Setenv("REFRESH_TOKEN", "refresh")

	type payload struct {
		Wikipedia struct {
			Languages  []string `toml:"languages"`
			BatchSize  int      `toml:"batch_size"`
			Unresolved string   `toml:"unresolved"`
		} `toml:"wikipedia"`
		Storage struct {
			Backend           string `toml:"backend"`
			ConfirmedDocument string `toml:"confirmed_document"`
			MaybeDocument     string `toml:"maybe_document"`
		} `toml:"storage"`
		Notifications struct {
			WebhookURL string `toml:"webhook_url"`
		} `toml:"notifications"`
	}
	custom := payload{}
	custom.Wikipedia.Languages = []string{" EN ", "it", "en", ""}
	custom.Wikipedia.BatchSize = 200
	custom.Wikipedia.Unresolved = "Drop"
	custom.Storage.Backend = "GDrive"
	custom.Storage.ConfirmedDocument = "dead"
	custom.Storage.MaybeDocument = "maybe"
	custom.Notifications.WebhookURL = "https://hooks.example.com/abc"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	configPath := filepath.Join(t.TempDir(), "fantamorto.toml")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q (exists=%v)", resolved, exists)
	}
	if got := strings.Join(cfg.Wikipedia.Languages, ","); got != "en,it" {
		t.Fatalf("expected deduplicated languages, got %q", got)
	}
	if cfg.Wikipedia.BatchSize != config.MaxWikipediaBatch {
		t.Fatalf("expected batch size clamped to %d, got %d", config.MaxWikipediaBatch, cfg.Wikipedia.BatchSize)
	}
	if cfg.AbortOnUnresolved() {
		t.Fatal("expected drop policy from config")
	}
	if cfg.Storage.Backend != config.BackendGDrive {
		t.Fatalf("unexpected backend %q", cfg.Storage.Backend)
	}
	if cfg.Storage.RefreshToken != "refresh" {
		t.Fatalf("expected refresh token from env, got %q", cfg.Storage.RefreshToken)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	isolateEnv(t)
	envPath := filepath.Join(t.TempDir(), "custom.env")
	content := "DEAD_LIST_DOCUMENT=env-dead\nMAYBE_DEAD_LIST_DOCUMENT=env-maybe\nWEBHOOK_URL=https://hooks.example.com/env\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", envPath)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.ConfirmedDocument != "env-dead" {
		t.Fatalf("expected document from env file, got %q", cfg.Storage.ConfirmedDocument)
	}
	if cfg.Notifications.WebhookURL != "https://hooks.example.com/env" {
		t.Fatalf("expected webhook from env file, got %q", cfg.Notifications.WebhookURL)
	}
}

func TestValidateStorageBackends(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.Roster.Path = "/tmp/roster.json"
		cfg.Storage.SQLitePath = "/tmp/lists.db"
		cfg.Storage.ConfirmedDocument = "dead"
		cfg.Storage.MaybeDocument = "maybe"
		cfg.Notifications.WebhookURL = "https://hooks.example.com/x"
		return cfg
	}

	cfg := base()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg = base()
	cfg.Storage.Backend = config.BackendGDrive
	cfg.Storage.ClientID = "id"
	cfg.Storage.ClientSecret = "secret"
	cfg.Storage.AccessToken = "access"
	if err := cfg.Validate(); !errors.Is(err, services.ErrConfigurationMissing) {
		t.Fatalf("expected missing refresh token error, got %v", err)
	}

	cfg = base()
	cfg.Storage.Backend = "s3"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown backend to fail")
	}

	cfg = base()
	cfg.Storage.MaybeDocument = "dead"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected identical documents to fail")
	}

	cfg = base()
	cfg.Storage.YearsDocument = "maybe"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected years document equal to a list document to fail")
	}

	cfg = base()
	cfg.Wikipedia.Unresolved = "ignore"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown unresolved policy to fail")
	}

	cfg = base()
	cfg.Notifications.DiscordWebhookID = "123"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected discord id without token to fail")
	}

	cfg = base()
	cfg.Notifications.WebhookURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected relative webhook url to fail")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	isolateEnv(t)
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/sample")

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(sample) returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Storage.ConfirmedDocument != "morti.json" {
		t.Fatalf("unexpected sample document %q", cfg.Storage.ConfirmedDocument)
	}
	if cfg.ScheduleInterval().Minutes() != 60 {
		t.Fatalf("unexpected schedule interval %v", cfg.ScheduleInterval())
	}
}
