package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains state, log, and lock locations.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
	LockFile string `toml:"lock_file"`
}

// Roster points at the season roster file.
type Roster struct {
	Path   string `toml:"path"`
	Season string `toml:"season"`
}

// Wikipedia contains configuration for the encyclopedia lookups.
type Wikipedia struct {
	Languages        []string            `toml:"languages"`
	EndpointTemplate string              `toml:"endpoint_template"`
	BatchSize        int                 `toml:"batch_size"`
	Parallelism      int                 `toml:"parallelism"`
	RequestTimeout   int                 `toml:"request_timeout"`
	UserAgent        string              `toml:"user_agent"`
	Unresolved       string              `toml:"unresolved"`
	ExtraDeathFields []string            `toml:"extra_death_fields"`
	ExtraRedirects   map[string][]string `toml:"extra_redirects"`
}

// Storage selects and configures the persisted list backend.
type Storage struct {
	Backend           string `toml:"backend"`
	ConfirmedDocument string `toml:"confirmed_document"`
	MaybeDocument     string `toml:"maybe_document"`
	YearsDocument     string `toml:"years_document"`
	RequestTimeout    int    `toml:"request_timeout"`

	SQLitePath string `toml:"sqlite_path"`

	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	DriveBaseURL string `toml:"drive_base_url"`
	TokenURL     string `toml:"token_url"`

	RedisAddress  string `toml:"redis_address"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// Notifications contains configuration for the outgoing message channels.
type Notifications struct {
	WebhookURL          string `toml:"webhook_url"`
	NtfyTopic           string `toml:"ntfy_topic"`
	DiscordWebhookID    string `toml:"discord_webhook_id"`
	DiscordWebhookToken string `toml:"discord_webhook_token"`
	RequestTimeout      int    `toml:"request_timeout"`
}

// Schedule contains configuration for the watch loop.
type Schedule struct {
	IntervalMinutes int  `toml:"interval_minutes"`
	RunOnStart      bool `toml:"run_on_start"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for fantamorto.
//
// Configuration sections by subsystem:
//   - Paths: state directory, log directory, run lock file
//   - Roster: season roster JSON file
//   - Wikipedia: language cascade, batching, marker extensions
//   - Storage: persisted list backend (sqlite, gdrive, redis) and document keys
//   - Notifications: webhook, ntfy, and Discord channels
//   - Schedule: watch loop interval
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Roster        Roster        `toml:"roster"`
	Wikipedia     Wikipedia     `toml:"wikipedia"`
	Storage       Storage       `toml:"storage"`
	Notifications Notifications `toml:"notifications"`
	Schedule      Schedule      `toml:"schedule"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Environment files
// are loaded first so their values participate in env fallbacks. A missing
// config file is not an error: every required value may come from the
// environment.
func Load(path string) (*Config, string, bool, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadEnvFiles loads ENV_FILE when set, otherwise .env from the working
// directory. Existing environment variables are never overridden.
func loadEnvFiles() error {
	if envFile := strings.TrimSpace(os.Getenv("ENV_FILE")); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("fantamorto.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir, filepath.Dir(c.Paths.LockFile)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WikipediaTimeout returns the per-request timeout for encyclopedia calls.
func (c *Config) WikipediaTimeout() time.Duration {
	return secondsOrDefault(c.Wikipedia.RequestTimeout, defaultRequestTimeout)
}

// StorageTimeout returns the per-request timeout for remote list stores.
func (c *Config) StorageTimeout() time.Duration {
	return secondsOrDefault(c.Storage.RequestTimeout, defaultRequestTimeout)
}

// NotificationTimeout returns the per-request timeout for notification channels.
func (c *Config) NotificationTimeout() time.Duration {
	return secondsOrDefault(c.Notifications.RequestTimeout, defaultRequestTimeout)
}

// ScheduleInterval returns the pause between two watch-loop runs.
func (c *Config) ScheduleInterval() time.Duration {
	minutes := c.Schedule.IntervalMinutes
	if minutes <= 0 {
		minutes = defaultScheduleIntervalMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// AbortOnUnresolved reports whether names left unresolved after the language
// cascade fail the run.
func (c *Config) AbortOnUnresolved() bool {
	return c.Wikipedia.Unresolved != UnresolvedDrop
}

func secondsOrDefault(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
