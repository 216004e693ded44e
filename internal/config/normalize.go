package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeRoster(); err != nil {
		return err
	}
	c.normalizeWikipedia()
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockFile) == "" {
		c.Paths.LockFile = filepath.Join(c.Paths.StateDir, "run.lock")
	}
	if c.Paths.LockFile, err = expandPath(c.Paths.LockFile); err != nil {
		return fmt.Errorf("paths.lock_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeRoster() error {
	if value, ok := lookupEnv("ROSTER_PATH"); ok && strings.TrimSpace(c.Roster.Path) == "" {
		c.Roster.Path = value
	}
	var err error
	if c.Roster.Path, err = expandPath(strings.TrimSpace(c.Roster.Path)); err != nil {
		return fmt.Errorf("roster.path: %w", err)
	}
	c.Roster.Season = strings.TrimSpace(c.Roster.Season)
	return nil
}

func (c *Config) normalizeWikipedia() {
	w := &c.Wikipedia
	langs := make([]string, 0, len(w.Languages))
	seen := make(map[string]struct{}, len(w.Languages))
	for _, lang := range w.Languages {
		normalized := strings.ToLower(strings.TrimSpace(lang))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		langs = append(langs, normalized)
	}
	if len(langs) == 0 {
		langs = append(langs, defaultLanguages...)
	}
	w.Languages = langs

	w.EndpointTemplate = strings.TrimSpace(w.EndpointTemplate)
	if w.EndpointTemplate == "" {
		w.EndpointTemplate = defaultEndpointTemplate
	}
	if w.BatchSize == 0 {
		w.BatchSize = MaxWikipediaBatch
	}
	if w.BatchSize > MaxWikipediaBatch {
		w.BatchSize = MaxWikipediaBatch
	}
	if w.Parallelism <= 0 {
		w.Parallelism = defaultParallelism
	}
	w.UserAgent = strings.TrimSpace(w.UserAgent)
	if w.UserAgent == "" {
		w.UserAgent = defaultUserAgent
	}
	w.Unresolved = strings.ToLower(strings.TrimSpace(w.Unresolved))
	if w.Unresolved == "" {
		w.Unresolved = UnresolvedAbort
	}

	fields := w.ExtraDeathFields[:0]
	for _, field := range w.ExtraDeathFields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			fields = append(fields, trimmed)
		}
	}
	w.ExtraDeathFields = fields

	if len(w.ExtraRedirects) > 0 {
		redirects := make(map[string][]string, len(w.ExtraRedirects))
		for lang, words := range w.ExtraRedirects {
			lang = strings.ToLower(strings.TrimSpace(lang))
			for _, word := range words {
				if word = strings.ToLower(strings.TrimSpace(word)); word != "" {
					redirects[lang] = append(redirects[lang], word)
				}
			}
		}
		w.ExtraRedirects = redirects
	}
}

func (c *Config) normalizeStorage() error {
	s := &c.Storage
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if s.Backend == "" {
		s.Backend = BackendSQLite
	}

	fillFromEnv(&s.ConfirmedDocument, "DEAD_LIST_DOCUMENT", "DOCUMENT_NAME")
	fillFromEnv(&s.MaybeDocument, "MAYBE_DEAD_LIST_DOCUMENT")
	fillFromEnv(&s.YearsDocument, "YEARS_DOCUMENT")
	fillFromEnv(&s.ClientID, "CLIENT_ID")
	fillFromEnv(&s.ClientSecret, "CLIENT_SECRET")
	fillFromEnv(&s.AccessToken, "ACCESS_TOKEN")
	fillFromEnv(&s.RefreshToken, "REFRESH_TOKEN")
	fillFromEnv(&s.RedisAddress, "REDIS_ADDRESS")
	fillFromEnv(&s.RedisPassword, "REDIS_PASSWORD")

	s.DriveBaseURL = strings.TrimRight(strings.TrimSpace(s.DriveBaseURL), "/")
	if s.DriveBaseURL == "" {
		s.DriveBaseURL = defaultDriveBaseURL
	}
	s.TokenURL = strings.TrimSpace(s.TokenURL)
	if s.TokenURL == "" {
		s.TokenURL = defaultTokenURL
	}
	if s.RedisAddress == "" {
		s.RedisAddress = defaultRedisAddress
	}
	if s.RedisPrefix == "" {
		s.RedisPrefix = defaultRedisPrefix
	}

	if strings.TrimSpace(s.SQLitePath) == "" {
		s.SQLitePath = filepath.Join(c.Paths.StateDir, "lists.db")
	}
	var err error
	if s.SQLitePath, err = expandPath(s.SQLitePath); err != nil {
		return fmt.Errorf("storage.sqlite_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	n := &c.Notifications
	fillFromEnv(&n.WebhookURL, "WEBHOOK_URL")
	fillFromEnv(&n.NtfyTopic, "NTFY_TOPIC")
	fillFromEnv(&n.DiscordWebhookID, "DISCORD_WEBHOOK_ID")
	fillFromEnv(&n.DiscordWebhookToken, "DISCORD_WEBHOOK_TOKEN")
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// fillFromEnv trims *target and, when empty, fills it from the first set
// environment variable among keys.
func fillFromEnv(target *string, keys ...string) {
	*target = strings.TrimSpace(*target)
	if *target != "" {
		return
	}
	for _, key := range keys {
		if value, ok := lookupEnv(key); ok {
			*target = value
			return
		}
	}
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
