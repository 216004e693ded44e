package checkrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"fantamorto/internal/config"
	"fantamorto/internal/lists"
	"fantamorto/internal/logging"
	"fantamorto/internal/notifications"
	"fantamorto/internal/services"
	"fantamorto/internal/services/gdrive"
	"fantamorto/internal/services/redislist"
	"fantamorto/internal/wiki"
)

// OpenStore builds the configured list backend. The returned closer releases
// any connection the backend holds.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (lists.Store, io.Closer, error) {
	s := cfg.Storage
	switch s.Backend {
	case config.BackendSQLite, "":
		store, err := lists.OpenSQLite(ctx, s.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.BackendGDrive:
		client, err := gdrive.New(gdrive.Credentials{
			ClientID:     s.ClientID,
			ClientSecret: s.ClientSecret,
			AccessToken:  s.AccessToken,
			RefreshToken: s.RefreshToken,
			TokenURL:     s.TokenURL,
		},
			gdrive.WithBaseURL(s.DriveBaseURL),
			gdrive.WithHTTPClient(&http.Client{Timeout: cfg.StorageTimeout()}),
			gdrive.WithLogger(logger),
		)
		if err != nil {
			return nil, nil, err
		}
		return client, noopCloser{}, nil
	case config.BackendRedis:
		store, err := redislist.New(ctx, redislist.Options{
			Address:  s.RedisAddress,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
			Prefix:   s.RedisPrefix,
			Timeout:  cfg.StorageTimeout(),
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, services.Wrap(services.ErrConfigurationMissing, "checkrun", "open store", fmt.Sprintf("unknown backend %q", s.Backend), nil)
	}
}

// NewWikiClient builds the Wikipedia client from configuration.
func NewWikiClient(cfg *config.Config, logger *slog.Logger) (*wiki.Client, error) {
	w := cfg.Wikipedia
	markers := wiki.DefaultMarkers().Extend(w.ExtraDeathFields, w.ExtraRedirects)
	return wiki.New(w.EndpointTemplate,
		wiki.WithHTTPClient(&http.Client{Timeout: cfg.WikipediaTimeout()}),
		wiki.WithUserAgent(w.UserAgent),
		wiki.WithBatchSize(w.BatchSize),
		wiki.WithParallelism(w.Parallelism),
		wiki.WithMarkers(markers),
		wiki.WithLogger(logger),
	)
}

// OpenDeps builds every collaborator of a run from configuration. Call the
// returned function to release them.
func OpenDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Deps, func() error, error) {
	if cfg == nil {
		return Deps{}, nil, errors.New("checkrun: config required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	looker, err := NewWikiClient(cfg, logger)
	if err != nil {
		return Deps{}, nil, err
	}
	notifier, err := notifications.NewFromConfig(cfg, logger)
	if err != nil {
		return Deps{}, nil, err
	}
	store, closer, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return Deps{}, nil, err
	}
	deps := Deps{
		Store:    store,
		Notifier: notifier,
		Looker:   looker,
		Logger:   logger,
	}
	return deps, closer.Close, nil
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }
