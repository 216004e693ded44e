// Package redislist stores name lists as JSON strings in Redis so several
// hosts can share one game state.
package redislist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"fantamorto/internal/lists"
	"fantamorto/internal/services"
)

// Options configures the Redis connection.
type Options struct {
	Address  string
	Password string
	DB       int
	Prefix   string
	Timeout  time.Duration
}

// Store keeps each list under Prefix+key.
type Store struct {
	client *redis.Client
	prefix string
}

var _ lists.Store = (*Store)(nil)

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Address) == "" {
		return nil, services.Wrap(services.ErrConfigurationMissing, "redislist", "connect", "redis address required", nil)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   -1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, services.Wrap(services.ErrPersistence, "redislist", "connect", opts.Address, err)
	}
	return &Store{client: client, prefix: opts.Prefix}, nil
}

// Key returns the Redis key a list name is stored under.
func (s *Store) Key(name string) string {
	return s.prefix + name
}

// ReadList returns the list stored under key, or an empty list when absent.
func (s *Store) ReadList(ctx context.Context, key string) ([]string, error) {
	raw, err := s.client.Get(ctx, s.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "redislist", "read", key, err)
	}
	names, err := lists.Decode(raw)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "redislist", "read", key, err)
	}
	return names, nil
}

// WriteList replaces the list stored under key. Lists never expire.
func (s *Store) WriteList(ctx context.Context, key string, names []string) error {
	payload, err := lists.Encode(names)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "redislist", "write", key, err)
	}
	if err := s.client.Set(ctx, s.Key(key), payload, 0).Err(); err != nil {
		return services.Wrap(services.ErrPersistence, "redislist", "write", key, fmt.Errorf("set: %w", err))
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
