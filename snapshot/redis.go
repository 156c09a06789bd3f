package snapshot

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/translatekit/transchunk/memory"
)

// RedisConfig configures the Redis-backed snapshot store.
type RedisConfig struct {
	// ConnectionString is a redis:// or rediss:// URL, or a plain host:port.
	ConnectionString string

	// Username and Password override any credentials in the URL.
	Username string
	Password string

	// Database overrides the database number in the URL.
	Database int

	// Prefix namespaces the snapshot keys. Defaults to "transchunk:".
	Prefix string

	// TTL expires snapshots after the given duration; zero keeps them
	// forever.
	TTL time.Duration
}

// Redis persists snapshots in Redis as JSON documents.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// parseRedisURL parses a Redis URL and returns redis.Options.
func parseRedisURL(connectionString string) (*redis.Options, error) {
	if strings.HasPrefix(connectionString, "redis://") || strings.HasPrefix(connectionString, "rediss://") {
		parsedURL, err := url.Parse(connectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}

		opts := &redis.Options{Addr: parsedURL.Host}

		if parsedURL.Scheme == "rediss" {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		if parsedURL.User != nil {
			opts.Username = parsedURL.User.Username()
			if password, ok := parsedURL.User.Password(); ok {
				opts.Password = password
			}
		}
		if parsedURL.Path != "" && parsedURL.Path != "/" {
			dbStr := strings.TrimPrefix(parsedURL.Path, "/")
			if db, err := strconv.Atoi(dbStr); err == nil {
				opts.DB = db
			}
		}
		return opts, nil
	}

	return &redis.Options{Addr: connectionString}, nil
}

// NewRedis connects to Redis and returns a snapshot store.
func NewRedis(config RedisConfig) (*Redis, error) {
	opts, err := parseRedisURL(config.ConnectionString)
	if err != nil {
		return nil, err
	}

	if config.Username != "" {
		opts.Username = config.Username
	}
	if config.Password != "" {
		opts.Password = config.Password
	}
	if config.Database != 0 {
		opts.DB = config.Database
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = "transchunk:"
	}

	return &Redis{client: client, prefix: prefix, ttl: config.TTL}, nil
}

func (s *Redis) key(runID string) string {
	return s.prefix + "snapshot:" + runID
}

// Save stores the snapshot for runID as JSON.
func (s *Redis) Save(ctx context.Context, runID string, snap memory.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(runID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load retrieves the snapshot for runID.
func (s *Redis) Load(ctx context.Context, runID string) (memory.Snapshot, bool, error) {
	data, err := s.client.Get(ctx, s.key(runID)).Bytes()
	if err == redis.Nil {
		return memory.Snapshot{}, false, nil
	}
	if err != nil {
		return memory.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	var snap memory.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return memory.Snapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, true, nil
}

// Delete removes the snapshot for runID.
func (s *Redis) Delete(ctx context.Context, runID string) error {
	if err := s.client.Del(ctx, s.key(runID)).Err(); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *Redis) Close() error {
	return s.client.Close()
}
