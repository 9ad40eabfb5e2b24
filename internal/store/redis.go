package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key the document is stored under
const DefaultRedisKey = "openclaw:models.json"

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379/0")
	URL string

	// Key defaults to DefaultRedisKey
	Key string

	// TTL of the stored document; zero or negative keeps it without expiry
	TTL time.Duration
}

// RedisStore keeps models.json as a single Redis string value, for agents sharing one config
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis store requires a url")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRedisStoreWithClient(client, cfg), nil
}

func newRedisStoreWithClient(client *redis.Client, cfg RedisConfig) *RedisStore {
	key := cfg.Key
	if key == "" {
		key = DefaultRedisKey
	}
	ttl := cfg.TTL
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, key: key, ttl: ttl}
}

// Key returns the Redis key in use
func (s *RedisStore) Key() string {
	return s.key
}

// Location implements Store
func (s *RedisStore) Location() string {
	o := s.client.Options()
	return fmt.Sprintf("redis://%s/%d#%s", o.Addr, o.DB, s.key)
}

// Load implements Store
func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}
	return data, nil
}

// Save implements Store. SET replaces the value atomically.
func (s *RedisStore) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write to redis: %w", err)
	}
	return nil
}

// Close implements Store
func (s *RedisStore) Close() error {
	return s.client.Close()
}
