package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

// redisGetter is the subset of *redis.Client used by RedisSource.
type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSource reads a JSON array of player records stored under one key.
type RedisSource struct {
	client redisGetter
	key    string
}

// RedisConfig holds connection settings for NewRedisClient.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient opens a client; the connection is established lazily.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisSource creates a source reading key through client.
func NewRedisSource(client redisGetter, key string) *RedisSource {
	return &RedisSource{client: client, key: key}
}

// Load fetches and decodes the snapshot. A missing key is ErrNotFound.
func (s *RedisSource) Load(ctx context.Context) ([]model.Player, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: redis key %q", ErrNotFound, s.key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", s.key, err)
	}
	return model.DecodePlayers(raw)
}

// Name implements Source.
func (s *RedisSource) Name() string { return "redis" }
