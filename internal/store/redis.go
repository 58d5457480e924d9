package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"xenarc-chat-demo/backend/pkg/logger"
)

// RedisStore keeps the key space in Redis, for deployments where the
// chat state must outlive the process or be shared between instances.
// Last write wins; concurrent writers are not coordinated.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	logger  *logger.Logger
}

// NewRedisStore connects to Redis at addr. All keys are stored under
// the given prefix so several applications can share one instance.
func NewRedisStore(addr, prefix string, log *logger.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{
		client:  client,
		prefix:  prefix,
		timeout: 5 * time.Second,
		logger:  log,
	}, nil
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *RedisStore) Load(key string, dest any) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return decode(s.logger, key, raw, dest), nil
}

func (s *RedisStore) Save(key string, value any) error {
	if value == nil {
		return s.Delete(key)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Set(ctx, s.key(key), raw, 0).Err()
}

func (s *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Del(ctx, s.key(key)).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
