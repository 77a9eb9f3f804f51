package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is used when CATALOG_REDIS_KEY names no key.
const DefaultRedisKey = "gio_basemaps:catalog"

// stringGetter is the part of *redis.Client the source needs.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSource reads the catalog document stored as a JSON string under Key.
type RedisSource struct {
	Client stringGetter
	Key    string
}

// OpenRedis returns a client for addr, or nil when addr is empty.
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

func NewRedisSource(client *redis.Client, key string) *RedisSource {
	if key == "" {
		key = DefaultRedisKey
	}
	s := &RedisSource{Key: key}
	if client != nil {
		s.Client = client
	}
	return s
}

func (s *RedisSource) Fetch(ctx context.Context) ([]byte, error) {
	if s.Client == nil {
		return nil, errors.New("redis client not configured")
	}
	v, err := s.Client.Get(ctx, s.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: redis key %s", ErrNotFound, s.Key)
	}
	return v, err
}

func (s *RedisSource) String() string { return "redis:" + s.Key }
