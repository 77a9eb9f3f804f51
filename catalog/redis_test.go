package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	values map[string]string
	err    error
	keys   []string
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func TestRedisSourceLoadsCatalog(t *testing.T) {
	fake := &fakeRedis{values: map[string]string{DefaultRedisKey: sampleDoc}}
	src := &RedisSource{Client: fake, Key: DefaultRedisKey}

	c, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Expected 2 basemaps, got %d", c.Len())
	}
	if len(fake.keys) != 1 || fake.keys[0] != DefaultRedisKey {
		t.Errorf("Expected one GET of %s, got %v", DefaultRedisKey, fake.keys)
	}
}

func TestRedisSourceMissingKey(t *testing.T) {
	src := &RedisSource{Client: &fakeRedis{}, Key: "absent"}
	_, err := Load(context.Background(), src)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRedisSourceConnectionError(t *testing.T) {
	boom := errors.New("connection refused")
	src := &RedisSource{Client: &fakeRedis{err: boom}, Key: "k"}
	_, err := Load(context.Background(), src)
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped connection error, got %v", err)
	}
}

func TestNewRedisSourceDefaults(t *testing.T) {
	src := NewRedisSource(nil, "")
	if src.Key != DefaultRedisKey {
		t.Errorf("Expected default key, got %q", src.Key)
	}
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Errorf("Expected error without a client")
	}
	if OpenRedis("", "", 0) != nil {
		t.Errorf("Expected nil client for empty address")
	}
	if src.String() != "redis:"+DefaultRedisKey {
		t.Errorf("Unexpected String: %q", src.String())
	}
}
