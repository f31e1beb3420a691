package redis

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// fakeRedis is an in-memory stand-in honoring the subset of semantics the
// stores rely on: Get on a missing or expired key returns redis.Nil.
type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	expiry  map[string]time.Time
	failAll error
	now     func() time.Time
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		data:   map[string]string{},
		expiry: map[string]time.Time{},
		now:    time.Now,
	}
}

func (f *fakeRedis) Ping(ctx context.Context) error { return f.failAll }

func (f *fakeRedis) expired(key string) bool {
	exp, ok := f.expiry[key]
	return ok && !exp.After(f.now())
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if f.failAll != nil {
		return f.failAll
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	default:
		f.data[key] = fmt.Sprint(v)
	}
	if expiration > 0 {
		f.expiry[key] = f.now().Add(expiration)
	} else {
		delete(f.expiry, key)
	}
	return nil
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	if f.failAll != nil {
		return "", f.failAll
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok || f.expired(key) {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Incr(ctx context.Context, key string) (int64, error) {
	if f.failAll != nil {
		return 0, f.failAll
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expired(key) {
		delete(f.data, key)
		delete(f.expiry, key)
	}
	n, _ := strconv.ParseInt(f.data[key], 10, 64)
	n++
	f.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if f.failAll != nil {
		return f.failAll
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expiry[key] = f.now().Add(expiration)
	return nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
		delete(f.expiry, k)
	}
	return nil
}

func (f *fakeRedis) Close() error { return nil }

var _ RedisClient = (*fakeRedis)(nil)
