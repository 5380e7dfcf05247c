package ratelimit

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheLimiter keeps one counter per fixed window. The window start is part
// of the key, since memcached does not report remaining TTLs.
type MemcacheLimiter struct {
	Client   *memcache.Client
	Window   time.Duration
	Prefix   string
	Fallback *InMemoryLimiter
}

func NewMemcache(client *memcache.Client, window time.Duration) *MemcacheLimiter {
	if window < time.Second {
		window = time.Minute
	}
	return &MemcacheLimiter{
		Client:   client,
		Window:   window,
		Prefix:   "cg:rl:",
		Fallback: NewInMemory(window),
	}
}

func (l *MemcacheLimiter) Allow(ctx context.Context, key string, limit int) Decision {
	if limit <= 0 {
		limit = 1
	}
	if l.Client == nil {
		return l.Fallback.Allow(ctx, key, limit)
	}

	now := time.Now().UTC()
	start := now.Truncate(l.Window)
	resetAt := start.Add(l.Window)
	bucket := l.Prefix + key + ":" + strconv.FormatInt(start.Unix(), 10)

	count, err := l.increment(bucket)
	if err != nil {
		slog.WarnContext(
			ctx, "memcached rate limiter unavailable, using in-process fallback",
			slog.String("error", err.Error()),
			slog.String("module", "ratelimit"),
		)
		return l.Fallback.Allow(ctx, key, limit)
	}

	return decide(int(count), limit, resetAt)
}

func (l *MemcacheLimiter) increment(bucket string) (uint64, error) {
	count, err := l.Client.Increment(bucket, 1)
	if err != memcache.ErrCacheMiss {
		return count, err
	}

	err = l.Client.Add(&memcache.Item{
		Key:        bucket,
		Value:      []byte("1"),
		Expiration: int32(l.Window/time.Second) + 1,
	})
	if err == nil {
		return 1, nil
	}
	if err != memcache.ErrNotStored {
		return 0, err
	}
	// another instance created the bucket first
	return l.Client.Increment(bucket, 1)
}
