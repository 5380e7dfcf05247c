package ratelimit

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/zeebo/xxh3"
)

type Decision struct {
	Allowed   bool
	Count     int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the wait until the current window closes, rounded up to whole seconds.
func (d Decision) RetryAfter(now time.Time) int {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return 1
	}
	secs := int((wait + time.Second - 1) / time.Second)
	return secs
}

type Limiter interface {
	Allow(ctx context.Context, key string, limit int) Decision
}

// Key derives the limiter key of a caller: the hashed id of a verified requester,
// the client address for anonymous calls. Unverified tokens must not be passed in.
func Key(requesterID, ip string) string {
	if requesterID != "" {
		sum := xxh3.HashString128(requesterID).Bytes()
		return "usr:" + hex.EncodeToString(sum[:])
	}
	return "ip:" + ip
}

func decide(count, limit int, resetAt time.Time) Decision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= limit,
		Count:     count,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

type window struct {
	count   int
	resetAt time.Time
}

// InMemoryLimiter counts per process. Expired windows are evicted by the cache janitor.
type InMemoryLimiter struct {
	mu     sync.Mutex
	window time.Duration
	items  *cache.Cache
}

func NewInMemory(w time.Duration) *InMemoryLimiter {
	if w <= 0 {
		w = time.Minute
	}
	return &InMemoryLimiter{
		window: w,
		items:  cache.New(w, 2*w),
	}
}

func (l *InMemoryLimiter) Allow(ctx context.Context, key string, limit int) Decision {
	if limit <= 0 {
		limit = 1
	}
	now := time.Now().UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	curr := window{resetAt: now.Add(l.window)}
	if x, found := l.items.Get(key); found {
		if prev := x.(window); now.Before(prev.resetAt) {
			curr = prev
		}
	}
	curr.count++
	l.items.Set(key, curr, curr.resetAt.Sub(now))

	return decide(curr.count, limit, curr.resetAt)
}
