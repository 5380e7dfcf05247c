package providers

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bradfitz/gomemcache/memcache"

	"github.com/totegamma/catgraph/internal/config"
	"github.com/totegamma/catgraph/internal/infra/memory"
	"github.com/totegamma/catgraph/internal/ratelimit"
)

func TestNewDatabaseWithoutDsn(t *testing.T) {
	db, err := NewDatabase(config.Server{})
	if err != nil || db != nil {
		t.Fatalf("expected no database got %v %v", db, err)
	}

	if _, ok := NewCatRepository(nil).(*memory.CatRepository); !ok {
		t.Fatal("expected the in-memory repository")
	}
}

func TestNewLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedis(config.Server{RedisAddr: mr.Addr()})
	defer rdb.Close()
	mc := memcache.New("127.0.0.1:0")

	cases := []struct {
		name    string
		backend string
		check   func(ratelimit.Limiter) bool
	}{
		{"default", "", func(l ratelimit.Limiter) bool { _, ok := l.(*ratelimit.InMemoryLimiter); return ok }},
		{"redis", "redis", func(l ratelimit.Limiter) bool { _, ok := l.(*ratelimit.RedisLimiter); return ok }},
		{"memcached", "memcached", func(l ratelimit.Limiter) bool { _, ok := l.(*ratelimit.MemcacheLimiter); return ok }},
		{"unknown", "etcd", func(l ratelimit.Limiter) bool { _, ok := l.(*ratelimit.InMemoryLimiter); return ok }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLimiter(config.RateLimit{Backend: tc.backend, WindowSeconds: 60}, rdb, mc)
			if !tc.check(l) {
				t.Fatalf("unexpected limiter %T", l)
			}
		})
	}

	// missing clients degrade to memory
	l := NewLimiter(config.RateLimit{Backend: "redis"}, nil, nil)
	if _, ok := l.(*ratelimit.InMemoryLimiter); !ok {
		t.Fatalf("expected memory fallback got %T", l)
	}
}

func TestOptionalClients(t *testing.T) {
	if NewRedis(config.Server{}) != nil {
		t.Fatal("expected nil redis client")
	}
	if NewMemcache(config.Server{}) != nil {
		t.Fatal("expected nil memcache client")
	}
	if NewMemcache(config.Server{MemcachedAddr: "localhost:11211"}) == nil {
		t.Fatal("expected memcache client")
	}
}
