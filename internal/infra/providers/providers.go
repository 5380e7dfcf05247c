package providers

import (
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/totegamma/catgraph/client"
	"github.com/totegamma/catgraph/internal/config"
	"github.com/totegamma/catgraph/internal/infra/database"
	"github.com/totegamma/catgraph/internal/infra/memory"
	"github.com/totegamma/catgraph/internal/infra/repository"
	"github.com/totegamma/catgraph/internal/ratelimit"
	"github.com/totegamma/catgraph/internal/usecase"
)

// NewDatabase opens and migrates Postgres. It returns nil when no DSN is configured.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	if conf.PostgresDsn == "" {
		return nil, nil
	}

	db, err := database.NewPostgres(conf.PostgresDsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	return db, nil
}

// NewCatRepository picks the PostGIS store when db is set, the in-process one otherwise.
func NewCatRepository(db *gorm.DB) usecase.CatRepository {
	if db == nil {
		slog.Warn("no database configured, cats are kept in memory", slog.String("module", "providers"))
		return memory.NewCatRepository()
	}
	return repository.NewCatRepository(db)
}

func NewRedis(conf config.Server) *redis.Client {
	return database.NewRedis(conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
}

// NewMemcache returns nil when no address is configured.
func NewMemcache(conf config.Server) *memcache.Client {
	if conf.MemcachedAddr == "" {
		return nil
	}
	return database.NewMemcached(conf.MemcachedAddr)
}

// NewClient constructs the HTTP client used to talk to the identity service.
func NewClient(conf config.Identity) *client.Client {
	return client.New(time.Duration(conf.TimeoutSeconds) * time.Second)
}

// NewLimiter picks the configured backend. A backend whose client is missing
// degrades to the in-process limiter.
func NewLimiter(conf config.RateLimit, rdb *redis.Client, mc *memcache.Client) ratelimit.Limiter {
	window := time.Duration(conf.WindowSeconds) * time.Second

	switch conf.Backend {
	case "redis":
		if rdb != nil {
			return ratelimit.NewRedis(rdb, window)
		}
	case "memcached":
		if mc != nil {
			return ratelimit.NewMemcache(mc, window)
		}
	case "", "memory":
		return ratelimit.NewInMemory(window)
	}

	slog.Warn(
		"rate limit backend unavailable, using memory",
		slog.String("backend", conf.Backend),
		slog.String("module", "providers"),
	)
	return ratelimit.NewInMemory(window)
}
