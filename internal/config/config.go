package config

import (
	"os"
	"sync/atomic"

	"github.com/caarlos0/env/v11"
	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"
)

type Config struct {
	Identity  Identity  `yaml:"identity"`
	Server    Server    `yaml:"server"`
	RateLimit RateLimit `yaml:"rateLimit"`
}

type Identity struct {
	URL            string `yaml:"url" env:"AUTH_URL"`
	JWTSecret      string `yaml:"jwtSecret" env:"JWT_SECRET"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" env:"AUTH_TIMEOUT_SECONDS"`
}

type Server struct {
	ListenAddr     string `yaml:"listenAddr" env:"LISTEN_ADDR"`
	PostgresDsn    string `yaml:"postgresDsn" env:"DATABASE_URL"`
	RedisAddr      string `yaml:"redisAddr" env:"REDIS_ADDR"`
	RedisPassword  string `yaml:"redisPassword" env:"REDIS_PASSWORD"`
	RedisDB        int    `yaml:"redisDB" env:"REDIS_DB"`
	MemcachedAddr  string `yaml:"memcachedAddr" env:"MEMCACHED_ADDR"`
	EnableTrace    bool   `yaml:"enableTrace" env:"TRACE_ENABLED"`
	TraceEndpoint  string `yaml:"traceEndpoint" env:"TRACE_ENDPOINT"`
	MaxParallelism int    `yaml:"maxParallelism" env:"GRAPHQL_MAX_PARALLELISM"`
}

type RateLimit struct {
	Enabled       bool   `yaml:"enabled" env:"RATELIMIT_ENABLED"`
	Backend       string `yaml:"backend" env:"RATELIMIT_BACKEND"` // redis, memcached, memory
	Limit         int    `yaml:"limit" env:"RATELIMIT_LIMIT"`
	WindowSeconds int    `yaml:"windowSeconds" env:"RATELIMIT_WINDOW_SECONDS"`
}

func defaults() Config {
	return Config{
		Identity: Identity{
			TimeoutSeconds: 5,
		},
		Server: Server{
			ListenAddr:     ":8000",
			MaxParallelism: 10,
		},
		RateLimit: RateLimit{
			Backend:       "memory",
			Limit:         120,
			WindowSeconds: 60,
		},
	}
}

// Load reads path (skipped when empty) and then applies environment overrides.
func Load(path string) (Config, error) {
	config := defaults()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "failed to open config")
		}
		defer file.Close()

		err = yaml.NewDecoder(file).Decode(&config)
		if err != nil {
			return Config{}, errors.Wrap(err, "failed to decode config")
		}
	}

	err := env.Parse(&config)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to parse env")
	}

	return config, nil
}

// Store holds the live configuration. Readers always see a complete snapshot.
type Store struct {
	path    string
	current atomic.Pointer[Config]
}

func NewStore(path string, initial Config) *Store {
	s := &Store{path: path}
	s.current.Store(&initial)
	return s
}

func (s *Store) Get() Config {
	return *s.current.Load()
}

func (s *Store) Set(config Config) {
	s.current.Store(&config)
}

// Reload re-reads the file and environment. The previous snapshot stays in
// place when loading fails.
func (s *Store) Reload() error {
	config, err := Load(s.path)
	if err != nil {
		return err
	}
	s.Set(config)
	return nil
}

func (s *Store) IdentityServiceURL() string {
	return s.current.Load().Identity.URL
}

func (s *Store) JWTSecret() string {
	return s.current.Load().Identity.JWTSecret
}
