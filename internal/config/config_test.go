package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sample = `
identity:
  url: http://auth.local
  jwtSecret: from-file
server:
  listenAddr: ":9000"
  redisAddr: redis:6379
rateLimit:
  enabled: true
  backend: redis
  limit: 10
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	config, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatal(err)
	}
	if config.Identity.URL != "http://auth.local" || config.Server.ListenAddr != ":9000" {
		t.Fatalf("unexpected config %+v", config)
	}
	if config.RateLimit.Limit != 10 || config.RateLimit.WindowSeconds != 60 {
		t.Fatalf("expected file values merged with defaults got %+v", config.RateLimit)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("AUTH_URL", "http://override")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("RATELIMIT_LIMIT", "3")

	config, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatal(err)
	}
	if config.Identity.URL != "http://override" || config.Identity.JWTSecret != "from-env" {
		t.Fatalf("expected env override got %+v", config.Identity)
	}
	if config.RateLimit.Limit != 3 {
		t.Fatalf("expected env limit got %d", config.RateLimit.Limit)
	}
	if config.Server.RedisAddr != "redis:6379" {
		t.Fatalf("expected untouched file value got %q", config.Server.RedisAddr)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("AUTH_URL", "")
	config, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if config.Server.ListenAddr != ":8000" || config.Identity.URL != "" {
		t.Fatalf("expected defaults got %+v", config)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestStoreReload(t *testing.T) {
	path := writeConfig(t, sample)
	config, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	store := NewStore(path, config)
	if store.IdentityServiceURL() != "http://auth.local" {
		t.Fatalf("unexpected url %q", store.IdentityServiceURL())
	}

	if err := os.WriteFile(path, []byte("identity:\n  url: \"\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err != nil {
		t.Fatal(err)
	}
	if store.IdentityServiceURL() != "" {
		t.Fatalf("expected cleared url after reload got %q", store.IdentityServiceURL())
	}

	if err := os.WriteFile(path, []byte("identity: [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if store.Get().Server.ListenAddr != ":8000" {
		t.Fatal("previous snapshot must survive a failed reload")
	}
}
