package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv neutralizes ambient overrides so tests see only what they set.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"MONGODB_URI", "JWT_SECRET", "TODOX_ADDR", "TODOX_STORE_DRIVER"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %q", cfg.Server.Addr)
	}
	if cfg.Store.Driver != "mongo" {
		t.Errorf("expected default driver mongo, got %q", cfg.Store.Driver)
	}
	if cfg.Auth.TTL() != DefaultTokenTTL {
		t.Errorf("expected default token TTL %v, got %v", DefaultTokenTTL, cfg.Auth.TTL())
	}
}

func TestLoadExplicitFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  addr: ":9090"
  secure_cookies: false
store:
  driver: sqlite
  sqlite_path: /tmp/test.db
auth:
  jwt_secret: file-secret
  token_ttl: 24h
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %q", cfg.Server.Addr)
	}
	if cfg.Server.SecureCookies {
		t.Error("expected secure_cookies false")
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.SQLitePath != "/tmp/test.db" {
		t.Errorf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Auth.JWTSecret != "file-secret" {
		t.Errorf("expected jwt secret from file, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TTL() != 24*time.Hour {
		t.Errorf("expected 24h TTL, got %v", cfg.Auth.TTL())
	}

	// Untouched keys keep their defaults.
	if cfg.Store.MongoDatabase != "todox" {
		t.Errorf("expected default mongo database, got %q", cfg.Store.MongoDatabase)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `store:
  mongo_uri: mongodb://file-host:27017
auth:
  jwt_secret: file-secret
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("MONGODB_URI", "mongodb://env-host:27017")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("TODOX_ADDR", ":7070")
	t.Setenv("TODOX_STORE_DRIVER", "memory")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.MongoURI != "mongodb://env-host:27017" {
		t.Errorf("expected env mongo URI to win, got %q", cfg.Store.MongoURI)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("expected env jwt secret to win, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("expected env addr to win, got %q", cfg.Server.Addr)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("expected env driver to win, got %q", cfg.Store.Driver)
	}
}

func TestTokenTTL(t *testing.T) {
	tests := []struct {
		name string
		ttl  string
		want time.Duration
	}{
		{"empty falls back", "", DefaultTokenTTL},
		{"valid duration", "12h", 12 * time.Hour},
		{"minutes", "30m", 30 * time.Minute},
		{"malformed falls back", "one week", DefaultTokenTTL},
		{"negative falls back", "-5h", DefaultTokenTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AuthConfig{TokenTTL: tt.ttl}
			if got := a.TTL(); got != tt.want {
				t.Errorf("TTL(%q) = %v, want %v", tt.ttl, got, tt.want)
			}
		})
	}
}
