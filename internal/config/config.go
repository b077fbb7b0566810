package config

import "time"

// Config is the full TodoX server configuration.
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Auth   AuthConfig   `yaml:"auth" mapstructure:"auth"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`

	// SecureCookies marks the session cookie Secure; disable for
	// plain-HTTP local development.
	SecureCookies bool `yaml:"secure_cookies" mapstructure:"secure_cookies"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	// Driver is one of "mongo", "sqlite", "memory".
	Driver        string `yaml:"driver" mapstructure:"driver"`
	MongoURI      string `yaml:"mongo_uri" mapstructure:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database" mapstructure:"mongo_database"`
	SQLitePath    string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// AuthConfig configures token signing.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" mapstructure:"jwt_secret"`

	// TokenTTL is a Go duration string; empty means the default.
	TokenTTL string `yaml:"token_ttl" mapstructure:"token_ttl"`
}

// DefaultTokenTTL is used when auth.token_ttl is unset or malformed.
const DefaultTokenTTL = 168 * time.Hour

// TTL parses the configured token lifetime.
func (a AuthConfig) TTL() time.Duration {
	if a.TokenTTL == "" {
		return DefaultTokenTTL
	}
	d, err := time.ParseDuration(a.TokenTTL)
	if err != nil || d <= 0 {
		return DefaultTokenTTL
	}
	return d
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":8080",
			SecureCookies: true,
		},
		Store: StoreConfig{
			Driver:        "mongo",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "todox",
			SQLitePath:    "~/.todox/todox.db",
		},
		Auth: AuthConfig{
			TokenTTL: "168h",
		},
	}
}
