package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load builds the configuration from defaults, an optional YAML file,
// and environment overrides (highest precedence). A local .env file is
// read first so MONGODB_URI and JWT_SECRET can live there, matching
// the deployment convention this project has always used.
func Load(path string) (*Config, error) {
	godotenv.Load() // optional; missing .env is fine

	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		// Well-known locations, project file overriding global.
		if home, err := os.UserHomeDir(); err == nil {
			globalPath := filepath.Join(home, ".todox", "config.yaml")
			if err := loadFile(globalPath, cfg); err != nil && !os.IsNotExist(err) {
				return nil, err
			}
		}
		if err := loadFile("todox.yaml", cfg); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MONGODB_URI"); v != "" {
		cfg.Store.MongoURI = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("TODOX_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TODOX_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
}
