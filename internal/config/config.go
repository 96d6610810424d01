// Package config loads server configuration from file and environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `mapstructure:"addr"`
	// Mode is the gin mode: debug, release or test.
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	// Path is the SQLite database file.
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	// JWTSecret signs session tokens. Must be set in production.
	JWTSecret string `mapstructure:"jwt_secret"`
	// TokenExpiry is how long session tokens stay valid.
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
}

type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `mapstructure:"level"`
	// Format is "text" (tint, for terminals) or "json" (for log shippers).
	Format string `mapstructure:"format"`
}

// Load reads config.yaml from the working directory (if present) and merges
// CLAIMDESK_* environment variables over it, e.g. CLAIMDESK_SERVER_ADDR.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("claimdesk")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.path", "./data/claimdesk.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_expiry", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; env and defaults carry it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required (set CLAIMDESK_AUTH_JWT_SECRET)")
	}
	return cfg, nil
}
