// internal/config/config.go
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the daemon's environment configuration.
type Config struct {
	ListenAddr string `env:"CRIBBAGE_LISTEN_ADDR" envDefault:":8080"`
	// NumPlayers is the seat count for new tables (2-4).
	NumPlayers int `env:"CRIBBAGE_NUM_PLAYERS" envDefault:"2"`

	// JWTSecret signs seat-reclaim session tokens.
	JWTSecret string `env:"CRIBBAGE_JWT_SECRET" envDefault:"dev-secret-change-me"`

	// RedisAddr enables action-history publishing when non-empty.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// DatabaseURL enables game state persistence when non-empty.
	DatabaseURL string `env:"DATABASE_URL"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env if present, then parses the environment. Missing
// .env is not an error; explicit environment always wins.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.NumPlayers < 2 || cfg.NumPlayers > 4 {
		return Config{}, fmt.Errorf("CRIBBAGE_NUM_PLAYERS must be 2-4, got %d", cfg.NumPlayers)
	}
	return cfg, nil
}
