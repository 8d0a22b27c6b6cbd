package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/qmcDevelopment/auditoria-iso/internal/game"
)

// Config holds process configuration loaded from the environment.
type Config struct {
	Env           string        `env:"APP_ENV" envDefault:"development"`
	Port          string        `env:"PORT" envDefault:"5175"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LevelsFile    string        `env:"LEVELS_FILE"`
	DBPath        string        `env:"DB_PATH" envDefault:"./data/results.db"`
	ClientOrigin  string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"dev_secret_change_me"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	DailySalt     string        `env:"DAILY_SALT" envDefault:"local_dev_salt"`
	Game          GameConfig    `envPrefix:"GAME_"`
}

// GameConfig mirrors game.Config.
type GameConfig struct {
	MatchReward          int           `env:"MATCH_REWARD" envDefault:"100"`
	MismatchPenalty      int           `env:"MISMATCH_PENALTY" envDefault:"20"`
	MismatchDisplayDelay time.Duration `env:"MISMATCH_DISPLAY_DELAY" envDefault:"800ms"`
	LevelSettleDelay     time.Duration `env:"LEVEL_SETTLE_DELAY" envDefault:"500ms"`
}

// Rules converts the environment values into engine rules.
func (g GameConfig) Rules() game.Config {
	return game.Config{
		MatchReward:          g.MatchReward,
		MismatchPenalty:      g.MismatchPenalty,
		MismatchDisplayDelay: g.MismatchDisplayDelay,
		LevelSettleDelay:     g.LevelSettleDelay,
	}
}

// SecureCookies reports whether session cookies must be Secure (cross-site deployments).
func (c *Config) SecureCookies() bool { return c.Env == "production" }

// Load parses the environment and validates the game rules.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Game.Rules().Validate(); err != nil {
		return nil, fmt.Errorf("game rules: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", cfg.SessionTTL)
	}
	return &cfg, nil
}
