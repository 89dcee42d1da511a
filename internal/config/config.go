package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env             string `env:"APP_ENV" envDefault:"dev"`
	Port            string `env:"PORT" envDefault:"8080"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	DBPath          string `env:"DB_PATH" envDefault:"./salesdash.db"`
	DataPath        string `env:"DATA_PATH" envDefault:"./orders.csv"`
	ChartMonth      string `env:"CHART_MONTH" envDefault:"2025-02"`
	PresetsPath     string `env:"PRESETS_PATH"`
	AnalystEmail    string `env:"ANALYST_EMAIL"`
	AnalystPassword string `env:"ANALYST_PASSWORD"`
	SessionSecret   string `env:"SESSION_SECRET"`
}

// Load reads environment variables and returns a populated Config.
func Load() (Config, error) {
	// Local dev convenience; production injects real env.
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.AuthEnabled() && cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required when ANALYST_EMAIL is set")
	}

	return cfg, nil
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}

// AuthEnabled reports whether analyst login protects the dashboard.
func (c Config) AuthEnabled() bool {
	return c.AnalystEmail != "" && c.AnalystPassword != ""
}
