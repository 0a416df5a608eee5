package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultDBPath           = "./dev.db"
	defaultPort             = "8080"
	defaultStage            = StageDev
	defaultLogLevel         = "info"
	defaultAutosaveDebounce = 3 * time.Second
)

const (
	StageDev  = "dev"
	StageProd = "prod"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Stage            string
	Port             string
	DBPath           string
	LogLevel         string
	AutosaveDebounce time.Duration
	SeedOnStart      bool
}

// IsDev reports whether the service runs outside production.
func (c Config) IsDev() bool {
	return c.Stage != StageProd
}

// Load reads environment variables and returns a populated Config.
func Load() (Config, error) {
	// Best-effort: production injects real environment variables.
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Stage:            getenv("STAGE", defaultStage),
		Port:             getenv("PORT", defaultPort),
		DBPath:           getenv("DB_PATH", defaultDBPath),
		LogLevel:         getenv("LOG_LEVEL", defaultLogLevel),
		AutosaveDebounce: defaultAutosaveDebounce,
	}
	cfg.SeedOnStart = cfg.IsDev()

	if raw := os.Getenv("AUTOSAVE_DEBOUNCE"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("AUTOSAVE_DEBOUNCE must be a positive duration, got %q", raw)
		}
		cfg.AutosaveDebounce = d
	}
	if raw := os.Getenv("SEED_ON_START"); raw != "" {
		seed, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("SEED_ON_START must be a boolean, got %q", raw)
		}
		cfg.SeedOnStart = seed
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
