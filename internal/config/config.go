package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	cerr "github.com/saeidalz13/battleship-hotseat/internal/error"
)

const (
	StageProd = "prod"
	StageDev  = "dev"
)

const (
	defaultPort                = 8000
	defaultLogLevel            = "info"
	defaultGameMaxLifetime     = time.Minute * 30
	defaultGameCleanupInterval = time.Minute * 5
)

type Config struct {
	Stage               string
	Port                int
	DatabaseUrl         string
	LogLevel            string
	GameMaxLifetime     time.Duration
	GameCleanupInterval time.Duration
}

func (c Config) AnalyticsEnabled() bool {
	return c.DatabaseUrl != ""
}

// Load reads the config from the environment. Outside prod the
// variables in envFile are loaded first; a missing file is fine.
func Load(envFile string) (Config, error) {
	if os.Getenv("STAGE") != StageProd {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	cfg := Config{
		Stage:       os.Getenv("STAGE"),
		DatabaseUrl: os.Getenv("DATABASE_URL"),
		LogLevel:    envOrDefault("LOG_LEVEL", defaultLogLevel),
	}

	if cfg.Stage != StageDev && cfg.Stage != StageProd {
		return Config{}, cerr.ErrInvalidStage(cfg.Stage)
	}

	var err error
	if cfg.Port, err = portFromEnv("PORT", defaultPort); err != nil {
		return Config{}, err
	}
	if cfg.GameMaxLifetime, err = durationFromEnv("GAME_MAX_LIFETIME", defaultGameMaxLifetime); err != nil {
		return Config{}, err
	}
	if cfg.GameCleanupInterval, err = durationFromEnv("GAME_CLEANUP_INTERVAL", defaultGameCleanupInterval); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func portFromEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, cerr.ErrInvalidEnvValue(key, value, err)
	}
	if parsed <= 0 || parsed > 65535 {
		return 0, cerr.ErrInvalidEnvValue(key, value, errors.New("port out of range"))
	}
	return parsed, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, cerr.ErrInvalidEnvValue(key, value, err)
	}
	if parsed <= 0 {
		return 0, cerr.ErrInvalidEnvValue(key, value, errors.New("duration must be positive"))
	}
	return parsed, nil
}
