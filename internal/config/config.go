package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "AthenaRewards"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	shutdownSecondsEnvVar = "SHUTDOWN_TIMEOUT_SECONDS"
	idemTTLSecondsEnvVar  = "IDEMPOTENCY_TTL_SECONDS"
)

// Config captures application runtime configuration loaded from environment
// variables. DATABASE_URL and REDIS_URL are optional: when neither is set the
// service runs on the in-memory store, which is only appropriate for local
// development.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
}

// Load reads configuration values from the environment and populates a
// Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		ShutdownPeriod: defaultShutdownDelay,
		IdempotencyTTL: defaultIdempotencyTTL,
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	}

	if !cfg.IsDev() && cfg.DatabaseURL == "" && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL or REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
	}

	return cfg, nil
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
