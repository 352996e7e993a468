// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// DevSecret is the signing secret used when JWT_SECRET is unset. It is public
// and must never sign production sessions.
const DevSecret = "development-secret-key"

// minSecretLen is the shortest secret accepted in production.
const minSecretLen = 32

// Env is the deployment environment.
type Env string

const (
	EnvDevelopment Env = "development"
	EnvProduction  Env = "production"
)

// Storage selects the repository backend.
type Storage string

const (
	StorageMemory   Storage = "memory"
	StoragePostgres Storage = "postgres"
	StorageSQLite   Storage = "sqlite"
)

// Config holds the process configuration.
type Config struct {
	Env Env

	Addr     string
	LogLevel string

	Storage     Storage
	DatabaseURL string
	SQLitePath  string

	JWTSecret string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads all env vars and builds the config.
func Load() *Config {
	env := EnvDevelopment
	if strings.EqualFold(getEnv("UIGEN_ENV", ""), string(EnvProduction)) {
		env = EnvProduction
	}

	return &Config{
		Env: env,

		Addr:     getEnv("UIGEN_ADDR", ":8080"),
		LogLevel: getEnv("UIGEN_LOG_LEVEL", "info"),

		Storage:     Storage(strings.ToLower(getEnv("UIGEN_STORAGE", string(StorageMemory)))),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnv("UIGEN_SQLITE_PATH", "uigen.db"),

		JWTSecret: getEnv("JWT_SECRET", DevSecret),
	}
}

// UsingDevSecret reports whether sessions are signed with the public default.
func (c *Config) UsingDevSecret() bool {
	return c.JWTSecret == DevSecret
}

// SecureCookies reports whether cookies should carry the Secure attribute.
func (c *Config) SecureCookies() bool {
	return c.Env == EnvProduction
}

// Validate checks the config for combinations the process cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown UIGEN_STORAGE %q", c.Storage))
	}

	if c.Env == EnvProduction {
		if c.UsingDevSecret() {
			errs = append(errs, errors.New("JWT_SECRET must be set in production"))
		} else if len(c.JWTSecret) < minSecretLen {
			errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minSecretLen))
		}
	}

	return errors.Join(errs...)
}
