// Package config loads process configuration from the environment and
// connection settings for managed registry environments from java-style
// .properties files, one file per environment.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvDir      = "."
	defaultHTTPTimeout = 2 * time.Minute
)

type Config struct {
	// EnvDir is scanned for <prefix>_<ENV>.properties connection files.
	EnvDir      string
	HTTPTimeout time.Duration
	// AdminAddr enables the admin HTTP server in interactive mode when set.
	AdminAddr  string
	LogFile    string
	VaultAddr  string
	VaultToken string
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		EnvDir:      getenvDefault("OSBCTL_ENV_DIR", defaultEnvDir),
		HTTPTimeout: defaultHTTPTimeout,
		AdminAddr:   os.Getenv("OSBCTL_ADMIN_ADDR"),
		LogFile:     os.Getenv("OSBCTL_LOG_FILE"),
		VaultAddr:   os.Getenv("VAULT_ADDR"),
		VaultToken:  os.Getenv("VAULT_TOKEN"),
	}

	if v := os.Getenv("OSBCTL_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.HTTPTimeout = d
		}
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
