package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/five82/potluck/internal/logging"
	"github.com/five82/potluck/internal/reconcile"
)

// Config is the potluck client configuration.
type Config struct {
	StoreURL       string
	APIKey         string
	Table          string
	PollSeconds    int
	Locale         string
	LogLevel       zerolog.Level
	LogFile        string
	MetricsAddr    string // empty disables the listener
	RemoveRollback reconcile.RollbackPolicy
}

const (
	defaultConfigPath  = "~/.config/potluck/config.toml"
	defaultLogFile     = "~/.local/state/potluck/potluck.log"
	defaultStoreURL    = "http://127.0.0.1:7488"
	defaultTable       = "guests"
	defaultPollSeconds = 5
	defaultLocale      = "en"

	envStoreURL = "POTLUCK_STORE_URL"
	envAPIKey   = "POTLUCK_API_KEY"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		StoreURL:    defaultStoreURL,
		Table:       defaultTable,
		PollSeconds: defaultPollSeconds,
		Locale:      defaultLocale,
		LogLevel:    zerolog.InfoLevel,
		LogFile:     mustExpand(defaultLogFile),
	}
}

// Load reads the config at path (default ~/.config/potluck/config.toml),
// falling back to defaults when the file is missing. POTLUCK_STORE_URL and
// POTLUCK_API_KEY override the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
		applyEnv(&cfg)
		return cfg, nil
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		StoreURL       string `toml:"store_url"`
		APIKey         string `toml:"api_key"`
		Table          string `toml:"table"`
		PollSeconds    int    `toml:"poll_seconds"`
		Locale         string `toml:"locale"`
		LogLevel       string `toml:"log_level"`
		LogFile        string `toml:"log_file"`
		MetricsAddr    string `toml:"metrics_addr"`
		RemoveRollback string `toml:"remove_rollback"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.StoreURL = orDefault(raw.StoreURL, defaultStoreURL)
	cfg.APIKey = strings.TrimSpace(raw.APIKey)
	cfg.Table = orDefault(raw.Table, defaultTable)
	cfg.Locale = orDefault(raw.Locale, defaultLocale)
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	if raw.PollSeconds > 0 {
		cfg.PollSeconds = raw.PollSeconds
	}
	cfg.LogLevel, err = logging.ParseLevel(raw.LogLevel)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: log_level: %w", err)
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}
	cfg.RemoveRollback, err = reconcile.ParseRollbackPolicy(raw.RemoveRollback)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: remove_rollback: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// PollInterval returns the polling cadence.
func (c Config) PollInterval() time.Duration {
	if c.PollSeconds <= 0 {
		return defaultPollSeconds * time.Second
	}
	return time.Duration(c.PollSeconds) * time.Second
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envStoreURL)); v != "" {
		cfg.StoreURL = v
	}
	if v := strings.TrimSpace(os.Getenv(envAPIKey)); v != "" {
		cfg.APIKey = v
	}
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
