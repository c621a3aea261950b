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
)

// Config captures everything battlewatch needs to run.
type Config struct {
	LogGlob         string
	WatchlistPath   string
	PollInterval    time.Duration
	BackoffInterval time.Duration
	CombatTimeout   time.Duration
	AlertReset      time.Duration
	AudioCommand    []string
	Bell            bool
	LogFile         string
	LogLevel        string
}

const (
	defaultConfigPath      = "~/.config/battlewatch/config.toml"
	defaultLogGlob         = "~/Windower/logs/*.log"
	defaultWatchlistPath   = "~/.config/battlewatch/watchlist.txt"
	defaultLogFile         = "~/.local/state/battlewatch/battlewatch.log"
	defaultLogLevel        = "info"
	defaultPollInterval    = 100 * time.Millisecond
	defaultBackoffInterval = 2 * time.Second
	defaultCombatTimeout   = 20 * time.Second
	defaultAlertReset      = 4 * time.Second
)

// DefaultPath returns the config path used when none is given.
func DefaultPath() string {
	return defaultConfigPath
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		LogGlob:         mustExpand(defaultLogGlob),
		WatchlistPath:   mustExpand(defaultWatchlistPath),
		PollInterval:    defaultPollInterval,
		BackoffInterval: defaultBackoffInterval,
		CombatTimeout:   defaultCombatTimeout,
		AlertReset:      defaultAlertReset,
		Bell:            true,
		LogFile:         mustExpand(defaultLogFile),
		LogLevel:        defaultLogLevel,
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		LogGlob         string   `toml:"log_glob"`
		Watchlist       string   `toml:"watchlist"`
		PollInterval    string   `toml:"poll_interval"`
		BackoffInterval string   `toml:"backoff_interval"`
		CombatTimeout   string   `toml:"combat_timeout"`
		AlertReset      string   `toml:"alert_reset"`
		AudioCommand    []string `toml:"audio_command"`
		Bell            *bool    `toml:"bell"`
		LogFile         string   `toml:"log_file"`
		LogLevel        string   `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.LogGlob); v != "" {
		cfg.LogGlob = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Watchlist); v != "" {
		cfg.WatchlistPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if raw.Bell != nil {
		cfg.Bell = *raw.Bell
	}
	for _, arg := range raw.AudioCommand {
		if strings.TrimSpace(arg) != "" {
			cfg.AudioCommand = append(cfg.AudioCommand, arg)
		}
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"poll_interval", raw.PollInterval, &cfg.PollInterval},
		{"backoff_interval", raw.BackoffInterval, &cfg.BackoffInterval},
		{"combat_timeout", raw.CombatTimeout, &cfg.CombatTimeout},
		{"alert_reset", raw.AlertReset, &cfg.AlertReset},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("parse config: %s: %w", d.key, err)
		}
		if parsed <= 0 {
			return Config{}, fmt.Errorf("parse config: %s must be positive", d.key)
		}
		*d.dst = parsed
	}

	return cfg, nil
}

// ExpandPath expands a leading ~ and makes path absolute. Glob metacharacters
// are left alone.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
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
