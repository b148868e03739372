// Package config provides configuration management for the trading journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"trademind/internal/analytics"
	"trademind/internal/errors"
	"trademind/internal/logging"
	"trademind/pkg/utils"
)

// FileName is the base name of the configuration file.
const FileName = "config"

// Config holds all application configuration.
type Config struct {
	Journal JournalConfig `mapstructure:"journal"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
	Cache   CacheConfig   `mapstructure:"cache"`

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-"`
}

// JournalConfig holds trade ledger and analytics settings.
type JournalConfig struct {
	UserID        string `mapstructure:"user_id"`
	DBPath        string `mapstructure:"db_path"`
	Timezone      string `mapstructure:"timezone"`
	FetchLimit    int    `mapstructure:"fetch_limit"`
	DefaultWindow string `mapstructure:"default_window"`
	TopSymbols    int    `mapstructure:"top_symbols"`
	RecentWeeks   int    `mapstructure:"recent_weeks"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	TimeFormat   string `mapstructure:"time_format"`
}

// LoggingConfig mirrors logging.LogConfig in the config file.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// CacheConfig holds profile cache settings.
type CacheConfig struct {
	ProfileFile    string        `mapstructure:"profile_file"`
	RefreshTimeout time.Duration `mapstructure:"refresh_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trademind"
	}
	return filepath.Join(home, ".config", "trademind")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("journal.user_id", "local")
	v.SetDefault("journal.db_path", "trademind.db")
	v.SetDefault("journal.timezone", "Asia/Kolkata")
	v.SetDefault("journal.fetch_limit", 200)
	v.SetDefault("journal.default_window", string(analytics.WindowAll))
	v.SetDefault("journal.top_symbols", analytics.DefaultTopSymbols)
	v.SetDefault("journal.recent_weeks", analytics.DefaultRecentWeeks)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
	v.SetDefault("ui.time_format", "15:04")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", false)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join("logs", "trademind.log"))
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)

	v.SetDefault("cache.profile_file", "profile.json")
	v.SetDefault("cache.refresh_timeout", "10s")
	v.SetDefault("cache.max_retries", 3)
}

// Default returns the built-in configuration rooted at configDir.
func Default(configDir string) *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{Dir: configDir}
	// Defaults always decode.
	_ = v.Unmarshal(cfg)
	cfg.resolvePaths()
	return cfg
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config file is replaced by the commented template.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(FileName)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config template: %w", err)
		}
	}

	cfg := &Config{Dir: configDir}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config.toml: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADEMIND_USER_ID"); v != "" {
		cfg.Journal.UserID = v
	}
	if v := os.Getenv("TRADEMIND_DB_PATH"); v != "" {
		cfg.Journal.DBPath = v
	}
	if v := os.Getenv("TRADEMIND_TIMEZONE"); v != "" {
		cfg.Journal.Timezone = v
	}
	if v := os.Getenv("TRADEMIND_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// resolvePaths anchors relative paths at the config directory.
func (c *Config) resolvePaths() {
	c.Journal.DBPath = c.resolve(c.Journal.DBPath)
	c.Logging.FilePath = c.resolve(c.Logging.FilePath)
	c.Cache.ProfileFile = c.resolve(c.Cache.ProfileFile)
}

func (c *Config) resolve(p string) string {
	if p == "" || p == ":memory:" {
		return p
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	if filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

func invalid(field string, value interface{}, msg string) error {
	return fmt.Errorf("%w: %w", errors.ErrConfigInvalid, errors.NewValidationError(field, value, msg))
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Journal.UserID) == "" {
		return invalid("journal.user_id", c.Journal.UserID, "must not be empty")
	}
	if c.Journal.DBPath == "" {
		return invalid("journal.db_path", c.Journal.DBPath, "must not be empty")
	}
	if _, err := utils.LoadLocation(c.Journal.Timezone); err != nil {
		return invalid("journal.timezone", c.Journal.Timezone, err.Error())
	}
	if _, err := analytics.ParseWindow(c.Journal.DefaultWindow); err != nil {
		return invalid("journal.default_window", c.Journal.DefaultWindow, err.Error())
	}
	if c.Journal.FetchLimit < 1 {
		return invalid("journal.fetch_limit", c.Journal.FetchLimit, "must be at least 1")
	}
	if c.Journal.TopSymbols < 1 {
		return invalid("journal.top_symbols", c.Journal.TopSymbols, "must be at least 1")
	}
	if c.Journal.RecentWeeks < 1 {
		return invalid("journal.recent_weeks", c.Journal.RecentWeeks, "must be at least 1")
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return invalid("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}
	if c.Cache.RefreshTimeout < 0 {
		return invalid("cache.refresh_timeout", c.Cache.RefreshTimeout, "must not be negative")
	}
	return nil
}

// Location returns the journal timezone.
func (c *Config) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Journal.Timezone)
	if err != nil {
		return utils.IndiaLocation
	}
	return loc
}

// Window returns the default analytics window.
func (c *Config) Window() analytics.Window {
	w, err := analytics.ParseWindow(c.Journal.DefaultWindow)
	if err != nil {
		return analytics.WindowAll
	}
	return w
}

// LogConfig converts the logging section for logging.NewLoggerWithConfig.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    c.Logging.Console,
		File:       c.Logging.File,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAgeDays,
	}
}

// RetryConfig returns the retry policy for profile fetches.
func (c *Config) RetryConfig() utils.RetryConfig {
	rc := utils.DefaultRetryConfig()
	if c.Cache.MaxRetries > 0 {
		rc.MaxAttempts = c.Cache.MaxRetries
	}
	return rc
}
