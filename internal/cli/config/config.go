// Package config provides Viper-based configuration for mailctl.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"mail-hub/internal/usecase"
)

// Store backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config represents the complete mailctl configuration
type Config struct {
	RootDomain string        `mapstructure:"root_domain"`
	Store      StoreConfig   `mapstructure:"store"`
	Logging    LoggingConfig `mapstructure:"logging"`
	Output     OutputConfig  `mapstructure:"output"`
}

// StoreConfig selects where the account registry lives.
type StoreConfig struct {
	Backend     string        `mapstructure:"backend"`
	Path        string        `mapstructure:"path"`
	RedisURL    string        `mapstructure:"redis_url"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
	RedisTTL    time.Duration `mapstructure:"redis_ttl"`
	Key         string        `mapstructure:"key"`
	MaxAccounts int           `mapstructure:"max_accounts"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// DefaultDir returns ~/.config/mailctl, or .mailctl when there is no home
// directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".mailctl"
	}
	return filepath.Join(home, ".config", "mailctl")
}

// Load reads configuration from file and environment variables into v.
// Flags bound to v before the call take precedence over both.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
	}

	v.SetEnvPrefix("MAILCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root_domain", "localhost:3000")

	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.path", DefaultDir())
	v.SetDefault("store.redis_url", "")
	v.SetDefault("store.redis_prefix", "mailctl:")
	v.SetDefault("store.redis_ttl", time.Duration(0))
	v.SetDefault("store.key", usecase.DefaultAccountsKey)
	v.SetDefault("store.max_accounts", 0)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("output.colors", true)
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.RootDomain) == "" {
		return errors.New("root_domain must not be empty")
	}

	switch cfg.Store.Backend {
	case BackendFile:
		if cfg.Store.Path == "" {
			return errors.New("store.path is required for the file backend")
		}
	case BackendRedis:
		if cfg.Store.RedisURL == "" {
			return errors.New("store.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid store backend: %s (must be file or redis)", cfg.Store.Backend)
	}

	if cfg.Store.Key == "" {
		return errors.New("store.key must not be empty")
	}
	if cfg.Store.RedisTTL < 0 {
		return fmt.Errorf("store.redis_ttl must not be negative: %s", cfg.Store.RedisTTL)
	}
	if cfg.Store.MaxAccounts < 0 {
		return fmt.Errorf("store.max_accounts must not be negative: %d", cfg.Store.MaxAccounts)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}

	return nil
}
