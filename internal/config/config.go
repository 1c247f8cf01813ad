// Package config loads replydesk settings from ~/.replydesk/config.yaml, REPLYDESK_* environment
// variables and an optional .env file, in increasing order of precedence for env.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "REPLYDESK"

type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	Overrides OverridesConfig `mapstructure:"overrides"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Domain    string          `mapstructure:"domain"`
	Locale    string          `mapstructure:"locale"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

type StoreConfig struct {
	// Driver is sqlite or postgres.
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type OverridesConfig struct {
	// Backend is file, redis or memory.
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Dir returns the config directory (REPLYDESK_CONFIG_DIR, else ~/.replydesk).
func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.replydesk).
	if v := strings.TrimSpace(os.Getenv(envPrefix + "_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".replydesk"), nil
}

// Load reads configuration. An explicit file must exist; the default file is optional.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(file) != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if cfg.Store.DSN == "" {
		cfg.Store.DSN = os.Getenv("DATABASE_URL")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", filepath.Join(dir, "replydesk.sqlite"))
	v.SetDefault("store.dsn", "")
	v.SetDefault("overrides.backend", "file")
	v.SetDefault("overrides.path", filepath.Join(dir, "overrides.json"))
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("domain", "replies")
	v.SetDefault("locale", "en")
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "sqlite":
		if strings.TrimSpace(c.Store.Path) == "" {
			errs = append(errs, errors.New("store.path is required for sqlite"))
		}
	case "postgres":
		if strings.TrimSpace(c.Store.DSN) == "" {
			errs = append(errs, errors.New("store.dsn (or DATABASE_URL) is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver: unknown driver %q (want sqlite|postgres)", c.Store.Driver))
	}
	switch c.Overrides.Backend {
	case "file", "memory":
	case "redis":
		if strings.TrimSpace(c.Redis.Addr) == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis overrides backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("overrides.backend: unknown backend %q (want file|redis|memory)", c.Overrides.Backend))
	}
	switch c.Domain {
	case "replies", "emails":
	default:
		errs = append(errs, fmt.Errorf("domain: unknown domain %q (want replies|emails)", c.Domain))
	}
	return errors.Join(errs...)
}
