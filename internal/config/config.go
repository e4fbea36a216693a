package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

type StorageBackend string

const (
	StorageSQLite StorageBackend = "sqlite"
	StorageRedis  StorageBackend = "redis"
)

const DefaultAPIURL = "https://afternoon-hamlet-46054.herokuapp.com"

type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Reorder ReorderConfig `toml:"reorder"`
	UI      UIConfig      `toml:"ui"`
	Logging LoggingConfig `toml:"logging"`
}

type APIConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

type StorageConfig struct {
	Backend      StorageBackend `toml:"backend"`
	Path         string         `toml:"path"`
	RedisAddr    string         `toml:"redis_addr"`
	RedisPrefix  string         `toml:"redis_prefix"`
	MaxColorMaps int            `toml:"max_color_maps"` // 0 keeps every map
}

type ReorderConfig struct {
	RollbackOnFailure bool `toml:"rollback_on_failure"`
}

type UIConfig struct {
	Locale        string `toml:"locale"` // en | ru, empty follows LANG
	ConfirmDelete bool   `toml:"confirm_delete"`
}

type LoggingConfig struct {
	Level   string `toml:"level"`
	DevFile bool   `toml:"dev_file"`
}

func Default(dbPath string) Config {
	return Config{
		API: APIConfig{
			BaseURL: DefaultAPIURL,
			Timeout: "15s",
		},
		Storage: StorageConfig{
			Backend:     StorageSQLite,
			Path:        dbPath,
			RedisPrefix: "tavla",
		},
		Reorder: ReorderConfig{
			RollbackOnFailure: false,
		},
		UI: UIConfig{
			ConfirmDelete: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			DevFile: true,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return errors.New("api.base_url is required")
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url: %q", c.API.BaseURL)
	}
	if _, err := c.API.RequestTimeout(); err != nil {
		return err
	}

	switch c.Storage.Backend {
	case StorageSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return errors.New("storage.path is required for the sqlite backend")
		}
	case StorageRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return errors.New("storage.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}
	if c.Storage.MaxColorMaps < 0 {
		return errors.New("storage.max_color_maps must be >= 0")
	}

	switch strings.TrimSpace(strings.ToLower(c.UI.Locale)) {
	case "", "en", "ru", "eng", "rus":
	default:
		return fmt.Errorf("invalid ui.locale: %q", c.UI.Locale)
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	return nil
}

func (a APIConfig) RequestTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(a.Timeout)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid api.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid api.timeout: %q must be >= 0", raw)
	}
	return d, nil
}

// EnsureConfigDir creates the parent directory of path.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
