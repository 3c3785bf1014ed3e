// Package config loads specviz.yaml, the optional .env file and SPECVIZ_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-specviz/pkg/draft"
	"github.com/goliatone/go-specviz/pkg/registry"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "specviz.yaml"

const envPrefix = "SPECVIZ_"

// Config is the runtime configuration of the server and CLI.
type Config struct {
	Addr     string           `yaml:"addr"`
	BaseDir  string           `yaml:"baseDir"`
	Specs    []registry.Entry `yaml:"specs"`
	Debounce time.Duration    `yaml:"debounce"`
	// WriteTimeout bounds a single draft write.
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	// FetchTimeout bounds http(s) spec document fetches.
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
	Draft        draft.Config  `yaml:"draft"`
	Theme        ThemeConfig   `yaml:"theme"`
	Log          LogConfig     `yaml:"log"`
	// Watch re-reads local spec files on change and notifies open sessions.
	Watch bool `yaml:"watch"`
	// NestedCacheSize bounds the nested-schema preview cache.
	NestedCacheSize int `yaml:"nestedCacheSize"`
}

// ThemeConfig selects the theme and lists extra manifest files.
type ThemeConfig struct {
	Name      string   `yaml:"name"`
	Variant   string   `yaml:"variant"`
	Manifests []string `yaml:"manifests"`
}

// LogConfig selects the zap preset.
type LogConfig struct {
	Mode string `yaml:"mode"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Addr:            ":8080",
		Debounce:        2 * time.Second,
		WriteTimeout:    5 * time.Second,
		FetchTimeout:    10 * time.Second,
		Log:             LogConfig{Mode: "development"},
		NestedCacheSize: 64,
	}
}

// Load reads path (or DefaultFile when path is empty and the file exists),
// then applies .env and SPECVIZ_* overrides. Relative spec locations resolve
// against the config file's directory unless BaseDir is set.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Default()
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultFile
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
		if cfg.BaseDir == "" {
			cfg.BaseDir = filepath.Dir(path)
		} else if !filepath.IsAbs(cfg.BaseDir) {
			cfg.BaseDir = filepath.Join(filepath.Dir(path), cfg.BaseDir)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("config: addr is required")
	}
	if c.Debounce < 0 {
		return fmt.Errorf("config: debounce must not be negative, got %s", c.Debounce)
	}
	if c.NestedCacheSize <= 0 {
		return fmt.Errorf("config: nestedCacheSize must be positive, got %d", c.NestedCacheSize)
	}
	return nil
}

// Registry builds the spec registry from the configured entries.
func (c Config) Registry() (*registry.Registry, error) {
	return registry.New(c.Specs, c.BaseDir)
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", envPrefix, key, err)
		}
		*dst = d
		return nil
	}

	str("ADDR", &c.Addr)
	if port, ok := os.LookupEnv("PORT"); ok && strings.TrimSpace(port) != "" {
		port = strings.TrimSpace(port)
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		c.Addr = port
	}
	str("BASE_DIR", &c.BaseDir)
	str("DRAFT_DRIVER", &c.Draft.Driver)
	str("DRAFT_DSN", &c.Draft.DSN)
	str("REDIS_ADDR", &c.Draft.Redis.Addr)
	str("REDIS_PASSWORD", &c.Draft.Redis.Password)
	str("THEME", &c.Theme.Name)
	str("THEME_VARIANT", &c.Theme.Variant)
	str("LOG_MODE", &c.Log.Mode)

	for key, dst := range map[string]*time.Duration{
		"DEBOUNCE":      &c.Debounce,
		"WRITE_TIMEOUT": &c.WriteTimeout,
		"FETCH_TIMEOUT": &c.FetchTimeout,
		"DRAFT_TTL":     &c.Draft.TTL,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}

	if v, ok := os.LookupEnv(envPrefix + "WATCH"); ok && strings.TrimSpace(v) != "" {
		watch, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %sWATCH: %w", envPrefix, err)
		}
		c.Watch = watch
	}
	return nil
}
