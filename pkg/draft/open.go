package draft

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config selects and configures a store backend.
type Config struct {
	Driver string        `yaml:"driver"`
	DSN    string        `yaml:"dsn"`
	Redis  RedisConfig   `yaml:"redis"`
	TTL    time.Duration `yaml:"ttl"`
}

// RedisConfig is the file form of RedisOptions.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	Namespace string `yaml:"namespace"`
}

// Open builds the configured store. An empty driver means memory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.DSN)
	case "redis":
		return OpenRedis(ctx, RedisOptions{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			Namespace: cfg.Redis.Namespace,
			TTL:       cfg.TTL,
		})
	default:
		return nil, fmt.Errorf("draft: unknown driver %q", cfg.Driver)
	}
}
