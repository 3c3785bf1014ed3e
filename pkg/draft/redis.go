package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis store.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
	TTL       time.Duration
}

// RedisStore persists drafts as Redis strings.
type RedisStore struct {
	rdb       *goredis.Client
	namespace string
	ttl       time.Duration
}

// OpenRedis connects and pings the server.
func OpenRedis(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, errors.New("draft: redis address is required")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("draft: redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, namespace: opts.Namespace, ttl: opts.TTL}, nil
}

func (s *RedisStore) key(name string) string {
	if s.namespace == "" {
		return Key(name)
	}
	return s.namespace + ":" + Key(name)
}

func (s *RedisStore) Load(ctx context.Context, name string) (any, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("draft: load %s: %w", name, err)
	}
	value, err := decode(raw)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *RedisStore) Save(ctx context.Context, name string, value any) error {
	raw, err := encode(value)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(name), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("draft: save %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := s.rdb.Del(ctx, s.key(name)).Err(); err != nil {
		return fmt.Errorf("draft: delete %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
