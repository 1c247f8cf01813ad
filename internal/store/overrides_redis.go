package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOverridePrefix = "replydesk:override:"

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisOverrides shares session overrides between processes of one session through Redis.
// Each scope is one string key holding the JSON positions map; keys never expire.
type RedisOverrides struct {
	client *redis.Client
}

func NewRedisOverrides(ctx context.Context, opts RedisOptions) (*RedisOverrides, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, errors.New("redis: missing addr")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisOverridesFromClient(rdb), nil
}

// NewRedisOverridesFromClient wraps an existing client. Close closes the client.
func NewRedisOverridesFromClient(client *redis.Client) *RedisOverrides {
	return &RedisOverrides{client: client}
}

func (r *RedisOverrides) key(scope string) string { return redisOverridePrefix + scope }

func (r *RedisOverrides) Get(ctx context.Context, scope string) (map[string]int, error) {
	raw, err := r.client.Get(ctx, r.key(scope)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	positions := map[string]int{}
	if err := json.Unmarshal(raw, &positions); err != nil {
		return nil, fmt.Errorf("override %s: %w", scope, err)
	}
	return positions, nil
}

func (r *RedisOverrides) Set(ctx context.Context, scope string, positions map[string]int) error {
	if positions == nil {
		positions = map[string]int{}
	}
	raw, err := json.Marshal(positions)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(scope), raw, 0).Err()
}

func (r *RedisOverrides) Clear(ctx context.Context, scope string) error {
	return r.client.Del(ctx, r.key(scope)).Err()
}

func (r *RedisOverrides) Scopes(ctx context.Context) ([]string, error) {
	var out []string
	iter := r.client.Scan(ctx, 0, redisOverridePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, strings.TrimPrefix(iter.Val(), redisOverridePrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func (r *RedisOverrides) Close() error { return r.client.Close() }
