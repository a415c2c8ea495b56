package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisPrefix is prepended to every key written by RedisStore.
const DefaultRedisPrefix = "storefront"

// redisCmdable is the subset of the go-redis client used by RedisStore.
type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Keys(ctx context.Context, pattern string) *redis.StringSliceCmd
}

// RedisStore keeps each slot under the key "{prefix}:{namespace}:{name}".
type RedisStore struct {
	rdb    redisCmdable
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisPrefix overrides DefaultRedisPrefix.
func WithRedisPrefix(p string) RedisOption {
	return func(s *RedisStore) { s.prefix = p }
}

// WithRedisTTL expires slots that have not been written for ttl. Zero keeps
// them forever.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// NewRedisStore wraps a go-redis client (or anything implementing the same
// commands).
func NewRedisStore(rdb redisCmdable, opts ...RedisOption) *RedisStore {
	s := &RedisStore{rdb: rdb, prefix: DefaultRedisPrefix}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// Namespace returns the backend for ns.
func (s *RedisStore) Namespace(ns string) Backend { return &redisBackend{store: s, ns: ns} }

// Names lists the slot names stored under ns in lexical order. Session ids
// may contain ':', so keys of a nested namespace such as "a:b" also match the
// pattern for "a"; slot names never contain ':' and those keys are skipped.
func (s *RedisStore) Names(ctx context.Context, ns string) ([]string, error) {
	prefix := s.key(ns, "")
	keys, err := s.rdb.Keys(ctx, globEscaper.Replace(prefix)+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("redis keys %s: %w", prefix, err)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		name := strings.TrimPrefix(k, prefix)
		if name == "" || strings.Contains(name, ":") {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// globEscaper quotes the KEYS pattern metacharacters.
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func (s *RedisStore) key(ns, name string) string {
	return s.prefix + ":" + ns + ":" + name
}

type redisBackend struct {
	store *RedisStore
	ns    string
}

func (b *redisBackend) Get(ctx context.Context, name string) ([]byte, error) {
	v, err := b.store.rdb.Get(ctx, b.store.key(b.ns, name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s/%s: %w", b.ns, name, err)
	}
	return v, nil
}

func (b *redisBackend) Set(ctx context.Context, name string, value []byte) error {
	err := b.store.rdb.Set(ctx, b.store.key(b.ns, name), value, b.store.ttl).Err()
	if err != nil {
		if strings.Contains(err.Error(), "OOM") {
			return fmt.Errorf("redis set %s/%s: %w: %v", b.ns, name, ErrQuotaExceeded, err)
		}
		return fmt.Errorf("redis set %s/%s: %w", b.ns, name, err)
	}
	return nil
}

func (b *redisBackend) Remove(ctx context.Context, name string) error {
	if err := b.store.rdb.Del(ctx, b.store.key(b.ns, name)).Err(); err != nil {
		return fmt.Errorf("redis del %s/%s: %w", b.ns, name, err)
	}
	return nil
}
