// Package redisstore implements a storage medium on a Redis server. Several
// processes sharing one server see each other's writes.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// scanCount is the COUNT hint passed to SCAN.
const scanCount = 100

// pingTimeout bounds the connectivity check in Connect.
const pingTimeout = 5 * time.Second

// Store is a types.Medium whose keys are namespaced with a prefix.
type Store struct {
	rdb    *redis.Client
	prefix string
}

var _ types.Medium = (*Store)(nil)

// Connect creates a Redis client from cfg and verifies connectivity.
func Connect(ctx context.Context, cfg types.RedisConfig) (*Store, error) {
	if cfg.Addr == "" {
		return nil, types.ErrRedisAddrEmpty
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return New(rdb, cfg.Prefix), nil
}

// New wraps an existing client. An empty prefix uses types.DefaultRedisPrefix.
func New(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = types.DefaultRedisPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

// Prefix returns the key namespace of the store.
func (s *Store) Prefix() string { return s.prefix }

// Raw returns the underlying redis.Client.
func (s *Store) Raw() *redis.Client { return s.rdb }

func (s *Store) redisKey(key string) string { return s.prefix + key }

// Get returns the value stored under key, or types.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, types.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return val, nil
}

// Put overwrites key with no expiry.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Keys scans the prefix namespace and returns the unprefixed keys, sorted.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.redisKey(key)).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.rdb.Close()
}
