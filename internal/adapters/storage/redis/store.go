// Package redis stores local key/value data in a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hylla/tavla/internal/app"
)

var (
	_ app.KVStore  = (*Store)(nil)
	_ app.KVPruner = (*Store)(nil)
)

// DefaultPrefix namespaces keys when none is configured.
const DefaultPrefix = "tavla"

// Store keeps values under prefixed keys and tracks write recency in a sorted
// set so stale entries can be pruned.
type Store struct {
	client *goredis.Client
	prefix string
}

// New wraps client. An empty prefix uses DefaultPrefix.
func New(client *goredis.Client, prefix string) *Store {
	if client == nil {
		panic("redis.New: client is nil")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Dial connects to addr and verifies the server answers.
func Dial(ctx context.Context, addr, prefix string) (*Store, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return New(client, prefix), nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(key string) string {
	return s.prefix + ":kv:" + key
}

func (s *Store) seqKey() string {
	return s.prefix + ":seq"
}

func (s *Store) indexKey() string {
	return s.prefix + ":touched"
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes value and marks key most recently written.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("kv key is required")
	}
	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.key(key), value, 0)
		pipe.ZAdd(ctx, s.indexKey(), goredis.Z{Score: float64(seq), Member: key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, s.key(key))
		pipe.ZRem(ctx, s.indexKey(), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// PruneByPrefix keeps the keep most recently written keys under prefix.
func (s *Store) PruneByPrefix(ctx context.Context, prefix string, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	members, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("prune %q: %w", prefix, err)
	}
	var stale []string
	seen := 0
	for _, member := range members {
		if !strings.HasPrefix(member, prefix) {
			continue
		}
		seen++
		if seen > keep {
			stale = append(stale, member)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		keys := make([]string, 0, len(stale))
		members := make([]any, 0, len(stale))
		for _, member := range stale {
			keys = append(keys, s.key(member))
			members = append(members, member)
		}
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, s.indexKey(), members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune %q: %w", prefix, err)
	}
	return len(stale), nil
}
