// Package redis stores snapshots as Redis string values.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ncounterspecialist/twick-sub001/internal/snapshot"
)

var _ snapshot.Store = (*Store)(nil)

// DefaultPrefix namespaces snapshot keys.
const DefaultPrefix = "twick:snapshot:"

// Options configures the store.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// TTL expires snapshots; zero keeps them forever.
	TTL time.Duration
}

// Store wraps a go-redis client.
type Store struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
	owned  bool
}

// Open dials Redis and verifies the connection with PING.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	s := New(client, opts)
	s.owned = true
	return s, nil
}

// New wraps an existing client. Close does not close a client passed here.
func New(client goredis.UniversalClient, opts Options) *Store {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, ttl: opts.TTL}
}

func (s *Store) key(k string) string { return s.prefix + k }

// Load returns the value under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, snapshot.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Save sets the value under key.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := snapshot.ValidateKey(key); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the client if Open created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
