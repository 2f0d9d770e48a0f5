// Package snapshot defines the durable key/value contract used to persist
// editor history between runs. Backends live in sub-packages:
//
//	memory    process-local map, for tests and ephemeral sessions
//	file      one JSON file per key under a directory
//	sqlite    modernc.org/sqlite table
//	postgres  pgx through database/sql
//	redis     go-redis string keys
//	bolt      bbolt bucket
//	s3        one object per key in a bucket
//
// Values are opaque bytes. Every backend overwrites on Save and reports a
// missing key from Load with ErrNotFound.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Load when no snapshot is stored under the key.
var ErrNotFound = errors.New("snapshot not found")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("snapshot store closed")

// Store persists snapshots by key.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Driver names a backend.
type Driver string

// Known drivers.
const (
	DriverNone     Driver = "none"
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
	DriverBolt     Driver = "bolt"
	DriverS3       Driver = "s3"
)

// ParseDriver resolves a driver name. The empty string means DriverNone.
func ParseDriver(name string) (Driver, error) {
	d := Driver(strings.ToLower(strings.TrimSpace(name)))
	switch d {
	case "":
		return DriverNone, nil
	case DriverNone, DriverMemory, DriverFile, DriverSQLite, DriverPostgres, DriverRedis, DriverBolt, DriverS3:
		return d, nil
	}
	return "", fmt.Errorf("unknown snapshot driver %q", name)
}

// ValidateKey rejects keys no backend can store.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("snapshot key is required")
	}
	return nil
}
