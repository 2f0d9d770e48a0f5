package app

import (
	"context"
	"fmt"

	"github.com/ncounterspecialist/twick-sub001/internal/config"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot/bolt"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot/file"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot/memory"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot/postgres"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot/redis"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot/s3"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot/sqlite"
)

// OpenSnapshots opens the backend selected by p. The none driver returns a
// nil store and no error.
func OpenSnapshots(ctx context.Context, p config.Persistence) (snapshot.Store, error) {
	driver, err := snapshot.ParseDriver(p.Driver)
	if err != nil {
		return nil, err
	}
	switch driver {
	case snapshot.DriverNone:
		return nil, nil
	case snapshot.DriverMemory:
		return memory.New(), nil
	case snapshot.DriverFile:
		return file.New(p.Path)
	case snapshot.DriverSQLite:
		return sqlite.Open(ctx, p.Path)
	case snapshot.DriverPostgres:
		return postgres.Open(ctx, p.DSN)
	case snapshot.DriverRedis:
		return redis.Open(ctx, redis.Options{
			Addr:     p.Redis.Addr,
			Password: p.Redis.Password,
			DB:       p.Redis.DB,
			Prefix:   p.Redis.Prefix,
			TTL:      p.Redis.TTL,
		})
	case snapshot.DriverBolt:
		return bolt.Open(p.Path)
	case snapshot.DriverS3:
		return s3.New(ctx, s3.Config{
			Region:          p.S3.Region,
			Bucket:          p.S3.Bucket,
			Prefix:          p.S3.Prefix,
			Endpoint:        p.S3.Endpoint,
			AccessKeyID:     p.S3.AccessKeyID,
			SecretAccessKey: p.S3.SecretAccessKey,
			PathStyle:       p.S3.PathStyle,
		})
	}
	return nil, fmt.Errorf("snapshot driver %q not supported", driver)
}

// SnapshotKey returns the key under which contextID's history is stored.
// A configured key namespaces every context.
func SnapshotKey(p config.Persistence, contextID string) string {
	if p.Key == "" {
		return contextID
	}
	return p.Key + ":" + contextID
}
