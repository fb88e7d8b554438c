package config

import (
	"context"
	"fmt"

	"github.com/rongwang/studyswap/internal/storage"
)

// OpenBackend connects the key/value backend selected by STORAGE_DRIVER
func OpenBackend(ctx context.Context, cfg *Config) (storage.Backend, error) {
	switch cfg.Storage.Driver {
	case DriverMemory:
		return storage.NewMemoryBackend(), nil

	case DriverPostgres, DriverSQLite:
		db, err := SetupDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return storage.NewSQLBackend(db), nil

	case DriverRedis:
		backend, err := storage.NewRedisBackend(ctx, cfg.Redis.URL, cfg.Redis.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return backend, nil

	case DriverS3:
		client, err := storage.NewS3Client(ctx, storage.S3Options{
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure s3: %w", err)
		}
		return storage.NewS3Backend(client, cfg.S3.Bucket, cfg.S3.Prefix), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
