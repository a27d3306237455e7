package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/angelmondragon/moments-backend/pkg/config"
	"github.com/angelmondragon/moments-backend/pkg/logger"
	"github.com/angelmondragon/moments-backend/pkg/storage/gcs"
	"github.com/angelmondragon/moments-backend/pkg/storage/local"
	"github.com/angelmondragon/moments-backend/pkg/storage/s3"
)

// ObjectStore holds uploaded media bytes. Delete of a missing key succeeds.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	ReadURL(ctx context.Context, key string) (string, error)
	Ping(ctx context.Context) error
}

// New builds the configured driver and wraps it in a circuit breaker.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger) (ObjectStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var (
		store ObjectStore
		err   error
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverGCS:
		store, err = gcs.NewClient(ctx, cfg.GCS, cfg.GCP, gcs.ReadOptions{
			Signed: cfg.Storage.Signed(),
			Expiry: cfg.Storage.ReadURLExpiry,
		}, logg)
	case config.StorageDriverS3:
		store, err = s3.NewClient(ctx, cfg.S3, s3.ReadOptions{
			Signed: cfg.Storage.Signed(),
			Expiry: cfg.Storage.ReadURLExpiry,
		}, logg)
	case config.StorageDriverLocal:
		store, err = local.New(cfg.Local)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s storage: %w", cfg.Storage.Driver, err)
	}

	return NewBreaker(store, cfg.Breaker, logg), nil
}
