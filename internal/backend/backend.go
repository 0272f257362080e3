// Package backend opens the snapshot storage selected by configuration.
package backend

import (
	"context"
	"fmt"

	"alcyxob/palestra-app/internal/config"
	"alcyxob/palestra-app/internal/repository/mongo"
	"alcyxob/palestra-app/internal/storage"

	"github.com/sirupsen/logrus"
)

// CloseFunc releases connections held by an opened backend.
type CloseFunc func() error

func noopClose() error { return nil }

// Open connects to the configured backend and returns it as a KeyValueStore.
func Open(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (storage.KeyValueStore, CloseFunc, error) {
	log = log.WithField("backend", cfg.Storage.Backend)

	switch cfg.Storage.Backend {
	case "", storage.BackendMemory:
		log.Warn("using in-memory snapshot storage, plans are lost on restart")
		return storage.NewMemoryStore(), noopClose, nil

	case storage.BackendRedis:
		client, err := storage.NewRedisClient(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Storage.RedisAddr, err)
		}
		log.WithField("addr", cfg.Storage.RedisAddr).Info("redis snapshot storage connected")
		return storage.NewRedisStore(client, cfg.Storage.RedisTTL), client.Close, nil

	case storage.BackendMongo:
		client, err := mongo.ConnectDB(ctx, cfg.Database.URI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		repo := mongo.NewMongoSnapshotRepository(client.Database(cfg.Database.Name), cfg.Database.Collection)
		log.WithFields(logrus.Fields{
			"database":   cfg.Database.Name,
			"collection": cfg.Database.Collection,
		}).Info("mongodb snapshot storage connected")
		return storage.NewRepositoryStore(repo, storage.BackendMongo), func() error { return mongo.DisconnectDB(client) }, nil

	case storage.BackendS3:
		s3Store, err := storage.NewS3Store(ctx, cfg.S3, log)
		if err != nil {
			return nil, nil, err
		}
		return s3Store, noopClose, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// OpenExporter returns the S3 store used for plan exports, or nil when no
// bucket endpoint is configured.
func OpenExporter(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*storage.S3Store, error) {
	if cfg.S3.Endpoint == "" && cfg.Storage.Backend != storage.BackendS3 {
		return nil, nil
	}
	return storage.NewS3Store(ctx, cfg.S3, log)
}
