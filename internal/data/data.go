package data

import (
	"context"
	"fmt"

	"github.com/lk2023060901/ai-notebook-backend/internal/conf"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/database"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/metrics"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/minio"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/redis"
	"go.uber.org/zap"
)

// Data 持有存储与外部客户端。Redis、DB、MinIO 仅在配置选用时创建，否则为 nil。
type Data struct {
	Store       *Store
	RedisClient *redis.Client
	DB          *database.DB
	MinIOClient *minio.Client
	Logger      *logger.Logger
}

func NewData(config *conf.Config, m *metrics.Metrics, log *logger.Logger) (*Data, func(), error) {
	ctx := context.Background()
	d := &Data{Logger: log}

	cleanup := func() {
		log.Info("cleaning up data resources")
		if d.RedisClient != nil {
			d.RedisClient.Close()
		}
		if d.DB != nil {
			d.DB.Close()
		}
		if d.MinIOClient != nil {
			d.MinIOClient.Close()
		}
	}

	var persister Persister
	switch config.Store.Backend {
	case "redis":
		client, err := redis.New(&config.Redis, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init redis: %w", err)
		}
		d.RedisClient = client
		persister = NewRedisPersister(client, config.Store.RedisKey)
	case "postgres":
		db, err := database.New(&config.Database, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init database: %w", err)
		}
		d.DB = db
		if err := db.AutoMigrate(&SnapshotPO{}); err != nil {
			cleanup()
			return nil, nil, err
		}
		persister = NewPostgresPersister(db.DB, config.Store.SnapshotName)
	default:
		persister = NewFilePersister(config.Store.File)
	}

	if config.Storage.Backend == "minio" {
		client, err := minio.NewClient(&config.MinIO, log.Logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to init minio: %w", err)
		}
		if err := client.EnsureBucket(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to init minio bucket: %w", err)
		}
		d.MinIOClient = client
	}

	var opts []StoreOption
	if m != nil {
		opts = append(opts, WithSaveFailureHook(m.ObservePersistFailure))
	}
	store, err := NewStore(ctx, persister, log, opts...)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to load store: %w", err)
	}
	d.Store = store

	log.Info("data layer initialized",
		zap.String("store_backend", config.Store.Backend),
		zap.String("storage_backend", config.Storage.Backend))

	return d, cleanup, nil
}
