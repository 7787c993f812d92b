package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/driveyard/driveyard/internal/app/system/blob"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// DBDeps bundles the backing-service clients handlers depend on.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Blobs         blob.Store
}

// ConnectDB establishes connections to MongoDB and the object store.
func ConnectDB(ctx context.Context, cfg *Config, logger *zap.Logger) (DBDeps, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetMaxPoolSize(cfg.Mongo.MaxPoolSize).
		SetMinPoolSize(cfg.Mongo.MinPoolSize)

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return DBDeps{}, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", cfg.Mongo.Database),
		zap.Uint64("max_pool_size", cfg.Mongo.MaxPoolSize),
		zap.Uint64("min_pool_size", cfg.Mongo.MinPoolSize),
	)

	blobs, err := blob.NewMinioStore(connectCtx, blob.MinioConfig{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		Bucket:    cfg.Minio.Bucket,
		UseSSL:    cfg.Minio.UseSSL,
	}, logger)
	if err != nil {
		return DBDeps{}, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(cfg.Mongo.Database),
		Blobs:         blobs,
	}, nil
}

// Disconnect closes the MongoDB connection.
func (d DBDeps) Disconnect(ctx context.Context) error {
	if d.MongoClient == nil {
		return nil
	}
	return d.MongoClient.Disconnect(ctx)
}
