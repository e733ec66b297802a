package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub-api/internal/infra/config"
)

// Mongo wraps the driver client with lifecycle and readiness helpers.
type Mongo struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewMongo connects to the configured MongoDB deployment and verifies the
// connection with an initial ping.
func NewMongo(ctx context.Context, cfg config.MongoSettings, log *zap.Logger) (*Mongo, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	log.Info("connected to mongodb",
		zap.String("database", cfg.Database),
	)

	return &Mongo{
		client:   client,
		database: client.Database(cfg.Database),
	}, nil
}

// Database returns a handle to the configured database.
func (m *Mongo) Database() *mongo.Database {
	return m.database
}

// Ping verifies connectivity for readiness checks.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}
