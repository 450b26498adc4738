package database

import (
	"context"
	"fmt"

	"github.com/deppfellow/workshop/internal/config"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoDatabase wraps a connected driver client and the configured database.
type MongoDatabase struct {
	Client *mongo.Client
	DB     *mongo.Database
	log    *zerolog.Logger
}

// commandMonitor logs every driver command at debug level, mirroring the
// SQL tracelog used for postgres in the local environment.
func commandMonitor(logger *zerolog.Logger) *event.CommandMonitor {
	mongoLogger := logger.With().Str("database", "mongo").Logger()

	return &event.CommandMonitor{
		Succeeded: func(_ context.Context, e *event.CommandSucceededEvent) {
			mongoLogger.Debug().
				Str("command", e.CommandName).
				Int64("request_id", e.RequestID).
				Dur("duration", e.Duration).
				Msg("mongo command succeeded")
		},
		Failed: func(_ context.Context, e *event.CommandFailedEvent) {
			mongoLogger.Warn().
				Str("command", e.CommandName).
				Int64("request_id", e.RequestID).
				Dur("duration", e.Duration).
				Str("failure", e.Failure).
				Msg("mongo command failed")
		},
	}
}

// NewMongo connects to MongoDB and pings the primary.
func NewMongo(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*MongoDatabase, error) {
	opts := options.Client().ApplyURI(cfg.Database.URI)
	if cfg.Database.MaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.Database.MaxOpenConns))
	}
	if cfg.Primary.Env == "local" {
		opts.SetMonitor(commandMonitor(logger))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, DatabasePingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info().Str("database", cfg.Database.Name).Msg("connected to mongo")

	return &MongoDatabase{
		Client: client,
		DB:     client.Database(cfg.Database.Name),
		log:    logger,
	}, nil
}

// Ping checks the primary is reachable.
func (m *MongoDatabase) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (m *MongoDatabase) Close(ctx context.Context) error {
	m.log.Info().Msg("closing mongo client")
	return m.Client.Disconnect(ctx)
}
