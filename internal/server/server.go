// Package server holds the application container: configuration, loggers,
// the user store connection, redis, the background job service and the
// HTTP server. It owns their start-up and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/workshop/internal/config"
	"github.com/deppfellow/workshop/internal/database"
	"github.com/deppfellow/workshop/internal/lib/job"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/workshop/internal/logger"
)

const redisPingTimeout = 5 * time.Second

type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService

	// DB is set for the postgres driver, Mongo for the mongo driver. Both are
	// nil for the memory driver.
	DB    *database.Database
	Mongo *database.MongoDatabase

	Redis *redis.Client
	Job   *job.JobService

	httpServer *http.Server
}

type options struct {
	background bool
}

// Option customizes New.
type Option func(*options)

// WithoutBackground skips redis and the job worker. Used by one-shot
// commands that only need the store.
func WithoutBackground() Option {
	return func(o *options) {
		o.background = false
	}
}

// New opens the configured store and, unless disabled, redis and the job
// worker. Redis being unreachable is logged, not fatal.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService, opts ...Option) (*Server, error) {
	o := options{background: true}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
	}

	if err := s.openStore(); err != nil {
		return nil, err
	}

	if !o.background {
		return s, nil
	}

	s.Redis = redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	if loggerService.GetApplication() != nil {
		s.Redis.AddHook(nrredis.NewHook(s.Redis.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := s.Redis.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Msg("Failed to connect to Redis, continuing without Redis")
	}

	s.Job = job.NewJobService(logger, cfg)
	s.Job.InitHandlers(cfg, logger)

	if err := s.Job.Start(); err != nil {
		_ = s.closeStore(context.Background())
		return nil, fmt.Errorf("failed to start job service: %w", err)
	}

	return s, nil
}

func (s *Server) openStore() error {
	switch s.Config.Database.Driver {
	case config.DriverPostgres:
		db, err := database.New(s.Config, s.Logger, s.LoggerService)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		s.DB = db
	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), database.DatabasePingTimeout)
		defer cancel()

		mongoDB, err := database.NewMongo(ctx, s.Config, s.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize mongo: %w", err)
		}
		s.Mongo = mongoDB
	case config.DriverMemory:
		s.Logger.Warn().Msg("using in-memory user store, data is lost on restart")
	default:
		return fmt.Errorf("unsupported database driver %q", s.Config.Database.Driver)
	}

	return nil
}

func (s *Server) closeStore(ctx context.Context) error {
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	if s.Mongo != nil {
		if err := s.Mongo.Close(ctx); err != nil {
			return fmt.Errorf("failed to close mongo connection: %w", err)
		}
	}

	return nil
}

// SetupHTTPServer installs handler behind an http.Server using the
// configured port and timeouts (in seconds).
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start blocks serving HTTP. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("driver", s.Config.Database.Driver).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown drains the HTTP server, then stops jobs and closes connections.
// Every step runs even when an earlier one fails; the errors are joined.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErrs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			shutdownErrs = append(shutdownErrs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			shutdownErrs = append(shutdownErrs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}

	if err := s.closeStore(ctx); err != nil {
		shutdownErrs = append(shutdownErrs, err)
	}

	return errors.Join(shutdownErrs...)
}
