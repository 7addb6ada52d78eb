package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	_ "github.com/hilthontt/ridehail/docs"
	"github.com/hilthontt/ridehail/internal/dispatch"
	"github.com/hilthontt/ridehail/internal/domain"
	"github.com/hilthontt/ridehail/internal/infrastructure/configs"
	"github.com/hilthontt/ridehail/internal/infrastructure/events"
	"github.com/hilthontt/ridehail/internal/infrastructure/logging"
	"github.com/hilthontt/ridehail/internal/infrastructure/messaging"
	"github.com/hilthontt/ridehail/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/ridehail/internal/infrastructure/repository"
	"github.com/hilthontt/ridehail/internal/infrastructure/tracing"
	"github.com/hilthontt/ridehail/internal/infrastructure/ws"
	"github.com/hilthontt/ridehail/internal/persistence/db"
	mongoRepository "github.com/hilthontt/ridehail/internal/persistence/repository"
	"github.com/hilthontt/ridehail/internal/presentation/api"
	"github.com/hilthontt/ridehail/internal/presentation/handler/health"
	"github.com/hilthontt/ridehail/internal/presentation/handler/rides"
	"github.com/hilthontt/ridehail/internal/presentation/handler/socket"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// @title        Ride-hailing dispatch API
// @version      1.0
// @description  Ride requests, fare estimates and live ride status over WebSocket.
// @BasePath     /
func main() {
	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(cfg.Logger.ToLogging())
	logger.Info(logging.General, logging.Startup, "configuration loaded", map[logging.ExtraKey]any{
		"path":   configPath,
		"driver": cfg.Store.Driver,
	})

	sh, err := tracing.InitTracer(tracing.NewConfig(cfg.Tracing))
	if err != nil {
		logger.Fatal(logging.Tracing, logging.Startup, "failed to initialize the tracer", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(context.Background())

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal(logging.MongoDB, logging.Connect, "failed to open ride store", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	defer stores.close()

	registry := ws.NewRegistry(logger)

	var publisher dispatch.EventPublisher
	if cfg.Messaging.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.Messaging.URI, logger)
		if err != nil {
			logger.Fatal(logging.RabbitMQ, logging.Connect, "failed to connect to rabbitmq", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		defer rabbitmq.Close()

		publisher = events.NewRidePublisher(rabbitmq)

		rideConsumer := events.NewRideConsumer(rabbitmq, stores.audit, logger)
		go func() {
			if err := rideConsumer.Listen(ctx); err != nil {
				logger.Error(logging.RabbitMQ, logging.Consume, "ride consumer stopped", map[logging.ExtraKey]any{
					logging.ErrorMessage: err.Error(),
				})
			}
		}()

		stores.checks["messaging"] = func(context.Context) error {
			if rabbitmq.IsClosed() {
				return messaging.ErrConnectionClosed
			}
			return nil
		}
	}

	core, err := dispatch.New(dispatch.Options{
		Rides:              stores.rides,
		Rooms:              registry,
		Publisher:          publisher,
		Logger:             logger,
		StoreTimeout:       cfg.Store.Timeout,
		EnforceTransitions: cfg.Dispatch.EnforceTransitions,
	})
	if err != nil {
		logger.Fatal(logging.Dispatch, logging.Startup, "failed to build dispatch core", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	ridesHandler := rides.NewHandler(core, domain.NewFareCalculator(cfg.Fare.Base, cfg.Fare.PerKm), logger)
	healthHandler := health.NewHandler(stores.checks)
	socketHandler := socket.NewHandler(socket.Options{
		Dispatcher:        core,
		Registry:          registry,
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
		SendBuffer:        cfg.Dispatch.SendBuffer,
		Logger:            logger,
		MessagesPerSecond: cfg.Dispatch.MessagesPerSecond,
		MessageBurst:      cfg.Dispatch.MessageBurst,
	})

	rlOptions := ratelimiter.NewOptions(cfg.RateLimiter)
	if cfg.RateLimiter.RedisAddr != "" {
		redisClient, err := ratelimiter.NewRedisClient(ctx, cfg.RateLimiter.RedisAddr)
		if err != nil {
			logger.Warn(logging.General, logging.RateLimiting, "redis unavailable; rate limiting per process", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		} else {
			rlOptions.Store = ratelimiter.NewRedisStore(redisClient, "ridehail:")
		}
	}
	if rlOptions.Store == nil {
		rlOptions.Store = ratelimiter.NewMemoryStore(rlOptions.CacheTTL)
	}
	defer rlOptions.Store.Close()
	rl := ratelimiter.New(rlOptions)
	app := api.NewApplication(*cfg, ridesHandler, healthHandler, socketHandler, logger, rl)
	app.OnShutdown(registry.Close)
	app.OnShutdown(cancel)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("connections", expvar.Func(func() any {
		return registry.ConnectionCount()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatal(logging.General, logging.Startup, "server failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}

type stores struct {
	rides  domain.RideRepository
	audit  domain.RideAuditRepository
	checks map[string]health.Checker
	close  func()
}

// openStores connects the configured ride store. A mongo store that cannot
// be reached aborts startup.
func openStores(ctx context.Context, cfg *configs.Config, logger logging.Logger) (*stores, error) {
	if cfg.Store.Driver == "memory" {
		logger.Warn(logging.General, logging.Startup, "using in-memory ride store; rides are lost on restart", nil)
		return &stores{
			rides:  repository.NewRideRepository(),
			audit:  repository.NewRideAuditRepository(),
			checks: map[string]health.Checker{},
			close:  func() {},
		}, nil
	}

	mongoCfg := db.NewMongoConfig(cfg.Store)
	client, err := db.NewMongoClient(ctx, mongoCfg)
	if err != nil {
		return nil, err
	}

	database := db.GetDatabase(client, mongoCfg)
	rideRepo := mongoRepository.NewRideRepository(database)
	auditRepo := mongoRepository.NewRideAuditLogRepository(database)

	indexCtx, cancel := context.WithTimeout(ctx, cfg.Store.Timeout)
	defer cancel()
	if indexed, ok := rideRepo.(interface{ EnsureIndexes(context.Context) error }); ok {
		if err := indexed.EnsureIndexes(indexCtx); err != nil {
			_ = db.DisconnectMongo(ctx, client)
			return nil, err
		}
	}
	if err := auditRepo.EnsureIndexes(indexCtx); err != nil {
		_ = db.DisconnectMongo(ctx, client)
		return nil, err
	}

	logger.Info(logging.MongoDB, logging.Connect, "connected to mongodb", map[logging.ExtraKey]any{
		"database": mongoCfg.Database,
	})

	return &stores{
		rides: rideRepo,
		audit: auditRepo,
		checks: map[string]health.Checker{
			"store": func(ctx context.Context) error {
				return client.Ping(ctx, readpref.Primary())
			},
		},
		close: func() {
			if err := db.DisconnectMongo(context.Background(), client); err != nil {
				logger.Error(logging.MongoDB, logging.Shutdown, "failed to disconnect mongodb", map[logging.ExtraKey]any{
					logging.ErrorMessage: err.Error(),
				})
			}
		},
	}, nil
}
