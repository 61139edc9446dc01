package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	_ "github.com/cyco/cyco-engine/docs"
	"github.com/cyco/cyco-engine/internal/api"
	"github.com/cyco/cyco-engine/internal/core/ports"
	"github.com/cyco/cyco-engine/internal/core/service"
	"github.com/cyco/cyco-engine/internal/infrastructure/config"
	mongodb "github.com/cyco/cyco-engine/internal/infrastructure/db/mongo"
	redisdb "github.com/cyco/cyco-engine/internal/infrastructure/db/redis"
	httpserver "github.com/cyco/cyco-engine/internal/infrastructure/http"
	"github.com/cyco/cyco-engine/internal/infrastructure/http/handlers"
	"github.com/cyco/cyco-engine/internal/infrastructure/payment"
	"github.com/cyco/cyco-engine/internal/infrastructure/queue"
	"github.com/cyco/cyco-engine/internal/infrastructure/realtime"
	"github.com/cyco/cyco-engine/pkg/logger"
	"github.com/cyco/cyco-engine/pkg/tracing"
)

const serviceName = "cyco-engine"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//	@title			cyco-engine API
//	@version		1.0
//	@description	Backend gateway for the Cyco streaming catalog: accounts, wishlists, forum, payments and realtime notifications.
//	@BasePath		/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{Service: serviceName})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Version: version,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("gateway stopped with error")
	}
	log.Info().Msg("gateway shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	shutdownTracing := tracing.Noop
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, serviceName, cfg.Tracing.Endpoint)
		if err != nil {
			return err
		}
		shutdownTracing = shutdown
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	healthChecks := map[string]handlers.Check{"mongo": handlers.MongoCheck(db)}

	var (
		intentCache ports.IntentCache
		relay       ports.NotificationRelay
		subscriber  *redisdb.NotificationRelay
	)
	if cfg.Redis.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		intentCache = redisdb.NewIntentCache(rdb)
		subscriber = redisdb.NewNotificationRelay(rdb, uuid.NewString(), logger.Component(log, "relay"))
		relay = subscriber
		healthChecks["redis"] = handlers.RedisCheck(rdb)
	} else {
		log.Warn().Msg("redis disabled: idempotency keys are not cached and notifications stay on this instance")
	}

	// --- Notifications ---
	hub := realtime.NewHub(relay, logger.Component(log, "hub"))
	dispatcher := queue.NewDispatcher(cfg.Dispatch.Workers, hub, logger.Component(log, "dispatcher"))
	dispatcher.Start(ctx)

	if subscriber != nil {
		go func() {
			if err := subscriber.Subscribe(ctx, hub.DeliverRemote); err != nil {
				log.Error().Err(err).Msg("notification relay stopped")
			}
		}()
	}

	// --- Services ---
	if cfg.Payment.SecretKey == "" {
		log.Warn().Msg("PAYMENT_SECRET_KEY is empty: payment intents will be rejected by the processor")
	}
	processor := payment.NewStripeProcessor(cfg.Payment.SecretKey, payment.DefaultBreakerSettings, logger.Component(log, "payments"))

	tokens := service.NewTokenService(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	users := service.NewUserService(userRepo, log)

	e := api.NewRouter(api.Dependencies{
		Auth:         service.NewAuthService(userRepo, tokens),
		Tokens:       tokens,
		Users:        users,
		Catalog:      service.NewCatalogService(mongodb.NewCatalogRepository(db), log),
		Forum:        service.NewForumService(mongodb.NewForumRepository(db), log),
		Payments:     service.NewPaymentService(processor, mongodb.NewPaymentRepository(db), intentCache, log),
		Hub:          hub,
		Queue:        dispatcher,
		HealthChecks: healthChecks,
		Log:          log,
	}, api.Options{
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		RateLimitRPS: cfg.HTTP.RateLimitRPS,
		BodyLimit:    cfg.HTTP.BodyLimit,
		Tracing:      cfg.Tracing.Enabled,
		Metrics:      true,
		Docs:         true,
	})

	return httpserver.Serve(ctx, e, ":"+cfg.Port, log, hub.Close)
}
