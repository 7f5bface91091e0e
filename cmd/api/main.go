package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/campus360/incident-service/internal/api/http"
	"github.com/campus360/incident-service/internal/api/http/handlers"
	"github.com/campus360/incident-service/internal/auth"
	"github.com/campus360/incident-service/internal/config"
	"github.com/campus360/incident-service/internal/events"
	"github.com/campus360/incident-service/internal/observability"
	"github.com/campus360/incident-service/internal/persistence"
	"github.com/campus360/incident-service/internal/repository"
	"github.com/campus360/incident-service/internal/repository/memory"
	"github.com/campus360/incident-service/internal/seed"
	"github.com/campus360/incident-service/internal/service"
	"github.com/campus360/incident-service/internal/worker"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	migrateOnly := pflag.Bool("migrate-only", false, "apply migrations and catalog seed, then exit")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && (cfg.Postgres.RunMigrations || *migrateOnly) {
		if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		store      repository.Store
		catalog    repository.CatalogRepository
		principals repository.PrincipalRepository
	)
	checks := map[string]handlers.Pinger{}
	if pg.Enabled() {
		store = repository.NewPostgresStore(pg.Pool)
		catalog = repository.NewCatalogRepository(pg.Pool)
		principals = repository.NewPrincipalRepository(pg.Pool)
		checks["postgres"] = pg
	} else {
		mem := memory.NewStore(nil)
		store, catalog, principals = mem, mem.Catalog(), mem.Principals()
	}
	if redis != nil {
		catalog = repository.NewCachedCatalogRepository(catalog, redis.Client, cfg.Redis.CatalogCacheTTL(), logger)
		checks["redis"] = redis
	}

	if !pg.Enabled() || cfg.Postgres.SeedCatalogs || *migrateOnly {
		if _, err := seed.Apply(ctx, catalog, logger); err != nil {
			logger.Fatal("failed to seed catalogs", zap.Error(err))
		}
	}
	if *migrateOnly {
		logger.Info("migrations complete")
		return
	}

	var identity auth.IdentityProvider
	switch cfg.Auth.Mode {
	case config.AuthModeRemote:
		identity = auth.NewRemoteIdentityProvider(cfg.Auth.ServiceURL, cfg.Auth.Timeout(), redisClient(redis), cfg.Auth.CacheTTL(), logger)
	default:
		identity = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger))

	var forwarder *worker.EventForwarder
	if cfg.Broker.URL != "" {
		publisher := events.NewAMQPPublisher(cfg.Broker.URL, cfg.Broker.Exchange, logger)
		defer publisher.Close() //nolint:errcheck
		forwarder = worker.NewEventForwarder(publisher, 1024, logger)
		forwarder.Register(dispatcher)
		forwarder.Start()
		checks["broker"] = publisher
	}

	resolver := service.NewCatalogResolver(catalog)
	principalService := service.NewPrincipalService(principals, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:        store,
		Resolver:     resolver,
		Principals:   principals,
		Transitions:  service.AllowAll(),
		Dispatcher:   dispatcher,
		Logger:       logger,
		DefaultLimit: cfg.Pagination.DefaultLimit,
		MaxLimit:     cfg.Pagination.MaxLimit,
	})

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(httptransport.ServerConfig{
		Name:           cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        metrics,
	}, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks, metrics),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Catalogs:       handlers.NewCatalogsHandler(service.NewCatalogService(catalog, resolver, logger)),
		Principals:     handlers.NewPrincipalsHandler(principalService),
		AuthMiddleware: auth.NewAuthMiddleware(identity, principalService, logger),
	})

	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("auth_mode", cfg.Auth.Mode),
			zap.Bool("postgres", pg.Enabled()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.ShutdownWithTimeout(10 * time.Second)
	if forwarder != nil {
		drainCtx, drainCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer drainCancel()
		if err := forwarder.Stop(drainCtx); err != nil {
			logger.Warn("event forwarder did not drain", zap.Error(err))
		}
	}
}

func redisClient(r *persistence.Redis) *goredis.Client {
	if r == nil {
		return nil
	}
	return r.Client
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
