package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-api/internal/api/http"
	"github.com/spec-kit/support-api/internal/api/http/handlers"
	"github.com/spec-kit/support-api/internal/auth"
	"github.com/spec-kit/support-api/internal/config"
	"github.com/spec-kit/support-api/internal/events"
	"github.com/spec-kit/support-api/internal/observability"
	"github.com/spec-kit/support-api/internal/persistence"
	"github.com/spec-kit/support-api/internal/repository"
	"github.com/spec-kit/support-api/internal/service"
	"github.com/spec-kit/support-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store := repository.NewStore(pg.PoolHandle())
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	userService := service.NewUserService(store, dispatcher, cfg.Auth.BcryptCost)
	aggregateService := service.NewAggregateService()
	ticketService := service.NewTicketService(store, aggregateService, dispatcher)
	authService := service.NewAuthService(cfg.Auth, store.Users())

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	collectorID, err := userService.EnsureCollector(ctx, cfg.Support.CollectorUsername, cfg.Support.CollectorEmail)
	if err != nil {
		logger.Fatal("failed to resolve collector account", zap.Error(err))
	}
	logger.Info("collector account resolved", zap.Int64("user_id", collectorID))

	deletionService := service.NewDeletionService(store, aggregateService, collectorID, logger)
	queue := worker.NewRedisQueue(redis.Client, cfg.Support.DeletionQueueKey)
	deletionWorker := worker.NewDeletionWorker(redis.Client, cfg.Support.DeletionQueueKey, deletionService, logger)
	go deletionWorker.Run(ctx)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.Users())

	app := fiber.New(fiber.Config{StrictRouting: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Info:           handlers.NewInfoHandler(cfg.App.Name, cfg.App.Version),
		Tokens:         handlers.NewTokensHandler(authService),
		Users:          handlers.NewUsersHandler(userService, queue, dispatcher, cfg.Support.DefaultListLimit),
		Tickets:        handlers.NewTicketsHandler(ticketService, queue, dispatcher, cfg.Support.DefaultListLimit),
		Messages:       handlers.NewMessagesHandler(ticketService, queue, dispatcher),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
