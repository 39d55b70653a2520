package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/playdesk/support-desk/internal/api/http"
	"github.com/playdesk/support-desk/internal/api/http/handlers"
	"github.com/playdesk/support-desk/internal/auth"
	"github.com/playdesk/support-desk/internal/config"
	"github.com/playdesk/support-desk/internal/events"
	"github.com/playdesk/support-desk/internal/observability"
	"github.com/playdesk/support-desk/internal/persistence"
	"github.com/playdesk/support-desk/internal/repository"
	"github.com/playdesk/support-desk/internal/repository/memory"
	"github.com/playdesk/support-desk/internal/service"
	"github.com/playdesk/support-desk/internal/session"
	"github.com/playdesk/support-desk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
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

	var uow repository.UnitOfWork
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		uow = repository.NewStore(pg.PoolHandle())
	} else {
		uow = memory.NewStore()
	}
	dependencies := map[string]handlers.Pinger{"storage": uow}

	var sessions session.Store
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		redisSessions := session.NewRedisStore(redis.Client, cfg.Session.KeyPrefix, cfg.Session.Channel, logger)
		go worker.NewSessionWorker(redisSessions, logger, time.Second).Run(ctx)
		sessions = redisSessions
		dependencies["redis"] = redis
	default:
		sessions = session.NewMemoryStore()
	}
	unsubscribe := worker.LogSessionChanges(sessions, logger)
	defer unsubscribe()

	metrics := observability.NewMetrics(metricsNamespace(cfg.App.Name))
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification, metrics), logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL())
	userService := service.NewUserService(service.UserDependencies{
		UnitOfWork: uow,
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		UnitOfWork: uow,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authService := service.NewAuthenticationService(service.AuthDependencies{
		UserRepo:     uow.Users(),
		TokenManager: tokens,
		Sessions:     sessions,
		Logger:       logger,
	})

	if boot := cfg.Auth.BootstrapAgent; boot.Email != "" {
		agent, created, err := userService.EnsureAgent(ctx, service.CreateAgentInput{
			Name:     boot.Name,
			Email:    boot.Email,
			Password: boot.Password,
		})
		if err != nil {
			logger.Fatal("failed to bootstrap agent", zap.Error(err))
		}
		logger.Info("bootstrap agent ready", zap.String("user_id", agent.ID), zap.Bool("created", created))
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Authentication: handlers.NewAuthenticationHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), uow.Users(), sessions),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func metricsNamespace(appName string) string {
	return strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(appName)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
