package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/reimbursement-service/internal/api/http"
	"github.com/spec-kit/reimbursement-service/internal/api/http/handlers"
	"github.com/spec-kit/reimbursement-service/internal/auth"
	"github.com/spec-kit/reimbursement-service/internal/config"
	"github.com/spec-kit/reimbursement-service/internal/events"
	"github.com/spec-kit/reimbursement-service/internal/observability"
	"github.com/spec-kit/reimbursement-service/internal/persistence"
	"github.com/spec-kit/reimbursement-service/internal/repository"
	"github.com/spec-kit/reimbursement-service/internal/service"
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

	pool := pg.PoolHandle()

	// Without a database the service runs fully in memory, which is enough
	// for local development and demos.
	var employeeRepo repository.EmployeeRepository
	var ticketRepo repository.TicketRepository
	if pool != nil {
		employeeRepo = repository.NewEmployeeRepository(pool)
		ticketRepo = repository.NewTicketRepository(pool)
	} else {
		logger.Warn("running with in-memory repositories; data will not survive restarts")
		employeeRepo = repository.NewMemoryEmployeeRepository()
		ticketRepo = repository.NewMemoryTicketRepository()
	}

	var limiter auth.AttemptLimiter = auth.NoopLimiter{}
	if redis.Client != nil {
		limiter = auth.NewRedisLimiter(redis.Client, logger, cfg.Auth.MaxFailedAttempts, cfg.Auth.FailureWindowSeconds)
	}

	dispatcher := events.NewInMemoryDispatcher()

	directoryService := service.NewDirectoryService(*cfg, service.DirectoryDependencies{
		EmployeeRepo: employeeRepo,
		Limiter:      limiter,
		Dispatcher:   dispatcher,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		EmployeeRepo: employeeRepo,
		Directory:    directoryService,
		Dispatcher:   dispatcher,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, redis.Client, cfg.Events.RedisChannel)
	notificationService.RegisterHandlers()

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Employees: handlers.NewEmployeesHandler(directoryService),
		Tickets:   handlers.NewTicketsHandler(ticketService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
