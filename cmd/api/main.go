package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/workforce-service/internal/api/http"
	"github.com/spec-kit/workforce-service/internal/api/http/handlers"
	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/observability"
	"github.com/spec-kit/workforce-service/internal/persistence"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/repository/memstore"
	"github.com/spec-kit/workforce-service/internal/scoring"
	"github.com/spec-kit/workforce-service/internal/service"
	"github.com/spec-kit/workforce-service/internal/worker"
)

type repositories struct {
	teams   repository.TeamRepository
	workers repository.WorkerRepository
	items   repository.WorkItemRepository
	history repository.WorkItemHistoryRepository
	leaves  repository.LeaveRepository
	tx      repository.TxRunner
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
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

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := newRepositories(pg, logger)
	engine := scoring.New()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	notificationService := service.NewNotificationService(cfg.Notification, service.NotificationDependencies{
		Dispatcher: dispatcher,
		Bridge:     events.NewRedisBridge(redis, cfg.Notification.EventsChannel),
		Metrics:    metrics,
		Logger:     logger,
	})
	notifier := worker.StartNotificationWorker(ctx, notificationService, cfg.Notification.QueueSize, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{WorkerRepo: repos.workers})
	wellnessService := service.NewWellnessService(service.WellnessDependencies{
		WorkerRepo:   repos.workers,
		WorkItemRepo: repos.items,
		HistoryRepo:  repos.history,
		Engine:       engine,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	leaveService := service.NewLeaveService(cfg.Scoring, service.LeaveDependencies{
		WorkerRepo:   repos.workers,
		WorkItemRepo: repos.items,
		HistoryRepo:  repos.history,
		LeaveRepo:    repos.leaves,
		Tx:           repos.tx,
		Engine:       engine,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	assignmentService := service.NewAssignmentService(cfg.Scoring, service.AssignmentDependencies{
		WorkerRepo:   repos.workers,
		WorkItemRepo: repos.items,
		HistoryRepo:  repos.history,
		LeaveRepo:    repos.leaves,
		Tx:           repos.tx,
		Engine:       engine,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	teamService := service.NewTeamService(cfg.Scoring, service.TeamDependencies{
		WorkerRepo:   repos.workers,
		TeamRepo:     repos.teams,
		WorkItemRepo: repos.items,
		Engine:       engine,
	})
	directoryService := service.NewDirectoryService(*cfg, service.DirectoryDependencies{
		TeamRepo:   repos.teams,
		WorkerRepo: repos.workers,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Me:             handlers.NewMeHandler(wellnessService, leaveService),
		Manager:        handlers.NewManagerHandler(teamService, assignmentService, leaveService),
		HR:             handlers.NewHRHandler(directoryService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), repos.workers),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := notifier.Stop(flushCtx); err != nil {
		logger.Warn("notification flush", zap.Error(err))
	}
	flushCancel()
	logger.Info("shutdown complete", zap.Any("metrics", metrics.Snapshot()))
}

// newRepositories uses PostgreSQL when a pool is configured and falls back
// to an in-memory store otherwise.
func newRepositories(pg *persistence.Postgres, logger *zap.Logger) repositories {
	pool := pg.PoolHandle()
	if pool == nil {
		logger.Warn("no database configured; using in-memory repositories")
		store := memstore.New()
		return repositories{
			teams:   store.Teams(),
			workers: store.Workers(),
			items:   store.WorkItems(),
			history: store.History(),
			leaves:  store.Leaves(),
			tx:      repository.NoTx{},
		}
	}
	return repositories{
		teams:   repository.NewTeamRepository(pool),
		workers: repository.NewWorkerRepository(pool),
		items:   repository.NewWorkItemRepository(pool),
		history: repository.NewWorkItemHistoryRepository(pool),
		leaves:  repository.NewLeaveRepository(pool),
		tx:      repository.NewTxRunner(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
