package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-goals/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-goals/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-goals/internal/adapters/metrics"
	"github.com/comitanigiacomo/kanso-goals/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-goals/internal/config"
	"github.com/comitanigiacomo/kanso-goals/internal/core/cycle"
	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
	"github.com/comitanigiacomo/kanso-goals/internal/core/services"
	"github.com/comitanigiacomo/kanso-goals/internal/core/workers"
	"github.com/comitanigiacomo/kanso-goals/internal/logger"
)

// @title                      Kanso Goals API
// @version                    1.0
// @description                Goal-cycle tracking: weekly progress against fixed-length cycles, shared in groups.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := newApp(ctx, cfg, time.Now)
	if err != nil {
		return err
	}
	defer a.Close()

	a.worker.Start(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("kanso goals listening", "addr", srv.Addr, "storage", cfg.Storage, "timezone", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("stop signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

type repositories struct {
	users    domain.UserRepository
	goals    domain.GoalRepository
	progress domain.ProgressRepository
	groups   domain.GroupRepository
}

type app struct {
	router  *gin.Engine
	worker  *workers.CycleWorker
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
}

// newApp wires storage, cache, services and the router. An empty RedisHost
// runs without the goal cache and the rate limiter.
func newApp(ctx context.Context, cfg *config.Config, now func() time.Time) (*app, error) {
	a := &app{}

	var (
		repos repositories
		db    *sqlx.DB
	)

	switch cfg.Storage {
	case config.StorageMemory:
		repos = repositories{
			users:    repository.NewInMemoryUserRepository(),
			goals:    repository.NewInMemoryGoalRepository(),
			progress: repository.NewInMemoryProgressRepository(),
			groups:   repository.NewInMemoryGroupRepository(),
		}
		slog.Warn("using in-memory storage, data is lost on restart")

	default:
		var err error
		db, err = sqlx.Connect("pgx", cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := repository.RunMigrations(db.DB); err != nil {
			a.Close()
			return nil, err
		}
		slog.Info("database connected and migrated", "host", cfg.DBHost, "name", cfg.DBName)

		repos = repositories{
			users:    repository.NewPostgresUserRepository(db),
			goals:    repository.NewPostgresGoalRepository(db),
			progress: repository.NewPostgresProgressRepository(db),
			groups:   repository.NewPostgresGroupRepository(db),
		}
	}

	var rdb *redis.Client
	if cfg.RedisHost != "" {
		client, err := cache.NewRedisClient(ctx, cache.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			slog.Warn("redis unavailable, running without cache and rate limiting", "error", err)
		} else {
			rdb = client
			a.closers = append(a.closers, rdb.Close)
			repos.goals = repository.NewCachedGoalRepository(repos.goals, rdb)
		}
	}

	reg, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		a.Close()
		return nil, err
	}

	calc := cycle.NewCalculator(cfg.Location(), now)

	a.worker = workers.NewCycleWorker(repos.goals, repos.progress, calc, reg).
		WithSweepInterval(cfg.CompletionSweep)

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, repos.users)
	authService := services.NewAuthService(repos.users, tokenService)
	goalService := services.NewGoalService(repos.goals, repos.progress, repos.groups, calc)
	progressService := services.NewProgressService(repos.progress, repos.goals, a.worker, calc)
	statsService := services.NewStatsService(repos.goals, repos.progress, calc)
	groupService := services.NewGroupService(repos.groups, repos.users, repos.goals, repos.progress, calc)

	deps := adapterHTTP.RouterDependencies{
		AuthHandler:     adapterHTTP.NewAuthHandler(authService),
		GoalHandler:     adapterHTTP.NewGoalHandler(goalService),
		ProgressHandler: adapterHTTP.NewProgressHandler(progressService),
		StatsHandler:    adapterHTTP.NewStatsHandler(statsService),
		GroupHandler:    adapterHTTP.NewGroupHandler(groupService),
		TokenValidator:  tokenService,
		Redis:           rdb,
		Metrics:         reg,
		RateLimit:       cfg.RateLimit,
		RateWindow:      cfg.RateWindow,
		StartTime:       time.Now(),
	}
	if db != nil {
		deps.DB = db
	}

	a.router = adapterHTTP.NewRouter(deps)
	return a, nil
}
