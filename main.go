package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"

	"todo-list/backend/internal/config"
	"todo-list/backend/internal/database"
	"todo-list/backend/internal/handlers"
	"todo-list/backend/internal/middleware"
	"todo-list/backend/internal/monitoring"
	"todo-list/backend/internal/repositories"
	"todo-list/backend/internal/services"
	"todo-list/backend/internal/storage"
)

type application struct {
	config   *config.Config
	stack    *storage.Stack
	manager  *services.TaskManager
	limiter  *middleware.RateLimiter
	registry *monitoring.Registry
	router   *gin.Engine
}

func storageOptions(cfg *config.Config) storage.Options {
	pool := database.DefaultPoolConfig()
	pool.DSN = cfg.GetDatabaseDSN()
	pool.MaxOpenConns = cfg.Database.MaxOpenConns
	pool.MaxIdleConns = cfg.Database.MaxIdleConns
	pool.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	pool.ConnMaxIdleTime = cfg.Database.ConnMaxIdleTime
	if cfg.IsProduction() {
		pool.LogLevel = logger.Warn
	}

	redisConfig := storage.DefaultRedisConfig()
	redisConfig.Addr = cfg.GetRedisAddr()
	redisConfig.Password = cfg.Redis.Password
	redisConfig.DB = cfg.Redis.DB
	redisConfig.PoolSize = cfg.Redis.PoolSize
	redisConfig.MinIdleConns = cfg.Redis.MinIdleConns
	redisConfig.MaxRetries = cfg.Redis.MaxRetries
	redisConfig.DialTimeout = cfg.Redis.DialTimeout
	redisConfig.ReadTimeout = cfg.Redis.ReadTimeout
	redisConfig.WriteTimeout = cfg.Redis.WriteTimeout

	return storage.Options{
		Backend:  cfg.Storage.Backend,
		Dir:      cfg.Storage.Dir,
		Database: pool,
		Redis:    redisConfig,
		Breaker: &storage.BreakerConfig{
			MaxFailures:      cfg.Breaker.MaxFailures,
			Timeout:          cfg.Breaker.Timeout,
			HalfOpenMaxCalls: cfg.Breaker.HalfOpenMaxCalls,
		},
	}
}

// newApplication wires storage, the task store and the HTTP router, and
// loads the saved task list.
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	loc, err := cfg.Tasks.Location()
	if err != nil {
		return nil, err
	}
	locale, err := cfg.Tasks.LanguageTag()
	if err != nil {
		return nil, err
	}

	stack, err := storage.Open(storageOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	repo := repositories.NewTaskRepository(stack, cfg.Tasks.StorageKey)
	store := services.NewTaskStore(repo, services.NewTaskFactory(nil, nil, loc))

	// Starting empty on a read error would let the next save wipe the list.
	n, err := store.Hydrate(ctx)
	if err != nil {
		stack.Close()
		return nil, err
	}
	log.Printf("Loaded %d tasks from %s storage (key %q)", n, stack.Backend(), repo.Key())

	manager := services.NewTaskManager(store, services.ManagerConfig{
		Locale:        locale,
		ViewCacheSize: cfg.Tasks.ViewCacheSize,
	})

	registry := monitoring.NewRegistry()
	registry.RegisterHealthCheck("storage", stack.Health)
	registry.RegisterStats("storage", stack.Stats)
	registry.RegisterStats("tasks", manager.Stats)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMin:  cfg.RateLimit.RequestsPerMin,
			BurstSize:       cfg.RateLimit.BurstSize,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
		})
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Manager:     manager,
		Monitoring:  registry,
		RateLimiter: limiter,
		CORS:        middleware.CORS(cfg.CORS.AllowedOrigins, cfg.CORS.MaxAge),
		AccessLog:   !cfg.IsProduction() && gin.Mode() != gin.TestMode,
	})

	return &application{
		config:   cfg,
		stack:    stack,
		manager:  manager,
		limiter:  limiter,
		registry: registry,
		router:   router,
	}, nil
}

func (a *application) Close() error {
	return a.stack.Close()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.Close()

	if app.limiter != nil {
		go app.limiter.Run(ctx)
	}

	httpServer := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Listening on %s (%s)", httpServer.Addr, cfg.Server.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Printf("Bye")
}
