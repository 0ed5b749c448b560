package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Nunes-ND/msg-scheduler/internal/cache"
	"github.com/Nunes-ND/msg-scheduler/internal/config"
	dbpkg "github.com/Nunes-ND/msg-scheduler/internal/db"
	httpserver "github.com/Nunes-ND/msg-scheduler/internal/http"
	"github.com/Nunes-ND/msg-scheduler/internal/http/handler"
	"github.com/Nunes-ND/msg-scheduler/internal/logger"
	"github.com/Nunes-ND/msg-scheduler/internal/repository/postgres"
	"github.com/Nunes-ND/msg-scheduler/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger := logger.New(cfg.App.LogLevel, cfg.App.Env)
	slog.SetDefault(appLogger)

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) error {
	pool, err := dbpkg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := dbpkg.RunMigrations(ctx, pool, dbpkg.Migrations()); err != nil {
		return err
	}

	checks := map[string]handler.CheckFunc{
		"postgres": pool.Ping,
	}

	deps := service.Dependencies{
		Store: postgres.NewScheduleRepository(pool, appLogger),
	}

	if cfg.Redis.Enabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
		if cfg.Cache.TTL > 0 {
			deps.Deleted = cache.NewDeletedIDs(redisClient, cfg.Cache.TTL)
		}
	}

	schedulerService := service.NewSchedulerService(deps, service.SchedulerServiceOptions{
		Logger: appLogger,
	})

	healthHandler := handler.NewHealthHandler(checks, appLogger)
	messageHandler := handler.NewMessageHandler(schedulerService, handler.MessageHandlerOptions{
		Logger:     appLogger,
		Production: cfg.App.IsProduction(),
	})
	router := httpserver.NewRouter(healthHandler, messageHandler, httpserver.RouterOptions{
		LogRequests: cfg.App.Env == config.EnvDevelopment,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP server listening", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown error", "error", err)
	}
	return nil
}
