package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/prices-backend/api/controllers"
	"github.com/angelmondragon/prices-backend/api/middleware"
	"github.com/angelmondragon/prices-backend/api/routes"
	"github.com/angelmondragon/prices-backend/internal/prices"
	"github.com/angelmondragon/prices-backend/pkg/config"
	"github.com/angelmondragon/prices-backend/pkg/db"
	"github.com/angelmondragon/prices-backend/pkg/logger"
	"github.com/angelmondragon/prices-backend/pkg/metrics"
	"github.com/angelmondragon/prices-backend/pkg/migrate"
	"github.com/angelmondragon/prices-backend/pkg/redis"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Configured() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			_ = dbClient.Close()
			os.Exit(1)
		}
	}
	defer func() {
		closeErr := dbClient.Close()
		if redisClient != nil {
			closeErr = multierr.Append(closeErr, redisClient.Close())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error closing resources", closeErr)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var cache *prices.Cache
	if cfg.Cache.Enabled {
		if redisClient == nil {
			logg.Warn(ctx, "cache enabled without redis settings; resolving without cache")
		} else {
			cache, err = prices.NewCache(redisClient, cfg.Cache.TTL)
			if err != nil {
				logg.Error(ctx, "failed to create price cache", err)
				os.Exit(1)
			}
		}
	}

	registry := metrics.NewRegistry()
	resolutionMetrics := metrics.NewResolutionMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	repo := prices.NewRepository(dbClient.DB())
	serviceParams := prices.ServiceParams{
		Store:   repo,
		Cache:   cache,
		Metrics: resolutionMetrics,
		Logger:  logg,
	}
	if cfg.Resolver.Pushdown {
		serviceParams.Pushdown = repo
	}
	priceService, err := prices.NewService(serviceParams)
	if err != nil {
		logg.Error(ctx, "failed to create price service", err)
		os.Exit(1)
	}

	adminService, err := prices.NewAdminService(prices.AdminServiceParams{
		Repo:   repo,
		Tx:     dbClient,
		Cache:  cache,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create admin price service", err)
		os.Exit(1)
	}

	limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, cfg.HTTP.TrustProxy, logg)
	limiter.StartCleanup(ctx, time.Minute)

	readiness := []controllers.ReadinessCheck{{Name: "database", Pinger: dbClient}}
	if redisClient != nil {
		readiness = append(readiness, controllers.ReadinessCheck{Name: "redis", Pinger: redisClient})
	}

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Prices:      priceService,
		Admin:       adminService,
		Readiness:   readiness,
		Gatherer:    registry,
		HTTPMetrics: httpMetrics,
		RateLimiter: limiter,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logCtx := logg.WithFields(ctx, map[string]any{
			"port":     cfg.App.Port,
			"env":      cfg.App.Env,
			"driver":   dbClient.Driver(),
			"cache":    cache != nil,
			"pushdown": cfg.Resolver.Pushdown,
		})
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok && err != nil {
			logg.Error(context.Background(), "server stopped unexpectedly", err)
			stop()
			return
		}
	case <-ctx.Done():
	}

	logg.Info(context.Background(), "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "graceful shutdown failed", err)
	}
}
