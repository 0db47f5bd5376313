package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/autolead-platform/cmd/mainconfig"
	"github.com/wolfman30/autolead-platform/internal/api/router"
	"github.com/wolfman30/autolead-platform/internal/app/bootstrap"
	appconfig "github.com/wolfman30/autolead-platform/internal/config"
	httpmiddleware "github.com/wolfman30/autolead-platform/internal/http/middleware"
	"github.com/wolfman30/autolead-platform/internal/leads"
	"github.com/wolfman30/autolead-platform/pkg/logging"
)

func main() {
	// .env is optional; real environment wins.
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting autolead API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	fmt.Println("Server exited gracefully")
}

func run(cfg *appconfig.Config, logger *logging.Logger) error {
	ctx := context.Background()

	loc, err := time.LoadLocation(cfg.DealerTimezone)
	if err != nil {
		return fmt.Errorf("load dealer timezone %q: %w", cfg.DealerTimezone, err)
	}

	pool, err := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}
	catalogDB, err := bootstrap.OpenCatalogDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if catalogDB != nil {
		defer catalogDB.Close()
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	registry, metricsHandler := setupMetrics()

	deps := bootstrap.LeadDeps{
		Config:     cfg,
		Logger:     logger,
		Location:   loc,
		Pool:       pool,
		CatalogDB:  catalogDB,
		Registerer: registry,
	}
	if redisClient != nil {
		deps.Redis = redisClient
	}
	if mainconfig.NeedsAWS(cfg) {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		deps.SES = sesv2.NewFromConfig(awsCfg)
		deps.S3 = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.AWSEndpointOverride != ""
		})
	}

	services, err := bootstrap.BuildLeadServices(deps)
	if err != nil {
		return err
	}

	limiter := httpmiddleware.NewRateLimiter(cfg.FormRateLimitRPS, cfg.FormRateLimitBurst)
	stopEviction := make(chan struct{})
	defer close(stopEviction)
	go limiter.RunEviction(5*time.Minute, 10*time.Minute, stopEviction)

	r := router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(services.Dispatcher, logger),
		RateLimiter:        limiter,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		HealthChecks:       healthChecks(pool, catalogDB, redisClient),
	})

	// Dispatch may run up to its own timeout before the response is written.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.DispatchTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-quit:
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func setupMetrics() (*prometheus.Registry, http.Handler) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func healthChecks(pool *pgxpool.Pool, catalogDB *sql.DB, redisClient *redis.Client) map[string]router.HealthCheck {
	checks := map[string]router.HealthCheck{}
	if pool != nil {
		checks["postgres"] = pool.Ping
	}
	if catalogDB != nil {
		checks["catalog"] = catalogDB.PingContext
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	return checks
}
