package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"logitrack/tracker/internal/api"
	"logitrack/tracker/internal/common"
	"logitrack/tracker/internal/config"
	"logitrack/tracker/internal/db"
	"logitrack/tracker/internal/logging"
	"logitrack/tracker/internal/metrics"
	"logitrack/tracker/internal/providers"
	"logitrack/tracker/internal/routes"
)

const (
	cacheCleanupInterval = 5 * time.Minute
	importLockKey        = "tracker:import:lock"
	shutdownTimeout      = 30 * time.Second
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Tracker starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.InitPostgres(cfg.Database.DSN())
	if err != nil {
		logging.Fatal("Failed to connect to Postgres (sqlx)", "error", err)
	}
	defer sqlDB.Close()
	logging.Info("Connected to Postgres (sqlx)")

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(sqlDB); err != nil {
			logging.Fatal("Failed to run migrations", "error", err)
		}
	}

	gormDB, err := db.InitPostgresORM(sqlDB)
	if err != nil {
		logging.Fatal("Failed to connect to Postgres (GORM)", "error", err)
	}
	logging.Info("Connected to Postgres (GORM)")

	metricsReg := metrics.NewMetricsRegistry()

	cache, lock := initCacheAndLock(ctx, cfg)
	defer cache.Close()

	provider := initProvider(ctx, cfg, metricsReg)

	deps, err := api.InitDependencies(cfg, sqlDB, gormDB, cache, provider, lock, metricsReg)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err)
	}

	router := routes.RegisterRoutes(deps, routes.RouterConfig{
		AdminToken:     cfg.AdminToken,
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		UpSince:        time.Now(),
		Ping:           pinger(sqlDB),
		Gatherer:       prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("Server starting", "port", cfg.Port, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}
}

// initCacheAndLock picks the cache backend. With Redis the import lock is
// also shared across instances.
func initCacheAndLock(ctx context.Context, cfg *config.Config) (common.CacheInterface, common.ImportLock) {
	local := common.NewLocalLock()
	if cfg.CacheBackend != "redis" {
		logging.Info("Using in-memory cache")
		return common.NewCacheService(cfg.DetailTTL, cacheCleanupInterval), local
	}

	client := common.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err := client.Ping(ctx).Err(); err != nil {
		logging.Fatal("Failed to connect to Redis", "addr", cfg.Redis.Addr(), "error", err)
	}
	logging.Info("Using Redis cache", "addr", cfg.Redis.Addr())

	lock := common.NewChainLock(local, common.NewRedisLock(client, importLockKey, cfg.Import.LockTTL))
	return common.NewRedisCacheService(client), lock
}

// initProvider prefers the Sheets API when a service account is configured
// and always falls back to the CSV export links.
func initProvider(ctx context.Context, cfg *config.Config, m *metrics.MetricsRegistry) providers.SheetProvider {
	csv := providers.NewCSVExportProvider(cfg.Import.FetchTimeout, m)
	if cfg.GoogleServiceAccountJSON == "" {
		return csv
	}

	sheetsAPI, err := providers.NewSheetsAPIProvider(ctx, []byte(cfg.GoogleServiceAccountJSON))
	if err != nil {
		logging.Warn("Sheets API provider unavailable, using CSV export only", "error", err)
		return csv
	}
	return providers.NewChainProvider(sheetsAPI, csv)
}

func pinger(conn *sqlx.DB) api.Pinger {
	return func(ctx context.Context) error {
		return db.Ping(ctx, conn)
	}
}
