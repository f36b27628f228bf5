package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/svelazco/storeflow-backend/api/routes"
	"github.com/svelazco/storeflow-backend/internal/auth"
	"github.com/svelazco/storeflow-backend/internal/availability"
	"github.com/svelazco/storeflow-backend/internal/orders"
	"github.com/svelazco/storeflow-backend/internal/products"
	"github.com/svelazco/storeflow-backend/internal/reports"
	"github.com/svelazco/storeflow-backend/internal/users"
	"github.com/svelazco/storeflow-backend/pkg/config"
	"github.com/svelazco/storeflow-backend/pkg/db"
	"github.com/svelazco/storeflow-backend/pkg/logger"
	"github.com/svelazco/storeflow-backend/pkg/metrics"
	"github.com/svelazco/storeflow-backend/pkg/migrate"
	"github.com/svelazco/storeflow-backend/pkg/redis"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "storeflow-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewEngineMetrics(registry)

	// A dead database is not fatal: the service boots degraded and serves
	// from memory until the watch loop recovers the backend.
	var dbClient *db.Client
	if client, err := db.New(ctx, cfg.DB, logg); err != nil {
		logg.Error(ctx, "database unavailable at boot, starting degraded", err)
	} else {
		dbClient = client
		defer dbClient.Close()
		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "dev auto-migration failed", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		if client, err := redis.New(ctx, cfg.Redis, logg); err != nil {
			logg.Error(ctx, "redis unavailable, login rate limiting disabled", err)
		} else {
			redisClient = client
			defer redisClient.Close()
		}
	}

	var prober *availability.Prober
	if dbClient != nil {
		prober = availability.NewProber(dbClient, dbClient.DB(), logg, engineMetrics, cfg.Engine.ProbeTimeout)
		if err := prober.Probe(ctx); err != nil {
			logg.Warn(ctx, "initial probe failed, serving from memory")
		}
		go prober.Watch(ctx, cfg.Engine.ProbeInterval, cfg.Engine.ProbeBackoffBase, cfg.Engine.ProbeBackoffCap)
	} else {
		prober = availability.NewProber(nil, nil, logg, engineMetrics, cfg.Engine.ProbeTimeout)
	}

	catalog := products.NewMemoryStore()
	if err := products.Seed(ctx, catalog); err != nil {
		logg.Error(ctx, "seeding fallback catalog failed", err)
	}

	accounts := users.NewMemoryStore()
	if err := accounts.SeedAdmin(cfg.Seed, cfg.Password); err != nil {
		logg.Error(ctx, "seeding fallback admin failed", err)
	}

	var productRepo products.Store
	var orderRepo orders.Store
	var userRepo users.Store
	if dbClient != nil {
		productRepo = products.NewRepository(dbClient.DB(), prober)
		orderRepo = orders.NewRepository(dbClient.DB())
		userRepo = users.NewRepository(dbClient.DB())
	}

	productSvc := products.NewService(productRepo, catalog, prober, logg, engineMetrics)
	orderSvc := orders.NewService(orderRepo, orders.NewMemoryStore(), prober, logg, engineMetrics)
	reportSvc := reports.NewService(productSvc, orderSvc, cfg.Engine.LowStockThreshold)
	authSvc := auth.NewService(userRepo, accounts, prober, cfg.JWT, logg)

	handler := routes.New(routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		Products: productSvc,
		Orders:   orderSvc,
		Reports:  reportSvc,
		Auth:     authSvc,
		Prober:   prober,
		Redis:    redisClient,
		Registry: registry,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	lctx := logg.WithField(ctx, "port", cfg.App.Port)
	logg.Info(lctx, "http server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "http server stopped", err)
		os.Exit(1)
	}
	logg.Info(ctx, "http server shut down")
}
