package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/omarhassan/retailops-backend/api/routes"
	"github.com/omarhassan/retailops-backend/internal/audit"
	"github.com/omarhassan/retailops-backend/internal/catalog"
	"github.com/omarhassan/retailops-backend/internal/costing"
	"github.com/omarhassan/retailops-backend/internal/docnum"
	"github.com/omarhassan/retailops-backend/internal/ledger"
	"github.com/omarhassan/retailops-backend/internal/receiving"
	"github.com/omarhassan/retailops-backend/internal/returns"
	"github.com/omarhassan/retailops-backend/internal/sales"
	"github.com/omarhassan/retailops-backend/pkg/config"
	"github.com/omarhassan/retailops-backend/pkg/db"
	"github.com/omarhassan/retailops-backend/pkg/logger"
	"github.com/omarhassan/retailops-backend/pkg/metrics"
	"github.com/omarhassan/retailops-backend/pkg/migrate"
	"github.com/omarhassan/retailops-backend/pkg/redis"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	workflowMetrics := metrics.NewWorkflowMetrics(promRegistry)

	conn := dbClient.DB()
	catalogRepo := catalog.NewRepository(conn)
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}
	catalogSvc, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	auditSvc, err := audit.NewService(audit.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	numbers := docnum.NewService()
	salesRepo := sales.NewRepository(conn)

	receivingSvc, err := receiving.NewService(receiving.ServiceParams{
		DB:             dbClient,
		Repo:           receiving.NewRepository(conn),
		Catalog:        catalogRepo,
		Ledger:         ledgerSvc,
		Costing:        costing.NewEngine(),
		Numbers:        numbers,
		Logger:         logg,
		Metrics:        workflowMetrics,
		DefaultTaxRate: cfg.Purchasing.DefaultTaxRatePercent,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create receiving service", err)
		os.Exit(1)
	}

	salesSvc, err := sales.NewService(sales.ServiceParams{
		DB:      dbClient,
		Repo:    salesRepo,
		Catalog: catalogRepo,
		Ledger:  ledgerSvc,
		Numbers: numbers,
		Logger:  logg,
		Metrics: workflowMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	returnsSvc, err := returns.NewService(returns.ServiceParams{
		DB:      dbClient,
		Repo:    returns.NewRepository(conn),
		Sales:   salesRepo,
		Catalog: catalogRepo,
		Ledger:  ledgerSvc,
		Audit:   auditSvc,
		Numbers: numbers,
		Logger:  logg,
		Metrics: workflowMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create returns service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, promRegistry, routes.Services{
			Catalog:   catalogSvc,
			Ledger:    ledgerSvc,
			Audit:     auditSvc,
			Receiving: receivingSvc,
			Sales:     salesSvc,
			Returns:   returnsSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
