package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/palestra-app/internal/api"
	"alcyxob/palestra-app/internal/backend"
	"alcyxob/palestra-app/internal/config"
	"alcyxob/palestra-app/internal/logging"
	"alcyxob/palestra-app/internal/metrics"
	"alcyxob/palestra-app/internal/planstore"
	"alcyxob/palestra-app/internal/seed"
	"alcyxob/palestra-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// @title Palestra Plan API
// @version 1.0
// @description API for trainers editing weekly workout plans and clients following them.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	configPath := flag.String("config", ".", "config directory or yaml file")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("could not load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}

	log := logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.ToStdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.FormatJSON,
	})
	log.Info("starting palestra server...")

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsManager := metrics.NewManager("palestra", "server", registry)

	// --- Storage ---
	ctx := context.Background()
	kv, closeBackend, err := backend.Open(ctx, cfg, log)
	if err != nil {
		log.Fatalf("could not open storage backend: %v", err)
	}
	defer func() {
		if err := closeBackend(); err != nil {
			log.Errorf("failed to close storage backend: %v", err)
		}
	}()

	var exporter service.PlanExporter
	exportStore, err := backend.OpenExporter(ctx, cfg, log)
	if err != nil {
		log.Fatalf("could not initialize export storage: %v", err)
	}
	if exportStore != nil {
		exporter = exportStore
	} else {
		log.Warn("no s3 endpoint configured, plan export is disabled")
	}

	// --- Plan store ---
	store := planstore.New(kv, seed.Clients,
		planstore.WithLogger(log),
		planstore.WithMetrics(metricsManager),
		planstore.WithStorageKey(cfg.Storage.Key),
		planstore.WithPersistTimeout(cfg.Persist.Timeout),
	)
	// Requests get 503 until the snapshot is loaded. A storage outage keeps
	// the store hydrating and is retried until shutdown.
	hydrateCtx, stopHydrate := context.WithCancel(ctx)
	defer stopHydrate()
	go func() {
		if err := store.HydrateWithRetry(hydrateCtx, time.Second, 30*time.Second); err != nil {
			log.WithError(err).Warn("plan store hydration abandoned")
		}
	}()

	// --- Services ---
	catalogService := service.NewCatalogService(seed.Catalog)
	planService := service.NewPlanService(store, catalogService, exporter)

	// --- Gin engine ---
	if logging.GetLevel(cfg.Log.Level) != logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(router, cfg.JWT.Secret, planService, catalogService,
		func() bool { return !store.IsHydrating() },
		metricsManager, registry, log)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")
	stopHydrate()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}
	// Flush the last pending snapshot before the backend goes away.
	if err := store.Close(ctxShutdown); err != nil {
		log.Errorf("failed to flush plan store: %v", err)
	}

	log.Info("server exiting")
}
