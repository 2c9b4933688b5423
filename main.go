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

	"github.com/aman1195/risk-scan-pro/config"
	"github.com/aman1195/risk-scan-pro/handler"
	"github.com/aman1195/risk-scan-pro/middleware"
	"github.com/aman1195/risk-scan-pro/pkg/database"
	"github.com/aman1195/risk-scan-pro/pkg/logger"
	"github.com/aman1195/risk-scan-pro/provider"
	"github.com/aman1195/risk-scan-pro/service"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully", "store", cfg.Database.Driver, "analysis_backend", cfg.Analysis.Backend)

	store, closeStore, err := openStore(&cfg.Database)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	var archive service.Archive
	if cfg.Minio.Enabled {
		minioArchive, err := service.NewMinioArchive(&cfg.Minio)
		if err != nil {
			slog.Error("failed to initialize MINIO archive", "error", err)
			os.Exit(1)
		}
		if err := minioArchive.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure MINIO bucket", "error", err)
			os.Exit(1)
		}
		archive = minioArchive
	}

	registry := provider.NewFromConfig(&cfg.AI)
	for _, info := range registry.List() {
		if !info.Configured {
			slog.Warn("AI backend not configured", "backend", info.Name)
		}
	}

	// Initialize services
	lifecycle := service.NewLifecycle(store)
	pool := service.NewPool(cfg.Analysis.Workers, cfg.Analysis.QueueSize)
	analyzer, err := service.NewAnalyzer(lifecycle, registry, pool, archive, &cfg.Analysis)
	if err != nil {
		slog.Error("invalid analysis configuration", "error", err)
		os.Exit(1)
	}
	generator := service.NewGenerator(registry, &cfg.Generation)
	contracts := service.NewContractService(lifecycle, generator, archive)

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	if cfg.Analysis.Timeout > 0 {
		reaper := service.NewReaper(lifecycle, cfg.Analysis.Timeout, cfg.Analysis.ReaperInterval)
		go reaper.Run(reaperCtx)
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	analyzeHandler := handler.NewAnalyzeHandler(lifecycle, analyzer)
	generateHandler := handler.NewGenerateHandler(generator)
	catalogHandler := handler.NewCatalogHandler(registry)
	documentHandler := handler.NewDocumentHandler(lifecycle, analyzer)
	contractHandler := handler.NewContractHandler(contracts)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())
	router.Use(middleware.NoCache())
	router.Use(middleware.RateLimit(cfg.Server.RateLimit, time.Minute))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.POST("/analyze", analyzeHandler.Analyze)
		protected.POST("/generate-contract", generateHandler.Generate)
		protected.GET("/catalog", catalogHandler.Catalog)
		protected.GET("/risk-bands", catalogHandler.RiskBands)

		protected.POST("/documents", documentHandler.Submit)
		protected.GET("/documents", documentHandler.List)
		protected.GET("/documents/:id", documentHandler.Get)
		protected.GET("/documents/:id/status", documentHandler.GetStatus)
		protected.DELETE("/documents/:id", documentHandler.Delete)

		protected.POST("/contracts", contractHandler.Create)
		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/:id", contractHandler.Get)
		protected.POST("/contracts/:id/generate", contractHandler.Generate)
		protected.POST("/contracts/:id/save", contractHandler.Save)
		protected.GET("/contracts/:id/download", contractHandler.Download)
		protected.DELETE("/contracts/:id", contractHandler.Delete)
	}

	// WriteTimeout must cover a synchronous generation call
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSeconds)*time.Second)
	defer cancel()

	exitCode := 0
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		exitCode = 1
	}
	stopReaper()
	if err := pool.Stop(ctx); err != nil {
		slog.Error("analysis workers did not drain", "error", err)
		exitCode = 1
	}
	if err := closeStore(); err != nil {
		slog.Error("failed to close store", "error", err)
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
	slog.Info("server exited gracefully")
}

// openStore returns the in-memory store or a migrated database store
// depending on the configured driver.
func openStore(cfg *config.DatabaseConfig) (service.Store, func() error, error) {
	if cfg.Driver == "memory" {
		return service.NewMemoryStore(), func() error { return nil }, nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := service.NewDBStore(db)
	if err != nil {
		database.Close(db)
		return nil, nil, err
	}
	return store, func() error { return database.Close(db) }, nil
}
