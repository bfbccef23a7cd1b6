// Package main provides the entry point for the mapmem MCP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mapmem/mapmem-go/internal/catalog"
	"github.com/mapmem/mapmem-go/internal/config"
	"github.com/mapmem/mapmem-go/internal/db"
	"github.com/mapmem/mapmem-go/internal/embedding"
	"github.com/mapmem/mapmem-go/internal/memory"
	"github.com/mapmem/mapmem-go/internal/metrics"
	"github.com/mapmem/mapmem-go/internal/server"
	"github.com/mapmem/mapmem-go/internal/service"
	"github.com/mapmem/mapmem-go/internal/tools"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mapmem: %v\n", err)
		os.Exit(1)
	}

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("mapmem starting",
		"version", version,
		"surrealdb_url", cfg.SurrealDBURL,
		"embed_provider", cfg.EmbedProvider,
		"embed_model", cfg.EmbedModel,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to the event store
	dbCfg := db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}

	dbClient, err := db.NewClient(ctx, dbCfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing database connection")
		_ = dbClient.Close(ctx)
	}()

	if err := dbClient.InitSchema(ctx, cfg.EmbedDimension); err != nil {
		logger.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	// Create embedder
	embedder, err := embedding.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	logger.Info("embedder initialized", "model", embedder.Model(), "dimension", embedder.Dimension())

	// Schema catalog is optional; without it stale filtering is disabled.
	var validator *memory.Validator
	if cfg.CatalogURL != "" {
		timeout, err := time.ParseDuration(cfg.CatalogTimeout)
		if err != nil {
			timeout = 0
		}
		validator = memory.NewValidator(catalog.NewHTTP(cfg.CatalogURL, timeout), cfg.StaleFraction, logger)
		logger.Info("schema catalog configured", "url", cfg.CatalogURL)
	} else {
		logger.Warn("no schema catalog configured, stale filtering disabled")
	}

	collector := metrics.NewCollector()

	engine := memory.NewEngine(dbClient, embedder, validator, memory.Options{
		TopK:               cfg.TopK,
		SignatureBoost:     cfg.SignatureBoost,
		AutoApplyThreshold: cfg.AutoApplyThreshold,
		StaleFraction:      cfg.StaleFraction,
	}, logger, collector)

	consolidator := memory.NewConsolidator(dbClient, cfg.MinSupport, logger)

	// Background consolidation
	scheduler, err := service.NewScheduler(consolidator, cfg.ConsolidateCron,
		[]string{cfg.DefaultNamespace}, collector, logger)
	if err != nil {
		logger.Error("failed to create scheduler", "cron", cfg.ConsolidateCron, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create and setup server
	srv := server.New(version, logger)
	srv.Setup()

	// Register tools
	deps := &tools.Dependencies{
		DB:           dbClient,
		Engine:       engine,
		Consolidator: consolidator,
		Collector:    collector,
		Logger:       logger,
	}
	tools.RegisterAll(srv.MCPServer(), deps, &cfg)
	logger.Info("tools registered", "count", 6)

	logger.Info("server ready, awaiting connections")

	// Run server (blocks until disconnect or context cancelled)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
