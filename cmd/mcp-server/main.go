package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hcc-raf-server/internal/app"
	"github.com/hcc-raf-server/internal/config"
	"github.com/hcc-raf-server/internal/mcp"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// stdout carries the protocol, so logs go to stderr
	cfg := configManager.GetConfig()
	logger, err := config.NewLogger(cfg.Logging, os.Stderr)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize service")
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.WithError(err).Error("Failed to release resources")
		}
	}()

	mcpServer := mcp.NewServer(cfg.MCP, application.Calculator, logger)

	// Start MCP server
	if err := mcpServer.Start(ctx); err != nil && ctx.Err() == nil {
		logger.WithError(err).Error("MCP server failed")
		return
	}

	logger.Info("HCC RAF MCP server stopped")
}
