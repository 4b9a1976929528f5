package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payfile-synth/internal/config"
	"payfile-synth/internal/gateway"
	"payfile-synth/internal/logger"
	"payfile-synth/internal/transport/httpapi"
	"payfile-synth/internal/transport/rpc"
	"payfile-synth/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.toml", "Path to a TOML config file")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.SetLevel(cfg.Log.Level)

	store, err := gateway.NewLocalFileStore(cfg.Storage.OutputDir)
	if err != nil {
		log.Fatalf("Failed to open output directory: %v", err)
	}

	generation, err := usecase.NewGenerationUseCase(store, log, usecase.WithMaxRows(cfg.Generation.MaxRows))
	if err != nil {
		log.Fatalf("Failed to set up generation: %v", err)
	}

	rpcHandler, err := rpc.NewHandler(generation, log, cfg.Generation.MaxRows)
	if err != nil {
		log.Fatalf("Failed to set up JSON-RPC: %v", err)
	}

	timeout := time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second
	server, err := httpapi.NewServer(generation, log, httpapi.Options{
		RequestTimeout:     timeout,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		MaxRows:            cfg.Generation.MaxRows,
		RPC:                rpcHandler,
	})
	if err != nil {
		log.Fatalf("Failed to set up HTTP API: %v", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Infof("Server starting on port %d, writing to %s", cfg.Server.Port, store.Root())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}

	log.Info("Server stopped")
}
