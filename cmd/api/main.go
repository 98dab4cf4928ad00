package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/bootstrap"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/config"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create logger
	appLogger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	// Wait for interrupt signal to gracefully shut down the server
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to start", coreport.ErrorFields(err, nil))
		_ = appLogger.Flush()
		os.Exit(1)
	}

	serveErr := app.Serve(ctx)
	if serveErr != nil {
		appLogger.Error("Server stopped with error", coreport.ErrorFields(serveErr, nil))
	}

	if err := app.Close(); err != nil {
		log.Printf("Failed to close cleanly: %v", err)
	}

	if serveErr != nil {
		os.Exit(1)
	}
	log.Println("Server exited gracefully")
}
