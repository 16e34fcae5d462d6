package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobarin/renderpipe/internal/api"
	"github.com/bobarin/renderpipe/internal/config"
	"github.com/bobarin/renderpipe/internal/db"
	"github.com/bobarin/renderpipe/internal/media"
	"github.com/bobarin/renderpipe/internal/queue"
	"github.com/bobarin/renderpipe/internal/renderer"
	"github.com/bobarin/renderpipe/internal/storage"
	"github.com/bobarin/renderpipe/internal/worker"
)

func main() {
	log.Println("Starting Renderpipe API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Optional platform/preset registry overrides
	if cfg.RegistryOverridesPath != "" {
		if err := media.LoadRegistryOverrides(cfg.RegistryOverridesPath); err != nil {
			log.Fatalf("Failed to load registry overrides: %v", err)
		}
	}

	// Connect to database
	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("Connected to database")

	// Connect to Redis queue
	q, err := queue.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis queue")

	// Initialize storage (nil when no STORAGE_URL configured)
	var stor *storage.Storage
	if cfg.StorageURL != "" {
		stor = storage.New(cfg.StorageURL, cfg.StorageKey, cfg.StorageBucket)
		log.Println("Initialized object storage")
	} else {
		log.Println("Object storage disabled, renders stay on local disk")
	}

	runner := media.NewRunner(cfg.FFmpegPath, cfg.FFprobePath, cfg.FFmpegTimeout)

	// Create API handler
	handler := api.NewHandler(database, q, stor, runner, cfg.OutputDir)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	// Start worker if enabled
	var workerCancel context.CancelFunc
	if cfg.WorkerEnabled {
		log.Println("Worker enabled, starting background processing...")

		pipeline, err := renderer.New(
			media.NewProber(runner),
			media.NewMerger(runner),
			media.NewMixer(runner),
			media.NewBurner(runner),
			media.NewOptimizer(runner),
			cfg.TempDir,
			cfg.OutputDir,
			cfg.MaxConcurrentRenders,
		)
		if err != nil {
			log.Fatalf("Failed to initialize render pipeline: %v", err)
		}

		w := worker.New(database, q, stor, pipeline)

		var workerCtx context.Context
		workerCtx, workerCancel = context.WithCancel(context.Background())
		go w.Start(workerCtx, cfg.MaxConcurrentRenders)
	}

	// Start server in goroutine
	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Shutdown worker
	if workerCancel != nil {
		workerCancel()
	}

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
