package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jwebster45206/brotato-world/internal/config"
	"github.com/jwebster45206/brotato-world/internal/handlers"
	"github.com/jwebster45206/brotato-world/internal/logger"
	"github.com/jwebster45206/brotato-world/internal/metrics"
	"github.com/jwebster45206/brotato-world/internal/middleware"
	"github.com/jwebster45206/brotato-world/internal/services/events"
	"github.com/jwebster45206/brotato-world/internal/services/queue"
	"github.com/jwebster45206/brotato-world/internal/storage"
	"github.com/jwebster45206/brotato-world/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Brotato World API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, cfg.SessionTTL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	queueClient, err := queue.NewClient(storageCtx, queue.ClientConfig{RedisURL: cfg.RedisURL, Namespace: cfg.QueueNamespace}, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	mux := handlers.NewRouter(handlers.Deps{
		Storage:     store,
		Processor:   worker.NewGenerationProcessor(store, m, log),
		Queue:       queue.NewGenerationQueue(queueClient),
		Broadcaster: events.NewBroadcaster(queueClient.GetRedisClient(), log),
		Metrics:     m,
		Logger:      log,
	})

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(log, m, mux),
		ReadTimeout: 15 * time.Second,
		// WriteTimeout removed to enable streaming - the SSE endpoint handles its own lifetime
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
