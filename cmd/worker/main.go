package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/brotato-world/internal/config"
	"github.com/jwebster45206/brotato-world/internal/logger"
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

	log.Info("Starting Brotato World Worker",
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer startupCancel()

	queueClient, err := queue.NewClient(startupCtx, queue.ClientConfig{RedisURL: cfg.RedisURL, Namespace: cfg.QueueNamespace}, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()

	generationQueue := queue.NewGenerationQueue(queueClient)
	log.Info("Queue service initialized successfully")

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, cfg.SessionTTL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	if err := store.WaitForConnection(startupCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage", "error", err)
		}
	}()
	log.Info("Storage service initialized successfully")

	processor := worker.NewGenerationProcessor(store, nil, log)

	// The queue client's connection doubles for session locks and events.
	w := worker.New(generationQueue, processor, queueClient.GetRedisClient(), log, cfg.WorkerID)
	w.SetBlockTimeout(cfg.QueueBlockTimeout)

	done := make(chan error, 1)
	go func() {
		done <- w.Start()
	}()

	log.Info("Worker started, waiting for requests...", "worker_id", w.ID())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Worker shutdown signal received")
		w.Stop()
		// Give worker time to finish current request
		select {
		case err := <-done:
			if err != nil {
				log.Error("Worker error", "error", err)
			}
		case <-time.After(10 * time.Second):
			log.Warn("Worker did not stop in time")
		}
	case err := <-done:
		if err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}

	log.Info("Worker exited")
}
