package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jwebster45206/brotato-world/internal/services/queue"
	"github.com/jwebster45206/brotato-world/pkg/options"
	pkgqueue "github.com/jwebster45206/brotato-world/pkg/queue"
)

func main() {
	redisURL := flag.String("redis", "redis://localhost:6379", "Redis URL")
	namespace := flag.String("namespace", queue.DefaultNamespace, "queue key namespace")
	playerFile := flag.String("player-file", "", "player file under data/players (default: built-in options)")
	count := flag.Int("n", 2, "number of requests to enqueue")
	seed := flag.Uint64("seed", 1, "seed of the first request; later requests count up")
	flag.Parse()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	client, err := queue.NewClient(ctx, queue.ClientConfig{RedisURL: *redisURL, Namespace: *namespace}, logger)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer func() {
		_ = client.Close()
	}()

	fmt.Println("Connected to Redis successfully!")

	q := queue.NewGenerationQueue(client)
	for i := range *count {
		var req *pkgqueue.GenerationRequest
		if *playerFile != "" {
			req = pkgqueue.NewGenerationRequest("", *seed+uint64(i), nil)
			req.PlayerFile = *playerFile
		} else {
			opts := options.Defaults()
			req = pkgqueue.NewGenerationRequest("Player1", *seed+uint64(i), &opts)
		}

		if err := q.EnqueueRequest(ctx, req); err != nil {
			log.Fatal("Failed to enqueue request:", err)
		}
		fmt.Printf("✅ Enqueued generation request %s (session %s, seed %d)\n", req.RequestID, req.SessionID, req.Seed)
	}

	depth, err := q.Depth(ctx)
	if err != nil {
		log.Fatal("Failed to get queue depth:", err)
	}

	fmt.Printf("\n📊 Queue depth: %d requests\n", depth)
	fmt.Println("\n💡 Now start the worker to see it process these requests!")
	fmt.Println("   Run: go run cmd/worker/main.go")
}
