package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/brotato-world/internal/services/events"
	"github.com/jwebster45206/brotato-world/internal/services/queue"
	queuePkg "github.com/jwebster45206/brotato-world/pkg/queue"
)

const (
	// defaultBlockTimeout bounds how long Stop waits for a pending BLPOP;
	// cancelling the context does not interrupt it.
	defaultBlockTimeout = time.Second
	lockTTL             = 30 * time.Second
)

// Worker processes generation requests from the queue
type Worker struct {
	id          string
	queue       *queue.GenerationQueue
	processor   *GenerationProcessor
	broadcaster *events.Broadcaster
	redisClient *redis.Client
	log         *slog.Logger
	block       time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new worker instance
func New(q *queue.GenerationQueue, processor *GenerationProcessor, redisClient *redis.Client, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:          workerID,
		queue:       q,
		processor:   processor,
		broadcaster: events.NewBroadcaster(redisClient, log),
		redisClient: redisClient,
		log:         log.With("worker_id", workerID),
		block:       defaultBlockTimeout,
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (w *Worker) ID() string {
	return w.id
}

// SetBlockTimeout changes how long each dequeue waits on an empty queue.
// Call it before Start. Values under a second are raised to one.
func (w *Worker) SetBlockTimeout(d time.Duration) {
	w.block = max(d, time.Second)
}

// Start begins processing requests from the queue. It returns after Stop.
func (w *Worker) Start() error {
	w.log.Info("Worker starting")

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down")
			return nil
		default:
			if err := w.processNextRequest(); err != nil {
				if w.ctx.Err() != nil {
					continue
				}
				w.log.Error("Error processing request", "error", err)
				// Continue processing even on error
				select {
				case <-w.ctx.Done():
				case <-time.After(time.Second):
				}
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested")
	w.cancel()
}

// processNextRequest pulls the next request from the queue and processes it
func (w *Worker) processNextRequest() error {
	req, err := w.queue.BlockingDequeueRequest(w.ctx, w.block)
	if err != nil {
		return fmt.Errorf("failed to dequeue request: %w", err)
	}
	if req == nil {
		// Timeout; loop around to check for shutdown
		return nil
	}

	w.log.Info("Received request from queue",
		"request_id", req.RequestID,
		"session_id", req.SessionID.String(),
	)

	locked, err := w.acquireSessionLock(req.SessionID)
	if err != nil {
		return fmt.Errorf("failed to acquire session lock: %w", err)
	}
	if !locked {
		// Another worker is generating this session already
		w.log.Info("Session already locked, dropping duplicate request",
			"request_id", req.RequestID,
			"session_id", req.SessionID.String(),
		)
		return nil
	}
	defer w.releaseSessionLock(req.SessionID)

	return w.ProcessRequest(w.ctx, req)
}

func sessionLockKey(sessionID uuid.UUID) string {
	return "session-lock:" + sessionID.String()
}

// acquireSessionLock returns true if the lock was acquired, false if held
func (w *Worker) acquireSessionLock(sessionID uuid.UUID) (bool, error) {
	return w.redisClient.SetNX(w.ctx, sessionLockKey(sessionID), w.id, lockTTL).Result()
}

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// releaseSessionLock deletes the lock only if this worker owns it
func (w *Worker) releaseSessionLock(sessionID uuid.UUID) {
	// The worker context may already be cancelled on shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, w.redisClient, []string{sessionLockKey(sessionID)}, w.id).Err(); err != nil {
		w.log.Error("Failed to release session lock", "error", err, "session_id", sessionID.String())
	}
}

// ProcessRequest generates one request and publishes its lifecycle events.
// Event publishing failures are logged and never fail the request.
func (w *Worker) ProcessRequest(ctx context.Context, req *queuePkg.GenerationRequest) error {
	start := time.Now()

	if err := w.broadcaster.PublishGenerationProcessing(ctx, req.SessionID, req.RequestID, w.id); err != nil {
		w.log.Error("Failed to publish processing event", "error", err)
	}

	rec, err := w.processor.Process(ctx, req)
	if err != nil {
		w.log.Error("Generation failed",
			"error", err,
			"request_id", req.RequestID,
			"session_id", req.SessionID.String(),
		)
		if !errors.Is(err, context.Canceled) {
			if pubErr := w.broadcaster.PublishGenerationFailed(ctx, req.SessionID, req.RequestID, err.Error()); pubErr != nil {
				w.log.Error("Failed to publish failure event", "error", pubErr)
			}
		}
		return fmt.Errorf("failed to process generation request: %w", err)
	}

	w.log.Info("Generation request processed successfully",
		"request_id", req.RequestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	result := Summary(rec)
	result["duration_ms"] = time.Since(start).Milliseconds()
	if err := w.broadcaster.PublishGenerationCompleted(ctx, req.SessionID, req.RequestID, result); err != nil {
		w.log.Error("Failed to publish completion event", "error", err)
	}
	return nil
}
