package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeGenerationQueued     EventType = "generation.queued"
	EventTypeGenerationProcessing EventType = "generation.processing"
	EventTypeGenerationCompleted  EventType = "generation.completed"
	EventTypeGenerationFailed     EventType = "generation.failed"
)

// Event is the payload published for one generation session
type Event struct {
	Type      EventType      `json:"type"`
	RequestID string         `json:"request_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Channel returns the pub/sub channel for a session's events
func Channel(sessionID uuid.UUID) string {
	return "generation-events:" + sessionID.String()
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Subscribe opens a subscription to a session's events. The caller closes it.
func (b *Broadcaster) Subscribe(ctx context.Context, sessionID uuid.UUID) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(sessionID))
}

func (b *Broadcaster) PublishGenerationQueued(ctx context.Context, sessionID uuid.UUID, requestID string) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypeGenerationQueued,
		RequestID: requestID,
		Data:      map[string]any{"status": "queued"},
	})
}

func (b *Broadcaster) PublishGenerationProcessing(ctx context.Context, sessionID uuid.UUID, requestID, workerID string) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypeGenerationProcessing,
		RequestID: requestID,
		Data: map[string]any{
			"status":    "processing",
			"worker_id": workerID,
		},
	})
}

// PublishGenerationCompleted reports a stored session with a short summary
func (b *Broadcaster) PublishGenerationCompleted(ctx context.Context, sessionID uuid.UUID, requestID string, summary map[string]any) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypeGenerationCompleted,
		RequestID: requestID,
		Data: map[string]any{
			"status": "completed",
			"result": summary,
		},
	})
}

func (b *Broadcaster) PublishGenerationFailed(ctx context.Context, sessionID uuid.UUID, requestID, errorMsg string) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypeGenerationFailed,
		RequestID: requestID,
		Data: map[string]any{
			"status": "failed",
			"error":  errorMsg,
		},
	})
}

func (b *Broadcaster) publish(ctx context.Context, sessionID uuid.UUID, event Event) error {
	event.SessionID = sessionID.String()
	channel := Channel(sessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"request_id", event.RequestID,
	)
	return nil
}
