package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/brotato-world/pkg/queue"
)

// RequestsKey names the Redis list holding pending generation requests,
// inside the client's namespace.
const RequestsKey = "generation-requests"

// GenerationQueue is a FIFO of generation requests shared by the API and
// the workers.
type GenerationQueue struct {
	client *Client
	key    string
}

func NewGenerationQueue(client *Client) *GenerationQueue {
	return &GenerationQueue{
		client: client,
		key:    client.Key(RequestsKey),
	}
}

// EnqueueRequest adds a request to the end of the queue
func (q *GenerationQueue) EnqueueRequest(ctx context.Context, req *queue.GenerationRequest) error {
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	if err := q.client.rdb.RPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}

	q.client.logger.Debug("Enqueued generation request",
		"request_id", req.RequestID,
		"session_id", req.SessionID)
	return nil
}

// DequeueRequest removes and returns the next request
// Returns nil if queue is empty
func (q *GenerationQueue) DequeueRequest(ctx context.Context) (*queue.GenerationRequest, error) {
	result, err := q.client.rdb.LPop(ctx, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	req, err := queue.FromJSON([]byte(result))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// BlockingDequeueRequest blocks until a request is available or timeout
// passes, then returns it. A zero timeout waits forever. Returns nil, nil on
// timeout.
func (q *GenerationQueue) BlockingDequeueRequest(ctx context.Context, timeout time.Duration) (*queue.GenerationRequest, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	req, err := queue.FromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// Depth returns the number of pending requests
func (q *GenerationQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get request queue depth: %w", err)
	}
	return int(count), nil
}
