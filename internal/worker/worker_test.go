package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/brotato-world/internal/services/events"
	queuesvc "github.com/jwebster45206/brotato-world/internal/services/queue"
	"github.com/jwebster45206/brotato-world/pkg/options"
	"github.com/jwebster45206/brotato-world/pkg/queue"
	"github.com/jwebster45206/brotato-world/pkg/storage"
)

type workerFixture struct {
	mr     *miniredis.Miniredis
	rdb    *redis.Client
	queue  *queuesvc.GenerationQueue
	store  *storage.MockStorage
	worker *Worker
}

func setupWorker(t *testing.T) *workerFixture {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := queuesvc.NewClient(context.Background(), queuesvc.ClientConfig{RedisURL: "redis://" + mr.Addr()}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := storage.NewMockStorage()
	q := queuesvc.NewGenerationQueue(client)
	w := New(q, NewGenerationProcessor(store, nil, testLogger()), rdb, testLogger(), "worker-test")

	return &workerFixture{mr: mr, rdb: rdb, queue: q, store: store, worker: w}
}

func TestNew_GeneratesID(t *testing.T) {
	f := setupWorker(t)
	assert.Equal(t, "worker-test", f.worker.ID())

	w := New(f.queue, f.worker.processor, f.rdb, testLogger(), "")
	assert.Regexp(t, `^worker-[0-9a-f]{8}$`, w.ID())
}

func TestWorker_ProcessesQueuedRequest(t *testing.T) {
	f := setupWorker(t)
	ctx := context.Background()

	opts := options.Defaults()
	req := queue.NewGenerationRequest("Potato", 3, &opts)

	sub := f.rdb.Subscribe(ctx, events.Channel(req.SessionID))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, f.queue.EnqueueRequest(ctx, req))

	done := make(chan error, 1)
	go func() { done <- f.worker.Start() }()

	var types []events.EventType
	timeout := time.After(5 * time.Second)
	for len(types) < 2 {
		select {
		case msg := <-sub.Channel():
			var ev events.Event
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
			types = append(types, ev.Type)
		case <-timeout:
			t.Fatalf("timed out, got events %v", types)
		}
	}
	assert.Equal(t, []events.EventType{events.EventTypeGenerationProcessing, events.EventTypeGenerationCompleted}, types)

	rec, err := f.store.LoadSession(ctx, req.SessionID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	// The lock is released after the completed event goes out.
	assert.Eventually(t, func() bool {
		return !f.mr.Exists(sessionLockKey(req.SessionID))
	}, 2*time.Second, 10*time.Millisecond, "lock should be released")

	f.worker.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * defaultBlockTimeout):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_StopsWithinBlockTimeout(t *testing.T) {
	f := setupWorker(t)
	f.worker.SetBlockTimeout(0)
	assert.Equal(t, time.Second, f.worker.block)

	done := make(chan error, 1)
	go func() { done <- f.worker.Start() }()

	// Let the worker block on the empty queue first.
	time.Sleep(100 * time.Millisecond)
	start := time.Now()
	f.worker.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.Less(t, time.Since(start), 2*defaultBlockTimeout)
	case <-time.After(3 * defaultBlockTimeout):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_SkipsLockedSession(t *testing.T) {
	f := setupWorker(t)
	ctx := context.Background()

	opts := options.Defaults()
	req := queue.NewGenerationRequest("Potato", 3, &opts)
	require.NoError(t, f.mr.Set(sessionLockKey(req.SessionID), "other-worker"))
	require.NoError(t, f.queue.EnqueueRequest(ctx, req))

	require.NoError(t, f.worker.processNextRequest())
	assert.Zero(t, f.store.SessionCount())

	owner, err := f.mr.Get(sessionLockKey(req.SessionID))
	require.NoError(t, err)
	assert.Equal(t, "other-worker", owner, "foreign lock must survive")
}

func TestWorker_FailedRequestPublishesFailure(t *testing.T) {
	f := setupWorker(t)
	ctx := context.Background()

	req := queue.NewGenerationRequest("Potato", 3, nil)
	sub := f.rdb.Subscribe(ctx, events.Channel(req.SessionID))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	err = f.worker.ProcessRequest(ctx, req)
	require.Error(t, err)

	var last events.Event
	timeout := time.After(2 * time.Second)
	for last.Type != events.EventTypeGenerationFailed {
		select {
		case msg := <-sub.Channel():
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &last))
		case <-timeout:
			t.Fatal("no failure event")
		}
	}
	assert.Contains(t, last.Data["error"], "options or player_file")
}
