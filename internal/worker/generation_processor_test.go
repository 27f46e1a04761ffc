package worker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/brotato-world/internal/metrics"
	"github.com/jwebster45206/brotato-world/pkg/options"
	"github.com/jwebster45206/brotato-world/pkg/queue"
	"github.com/jwebster45206/brotato-world/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestProcess_InlineOptions(t *testing.T) {
	store := storage.NewMockStorage()
	p := NewGenerationProcessor(store, metrics.New(prometheus.NewRegistry()), testLogger())

	opts := options.Defaults()
	opts.NumVictories = 3
	req := queue.NewGenerationRequest("Potato", 12, &opts)

	rec, err := p.Process(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req.SessionID, rec.ID)
	assert.Equal(t, "Potato", rec.PlayerName)
	assert.Equal(t, 3, rec.SlotData.NumWinsNeeded)

	stored, err := store.LoadSession(context.Background(), req.SessionID)
	require.NoError(t, err)
	assert.Same(t, rec, stored)
}

func TestProcess_PlayerFile(t *testing.T) {
	store := storage.NewMockStorage()
	opts := options.Defaults()
	opts.WavesPerDrop = 5
	store.AddPlayerFile("spud.yaml", &options.PlayerFile{Name: "Spud", Game: options.GameName, Options: opts})
	p := NewGenerationProcessor(store, nil, testLogger())

	req := queue.NewGenerationRequest("", 1, nil)
	req.PlayerFile = "spud.yaml"

	rec, err := p.Process(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Spud", rec.PlayerName)
	assert.Equal(t, []int{5, 10, 15, 20}, rec.SlotData.WavesWithChecks)
}

func TestProcess_InvalidRequests(t *testing.T) {
	bad := options.Defaults()
	bad.NumVictories = 0

	overflow := options.Defaults()
	overflow.WavesPerDrop = 20
	overflow.NumCommonCrateDrops = 0
	overflow.NumLegendaryCrateDrops = 0
	overflow.NumCommonUpgrades = 50
	overflow.NumUncommonUpgrades = 50

	tests := []struct {
		name string
		req  *queue.GenerationRequest
	}{
		{name: "no options", req: queue.NewGenerationRequest("P", 1, nil)},
		{name: "missing file", req: func() *queue.GenerationRequest {
			r := queue.NewGenerationRequest("P", 1, nil)
			r.PlayerFile = "missing.yaml"
			return r
		}()},
		{name: "out of range", req: queue.NewGenerationRequest("P", 1, &bad)},
		{name: "pool overflow", req: queue.NewGenerationRequest("P", 1, &overflow)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMockStorage()
			p := NewGenerationProcessor(store, nil, testLogger())

			_, err := p.Process(context.Background(), tt.req)
			assert.True(t, errors.Is(err, ErrInvalidRequest), err)
			assert.Zero(t, store.SessionCount())
		})
	}
}

func TestProcess_SaveFailure(t *testing.T) {
	store := storage.NewMockStorage()
	store.SetSaveError(errors.New("disk full"))
	p := NewGenerationProcessor(store, nil, testLogger())

	opts := options.Defaults()
	_, err := p.Process(context.Background(), queue.NewGenerationRequest("P", 1, &opts))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidRequest))
}

func TestSummary(t *testing.T) {
	store := storage.NewMockStorage()
	p := NewGenerationProcessor(store, nil, testLogger())
	opts := options.Defaults()
	rec, err := p.Process(context.Background(), queue.NewGenerationRequest("P", 1, &opts))
	require.NoError(t, err)

	s := Summary(rec)
	assert.Equal(t, "P", s["player_name"])
	assert.Equal(t, rec.LocationCount, s["locations"])
	assert.Equal(t, "10 run wins", s["completion"])
}
