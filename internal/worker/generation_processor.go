package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/brotato-world/internal/metrics"
	"github.com/jwebster45206/brotato-world/pkg/options"
	"github.com/jwebster45206/brotato-world/pkg/queue"
	"github.com/jwebster45206/brotato-world/pkg/storage"
	"github.com/jwebster45206/brotato-world/pkg/world"
)

// ErrInvalidRequest marks requests that can never succeed, as opposed to
// storage or infrastructure failures.
var ErrInvalidRequest = errors.New("invalid generation request")

// GenerationProcessor turns a generation request into a stored session record.
// It's used by both the HTTP handler (synchronously) and the worker (asynchronously)
type GenerationProcessor struct {
	storage storage.Storage
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewGenerationProcessor creates a new processor. m may be nil.
func NewGenerationProcessor(storage storage.Storage, m *metrics.Metrics, logger *slog.Logger) *GenerationProcessor {
	return &GenerationProcessor{
		storage: storage,
		metrics: m,
		logger:  logger,
	}
}

// Process generates the world for req, stores it and returns the record.
func (p *GenerationProcessor) Process(ctx context.Context, req *queue.GenerationRequest) (*world.Record, error) {
	start := time.Now()

	rec, err := p.process(ctx, req)
	switch {
	case err == nil:
		p.metrics.ObserveGeneration(metrics.OutcomeSuccess, time.Since(start), rec.LocationCount)
	case errors.Is(err, ErrInvalidRequest):
		p.metrics.ObserveGeneration(metrics.OutcomeInvalid, time.Since(start), 0)
	default:
		p.metrics.ObserveGeneration(metrics.OutcomeFailed, time.Since(start), 0)
	}
	return rec, err
}

func (p *GenerationProcessor) process(ctx context.Context, req *queue.GenerationRequest) (*world.Record, error) {
	playerName, opts, err := p.resolveOptions(ctx, req)
	if err != nil {
		return nil, err
	}

	log := p.logger.With("session_id", req.SessionID.String(), "request_id", req.RequestID)

	w, err := world.Generate(ctx, 1, opts, req.Seed, log)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	rec := w.Record(req.SessionID, playerName, req.Seed)
	if err := p.storage.SaveSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	log.Info("Session generated",
		"player", playerName,
		"locations", rec.LocationCount,
		"starting_characters", len(rec.StartingCharacters))
	return rec, nil
}

// resolveOptions prefers inline options and falls back to the named player
// file.
func (p *GenerationProcessor) resolveOptions(ctx context.Context, req *queue.GenerationRequest) (string, options.Options, error) {
	if req.Options != nil {
		name := req.PlayerName
		if name == "" {
			name = "Player1"
		}
		return name, *req.Options, nil
	}
	if req.PlayerFile == "" {
		return "", options.Options{}, fmt.Errorf("%w: either options or player_file is required", ErrInvalidRequest)
	}

	pf, err := p.storage.GetPlayerFile(ctx, req.PlayerFile)
	if err != nil {
		return "", options.Options{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	name := req.PlayerName
	if name == "" {
		name = pf.Name
	}
	return name, pf.Options, nil
}

// Summary is the short result published with a completion event.
func Summary(rec *world.Record) map[string]any {
	return map[string]any{
		"player_name":         rec.PlayerName,
		"locations":           rec.LocationCount,
		"starting_characters": rec.StartingCharacters,
		"completion":          rec.Completion,
	}
}
