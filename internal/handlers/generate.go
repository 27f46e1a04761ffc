package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/jwebster45206/brotato-world/internal/metrics"
	"github.com/jwebster45206/brotato-world/internal/services/events"
	queuesvc "github.com/jwebster45206/brotato-world/internal/services/queue"
	"github.com/jwebster45206/brotato-world/internal/worker"
	"github.com/jwebster45206/brotato-world/pkg/options"
	"github.com/jwebster45206/brotato-world/pkg/queue"
	"github.com/jwebster45206/brotato-world/pkg/storage"
)

// GenerateRequest is the body of POST /v1/generate. Exactly one of Options
// and PlayerFile is used; Options wins when both are set. Missing option
// fields keep their defaults.
type GenerateRequest struct {
	PlayerName string          `json:"player_name,omitempty"`
	Seed       *uint64         `json:"seed,omitempty"`
	Options    json.RawMessage `json:"options,omitempty"`
	PlayerFile string          `json:"player_file,omitempty"`
}

type GenerateAccepted struct {
	SessionID string `json:"session_id"`
	RequestID string `json:"request_id"`
	Seed      uint64 `json:"seed"`
	Status    string `json:"status"`
}

// GenerateHandler runs generations inline (?wait=true) or hands them to the
// worker queue.
type GenerateHandler struct {
	processor   *worker.GenerationProcessor
	storage     storage.Storage
	queue       *queuesvc.GenerationQueue
	broadcaster *events.Broadcaster
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewGenerateHandler creates the handler. q and broadcaster may be nil, in
// which case only synchronous generation is available.
func NewGenerateHandler(
	processor *worker.GenerationProcessor,
	storage storage.Storage,
	q *queuesvc.GenerationQueue,
	broadcaster *events.Broadcaster,
	m *metrics.Metrics,
	logger *slog.Logger,
) *GenerateHandler {
	return &GenerateHandler{
		processor:   processor,
		storage:     storage,
		queue:       q,
		broadcaster: broadcaster,
		metrics:     m,
		logger:      logger,
	}
}

func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, h.logger, http.MethodPost)
		return
	}

	var body GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'options' or 'player_file'.")
		return
	}

	req, err := h.buildRequest(r, body)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if wait {
		h.generateNow(w, r, req)
		return
	}
	h.enqueue(w, r, req)
}

func (h *GenerateHandler) buildRequest(r *http.Request, body GenerateRequest) (*queue.GenerationRequest, error) {
	seed := rand.Uint64()
	if body.Seed != nil {
		seed = *body.Seed
	}

	if len(body.Options) > 0 {
		opts, err := options.DecodeJSON(body.Options)
		if err != nil {
			return nil, err
		}
		return queue.NewGenerationRequest(body.PlayerName, seed, &opts), nil
	}

	if body.PlayerFile == "" {
		return nil, errors.New("either 'options' or 'player_file' is required")
	}
	if _, err := h.storage.GetPlayerFile(r.Context(), body.PlayerFile); err != nil {
		return nil, err
	}
	req := queue.NewGenerationRequest(body.PlayerName, seed, nil)
	req.PlayerFile = body.PlayerFile
	return req, nil
}

func (h *GenerateHandler) generateNow(w http.ResponseWriter, r *http.Request, req *queue.GenerationRequest) {
	rec, err := h.processor.Process(r.Context(), req)
	if err != nil {
		if errors.Is(err, worker.ErrInvalidRequest) {
			writeError(w, h.logger, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("Generation failed", "error", err, "session_id", req.SessionID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to generate world.")
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, rec)
}

func (h *GenerateHandler) enqueue(w http.ResponseWriter, r *http.Request, req *queue.GenerationRequest) {
	if h.queue == nil {
		writeError(w, h.logger, http.StatusServiceUnavailable, "Queue unavailable; retry with ?wait=true.")
		return
	}

	ctx := r.Context()
	if err := h.queue.EnqueueRequest(ctx, req); err != nil {
		h.logger.Error("Failed to enqueue generation", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to queue generation.")
		return
	}

	if depth, err := h.queue.Depth(ctx); err == nil {
		h.metrics.SetQueueDepth(depth)
	}
	if h.broadcaster != nil {
		if err := h.broadcaster.PublishGenerationQueued(ctx, req.SessionID, req.RequestID); err != nil {
			h.logger.Error("Failed to publish queued event", "error", err)
		}
	}

	h.logger.Info("Generation queued",
		"session_id", req.SessionID.String(),
		"request_id", req.RequestID)

	w.Header().Set("Location", "/v1/sessions/"+req.SessionID.String())
	writeJSON(w, h.logger, http.StatusAccepted, GenerateAccepted{
		SessionID: req.SessionID.String(),
		RequestID: req.RequestID,
		Seed:      req.Seed,
		Status:    "queued",
	})
}
