package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/brotato-world/internal/metrics"
	"github.com/jwebster45206/brotato-world/internal/services/events"
	queuesvc "github.com/jwebster45206/brotato-world/internal/services/queue"
	"github.com/jwebster45206/brotato-world/internal/worker"
	"github.com/jwebster45206/brotato-world/pkg/storage"
)

// Deps are the services the API routes need. Queue and Broadcaster may be
// nil; Metrics may be nil.
type Deps struct {
	Storage     storage.Storage
	Processor   *worker.GenerationProcessor
	Queue       *queuesvc.GenerationQueue
	Broadcaster *events.Broadcaster
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// NewRouter registers every API route.
func NewRouter(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /health", NewHealthHandler(d.Storage, d.Logger))
	mux.Handle("/v1/datapackage", NewDataPackageHandler(d.Logger))
	mux.Handle("/v1/options", NewOptionsHandler(d.Logger))
	mux.Handle("/v1/players", NewPlayersHandler(d.Storage, d.Logger))
	mux.Handle("/v1/generate", NewGenerateHandler(d.Processor, d.Storage, d.Queue, d.Broadcaster, d.Metrics, d.Logger))
	mux.Handle("/v1/sessions/{id}", NewSessionHandler(d.Storage, d.Logger))
	if d.Broadcaster != nil {
		mux.Handle("/v1/events/sessions/{id}", NewEventsHandler(d.Broadcaster, d.Logger))
	}
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	return mux
}
