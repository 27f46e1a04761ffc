package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/brotato-world/pkg/storage"
)

// SessionHandler reads and deletes generated sessions.
// GET|DELETE /v1/sessions/{id}
type SessionHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSessionHandler(storage storage.Storage, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, id)
	case http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		methodNotAllowed(w, r, h.logger, "GET, DELETE")
	}
}

func (h *SessionHandler) handleGet(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	rec, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "error", err, "session_id", id.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session.")
		return
	}
	if rec == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found.")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, rec)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteSession(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "error", err, "session_id", id.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session.")
		return
	}
	h.logger.Info("Session deleted", "session_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}
