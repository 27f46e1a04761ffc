package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/brotato-world/pkg/options"
	"github.com/jwebster45206/brotato-world/pkg/storage"
	"github.com/jwebster45206/brotato-world/pkg/world"
)

// DataPackageHandler serves the static name/code tables of the world.
type DataPackageHandler struct {
	dataPackage world.DataPackage
	logger      *slog.Logger
}

func NewDataPackageHandler(logger *slog.Logger) *DataPackageHandler {
	return &DataPackageHandler{
		dataPackage: world.NewDataPackage(),
		logger:      logger,
	}
}

func (h *DataPackageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, h.logger, http.MethodGet)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.dataPackage)
}

type OptionsResponse struct {
	Definitions []options.Definition `json:"definitions"`
	Defaults    options.Options      `json:"defaults"`
}

// OptionsHandler describes every player option and its bounds.
type OptionsHandler struct {
	logger *slog.Logger
}

func NewOptionsHandler(logger *slog.Logger) *OptionsHandler {
	return &OptionsHandler{logger: logger}
}

func (h *OptionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, h.logger, http.MethodGet)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, OptionsResponse{
		Definitions: options.Definitions(),
		Defaults:    options.Defaults(),
	})
}

// PlayersHandler lists the player files in the data directory.
type PlayersHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewPlayersHandler(storage storage.Storage, logger *slog.Logger) *PlayersHandler {
	return &PlayersHandler{storage: storage, logger: logger}
}

func (h *PlayersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, h.logger, http.MethodGet)
		return
	}
	players, err := h.storage.ListPlayerFiles(r.Context())
	if err != nil {
		h.logger.Error("Failed to list player files", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list player files.")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, players)
}
