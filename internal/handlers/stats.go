package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/lotus-events/internal/stats"
)

type StatsHandler struct {
	recorder stats.Recorder
	logger   *slog.Logger
}

func NewStatsHandler(recorder stats.Recorder, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		recorder: recorder,
		logger:   logger,
	}
}

// ServeHTTP handles GET /v1/stats
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	snapshot, err := h.recorder.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("Failed to read stats", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read stats")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, snapshot)
}
