package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is any dependency that can report its own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status     string         `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
	Service    string         `json:"service"`
	Components map[string]any `json:"components"`
}

// ContentInfo summarises what the engine was loaded with.
type ContentInfo struct {
	Situations        int `json:"situations"`
	HandcraftedEvents int `json:"handcrafted_events"`
}

type HealthHandler struct {
	stats   Pinger
	content ContentInfo
	logger  *slog.Logger
}

// NewHealthHandler reports on content and, when stats is not nil, on the stats backend.
func NewHealthHandler(stats Pinger, content ContentInfo, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		stats:   stats,
		content: content,
		logger:  logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]any{
		"content": h.content,
	}
	overallStatus := "healthy"

	switch {
	case h.stats == nil:
		components["stats"] = "disabled"
	case h.stats.Ping(ctx) != nil:
		h.logger.Warn("Stats backend health check failed")
		components["stats"] = "unhealthy"
		overallStatus = "degraded"
	default:
		components["stats"] = "healthy"
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "lotus-events",
		Components: components,
	})
}
