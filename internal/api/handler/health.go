package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/agame/internal/api/apierr"
	"github.com/mcoot/agame/internal/api/response"
)

// Pinger is anything whose availability the health check reports
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the backing store is reachable
type HealthHandler struct {
	storage Pinger
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storage Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{storage: storage, logger: logger}
}

// Get handles GET /api/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		WriteError(w, apierr.NewUnavailableError("storage unavailable"))
		return
	}

	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
