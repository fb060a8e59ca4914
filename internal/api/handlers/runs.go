package handlers

import (
	"net/http"
	"strconv"

	"github.com/quantlab/risknorm/internal/history"
	"github.com/quantlab/risknorm/pkg/logger"
)

// RunsHandler serves the persisted run history.
type RunsHandler struct {
	log  *logger.Logger
	repo *history.Repository
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(log *logger.Logger, repo *history.Repository) *RunsHandler {
	return &RunsHandler{
		log:  log.WithField("handler", "runs"),
		repo: repo,
	}
}

// List handles GET /api/runs?limit=N.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			writeError(w, http.StatusBadRequest, "limit must be an integer in [1,500]")
			return
		}
		limit = parsed
	}

	runs, err := h.repo.List(r.Context(), limit)
	if err != nil {
		h.log.WithError(err).Error("Failed to list runs")
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}
