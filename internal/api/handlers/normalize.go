package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/quantlab/risknorm/internal/engine"
	"github.com/quantlab/risknorm/internal/history"
	"github.com/quantlab/risknorm/pkg/logger"
)

// Run modes accepted by the API.
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// NormalizeHandler serves risk-normalization runs.
type NormalizeHandler struct {
	log      *logger.Logger
	defaults engine.Params
	repo     *history.Repository // nil when persistence is not configured
}

// NewNormalizeHandler creates a new normalize handler. repo may be nil.
func NewNormalizeHandler(log *logger.Logger, defaults engine.Params, repo *history.Repository) *NormalizeHandler {
	return &NormalizeHandler{
		log:      log.WithField("handler", "normalize"),
		defaults: defaults,
		repo:     repo,
	}
}

// NormalizeRequest is the request body for POST /api/normalize and the
// first frame of the progress websocket.
type NormalizeRequest struct {
	Trades []float64     `json:"trades"`
	Mode   string        `json:"mode,omitempty"` // sequential (default) or parallel
	Seed   *int64        `json:"seed,omitempty"` // absent: derived from wall clock
	Params engine.Params `json:"params"`         // zero fields filled from server defaults
	Save   bool          `json:"save,omitempty"` // persist to run history
}

// NormalizeResponse is the response body for a completed run.
type NormalizeResponse struct {
	Result     engine.Result `json:"result"`
	Mode       string        `json:"mode"`
	Seed       int64         `json:"seed"`
	TradeCount int           `json:"trade_count"`
	Params     engine.Params `json:"params"`
	DurationMs int64         `json:"duration_ms"`
	RunID      int64         `json:"run_id,omitempty"`
}

// Normalize handles POST /api/normalize.
func (h *NormalizeHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.run(&req, nil)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	if req.Save && h.repo != nil {
		run := &history.Run{
			Source:     "inline",
			Mode:       resp.Mode,
			Seed:       resp.Seed,
			TradeCount: resp.TradeCount,
			Params:     resp.Params,
			Result:     resp.Result,
			DurationMs: resp.DurationMs,
		}
		if err := h.repo.Save(r.Context(), run); err != nil {
			h.log.WithError(err).Error("Failed to persist run")
		} else {
			resp.RunID = run.ID
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// run validates and executes a request. progress may be nil.
func (h *NormalizeHandler) run(req *NormalizeRequest, progress engine.ProgressFunc) (*NormalizeResponse, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeSequential
	}
	if mode != ModeSequential && mode != ModeParallel {
		return nil, fmt.Errorf("%w: mode must be sequential or parallel", engine.ErrInvalidInput)
	}

	params := req.Params.FillDefaults(h.defaults)

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	eng := engine.New(h.log)
	if progress != nil {
		eng.OnProgress(progress)
	}

	start := time.Now()
	var result *engine.Result
	var err error
	if mode == ModeParallel {
		result, err = eng.RunParallel(req.Trades, params, seed)
	} else {
		result, err = eng.RunSequential(req.Trades, params, seed)
	}
	if err != nil {
		return nil, err
	}

	return &NormalizeResponse{
		Result:     *result,
		Mode:       mode,
		Seed:       seed,
		TradeCount: len(req.Trades),
		Params:     params,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
