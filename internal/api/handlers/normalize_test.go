package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/risknorm/internal/engine"
	"github.com/quantlab/risknorm/internal/tradefile"
	"github.com/quantlab/risknorm/pkg/config"
	"github.com/quantlab/risknorm/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "console"})
}

func testDefaults() engine.Params {
	// Small enough that a handler test finishes quickly
	return engine.Params{
		DaysInForecast:    100,
		TradesInForecast:  100,
		InitialCapital:    100_000,
		TailPercentile:    5.0,
		DrawdownTolerance: 0.10,
		CurvesPerCDF:      100,
		Repetitions:       2,
	}
}

func postNormalize(t *testing.T, h *NormalizeHandler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/normalize", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Normalize(rec, req)
	return rec
}

func TestNormalize(t *testing.T) {
	h := NewNormalizeHandler(testLogger(), testDefaults(), nil)
	seed := int64(42)

	rec := postNormalize(t, h, NormalizeRequest{
		Trades: tradefile.Generate(200, 0.001, 0.003, 1),
		Seed:   &seed,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp NormalizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, ModeSequential, resp.Mode)
	assert.Equal(t, int64(42), resp.Seed)
	assert.Equal(t, 200, resp.TradeCount)
	assert.Greater(t, resp.Result.SafeFMean, 0.0)
	assert.Equal(t, 100, resp.Params.DaysInForecast, "zero params filled from server defaults")
	assert.Zero(t, resp.RunID, "no persistence configured")
}

func TestNormalize_ParallelMode(t *testing.T) {
	h := NewNormalizeHandler(testLogger(), testDefaults(), nil)
	seed := int64(7)

	rec := postNormalize(t, h, NormalizeRequest{
		Trades: tradefile.Generate(200, 0.001, 0.003, 1),
		Mode:   ModeParallel,
		Seed:   &seed,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp NormalizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ModeParallel, resp.Mode)
}

func TestNormalize_ParamOverride(t *testing.T) {
	h := NewNormalizeHandler(testLogger(), testDefaults(), nil)
	seed := int64(3)

	rec := postNormalize(t, h, NormalizeRequest{
		Trades: tradefile.Generate(200, 0.001, 0.003, 1),
		Seed:   &seed,
		Params: engine.Params{InitialCapital: 50_000, Repetitions: 1},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp NormalizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 50_000.0, resp.Params.InitialCapital)
	assert.Equal(t, 1, resp.Params.Repetitions)
	assert.Equal(t, 100, resp.Params.CurvesPerCDF, "unset fields keep the defaults")
}

func TestNormalize_EmptyTrades(t *testing.T) {
	h := NewNormalizeHandler(testLogger(), testDefaults(), nil)

	rec := postNormalize(t, h, NormalizeRequest{Trades: nil})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid input")
}

func TestNormalize_BadMode(t *testing.T) {
	h := NewNormalizeHandler(testLogger(), testDefaults(), nil)

	rec := postNormalize(t, h, NormalizeRequest{
		Trades: []float64{0.01, -0.005},
		Mode:   "warp",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "mode must be sequential or parallel")
}

func TestNormalize_MalformedBody(t *testing.T) {
	h := NewNormalizeHandler(testLogger(), testDefaults(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/normalize", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Normalize(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}
