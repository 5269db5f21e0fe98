/*
handlers.go - HTTP handlers for the adjustment API

PURPOSE:
  Exposes the adjustment engine over REST. Handlers parse and validate
  input, fetch the series through the provider, call the pure engine, and
  serialize the result. No adjustment math happens here.

ENDPOINTS:
  POST /api/adjustments   Compute a compounded adjustment
  GET  /api/series        Recent index observations
  GET  /api/healthz       Liveness probe

ERROR HANDLING:
  Engine errors map onto HTTP status by kind:
  - 400 invalid_amount:    non-positive or unparseable amount
  - 502 data_unavailable:  upstream fetch failed or series empty
  - 502 invalid_rate:      upstream data normalized outside (-1, +inf)
  - 500 internal:          anything else

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Router and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/warp/adjustment-engine/adjust"
	"github.com/warp/adjustment-engine/provider"
)

// defaultSeriesLimit bounds GET /api/series responses.
const defaultSeriesLimit = 12

// Handler holds the API dependencies.
type Handler struct {
	provider provider.SeriesProvider
	defaults adjust.Options
}

// NewHandler creates a handler backed by the given provider. The options
// are the configured defaults; requests may override them per call.
func NewHandler(p provider.SeriesProvider, defaults adjust.Options) *Handler {
	return &Handler{provider: p, defaults: defaults}
}

// ComputeAdjustment handles POST /api/adjustments.
func (h *Handler) ComputeAdjustment(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body: "+err.Error())
		return
	}

	// Reject bad amounts before fetching anything.
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "invalid_amount",
			(&adjust.InvalidAmountError{Amount: req.Amount}).Error())
		return
	}

	opts := h.defaults
	if req.WindowSize > 0 {
		opts.WindowSize = req.WindowSize
	}
	if req.RateThreshold != nil {
		opts.RateThreshold = *req.RateThreshold
	}

	s, err := h.provider.FetchSeries(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "data_unavailable", err.Error())
		return
	}

	result, err := adjust.Compute(req.Amount, s, opts)
	if err != nil {
		status, kind := classify(err)
		writeError(w, status, kind, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toAdjustmentDTO(result))
}

// GetSeries handles GET /api/series?limit=N.
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	limit := defaultSeriesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = n
	}

	s, err := h.provider.FetchSeries(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "data_unavailable", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toSeriesDTO(s.Latest(limit)))
}

// Health handles GET /api/healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// classify maps engine errors to HTTP status and error kind.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, adjust.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, adjust.ErrDataUnavailable):
		return http.StatusBadGateway, "data_unavailable"
	case errors.Is(err, adjust.ErrInvalidRate):
		return http.StatusBadGateway, "invalid_rate"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, ErrorDTO{Kind: kind, Error: msg})
}
