// Package api exposes the prediction service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/cutoff/internal/adapters/repository"
	service "github.com/okian/cutoff/internal/app"
	"github.com/okian/cutoff/internal/domain/model"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Predict(ctx context.Context, req service.PredictRequest) ([]model.Prediction, error)
	PredictBatch(ctx context.Context, reqs []service.PredictRequest) ([]service.BatchResult, error)
	Options(ctx context.Context) (repository.FilterOptions, error)
}

// Server wires HTTP routes for the prediction API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler
	batchHandler   *BatchHandler
	filtersHandler *FiltersHandler
	limiter        *RateLimiter
}

// NewServer creates a new API server with all handlers. A nil limiter
// disables rate limiting.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxBatch int, limiter *RateLimiter) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		predictHandler: NewPredictHandler(deps),
		batchHandler:   NewBatchHandler(deps, maxBatch),
		filtersHandler: NewFiltersHandler(deps),
		limiter:        limiter,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/filters", s.wrap(s.filtersHandler.HandleGetFilters, "filters"))
	mux.HandleFunc("/predict", s.wrap(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/predict/batch", s.wrap(s.batchHandler.HandlePredictBatch, "predict_batch"))
}

// wrap applies the public middleware chain: metrics, request id, rate limit.
func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.HandlerFunc {
	if s.limiter != nil {
		h = s.limiter.Middleware(h, endpoint)
	}
	return MetricsMiddleware(RequestIDMiddleware(h), endpoint)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// writeServiceError maps service failures to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, service.ErrNoStore):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "timeout", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}
