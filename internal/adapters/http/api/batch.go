package api

import (
	"context"
	"fmt"
	"net/http"

	service "github.com/okian/cutoff/internal/app"
	"github.com/okian/cutoff/internal/domain/types"
)

const defaultMaxBatch = 50

// BatchDependencies defines the interface for batch predictions.
type BatchDependencies interface {
	PredictBatch(ctx context.Context, reqs []service.PredictRequest) ([]service.BatchResult, error)
}

// BatchHandler handles batch prediction requests.
type BatchHandler struct {
	deps     BatchDependencies
	maxBatch int
}

// NewBatchHandler creates a new batch handler. maxBatch below one uses the default.
func NewBatchHandler(deps BatchDependencies, maxBatch int) *BatchHandler {
	if maxBatch < 1 {
		maxBatch = defaultMaxBatch
	}
	return &BatchHandler{deps: deps, maxBatch: maxBatch}
}

// HandlePredictBatch handles POST /predict/batch requests.
func (h *BatchHandler) HandlePredictBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.BatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Requests) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrEmptyBatch))
		return
	}
	if len(req.Requests) > h.maxBatch {
		err := fmt.Errorf("%d requests, limit %d", len(req.Requests), h.maxBatch)
		writeError(w, http.StatusBadRequest, "batch_too_large", WrapKind(op, ErrBatchTooLarge, err))
		return
	}

	sreqs := make([]service.PredictRequest, len(req.Requests))
	for i, item := range req.Requests {
		sreq, err := toServiceRequest(item)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("request %d: %w", i, err)))
			return
		}
		sreqs[i] = sreq
	}

	results, err := h.deps.PredictBatch(r.Context(), sreqs)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	items := make([]types.BatchItem, len(results))
	for i, res := range results {
		items[i] = types.BatchItem{ID: res.ID, Predictions: types.FromPredictions(res.Predictions)}
		items[i].Count = len(items[i].Predictions)
		if res.Err != nil {
			items[i].Error = res.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, types.BatchResponse{
		RequestID: RequestIDFrom(r.Context()),
		Results:   items,
	})
}
