package api

import (
	"context"
	"net/http"

	service "github.com/okian/cutoff/internal/app"
	"github.com/okian/cutoff/internal/domain/model"
	"github.com/okian/cutoff/internal/domain/types"
)

// PredictDependencies defines the interface for single predictions.
type PredictDependencies interface {
	Predict(ctx context.Context, req service.PredictRequest) ([]model.Prediction, error)
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.PredictRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sreq, err := toServiceRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	preds, err := h.deps.Predict(r.Context(), sreq)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	out := types.FromPredictions(preds)
	writeJSON(w, http.StatusOK, types.PredictResponse{
		RequestID:   RequestIDFrom(r.Context()),
		Count:       len(out),
		Predictions: out,
	})
}

func toServiceRequest(req types.PredictRequest) (service.PredictRequest, error) {
	if req.Score == nil {
		return service.PredictRequest{}, ErrMissingScore
	}
	return service.PredictRequest{Score: *req.Score, Filters: req.Filters.ToModel()}, nil
}
