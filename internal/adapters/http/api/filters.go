package api

import (
	"context"
	"net/http"

	"github.com/okian/cutoff/internal/adapters/repository"
	"github.com/okian/cutoff/internal/domain/types"
)

// FiltersDependencies defines the interface for filter discovery.
type FiltersDependencies interface {
	Options(ctx context.Context) (repository.FilterOptions, error)
}

// FiltersHandler lists the values clients can filter on.
type FiltersHandler struct {
	deps FiltersDependencies
}

// NewFiltersHandler creates a new filters handler.
func NewFiltersHandler(deps FiltersDependencies) *FiltersHandler {
	return &FiltersHandler{deps: deps}
}

// HandleGetFilters handles GET /filters requests.
func (h *FiltersHandler) HandleGetFilters(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_filters"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	opts, err := h.deps.Options(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FilterOptions{
		Courses:      opts.Programs,
		Communities:  opts.Communities,
		Categories:   opts.Categories,
		Quotas:       opts.Quotas,
		CollegeTypes: opts.InstitutionTypes,
		Years:        opts.Years,
	})
}
