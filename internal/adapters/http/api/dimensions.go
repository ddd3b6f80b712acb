package api

import (
	"net/http"

	service "github.com/okian/dataq/internal/app"
)

// DimensionLister lists served dimensions.
type DimensionLister interface {
	Dimensions() []service.DimensionInfo
}

// DimensionsHandler handles dimension listing requests.
type DimensionsHandler struct {
	deps DimensionLister
}

// NewDimensionsHandler creates a new dimensions handler.
func NewDimensionsHandler(deps DimensionLister) *DimensionsHandler {
	return &DimensionsHandler{deps: deps}
}

// HandleDimensions handles GET /dimensions requests.
func (h *DimensionsHandler) HandleDimensions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Dimensions())
}
