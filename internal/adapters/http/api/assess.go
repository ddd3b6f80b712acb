package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/dataq/internal/app"
	"github.com/okian/dataq/internal/domain/model"
)

// Assessor runs one assessment.
type Assessor interface {
	Assess(ctx context.Context, req service.Request) (*service.Report, error)
}

// AssessHandler handles dataset assessment requests.
type AssessHandler struct {
	deps         Assessor
	maxBodyBytes int64
}

// NewAssessHandler creates a new assess handler.
func NewAssessHandler(deps Assessor, opts ...Option) *AssessHandler {
	h := &AssessHandler{deps: deps, maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// assessRequest mirrors the OpenAPI schema for POST /assess.
type assessRequest struct {
	Data        model.Dataset `json:"data"`
	Schema      *model.Schema `json:"schema,omitempty"`
	DetailLevel string        `json:"detail_level,omitempty"`
}

// HandleAssess handles POST /assess requests.
func (h *AssessHandler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	const op = "api.assess"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req assessRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Data == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing data")))
		return
	}

	var level model.DetailLevel
	if req.DetailLevel != "" {
		l, err := model.ParseDetailLevel(req.DetailLevel)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_detail_level", WrapKind(op, ErrBadRequest, err))
			return
		}
		level = l
	}

	report, err := h.deps.Assess(r.Context(), service.Request{Data: req.Data, Schema: req.Schema, Level: level})
	if err != nil {
		status, code, kind := classify(err)
		writeError(w, status, code, WrapKind(op, kind, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// classify maps service errors to a status, a response code and an API kind.
func classify(err error) (int, string, error) {
	switch {
	case errors.Is(err, model.ErrInvalidDetailLevel):
		return http.StatusBadRequest, "invalid_detail_level", ErrBadRequest
	case errors.Is(err, service.ErrTooManyRecords):
		return http.StatusBadRequest, "too_many_records", ErrBadRequest
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure", ErrBackpressure
	case errors.Is(err, service.ErrTimeout):
		return http.StatusGatewayTimeout, "timeout", ErrTimeout
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable", ErrUnavailable
	default:
		return http.StatusInternalServerError, "internal", ErrInternal
	}
}
