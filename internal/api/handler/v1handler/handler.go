// Package v1handler serves the v1 HTTP API: property reports and the manual
// page cache hooks.
package v1handler

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"propertydata/pkg/controller"
	"propertydata/pkg/domain"
	"propertydata/pkg/logger"
	"propertydata/pkg/schema"
	"propertydata/pkg/serrors"
)

// ReportBuilder builds the record of an address. *report.Builder implements it.
type ReportBuilder interface {
	Build(ctx context.Context, addr domain.Address) (domain.Record, error)
}

// CacheClearer is the part of cache.Store the API exposes.
type CacheClearer interface {
	Clear(ctx context.Context) error
	ClearExpired(ctx context.Context) (int, error)
}

// Deps are the services the handlers call.
type Deps struct {
	Reports ReportBuilder
	Cache   CacheClearer
}

// Handler implements the v1 routes.
type Handler struct {
	deps Deps
}

// New returns a Handler backed by deps.
func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Routes returns the v1 routes, rooted at /v1/.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/report", h.GetReport)
	mux.HandleFunc("POST /v1/cache/clear-expired", h.ClearExpired)
	mux.HandleFunc("DELETE /v1/cache", h.ClearCache)

	return mux
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Field   string `json:"field,omitempty"`
}

// NewError maps err onto a status code and a response body. Internal errors
// are logged and their details withheld.
func (h *Handler) NewError(ctx context.Context, err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, serrors.ErrBadRequest):
		return http.StatusBadRequest, ErrorResponse{Code: serrors.ErrBadRequest.Error(), Message: message(err)}
	case errors.Is(err, serrors.ErrValidation):
		res := ErrorResponse{Code: serrors.ErrValidation.Error(), Message: message(err)}
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			res.Message = verr.Error()
			res.Field = verr.Field.String()
		}

		return http.StatusUnprocessableEntity, res
	case errors.Is(err, serrors.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Code: serrors.ErrNotFound.Error(), Message: "resource not found"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Code: serrors.ErrTimeout.Error(), Message: "request timed out"}
	default:
		logger.Error(ctx, "request failed", zap.Error(err))

		return http.StatusInternalServerError, ErrorResponse{Code: serrors.ErrInternal.Error(), Message: "internal error"}
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, res := h.NewError(ctx, err)
	controller.WriteJSON(ctx, w, status, res)
}

// message prefers the caller-facing message of a semantic error.
func message(err error) string {
	var serr *serrors.Error
	if errors.As(err, &serr) && serr.Message() != "" {
		return serr.Message()
	}

	return err.Error()
}
