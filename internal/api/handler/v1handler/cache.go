package v1handler

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"propertydata/pkg/controller"
	"propertydata/pkg/logger"
)

// ClearExpiredResponse reports how many cached pages were evicted.
type ClearExpiredResponse struct {
	Removed int `json:"removed"`
}

// ClearExpired evicts every expired page from the cache.
func (h *Handler) ClearExpired(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	n, err := h.deps.Cache.ClearExpired(ctx)
	if err != nil {
		h.writeError(ctx, w, fmt.Errorf("could not clear expired pages: %w", err))

		return
	}
	logger.Info(ctx, "cleared expired pages", zap.Int("removed", n))

	controller.WriteJSON(ctx, w, http.StatusOK, ClearExpiredResponse{Removed: n})
}

// ClearCache drops every cached page.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.deps.Cache.Clear(ctx); err != nil {
		h.writeError(ctx, w, fmt.Errorf("could not clear cache: %w", err))

		return
	}
	logger.Info(ctx, "cleared page cache")

	w.WriteHeader(http.StatusNoContent)
}
