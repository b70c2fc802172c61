package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"propertydata/pkg/logger"
)

// WriteJSON writes v as the JSON response body with the given status.
func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn(ctx, "could not write response", zap.Error(err))
	}
}
