// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
)

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	respondJSON(w, logger, status, map[string]string{"error": message})
}

// respondDomainError maps the typed domain errors onto HTTP status codes:
// validation 400, not found 404, insufficient stock 409, missing reference
// 422. Everything else is a 500 with the detail kept out of the response.
func respondDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		validation   *domain.ValidationError
		notFound     *domain.NotFoundError
		insufficient *domain.InsufficientStockError
		foreignKey   *domain.ForeignKeyError
	)

	switch {
	case errors.As(err, &validation):
		respondError(w, logger, http.StatusBadRequest, validation.Error())
	case errors.As(err, &notFound):
		respondError(w, logger, http.StatusNotFound, notFound.Error())
	case errors.As(err, &insufficient):
		respondJSON(w, logger, http.StatusConflict, map[string]interface{}{
			"error":     insufficient.Error(),
			"item_id":   insufficient.ItemID,
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
	case errors.As(err, &foreignKey):
		respondError(w, logger, http.StatusUnprocessableEntity, foreignKey.Error())
	default:
		respondError(w, logger, http.StatusInternalServerError, "Internal server error")
	}
}
