// internal/handlers/reports.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/stocktrail/stocktrail-be/internal/core/ports"
)

// ReportHandler handles reporting HTTP requests
type ReportHandler struct {
	service ports.ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ports.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "reports")),
	}
}

// LowStock handles GET /api/v1/reports/low-stock
func (h *ReportHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.service.LowStock(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build low stock report",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// RecentActivity handles GET /api/v1/reports/activity
func (h *ReportHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	txns, err := h.service.RecentActivity(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build activity report",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"transactions": txns,
		"count":        len(txns),
	})
}
