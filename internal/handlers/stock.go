// internal/handlers/stock.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
	"github.com/stocktrail/stocktrail-be/internal/core/ports"
)

// StockHandler handles stock adjustment HTTP requests
type StockHandler struct {
	service ports.StockService
	logger  *slog.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(service ports.StockService, logger *slog.Logger) *StockHandler {
	return &StockHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "stock")),
	}
}

// AdjustmentRequest represents the request body for a stock adjustment.
// The item id comes from the URL path.
type AdjustmentRequest struct {
	Quantity int    `json:"quantity"`
	Type     string `json:"transaction_type"`
	UserID   int64  `json:"user_id"`
	Reason   string `json:"reason,omitempty"`
}

// CreateAdjustment handles POST /api/v1/items/{id}/adjustments
func (h *StockHandler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := parseID(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	txn, err := h.service.Apply(ctx, domain.AdjustmentRequest{
		ItemID:   itemID,
		Quantity: req.Quantity,
		Type:     domain.TransactionType(req.Type),
		UserID:   req.UserID,
		Reason:   req.Reason,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to apply adjustment",
			slog.Int64("item_id", itemID),
			slog.String("type", req.Type),
			slog.Int("quantity", req.Quantity),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, txn)
}
