// internal/handlers/export.go
package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
	"github.com/stocktrail/stocktrail-be/internal/core/ports"
)

// ExportHandler handles export operations
type ExportHandler struct {
	inventory ports.InventoryService
	reports   ports.ReportService
	logger    *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(inventory ports.InventoryService, reports ports.ReportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		inventory: inventory,
		reports:   reports,
		logger:    logger.With(slog.String("handler", "export")),
	}
}

// ExportExcel handles GET /api/v1/export/excel. The workbook carries two
// sheets: the current items and the recent ledger activity.
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.logger.InfoContext(ctx, "starting Excel export")

	result, err := h.inventory.ListItems(ctx, ports.ItemListParams{
		Page:     1,
		PageSize: 1000,
		SortBy:   "name",
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to retrieve items for export",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	txns, err := h.reports.RecentActivity(ctx, 100)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to retrieve activity for export",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	excelData, err := h.generateExcelFile(result.Items, txns)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("stock_export_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(excelData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(excelData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "Excel export completed",
		slog.Int("items", len(result.Items)),
		slog.Int("transactions", len(txns)),
		slog.String("filename", filename))
}

// generateExcelFile creates an Excel file in memory
func (h *ExportHandler) generateExcelFile(items []*domain.Item, txns []domain.Transaction) ([]byte, error) {
	file := xlsx.NewFile()

	itemSheet, err := file.AddSheet("Items")
	if err != nil {
		return nil, fmt.Errorf("failed to add items worksheet: %w", err)
	}

	itemHeaders := []string{
		"ID", "Name", "Description", "Category", "Supplier",
		"Quantity", "Price", "Reorder Level", "Low Stock", "Last Restocked",
	}
	headerRow := itemSheet.AddRow()
	for _, header := range itemHeaders {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
	}

	for _, item := range items {
		row := itemSheet.AddRow()
		values := []string{
			strconv.FormatInt(item.ID, 10),
			item.Name,
			item.Description,
			item.CategoryName,
			item.SupplierName,
			strconv.Itoa(item.Quantity),
			item.Price.StringFixed(2),
			strconv.Itoa(item.ReorderLevel),
			strconv.FormatBool(item.IsLowStock()),
			item.LastRestocked.Format(time.RFC3339),
		}
		for _, v := range values {
			row.AddCell().Value = v
		}
	}

	txnSheet, err := file.AddSheet("Activity")
	if err != nil {
		return nil, fmt.Errorf("failed to add activity worksheet: %w", err)
	}

	txnHeaders := []string{
		"ID", "Item", "Type", "Quantity", "Total Price", "User", "Reason", "Timestamp",
	}
	txnHeaderRow := txnSheet.AddRow()
	for _, header := range txnHeaders {
		cell := txnHeaderRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
	}

	for i := range txns {
		row := txnSheet.AddRow()
		values := []string{
			strconv.FormatInt(txns[i].ID, 10),
			txns[i].ItemName,
			string(txns[i].Type),
			strconv.Itoa(txns[i].Quantity),
			txns[i].TotalPrice.StringFixed(2),
			txns[i].UserName,
			txns[i].Reason,
			txns[i].Timestamp.Format(time.RFC3339),
		}
		for _, v := range values {
			row.AddCell().Value = v
		}
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}
