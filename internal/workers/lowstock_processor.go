// internal/workers/lowstock_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/hibiken/asynq"

	"github.com/stocktrail/stocktrail-be/internal/pkg/config"
)

// LowStockProcessor handles low stock alert tasks
type LowStockProcessor struct {
	config *config.Config
	logger *slog.Logger
}

// NewLowStockProcessor creates a new low stock processor
func NewLowStockProcessor(config *config.Config, logger *slog.Logger) *LowStockProcessor {
	return &LowStockProcessor{
		config: config,
		logger: logger.With(slog.String("processor", "low_stock")),
	}
}

// ProcessAlert delivers one low stock alert. The payload is a snapshot
// taken at commit time; the item may have been restocked since, which is
// acceptable for an advisory alert.
func (p *LowStockProcessor) ProcessAlert(ctx context.Context, t *asynq.Task) error {
	var payload LowStockAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	p.logger.InfoContext(ctx, "low stock alert",
		slog.Int64("item_id", payload.ItemID),
		slog.String("name", payload.Name),
		slog.Int("quantity", payload.Quantity),
		slog.Int("reorder_level", payload.ReorderLevel))

	// In development, just log the alert
	if p.config.App.Environment == "development" {
		return nil
	}

	if p.config.Alerts.Email == "" {
		p.logger.WarnContext(ctx, "no alert recipient configured, dropping alert")
		return nil
	}

	subject := fmt.Sprintf("Low stock: %s", payload.Name)
	body := fmt.Sprintf(
		"Item %q (id %d) is down to %d units, at or below its reorder level of %d.",
		payload.Name, payload.ItemID, payload.Quantity, payload.ReorderLevel,
	)

	from := p.config.Alerts.SMTPFrom
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		from, p.config.Alerts.Email, subject, body,
	))

	auth := smtp.PlainAuth("", p.config.Alerts.SMTPUser, p.config.Alerts.SMTPPassword, p.config.Alerts.SMTPHost)
	addr := fmt.Sprintf("%s:%d", p.config.Alerts.SMTPHost, p.config.Alerts.SMTPPort)
	if err := smtp.SendMail(addr, auth, from, []string{p.config.Alerts.Email}, msg); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	p.logger.InfoContext(ctx, "low stock alert sent",
		slog.Int64("item_id", payload.ItemID))
	return nil
}
