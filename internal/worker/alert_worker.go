package worker

import (
	"context"
	"fmt"

	"finsmart/internal/amqp"
	applog "finsmart/internal/log"
	"finsmart/internal/notifier"
)

// AlertWorker forwards alert messages to a notifier.
type AlertWorker struct {
	notifier notifier.Notifier
	logger   *applog.Logger
}

func NewAlertWorker(n notifier.Notifier, logger *applog.Logger) *AlertWorker {
	return &AlertWorker{notifier: n, logger: logger.WithComponent(applog.ComponentWorker)}
}

func (w *AlertWorker) HandleAlertMessage(ctx context.Context, msg amqp.AlertMessage) error {
	if err := w.notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("notify %s alert for %s: %w", msg.Kind, msg.ItemID, err)
	}
	w.logger.DebugContext(ctx, "Alert handled",
		applog.FieldUserID, msg.UserID,
		applog.FieldAlertKind, string(msg.Kind),
		applog.FieldEntityID, msg.ItemID)
	return nil
}
