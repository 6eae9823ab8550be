package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	"github.com/atlaserp/procurement/internal/domain/event"
)

// LogNotifier writes status-change notifications to the structured log as
// domain events. It stands in for a mail or messaging integration; the
// workflow only requires that delivery never blocks or fails a transition.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *zap.Logger) port.Notifier {
	return &LogNotifier{logger: logger}
}

// NotifyStatusChange logs the transition. It never returns an error.
func (n *LogNotifier) NotifyStatusChange(ctx context.Context, change port.StatusChange) {
	evt := toEvent(change)

	n.logger.Info("Status changed",
		zap.String("event_id", evt.ID),
		zap.String("event_type", evt.Type.String()),
		zap.String("correlation_id", evt.CorrelationID),
		zap.Int64("requisition_id", evt.RequisitionID),
		zap.Int64("budget_id", evt.BudgetID),
		zap.String("previous_status", evt.GetPayloadString("previous_status")),
		zap.String("new_status", evt.GetPayloadString("new_status")),
		zap.Strings("audience", change.Audience),
	)
}

// toEvent converts a status change into a domain event. All events of one
// requisition share a correlation id so its budget events group with it.
func toEvent(change port.StatusChange) *event.Event {
	correlation := fmt.Sprintf("requisition-%d", change.RequisitionID)

	eventType := event.TypeRequisitionStatusChanged
	var budgetID int64
	if change.Kind == "budget" {
		eventType = event.TypeBudgetStatusChanged
		budgetID = change.ID
	}

	return event.NewEventWithCorrelation(eventType, change.RequisitionID, budgetID, nil, correlation).
		WithPayload("previous_status", change.PreviousStatus).
		WithPayload("new_status", change.NewStatus)
}
