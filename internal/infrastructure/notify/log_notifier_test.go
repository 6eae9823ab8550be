package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	"github.com/atlaserp/procurement/internal/domain/event"
)

func TestToEvent(t *testing.T) {
	t.Run("budget change", func(t *testing.T) {
		evt := toEvent(port.StatusChange{
			Kind:           "budget",
			ID:             5,
			RequisitionID:  1,
			PreviousStatus: "pending",
			NewStatus:      "approved",
		})

		assert.Equal(t, event.TypeBudgetStatusChanged, evt.Type)
		assert.Equal(t, int64(1), evt.RequisitionID)
		assert.Equal(t, int64(5), evt.BudgetID)

		assert.Equal(t, "pending", evt.GetPayloadString("previous_status"))
		assert.Equal(t, "approved", evt.GetPayloadString("new_status"))
		assert.Equal(t, "requisition-1", evt.CorrelationID)
	})

	t.Run("requisition change", func(t *testing.T) {
		evt := toEvent(port.StatusChange{
			Kind:           "requisition",
			ID:             1,
			RequisitionID:  1,
			PreviousStatus: "draft",
			NewStatus:      "pending_approval",
		})

		assert.Equal(t, event.TypeRequisitionStatusChanged, evt.Type)
		assert.Equal(t, int64(1), evt.RequisitionID)
		assert.Zero(t, evt.BudgetID)
	})

	t.Run("events of one requisition share a correlation id", func(t *testing.T) {
		reqEvt := toEvent(port.StatusChange{Kind: "requisition", ID: 1, RequisitionID: 1})
		budgetEvt := toEvent(port.StatusChange{Kind: "budget", ID: 5, RequisitionID: 1})
		otherEvt := toEvent(port.StatusChange{Kind: "requisition", ID: 2, RequisitionID: 2})

		assert.Equal(t, reqEvt.CorrelationID, budgetEvt.CorrelationID)
		assert.NotEqual(t, reqEvt.CorrelationID, otherEvt.CorrelationID)
	})
}

func TestLogNotifier_NeverPanics(t *testing.T) {
	n := NewLogNotifier(zap.NewNop())

	assert.NotPanics(t, func() {
		n.NotifyStatusChange(context.Background(), port.StatusChange{})
	})
}
