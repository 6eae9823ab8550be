package event

import (
	"testing"
	"time"
)

func TestType_String(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      string
	}{
		{
			name:      "requisition created",
			eventType: TypeRequisitionCreated,
			want:      "requisition.created",
		},
		{
			name:      "requisition status changed",
			eventType: TypeRequisitionStatusChanged,
			want:      "requisition.status_changed",
		},
		{
			name:      "buyer assigned",
			eventType: TypeBuyerAssigned,
			want:      "requisition.buyer_assigned",
		},
		{
			name:      "budget created",
			eventType: TypeBudgetCreated,
			want:      "budget.created",
		},
		{
			name:      "budget status changed",
			eventType: TypeBudgetStatusChanged,
			want:      "budget.status_changed",
		},
		{
			name:      "delivery confirmed",
			eventType: TypeDeliveryConfirmed,
			want:      "budget.delivery_confirmed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eventType.String(); got != tt.want {
				t.Errorf("Type.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      bool
	}{
		{
			name:      "valid - requisition created",
			eventType: TypeRequisitionCreated,
			want:      true,
		},
		{
			name:      "valid - budget status changed",
			eventType: TypeBudgetStatusChanged,
			want:      true,
		},
		{
			name:      "valid - delivery confirmed",
			eventType: TypeDeliveryConfirmed,
			want:      true,
		},
		{
			name:      "invalid - unknown type",
			eventType: Type("unknown.type"),
			want:      false,
		},
		{
			name:      "invalid - empty string",
			eventType: Type(""),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eventType.IsValid(); got != tt.want {
				t.Errorf("Type.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"status": "approved",
		"actor":  "user-1",
	}

	evt := NewEvent(TypeBudgetStatusChanged, 123, 456, payload)

	if evt == nil {
		t.Fatal("NewEvent() returned nil")
	}

	if evt.ID == "" {
		t.Error("Event ID should not be empty")
	}

	if evt.Type != TypeBudgetStatusChanged {
		t.Errorf("Event Type = %v, want %v", evt.Type, TypeBudgetStatusChanged)
	}

	if evt.RequisitionID != 123 {
		t.Errorf("Event RequisitionID = %v, want %v", evt.RequisitionID, 123)
	}

	if evt.BudgetID != 456 {
		t.Errorf("Event BudgetID = %v, want %v", evt.BudgetID, 456)
	}

	if evt.Payload == nil {
		t.Fatal("Event Payload should not be nil")
	}

	if evt.Payload["status"] != "approved" {
		t.Errorf("Event Payload[status] = %v, want %v", evt.Payload["status"], "approved")
	}

	if evt.Timestamp.IsZero() {
		t.Error("Event Timestamp should not be zero")
	}

	if evt.CorrelationID == "" {
		t.Error("Event CorrelationID should not be empty")
	}

	if time.Since(evt.Timestamp) > time.Second {
		t.Error("Event Timestamp should be recent")
	}
}

func TestNewEventWithCorrelation(t *testing.T) {
	correlationID := "test-correlation-123"
	payload := map[string]interface{}{
		"status": "purchased",
	}

	evt := NewEventWithCorrelation(TypeRequisitionStatusChanged, 789, 0, payload, correlationID)

	if evt == nil {
		t.Fatal("NewEventWithCorrelation() returned nil")
	}

	if evt.CorrelationID != correlationID {
		t.Errorf("Event CorrelationID = %v, want %v", evt.CorrelationID, correlationID)
	}

	if evt.Type != TypeRequisitionStatusChanged {
		t.Errorf("Event Type = %v, want %v", evt.Type, TypeRequisitionStatusChanged)
	}

	if evt.RequisitionID != 789 {
		t.Errorf("Event RequisitionID = %v, want %v", evt.RequisitionID, 789)
	}

	if evt.BudgetID != 0 {
		t.Errorf("Event BudgetID = %v, want 0", evt.BudgetID)
	}
}

func TestEvent_WithPayload(t *testing.T) {
	original := NewEvent(TypeRequisitionCreated, 1, 0, map[string]interface{}{
		"key1": "value1",
	})

	modified := original.WithPayload("key2", "value2")

	// Original must stay untouched.
	if _, exists := original.Payload["key2"]; exists {
		t.Error("Original event should not be modified")
	}

	if original.Payload["key1"] != "value1" {
		t.Error("Original event payload should remain intact")
	}

	if modified.Payload["key1"] != "value1" {
		t.Error("Modified event should retain original payload")
	}

	if modified.Payload["key2"] != "value2" {
		t.Error("Modified event should have new payload")
	}

	if modified.ID != original.ID {
		t.Error("Modified event should have same ID")
	}

	if modified.Type != original.Type {
		t.Error("Modified event should have same Type")
	}

	if modified.RequisitionID != original.RequisitionID {
		t.Error("Modified event should have same RequisitionID")
	}

	if modified.CorrelationID != original.CorrelationID {
		t.Error("Modified event should have same CorrelationID")
	}
}

func TestEvent_GetPayloadString(t *testing.T) {
	evt := NewEvent(TypeRequisitionCreated, 1, 0, map[string]interface{}{
		"status":  "draft",
		"number":  123,
		"missing": nil,
	})

	tests := []struct {
		name string
		key  string
		want string
	}{
		{
			name: "existing string",
			key:  "status",
			want: "draft",
		},
		{
			name: "non-string value",
			key:  "number",
			want: "",
		},
		{
			name: "missing key",
			key:  "nonexistent",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evt.GetPayloadString(tt.key); got != tt.want {
				t.Errorf("GetPayloadString(%v) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestEvent_UniqueIDs(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		evt := NewEvent(TypeRequisitionCreated, int64(i), 0, nil)
		if ids[evt.ID] {
			t.Errorf("Duplicate event ID found: %s", evt.ID)
		}
		ids[evt.ID] = true
	}
}

func TestEvent_CorrelationChain(t *testing.T) {
	evt1 := NewEvent(TypeRequisitionCreated, 1, 0, nil)
	correlationID := evt1.CorrelationID

	evt2 := NewEventWithCorrelation(TypeRequisitionStatusChanged, 1, 0, nil, correlationID)
	evt3 := NewEventWithCorrelation(TypeBudgetStatusChanged, 1, 7, nil, correlationID)

	if evt2.CorrelationID != correlationID {
		t.Error("Second event should have same correlation ID")
	}

	if evt3.CorrelationID != correlationID {
		t.Error("Third event should have same correlation ID")
	}

	if evt1.ID == evt2.ID || evt1.ID == evt3.ID || evt2.ID == evt3.ID {
		t.Error("Events should have unique IDs even with same correlation ID")
	}
}
