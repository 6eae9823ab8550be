package event

// Type identifies the type of domain event
type Type string

const (
	TypeRequisitionCreated       Type = "requisition.created"
	TypeRequisitionStatusChanged Type = "requisition.status_changed"
	TypeBuyerAssigned            Type = "requisition.buyer_assigned"
	TypeBudgetCreated            Type = "budget.created"
	TypeBudgetStatusChanged      Type = "budget.status_changed"
	TypeDeliveryConfirmed        Type = "budget.delivery_confirmed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeRequisitionCreated,
		TypeRequisitionStatusChanged,
		TypeBuyerAssigned,
		TypeBudgetCreated,
		TypeBudgetStatusChanged,
		TypeDeliveryConfirmed:
		return true
	default:
		return false
	}
}
