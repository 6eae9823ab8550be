package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

// Requisition lifecycle triggers
const (
	TriggerSubmit           Trigger = "SUBMIT"
	TriggerApprove          Trigger = "APPROVE"
	TriggerReject           Trigger = "REJECT"
	TriggerAssignBuyer      Trigger = "ASSIGN_BUYER"
	TriggerReceiveQuote     Trigger = "RECEIVE_QUOTE"
	TriggerBudgetApprove    Trigger = "BUDGET_APPROVE"
	TriggerBudgetReject     Trigger = "BUDGET_REJECT"
	TriggerStartPurchase    Trigger = "START_PURCHASE"
	TriggerCompletePurchase Trigger = "COMPLETE_PURCHASE"
	TriggerCancel           Trigger = "CANCEL"
)

// Budget lifecycle triggers
const (
	TriggerReturn Trigger = "RETURN"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
