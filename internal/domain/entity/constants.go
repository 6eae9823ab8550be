package entity

// Status constants for Requisition
const (
	RequisitionStatusDraft             = "draft"
	RequisitionStatusPendingApproval   = "pending_approval"
	RequisitionStatusApproved          = "approved"
	RequisitionStatusRejected          = "rejected"
	RequisitionStatusInQuotation       = "in_quotation"
	RequisitionStatusQuotationReceived = "quotation_received"
	RequisitionStatusBudgetApproved    = "budget_approved"
	RequisitionStatusBudgetRejected    = "budget_rejected"
	RequisitionStatusInPurchase        = "in_purchase"
	RequisitionStatusPurchased         = "purchased"
	RequisitionStatusCancelled         = "cancelled"
	RequisitionStatusReturned          = "returned"
)

// Status constants for Budget (orçamento)
const (
	BudgetStatusPending   = "pending"
	BudgetStatusApproved  = "approved"
	BudgetStatusRejected  = "rejected"
	BudgetStatusReturned  = "returned"
	BudgetStatusCancelled = "cancelled"
)

// Priority constants for Requisition
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Delivery status constants for an approved Budget
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusInTransit = "in_transit"
	DeliveryStatusDelivered = "delivered"
)

var requisitionTerminalStatuses = map[string]bool{
	RequisitionStatusRejected:  true,
	RequisitionStatusPurchased: true,
	RequisitionStatusCancelled: true,
}

var validPriorities = map[string]bool{
	PriorityLow:    true,
	PriorityNormal: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

var validDeliveryStatuses = map[string]bool{
	DeliveryStatusPending:   true,
	DeliveryStatusInTransit: true,
	DeliveryStatusDelivered: true,
}

// IsTerminalRequisitionStatus reports whether no further transitions are
// allowed from the given requisition status.
func IsTerminalRequisitionStatus(status string) bool {
	return requisitionTerminalStatuses[status]
}

// IsValidPriority reports whether the priority value is one of the known levels.
func IsValidPriority(priority string) bool {
	return validPriorities[priority]
}

// IsValidDeliveryStatus reports whether the delivery status value is known.
func IsValidDeliveryStatus(status string) bool {
	return validDeliveryStatuses[status]
}
