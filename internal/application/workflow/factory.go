package workflow

import (
	"github.com/atlaserp/procurement/internal/domain/entity"
	domainwf "github.com/atlaserp/procurement/internal/domain/workflow"
)

// RequisitionStates is the full requisition status set, matching the values
// persisted in requisitions.status.
var RequisitionStates = []domainwf.State{
	domainwf.State(entity.RequisitionStatusDraft),
	domainwf.State(entity.RequisitionStatusPendingApproval),
	domainwf.State(entity.RequisitionStatusApproved),
	domainwf.State(entity.RequisitionStatusRejected),
	domainwf.State(entity.RequisitionStatusInQuotation),
	domainwf.State(entity.RequisitionStatusQuotationReceived),
	domainwf.State(entity.RequisitionStatusBudgetApproved),
	domainwf.State(entity.RequisitionStatusBudgetRejected),
	domainwf.State(entity.RequisitionStatusInPurchase),
	domainwf.State(entity.RequisitionStatusPurchased),
	domainwf.State(entity.RequisitionStatusCancelled),
	domainwf.State(entity.RequisitionStatusReturned),
}

// BudgetStates is the full budget status set, matching budgets.status.
var BudgetStates = []domainwf.State{
	domainwf.State(entity.BudgetStatusPending),
	domainwf.State(entity.BudgetStatusApproved),
	domainwf.State(entity.BudgetStatusRejected),
	domainwf.State(entity.BudgetStatusReturned),
	domainwf.State(entity.BudgetStatusCancelled),
}

// BuildRequisitionStateMachine creates a state machine for the requisition
// lifecycle, positioned at the given current status. Actor and value guards
// are enforced by the services; the machine only encodes which transitions
// exist at all. Cancel is permitted from every non-terminal state.
func BuildRequisitionStateMachine(current domainwf.State) domainwf.StateMachine {
	builder := domainwf.NewBuilder(RequisitionStates...)

	cancelled := domainwf.State(entity.RequisitionStatusCancelled)

	builder.Configure(domainwf.State(entity.RequisitionStatusDraft)).
		Permit(domainwf.TriggerSubmit, domainwf.State(entity.RequisitionStatusPendingApproval)).
		Permit(domainwf.TriggerCancel, cancelled)

	builder.Configure(domainwf.State(entity.RequisitionStatusPendingApproval)).
		Permit(domainwf.TriggerApprove, domainwf.State(entity.RequisitionStatusApproved)).
		Permit(domainwf.TriggerReject, domainwf.State(entity.RequisitionStatusRejected)).
		Permit(domainwf.TriggerCancel, cancelled)

	builder.Configure(domainwf.State(entity.RequisitionStatusApproved)).
		Permit(domainwf.TriggerAssignBuyer, domainwf.State(entity.RequisitionStatusInQuotation)).
		Permit(domainwf.TriggerCancel, cancelled)

	// The quotation stages are driven by the budget workflow through the
	// parent status projector.
	builder.Configure(domainwf.State(entity.RequisitionStatusInQuotation)).
		Permit(domainwf.TriggerReceiveQuote, domainwf.State(entity.RequisitionStatusQuotationReceived)).
		Permit(domainwf.TriggerBudgetApprove, domainwf.State(entity.RequisitionStatusBudgetApproved)).
		Permit(domainwf.TriggerBudgetReject, domainwf.State(entity.RequisitionStatusBudgetRejected)).
		Permit(domainwf.TriggerCancel, cancelled)

	builder.Configure(domainwf.State(entity.RequisitionStatusQuotationReceived)).
		Permit(domainwf.TriggerBudgetApprove, domainwf.State(entity.RequisitionStatusBudgetApproved)).
		Permit(domainwf.TriggerBudgetReject, domainwf.State(entity.RequisitionStatusBudgetRejected)).
		Permit(domainwf.TriggerCancel, cancelled)

	builder.Configure(domainwf.State(entity.RequisitionStatusBudgetApproved)).
		Permit(domainwf.TriggerStartPurchase, domainwf.State(entity.RequisitionStatusInPurchase)).
		Permit(domainwf.TriggerCancel, cancelled)

	// A rejected quote does not end the requisition: another supplier's
	// budget may still be approved.
	builder.Configure(domainwf.State(entity.RequisitionStatusBudgetRejected)).
		Permit(domainwf.TriggerReceiveQuote, domainwf.State(entity.RequisitionStatusQuotationReceived)).
		Permit(domainwf.TriggerBudgetApprove, domainwf.State(entity.RequisitionStatusBudgetApproved)).
		Permit(domainwf.TriggerCancel, cancelled)

	builder.Configure(domainwf.State(entity.RequisitionStatusInPurchase)).
		Permit(domainwf.TriggerCompletePurchase, domainwf.State(entity.RequisitionStatusPurchased)).
		Permit(domainwf.TriggerCancel, cancelled)

	// returned is kept in the persisted enum for legacy rows; it only
	// allows cancellation.
	builder.Configure(domainwf.State(entity.RequisitionStatusReturned)).
		Permit(domainwf.TriggerCancel, cancelled)

	// rejected, purchased and cancelled are terminal - no outgoing transitions

	return builder.Build(current)
}

// BuildBudgetStateMachine creates a state machine for a single budget's
// lifecycle, positioned at the given current status. The delivery
// confirmation handshake is a sub-state of approved, not a machine
// transition.
func BuildBudgetStateMachine(current domainwf.State) domainwf.StateMachine {
	builder := domainwf.NewBuilder(BudgetStates...)

	builder.Configure(domainwf.State(entity.BudgetStatusPending)).
		Permit(domainwf.TriggerApprove, domainwf.State(entity.BudgetStatusApproved)).
		Permit(domainwf.TriggerReject, domainwf.State(entity.BudgetStatusRejected)).
		Permit(domainwf.TriggerReturn, domainwf.State(entity.BudgetStatusReturned)).
		Permit(domainwf.TriggerCancel, domainwf.State(entity.BudgetStatusCancelled))

	// returned loops back to the same approve/reject choice after the
	// buyer corrects the quote.
	builder.Configure(domainwf.State(entity.BudgetStatusReturned)).
		Permit(domainwf.TriggerApprove, domainwf.State(entity.BudgetStatusApproved)).
		Permit(domainwf.TriggerReject, domainwf.State(entity.BudgetStatusRejected)).
		Permit(domainwf.TriggerCancel, domainwf.State(entity.BudgetStatusCancelled))

	builder.Configure(domainwf.State(entity.BudgetStatusApproved)).
		Permit(domainwf.TriggerReturn, domainwf.State(entity.BudgetStatusReturned))

	// rejected and cancelled are terminal - no outgoing transitions

	return builder.Build(current)
}
