package workflow

import (
	"context"
	"testing"

	"github.com/atlaserp/procurement/internal/domain/entity"
	domainwf "github.com/atlaserp/procurement/internal/domain/workflow"
)

func TestBuildRequisitionStateMachine_Transitions(t *testing.T) {
	tests := []struct {
		from    string
		trigger domainwf.Trigger
		want    string
	}{
		{entity.RequisitionStatusDraft, domainwf.TriggerSubmit, entity.RequisitionStatusPendingApproval},
		{entity.RequisitionStatusPendingApproval, domainwf.TriggerApprove, entity.RequisitionStatusApproved},
		{entity.RequisitionStatusPendingApproval, domainwf.TriggerReject, entity.RequisitionStatusRejected},
		{entity.RequisitionStatusApproved, domainwf.TriggerAssignBuyer, entity.RequisitionStatusInQuotation},
		{entity.RequisitionStatusInQuotation, domainwf.TriggerReceiveQuote, entity.RequisitionStatusQuotationReceived},
		{entity.RequisitionStatusInQuotation, domainwf.TriggerBudgetApprove, entity.RequisitionStatusBudgetApproved},
		{entity.RequisitionStatusInQuotation, domainwf.TriggerBudgetReject, entity.RequisitionStatusBudgetRejected},
		{entity.RequisitionStatusQuotationReceived, domainwf.TriggerBudgetApprove, entity.RequisitionStatusBudgetApproved},
		{entity.RequisitionStatusQuotationReceived, domainwf.TriggerBudgetReject, entity.RequisitionStatusBudgetRejected},
		{entity.RequisitionStatusBudgetRejected, domainwf.TriggerReceiveQuote, entity.RequisitionStatusQuotationReceived},
		{entity.RequisitionStatusBudgetRejected, domainwf.TriggerBudgetApprove, entity.RequisitionStatusBudgetApproved},
		{entity.RequisitionStatusBudgetApproved, domainwf.TriggerStartPurchase, entity.RequisitionStatusInPurchase},
		{entity.RequisitionStatusInPurchase, domainwf.TriggerCompletePurchase, entity.RequisitionStatusPurchased},
	}

	for _, tt := range tests {
		t.Run(tt.from+"/"+tt.trigger.String(), func(t *testing.T) {
			machine := BuildRequisitionStateMachine(domainwf.State(tt.from))
			if err := machine.Fire(context.Background(), tt.trigger); err != nil {
				t.Fatalf("Fire(%s) from %s failed: %v", tt.trigger, tt.from, err)
			}
			if machine.State().String() != tt.want {
				t.Errorf("state = %s, want %s", machine.State(), tt.want)
			}
		})
	}
}

func TestBuildRequisitionStateMachine_CancelFromNonTerminal(t *testing.T) {
	nonTerminal := []string{
		entity.RequisitionStatusDraft,
		entity.RequisitionStatusPendingApproval,
		entity.RequisitionStatusApproved,
		entity.RequisitionStatusInQuotation,
		entity.RequisitionStatusQuotationReceived,
		entity.RequisitionStatusBudgetApproved,
		entity.RequisitionStatusBudgetRejected,
		entity.RequisitionStatusInPurchase,
		entity.RequisitionStatusReturned,
	}

	for _, from := range nonTerminal {
		t.Run(from, func(t *testing.T) {
			machine := BuildRequisitionStateMachine(domainwf.State(from))
			if err := machine.Fire(context.Background(), domainwf.TriggerCancel); err != nil {
				t.Fatalf("cancel from %s failed: %v", from, err)
			}
			if machine.State().String() != entity.RequisitionStatusCancelled {
				t.Errorf("state = %s, want cancelled", machine.State())
			}
		})
	}
}

func TestBuildRequisitionStateMachine_TerminalStates(t *testing.T) {
	terminal := []string{
		entity.RequisitionStatusRejected,
		entity.RequisitionStatusPurchased,
		entity.RequisitionStatusCancelled,
	}

	for _, from := range terminal {
		t.Run(from, func(t *testing.T) {
			machine := BuildRequisitionStateMachine(domainwf.State(from))
			if triggers := machine.PermittedTriggers(); len(triggers) != 0 {
				t.Errorf("terminal state %s permits %v", from, triggers)
			}
		})
	}
}

func TestBuildRequisitionStateMachine_InvalidTransitions(t *testing.T) {
	tests := []struct {
		from    string
		trigger domainwf.Trigger
	}{
		{entity.RequisitionStatusDraft, domainwf.TriggerApprove},
		{entity.RequisitionStatusApproved, domainwf.TriggerSubmit},
		{entity.RequisitionStatusInQuotation, domainwf.TriggerStartPurchase},
		{entity.RequisitionStatusBudgetApproved, domainwf.TriggerCompletePurchase},
		{entity.RequisitionStatusPurchased, domainwf.TriggerCancel},
	}

	for _, tt := range tests {
		t.Run(tt.from+"/"+tt.trigger.String(), func(t *testing.T) {
			machine := BuildRequisitionStateMachine(domainwf.State(tt.from))
			if machine.CanFire(tt.trigger) {
				t.Errorf("CanFire(%s) from %s = true", tt.trigger, tt.from)
			}
			if err := machine.Fire(context.Background(), tt.trigger); err == nil {
				t.Errorf("Fire(%s) from %s succeeded", tt.trigger, tt.from)
			}
			if machine.State().String() != tt.from {
				t.Errorf("state mutated to %s on refused trigger", machine.State())
			}
		})
	}
}

func TestBuildBudgetStateMachine_Transitions(t *testing.T) {
	tests := []struct {
		from    string
		trigger domainwf.Trigger
		want    string
	}{
		{entity.BudgetStatusPending, domainwf.TriggerApprove, entity.BudgetStatusApproved},
		{entity.BudgetStatusPending, domainwf.TriggerReject, entity.BudgetStatusRejected},
		{entity.BudgetStatusPending, domainwf.TriggerReturn, entity.BudgetStatusReturned},
		{entity.BudgetStatusPending, domainwf.TriggerCancel, entity.BudgetStatusCancelled},
		{entity.BudgetStatusReturned, domainwf.TriggerApprove, entity.BudgetStatusApproved},
		{entity.BudgetStatusReturned, domainwf.TriggerReject, entity.BudgetStatusRejected},
		{entity.BudgetStatusReturned, domainwf.TriggerCancel, entity.BudgetStatusCancelled},
		{entity.BudgetStatusApproved, domainwf.TriggerReturn, entity.BudgetStatusReturned},
	}

	for _, tt := range tests {
		t.Run(tt.from+"/"+tt.trigger.String(), func(t *testing.T) {
			machine := BuildBudgetStateMachine(domainwf.State(tt.from))
			if err := machine.Fire(context.Background(), tt.trigger); err != nil {
				t.Fatalf("Fire(%s) from %s failed: %v", tt.trigger, tt.from, err)
			}
			if machine.State().String() != tt.want {
				t.Errorf("state = %s, want %s", machine.State(), tt.want)
			}
		})
	}
}

func TestBuildBudgetStateMachine_TerminalStates(t *testing.T) {
	for _, from := range []string{entity.BudgetStatusRejected, entity.BudgetStatusCancelled} {
		t.Run(from, func(t *testing.T) {
			machine := BuildBudgetStateMachine(domainwf.State(from))
			if triggers := machine.PermittedTriggers(); len(triggers) != 0 {
				t.Errorf("terminal state %s permits %v", from, triggers)
			}
		})
	}
}

func TestBuildBudgetStateMachine_ApprovedCannotReApprove(t *testing.T) {
	machine := BuildBudgetStateMachine(domainwf.State(entity.BudgetStatusApproved))
	if machine.CanFire(domainwf.TriggerApprove) {
		t.Error("approved budget permits approve")
	}
	if machine.CanFire(domainwf.TriggerReject) {
		t.Error("approved budget permits reject")
	}
}
