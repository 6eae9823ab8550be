package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/domain/entity"
)

func TestProjectParentStatus(t *testing.T) {
	tests := []struct {
		name         string
		parentStatus string
		budgetStatus string
		want         string
		wantMove     bool
	}{
		{
			name:         "first quote received",
			parentStatus: entity.RequisitionStatusInQuotation,
			budgetStatus: entity.BudgetStatusPending,
			want:         entity.RequisitionStatusQuotationReceived,
			wantMove:     true,
		},
		{
			name:         "second quote leaves parent alone",
			parentStatus: entity.RequisitionStatusQuotationReceived,
			budgetStatus: entity.BudgetStatusPending,
			wantMove:     false,
		},
		{
			name:         "approval from quotation_received",
			parentStatus: entity.RequisitionStatusQuotationReceived,
			budgetStatus: entity.BudgetStatusApproved,
			want:         entity.RequisitionStatusBudgetApproved,
			wantMove:     true,
		},
		{
			name:         "approval recovers from budget_rejected",
			parentStatus: entity.RequisitionStatusBudgetRejected,
			budgetStatus: entity.BudgetStatusApproved,
			want:         entity.RequisitionStatusBudgetApproved,
			wantMove:     true,
		},
		{
			name:         "rejection from quotation_received",
			parentStatus: entity.RequisitionStatusQuotationReceived,
			budgetStatus: entity.BudgetStatusRejected,
			want:         entity.RequisitionStatusBudgetRejected,
			wantMove:     true,
		},
		{
			name:         "rejection after another approval leaves parent alone",
			parentStatus: entity.RequisitionStatusBudgetApproved,
			budgetStatus: entity.BudgetStatusRejected,
			wantMove:     false,
		},
		{
			name:         "budget events during purchase leave parent alone",
			parentStatus: entity.RequisitionStatusInPurchase,
			budgetStatus: entity.BudgetStatusRejected,
			wantMove:     false,
		},
		{
			name:         "returned budget never moves parent",
			parentStatus: entity.RequisitionStatusQuotationReceived,
			budgetStatus: entity.BudgetStatusReturned,
			wantMove:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, moved := ProjectParentStatus(tt.parentStatus, tt.budgetStatus)
			if moved != tt.wantMove {
				t.Fatalf("moved = %v, want %v", moved, tt.wantMove)
			}
			if moved && got != tt.want {
				t.Errorf("target = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestProjector_Apply(t *testing.T) {
	req := &entity.Requisition{ID: 1, RequesterID: "user-1", Status: entity.RequisitionStatusQuotationReceived}
	hist := &mockHistoryRepo{}
	logger := zap.NewNop()
	projector := NewParentStatusProjector(fixedRequisitionRepo(req), NewHistoryRecorder(hist, logger), logger)

	target, err := projector.Apply(context.Background(), req, 5, entity.BudgetStatusApproved, "user-1")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if target != entity.RequisitionStatusBudgetApproved {
		t.Errorf("target = %s, want budget_approved", target)
	}
	if req.Status != entity.RequisitionStatusBudgetApproved {
		t.Errorf("parent not updated in memory: %s", req.Status)
	}
	if hist.lastNote() != "budget 5 approved" {
		t.Errorf("history note = %q", hist.lastNote())
	}
}

func TestProjector_Apply_NoProjection(t *testing.T) {
	req := &entity.Requisition{ID: 1, Status: entity.RequisitionStatusInPurchase}
	hist := &mockHistoryRepo{}
	logger := zap.NewNop()
	calls := 0
	repo := fixedRequisitionRepo(req)
	repo.updateStatusFunc = func(ctx context.Context, id int64, expectedStatus, newStatus string) (bool, error) {
		calls++
		return true, nil
	}
	projector := NewParentStatusProjector(repo, NewHistoryRecorder(hist, logger), logger)

	target, err := projector.Apply(context.Background(), req, 5, entity.BudgetStatusRejected, "user-1")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if target != "" {
		t.Errorf("target = %q, want no projection", target)
	}
	if calls != 0 {
		t.Errorf("UpdateStatus called %d times, want 0", calls)
	}
}

func TestProjector_Apply_ReprojectsFromFreshStatus(t *testing.T) {
	// A concurrent quote already moved the parent in_quotation ->
	// quotation_received; our pending projection must re-read and give up
	// instead of failing.
	stale := &entity.Requisition{ID: 1, Status: entity.RequisitionStatusInQuotation}
	fresh := &entity.Requisition{ID: 1, Status: entity.RequisitionStatusQuotationReceived}
	hist := &mockHistoryRepo{}
	logger := zap.NewNop()
	repo := &mockRequisitionRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Requisition, error) {
			return fresh, nil
		},
		updateStatusFunc: func(ctx context.Context, id int64, expectedStatus, newStatus string) (bool, error) {
			return false, nil
		},
	}
	projector := NewParentStatusProjector(repo, NewHistoryRecorder(hist, logger), logger)

	target, err := projector.Apply(context.Background(), stale, 5, entity.BudgetStatusPending, "buyer-1")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if target != "" {
		t.Errorf("target = %q, want no projection after re-read", target)
	}
	if len(hist.entries) != 0 {
		t.Errorf("history appended %d entries, want 0", len(hist.entries))
	}
}

func TestProjector_Apply_ConflictAfterReread(t *testing.T) {
	stale := &entity.Requisition{ID: 1, Status: entity.RequisitionStatusQuotationReceived}
	fresh := &entity.Requisition{ID: 1, Status: entity.RequisitionStatusBudgetRejected}
	hist := &mockHistoryRepo{}
	logger := zap.NewNop()
	repo := &mockRequisitionRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Requisition, error) {
			return fresh, nil
		},
		updateStatusFunc: func(ctx context.Context, id int64, expectedStatus, newStatus string) (bool, error) {
			return false, nil
		},
	}
	projector := NewParentStatusProjector(repo, NewHistoryRecorder(hist, logger), logger)

	_, err := projector.Apply(context.Background(), stale, 5, entity.BudgetStatusApproved, "user-1")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}
