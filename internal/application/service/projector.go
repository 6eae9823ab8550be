package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	"github.com/atlaserp/procurement/internal/domain/entity"
)

// ProjectParentStatus computes the requisition status implied by a budget
// reaching budgetStatus, given the parent's current status. It returns
// ("", false) when the parent must not move. The projection only ever moves
// the parent forward: a rejection after another quote's approval, or any
// budget event once purchasing started, leaves the parent alone.
func ProjectParentStatus(parentStatus, budgetStatus string) (string, bool) {
	switch budgetStatus {
	case entity.BudgetStatusPending:
		// First quote arrived.
		if parentStatus == entity.RequisitionStatusInQuotation {
			return entity.RequisitionStatusQuotationReceived, true
		}
	case entity.BudgetStatusApproved:
		switch parentStatus {
		case entity.RequisitionStatusInQuotation,
			entity.RequisitionStatusQuotationReceived,
			entity.RequisitionStatusBudgetRejected:
			return entity.RequisitionStatusBudgetApproved, true
		}
	case entity.BudgetStatusRejected:
		switch parentStatus {
		case entity.RequisitionStatusInQuotation,
			entity.RequisitionStatusQuotationReceived:
			return entity.RequisitionStatusBudgetRejected, true
		}
	}
	return "", false
}

// ParentStatusProjector applies the projection after every budget transition.
// It uses the requisition's internal, non-guarded status setter: the write is
// still status-preconditioned and appends a history entry, but no actor
// authorization applies because the transition is system-triggered.
type ParentStatusProjector struct {
	requisitions port.RequisitionRepository
	history      *HistoryRecorder
	logger       *zap.Logger
}

// NewParentStatusProjector creates a new ParentStatusProjector
func NewParentStatusProjector(requisitions port.RequisitionRepository, history *HistoryRecorder, logger *zap.Logger) *ParentStatusProjector {
	return &ParentStatusProjector{
		requisitions: requisitions,
		history:      history,
		logger:       logger,
	}
}

// Apply moves the parent requisition according to the budget's new status.
// It must run inside the budget transition's transaction. The returned
// string is the parent's new status, or "" when no projection applied.
func (p *ParentStatusProjector) Apply(ctx context.Context, req *entity.Requisition, budgetID int64, budgetStatus, actorID string) (string, error) {
	current := req.Status
	target, ok := ProjectParentStatus(current, budgetStatus)
	if !ok {
		return "", nil
	}

	updated, err := p.requisitions.UpdateStatus(ctx, req.ID, current, target)
	if err != nil {
		return "", err
	}
	if !updated {
		// A concurrent budget moved the parent between our read and
		// write. Re-read and project once from the fresh status.
		fresh, err := p.requisitions.GetByID(ctx, req.ID)
		if err != nil {
			return "", err
		}
		if fresh == nil {
			return "", notFoundf("requisition %d", req.ID)
		}
		current = fresh.Status
		target, ok = ProjectParentStatus(current, budgetStatus)
		if !ok {
			return "", nil
		}
		updated, err = p.requisitions.UpdateStatus(ctx, req.ID, current, target)
		if err != nil {
			return "", err
		}
		if !updated {
			return "", conflictf("requisition %d status changed concurrently", req.ID)
		}
	}

	note := fmt.Sprintf("budget %d %s", budgetID, budgetStatus)
	if err := p.history.Record(ctx, req.ID, actorID, current, target, note); err != nil {
		return "", err
	}

	p.logger.Info("Projected budget status onto requisition",
		zap.Int64("requisition_id", req.ID),
		zap.Int64("budget_id", budgetID),
		zap.String("previous_status", current),
		zap.String("new_status", target))

	req.Status = target
	return target, nil
}
