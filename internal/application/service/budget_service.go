package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	appwf "github.com/atlaserp/procurement/internal/application/workflow"
	"github.com/atlaserp/procurement/internal/domain/authority"
	"github.com/atlaserp/procurement/internal/domain/entity"
	domainwf "github.com/atlaserp/procurement/internal/domain/workflow"
)

// BudgetService drives the lifecycle of supplier budgets (orçamentos) and
// their delivery sub-state. Every transition feeds the owning requisition's
// status through the parent status projector, inside the same transaction.
type BudgetService struct {
	budgets      port.BudgetRepository
	requisitions port.RequisitionRepository
	history      *HistoryRecorder
	authority    *ApprovalAuthority
	projector    *ParentStatusProjector
	tx           port.TransactionManager
	notifier     port.Notifier
	logger       *zap.Logger
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	budgets port.BudgetRepository,
	requisitions port.RequisitionRepository,
	history *HistoryRecorder,
	auth *ApprovalAuthority,
	projector *ParentStatusProjector,
	tx port.TransactionManager,
	notifier port.Notifier,
	logger *zap.Logger,
) *BudgetService {
	return &BudgetService{
		budgets:      budgets,
		requisitions: requisitions,
		history:      history,
		authority:    auth,
		projector:    projector,
		tx:           tx,
		notifier:     notifier,
		logger:       logger,
	}
}

// Create registers a new supplier budget against a requisition in the
// quotation stage. The actor must be the assigned buyer or an admin, and
// every budget line must reference a line item of the requisition.
func (s *BudgetService) Create(ctx context.Context, requisitionID int64, actorID string, in BudgetQuoteInput) (*entity.Budget, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	req, err := s.loadRequisition(ctx, requisitionID)
	if err != nil {
		return nil, err
	}
	if req.Status != entity.RequisitionStatusInQuotation && req.Status != entity.RequisitionStatusQuotationReceived {
		return nil, preconditionf("requisition not in quotation stage")
	}
	if err := s.requireAssignedBuyerOrAdmin(ctx, req, actorID); err != nil {
		return nil, err
	}

	budget := &entity.Budget{
		RequisitionID:  requisitionID,
		Status:         entity.BudgetStatusPending,
		DeliveryStatus: entity.DeliveryStatusPending,
		CreatedBy:      actorID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	applyQuoteInput(budget, in)
	if err := s.buildLineItems(budget, req, in.LineItems); err != nil {
		return nil, err
	}
	budget.RecomputeTotal()

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.budgets.Create(txCtx, budget); err != nil {
			return err
		}
		_, err := s.projector.Apply(txCtx, req, budget.ID, entity.BudgetStatusPending, actorID)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to create budget", zap.Int64("requisition_id", requisitionID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Budget created",
		zap.Int64("id", budget.ID),
		zap.Int64("requisition_id", requisitionID),
		zap.String("supplier", budget.SupplierName))
	s.notifyBudget(ctx, budget, req, "")
	return budget, nil
}

// Get loads a budget with its line items.
func (s *BudgetService) Get(ctx context.Context, id int64) (*entity.Budget, error) {
	return s.load(ctx, id)
}

// ListByRequisition returns all budgets quoted against a requisition.
func (s *BudgetService) ListByRequisition(ctx context.Context, requisitionID int64) ([]*entity.Budget, error) {
	if _, err := s.loadRequisition(ctx, requisitionID); err != nil {
		return nil, err
	}
	return s.budgets.GetByRequisitionID(ctx, requisitionID)
}

// Update replaces the quote fields and line items of an editable budget
// (pending or returned). Only the buyer who created it or an admin may edit.
func (s *BudgetService) Update(ctx context.Context, id int64, actorID string, in BudgetQuoteInput) (*entity.Budget, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	budget, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !budget.Editable() {
		return nil, preconditionf("budget is not editable in status %s", budget.Status)
	}
	if actorID != budget.CreatedBy {
		admin, err := s.authority.IsAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, preconditionf("only the buyer who created the budget or an admin may edit it")
		}
	}

	req, err := s.loadRequisition(ctx, budget.RequisitionID)
	if err != nil {
		return nil, err
	}

	applyQuoteInput(budget, in)
	budget.LineItems = nil
	if err := s.buildLineItems(budget, req, in.LineItems); err != nil {
		return nil, err
	}
	budget.RecomputeTotal()

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		ok, err := s.budgets.UpdateQuote(txCtx, budget, budget.Status)
		if err != nil {
			return err
		}
		if !ok {
			return conflictf("budget %d status changed concurrently", budget.ID)
		}
		return s.budgets.ReplaceLineItems(txCtx, budget.ID, budget.LineItems, budget.TotalValue)
	})
	if err != nil {
		s.logger.Error("Failed to update budget", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	return budget, nil
}

// Approve approves a pending or returned budget. The signer is either the
// requisition's requester (customer-side acceptance) or a financial approver
// whose band covers the budget total; whoever acts first wins. The owning
// requisition is projected to budget_approved.
func (s *BudgetService) Approve(ctx context.Context, id int64, actorID string) (*entity.Budget, error) {
	budget, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	req, err := s.loadRequisition(ctx, budget.RequisitionID)
	if err != nil {
		return nil, err
	}
	signer, err := s.authority.BudgetSigner(ctx, actorID, req, budget.TotalValue)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.transition(ctx, budget, req, domainwf.TriggerApprove, actorID,
		approvalNote(budget.ID, signer), func(txCtx context.Context) error {
			return s.budgets.SetApproval(txCtx, budget.ID, actorID, signer.IsRequester(), now)
		})
	if err != nil {
		return nil, err
	}

	budget.ApprovedBy = actorID
	budget.ApprovedByRequester = signer.IsRequester()
	budget.ApprovedAt = &now
	return budget, nil
}

// Reject rejects a pending or returned budget; a reason is required and
// stored verbatim. The owning requisition is projected to budget_rejected.
func (s *BudgetService) Reject(ctx context.Context, id int64, actorID, reason string) (*entity.Budget, error) {
	if reason == "" {
		return nil, validationf("rejection reason is required")
	}
	budget, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	req, err := s.loadRequisition(ctx, budget.RequisitionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authority.BudgetSigner(ctx, actorID, req, budget.TotalValue); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.transition(ctx, budget, req, domainwf.TriggerReject, actorID,
		fmt.Sprintf("budget %d rejected: %s", budget.ID, reason), func(txCtx context.Context) error {
			return s.budgets.SetRejection(txCtx, budget.ID, actorID, reason, now)
		})
	if err != nil {
		return nil, err
	}

	budget.RejectedBy = actorID
	budget.RejectionReason = reason
	budget.RejectedAt = &now
	return budget, nil
}

// Return sends a budget back to the buyer for correction without a full
// rejection. The requester, any active approver, or an admin may return; a
// reason is required. The budget stays editable until approve or reject is
// called again.
func (s *BudgetService) Return(ctx context.Context, id int64, actorID, reason string) (*entity.Budget, error) {
	if reason == "" {
		return nil, validationf("return reason is required")
	}
	budget, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	req, err := s.loadRequisition(ctx, budget.RequisitionID)
	if err != nil {
		return nil, err
	}
	if err := s.requireReturnAuthority(ctx, req, actorID); err != nil {
		return nil, err
	}

	err = s.transition(ctx, budget, req, domainwf.TriggerReturn, actorID,
		fmt.Sprintf("budget %d returned for correction: %s", budget.ID, reason), nil)
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// Cancel withdraws an unapproved quote. Only the buyer who created the
// budget or an admin may cancel; the parent requisition keeps whatever
// status it holds so the remaining quotes stay in play.
func (s *BudgetService) Cancel(ctx context.Context, id int64, actorID, reason string) (*entity.Budget, error) {
	budget, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	req, err := s.loadRequisition(ctx, budget.RequisitionID)
	if err != nil {
		return nil, err
	}
	if actorID != budget.CreatedBy {
		admin, err := s.authority.IsAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, preconditionf("only the buyer who created the budget or an admin may cancel it")
		}
	}

	note := fmt.Sprintf("budget %d cancelled", budget.ID)
	if reason != "" {
		note = fmt.Sprintf("budget %d cancelled: %s", budget.ID, reason)
	}
	if err := s.transition(ctx, budget, req, domainwf.TriggerCancel, actorID, note, nil); err != nil {
		return nil, err
	}
	return budget, nil
}

// UpdateDelivery sets the delivery tracking fields of an approved budget.
// The buyer, the requester, or an admin may update.
func (s *BudgetService) UpdateDelivery(ctx context.Context, id int64, actorID string, in DeliveryUpdateInput) (*entity.Budget, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	budget, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget.Status != entity.BudgetStatusApproved {
		return nil, preconditionf("delivery tracking applies only to approved budgets")
	}
	req, err := s.loadRequisition(ctx, budget.RequisitionID)
	if err != nil {
		return nil, err
	}
	if err := s.requireDeliveryParty(ctx, req, actorID); err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.budgets.UpdateDelivery(txCtx, budget.ID, in.DeliveryStatus, in.ExpectedDeliveryDate, in.ActualDeliveryDate)
	})
	if err != nil {
		s.logger.Error("Failed to update delivery", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	budget.DeliveryStatus = in.DeliveryStatus
	budget.ExpectedDeliveryDate = in.ExpectedDeliveryDate
	budget.ActualDeliveryDate = in.ActualDeliveryDate
	return budget, nil
}

// ConfirmDelivery records one side of the two-party delivery handshake. The
// requisition's requester confirms the requester side, the assigned buyer
// confirms the buyer side; anyone else is refused. Re-confirming an already
// confirmed side is a no-op, not an error, and does not touch the stored
// timestamp. Delivery counts as confirmed only when both sides have signed.
func (s *BudgetService) ConfirmDelivery(ctx context.Context, id int64, actorID string) (*entity.Budget, error) {
	budget, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget.Status != entity.BudgetStatusApproved {
		return nil, preconditionf("delivery confirmation applies only to approved budgets")
	}
	req, err := s.loadRequisition(ctx, budget.RequisitionID)
	if err != nil {
		return nil, err
	}

	var side string
	switch {
	case actorID == req.RequesterID:
		side = "requester"
		if budget.RequesterConfirmed {
			return budget, nil
		}
	case req.BuyerID != nil && actorID == *req.BuyerID:
		side = "buyer"
		if budget.BuyerConfirmed {
			return budget, nil
		}
	default:
		return nil, preconditionf("only the requester or the assigned buyer may confirm delivery")
	}

	now := time.Now()
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if side == "requester" {
			return s.budgets.SetRequesterConfirmed(txCtx, budget.ID, now)
		}
		return s.budgets.SetBuyerConfirmed(txCtx, budget.ID, now)
	})
	if err != nil {
		s.logger.Error("Failed to confirm delivery", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	if side == "requester" {
		budget.RequesterConfirmed = true
		budget.RequesterConfirmedAt = &now
	} else {
		budget.BuyerConfirmed = true
		budget.BuyerConfirmedAt = &now
	}
	if budget.DeliveryConfirmed() {
		s.logger.Info("Delivery confirmed by both parties",
			zap.Int64("budget_id", budget.ID),
			zap.Int64("requisition_id", req.ID))
	}
	return budget, nil
}

// transition performs one guarded budget transition plus the parent
// projection in a single transaction. extra, when set, runs inside the same
// transaction after the status write (approval/rejection metadata).
func (s *BudgetService) transition(ctx context.Context, budget *entity.Budget, req *entity.Requisition, trigger domainwf.Trigger, actorID, note string, extra func(ctx context.Context) error) error {
	machine := appwf.BuildBudgetStateMachine(domainwf.State(budget.Status))
	if err := machine.Fire(ctx, trigger); err != nil {
		return preconditionf("cannot %s budget in status %s", triggerVerb(trigger), budget.Status)
	}
	newStatus := machine.State().String()

	previous := budget.Status
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		ok, err := s.budgets.UpdateStatus(txCtx, budget.ID, previous, newStatus)
		if err != nil {
			return err
		}
		if !ok {
			return conflictf("budget %d status changed concurrently", budget.ID)
		}
		if extra != nil {
			if err := extra(txCtx); err != nil {
				return err
			}
		}
		if err := s.history.Record(txCtx, req.ID, actorID, previous, newStatus, note); err != nil {
			return err
		}
		_, err = s.projector.Apply(txCtx, req, budget.ID, newStatus, actorID)
		return err
	})
	if err != nil {
		return err
	}

	budget.Status = newStatus
	budget.UpdatedAt = time.Now()
	s.logger.Info("Budget transitioned",
		zap.Int64("id", budget.ID),
		zap.Int64("requisition_id", req.ID),
		zap.String("previous_status", previous),
		zap.String("new_status", newStatus),
		zap.String("actor_id", actorID))

	s.notifyBudget(ctx, budget, req, previous)
	return nil
}

// buildLineItems validates that every quoted line references a line item of
// the parent requisition and assembles the budget lines.
func (s *BudgetService) buildLineItems(budget *entity.Budget, req *entity.Requisition, items []BudgetLineItemInput) error {
	for _, in := range items {
		reqLine := req.LineItemByID(in.RequisitionLineItemID)
		if reqLine == nil {
			return validationf("requisition %d has no line item %d", req.ID, in.RequisitionLineItemID)
		}
		description := in.Description
		if description == "" {
			description = reqLine.Description
		}
		unit := in.Unit
		if unit == "" {
			unit = reqLine.Unit
		}
		budget.LineItems = append(budget.LineItems, &entity.BudgetLineItem{
			BudgetID:              budget.ID,
			RequisitionLineItemID: in.RequisitionLineItemID,
			Description:           description,
			Quantity:              in.Quantity,
			Unit:                  unit,
			UnitPrice:             in.UnitPrice,
		})
	}
	return nil
}

func (s *BudgetService) load(ctx context.Context, id int64) (*entity.Budget, error) {
	budget, err := s.budgets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, notFoundf("budget %d", id)
	}
	return budget, nil
}

func (s *BudgetService) loadRequisition(ctx context.Context, id int64) (*entity.Requisition, error) {
	req, err := s.requisitions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, notFoundf("requisition %d", id)
	}
	return req, nil
}

func (s *BudgetService) requireAssignedBuyerOrAdmin(ctx context.Context, req *entity.Requisition, actorID string) error {
	if req.BuyerID != nil && *req.BuyerID == actorID {
		return nil
	}
	admin, err := s.authority.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return preconditionf("only the assigned buyer or an admin may do this")
	}
	return nil
}

// requireReturnAuthority allows the requester, any active approver, or an
// admin to send a budget back for correction.
func (s *BudgetService) requireReturnAuthority(ctx context.Context, req *entity.Requisition, actorID string) error {
	if actorID == req.RequesterID {
		return nil
	}
	admin, err := s.authority.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if admin {
		return nil
	}
	if _, err := s.authority.RequireActiveApprover(ctx, actorID); err != nil {
		return preconditionf("only the requester, an approver, or an admin may return a budget")
	}
	return nil
}

// requireDeliveryParty allows the buyer, the requester, or an admin.
func (s *BudgetService) requireDeliveryParty(ctx context.Context, req *entity.Requisition, actorID string) error {
	if actorID == req.RequesterID {
		return nil
	}
	if req.BuyerID != nil && *req.BuyerID == actorID {
		return nil
	}
	admin, err := s.authority.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return preconditionf("only the buyer, the requester, or an admin may update delivery")
	}
	return nil
}

func (s *BudgetService) notifyBudget(ctx context.Context, budget *entity.Budget, req *entity.Requisition, previous string) {
	audience := []string{req.RequesterID, budget.CreatedBy}
	if req.BuyerID != nil && *req.BuyerID != budget.CreatedBy {
		audience = append(audience, *req.BuyerID)
	}
	change := port.StatusChange{
		Kind:           "budget",
		ID:             budget.ID,
		RequisitionID:  req.ID,
		PreviousStatus: previous,
		NewStatus:      budget.Status,
		Audience:       audience,
	}
	go s.notifier.NotifyStatusChange(context.WithoutCancel(ctx), change)
}

func applyQuoteInput(budget *entity.Budget, in BudgetQuoteInput) {
	budget.SupplierName = in.SupplierName
	budget.SupplierTaxID = in.SupplierTaxID
	budget.SupplierContact = in.SupplierContact
	budget.QuoteNumber = in.QuoteNumber
	budget.QuoteDate = in.QuoteDate
	budget.ValidityDate = in.ValidityDate
	budget.PaymentTerms = in.PaymentTerms
	budget.LeadTimeDays = in.LeadTimeDays
}

func approvalNote(budgetID int64, signer authority.Signer) string {
	if signer.IsRequester() {
		return fmt.Sprintf("budget %d approved by requester", budgetID)
	}
	return fmt.Sprintf("budget %d approved by financial approver", budgetID)
}

func triggerVerb(trigger domainwf.Trigger) string {
	switch trigger {
	case domainwf.TriggerApprove:
		return "approve"
	case domainwf.TriggerReject:
		return "reject"
	case domainwf.TriggerReturn:
		return "return"
	case domainwf.TriggerCancel:
		return "cancel"
	default:
		return trigger.String()
	}
}
