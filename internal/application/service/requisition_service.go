package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	appwf "github.com/atlaserp/procurement/internal/application/workflow"
	"github.com/atlaserp/procurement/internal/domain/entity"
	domainwf "github.com/atlaserp/procurement/internal/domain/workflow"
)

// RequisitionService drives the requisition lifecycle. Every transition
// validates its guards, performs the status write and the history append in
// one transaction, and notifies after commit. Requisition status and totals
// are mutated through this service only.
type RequisitionService struct {
	requisitions port.RequisitionRepository
	history      *HistoryRecorder
	authority    *ApprovalAuthority
	directory    port.UserDirectory
	tx           port.TransactionManager
	notifier     port.Notifier
	logger       *zap.Logger
}

// NewRequisitionService creates a new RequisitionService
func NewRequisitionService(
	requisitions port.RequisitionRepository,
	history *HistoryRecorder,
	auth *ApprovalAuthority,
	directory port.UserDirectory,
	tx port.TransactionManager,
	notifier port.Notifier,
	logger *zap.Logger,
) *RequisitionService {
	return &RequisitionService{
		requisitions: requisitions,
		history:      history,
		authority:    auth,
		directory:    directory,
		tx:           tx,
		notifier:     notifier,
		logger:       logger,
	}
}

// Create creates a requisition in draft for the requester.
func (s *RequisitionService) Create(ctx context.Context, in CreateRequisitionInput) (*entity.Requisition, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	req := &entity.Requisition{
		RequesterID:   in.RequesterID,
		CostCenter:    in.CostCenter,
		Description:   in.Description,
		Justification: in.Justification,
		Priority:      in.Priority,
		NeededByDate:  in.NeededByDate,
		Status:        entity.RequisitionStatusDraft,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	for i, li := range in.LineItems {
		req.LineItems = append(req.LineItems, &entity.RequisitionLineItem{
			ItemNumber:  i + 1,
			Description: li.Description,
			Quantity:    li.Quantity,
			Unit:        li.Unit,
			UnitPrice:   li.UnitPrice,
		})
	}
	req.RecomputeTotal()

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.requisitions.Create(txCtx, req)
	})
	if err != nil {
		s.logger.Error("Failed to create requisition", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Requisition created", zap.Int64("id", req.ID), zap.String("requester_id", req.RequesterID))
	return req, nil
}

// Get loads a requisition with its line items.
func (s *RequisitionService) Get(ctx context.Context, id int64) (*entity.Requisition, error) {
	return s.load(ctx, id)
}

// History returns the audit trail, oldest first.
func (s *RequisitionService) History(ctx context.Context, id int64) ([]*entity.HistoryEntry, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.history.ListFor(ctx, id)
}

// List returns requisitions ordered by creation, newest first.
func (s *RequisitionService) List(ctx context.Context, limit, offset int) ([]*entity.Requisition, error) {
	return s.requisitions.List(ctx, limit, offset)
}

// UpdateLineItems replaces the line items of a draft requisition and
// recomputes the total. Only the requester may edit, and only in draft.
func (s *RequisitionService) UpdateLineItems(ctx context.Context, id int64, actorID string, items []LineItemInput) (*entity.Requisition, error) {
	if len(items) == 0 {
		return nil, validationf("at least one line item is required")
	}
	for _, li := range items {
		if err := li.validate(); err != nil {
			return nil, err
		}
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != entity.RequisitionStatusDraft {
		return nil, preconditionf("line items are editable only in draft")
	}
	if actorID != req.RequesterID {
		return nil, preconditionf("only the requester may edit line items")
	}

	req.LineItems = req.LineItems[:0]
	for i, li := range items {
		req.LineItems = append(req.LineItems, &entity.RequisitionLineItem{
			RequisitionID: req.ID,
			ItemNumber:    i + 1,
			Description:   li.Description,
			Quantity:      li.Quantity,
			Unit:          li.Unit,
			UnitPrice:     li.UnitPrice,
		})
	}
	req.RecomputeTotal()

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		ok, err := s.requisitions.ReplaceLineItems(txCtx, req.ID, req.LineItems, req.TotalValue, entity.RequisitionStatusDraft)
		if err != nil {
			return err
		}
		if !ok {
			return conflictf("requisition %d left draft concurrently", req.ID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update line items", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	return req, nil
}

// Submit moves a draft with at least one line item to pending approval.
func (s *RequisitionService) Submit(ctx context.Context, id int64, actorID string) (*entity.Requisition, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != req.RequesterID {
		return nil, preconditionf("only the requester may submit")
	}
	if len(req.LineItems) == 0 {
		return nil, preconditionf("requisition has no line items")
	}

	if err := s.transition(ctx, req, domainwf.TriggerSubmit, actorID, "submitted for approval"); err != nil {
		return nil, err
	}
	return req, nil
}

// Approve approves a pending requisition. The actor must be an active
// approver whose inclusive value band covers the requisition total.
func (s *RequisitionService) Approve(ctx context.Context, id int64, actorID, note string) (*entity.Requisition, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != entity.RequisitionStatusPendingApproval {
		return nil, preconditionf("requisition is not pending approval")
	}
	if _, err := s.authority.FinancialSigner(ctx, actorID, req.TotalValue); err != nil {
		return nil, err
	}

	if note == "" {
		note = "approved"
	}
	if err := s.transition(ctx, req, domainwf.TriggerApprove, actorID, note); err != nil {
		return nil, err
	}
	return req, nil
}

// Reject rejects a pending requisition. Rejection is terminal; a reason is
// required.
func (s *RequisitionService) Reject(ctx context.Context, id int64, actorID, reason string) (*entity.Requisition, error) {
	if reason == "" {
		return nil, validationf("rejection reason is required")
	}
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != entity.RequisitionStatusPendingApproval {
		return nil, preconditionf("requisition is not pending approval")
	}
	if _, err := s.authority.RequireActiveApprover(ctx, actorID); err != nil {
		return nil, err
	}

	if err := s.transition(ctx, req, domainwf.TriggerReject, actorID, reason); err != nil {
		return nil, err
	}
	return req, nil
}

// AssignBuyer assigns a buyer to an approved requisition and moves it into
// quotation. The actor must be an admin or hold buyer rights.
func (s *RequisitionService) AssignBuyer(ctx context.Context, id int64, actorID, buyerID string) (*entity.Requisition, error) {
	if buyerID == "" {
		return nil, validationf("buyer id is required")
	}
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed, err := s.authority.HasBuyerRights(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, preconditionf("actor may not assign buyers")
	}
	buyer, err := s.directory.FindBuyerByUserID(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if buyer == nil || !buyer.IsActive {
		return nil, preconditionf("user %s is not an active buyer", buyerID)
	}

	machine := appwf.BuildRequisitionStateMachine(domainwf.State(req.Status))
	if err := machine.Fire(ctx, domainwf.TriggerAssignBuyer); err != nil {
		return nil, preconditionf("cannot assign buyer in status %s", req.Status)
	}
	newStatus := machine.State().String()

	previous := req.Status
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		ok, err := s.requisitions.UpdateStatus(txCtx, req.ID, previous, newStatus)
		if err != nil {
			return err
		}
		if !ok {
			return conflictf("requisition %d status changed concurrently", req.ID)
		}
		if err := s.requisitions.SetBuyer(txCtx, req.ID, buyerID); err != nil {
			return err
		}
		return s.history.Record(txCtx, req.ID, actorID, previous, newStatus, "buyer "+buyerID+" assigned")
	})
	if err != nil {
		return nil, err
	}

	req.Status = newStatus
	req.BuyerID = &buyerID
	s.notify(ctx, req, previous)
	return req, nil
}

// StartPurchase moves a budget-approved requisition into purchasing. The
// actor must be the assigned buyer or an admin.
func (s *RequisitionService) StartPurchase(ctx context.Context, id int64, actorID string) (*entity.Requisition, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireBuyerOrAdmin(ctx, req, actorID); err != nil {
		return nil, err
	}
	if err := s.transition(ctx, req, domainwf.TriggerStartPurchase, actorID, "purchase started"); err != nil {
		return nil, err
	}
	return req, nil
}

// CompletePurchase marks an in-purchase requisition as purchased.
func (s *RequisitionService) CompletePurchase(ctx context.Context, id int64, actorID string) (*entity.Requisition, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireBuyerOrAdmin(ctx, req, actorID); err != nil {
		return nil, err
	}
	if err := s.transition(ctx, req, domainwf.TriggerCompletePurchase, actorID, "purchase completed"); err != nil {
		return nil, err
	}
	return req, nil
}

// Cancel cancels a non-terminal requisition. Only the requester or an admin
// may cancel; the reason is optional. Cancellation is terminal.
func (s *RequisitionService) Cancel(ctx context.Context, id int64, actorID, reason string) (*entity.Requisition, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != req.RequesterID {
		admin, err := s.authority.IsAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, preconditionf("only the requester or an admin may cancel")
		}
	}

	note := "cancelled"
	if reason != "" {
		note = reason
	}
	if err := s.transition(ctx, req, domainwf.TriggerCancel, actorID, note); err != nil {
		return nil, err
	}
	return req, nil
}

// load fetches a requisition or maps its absence to ErrNotFound.
func (s *RequisitionService) load(ctx context.Context, id int64) (*entity.Requisition, error) {
	req, err := s.requisitions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, notFoundf("requisition %d", id)
	}
	return req, nil
}

// transition performs a guarded requisition transition: machine legality,
// status-preconditioned write, and history append in one transaction.
func (s *RequisitionService) transition(ctx context.Context, req *entity.Requisition, trigger domainwf.Trigger, actorID, note string) error {
	machine := appwf.BuildRequisitionStateMachine(domainwf.State(req.Status))
	if err := machine.Fire(ctx, trigger); err != nil {
		return preconditionf("cannot %s requisition in status %s",
			strings.ToLower(strings.ReplaceAll(trigger.String(), "_", " ")), req.Status)
	}
	newStatus := machine.State().String()

	previous := req.Status
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		ok, err := s.requisitions.UpdateStatus(txCtx, req.ID, previous, newStatus)
		if err != nil {
			return err
		}
		if !ok {
			return conflictf("requisition %d status changed concurrently", req.ID)
		}
		return s.history.Record(txCtx, req.ID, actorID, previous, newStatus, note)
	})
	if err != nil {
		return err
	}

	req.Status = newStatus
	req.UpdatedAt = time.Now()
	s.logger.Info("Requisition transitioned",
		zap.Int64("id", req.ID),
		zap.String("previous_status", previous),
		zap.String("new_status", newStatus),
		zap.String("actor_id", actorID))

	s.notify(ctx, req, previous)
	return nil
}

// requireBuyerOrAdmin guards buyer-only operations.
func (s *RequisitionService) requireBuyerOrAdmin(ctx context.Context, req *entity.Requisition, actorID string) error {
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

// notify dispatches a fire-and-forget status-change notification after a
// committed transition. Delivery failures are the notifier's problem.
func (s *RequisitionService) notify(ctx context.Context, req *entity.Requisition, previous string) {
	audience := []string{req.RequesterID}
	if req.BuyerID != nil {
		audience = append(audience, *req.BuyerID)
	}
	change := port.StatusChange{
		Kind:           "requisition",
		ID:             req.ID,
		RequisitionID:  req.ID,
		PreviousStatus: previous,
		NewStatus:      req.Status,
		Audience:       audience,
	}
	go s.notifier.NotifyStatusChange(context.WithoutCancel(ctx), change)
}
