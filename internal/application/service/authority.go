package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	"github.com/atlaserp/procurement/internal/domain/authority"
	"github.com/atlaserp/procurement/internal/domain/entity"
)

// ApprovalAuthority resolves whether an actor may sign off on a monetary
// amount. Approver records are looked up through the user directory on every
// call so that role or band changes take effect immediately.
type ApprovalAuthority struct {
	directory port.UserDirectory
	logger    *zap.Logger
}

// NewApprovalAuthority creates a new ApprovalAuthority
func NewApprovalAuthority(directory port.UserDirectory, logger *zap.Logger) *ApprovalAuthority {
	return &ApprovalAuthority{
		directory: directory,
		logger:    logger,
	}
}

// CanApprove reports whether the user holds an active approver record whose
// inclusive band covers the amount.
func (a *ApprovalAuthority) CanApprove(ctx context.Context, userID string, amount decimal.Decimal) (bool, error) {
	approver, err := a.directory.FindApproverByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	if approver == nil || !approver.IsActive {
		return false, nil
	}
	return approver.CoversAmount(amount), nil
}

// FinancialSigner resolves the user as a financial approver for the amount.
// The returned errors carry the specific guard reason.
func (a *ApprovalAuthority) FinancialSigner(ctx context.Context, userID string, amount decimal.Decimal) (authority.Signer, error) {
	approver, err := a.directory.FindApproverByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if approver == nil {
		return nil, preconditionf("user %s is not an approver", userID)
	}
	if !approver.IsActive {
		return nil, preconditionf("approver %s is inactive", userID)
	}
	if !approver.CoversAmount(amount) {
		return nil, preconditionf("value outside approver's authorized range")
	}
	return authority.FinancialApprover{Approver: approver}, nil
}

// BudgetSigner resolves who is signing a budget decision: the requisition's
// own requester (customer-side signer, always authorized) or a financial
// approver within range. Whichever applies is returned as a tagged Signer.
func (a *ApprovalAuthority) BudgetSigner(ctx context.Context, userID string, req *entity.Requisition, amount decimal.Decimal) (authority.Signer, error) {
	if userID == req.RequesterID {
		return authority.Requester{UserID: userID}, nil
	}
	signer, err := a.FinancialSigner(ctx, userID, amount)
	if err != nil {
		a.logger.Debug("budget signer resolution failed",
			zap.String("user_id", userID),
			zap.Int64("requisition_id", req.ID),
			zap.Error(err))
		return nil, err
	}
	return signer, nil
}

// RequireActiveApprover resolves the user's approver record without a band
// check, for guards that only require approver standing (e.g. rejecting a
// requisition).
func (a *ApprovalAuthority) RequireActiveApprover(ctx context.Context, userID string) (*entity.Approver, error) {
	approver, err := a.directory.FindApproverByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if approver == nil {
		return nil, preconditionf("user %s is not an approver", userID)
	}
	if !approver.IsActive {
		return nil, preconditionf("approver %s is inactive", userID)
	}
	return approver, nil
}

// IsAdmin reports whether the user's directory role is admin.
func (a *ApprovalAuthority) IsAdmin(ctx context.Context, userID string) (bool, error) {
	role, err := a.directory.RoleOf(ctx, userID)
	if err != nil {
		return false, err
	}
	return role == port.RoleAdmin, nil
}

// HasBuyerRights reports whether the user is an admin or holds an active
// buyer record.
func (a *ApprovalAuthority) HasBuyerRights(ctx context.Context, userID string) (bool, error) {
	admin, err := a.IsAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}
	buyer, err := a.directory.FindBuyerByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	return buyer != nil && buyer.IsActive, nil
}
