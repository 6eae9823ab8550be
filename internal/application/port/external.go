package port

import (
	"context"

	"github.com/atlaserp/procurement/internal/domain/entity"
)

// Role is a coarse authorization role resolved by the user directory.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleBuyer     Role = "buyer"
	RoleRequester Role = "requester"
)

// UserDirectory resolves users to their procurement roles. Lookups happen per
// call; authorization is never cached so role changes take effect
// immediately.
type UserDirectory interface {
	// FindApproverByUserID returns the user's approver record, or
	// (nil, nil) when the user is not an approver.
	FindApproverByUserID(ctx context.Context, userID string) (*entity.Approver, error)

	// FindBuyerByUserID returns the user's buyer record, or (nil, nil)
	// when the user is not a buyer.
	FindBuyerByUserID(ctx context.Context, userID string) (*entity.Buyer, error)

	// RoleOf returns the user's role.
	RoleOf(ctx context.Context, userID string) (Role, error)
}

// StatusChange describes a completed transition for notification purposes.
type StatusChange struct {
	Kind           string // "requisition" or "budget"
	ID             int64
	RequisitionID  int64
	PreviousStatus string
	NewStatus      string
	Audience       []string
}

// Notifier delivers status-change notifications. Calls are fire-and-forget:
// implementations log failures and never propagate them, and callers must not
// let delivery block or roll back a transition.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, change StatusChange)
}

// AttachmentStore associates uploaded files (invoices, receipts) with a
// requisition or budget. The workflow only ever confirms existence.
type AttachmentStore interface {
	Exists(ctx context.Context, kind string, refID int64, filename string) (bool, error)
}
