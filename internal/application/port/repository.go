package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlaserp/procurement/internal/domain/entity"
)

// RequisitionRepository defines persistence operations for Requisition and
// its line items. GetByID returns (nil, nil) when no row exists; callers map
// that to their not-found error.
type RequisitionRepository interface {
	// Create inserts the requisition and its line items.
	Create(ctx context.Context, req *entity.Requisition) error

	// GetByID loads a requisition with its line items.
	GetByID(ctx context.Context, id int64) (*entity.Requisition, error)

	// ReplaceLineItems swaps the full line item set and stores the
	// recomputed total. The total write is preconditioned on
	// expectedStatus; false means a concurrent writer won.
	ReplaceLineItems(ctx context.Context, requisitionID int64, items []*entity.RequisitionLineItem, total decimal.Decimal, expectedStatus string) (bool, error)

	// UpdateStatus performs a status-preconditioned write. It returns
	// false when the row exists but its status no longer matches
	// expectedStatus (a concurrent writer won the race).
	UpdateStatus(ctx context.Context, id int64, expectedStatus, newStatus string) (bool, error)

	// SetBuyer assigns the buyer responsible for sourcing quotes.
	SetBuyer(ctx context.Context, id int64, buyerID string) error

	List(ctx context.Context, limit, offset int) ([]*entity.Requisition, error)
}

// BudgetRepository defines persistence operations for Budget and its line
// items plus approval and delivery metadata.
type BudgetRepository interface {
	// Create inserts the budget and its line items.
	Create(ctx context.Context, budget *entity.Budget) error

	// GetByID loads a budget with its line items.
	GetByID(ctx context.Context, id int64) (*entity.Budget, error)

	GetByRequisitionID(ctx context.Context, requisitionID int64) ([]*entity.Budget, error)

	// UpdateQuote updates the supplier/quote fields of a budget. The
	// write is preconditioned on expectedStatus; false means a
	// concurrent writer moved the budget first.
	UpdateQuote(ctx context.Context, budget *entity.Budget, expectedStatus string) (bool, error)

	// ReplaceLineItems swaps the full line item set and stores the
	// recomputed total.
	ReplaceLineItems(ctx context.Context, budgetID int64, items []*entity.BudgetLineItem, total decimal.Decimal) error

	// UpdateStatus performs a status-preconditioned write, returning
	// false on a concurrent status mismatch.
	UpdateStatus(ctx context.Context, id int64, expectedStatus, newStatus string) (bool, error)

	// SetApproval records who signed the approval and when.
	SetApproval(ctx context.Context, id int64, approvedBy string, byRequester bool, at time.Time) error

	// SetRejection records who rejected, the verbatim reason, and when.
	SetRejection(ctx context.Context, id int64, rejectedBy string, reason string, at time.Time) error

	// UpdateDelivery stores the delivery sub-state of an approved budget.
	UpdateDelivery(ctx context.Context, id int64, deliveryStatus string, expected, actual *time.Time) error

	// SetRequesterConfirmed stamps the requester side of the delivery
	// handshake.
	SetRequesterConfirmed(ctx context.Context, id int64, at time.Time) error

	// SetBuyerConfirmed stamps the buyer side of the delivery handshake.
	SetBuyerConfirmed(ctx context.Context, id int64, at time.Time) error
}

// ApproverRepository defines persistence operations for Approver records.
type ApproverRepository interface {
	Create(ctx context.Context, approver *entity.Approver) error
	GetByUserID(ctx context.Context, userID string) (*entity.Approver, error)
	List(ctx context.Context) ([]*entity.Approver, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// HistoryRepository defines persistence operations for the append-only
// requisition audit trail. There is deliberately no update or delete.
type HistoryRepository interface {
	Create(ctx context.Context, entry *entity.HistoryEntry) error

	// GetByRequisitionID returns entries ordered oldest first.
	GetByRequisitionID(ctx context.Context, requisitionID int64) ([]*entity.HistoryEntry, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
