package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlaserp/procurement/internal/domain/entity"
)

// The workflow layer accepts only fully-typed, pre-validated value objects.
// The HTTP boundary binds request bodies into these inputs; nothing
// loosely-typed crosses into the services.

// LineItemInput describes one requisition line item. Line totals are always
// recomputed server-side; any client-supplied total is ignored.
type LineItemInput struct {
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
}

func (in LineItemInput) validate() error {
	if in.Description == "" {
		return validationf("line item description is required")
	}
	if in.Quantity.Cmp(decimal.Zero) <= 0 {
		return validationf("line item quantity must be positive")
	}
	if in.UnitPrice.Cmp(decimal.Zero) < 0 {
		return validationf("line item unit price must not be negative")
	}
	return nil
}

// CreateRequisitionInput creates a requisition in draft.
type CreateRequisitionInput struct {
	RequesterID   string
	CostCenter    string
	Description   string
	Justification string
	Priority      string
	NeededByDate  *time.Time
	LineItems     []LineItemInput
}

func (in CreateRequisitionInput) validate() error {
	if in.RequesterID == "" {
		return validationf("requester id is required")
	}
	if in.Description == "" {
		return validationf("description is required")
	}
	if in.Priority == "" {
		return validationf("priority is required")
	}
	if !entity.IsValidPriority(in.Priority) {
		return validationf("unknown priority %q", in.Priority)
	}
	for _, li := range in.LineItems {
		if err := li.validate(); err != nil {
			return err
		}
	}
	return nil
}

// BudgetLineItemInput quotes a single requisition line item.
type BudgetLineItemInput struct {
	RequisitionLineItemID int64
	Description           string
	Quantity              decimal.Decimal
	Unit                  string
	UnitPrice             decimal.Decimal
}

func (in BudgetLineItemInput) validate() error {
	if in.RequisitionLineItemID <= 0 {
		return validationf("budget line item must reference a requisition line item")
	}
	if in.Quantity.Cmp(decimal.Zero) <= 0 {
		return validationf("budget line item quantity must be positive")
	}
	if in.UnitPrice.Cmp(decimal.Zero) < 0 {
		return validationf("budget line item unit price must not be negative")
	}
	return nil
}

// BudgetQuoteInput carries the supplier and quote fields of a budget, used
// by both create and update.
type BudgetQuoteInput struct {
	SupplierName    string
	SupplierTaxID   string
	SupplierContact string
	QuoteNumber     string
	QuoteDate       *time.Time
	ValidityDate    *time.Time
	PaymentTerms    string
	LeadTimeDays    int
	LineItems       []BudgetLineItemInput
}

func (in BudgetQuoteInput) validate() error {
	if in.SupplierName == "" {
		return validationf("supplier name is required")
	}
	if in.QuoteNumber == "" {
		return validationf("quote number is required")
	}
	if len(in.LineItems) == 0 {
		return validationf("budget requires at least one line item")
	}
	for _, li := range in.LineItems {
		if err := li.validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApproverInput registers an approval band for a user.
type ApproverInput struct {
	UserID        string
	ApprovalLevel int
	MinValue      decimal.Decimal
	MaxValue      decimal.Decimal
}

func (in ApproverInput) validate() error {
	if in.UserID == "" {
		return validationf("user id is required")
	}
	if in.ApprovalLevel <= 0 {
		return validationf("approval level must be positive")
	}
	if in.MinValue.Cmp(decimal.Zero) < 0 {
		return validationf("minimum value must not be negative")
	}
	if in.MinValue.Cmp(in.MaxValue) > 0 {
		return validationf("minimum value must not exceed maximum value")
	}
	return nil
}

// DeliveryUpdateInput sets the delivery tracking sub-state of an approved
// budget.
type DeliveryUpdateInput struct {
	DeliveryStatus       string
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
}

func (in DeliveryUpdateInput) validate() error {
	if in.DeliveryStatus == "" {
		return validationf("delivery status is required")
	}
	if !entity.IsValidDeliveryStatus(in.DeliveryStatus) {
		return validationf("unknown delivery status %q", in.DeliveryStatus)
	}
	return nil
}
