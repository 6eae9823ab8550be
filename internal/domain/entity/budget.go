package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget represents a supplier quote (orçamento) submitted against a
// requisition. Many budgets may exist per requisition.
type Budget struct {
	ID              int64      `json:"id"`
	RequisitionID   int64      `json:"requisition_id"`
	SupplierName    string     `json:"supplier_name"`
	SupplierTaxID   string     `json:"supplier_tax_id"`
	SupplierContact string     `json:"supplier_contact"`
	QuoteNumber     string     `json:"quote_number"`
	QuoteDate       *time.Time `json:"quote_date,omitempty"`
	ValidityDate    *time.Time `json:"validity_date,omitempty"`
	PaymentTerms    string     `json:"payment_terms"`
	LeadTimeDays    int        `json:"lead_time_days"`

	TotalValue      decimal.Decimal `json:"total_value"`
	Status          string          `json:"status"`
	RejectionReason string          `json:"rejection_reason,omitempty"`

	// Either the original requester or a financial approver may sign.
	// ApprovedByRequester records which authority acted, since customer
	// acceptance and financial control share the same transition.
	CreatedBy           string     `json:"created_by"`
	ApprovedBy          string     `json:"approved_by,omitempty"`
	ApprovedByRequester bool       `json:"approved_by_requester"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	RejectedBy          string     `json:"rejected_by,omitempty"`
	RejectedAt          *time.Time `json:"rejected_at,omitempty"`

	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *time.Time `json:"actual_delivery_date,omitempty"`
	DeliveryStatus       string     `json:"delivery_status"`
	RequesterConfirmed   bool       `json:"requester_confirmed"`
	RequesterConfirmedAt *time.Time `json:"requester_confirmed_at,omitempty"`
	BuyerConfirmed       bool       `json:"buyer_confirmed"`
	BuyerConfirmedAt     *time.Time `json:"buyer_confirmed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LineItems []*BudgetLineItem `json:"line_items,omitempty"`
}

// BudgetLineItem quotes a single requisition line item.
type BudgetLineItem struct {
	ID                    int64           `json:"id"`
	BudgetID              int64           `json:"budget_id"`
	RequisitionLineItemID int64           `json:"requisition_line_item_id"`
	Description           string          `json:"description"`
	Quantity              decimal.Decimal `json:"quantity"`
	Unit                  string          `json:"unit"`
	UnitPrice             decimal.Decimal `json:"unit_price"`
	LineTotal             decimal.Decimal `json:"line_total"`
	CreatedAt             time.Time       `json:"created_at"`
}

// ComputeLineTotal recalculates the line total from quantity and unit price.
func (li *BudgetLineItem) ComputeLineTotal() {
	li.LineTotal = li.Quantity.Mul(li.UnitPrice)
}

// RecomputeTotal recalculates every line total and the budget total from the
// current line items.
func (b *Budget) RecomputeTotal() {
	total := decimal.Zero
	for _, li := range b.LineItems {
		li.ComputeLineTotal()
		total = total.Add(li.LineTotal)
	}
	b.TotalValue = total
}

// Editable reports whether the buyer may still modify the budget.
func (b *Budget) Editable() bool {
	return b.Status == BudgetStatusPending || b.Status == BudgetStatusReturned
}

// DeliveryConfirmed reports the two-of-two handshake: both the requester and
// the buyer acknowledged receipt.
func (b *Budget) DeliveryConfirmed() bool {
	return b.RequesterConfirmed && b.BuyerConfirmed
}
