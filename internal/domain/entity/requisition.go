package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Requisition represents a purchase request raised by an employee.
type Requisition struct {
	ID            int64           `json:"id"`
	RequesterID   string          `json:"requester_id"`
	CostCenter    string          `json:"cost_center"`
	Description   string          `json:"description"`
	Justification string          `json:"justification"`
	Priority      string          `json:"priority"`
	NeededByDate  *time.Time      `json:"needed_by_date,omitempty"`
	TotalValue    decimal.Decimal `json:"total_value"`
	BuyerID       *string         `json:"buyer_id,omitempty"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	LineItems []*RequisitionLineItem `json:"line_items,omitempty"`
}

// RequisitionLineItem is a single line of a requisition. ItemNumber is unique
// within its requisition.
type RequisitionLineItem struct {
	ID            int64           `json:"id"`
	RequisitionID int64           `json:"requisition_id"`
	ItemNumber    int             `json:"item_number"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ComputeLineTotal recalculates the line total from quantity and unit price.
func (li *RequisitionLineItem) ComputeLineTotal() {
	li.LineTotal = li.Quantity.Mul(li.UnitPrice)
}

// RecomputeTotal recalculates every line total and the requisition total from
// the current line items. Client-supplied totals are never trusted.
func (r *Requisition) RecomputeTotal() {
	total := decimal.Zero
	for _, li := range r.LineItems {
		li.ComputeLineTotal()
		total = total.Add(li.LineTotal)
	}
	r.TotalValue = total
}

// LineItemByID returns the line item with the given id, or nil.
func (r *Requisition) LineItemByID(id int64) *RequisitionLineItem {
	for _, li := range r.LineItems {
		if li.ID == id {
			return li
		}
	}
	return nil
}

// IsTerminal reports whether the requisition is in a terminal status.
func (r *Requisition) IsTerminal() bool {
	return IsTerminalRequisitionStatus(r.Status)
}
