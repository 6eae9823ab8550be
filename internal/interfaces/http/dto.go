package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlaserp/procurement/internal/application/service"
	"github.com/atlaserp/procurement/internal/domain/entity"
)

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// LineItemRequest is one requisition line item in a request body.
// Quantities and prices are decimal strings; floats are never accepted.
type LineItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateRequisitionRequest creates a draft requisition.
type CreateRequisitionRequest struct {
	CostCenter    string            `json:"cost_center" binding:"required"`
	Description   string            `json:"description" binding:"required"`
	Justification string            `json:"justification"`
	Priority      string            `json:"priority" binding:"required"`
	NeededByDate  *time.Time        `json:"needed_by_date"`
	LineItems     []LineItemRequest `json:"line_items"`
}

// UpdateLineItemsRequest replaces a draft requisition's line items.
type UpdateLineItemsRequest struct {
	LineItems []LineItemRequest `json:"line_items" binding:"required"`
}

// ReasonRequest carries a mandatory reason for reject/return actions.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// ApproveRequest carries an optional approval note.
type ApproveRequest struct {
	Note string `json:"note"`
}

// AssignBuyerRequest assigns a buyer to an approved requisition.
type AssignBuyerRequest struct {
	BuyerID string `json:"buyer_id" binding:"required"`
}

// BudgetLineItemRequest quotes one requisition line item.
type BudgetLineItemRequest struct {
	RequisitionLineItemID int64           `json:"requisition_line_item_id" binding:"required"`
	Description           string          `json:"description"`
	Quantity              decimal.Decimal `json:"quantity" binding:"required"`
	Unit                  string          `json:"unit"`
	UnitPrice             decimal.Decimal `json:"unit_price"`
}

// BudgetQuoteRequest carries supplier and quote fields for budget create and
// update.
type BudgetQuoteRequest struct {
	SupplierName    string                  `json:"supplier_name" binding:"required"`
	SupplierTaxID   string                  `json:"supplier_tax_id"`
	SupplierContact string                  `json:"supplier_contact"`
	QuoteNumber     string                  `json:"quote_number" binding:"required"`
	QuoteDate       *time.Time              `json:"quote_date"`
	ValidityDate    *time.Time              `json:"validity_date"`
	PaymentTerms    string                  `json:"payment_terms"`
	LeadTimeDays    int                     `json:"lead_time_days"`
	LineItems       []BudgetLineItemRequest `json:"line_items" binding:"required"`
}

// DeliveryUpdateRequest sets delivery tracking on an approved budget.
type DeliveryUpdateRequest struct {
	DeliveryStatus       string     `json:"delivery_status" binding:"required"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
	ActualDeliveryDate   *time.Time `json:"actual_delivery_date"`
}

// CreateApproverRequest registers an approval band for a user.
type CreateApproverRequest struct {
	UserID        string          `json:"user_id" binding:"required"`
	ApprovalLevel int             `json:"approval_level" binding:"required"`
	MinValue      decimal.Decimal `json:"min_value"`
	MaxValue      decimal.Decimal `json:"max_value" binding:"required"`
}

// SetApproverActiveRequest toggles an approval band.
type SetApproverActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ListRequisitionsRequest represents query parameters for listing.
type ListRequisitionsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// RequisitionResponse represents a requisition in API responses.
type RequisitionResponse struct {
	ID            int64                     `json:"id"`
	RequesterID   string                    `json:"requester_id"`
	CostCenter    string                    `json:"cost_center"`
	Description   string                    `json:"description"`
	Justification string                    `json:"justification,omitempty"`
	Priority      string                    `json:"priority"`
	NeededByDate  *string                   `json:"needed_by_date,omitempty"`
	TotalValue    string                    `json:"total_value"`
	BuyerID       *string                   `json:"buyer_id,omitempty"`
	Status        string                    `json:"status"`
	LineItems     []RequisitionItemResponse `json:"line_items,omitempty"`
	CreatedAt     string                    `json:"created_at"`
	UpdatedAt     string                    `json:"updated_at"`
}

// RequisitionItemResponse represents one line item in API responses.
type RequisitionItemResponse struct {
	ID          int64  `json:"id"`
	ItemNumber  int    `json:"item_number"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit,omitempty"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

// BudgetResponse represents a budget in API responses.
type BudgetResponse struct {
	ID                   int64                `json:"id"`
	RequisitionID        int64                `json:"requisition_id"`
	SupplierName         string               `json:"supplier_name"`
	SupplierTaxID        string               `json:"supplier_tax_id,omitempty"`
	SupplierContact      string               `json:"supplier_contact,omitempty"`
	QuoteNumber          string               `json:"quote_number"`
	QuoteDate            *string              `json:"quote_date,omitempty"`
	ValidityDate         *string              `json:"validity_date,omitempty"`
	PaymentTerms         string               `json:"payment_terms,omitempty"`
	LeadTimeDays         int                  `json:"lead_time_days"`
	TotalValue           string               `json:"total_value"`
	Status               string               `json:"status"`
	RejectionReason      string               `json:"rejection_reason,omitempty"`
	CreatedBy            string               `json:"created_by"`
	ApprovedBy           string               `json:"approved_by,omitempty"`
	ApprovedByRequester  bool                 `json:"approved_by_requester"`
	ApprovedAt           *string              `json:"approved_at,omitempty"`
	RejectedBy           string               `json:"rejected_by,omitempty"`
	RejectedAt           *string              `json:"rejected_at,omitempty"`
	ExpectedDeliveryDate *string              `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *string              `json:"actual_delivery_date,omitempty"`
	DeliveryStatus       string               `json:"delivery_status"`
	RequesterConfirmed   bool                 `json:"requester_confirmed"`
	RequesterConfirmedAt *string              `json:"requester_confirmed_at,omitempty"`
	BuyerConfirmed       bool                 `json:"buyer_confirmed"`
	BuyerConfirmedAt     *string              `json:"buyer_confirmed_at,omitempty"`
	LineItems            []BudgetItemResponse `json:"line_items,omitempty"`
	CreatedAt            string               `json:"created_at"`
	UpdatedAt            string               `json:"updated_at"`
}

// BudgetItemResponse represents one budget line item in API responses.
type BudgetItemResponse struct {
	ID                    int64  `json:"id"`
	RequisitionLineItemID int64  `json:"requisition_line_item_id"`
	Description           string `json:"description"`
	Quantity              string `json:"quantity"`
	Unit                  string `json:"unit,omitempty"`
	UnitPrice             string `json:"unit_price"`
	LineTotal             string `json:"line_total"`
}

// ApproverResponse represents an approval band in API responses.
type ApproverResponse struct {
	ID            int64  `json:"id"`
	UserID        string `json:"user_id"`
	ApprovalLevel int    `json:"approval_level"`
	MinValue      string `json:"min_value"`
	MaxValue      string `json:"max_value"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

// HistoryEntryResponse represents one audit trail record.
type HistoryEntryResponse struct {
	ID             int64  `json:"id"`
	RequisitionID  int64  `json:"requisition_id"`
	ActorID        string `json:"actor_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	Note           string `json:"note,omitempty"`
	Timestamp      string `json:"timestamp"`
}

func (r LineItemRequest) toInput() service.LineItemInput {
	return service.LineItemInput{
		Description: r.Description,
		Quantity:    r.Quantity,
		Unit:        r.Unit,
		UnitPrice:   r.UnitPrice,
	}
}

func toLineItemInputs(items []LineItemRequest) []service.LineItemInput {
	inputs := make([]service.LineItemInput, 0, len(items))
	for _, li := range items {
		inputs = append(inputs, li.toInput())
	}
	return inputs
}

func (r BudgetQuoteRequest) toInput() service.BudgetQuoteInput {
	items := make([]service.BudgetLineItemInput, 0, len(r.LineItems))
	for _, li := range r.LineItems {
		items = append(items, service.BudgetLineItemInput{
			RequisitionLineItemID: li.RequisitionLineItemID,
			Description:           li.Description,
			Quantity:              li.Quantity,
			Unit:                  li.Unit,
			UnitPrice:             li.UnitPrice,
		})
	}
	return service.BudgetQuoteInput{
		SupplierName:    r.SupplierName,
		SupplierTaxID:   r.SupplierTaxID,
		SupplierContact: r.SupplierContact,
		QuoteNumber:     r.QuoteNumber,
		QuoteDate:       r.QuoteDate,
		ValidityDate:    r.ValidityDate,
		PaymentTerms:    r.PaymentTerms,
		LeadTimeDays:    r.LeadTimeDays,
		LineItems:       items,
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// toRequisitionResponse converts a domain entity to an API response.
func toRequisitionResponse(req *entity.Requisition) RequisitionResponse {
	resp := RequisitionResponse{
		ID:            req.ID,
		RequesterID:   req.RequesterID,
		CostCenter:    req.CostCenter,
		Description:   req.Description,
		Justification: req.Justification,
		Priority:      req.Priority,
		NeededByDate:  formatTimePtr(req.NeededByDate),
		TotalValue:    req.TotalValue.String(),
		BuyerID:       req.BuyerID,
		Status:        req.Status,
		CreatedAt:     req.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     req.UpdatedAt.Format(time.RFC3339),
	}
	for _, li := range req.LineItems {
		resp.LineItems = append(resp.LineItems, RequisitionItemResponse{
			ID:          li.ID,
			ItemNumber:  li.ItemNumber,
			Description: li.Description,
			Quantity:    li.Quantity.String(),
			Unit:        li.Unit,
			UnitPrice:   li.UnitPrice.String(),
			LineTotal:   li.LineTotal.String(),
		})
	}
	return resp
}

// toBudgetResponse converts a domain entity to an API response.
func toBudgetResponse(b *entity.Budget) BudgetResponse {
	resp := BudgetResponse{
		ID:                   b.ID,
		RequisitionID:        b.RequisitionID,
		SupplierName:         b.SupplierName,
		SupplierTaxID:        b.SupplierTaxID,
		SupplierContact:      b.SupplierContact,
		QuoteNumber:          b.QuoteNumber,
		QuoteDate:            formatTimePtr(b.QuoteDate),
		ValidityDate:         formatTimePtr(b.ValidityDate),
		PaymentTerms:         b.PaymentTerms,
		LeadTimeDays:         b.LeadTimeDays,
		TotalValue:           b.TotalValue.String(),
		Status:               b.Status,
		RejectionReason:      b.RejectionReason,
		CreatedBy:            b.CreatedBy,
		ApprovedBy:           b.ApprovedBy,
		ApprovedByRequester:  b.ApprovedByRequester,
		ApprovedAt:           formatTimePtr(b.ApprovedAt),
		RejectedBy:           b.RejectedBy,
		RejectedAt:           formatTimePtr(b.RejectedAt),
		ExpectedDeliveryDate: formatTimePtr(b.ExpectedDeliveryDate),
		ActualDeliveryDate:   formatTimePtr(b.ActualDeliveryDate),
		DeliveryStatus:       b.DeliveryStatus,
		RequesterConfirmed:   b.RequesterConfirmed,
		RequesterConfirmedAt: formatTimePtr(b.RequesterConfirmedAt),
		BuyerConfirmed:       b.BuyerConfirmed,
		BuyerConfirmedAt:     formatTimePtr(b.BuyerConfirmedAt),
		CreatedAt:            b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            b.UpdatedAt.Format(time.RFC3339),
	}
	for _, li := range b.LineItems {
		resp.LineItems = append(resp.LineItems, BudgetItemResponse{
			ID:                    li.ID,
			RequisitionLineItemID: li.RequisitionLineItemID,
			Description:           li.Description,
			Quantity:              li.Quantity.String(),
			Unit:                  li.Unit,
			UnitPrice:             li.UnitPrice.String(),
			LineTotal:             li.LineTotal.String(),
		})
	}
	return resp
}

func toApproverResponse(a *entity.Approver) ApproverResponse {
	return ApproverResponse{
		ID:            a.ID,
		UserID:        a.UserID,
		ApprovalLevel: a.ApprovalLevel,
		MinValue:      a.MinValue.String(),
		MaxValue:      a.MaxValue.String(),
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}

func toHistoryResponse(entries []*entity.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntryResponse{
			ID:             e.ID,
			RequisitionID:  e.RequisitionID,
			ActorID:        e.ActorID,
			PreviousStatus: e.PreviousStatus,
			NewStatus:      e.NewStatus,
			Note:           e.Note,
			Timestamp:      e.Timestamp.Format(time.RFC3339),
		})
	}
	return out
}
