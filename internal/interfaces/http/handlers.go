package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	"github.com/atlaserp/procurement/internal/application/service"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	requisitions *service.RequisitionService
	budgets      *service.BudgetService
	approvers    *service.ApproverService
	attachments  port.AttachmentStore
	logger       *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	requisitions *service.RequisitionService,
	budgets *service.BudgetService,
	approvers *service.ApproverService,
	attachments port.AttachmentStore,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		requisitions: requisitions,
		budgets:      budgets,
		approvers:    approvers,
		attachments:  attachments,
		logger:       logger,
	}
}

// actorID extracts the acting user from the X-User-ID header. Session auth
// is out of scope; upstream infrastructure is expected to set the header.
func actorID(c *gin.Context) (string, bool) {
	actor := c.GetHeader("X-User-ID")
	if actor == "" {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "X-User-ID header is required",
		})
		return "", false
	}
	return actor, true
}

func pathID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid id",
		})
		return 0, false
	}
	return id, true
}

// writeError maps service error sentinels onto HTTP status codes.
func (h *Handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrPreconditionFailed):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Internal error handling request",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// CreateRequisition handles POST /api/v1/requisitions
func (h *Handlers) CreateRequisition(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req CreateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.requisitions.Create(c.Request.Context(), service.CreateRequisitionInput{
		RequesterID:   actor,
		CostCenter:    req.CostCenter,
		Description:   req.Description,
		Justification: req.Justification,
		Priority:      req.Priority,
		NeededByDate:  req.NeededByDate,
		LineItems:     toLineItemInputs(req.LineItems),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: toRequisitionResponse(result)})
}

// GetRequisition handles GET /api/v1/requisitions/:id
func (h *Handlers) GetRequisition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.requisitions.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toRequisitionResponse(result)})
}

// ListRequisitions handles GET /api/v1/requisitions
func (h *Handlers) ListRequisitions(c *gin.Context) {
	var req ListRequisitionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	results, err := h.requisitions.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	responses := make([]RequisitionResponse, 0, len(results))
	for _, r := range results {
		responses = append(responses, toRequisitionResponse(r))
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: responses})
}

// GetRequisitionHistory handles GET /api/v1/requisitions/:id/history
func (h *Handlers) GetRequisitionHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	entries, err := h.requisitions.History(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toHistoryResponse(entries)})
}

// UpdateRequisitionItems handles PUT /api/v1/requisitions/:id/items
func (h *Handlers) UpdateRequisitionItems(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req UpdateLineItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.requisitions.UpdateLineItems(c.Request.Context(), id, actor, toLineItemInputs(req.LineItems))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toRequisitionResponse(result)})
}

// SubmitRequisition handles POST /api/v1/requisitions/:id/submit
func (h *Handlers) SubmitRequisition(c *gin.Context) {
	h.action(c, func(id int64, actor string) (interface{}, error) {
		result, err := h.requisitions.Submit(c.Request.Context(), id, actor)
		if err != nil {
			return nil, err
		}
		return toRequisitionResponse(result), nil
	})
}

// ApproveRequisition handles POST /api/v1/requisitions/:id/approve
func (h *Handlers) ApproveRequisition(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	h.action(c, func(id int64, actor string) (interface{}, error) {
		result, err := h.requisitions.Approve(c.Request.Context(), id, actor, req.Note)
		if err != nil {
			return nil, err
		}
		return toRequisitionResponse(result), nil
	})
}

// RejectRequisition handles POST /api/v1/requisitions/:id/reject
func (h *Handlers) RejectRequisition(c *gin.Context) {
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	h.action(c, func(id int64, actor string) (interface{}, error) {
		result, err := h.requisitions.Reject(c.Request.Context(), id, actor, req.Reason)
		if err != nil {
			return nil, err
		}
		return toRequisitionResponse(result), nil
	})
}

// AssignBuyer handles POST /api/v1/requisitions/:id/assign-buyer
func (h *Handlers) AssignBuyer(c *gin.Context) {
	var req AssignBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	h.action(c, func(id int64, actor string) (interface{}, error) {
		result, err := h.requisitions.AssignBuyer(c.Request.Context(), id, actor, req.BuyerID)
		if err != nil {
			return nil, err
		}
		return toRequisitionResponse(result), nil
	})
}

// StartPurchase handles POST /api/v1/requisitions/:id/start-purchase
func (h *Handlers) StartPurchase(c *gin.Context) {
	h.action(c, func(id int64, actor string) (interface{}, error) {
		result, err := h.requisitions.StartPurchase(c.Request.Context(), id, actor)
		if err != nil {
			return nil, err
		}
		return toRequisitionResponse(result), nil
	})
}

// CompletePurchase handles POST /api/v1/requisitions/:id/complete-purchase
func (h *Handlers) CompletePurchase(c *gin.Context) {
	h.action(c, func(id int64, actor string) (interface{}, error) {
		result, err := h.requisitions.CompletePurchase(c.Request.Context(), id, actor)
		if err != nil {
			return nil, err
		}
		return toRequisitionResponse(result), nil
	})
}

// CancelRequisition handles POST /api/v1/requisitions/:id/cancel
func (h *Handlers) CancelRequisition(c *gin.Context) {
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	h.action(c, func(id int64, actor string) (interface{}, error) {
		result, err := h.requisitions.Cancel(c.Request.Context(), id, actor, req.Reason)
		if err != nil {
			return nil, err
		}
		return toRequisitionResponse(result), nil
	})
}

// CreateBudget handles POST /api/v1/requisitions/:id/budgets
func (h *Handlers) CreateBudget(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req BudgetQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.budgets.Create(c.Request.Context(), id, actor, req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: toBudgetResponse(result)})
}

// ListBudgets handles GET /api/v1/requisitions/:id/budgets
func (h *Handlers) ListBudgets(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	results, err := h.budgets.ListByRequisition(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	responses := make([]BudgetResponse, 0, len(results))
	for _, b := range results {
		responses = append(responses, toBudgetResponse(b))
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: responses})
}

// GetBudget handles GET /api/v1/budgets/:id
func (h *Handlers) GetBudget(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.budgets.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toBudgetResponse(result)})
}

// UpdateBudget handles PUT /api/v1/budgets/:id
func (h *Handlers) UpdateBudget(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req BudgetQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.budgets.Update(c.Request.Context(), id, actor, req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toBudgetResponse(result)})
}

// ApproveBudget handles POST /api/v1/budgets/:id/approve
func (h *Handlers) ApproveBudget(c *gin.Context) {
	h.action(c, func(id int64, actor string) (interface{}, error) {
		result, err := h.budgets.Approve(c.Request.Context(), id, actor)
		if err != nil {
			return nil, err
		}
		return toBudgetResponse(result), nil
	})
}

// RejectBudget handles POST /api/v1/budgets/:id/reject
func (h *Handlers) RejectBudget(c *gin.Context) {
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	h.action(c, func(id int64, actor string) (interface{}, error) {
		result, err := h.budgets.Reject(c.Request.Context(), id, actor, req.Reason)
		if err != nil {
			return nil, err
		}
		return toBudgetResponse(result), nil
	})
}

// ReturnBudget handles POST /api/v1/budgets/:id/return
func (h *Handlers) ReturnBudget(c *gin.Context) {
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	h.action(c, func(id int64, actor string) (interface{}, error) {
		result, err := h.budgets.Return(c.Request.Context(), id, actor, req.Reason)
		if err != nil {
			return nil, err
		}
		return toBudgetResponse(result), nil
	})
}

// CancelBudget handles POST /api/v1/budgets/:id/cancel
func (h *Handlers) CancelBudget(c *gin.Context) {
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	h.action(c, func(id int64, actor string) (interface{}, error) {
		result, err := h.budgets.Cancel(c.Request.Context(), id, actor, req.Reason)
		if err != nil {
			return nil, err
		}
		return toBudgetResponse(result), nil
	})
}

// UpdateBudgetDelivery handles PUT /api/v1/budgets/:id/delivery
func (h *Handlers) UpdateBudgetDelivery(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req DeliveryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.budgets.UpdateDelivery(c.Request.Context(), id, actor, service.DeliveryUpdateInput{
		DeliveryStatus:       req.DeliveryStatus,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		ActualDeliveryDate:   req.ActualDeliveryDate,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toBudgetResponse(result)})
}

// ConfirmBudgetDelivery handles POST /api/v1/budgets/:id/confirm-delivery
func (h *Handlers) ConfirmBudgetDelivery(c *gin.Context) {
	h.action(c, func(id int64, actor string) (interface{}, error) {
		result, err := h.budgets.ConfirmDelivery(c.Request.Context(), id, actor)
		if err != nil {
			return nil, err
		}
		return toBudgetResponse(result), nil
	})
}

// CreateApprover handles POST /api/v1/approvers
func (h *Handlers) CreateApprover(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req CreateApproverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	approver, err := h.approvers.Create(c.Request.Context(), actor, service.ApproverInput{
		UserID:        req.UserID,
		ApprovalLevel: req.ApprovalLevel,
		MinValue:      req.MinValue,
		MaxValue:      req.MaxValue,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: toApproverResponse(approver)})
}

// ListApprovers handles GET /api/v1/approvers
func (h *Handlers) ListApprovers(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	approvers, err := h.approvers.List(c.Request.Context(), actor)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]ApproverResponse, 0, len(approvers))
	for _, a := range approvers {
		out = append(out, toApproverResponse(a))
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: out})
}

// SetApproverActive handles PUT /api/v1/approvers/:id/active
func (h *Handlers) SetApproverActive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req SetApproverActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	if err := h.approvers.SetActive(c.Request.Context(), actor, id, *req.Active); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// CheckAttachment handles HEAD /api/v1/:kind/:id/attachments/:filename.
// It reports whether a file is associated with the record; the upload flow
// itself lives outside this service.
func (h *Handlers) CheckAttachment(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		filename := c.Param("filename")
		if filename == "" {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "filename is required"})
			return
		}

		exists, err := h.attachments.Exists(c.Request.Context(), kind, id, filename)
		if err != nil {
			h.writeError(c, err)
			return
		}
		if !exists {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "attachment not found"})
			return
		}
		c.JSON(http.StatusOK, Response{Success: true})
	}
}

// action factors the common id/actor extraction for transition endpoints.
func (h *Handlers) action(c *gin.Context, fn func(id int64, actor string) (interface{}, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}

	data, err := fn(id, actor)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}
