package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	"github.com/atlaserp/procurement/internal/domain/entity"
)

// Mock repositories
type mockRequisitionRepo struct {
	createFunc           func(ctx context.Context, req *entity.Requisition) error
	getByIDFunc          func(ctx context.Context, id int64) (*entity.Requisition, error)
	replaceLineItemsFunc func(ctx context.Context, requisitionID int64, items []*entity.RequisitionLineItem, total decimal.Decimal, expectedStatus string) (bool, error)
	updateStatusFunc     func(ctx context.Context, id int64, expectedStatus, newStatus string) (bool, error)
	setBuyerFunc         func(ctx context.Context, id int64, buyerID string) error
	listFunc             func(ctx context.Context, limit, offset int) ([]*entity.Requisition, error)
}

func (m *mockRequisitionRepo) Create(ctx context.Context, req *entity.Requisition) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	req.ID = 1
	return nil
}

func (m *mockRequisitionRepo) GetByID(ctx context.Context, id int64) (*entity.Requisition, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockRequisitionRepo) ReplaceLineItems(ctx context.Context, requisitionID int64, items []*entity.RequisitionLineItem, total decimal.Decimal, expectedStatus string) (bool, error) {
	if m.replaceLineItemsFunc != nil {
		return m.replaceLineItemsFunc(ctx, requisitionID, items, total, expectedStatus)
	}
	return true, nil
}

func (m *mockRequisitionRepo) UpdateStatus(ctx context.Context, id int64, expectedStatus, newStatus string) (bool, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, expectedStatus, newStatus)
	}
	return true, nil
}

func (m *mockRequisitionRepo) SetBuyer(ctx context.Context, id int64, buyerID string) error {
	if m.setBuyerFunc != nil {
		return m.setBuyerFunc(ctx, id, buyerID)
	}
	return nil
}

func (m *mockRequisitionRepo) List(ctx context.Context, limit, offset int) ([]*entity.Requisition, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return []*entity.Requisition{}, nil
}

type mockBudgetRepo struct {
	createFunc                func(ctx context.Context, budget *entity.Budget) error
	getByIDFunc               func(ctx context.Context, id int64) (*entity.Budget, error)
	getByRequisitionIDFunc    func(ctx context.Context, requisitionID int64) ([]*entity.Budget, error)
	updateQuoteFunc           func(ctx context.Context, budget *entity.Budget, expectedStatus string) (bool, error)
	replaceLineItemsFunc      func(ctx context.Context, budgetID int64, items []*entity.BudgetLineItem, total decimal.Decimal) error
	updateStatusFunc          func(ctx context.Context, id int64, expectedStatus, newStatus string) (bool, error)
	setApprovalFunc           func(ctx context.Context, id int64, approvedBy string, byRequester bool, at time.Time) error
	setRejectionFunc          func(ctx context.Context, id int64, rejectedBy string, reason string, at time.Time) error
	updateDeliveryFunc        func(ctx context.Context, id int64, deliveryStatus string, expected, actual *time.Time) error
	setRequesterConfirmedFunc func(ctx context.Context, id int64, at time.Time) error
	setBuyerConfirmedFunc     func(ctx context.Context, id int64, at time.Time) error
}

func (m *mockBudgetRepo) Create(ctx context.Context, budget *entity.Budget) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, budget)
	}
	budget.ID = 1
	return nil
}

func (m *mockBudgetRepo) GetByID(ctx context.Context, id int64) (*entity.Budget, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBudgetRepo) GetByRequisitionID(ctx context.Context, requisitionID int64) ([]*entity.Budget, error) {
	if m.getByRequisitionIDFunc != nil {
		return m.getByRequisitionIDFunc(ctx, requisitionID)
	}
	return []*entity.Budget{}, nil
}

func (m *mockBudgetRepo) UpdateQuote(ctx context.Context, budget *entity.Budget, expectedStatus string) (bool, error) {
	if m.updateQuoteFunc != nil {
		return m.updateQuoteFunc(ctx, budget, expectedStatus)
	}
	return true, nil
}

func (m *mockBudgetRepo) ReplaceLineItems(ctx context.Context, budgetID int64, items []*entity.BudgetLineItem, total decimal.Decimal) error {
	if m.replaceLineItemsFunc != nil {
		return m.replaceLineItemsFunc(ctx, budgetID, items, total)
	}
	return nil
}

func (m *mockBudgetRepo) UpdateStatus(ctx context.Context, id int64, expectedStatus, newStatus string) (bool, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, expectedStatus, newStatus)
	}
	return true, nil
}

func (m *mockBudgetRepo) SetApproval(ctx context.Context, id int64, approvedBy string, byRequester bool, at time.Time) error {
	if m.setApprovalFunc != nil {
		return m.setApprovalFunc(ctx, id, approvedBy, byRequester, at)
	}
	return nil
}

func (m *mockBudgetRepo) SetRejection(ctx context.Context, id int64, rejectedBy string, reason string, at time.Time) error {
	if m.setRejectionFunc != nil {
		return m.setRejectionFunc(ctx, id, rejectedBy, reason, at)
	}
	return nil
}

func (m *mockBudgetRepo) UpdateDelivery(ctx context.Context, id int64, deliveryStatus string, expected, actual *time.Time) error {
	if m.updateDeliveryFunc != nil {
		return m.updateDeliveryFunc(ctx, id, deliveryStatus, expected, actual)
	}
	return nil
}

func (m *mockBudgetRepo) SetRequesterConfirmed(ctx context.Context, id int64, at time.Time) error {
	if m.setRequesterConfirmedFunc != nil {
		return m.setRequesterConfirmedFunc(ctx, id, at)
	}
	return nil
}

func (m *mockBudgetRepo) SetBuyerConfirmed(ctx context.Context, id int64, at time.Time) error {
	if m.setBuyerConfirmedFunc != nil {
		return m.setBuyerConfirmedFunc(ctx, id, at)
	}
	return nil
}

// mockHistoryRepo records every appended entry for assertions.
type mockHistoryRepo struct {
	createFunc func(ctx context.Context, entry *entity.HistoryEntry) error
	entries    []*entity.HistoryEntry
}

func (m *mockHistoryRepo) Create(ctx context.Context, entry *entity.HistoryEntry) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, entry)
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockHistoryRepo) GetByRequisitionID(ctx context.Context, requisitionID int64) ([]*entity.HistoryEntry, error) {
	var out []*entity.HistoryEntry
	for _, e := range m.entries {
		if e.RequisitionID == requisitionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockHistoryRepo) lastNote() string {
	if len(m.entries) == 0 {
		return ""
	}
	return m.entries[len(m.entries)-1].Note
}

type mockUserDirectory struct {
	findApproverFunc func(ctx context.Context, userID string) (*entity.Approver, error)
	findBuyerFunc    func(ctx context.Context, userID string) (*entity.Buyer, error)
	roleOfFunc       func(ctx context.Context, userID string) (port.Role, error)
}

func (m *mockUserDirectory) FindApproverByUserID(ctx context.Context, userID string) (*entity.Approver, error) {
	if m.findApproverFunc != nil {
		return m.findApproverFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockUserDirectory) FindBuyerByUserID(ctx context.Context, userID string) (*entity.Buyer, error) {
	if m.findBuyerFunc != nil {
		return m.findBuyerFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockUserDirectory) RoleOf(ctx context.Context, userID string) (port.Role, error) {
	if m.roleOfFunc != nil {
		return m.roleOfFunc(ctx, userID)
	}
	return port.RoleRequester, nil
}

type mockApproverRepo struct {
	createFunc      func(ctx context.Context, approver *entity.Approver) error
	getByUserIDFunc func(ctx context.Context, userID string) (*entity.Approver, error)
	listFunc        func(ctx context.Context) ([]*entity.Approver, error)
	setActiveFunc   func(ctx context.Context, id int64, active bool) error
}

func (m *mockApproverRepo) Create(ctx context.Context, approver *entity.Approver) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, approver)
	}
	approver.ID = 1
	return nil
}

func (m *mockApproverRepo) GetByUserID(ctx context.Context, userID string) (*entity.Approver, error) {
	if m.getByUserIDFunc != nil {
		return m.getByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockApproverRepo) List(ctx context.Context) ([]*entity.Approver, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockApproverRepo) SetActive(ctx context.Context, id int64, active bool) error {
	if m.setActiveFunc != nil {
		return m.setActiveFunc(ctx, id, active)
	}
	return nil
}

// mockTxManager runs the function directly; no real transaction.
type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockNotifier struct{}

func (m *mockNotifier) NotifyStatusChange(ctx context.Context, change port.StatusChange) {}

// Test fixtures

func approverInBand(userID string, min, max int64) *entity.Approver {
	return &entity.Approver{
		ID:       1,
		UserID:   userID,
		MinValue: decimal.NewFromInt(min),
		MaxValue: decimal.NewFromInt(max),
		IsActive: true,
	}
}

func adminDirectory(adminID string) *mockUserDirectory {
	return &mockUserDirectory{
		roleOfFunc: func(ctx context.Context, userID string) (port.Role, error) {
			if userID == adminID {
				return port.RoleAdmin, nil
			}
			return port.RoleRequester, nil
		},
	}
}

func newTestRequisitionService(repo port.RequisitionRepository, dir port.UserDirectory, hist *mockHistoryRepo) *RequisitionService {
	logger := zap.NewNop()
	recorder := NewHistoryRecorder(hist, logger)
	authority := NewApprovalAuthority(dir, logger)
	return NewRequisitionService(repo, recorder, authority, dir, &mockTxManager{}, &mockNotifier{}, logger)
}

func newTestApproverService(repo port.ApproverRepository, dir port.UserDirectory) *ApproverService {
	logger := zap.NewNop()
	authority := NewApprovalAuthority(dir, logger)
	return NewApproverService(repo, authority, logger)
}

func newTestBudgetService(budgets port.BudgetRepository, requisitions port.RequisitionRepository, dir port.UserDirectory, hist *mockHistoryRepo) *BudgetService {
	logger := zap.NewNop()
	recorder := NewHistoryRecorder(hist, logger)
	authority := NewApprovalAuthority(dir, logger)
	projector := NewParentStatusProjector(requisitions, recorder, logger)
	return NewBudgetService(budgets, requisitions, recorder, authority, projector, &mockTxManager{}, &mockNotifier{}, logger)
}
