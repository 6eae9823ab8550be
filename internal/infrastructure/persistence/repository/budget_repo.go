package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	"github.com/atlaserp/procurement/internal/domain/entity"
	"github.com/atlaserp/procurement/internal/infrastructure/persistence/sqlite"
)

// BudgetRepository implements port.BudgetRepository
type BudgetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *sql.DB, logger *zap.Logger) port.BudgetRepository {
	return &BudgetRepository{
		db:     db,
		logger: logger,
	}
}

const budgetColumns = `
	id, requisition_id, supplier_name, supplier_tax_id, supplier_contact,
	quote_number, quote_date, validity_date, payment_terms, lead_time_days,
	total_value, status, rejection_reason, created_by,
	approved_by, approved_by_requester, approved_at, rejected_by, rejected_at,
	expected_delivery_date, actual_delivery_date, delivery_status,
	requester_confirmed, requester_confirmed_at,
	buyer_confirmed, buyer_confirmed_at,
	created_at, updated_at
`

// Create inserts the budget and its line items.
func (r *BudgetRepository) Create(ctx context.Context, budget *entity.Budget) error {
	query := `
		INSERT INTO budgets (
			requisition_id, supplier_name, supplier_tax_id, supplier_contact,
			quote_number, quote_date, validity_date, payment_terms,
			lead_time_days, total_value, status, delivery_status, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	result, err := ex.ExecContext(ctx, query,
		budget.RequisitionID,
		budget.SupplierName,
		budget.SupplierTaxID,
		budget.SupplierContact,
		budget.QuoteNumber,
		budget.QuoteDate,
		budget.ValidityDate,
		budget.PaymentTerms,
		budget.LeadTimeDays,
		budget.TotalValue,
		budget.Status,
		budget.DeliveryStatus,
		budget.CreatedBy,
	)
	if err != nil {
		r.logger.Error("Failed to create budget", zap.Error(err))
		return fmt.Errorf("failed to create budget: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	budget.ID = id

	for _, li := range budget.LineItems {
		li.BudgetID = id
		if err := r.insertLineItem(ctx, ex, li); err != nil {
			return err
		}
	}
	return nil
}

// GetByID loads a budget with its line items. Returns (nil, nil) when no row
// exists.
func (r *BudgetRepository) GetByID(ctx context.Context, id int64) (*entity.Budget, error) {
	ex := sqlite.ExecutorFor(ctx, r.db)

	row := ex.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	budget, err := scanBudget(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get budget by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	items, err := r.lineItems(ctx, ex, id)
	if err != nil {
		return nil, err
	}
	budget.LineItems = items
	return budget, nil
}

// GetByRequisitionID returns all budgets for a requisition, oldest first,
// without line items.
func (r *BudgetRepository) GetByRequisitionID(ctx context.Context, requisitionID int64) ([]*entity.Budget, error) {
	ex := sqlite.ExecutorFor(ctx, r.db)

	rows, err := ex.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE requisition_id = ? ORDER BY created_at ASC`, requisitionID)
	if err != nil {
		r.logger.Error("Failed to get budgets by requisition", zap.Int64("requisition_id", requisitionID), zap.Error(err))
		return nil, fmt.Errorf("failed to get budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*entity.Budget
	for rows.Next() {
		budget, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// UpdateQuote updates the supplier/quote fields of a budget. The write is
// preconditioned on expectedStatus so a quote cannot be edited under a
// concurrent approval; a zero-row update reports false.
func (r *BudgetRepository) UpdateQuote(ctx context.Context, budget *entity.Budget, expectedStatus string) (bool, error) {
	query := `
		UPDATE budgets
		SET supplier_name = ?, supplier_tax_id = ?, supplier_contact = ?,
			quote_number = ?, quote_date = ?, validity_date = ?,
			payment_terms = ?, lead_time_days = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	result, err := ex.ExecContext(ctx, query,
		budget.SupplierName,
		budget.SupplierTaxID,
		budget.SupplierContact,
		budget.QuoteNumber,
		budget.QuoteDate,
		budget.ValidityDate,
		budget.PaymentTerms,
		budget.LeadTimeDays,
		budget.ID,
		expectedStatus,
	)
	if err != nil {
		r.logger.Error("Failed to update budget quote", zap.Int64("id", budget.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update budget: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// ReplaceLineItems swaps the full line item set and stores the recomputed
// total.
func (r *BudgetRepository) ReplaceLineItems(ctx context.Context, budgetID int64, items []*entity.BudgetLineItem, total decimal.Decimal) error {
	ex := sqlite.ExecutorFor(ctx, r.db)

	if _, err := ex.ExecContext(ctx, `DELETE FROM budget_line_items WHERE budget_id = ?`, budgetID); err != nil {
		r.logger.Error("Failed to clear budget line items", zap.Int64("budget_id", budgetID), zap.Error(err))
		return fmt.Errorf("failed to clear budget line items: %w", err)
	}

	for _, li := range items {
		li.BudgetID = budgetID
		if err := r.insertLineItem(ctx, ex, li); err != nil {
			return err
		}
	}

	query := `UPDATE budgets SET total_value = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := ex.ExecContext(ctx, query, total, budgetID); err != nil {
		r.logger.Error("Failed to update budget total", zap.Int64("budget_id", budgetID), zap.Error(err))
		return fmt.Errorf("failed to update budget total: %w", err)
	}
	return nil
}

// UpdateStatus writes the new status only if the row still holds
// expectedStatus.
func (r *BudgetRepository) UpdateStatus(ctx context.Context, id int64, expectedStatus, newStatus string) (bool, error) {
	query := `
		UPDATE budgets
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	result, err := ex.ExecContext(ctx, query, newStatus, id, expectedStatus)
	if err != nil {
		r.logger.Error("Failed to update budget status", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// SetApproval records who signed the approval and when.
func (r *BudgetRepository) SetApproval(ctx context.Context, id int64, approvedBy string, byRequester bool, at time.Time) error {
	query := `
		UPDATE budgets
		SET approved_by = ?, approved_by_requester = ?, approved_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	if _, err := ex.ExecContext(ctx, query, approvedBy, byRequester, at, id); err != nil {
		r.logger.Error("Failed to set approval", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set approval: %w", err)
	}
	return nil
}

// SetRejection records who rejected, the verbatim reason, and when.
func (r *BudgetRepository) SetRejection(ctx context.Context, id int64, rejectedBy string, reason string, at time.Time) error {
	query := `
		UPDATE budgets
		SET rejected_by = ?, rejection_reason = ?, rejected_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	if _, err := ex.ExecContext(ctx, query, rejectedBy, reason, at, id); err != nil {
		r.logger.Error("Failed to set rejection", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set rejection: %w", err)
	}
	return nil
}

// UpdateDelivery stores the delivery sub-state of an approved budget.
func (r *BudgetRepository) UpdateDelivery(ctx context.Context, id int64, deliveryStatus string, expected, actual *time.Time) error {
	query := `
		UPDATE budgets
		SET delivery_status = ?, expected_delivery_date = ?,
			actual_delivery_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	if _, err := ex.ExecContext(ctx, query, deliveryStatus, expected, actual, id); err != nil {
		r.logger.Error("Failed to update delivery", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update delivery: %w", err)
	}
	return nil
}

// SetRequesterConfirmed stamps the requester side of the delivery handshake.
// The timestamp is written only once; re-confirming never overwrites it.
func (r *BudgetRepository) SetRequesterConfirmed(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE budgets
		SET requester_confirmed = 1, requester_confirmed_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND requester_confirmed = 0
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	if _, err := ex.ExecContext(ctx, query, at, id); err != nil {
		r.logger.Error("Failed to confirm delivery (requester)", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to confirm delivery: %w", err)
	}
	return nil
}

// SetBuyerConfirmed stamps the buyer side of the delivery handshake.
func (r *BudgetRepository) SetBuyerConfirmed(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE budgets
		SET buyer_confirmed = 1, buyer_confirmed_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND buyer_confirmed = 0
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	if _, err := ex.ExecContext(ctx, query, at, id); err != nil {
		r.logger.Error("Failed to confirm delivery (buyer)", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to confirm delivery: %w", err)
	}
	return nil
}

func (r *BudgetRepository) insertLineItem(ctx context.Context, ex sqlite.Executor, li *entity.BudgetLineItem) error {
	query := `
		INSERT INTO budget_line_items (
			budget_id, requisition_line_item_id, description, quantity,
			unit, unit_price, line_total
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := ex.ExecContext(ctx, query,
		li.BudgetID,
		li.RequisitionLineItemID,
		li.Description,
		li.Quantity,
		li.Unit,
		li.UnitPrice,
		li.LineTotal,
	)
	if err != nil {
		r.logger.Error("Failed to insert budget line item", zap.Int64("budget_id", li.BudgetID), zap.Error(err))
		return fmt.Errorf("failed to insert budget line item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	li.ID = id
	return nil
}

func (r *BudgetRepository) lineItems(ctx context.Context, ex sqlite.Executor, budgetID int64) ([]*entity.BudgetLineItem, error) {
	query := `
		SELECT id, budget_id, requisition_line_item_id, description,
			quantity, unit, unit_price, line_total, created_at
		FROM budget_line_items
		WHERE budget_id = ?
		ORDER BY id ASC
	`

	rows, err := ex.QueryContext(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get budget line items: %w", err)
	}
	defer rows.Close()

	var items []*entity.BudgetLineItem
	for rows.Next() {
		var li entity.BudgetLineItem
		err := rows.Scan(
			&li.ID,
			&li.BudgetID,
			&li.RequisitionLineItemID,
			&li.Description,
			&li.Quantity,
			&li.Unit,
			&li.UnitPrice,
			&li.LineTotal,
			&li.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget line item: %w", err)
		}
		items = append(items, &li)
	}
	return items, rows.Err()
}

// scanBudget maps one budgets row. The scan argument order must match
// budgetColumns.
func scanBudget(scan func(dest ...interface{}) error) (*entity.Budget, error) {
	var b entity.Budget
	var quoteDate, validityDate, approvedAt, rejectedAt sql.NullTime
	var expectedDelivery, actualDelivery sql.NullTime
	var requesterConfirmedAt, buyerConfirmedAt sql.NullTime
	var rejectionReason, approvedBy, rejectedBy sql.NullString

	err := scan(
		&b.ID,
		&b.RequisitionID,
		&b.SupplierName,
		&b.SupplierTaxID,
		&b.SupplierContact,
		&b.QuoteNumber,
		&quoteDate,
		&validityDate,
		&b.PaymentTerms,
		&b.LeadTimeDays,
		&b.TotalValue,
		&b.Status,
		&rejectionReason,
		&b.CreatedBy,
		&approvedBy,
		&b.ApprovedByRequester,
		&approvedAt,
		&rejectedBy,
		&rejectedAt,
		&expectedDelivery,
		&actualDelivery,
		&b.DeliveryStatus,
		&b.RequesterConfirmed,
		&requesterConfirmedAt,
		&b.BuyerConfirmed,
		&buyerConfirmedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if quoteDate.Valid {
		b.QuoteDate = &quoteDate.Time
	}
	if validityDate.Valid {
		b.ValidityDate = &validityDate.Time
	}
	if rejectionReason.Valid {
		b.RejectionReason = rejectionReason.String
	}
	if approvedBy.Valid {
		b.ApprovedBy = approvedBy.String
	}
	if approvedAt.Valid {
		b.ApprovedAt = &approvedAt.Time
	}
	if rejectedBy.Valid {
		b.RejectedBy = rejectedBy.String
	}
	if rejectedAt.Valid {
		b.RejectedAt = &rejectedAt.Time
	}
	if expectedDelivery.Valid {
		b.ExpectedDeliveryDate = &expectedDelivery.Time
	}
	if actualDelivery.Valid {
		b.ActualDeliveryDate = &actualDelivery.Time
	}
	if requesterConfirmedAt.Valid {
		b.RequesterConfirmedAt = &requesterConfirmedAt.Time
	}
	if buyerConfirmedAt.Valid {
		b.BuyerConfirmedAt = &buyerConfirmedAt.Time
	}
	return &b, nil
}
