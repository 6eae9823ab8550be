package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	"github.com/atlaserp/procurement/internal/domain/entity"
	"github.com/atlaserp/procurement/internal/infrastructure/persistence/sqlite"
)

// RequisitionRepository implements port.RequisitionRepository
type RequisitionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequisitionRepository creates a new requisition repository
func NewRequisitionRepository(db *sql.DB, logger *zap.Logger) port.RequisitionRepository {
	return &RequisitionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the requisition and its line items.
func (r *RequisitionRepository) Create(ctx context.Context, req *entity.Requisition) error {
	query := `
		INSERT INTO requisitions (
			requester_id, cost_center, description, justification,
			priority, needed_by_date, total_value, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	result, err := ex.ExecContext(ctx, query,
		req.RequesterID,
		req.CostCenter,
		req.Description,
		req.Justification,
		req.Priority,
		req.NeededByDate,
		req.TotalValue,
		req.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create requisition", zap.Error(err))
		return fmt.Errorf("failed to create requisition: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id

	for _, li := range req.LineItems {
		li.RequisitionID = id
		if err := r.insertLineItem(ctx, ex, li); err != nil {
			return err
		}
	}
	return nil
}

// GetByID loads a requisition with its line items. Returns (nil, nil) when
// no row exists.
func (r *RequisitionRepository) GetByID(ctx context.Context, id int64) (*entity.Requisition, error) {
	query := `
		SELECT id, requester_id, cost_center, description, justification,
			priority, needed_by_date, total_value, buyer_id, status,
			created_at, updated_at
		FROM requisitions
		WHERE id = ?
	`

	ex := sqlite.ExecutorFor(ctx, r.db)

	var req entity.Requisition
	var neededBy sql.NullTime
	var buyerID sql.NullString

	err := ex.QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.RequesterID,
		&req.CostCenter,
		&req.Description,
		&req.Justification,
		&req.Priority,
		&neededBy,
		&req.TotalValue,
		&buyerID,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get requisition by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get requisition: %w", err)
	}

	if neededBy.Valid {
		req.NeededByDate = &neededBy.Time
	}
	if buyerID.Valid {
		req.BuyerID = &buyerID.String
	}

	items, err := r.lineItems(ctx, ex, id)
	if err != nil {
		return nil, err
	}
	req.LineItems = items

	return &req, nil
}

// ReplaceLineItems swaps the full line item set and stores the recomputed
// total. The total write is preconditioned on expectedStatus; a zero-row
// update means a concurrent writer moved the requisition and the caller
// must roll back.
func (r *RequisitionRepository) ReplaceLineItems(ctx context.Context, requisitionID int64, items []*entity.RequisitionLineItem, total decimal.Decimal, expectedStatus string) (bool, error) {
	ex := sqlite.ExecutorFor(ctx, r.db)

	if _, err := ex.ExecContext(ctx, `DELETE FROM requisition_line_items WHERE requisition_id = ?`, requisitionID); err != nil {
		r.logger.Error("Failed to clear line items", zap.Int64("requisition_id", requisitionID), zap.Error(err))
		return false, fmt.Errorf("failed to clear line items: %w", err)
	}

	for _, li := range items {
		li.RequisitionID = requisitionID
		if err := r.insertLineItem(ctx, ex, li); err != nil {
			return false, err
		}
	}

	query := `UPDATE requisitions SET total_value = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`
	result, err := ex.ExecContext(ctx, query, total, requisitionID, expectedStatus)
	if err != nil {
		r.logger.Error("Failed to update total", zap.Int64("requisition_id", requisitionID), zap.Error(err))
		return false, fmt.Errorf("failed to update total: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// UpdateStatus writes the new status only if the row still holds
// expectedStatus. A zero-row update on an existing row signals that a
// concurrent writer won.
func (r *RequisitionRepository) UpdateStatus(ctx context.Context, id int64, expectedStatus, newStatus string) (bool, error) {
	query := `
		UPDATE requisitions
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	result, err := ex.ExecContext(ctx, query, newStatus, id, expectedStatus)
	if err != nil {
		r.logger.Error("Failed to update requisition status", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// SetBuyer assigns the buyer for quotation sourcing.
func (r *RequisitionRepository) SetBuyer(ctx context.Context, id int64, buyerID string) error {
	query := `UPDATE requisitions SET buyer_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	ex := sqlite.ExecutorFor(ctx, r.db)
	if _, err := ex.ExecContext(ctx, query, buyerID, id); err != nil {
		r.logger.Error("Failed to set buyer", zap.Int64("id", id), zap.String("buyer_id", buyerID), zap.Error(err))
		return fmt.Errorf("failed to set buyer: %w", err)
	}
	return nil
}

// List returns requisitions without their line items, newest first.
func (r *RequisitionRepository) List(ctx context.Context, limit, offset int) ([]*entity.Requisition, error) {
	query := `
		SELECT id, requester_id, cost_center, description, justification,
			priority, needed_by_date, total_value, buyer_id, status,
			created_at, updated_at
		FROM requisitions
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	rows, err := ex.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list requisitions", zap.Error(err))
		return nil, fmt.Errorf("failed to list requisitions: %w", err)
	}
	defer rows.Close()

	var reqs []*entity.Requisition
	for rows.Next() {
		var req entity.Requisition
		var neededBy sql.NullTime
		var buyerID sql.NullString
		err := rows.Scan(
			&req.ID,
			&req.RequesterID,
			&req.CostCenter,
			&req.Description,
			&req.Justification,
			&req.Priority,
			&neededBy,
			&req.TotalValue,
			&buyerID,
			&req.Status,
			&req.CreatedAt,
			&req.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan requisition: %w", err)
		}
		if neededBy.Valid {
			req.NeededByDate = &neededBy.Time
		}
		if buyerID.Valid {
			req.BuyerID = &buyerID.String
		}
		reqs = append(reqs, &req)
	}
	return reqs, rows.Err()
}

func (r *RequisitionRepository) insertLineItem(ctx context.Context, ex sqlite.Executor, li *entity.RequisitionLineItem) error {
	query := `
		INSERT INTO requisition_line_items (
			requisition_id, item_number, description, quantity, unit,
			unit_price, line_total
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := ex.ExecContext(ctx, query,
		li.RequisitionID,
		li.ItemNumber,
		li.Description,
		li.Quantity,
		li.Unit,
		li.UnitPrice,
		li.LineTotal,
	)
	if err != nil {
		r.logger.Error("Failed to insert line item", zap.Int64("requisition_id", li.RequisitionID), zap.Error(err))
		return fmt.Errorf("failed to insert line item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	li.ID = id
	return nil
}

func (r *RequisitionRepository) lineItems(ctx context.Context, ex sqlite.Executor, requisitionID int64) ([]*entity.RequisitionLineItem, error) {
	query := `
		SELECT id, requisition_id, item_number, description, quantity,
			unit, unit_price, line_total, created_at
		FROM requisition_line_items
		WHERE requisition_id = ?
		ORDER BY item_number ASC
	`

	rows, err := ex.QueryContext(ctx, query, requisitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	var items []*entity.RequisitionLineItem
	for rows.Next() {
		var li entity.RequisitionLineItem
		err := rows.Scan(
			&li.ID,
			&li.RequisitionID,
			&li.ItemNumber,
			&li.Description,
			&li.Quantity,
			&li.Unit,
			&li.UnitPrice,
			&li.LineTotal,
			&li.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, &li)
	}
	return items, rows.Err()
}
