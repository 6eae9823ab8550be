package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	"github.com/atlaserp/procurement/internal/domain/entity"
	"github.com/atlaserp/procurement/internal/infrastructure/persistence/sqlite"
)

// ApproverRepository implements port.ApproverRepository
type ApproverRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApproverRepository creates a new approver repository
func NewApproverRepository(db *sql.DB, logger *zap.Logger) port.ApproverRepository {
	return &ApproverRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new approver record. user_id is unique: one band per user.
func (r *ApproverRepository) Create(ctx context.Context, approver *entity.Approver) error {
	if approver.MinValue.Cmp(approver.MaxValue) > 0 {
		return fmt.Errorf("approver band is inverted: min %s > max %s", approver.MinValue, approver.MaxValue)
	}

	query := `
		INSERT INTO approvers (user_id, approval_level, min_value, max_value, is_active)
		VALUES (?, ?, ?, ?, ?)
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	result, err := ex.ExecContext(ctx, query,
		approver.UserID,
		approver.ApprovalLevel,
		approver.MinValue,
		approver.MaxValue,
		approver.IsActive,
	)
	if err != nil {
		r.logger.Error("Failed to create approver", zap.String("user_id", approver.UserID), zap.Error(err))
		return fmt.Errorf("failed to create approver: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	approver.ID = id
	return nil
}

// GetByUserID retrieves an approver by user id. Returns (nil, nil) when the
// user has no approver record.
func (r *ApproverRepository) GetByUserID(ctx context.Context, userID string) (*entity.Approver, error) {
	query := `
		SELECT id, user_id, approval_level, min_value, max_value, is_active, created_at
		FROM approvers
		WHERE user_id = ?
	`

	ex := sqlite.ExecutorFor(ctx, r.db)

	var a entity.Approver
	err := ex.QueryRowContext(ctx, query, userID).Scan(
		&a.ID,
		&a.UserID,
		&a.ApprovalLevel,
		&a.MinValue,
		&a.MaxValue,
		&a.IsActive,
		&a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get approver", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get approver: %w", err)
	}
	return &a, nil
}

// List returns all approvers ordered by approval level.
func (r *ApproverRepository) List(ctx context.Context) ([]*entity.Approver, error) {
	query := `
		SELECT id, user_id, approval_level, min_value, max_value, is_active, created_at
		FROM approvers
		ORDER BY approval_level ASC, user_id ASC
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	rows, err := ex.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list approvers", zap.Error(err))
		return nil, fmt.Errorf("failed to list approvers: %w", err)
	}
	defer rows.Close()

	var approvers []*entity.Approver
	for rows.Next() {
		var a entity.Approver
		err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.ApprovalLevel,
			&a.MinValue,
			&a.MaxValue,
			&a.IsActive,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approver: %w", err)
		}
		approvers = append(approvers, &a)
	}
	return approvers, rows.Err()
}

// SetActive toggles an approver's active flag.
func (r *ApproverRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE approvers SET is_active = ? WHERE id = ?`

	ex := sqlite.ExecutorFor(ctx, r.db)
	if _, err := ex.ExecContext(ctx, query, active, id); err != nil {
		r.logger.Error("Failed to set approver active flag", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set approver active flag: %w", err)
	}
	return nil
}
