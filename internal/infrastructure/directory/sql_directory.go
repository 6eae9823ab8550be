package directory

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	"github.com/atlaserp/procurement/internal/domain/entity"
	"github.com/atlaserp/procurement/internal/infrastructure/persistence/sqlite"
)

// SQLDirectory resolves users against the users, approvers and buyers tables.
// Every lookup hits the database so role and band changes apply on the next
// call.
type SQLDirectory struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLDirectory creates a directory backed by the application database.
func NewSQLDirectory(db *sql.DB, logger *zap.Logger) port.UserDirectory {
	return &SQLDirectory{
		db:     db,
		logger: logger,
	}
}

// FindApproverByUserID returns the approver record for the user, or
// (nil, nil) when none exists.
func (d *SQLDirectory) FindApproverByUserID(ctx context.Context, userID string) (*entity.Approver, error) {
	query := `
		SELECT id, user_id, approval_level, min_value, max_value, is_active, created_at
		FROM approvers
		WHERE user_id = ?
	`

	ex := sqlite.ExecutorFor(ctx, d.db)

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
		d.logger.Error("Failed to look up approver", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to look up approver: %w", err)
	}
	return &a, nil
}

// FindBuyerByUserID returns the buyer record for the user, or (nil, nil)
// when none exists.
func (d *SQLDirectory) FindBuyerByUserID(ctx context.Context, userID string) (*entity.Buyer, error) {
	query := `
		SELECT id, user_id, name, is_active, created_at
		FROM buyers
		WHERE user_id = ?
	`

	ex := sqlite.ExecutorFor(ctx, d.db)

	var b entity.Buyer
	err := ex.QueryRowContext(ctx, query, userID).Scan(
		&b.ID,
		&b.UserID,
		&b.Name,
		&b.IsActive,
		&b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		d.logger.Error("Failed to look up buyer", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to look up buyer: %w", err)
	}
	return &b, nil
}

// RoleOf returns the user's role from the users table. Unknown users
// default to requester, matching the least privileged role.
func (d *SQLDirectory) RoleOf(ctx context.Context, userID string) (port.Role, error) {
	query := `SELECT role FROM users WHERE user_id = ?`

	ex := sqlite.ExecutorFor(ctx, d.db)

	var role string
	err := ex.QueryRowContext(ctx, query, userID).Scan(&role)
	if err == sql.ErrNoRows {
		return port.RoleRequester, nil
	}
	if err != nil {
		d.logger.Error("Failed to look up role", zap.String("user_id", userID), zap.Error(err))
		return "", fmt.Errorf("failed to look up role: %w", err)
	}

	switch port.Role(role) {
	case port.RoleAdmin, port.RoleBuyer, port.RoleRequester:
		return port.Role(role), nil
	default:
		d.logger.Warn("Unknown role in users table, treating as requester",
			zap.String("user_id", userID),
			zap.String("role", role))
		return port.RoleRequester, nil
	}
}
