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

// HistoryRepository implements port.HistoryRepository. The table is
// append-only; there are no update or delete statements here.
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a history entry.
func (r *HistoryRepository) Create(ctx context.Context, entry *entity.HistoryEntry) error {
	query := `
		INSERT INTO requisition_history (requisition_id, actor_id, previous_status, new_status, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	result, err := ex.ExecContext(ctx, query,
		entry.RequisitionID,
		entry.ActorID,
		entry.PreviousStatus,
		entry.NewStatus,
		entry.Note,
		entry.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create history entry",
			zap.Int64("requisition_id", entry.RequisitionID),
			zap.Error(err))
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id
	return nil
}

// GetByRequisitionID returns the trail ordered oldest first. The id
// tiebreak keeps same-timestamp entries in insertion order.
func (r *HistoryRepository) GetByRequisitionID(ctx context.Context, requisitionID int64) ([]*entity.HistoryEntry, error) {
	query := `
		SELECT id, requisition_id, actor_id, previous_status, new_status, note, created_at
		FROM requisition_history
		WHERE requisition_id = ?
		ORDER BY created_at ASC, id ASC
	`

	ex := sqlite.ExecutorFor(ctx, r.db)
	rows, err := ex.QueryContext(ctx, query, requisitionID)
	if err != nil {
		r.logger.Error("Failed to list history",
			zap.Int64("requisition_id", requisitionID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.HistoryEntry
	for rows.Next() {
		var e entity.HistoryEntry
		err := rows.Scan(
			&e.ID,
			&e.RequisitionID,
			&e.ActorID,
			&e.PreviousStatus,
			&e.NewStatus,
			&e.Note,
			&e.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
