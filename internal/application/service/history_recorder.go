package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	"github.com/atlaserp/procurement/internal/domain/entity"
)

// HistoryRecorder appends to the requisition audit trail. It is shared by
// both workflows; Record is called inside the same transaction as the status
// write so a failed append rolls the transition back.
type HistoryRecorder struct {
	repo   port.HistoryRepository
	logger *zap.Logger
}

// NewHistoryRecorder creates a new HistoryRecorder
func NewHistoryRecorder(repo port.HistoryRepository, logger *zap.Logger) *HistoryRecorder {
	return &HistoryRecorder{
		repo:   repo,
		logger: logger,
	}
}

// Record appends one immutable entry.
func (h *HistoryRecorder) Record(ctx context.Context, requisitionID int64, actorID, previousStatus, newStatus, note string) error {
	entry := &entity.HistoryEntry{
		RequisitionID:  requisitionID,
		ActorID:        actorID,
		PreviousStatus: previousStatus,
		NewStatus:      newStatus,
		Note:           note,
		Timestamp:      time.Now(),
	}
	return h.repo.Create(ctx, entry)
}

// ListFor returns the full trail for a requisition, oldest first. Each call
// re-queries; it is not a live stream.
func (h *HistoryRecorder) ListFor(ctx context.Context, requisitionID int64) ([]*entity.HistoryEntry, error) {
	entries, err := h.repo.GetByRequisitionID(ctx, requisitionID)
	if err != nil {
		h.logger.Error("Failed to list history", zap.Int64("requisition_id", requisitionID), zap.Error(err))
		return nil, err
	}
	return entries, nil
}
