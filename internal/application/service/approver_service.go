package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	"github.com/atlaserp/procurement/internal/domain/entity"
)

// ApproverService manages approval bands. All operations are admin-only; the
// bands themselves are consumed per call by ApprovalAuthority, so changes
// take effect on the next transition.
type ApproverService struct {
	approvers port.ApproverRepository
	authority *ApprovalAuthority
	logger    *zap.Logger
}

// NewApproverService creates a new ApproverService
func NewApproverService(approvers port.ApproverRepository, auth *ApprovalAuthority, logger *zap.Logger) *ApproverService {
	return &ApproverService{
		approvers: approvers,
		authority: auth,
		logger:    logger,
	}
}

// Create registers an approval band for a user. One band per user.
func (s *ApproverService) Create(ctx context.Context, actorID string, in ApproverInput) (*entity.Approver, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	existing, err := s.approvers.GetByUserID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, conflictf("user %s already has an approval band", in.UserID)
	}

	approver := &entity.Approver{
		UserID:        in.UserID,
		ApprovalLevel: in.ApprovalLevel,
		MinValue:      in.MinValue,
		MaxValue:      in.MaxValue,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
	if err := s.approvers.Create(ctx, approver); err != nil {
		s.logger.Error("Failed to create approver", zap.String("user_id", in.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Approver created",
		zap.Int64("id", approver.ID),
		zap.String("user_id", approver.UserID),
		zap.Int("approval_level", approver.ApprovalLevel))
	return approver, nil
}

// List returns all approval bands, ordered by level.
func (s *ApproverService) List(ctx context.Context, actorID string) ([]*entity.Approver, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.approvers.List(ctx)
}

// SetActive enables or disables an approval band without deleting its
// history.
func (s *ApproverService) SetActive(ctx context.Context, actorID string, id int64, active bool) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if err := s.approvers.SetActive(ctx, id, active); err != nil {
		s.logger.Error("Failed to set approver active flag", zap.Int64("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("Approver active flag set", zap.Int64("id", id), zap.Bool("active", active))
	return nil
}

func (s *ApproverService) requireAdmin(ctx context.Context, actorID string) error {
	admin, err := s.authority.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return preconditionf("only an admin may manage approvers")
	}
	return nil
}
