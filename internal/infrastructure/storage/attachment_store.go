package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
)

// LocalAttachmentStore implements port.AttachmentStore on the local
// filesystem. Attachments are laid out as <baseDir>/<kind>/<refID>/<filename>,
// where kind is "requisition" or "budget".
type LocalAttachmentStore struct {
	baseDir string
	logger  *zap.Logger
}

var _ port.AttachmentStore = (*LocalAttachmentStore)(nil)

// NewLocalAttachmentStore creates a new LocalAttachmentStore
func NewLocalAttachmentStore(baseDir string, logger *zap.Logger) *LocalAttachmentStore {
	return &LocalAttachmentStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Save writes an attachment for the given record.
func (s *LocalAttachmentStore) Save(ctx context.Context, kind string, refID int64, filename string, content []byte) error {
	fullPath := s.fullPath(kind, refID, filename)

	if err := s.validatePath(fullPath); err != nil {
		return err
	}

	parentDir := filepath.Dir(fullPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		s.logger.Error("Failed to create attachment directory",
			zap.String("path", parentDir),
			zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write attachment",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Attachment saved",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))

	return nil
}

// Read returns an attachment's content.
func (s *LocalAttachmentStore) Read(ctx context.Context, kind string, refID int64, filename string) ([]byte, error) {
	fullPath := s.fullPath(kind, refID, filename)

	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		s.logger.Error("Failed to read attachment",
			zap.String("path", fullPath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// Exists reports whether an attachment is present for the given record.
func (s *LocalAttachmentStore) Exists(ctx context.Context, kind string, refID int64, filename string) (bool, error) {
	fullPath := s.fullPath(kind, refID, filename)

	if err := s.validatePath(fullPath); err != nil {
		return false, err
	}

	_, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return true, nil
}

func (s *LocalAttachmentStore) fullPath(kind string, refID int64, filename string) string {
	return filepath.Join(s.baseDir, kind, fmt.Sprintf("%d", refID), filename)
}

// validatePath checks that the path is safe and within baseDir
func (s *LocalAttachmentStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}

	return nil
}
