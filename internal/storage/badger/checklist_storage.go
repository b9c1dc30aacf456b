package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/InonELGABSI/housescanner/internal/interfaces"
	"github.com/InonELGABSI/housescanner/internal/models"
)

// ChecklistStorage implements the ChecklistStorage interface for Badger.
// Documents are validated on save; malformed shapes never reach the merge.
type ChecklistStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewChecklistStorage creates a new ChecklistStorage instance
func NewChecklistStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ChecklistStorage {
	return &ChecklistStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ChecklistStorage) SaveChecklist(ctx context.Context, checklist *models.Checklist) error {
	if checklist.ID == "" {
		return fmt.Errorf("checklist ID is required")
	}
	if checklist.IsBase && checklist.UserID != "" {
		return fmt.Errorf("base checklist must not have a user ID")
	}
	if !checklist.IsBase && checklist.UserID == "" {
		return fmt.Errorf("override checklist requires a user ID")
	}

	if err := models.ValidateDocument(checklist.Scope, &checklist.Document); err != nil {
		return fmt.Errorf("checklist %s rejected: %w", checklist.ID, err)
	}

	now := time.Now()
	if checklist.CreatedAt.IsZero() {
		checklist.CreatedAt = now
	}
	checklist.UpdatedAt = now

	if err := s.db.Store().Upsert(checklist.ID, checklist); err != nil {
		return fmt.Errorf("failed to save checklist: %w", err)
	}
	return nil
}

func (s *ChecklistStorage) GetChecklist(ctx context.Context, id string) (*models.Checklist, error) {
	var checklist models.Checklist
	if err := s.db.Store().Get(id, &checklist); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("checklist not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}
	return &checklist, nil
}

func (s *ChecklistStorage) GetBaseChecklist(ctx context.Context, scope models.Scope) (*models.Checklist, error) {
	var checklists []models.Checklist
	query := badgerhold.Where("Scope").Eq(scope).And("IsBase").Eq(true)
	if err := s.db.Store().Find(&checklists, query); err != nil {
		return nil, fmt.Errorf("failed to get base checklist for scope %s: %w", scope, err)
	}
	if len(checklists) == 0 {
		return nil, nil // No base for this scope; callers merge onto an empty document
	}
	return &checklists[0], nil
}

func (s *ChecklistStorage) GetOverrides(ctx context.Context, userID string, scope models.Scope) ([]*models.Checklist, error) {
	var checklists []models.Checklist
	query := badgerhold.Where("Scope").Eq(scope).
		And("UserID").Eq(userID).
		And("IsBase").Eq(false).
		SortBy("Version")
	if err := s.db.Store().Find(&checklists, query); err != nil {
		return nil, fmt.Errorf("failed to get overrides for user %s scope %s: %w", userID, scope, err)
	}

	result := make([]*models.Checklist, len(checklists))
	for i := range checklists {
		result[i] = &checklists[i]
	}
	return result, nil
}

func (s *ChecklistStorage) ListChecklists(ctx context.Context, userID string) ([]*models.Checklist, error) {
	var checklists []models.Checklist
	query := badgerhold.Where("UserID").Eq(userID).SortBy("CreatedAt")
	if err := s.db.Store().Find(&checklists, query); err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}

	result := make([]*models.Checklist, len(checklists))
	for i := range checklists {
		result[i] = &checklists[i]
	}
	return result, nil
}

func (s *ChecklistStorage) DeleteChecklist(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Checklist{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("checklist not found: %s", id)
		}
		return fmt.Errorf("failed to delete checklist: %w", err)
	}
	return nil
}
