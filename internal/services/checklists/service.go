package checklists

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/InonELGABSI/housescanner/internal/common"
	"github.com/InonELGABSI/housescanner/internal/interfaces"
	"github.com/InonELGABSI/housescanner/internal/models"
)

// MergedChecklists holds the three effective documents sent to the analysis
// service. Merged documents are computed fresh per scan and never persisted.
type MergedChecklists struct {
	House    models.ChecklistDocument
	Rooms    models.ChecklistDocument
	Products models.ChecklistDocument
}

// Service manages base and override checklists and computes merged documents
type Service struct {
	storage interfaces.ChecklistStorage
	logger  arbor.ILogger
}

// NewService creates a new checklist service
func NewService(storage interfaces.ChecklistStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// SaveBase creates or replaces the system base checklist for a scope
func (s *Service) SaveBase(ctx context.Context, scope models.Scope, doc models.ChecklistDocument) (*models.Checklist, error) {
	existing, err := s.storage.GetBaseChecklist(ctx, scope)
	if err != nil {
		return nil, err
	}

	checklist := &models.Checklist{
		Scope:    scope,
		IsBase:   true,
		Document: doc,
	}
	if existing != nil {
		checklist.ID = existing.ID
		checklist.Version = existing.Version + 1
		checklist.CreatedAt = existing.CreatedAt
	} else {
		checklist.ID = common.NewChecklistID()
		checklist.Version = 1
	}

	if err := s.storage.SaveChecklist(ctx, checklist); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("checklist_id", checklist.ID).
		Str("scope", string(scope)).
		Int("version", checklist.Version).
		Msg("Base checklist saved")

	return checklist, nil
}

// SaveOverride appends a new override version for a user and scope. Each save
// creates a fresh version so the merge fold stays reproducible.
func (s *Service) SaveOverride(ctx context.Context, userID string, scope models.Scope, doc models.ChecklistDocument) (*models.Checklist, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required for override checklists")
	}

	overrides, err := s.storage.GetOverrides(ctx, userID, scope)
	if err != nil {
		return nil, err
	}

	version := 1
	if len(overrides) > 0 {
		version = overrides[len(overrides)-1].Version + 1
	}

	checklist := &models.Checklist{
		ID:       common.NewChecklistID(),
		Scope:    scope,
		UserID:   userID,
		IsBase:   false,
		Version:  version,
		Document: doc,
	}

	if err := s.storage.SaveChecklist(ctx, checklist); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("checklist_id", checklist.ID).
		Str("user_id", userID).
		Str("scope", string(scope)).
		Int("version", version).
		Msg("Override checklist saved")

	return checklist, nil
}

// Get returns one checklist by ID
func (s *Service) Get(ctx context.Context, id string) (*models.Checklist, error) {
	return s.storage.GetChecklist(ctx, id)
}

// List returns a user's checklists
func (s *Service) List(ctx context.Context, userID string) ([]*models.Checklist, error) {
	return s.storage.ListChecklists(ctx, userID)
}

// Delete removes a checklist by ID
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.storage.DeleteChecklist(ctx, id)
}

// MergedForScope computes the effective checklist for one user and scope:
// the base document (empty when no base exists) with the user's overrides
// folded on in version order.
func (s *Service) MergedForScope(ctx context.Context, userID string, scope models.Scope) (models.ChecklistDocument, error) {
	var base models.ChecklistDocument

	baseChecklist, err := s.storage.GetBaseChecklist(ctx, scope)
	if err != nil {
		return base, fmt.Errorf("failed to load base checklist for scope %s: %w", scope, err)
	}
	if baseChecklist != nil {
		base = baseChecklist.Document
	}

	overrideChecklists, err := s.storage.GetOverrides(ctx, userID, scope)
	if err != nil {
		return base, fmt.Errorf("failed to load overrides for scope %s: %w", scope, err)
	}

	overrides := make([]models.ChecklistDocument, len(overrideChecklists))
	for i, c := range overrideChecklists {
		overrides[i] = c.Document
	}

	merged := Merge(base, overrides)

	s.logger.Debug().
		Str("user_id", userID).
		Str("scope", string(scope)).
		Int("overrides", len(overrides)).
		Msg("Merged checklist computed")

	return merged, nil
}

// MergedForUser computes the three per-scope merged documents used to build
// an analysis request.
func (s *Service) MergedForUser(ctx context.Context, userID string) (*MergedChecklists, error) {
	house, err := s.MergedForScope(ctx, userID, models.ScopeHouse)
	if err != nil {
		return nil, err
	}
	rooms, err := s.MergedForScope(ctx, userID, models.ScopeRoom)
	if err != nil {
		return nil, err
	}
	products, err := s.MergedForScope(ctx, userID, models.ScopeProduct)
	if err != nil {
		return nil, err
	}

	return &MergedChecklists{
		House:    house,
		Rooms:    rooms,
		Products: products,
	}, nil
}
