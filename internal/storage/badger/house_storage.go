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

// HouseStorage implements the HouseStorage interface for Badger
type HouseStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewHouseStorage creates a new HouseStorage instance
func NewHouseStorage(db *BadgerDB, logger arbor.ILogger) interfaces.HouseStorage {
	return &HouseStorage{
		db:     db,
		logger: logger,
	}
}

func (s *HouseStorage) SaveHouse(ctx context.Context, house *models.House) error {
	if house.ID == "" {
		return fmt.Errorf("house ID is required")
	}

	now := time.Now()
	if house.CreatedAt.IsZero() {
		house.CreatedAt = now
	}
	house.UpdatedAt = now

	if err := s.db.Store().Upsert(house.ID, house); err != nil {
		return fmt.Errorf("failed to save house: %w", err)
	}
	return nil
}

func (s *HouseStorage) GetHouse(ctx context.Context, id string) (*models.House, error) {
	var house models.House
	if err := s.db.Store().Get(id, &house); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("house not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get house: %w", err)
	}
	return &house, nil
}

func (s *HouseStorage) ListHouses(ctx context.Context, userID string) ([]*models.House, error) {
	var houses []models.House
	query := badgerhold.Where("UserID").Eq(userID).SortBy("CreatedAt")
	if err := s.db.Store().Find(&houses, query); err != nil {
		return nil, fmt.Errorf("failed to list houses: %w", err)
	}

	result := make([]*models.House, len(houses))
	for i := range houses {
		result[i] = &houses[i]
	}
	return result, nil
}

func (s *HouseStorage) DeleteHouse(ctx context.Context, id string) error {
	// Remove the house's rooms first so no orphans remain
	if err := s.db.Store().DeleteMatching(&models.Room{}, badgerhold.Where("HouseID").Eq(id)); err != nil {
		return fmt.Errorf("failed to delete rooms for house %s: %w", id, err)
	}
	if err := s.db.Store().Delete(id, &models.House{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("house not found: %s", id)
		}
		return fmt.Errorf("failed to delete house: %w", err)
	}
	return nil
}

func (s *HouseStorage) SaveRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		return fmt.Errorf("room ID is required")
	}
	if room.HouseID == "" {
		return fmt.Errorf("room requires a house ID")
	}

	now := time.Now()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now

	if err := s.db.Store().Upsert(room.ID, room); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

func (s *HouseStorage) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := s.db.Store().Get(id, &room); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("room not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

func (s *HouseStorage) GetRoomsByHouse(ctx context.Context, houseID string) ([]*models.Room, error) {
	var rooms []models.Room
	query := badgerhold.Where("HouseID").Eq(houseID).SortBy("CreatedAt")
	if err := s.db.Store().Find(&rooms, query); err != nil {
		return nil, fmt.Errorf("failed to get rooms for house %s: %w", houseID, err)
	}

	result := make([]*models.Room, len(rooms))
	for i := range rooms {
		result[i] = &rooms[i]
	}
	return result, nil
}

func (s *HouseStorage) DeleteRoom(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Room{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("room not found: %s", id)
		}
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}
