package interfaces

import (
	"context"

	"github.com/InonELGABSI/housescanner/internal/models"
)

// ChecklistStorage persists base and override checklist documents. Documents
// are validated on the way in so the merge logic never sees malformed shapes.
type ChecklistStorage interface {
	SaveChecklist(ctx context.Context, checklist *models.Checklist) error
	GetChecklist(ctx context.Context, id string) (*models.Checklist, error)
	GetBaseChecklist(ctx context.Context, scope models.Scope) (*models.Checklist, error)
	// GetOverrides returns a user's override checklists for a scope, ordered
	// by version ascending. Later versions win during the merge fold.
	GetOverrides(ctx context.Context, userID string, scope models.Scope) ([]*models.Checklist, error)
	ListChecklists(ctx context.Context, userID string) ([]*models.Checklist, error)
	DeleteChecklist(ctx context.Context, id string) error
}

// HouseStorage persists houses and their rooms.
type HouseStorage interface {
	SaveHouse(ctx context.Context, house *models.House) error
	GetHouse(ctx context.Context, id string) (*models.House, error)
	ListHouses(ctx context.Context, userID string) ([]*models.House, error)
	DeleteHouse(ctx context.Context, id string) error

	SaveRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	GetRoomsByHouse(ctx context.Context, houseID string) ([]*models.Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// ScanStorage persists scans and their per-room results.
type ScanStorage interface {
	SaveScan(ctx context.Context, scan *models.Scan) error
	GetScan(ctx context.Context, id string) (*models.Scan, error)
	ListScans(ctx context.Context, houseID string) ([]*models.Scan, error)
	GetScansByStatus(ctx context.Context, status models.ScanStatus) ([]*models.Scan, error)
	UpdateScanStatus(ctx context.Context, scanID string, status models.ScanStatus, errorMsg string) error
	// SaveScanResults writes the scan summary, its status transition, and all
	// room results in a single transaction.
	SaveScanResults(ctx context.Context, scan *models.Scan, results []*models.RoomResult) error
	GetRoomResults(ctx context.Context, scanID string) ([]*models.RoomResult, error)
}

// StorageManager aggregates the per-entity storages behind one connection.
type StorageManager interface {
	ChecklistStorage() ChecklistStorage
	HouseStorage() HouseStorage
	ScanStorage() ScanStorage
	Close() error
}
