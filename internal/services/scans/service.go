package scans

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/InonELGABSI/housescanner/internal/common"
	"github.com/InonELGABSI/housescanner/internal/interfaces"
	"github.com/InonELGABSI/housescanner/internal/models"
)

// JobTypeScan identifies scan jobs on the queue.
const JobTypeScan = "scan"

// Service manages the scan lifecycle: creation, enqueueing, and queries.
type Service struct {
	scans    interfaces.ScanStorage
	houses   interfaces.HouseStorage
	queueMgr interfaces.QueueManager
	logger   arbor.ILogger
}

// NewService creates a new scan service
func NewService(scans interfaces.ScanStorage, houses interfaces.HouseStorage, queueMgr interfaces.QueueManager, logger arbor.ILogger) *Service {
	return &Service{
		scans:    scans,
		houses:   houses,
		queueMgr: queueMgr,
		logger:   logger,
	}
}

// CreateScan persists a pending scan for a house and enqueues it for
// processing.
func (s *Service) CreateScan(ctx context.Context, userID, houseID string) (*models.Scan, error) {
	house, err := s.houses.GetHouse(ctx, houseID)
	if err != nil {
		return nil, err
	}
	if house.UserID != userID {
		return nil, fmt.Errorf("house %s does not belong to user %s", houseID, userID)
	}

	rooms, err := s.houses.GetRoomsByHouse(ctx, houseID)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, fmt.Errorf("house %s has no rooms to scan", houseID)
	}

	scan := &models.Scan{
		ID:      common.NewScanID(),
		HouseID: houseID,
		UserID:  userID,
		Status:  models.ScanStatusPending,
	}
	if err := s.scans.SaveScan(ctx, scan); err != nil {
		return nil, err
	}

	job := &models.ScanJob{ScanID: scan.ID, UserID: userID}
	payload, err := job.ToJSON()
	if err != nil {
		return nil, err
	}

	msg := interfaces.Message{
		JobID:   scan.ID,
		Type:    JobTypeScan,
		Payload: payload,
	}
	if err := s.queueMgr.Enqueue(ctx, msg); err != nil {
		// The scan row stays pending; the maintenance sweep will re-enqueue it
		return nil, fmt.Errorf("failed to enqueue scan %s: %w", scan.ID, err)
	}

	s.logger.Info().
		Str("scan_id", scan.ID).
		Str("house_id", houseID).
		Int("rooms", len(rooms)).
		Msg("Scan created and enqueued")

	return scan, nil
}

// GetScan returns one scan by ID
func (s *Service) GetScan(ctx context.Context, id string) (*models.Scan, error) {
	return s.scans.GetScan(ctx, id)
}

// ListScans returns all scans for a house, newest first
func (s *Service) ListScans(ctx context.Context, houseID string) ([]*models.Scan, error) {
	return s.scans.ListScans(ctx, houseID)
}

// GetRoomResults returns the per-room findings for a completed scan
func (s *Service) GetRoomResults(ctx context.Context, scanID string) ([]*models.RoomResult, error) {
	return s.scans.GetRoomResults(ctx, scanID)
}

// CancelScan cancels a scan that has not started processing yet.
func (s *Service) CancelScan(ctx context.Context, id string) error {
	scan, err := s.scans.GetScan(ctx, id)
	if err != nil {
		return err
	}
	if scan.Status != models.ScanStatusPending {
		return fmt.Errorf("scan %s is %s, only pending scans can be cancelled", id, scan.Status)
	}
	return s.scans.UpdateScanStatus(ctx, id, models.ScanStatusCancelled, "")
}
