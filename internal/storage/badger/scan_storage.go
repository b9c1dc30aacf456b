package badger

import (
	"context"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/InonELGABSI/housescanner/internal/interfaces"
	"github.com/InonELGABSI/housescanner/internal/models"
)

// ScanStorage implements the ScanStorage interface for Badger
type ScanStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewScanStorage creates a new ScanStorage instance
func NewScanStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ScanStorage {
	return &ScanStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ScanStorage) SaveScan(ctx context.Context, scan *models.Scan) error {
	if scan.ID == "" {
		return fmt.Errorf("scan ID is required")
	}

	if scan.CreatedAt.IsZero() {
		scan.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(scan.ID, scan); err != nil {
		return fmt.Errorf("failed to save scan: %w", err)
	}
	return nil
}

func (s *ScanStorage) GetScan(ctx context.Context, id string) (*models.Scan, error) {
	var scan models.Scan
	if err := s.db.Store().Get(id, &scan); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("scan not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	return &scan, nil
}

func (s *ScanStorage) ListScans(ctx context.Context, houseID string) ([]*models.Scan, error) {
	var scans []models.Scan
	query := badgerhold.Where("HouseID").Eq(houseID).SortBy("CreatedAt").Reverse()
	if err := s.db.Store().Find(&scans, query); err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}

	result := make([]*models.Scan, len(scans))
	for i := range scans {
		result[i] = &scans[i]
	}
	return result, nil
}

func (s *ScanStorage) GetScansByStatus(ctx context.Context, status models.ScanStatus) ([]*models.Scan, error) {
	var scans []models.Scan
	if err := s.db.Store().Find(&scans, badgerhold.Where("Status").Eq(status)); err != nil {
		return nil, fmt.Errorf("failed to get scans by status: %w", err)
	}

	result := make([]*models.Scan, len(scans))
	for i := range scans {
		result[i] = &scans[i]
	}
	return result, nil
}

func (s *ScanStorage) UpdateScanStatus(ctx context.Context, scanID string, status models.ScanStatus, errorMsg string) error {
	var scan models.Scan
	if err := s.db.Store().Get(scanID, &scan); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("scan not found: %s", scanID)
		}
		return err
	}

	scan.Status = status
	if errorMsg != "" {
		scan.Error = errorMsg
	}

	now := time.Now()
	switch status {
	case models.ScanStatusRunning:
		scan.StartedAt = &now
		scan.Attempts++
	case models.ScanStatusCompleted, models.ScanStatusFailed, models.ScanStatusCancelled:
		scan.CompletedAt = &now
	}

	if err := s.db.Store().Upsert(scan.ID, &scan); err != nil {
		return fmt.Errorf("failed to update scan status: %w", err)
	}
	return nil
}

// SaveScanResults commits the scan row and all of its room results in a
// single Badger transaction. Either every row lands or none do.
func (s *ScanStorage) SaveScanResults(ctx context.Context, scan *models.Scan, results []*models.RoomResult) error {
	if scan.ID == "" {
		return fmt.Errorf("scan ID is required")
	}

	store := s.db.Store()
	err := store.Badger().Update(func(txn *badgerdb.Txn) error {
		if err := store.TxUpsert(txn, scan.ID, scan); err != nil {
			return fmt.Errorf("failed to save scan %s: %w", scan.ID, err)
		}
		for _, result := range results {
			if result.ScanID != scan.ID {
				return fmt.Errorf("room result %s belongs to scan %s, not %s", result.ID, result.ScanID, scan.ID)
			}
			if err := store.TxUpsert(txn, result.ID, result); err != nil {
				return fmt.Errorf("failed to save room result %s: %w", result.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save scan results: %w", err)
	}

	s.logger.Debug().
		Str("scan_id", scan.ID).
		Int("room_results", len(results)).
		Msg("Scan results committed")

	return nil
}

func (s *ScanStorage) GetRoomResults(ctx context.Context, scanID string) ([]*models.RoomResult, error) {
	var results []models.RoomResult
	if err := s.db.Store().Find(&results, badgerhold.Where("ScanID").Eq(scanID)); err != nil {
		return nil, fmt.Errorf("failed to get room results: %w", err)
	}

	out := make([]*models.RoomResult, len(results))
	for i := range results {
		out[i] = &results[i]
	}
	return out, nil
}
