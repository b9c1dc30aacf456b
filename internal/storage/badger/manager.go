package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/InonELGABSI/housescanner/internal/common"
	"github.com/InonELGABSI/housescanner/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db        *BadgerDB
	checklist interfaces.ChecklistStorage
	house     interfaces.HouseStorage
	scan      interfaces.ScanStorage
	logger    arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:        db,
		checklist: NewChecklistStorage(db, logger),
		house:     NewHouseStorage(db, logger),
		scan:      NewScanStorage(db, logger),
		logger:    logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// ChecklistStorage returns the Checklist storage interface
func (m *Manager) ChecklistStorage() interfaces.ChecklistStorage {
	return m.checklist
}

// HouseStorage returns the House storage interface
func (m *Manager) HouseStorage() interfaces.HouseStorage {
	return m.house
}

// ScanStorage returns the Scan storage interface
func (m *Manager) ScanStorage() interfaces.ScanStorage {
	return m.scan
}

// DB returns the underlying Badger connection
func (m *Manager) DB() *BadgerDB {
	return m.db
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
