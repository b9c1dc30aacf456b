package scans

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/InonELGABSI/housescanner/internal/interfaces"
	"github.com/InonELGABSI/housescanner/internal/models"
)

// In-memory stand-ins for the badger-backed stores and external services.

type fakeScanStorage struct {
	mu      sync.Mutex
	scans   map[string]*models.Scan
	results map[string][]*models.RoomResult
}

func newFakeScanStorage() *fakeScanStorage {
	return &fakeScanStorage{
		scans:   make(map[string]*models.Scan),
		results: make(map[string][]*models.RoomResult),
	}
}

func (f *fakeScanStorage) SaveScan(_ context.Context, scan *models.Scan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *scan
	f.scans[scan.ID] = &stored
	return nil
}

func (f *fakeScanStorage) GetScan(_ context.Context, id string) (*models.Scan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	scan, ok := f.scans[id]
	if !ok {
		return nil, fmt.Errorf("scan not found: %s", id)
	}
	copied := *scan
	return &copied, nil
}

func (f *fakeScanStorage) ListScans(_ context.Context, houseID string) ([]*models.Scan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Scan
	for _, scan := range f.scans {
		if scan.HouseID == houseID {
			copied := *scan
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeScanStorage) GetScansByStatus(_ context.Context, status models.ScanStatus) ([]*models.Scan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Scan
	for _, scan := range f.scans {
		if scan.Status == status {
			copied := *scan
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeScanStorage) UpdateScanStatus(_ context.Context, scanID string, status models.ScanStatus, errorMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	scan, ok := f.scans[scanID]
	if !ok {
		return fmt.Errorf("scan not found: %s", scanID)
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
	return nil
}

func (f *fakeScanStorage) SaveScanResults(_ context.Context, scan *models.Scan, results []*models.RoomResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *scan
	f.scans[scan.ID] = &stored
	f.results[scan.ID] = results
	return nil
}

func (f *fakeScanStorage) GetRoomResults(_ context.Context, scanID string) ([]*models.RoomResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[scanID], nil
}

type fakeHouseStorage struct {
	houses map[string]*models.House
	rooms  map[string]*models.Room
}

func newFakeHouseStorage() *fakeHouseStorage {
	return &fakeHouseStorage{
		houses: make(map[string]*models.House),
		rooms:  make(map[string]*models.Room),
	}
}

func (f *fakeHouseStorage) SaveHouse(_ context.Context, house *models.House) error {
	f.houses[house.ID] = house
	return nil
}

func (f *fakeHouseStorage) GetHouse(_ context.Context, id string) (*models.House, error) {
	house, ok := f.houses[id]
	if !ok {
		return nil, fmt.Errorf("house not found: %s", id)
	}
	return house, nil
}

func (f *fakeHouseStorage) ListHouses(_ context.Context, userID string) ([]*models.House, error) {
	var out []*models.House
	for _, house := range f.houses {
		if house.UserID == userID {
			out = append(out, house)
		}
	}
	return out, nil
}

func (f *fakeHouseStorage) DeleteHouse(_ context.Context, id string) error {
	delete(f.houses, id)
	return nil
}

func (f *fakeHouseStorage) SaveRoom(_ context.Context, room *models.Room) error {
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeHouseStorage) GetRoom(_ context.Context, id string) (*models.Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room not found: %s", id)
	}
	return room, nil
}

func (f *fakeHouseStorage) GetRoomsByHouse(_ context.Context, houseID string) ([]*models.Room, error) {
	var out []*models.Room
	for _, room := range f.rooms {
		if room.HouseID == houseID {
			out = append(out, room)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeHouseStorage) DeleteRoom(_ context.Context, id string) error {
	delete(f.rooms, id)
	return nil
}

type queuedMessage struct {
	msg   interfaces.Message
	acked bool
}

type fakeQueue struct {
	mu       sync.Mutex
	messages []*queuedMessage
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{}
}

func (f *fakeQueue) Enqueue(_ context.Context, msg interfaces.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, &queuedMessage{msg: msg})
	return nil
}

func (f *fakeQueue) Receive(_ context.Context) (*interfaces.Message, func() error, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, qm := range f.messages {
		if !qm.acked {
			captured := qm
			ack := func() error {
				f.mu.Lock()
				defer f.mu.Unlock()
				captured.acked = true
				return nil
			}
			return &captured.msg, ack, nil
		}
	}
	return nil, nil, fmt.Errorf("no messages in queue")
}

func (f *fakeQueue) Size(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, qm := range f.messages {
		if !qm.acked {
			count++
		}
	}
	return count, nil
}

func (f *fakeQueue) Close() error { return nil }

type fakeAnalysis struct {
	analyzeFn func(ctx context.Context, req *interfaces.AnalyzeRequest) (*interfaces.AnalyzeResponse, error)
	requests  []*interfaces.AnalyzeRequest
}

func (f *fakeAnalysis) Analyze(ctx context.Context, req *interfaces.AnalyzeRequest) (*interfaces.AnalyzeResponse, error) {
	f.requests = append(f.requests, req)
	return f.analyzeFn(ctx, req)
}

type recordedEvent struct {
	Type    interfaces.EventType
	ScanID  string
	Payload map[string]interface{}
}

type fakeEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeEvents) Subscribe(interfaces.EventType, interfaces.EventHandler) error { return nil }

func (f *fakeEvents) Publish(_ context.Context, event interfaces.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Type: event.Type, ScanID: event.ScanID, Payload: event.Payload})
	return nil
}

func (f *fakeEvents) PublishSync(ctx context.Context, event interfaces.Event) error {
	return f.Publish(ctx, event)
}

func (f *fakeEvents) Close() error { return nil }

func (f *fakeEvents) types() []interfaces.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]interfaces.EventType, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

type fakeChecklistStorage struct {
	checklists map[string]*models.Checklist
}

func newFakeChecklistStorage() *fakeChecklistStorage {
	return &fakeChecklistStorage{checklists: make(map[string]*models.Checklist)}
}

func (f *fakeChecklistStorage) SaveChecklist(_ context.Context, c *models.Checklist) error {
	f.checklists[c.ID] = c
	return nil
}

func (f *fakeChecklistStorage) GetChecklist(_ context.Context, id string) (*models.Checklist, error) {
	return f.checklists[id], nil
}

func (f *fakeChecklistStorage) GetBaseChecklist(_ context.Context, scope models.Scope) (*models.Checklist, error) {
	for _, c := range f.checklists {
		if c.IsBase && c.Scope == scope {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeChecklistStorage) GetOverrides(_ context.Context, userID string, scope models.Scope) ([]*models.Checklist, error) {
	var out []*models.Checklist
	for _, c := range f.checklists {
		if !c.IsBase && c.UserID == userID && c.Scope == scope {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (f *fakeChecklistStorage) ListChecklists(_ context.Context, userID string) ([]*models.Checklist, error) {
	var out []*models.Checklist
	for _, c := range f.checklists {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChecklistStorage) DeleteChecklist(_ context.Context, id string) error {
	delete(f.checklists, id)
	return nil
}
