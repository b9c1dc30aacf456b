package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ScanStatus is the lifecycle state of a scan.
type ScanStatus string

const (
	ScanStatusPending   ScanStatus = "pending"
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
	ScanStatusCancelled ScanStatus = "cancelled"
)

// IsTerminal reports whether the status is a final state.
func (s ScanStatus) IsTerminal() bool {
	return s == ScanStatusCompleted || s == ScanStatusFailed || s == ScanStatusCancelled
}

// Scan is one AI-analysis run over a house. Room results are persisted as
// separate RoomResult rows, committed together with the scan summary.
type Scan struct {
	ID          string     `json:"id" badgerhold:"key"`
	HouseID     string     `json:"house_id" badgerhold:"index"`
	UserID      string     `json:"user_id" badgerhold:"index"`
	Status      ScanStatus `json:"status" badgerhold:"index"`
	Attempts    int        `json:"attempts"`
	Error       string     `json:"error,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RoomResult holds the analysis findings for one room of one scan.
type RoomResult struct {
	ID       string    `json:"id" badgerhold:"key"`
	ScanID   string    `json:"scan_id" badgerhold:"index"`
	RoomID   string    `json:"room_id"`
	RoomType string    `json:"room_type"`
	Findings []Finding `json:"findings,omitempty"`
	Summary  string    `json:"summary,omitempty"`
}

// Finding is one checklist answer produced by the analysis service.
type Finding struct {
	ItemID     string  `json:"item_id"`
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// ScanJob is the queue payload that drives scan processing.
type ScanJob struct {
	ScanID string `json:"scan_id"`
	UserID string `json:"user_id"`
}

// Validate checks required fields before the job is handed to a worker.
func (j *ScanJob) Validate() error {
	if j.ScanID == "" {
		return fmt.Errorf("scan job: scan_id is required")
	}
	if j.UserID == "" {
		return fmt.Errorf("scan job: user_id is required")
	}
	return nil
}

// ToJSON serializes the job for the queue.
func (j *ScanJob) ToJSON() ([]byte, error) {
	return json.Marshal(j)
}

// ScanJobFromJSON deserializes a queue payload.
func ScanJobFromJSON(data []byte) (*ScanJob, error) {
	var job ScanJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scan job: %w", err)
	}
	return &job, nil
}
