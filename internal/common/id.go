package common

import (
	"github.com/google/uuid"
)

// NewScanID generates a unique scan ID with the "scan_" prefix
func NewScanID() string {
	return "scan_" + uuid.New().String()
}

// NewChecklistID generates a unique checklist ID with the "chk_" prefix
func NewChecklistID() string {
	return "chk_" + uuid.New().String()
}

// NewHouseID generates a unique house ID with the "house_" prefix
func NewHouseID() string {
	return "house_" + uuid.New().String()
}

// NewRoomID generates a unique room ID with the "room_" prefix
func NewRoomID() string {
	return "room_" + uuid.New().String()
}

// NewResultID generates a unique room-result ID with the "res_" prefix
func NewResultID() string {
	return "res_" + uuid.New().String()
}
