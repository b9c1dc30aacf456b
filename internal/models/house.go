package models

import "time"

// House is a property registered for inspection.
type House struct {
	ID        string    `json:"id" badgerhold:"key"`
	UserID    string    `json:"user_id" badgerhold:"index"`
	Name      string    `json:"name"`
	HouseType string    `json:"house_type"` // Sub-type key into the house checklist (e.g. "apartment")
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Room belongs to a house. RoomType is the sub-type key into the room
// checklist (e.g. "bedroom", "kitchen").
type Room struct {
	ID        string    `json:"id" badgerhold:"key"`
	HouseID   string    `json:"house_id" badgerhold:"index"`
	Name      string    `json:"name"`
	RoomType  string    `json:"room_type"`
	Photos    []Photo   `json:"photos,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Photo references a captured room image by URL. Upload and object storage
// live outside this service.
type Photo struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	CapturedAt time.Time `json:"captured_at,omitempty"`
}
