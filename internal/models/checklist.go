package models

import (
	"fmt"
	"time"
)

// Scope partitions checklists into independent domains. Documents from
// different scopes never merge with each other.
type Scope string

const (
	ScopeHouse   Scope = "house"
	ScopeRoom    Scope = "room"
	ScopeProduct Scope = "product"
)

// AllScopes lists every checklist scope in a stable order.
var AllScopes = []Scope{ScopeHouse, ScopeRoom, ScopeProduct}

// ParseScope converts a string into a Scope.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeHouse, ScopeRoom, ScopeProduct:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("unknown checklist scope: %q", s)
	}
}

// Item types. Categorical items carry Options, conditional items carry
// Subitems.
const (
	ItemTypeBoolean     = "boolean"
	ItemTypeCategorical = "categorical"
	ItemTypeConditional = "conditional"
)

// ChecklistItem is a single inspection point. ID is the merge key and must be
// unique within its containing item list.
type ChecklistItem struct {
	ID          string          `json:"id" validate:"required"`
	Title       string          `json:"title,omitempty"`
	Type        string          `json:"type,omitempty" validate:"omitempty,oneof=boolean categorical conditional"`
	Description string          `json:"description,omitempty"`
	Options     []string        `json:"options,omitempty"`
	Subitems    []ChecklistItem `json:"subitems,omitempty" validate:"omitempty,dive"`
}

// ChecklistGroup is a set of items applying to one sub-type (or to all
// sub-types when used as the default section).
type ChecklistGroup struct {
	Description string          `json:"description,omitempty"`
	Items       []ChecklistItem `json:"items,omitempty" validate:"omitempty,dive"`
}

// ChecklistDocument is a checklist tree for one scope. House and room scopes
// use the Default section plus per-sub-type groups; the product scope uses the
// flat Items list. All sections are optional, an empty document is valid.
type ChecklistDocument struct {
	Default    *ChecklistGroup            `json:"default,omitempty"`
	HouseTypes map[string]*ChecklistGroup `json:"house_types,omitempty" validate:"omitempty,dive"`
	RoomTypes  map[string]*ChecklistGroup `json:"room_types,omitempty" validate:"omitempty,dive"`
	Items      []ChecklistItem            `json:"items,omitempty" validate:"omitempty,dive"`
}

// Groups returns the sub-type group map for the document, regardless of which
// scope the document belongs to. Returns nil when the document has none.
func (d *ChecklistDocument) Groups() map[string]*ChecklistGroup {
	if d.HouseTypes != nil {
		return d.HouseTypes
	}
	return d.RoomTypes
}

// IsEmpty reports whether the document carries no sections at all.
func (d *ChecklistDocument) IsEmpty() bool {
	return d.Default == nil && d.HouseTypes == nil && d.RoomTypes == nil && len(d.Items) == 0
}

// Checklist is a persisted checklist document for one scope. Base checklists
// are system-authored (UserID empty, IsBase true); override checklists belong
// to a user and are folded onto the base in version order.
type Checklist struct {
	ID        string            `json:"id" badgerhold:"key"`
	Scope     Scope             `json:"scope" badgerhold:"index"`
	UserID    string            `json:"user_id" badgerhold:"index"`
	IsBase    bool              `json:"is_base"`
	Version   int               `json:"version"`
	Document  ChecklistDocument `json:"document"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
