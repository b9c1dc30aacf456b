package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateDocument checks a checklist document against its scope shape before
// it is persisted. The merge logic itself performs no validation, so every
// document must pass through here on the way into storage.
//
// Rules:
//   - struct-level field validation (item type enum, required ids)
//   - house documents may not carry room_types and vice versa; product
//     documents carry only the flat items list
//   - item ids are unique within any single items list, including subitems
func ValidateDocument(scope Scope, doc *ChecklistDocument) error {
	if doc == nil {
		return fmt.Errorf("checklist document is nil")
	}

	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("checklist document failed validation: %w", err)
	}

	switch scope {
	case ScopeHouse:
		if doc.RoomTypes != nil {
			return fmt.Errorf("house checklist must not contain room_types")
		}
		if len(doc.Items) > 0 {
			return fmt.Errorf("house checklist must not contain a flat items list")
		}
	case ScopeRoom:
		if doc.HouseTypes != nil {
			return fmt.Errorf("room checklist must not contain house_types")
		}
		if len(doc.Items) > 0 {
			return fmt.Errorf("room checklist must not contain a flat items list")
		}
	case ScopeProduct:
		if doc.HouseTypes != nil || doc.RoomTypes != nil || doc.Default != nil {
			return fmt.Errorf("product checklist carries only a flat items list")
		}
	default:
		return fmt.Errorf("unknown checklist scope: %q", scope)
	}

	if doc.Default != nil {
		if err := validateItemList("default", doc.Default.Items); err != nil {
			return err
		}
	}
	for name, group := range doc.Groups() {
		if group == nil {
			return fmt.Errorf("sub-type group %q is nil", name)
		}
		if err := validateItemList(name, group.Items); err != nil {
			return err
		}
	}
	if err := validateItemList("items", doc.Items); err != nil {
		return err
	}

	return nil
}

// validateItemList enforces id uniqueness and per-type constraints for one
// item list, recursing into subitems.
func validateItemList(section string, items []ChecklistItem) error {
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		item := &items[i]
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("section %q: duplicate item id %q", section, item.ID)
		}
		seen[item.ID] = struct{}{}

		if item.Type == ItemTypeCategorical && len(item.Options) == 0 {
			return fmt.Errorf("section %q: categorical item %q has no options", section, item.ID)
		}
		if len(item.Subitems) > 0 {
			if err := validateItemList(section+"/"+item.ID, item.Subitems); err != nil {
				return err
			}
		}
	}
	return nil
}
