package checklists

import (
	"github.com/InonELGABSI/housescanner/internal/models"
)

// Merge folds zero or more override documents onto a base document and
// returns the effective checklist for a scope. The fold is pure: neither the
// base nor any override is mutated, and the result shares no slices or maps
// with its inputs.
//
// Overrides apply in input order; when the same item id appears in several
// overrides, the last one in the sequence wins. Callers own the ordering
// (the checklist service passes overrides by version ascending).
func Merge(base models.ChecklistDocument, overrides []models.ChecklistDocument) models.ChecklistDocument {
	result := cloneDocument(base)
	for i := range overrides {
		result = mergeDocument(result, &overrides[i])
	}
	return result
}

// mergeDocument folds one override into the running result.
func mergeDocument(result models.ChecklistDocument, override *models.ChecklistDocument) models.ChecklistDocument {
	// Default section: items merge by id; the description is first-writer-wins,
	// so the base (folded first) keeps its description when it has one.
	if override.Default != nil {
		if result.Default == nil {
			result.Default = &models.ChecklistGroup{}
		}
		result.Default.Items = mergeItems(result.Default.Items, override.Default.Items)
		if result.Default.Description == "" {
			result.Default.Description = override.Default.Description
		}
	}

	result.HouseTypes = mergeGroups(result.HouseTypes, override.HouseTypes)
	result.RoomTypes = mergeGroups(result.RoomTypes, override.RoomTypes)

	// Flat items section for sub-type-less scopes.
	if len(override.Items) > 0 {
		result.Items = mergeItems(result.Items, override.Items)
	}

	return result
}

// mergeGroups folds an override's sub-type groups into the result's. A group
// key the result has never seen is adopted wholesale; an existing group has
// its items merged by id, keeping the earlier description when one is set.
func mergeGroups(result, override map[string]*models.ChecklistGroup) map[string]*models.ChecklistGroup {
	if override == nil {
		return result
	}
	if result == nil {
		result = make(map[string]*models.ChecklistGroup, len(override))
	}

	for name, ovGroup := range override {
		if ovGroup == nil {
			continue
		}
		existing, ok := result[name]
		if !ok || existing == nil {
			result[name] = cloneGroup(ovGroup)
			continue
		}
		existing.Items = mergeItems(existing.Items, ovGroup.Items)
		if existing.Description == "" {
			existing.Description = ovGroup.Description
		}
	}

	return result
}

// mergeItems merges an override item list into a base list, keyed by item id.
//
// Base order is preserved. An override item whose id already exists replaces
// that position with a field-wise overlay of the existing item; an unknown id
// is appended, so new items land after the base items in the override's own
// relative order. When one override list repeats an id, later occurrences
// fold over earlier ones.
func mergeItems(baseItems, overrideItems []models.ChecklistItem) []models.ChecklistItem {
	merged := make([]models.ChecklistItem, len(baseItems))
	copy(merged, baseItems)

	position := make(map[string]int, len(merged))
	for i := range merged {
		position[merged[i].ID] = i
	}

	for i := range overrideItems {
		ov := &overrideItems[i]
		if pos, ok := position[ov.ID]; ok {
			merged[pos] = overlayItem(&merged[pos], ov)
		} else {
			merged = append(merged, cloneItem(ov))
			position[ov.ID] = len(merged) - 1
		}
	}

	return merged
}

// overlayItem produces the merge of one existing item with an override item
// carrying the same id. Every field the override sets replaces the existing
// value; absent fields (zero values after JSON decoding) leave the existing
// field untouched. Subitems are the one non-shallow field: they are merged
// recursively when the override defines them and retained unchanged when it
// does not.
func overlayItem(existing, override *models.ChecklistItem) models.ChecklistItem {
	out := *existing
	out.Options = cloneStrings(existing.Options)
	out.Subitems = cloneItems(existing.Subitems)

	if override.Title != "" {
		out.Title = override.Title
	}
	if override.Type != "" {
		out.Type = override.Type
	}
	if override.Description != "" {
		out.Description = override.Description
	}
	if override.Options != nil {
		out.Options = cloneStrings(override.Options)
	}
	if override.Subitems != nil {
		out.Subitems = mergeItems(existing.Subitems, override.Subitems)
	}

	return out
}

func cloneDocument(doc models.ChecklistDocument) models.ChecklistDocument {
	out := models.ChecklistDocument{}
	if doc.Default != nil {
		out.Default = cloneGroup(doc.Default)
	}
	if doc.HouseTypes != nil {
		out.HouseTypes = make(map[string]*models.ChecklistGroup, len(doc.HouseTypes))
		for name, group := range doc.HouseTypes {
			out.HouseTypes[name] = cloneGroup(group)
		}
	}
	if doc.RoomTypes != nil {
		out.RoomTypes = make(map[string]*models.ChecklistGroup, len(doc.RoomTypes))
		for name, group := range doc.RoomTypes {
			out.RoomTypes[name] = cloneGroup(group)
		}
	}
	out.Items = cloneItems(doc.Items)
	return out
}

func cloneGroup(group *models.ChecklistGroup) *models.ChecklistGroup {
	if group == nil {
		return nil
	}
	return &models.ChecklistGroup{
		Description: group.Description,
		Items:       cloneItems(group.Items),
	}
}

func cloneItems(items []models.ChecklistItem) []models.ChecklistItem {
	if items == nil {
		return nil
	}
	out := make([]models.ChecklistItem, len(items))
	for i := range items {
		out[i] = cloneItem(&items[i])
	}
	return out
}

func cloneItem(item *models.ChecklistItem) models.ChecklistItem {
	out := *item
	out.Options = cloneStrings(item.Options)
	out.Subitems = cloneItems(item.Subitems)
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
