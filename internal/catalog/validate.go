package catalog

import (
	"fmt"
	"strings"
)

// validate performs all structural checks on a decoded catalog.
// Returns a combined error describing all problems found, or nil if valid.
func validate(doc document) error {
	var errs []string

	if len(doc.Items) == 0 {
		errs = append(errs, "catalog has no items")
	}

	itemSet := make(map[string]bool, len(doc.Items))
	for _, it := range doc.Items {
		if strings.TrimSpace(it.ID) == "" {
			errs = append(errs, "item with empty ID")
			continue
		}
		if itemSet[it.ID] {
			errs = append(errs, fmt.Sprintf("duplicate item ID: %q", it.ID))
		}
		itemSet[it.ID] = true
		if it.PrimaryName == "" || it.Category == "" {
			errs = append(errs, fmt.Sprintf("item %q needs a primary name and a category", it.ID))
		}
	}

	lessonSet := make(map[string]bool, len(doc.Lessons))
	conceptSet := make(map[string]bool)
	for _, l := range doc.Lessons {
		if lessonSet[l.ID] {
			errs = append(errs, fmt.Sprintf("duplicate lesson ID: %q", l.ID))
		}
		lessonSet[l.ID] = true
		if len(l.ItemIDs) == 0 {
			errs = append(errs, fmt.Sprintf("lesson %q has no items", l.ID))
		}
		for _, id := range l.ItemIDs {
			if !itemSet[id] {
				errs = append(errs, fmt.Sprintf("lesson %q references nonexistent item %q", l.ID, id))
			}
		}
		for _, cp := range l.Concepts {
			if conceptSet[cp.ID] {
				errs = append(errs, fmt.Sprintf("duplicate concept ID: %q", cp.ID))
			}
			conceptSet[cp.ID] = true
			for _, id := range cp.ItemIDs {
				if !itemSet[id] {
					errs = append(errs, fmt.Sprintf("concept %q references nonexistent item %q", cp.ID, id))
				}
			}
		}
	}

	unitSet := make(map[string]bool, len(doc.Units))
	for _, u := range doc.Units {
		if unitSet[u.ID] {
			errs = append(errs, fmt.Sprintf("duplicate unit ID: %q", u.ID))
		}
		unitSet[u.ID] = true
		for _, id := range u.LessonIDs {
			if !lessonSet[id] {
				errs = append(errs, fmt.Sprintf("unit %q references nonexistent lesson %q", u.ID, id))
			}
		}
	}
	for _, l := range doc.Lessons {
		if l.UnitID != "" && !unitSet[l.UnitID] {
			errs = append(errs, fmt.Sprintf("lesson %q references nonexistent unit %q", l.ID, l.UnitID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
