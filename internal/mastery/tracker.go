package mastery

import (
	"maps"
	"sort"
	"time"

	"github.com/abhisek/rxdrill/internal/spacedrep"
)

// Tracker holds per-item spaced repetition records. Records are created
// lazily on the first answer and never deleted.
type Tracker struct {
	records map[string]spacedrep.Record
}

// NewTracker creates a tracker seeded with previously persisted records.
// Levels outside [0, 5] are clamped.
func NewTracker(records map[string]spacedrep.Record) *Tracker {
	t := &Tracker{records: make(map[string]spacedrep.Record, len(records))}
	for id, r := range records {
		r.Level = spacedrep.ClampLevel(r.Level)
		t.records[id] = r
	}
	return t
}

// Update records an answer for an item and returns its new record.
func (t *Tracker) Update(itemID string, correct bool, now time.Time) spacedrep.Record {
	r := t.records[itemID].Apply(correct, now)
	t.records[itemID] = r
	return r
}

// Record returns the record for an item and whether one exists.
func (t *Tracker) Record(itemID string) (spacedrep.Record, bool) {
	r, ok := t.records[itemID]
	return r, ok
}

// Level returns an item's level, 0 for unseen items.
func (t *Tracker) Level(itemID string) int {
	return t.records[itemID].Level
}

// State returns the display state of an item.
func (t *Tracker) State(itemID string, now time.Time) MasteryState {
	r, ok := t.records[itemID]
	switch {
	case !ok:
		return StateNew
	case r.Level < LowMasteryThreshold:
		return StateLearning
	case r.IsOverdue(now):
		return StateRusty
	default:
		return StateMastered
	}
}

// DueItems returns the items whose review time has arrived, weakest first.
func (t *Tracker) DueItems(now time.Time) []string {
	return t.filter(func(r spacedrep.Record) bool { return r.IsDue(now) })
}

// LowMasteryItems returns the seen items below LowMasteryThreshold,
// weakest first.
func (t *Tracker) LowMasteryItems() []string {
	return t.filter(func(r spacedrep.Record) bool { return r.Level < LowMasteryThreshold })
}

// filter returns matching ids sorted by level, then due time, then id.
func (t *Tracker) filter(keep func(spacedrep.Record) bool) []string {
	var ids []string
	for id, r := range t.records {
		if keep(r) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := t.records[ids[i]], t.records[ids[j]]
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		if !a.NextReviewAt.Equal(b.NextReviewAt) {
			return a.NextReviewAt.Before(b.NextReviewAt)
		}
		return ids[i] < ids[j]
	})
	return ids
}

// ReviewEntry is one item's place in the review schedule.
type ReviewEntry struct {
	ItemID      string
	Level       int
	Status      spacedrep.ReviewStatus
	OverdueDays float64
	DaysUntil   int
}

// ReviewQueue returns up to limit seen items, most overdue first, then
// by next review time. A non-positive limit returns all of them.
func (t *Tracker) ReviewQueue(now time.Time, limit int) []ReviewEntry {
	out := make([]ReviewEntry, 0, len(t.records))
	for id, r := range t.records {
		out = append(out, ReviewEntry{
			ItemID:      id,
			Level:       r.Level,
			Status:      r.Status(now),
			OverdueDays: r.OverdueDays(now),
			DaysUntil:   r.DaysUntilReview(now),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := t.records[out[i].ItemID], t.records[out[j].ItemID]
		if !a.NextReviewAt.Equal(b.NextReviewAt) {
			return a.NextReviewAt.Before(b.NextReviewAt)
		}
		return out[i].ItemID < out[j].ItemID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Stars rates a group of items 0-3 from their average level. Unseen
// items count as level 0.
func (t *Tracker) Stars(itemIDs []string) int {
	if len(itemIDs) == 0 {
		return 0
	}
	total := 0
	for _, id := range itemIDs {
		total += t.records[id].Level
	}
	avg := float64(total) / float64(len(itemIDs))
	switch {
	case avg >= 4:
		return 3
	case avg >= 2.5:
		return 2
	case avg >= 1:
		return 1
	default:
		return 0
	}
}

// Snapshot exports a copy of all records for persistence.
func (t *Tracker) Snapshot() map[string]spacedrep.Record {
	return maps.Clone(t.records)
}
