package mastery

import (
	"maps"
	"time"
)

// forgetThreshold is the number of wrong answers after mastery that
// flips a concept back to unmastered.
const forgetThreshold = 3

// ConceptRecord tracks whether a teaching concept has been internalized.
// WrongSinceMastered only grows while Mastered is true.
type ConceptRecord struct {
	Mastered           bool      `json:"mastered"`
	CorrectStreak      int       `json:"correct_streak"`
	WrongSinceMastered int       `json:"wrong_since_mastered"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ConceptTracker holds concept records keyed by concept id.
type ConceptTracker struct {
	records map[string]ConceptRecord
}

// NewConceptTracker creates a tracker seeded with persisted records.
// Negative counters are reset to zero.
func NewConceptTracker(records map[string]ConceptRecord) *ConceptTracker {
	t := &ConceptTracker{records: make(map[string]ConceptRecord, len(records))}
	for id, r := range records {
		r.CorrectStreak = max(r.CorrectStreak, 0)
		r.WrongSinceMastered = max(r.WrongSinceMastered, 0)
		if !r.Mastered {
			r.WrongSinceMastered = 0
		}
		t.records[id] = r
	}
	return t
}

// Update applies an answer to a concept and returns the new record.
func (t *ConceptTracker) Update(conceptID string, correct bool, now time.Time) ConceptRecord {
	r := t.records[conceptID]
	if correct {
		r.Mastered = true
		r.CorrectStreak++
		r.WrongSinceMastered = 0
	} else {
		r.CorrectStreak = 0
		if r.Mastered {
			r.WrongSinceMastered++
			if r.WrongSinceMastered >= forgetThreshold {
				r.Mastered = false
				r.WrongSinceMastered = 0
			}
		}
	}
	r.UpdatedAt = now
	t.records[conceptID] = r
	return r
}

// IsMastered reports whether a concept is mastered. Unknown concepts are not.
func (t *ConceptTracker) IsMastered(conceptID string) bool {
	return t.records[conceptID].Mastered
}

// Record returns the record for a concept and whether one exists.
func (t *ConceptTracker) Record(conceptID string) (ConceptRecord, bool) {
	r, ok := t.records[conceptID]
	return r, ok
}

// Snapshot exports a copy of all records for persistence.
func (t *ConceptTracker) Snapshot() map[string]ConceptRecord {
	return maps.Clone(t.records)
}
