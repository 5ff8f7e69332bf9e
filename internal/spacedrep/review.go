package spacedrep

import "time"

// Record holds the spaced repetition state for a single item.
type Record struct {
	Level        int       `json:"level"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// Apply moves the record one level up on a correct answer and one level
// down otherwise, then reschedules from now.
func (r Record) Apply(correct bool, now time.Time) Record {
	if correct {
		r.Level = ClampLevel(r.Level + 1)
	} else {
		r.Level = ClampLevel(r.Level - 1)
	}
	r.LastSeenAt = now
	r.NextReviewAt = NextReview(r.Level, now)
	return r
}

// IsDue returns true if the item is due for review (at or past the review time).
func (r Record) IsDue(now time.Time) bool {
	return !now.Before(r.NextReviewAt)
}

// OverdueDays returns how many days past due the item is. Returns 0 if not yet due.
func (r Record) OverdueDays(now time.Time) float64 {
	if now.Before(r.NextReviewAt) {
		return 0
	}
	return now.Sub(r.NextReviewAt).Hours() / 24.0
}

// IsOverdue returns true once the item has been due for longer than half
// its interval.
func (r Record) IsOverdue(now time.Time) bool {
	if !r.IsDue(now) {
		return false
	}
	grace := Interval(r.Level) / 2
	return now.After(r.NextReviewAt.Add(grace))
}

// ReviewStatus describes an item's review status for display.
type ReviewStatus string

const (
	ReviewNotDue  ReviewStatus = "not_due"
	ReviewDue     ReviewStatus = "due"
	ReviewOverdue ReviewStatus = "overdue"
)

// Status returns the review status for display.
func (r Record) Status(now time.Time) ReviewStatus {
	if r.IsOverdue(now) {
		return ReviewOverdue
	}
	if r.IsDue(now) {
		return ReviewDue
	}
	return ReviewNotDue
}

// DaysUntilReview returns the number of whole days until the next review.
// Returns 0 if already due.
func (r Record) DaysUntilReview(now time.Time) int {
	if r.IsDue(now) {
		return 0
	}
	return int(r.NextReviewAt.Sub(now).Hours()/24.0) + 1
}
