package spacedrep

import "time"

// Intervals is the review interval in days, indexed by mastery level.
var Intervals = []float64{0.5, 1, 2, 4, 8, 16}

// MaxLevel is the highest mastery level.
const MaxLevel = 5

// Interval returns the review interval for a level. Levels outside the
// table are clamped to its ends.
func Interval(level int) time.Duration {
	if level < 0 {
		level = 0
	}
	if level >= len(Intervals) {
		level = len(Intervals) - 1
	}
	return time.Duration(Intervals[level] * 24 * float64(time.Hour))
}

// NextReview returns when an item at level should next be reviewed.
func NextReview(level int, now time.Time) time.Time {
	return now.Add(Interval(level))
}

// ClampLevel bounds a level to [0, MaxLevel].
func ClampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}
