package progress

import (
	"slices"
	"time"
)

// MaxMistakes bounds the mistake queue; the oldest entries drop first.
const MaxMistakes = 100

// Mistake is one wrong answer awaiting remediation.
type Mistake struct {
	ItemID     string    `json:"item_id"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	SessionID  string    `json:"session_id"`
}

// MistakeQueue is an oldest-first list of mistakes. Methods return new queues.
type MistakeQueue []Mistake

// Add appends a mistake, dropping the oldest beyond MaxMistakes.
func (q MistakeQueue) Add(m Mistake) MistakeQueue {
	out := append(slices.Clone(q), m)
	if len(out) > MaxMistakes {
		out = out[len(out)-MaxMistakes:]
	}
	return out
}

// Resolve removes the first entry matching item and kind.
func (q MistakeQueue) Resolve(itemID, kind string) (MistakeQueue, bool) {
	i := slices.IndexFunc(q, func(m Mistake) bool {
		return m.ItemID == itemID && m.Kind == kind
	})
	if i < 0 {
		return q, false
	}
	return slices.Delete(slices.Clone(q), i, i+1), true
}

// Recent returns the mistakes made within the last days days, newest first.
func (q MistakeQueue) Recent(now time.Time, days int) []Mistake {
	cutoff := now.AddDate(0, 0, -days)
	var out []Mistake
	for i := len(q) - 1; i >= 0; i-- {
		if !q[i].OccurredAt.Before(cutoff) {
			out = append(out, q[i])
		}
	}
	return out
}

// Prune drops mistakes older than days days.
func (q MistakeQueue) Prune(now time.Time, days int) MistakeQueue {
	cutoff := now.AddDate(0, 0, -days)
	out := make(MistakeQueue, 0, len(q))
	for _, m := range q {
		if !m.OccurredAt.Before(cutoff) {
			out = append(out, m)
		}
	}
	return out
}
