// Package progress holds the learner's progression state. Stats is a
// value type: every operation returns a new Stats and leaves the
// receiver untouched. Calendar arithmetic (days, weeks) uses the
// location of the now argument, so callers pass now.In(loc).
package progress

import "time"

const (
	// DefaultAttemptsMax is the attempt pool size for new learners.
	DefaultAttemptsMax = 5

	// RegenInterval is how long one attempt takes to regenerate.
	RegenInterval = time.Hour

	// RefillCost is the currency price of a full attempt refill.
	RefillCost = 30

	// StreakSaveCost is the currency price of one streak save.
	StreakSaveCost = 50

	// MaxStreakSaves is the highest streak-save cap at any streak.
	MaxStreakSaves = 3
)

// Stats is the learner's persistent progression state.
type Stats struct {
	XPTotal       int       `json:"xp_total"`
	XPThisWeek    int       `json:"xp_this_week"`
	StreakCurrent int       `json:"streak_current"`
	StreakBest    int       `json:"streak_best"`
	LastActiveAt  time.Time `json:"last_active_at"`

	AttemptsRemaining int `json:"attempts_remaining"`
	AttemptsMax       int `json:"attempts_max"`

	// NextAttemptRegenAt is zero when no regen timer is running.
	NextAttemptRegenAt time.Time `json:"next_attempt_regen_at"`

	Currency    int `json:"currency"`
	StreakSaves int `json:"streak_saves"`

	Tier          Tier   `json:"tier"`
	TierWeekStart string `json:"tier_week_start"`

	Quests QuestState `json:"quests"`

	// DoubleReward doubles the XP of the next finished lesson.
	DoubleReward bool `json:"double_reward"`

	QuestionsAnswered int `json:"questions_answered"`
	QuestionsCorrect  int `json:"questions_correct"`
	LessonsCompleted  int `json:"lessons_completed"`
}

// New returns the starting state for a learner created at now.
func New(now time.Time) Stats {
	return Stats{
		AttemptsRemaining: DefaultAttemptsMax,
		AttemptsMax:       DefaultAttemptsMax,
		Tier:              TierBronze,
		TierWeekStart:     WeekKey(now),
		Quests:            QuestState{Day: DayKey(now)},
	}
}

// Normalize repairs out-of-range values left by older or damaged
// snapshots. It is applied on load.
func (s Stats) Normalize(now time.Time) Stats {
	s.XPTotal = max(s.XPTotal, 0)
	s.XPThisWeek = max(s.XPThisWeek, 0)
	s.StreakCurrent = max(s.StreakCurrent, 0)
	s.StreakBest = max(s.StreakBest, s.StreakCurrent)
	s.Currency = max(s.Currency, 0)
	if s.AttemptsMax <= 0 {
		s.AttemptsMax = DefaultAttemptsMax
	}
	s.AttemptsRemaining = min(max(s.AttemptsRemaining, 0), s.AttemptsMax)
	if s.AttemptsRemaining < s.AttemptsMax && s.NextAttemptRegenAt.IsZero() {
		s.NextAttemptRegenAt = now.Add(RegenInterval)
	}
	// Saves above the current cap were earned on a longer streak and
	// are kept; the cap only gates new grants.
	s.StreakSaves = min(max(s.StreakSaves, 0), MaxStreakSaves)
	if !s.Tier.Valid() {
		s.Tier = TierBronze
	}
	if s.TierWeekStart == "" {
		s.TierWeekStart = WeekKey(now)
	}
	if s.Quests.Day == "" {
		s.Quests = QuestState{Day: DayKey(now)}
	}
	s.QuestionsAnswered = max(s.QuestionsAnswered, 0)
	s.QuestionsCorrect = min(max(s.QuestionsCorrect, 0), s.QuestionsAnswered)
	s.LessonsCompleted = max(s.LessonsCompleted, 0)
	return s
}

// Accuracy returns the lifetime fraction of correct answers.
func (s Stats) Accuracy() float64 {
	if s.QuestionsAnswered == 0 {
		return 0
	}
	return float64(s.QuestionsCorrect) / float64(s.QuestionsAnswered)
}

// DayKey returns the calendar date of t in its own location.
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// civilDay returns midnight UTC of t's calendar date, for day arithmetic
// that ignores DST shifts.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of calendar days from a to b, both
// read in b's location.
func daysBetween(a, b time.Time) int {
	return int(civilDay(b).Sub(civilDay(a.In(b.Location()))).Hours() / 24)
}
