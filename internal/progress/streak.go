package progress

import "time"

// StreakSaveCap returns how many streak saves may be held at the
// current streak length.
func (s Stats) StreakSaveCap() int {
	switch {
	case s.StreakCurrent >= 30:
		return MaxStreakSaves
	case s.StreakCurrent >= 7:
		return 2
	default:
		return 1
	}
}

// RecordActivity applies a qualifying activity at now to the streak.
func (s Stats) RecordActivity(now time.Time) Stats {
	if s.LastActiveAt.IsZero() {
		s.StreakCurrent = 1
	} else {
		switch d := daysBetween(s.LastActiveAt, now); {
		case d <= 0:
			// Same day, or a clock that moved backwards.
			if s.StreakCurrent == 0 {
				s.StreakCurrent = 1
			}
		case d == 1:
			s.StreakCurrent++
		default:
			s.StreakCurrent = 1
		}
	}
	s.StreakBest = max(s.StreakBest, s.StreakCurrent)
	if now.After(s.LastActiveAt) {
		s.LastActiveAt = now
	}
	return s
}

// StreakAtRisk reports whether the last activity was neither today nor
// yesterday while a streak is running.
func (s Stats) StreakAtRisk(now time.Time) bool {
	if s.StreakCurrent == 0 || s.LastActiveAt.IsZero() {
		return false
	}
	return daysBetween(s.LastActiveAt, now) >= 2
}

// AddStreakSave grants one streak save. No-op returning false at the cap.
func (s Stats) AddStreakSave() (Stats, bool) {
	if s.StreakSaves >= s.StreakSaveCap() {
		return s, false
	}
	s.StreakSaves++
	return s, true
}

// BuyStreakSave purchases a streak save for StreakSaveCost. No-op
// returning false at the cap or when currency is short.
func (s Stats) BuyStreakSave() (Stats, bool) {
	if s.Currency < StreakSaveCost {
		return s, false
	}
	next, ok := s.AddStreakSave()
	if !ok {
		return s, false
	}
	next.Currency -= StreakSaveCost
	return next, true
}

// UseStreakSave spends a save to forgive missed days: last-active moves
// to now and the streak count is kept. No-op returning false when no
// save is held or the streak is not at risk.
func (s Stats) UseStreakSave(now time.Time) (Stats, bool) {
	if s.StreakSaves <= 0 || !s.StreakAtRisk(now) {
		return s, false
	}
	s.StreakSaves--
	s.LastActiveAt = now
	return s, true
}
