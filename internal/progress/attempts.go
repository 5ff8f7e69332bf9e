package progress

import "time"

// CanAttempt reports whether an attempt is available.
func (s Stats) CanAttempt() bool {
	return s.AttemptsRemaining > 0
}

// LoseAttempt spends one attempt and starts the regen timer if none is running.
func (s Stats) LoseAttempt(now time.Time) Stats {
	if s.AttemptsRemaining > 0 {
		s.AttemptsRemaining--
	}
	if s.AttemptsRemaining < s.AttemptsMax && s.NextAttemptRegenAt.IsZero() {
		s.NextAttemptRegenAt = now.Add(RegenInterval)
	}
	return s
}

// Recompute grants every attempt regenerated up to now. The timer keeps
// its phase: after a long gap the next tick lands where it would have
// had the process been running. Safe to call any number of times.
func (s Stats) Recompute(now time.Time) Stats {
	if s.AttemptsRemaining >= s.AttemptsMax || s.NextAttemptRegenAt.IsZero() {
		return s
	}
	elapsed := now.Sub(s.NextAttemptRegenAt)
	if elapsed < 0 {
		return s
	}
	granted := 1 + int(elapsed/RegenInterval)
	s.AttemptsRemaining = min(s.AttemptsRemaining+granted, s.AttemptsMax)
	if s.AttemptsRemaining < s.AttemptsMax {
		s.NextAttemptRegenAt = now.Add(-(elapsed % RegenInterval)).Add(RegenInterval)
	} else {
		s.NextAttemptRegenAt = time.Time{}
	}
	return s
}

// UntilNextAttempt returns the wait for the next regenerated attempt, or
// zero when none is pending.
func (s Stats) UntilNextAttempt(now time.Time) time.Duration {
	if s.NextAttemptRegenAt.IsZero() || !s.NextAttemptRegenAt.After(now) {
		return 0
	}
	return s.NextAttemptRegenAt.Sub(now)
}

// RefillAttempts buys a full attempt pool for RefillCost. It is a no-op
// returning false when the pool is full or currency is short.
func (s Stats) RefillAttempts(now time.Time) (Stats, bool) {
	s = s.Recompute(now)
	if s.AttemptsRemaining >= s.AttemptsMax || s.Currency < RefillCost {
		return s, false
	}
	s.Currency -= RefillCost
	s.AttemptsRemaining = s.AttemptsMax
	s.NextAttemptRegenAt = time.Time{}
	return s, true
}
