package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC) // a Wednesday

func TestLoseAttempt_StartsTimerOnce(t *testing.T) {
	s := New(t0)
	s = s.LoseAttempt(t0)
	assert.Equal(t, 4, s.AttemptsRemaining)
	assert.Equal(t, t0.Add(RegenInterval), s.NextAttemptRegenAt)

	s = s.LoseAttempt(t0.Add(10 * time.Minute))
	assert.Equal(t, 3, s.AttemptsRemaining)
	assert.Equal(t, t0.Add(RegenInterval), s.NextAttemptRegenAt, "running timer is kept")
}

func TestLoseAttempt_AtZero(t *testing.T) {
	s := Stats{AttemptsMax: 5}
	s = s.LoseAttempt(t0)
	assert.Equal(t, 0, s.AttemptsRemaining)
	assert.False(t, s.CanAttempt())
}

func TestRecompute_PreservesPhase(t *testing.T) {
	// Timer set at t0 fires at t0+60m; 95 minutes in, one attempt has
	// regenerated and the next lands on the t0+120m boundary.
	s := Stats{AttemptsRemaining: 3, AttemptsMax: 5}.LoseAttempt(t0)
	s.AttemptsRemaining = 3
	now := t0.Add(95 * time.Minute)

	s = s.Recompute(now)
	assert.Equal(t, 4, s.AttemptsRemaining)
	assert.Equal(t, now.Add(25*time.Minute), s.NextAttemptRegenAt)
	assert.Equal(t, 25*time.Minute, s.UntilNextAttempt(now))
}

func TestRecompute_LongSuspendCapsAndClears(t *testing.T) {
	s := Stats{AttemptsRemaining: 0, AttemptsMax: 5, NextAttemptRegenAt: t0}
	s = s.Recompute(t0.Add(30 * 24 * time.Hour))
	assert.Equal(t, 5, s.AttemptsRemaining)
	assert.True(t, s.NextAttemptRegenAt.IsZero())
}

func TestRecompute_MultipleIntervals(t *testing.T) {
	s := Stats{AttemptsRemaining: 0, AttemptsMax: 5, NextAttemptRegenAt: t0}
	now := t0.Add(2*time.Hour + 10*time.Minute)
	s = s.Recompute(now)
	assert.Equal(t, 3, s.AttemptsRemaining)
	assert.Equal(t, t0.Add(3*time.Hour), s.NextAttemptRegenAt)
}

func TestRecompute_IdempotentAndNoOps(t *testing.T) {
	s := Stats{AttemptsRemaining: 2, AttemptsMax: 5, NextAttemptRegenAt: t0}
	now := t0.Add(90 * time.Minute)
	once := s.Recompute(now)
	assert.Equal(t, once, once.Recompute(now))

	before := s.Recompute(t0.Add(-time.Minute))
	assert.Equal(t, s, before, "clock before timer is a no-op")

	full := Stats{AttemptsRemaining: 5, AttemptsMax: 5, NextAttemptRegenAt: t0}
	assert.Equal(t, full, full.Recompute(t0.Add(time.Hour)))

	noTimer := Stats{AttemptsRemaining: 1, AttemptsMax: 5}
	assert.Equal(t, noTimer, noTimer.Recompute(t0.Add(time.Hour)))
}

func TestRecompute_DoesNotMutateReceiver(t *testing.T) {
	s := Stats{AttemptsRemaining: 1, AttemptsMax: 5, NextAttemptRegenAt: t0}
	_ = s.Recompute(t0.Add(3 * time.Hour))
	assert.Equal(t, 1, s.AttemptsRemaining)
}

func TestRefillAttempts(t *testing.T) {
	tests := []struct {
		name      string
		s         Stats
		wantOK    bool
		wantCoins int
	}{
		{"buys", Stats{AttemptsRemaining: 1, AttemptsMax: 5, Currency: 40, NextAttemptRegenAt: t0.Add(time.Hour)}, true, 10},
		{"too poor", Stats{AttemptsRemaining: 1, AttemptsMax: 5, Currency: 29, NextAttemptRegenAt: t0.Add(time.Hour)}, false, 29},
		{"already full", Stats{AttemptsRemaining: 5, AttemptsMax: 5, Currency: 100}, false, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.s.RefillAttempts(t0)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCoins, got.Currency)
			if ok {
				assert.Equal(t, got.AttemptsMax, got.AttemptsRemaining)
				assert.True(t, got.NextAttemptRegenAt.IsZero())
			}
		})
	}
}
