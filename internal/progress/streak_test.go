package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordActivity(t *testing.T) {
	s := Stats{}.RecordActivity(t0)
	assert.Equal(t, 1, s.StreakCurrent)

	// Same calendar day.
	s = s.RecordActivity(t0.Add(10 * time.Hour))
	assert.Equal(t, 1, s.StreakCurrent)

	// Next calendar day, even if under 24 hours later.
	s = s.RecordActivity(time.Date(2025, 3, 13, 0, 30, 0, 0, time.UTC))
	assert.Equal(t, 2, s.StreakCurrent)
	assert.Equal(t, 2, s.StreakBest)

	// Two missed days reset.
	s = s.RecordActivity(time.Date(2025, 3, 16, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, 1, s.StreakCurrent)
	assert.Equal(t, 2, s.StreakBest)
}

func TestRecordActivity_UsesCallerLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 23:00 and 01:00 UTC are the same New York evening.
	first := time.Date(2025, 3, 12, 23, 0, 0, 0, time.UTC).In(ny)
	second := time.Date(2025, 3, 13, 1, 0, 0, 0, time.UTC).In(ny)
	s := Stats{}.RecordActivity(first).RecordActivity(second)
	assert.Equal(t, 1, s.StreakCurrent)
}

func TestStreakSaveCap(t *testing.T) {
	for streak, want := range map[int]int{0: 1, 6: 1, 7: 2, 29: 2, 30: 3, 100: 3} {
		assert.Equal(t, want, Stats{StreakCurrent: streak}.StreakSaveCap(), "streak %d", streak)
	}
}

func TestAddStreakSave_RespectsCap(t *testing.T) {
	s, ok := Stats{StreakCurrent: 3}.AddStreakSave()
	assert.True(t, ok)
	assert.Equal(t, 1, s.StreakSaves)
	s, ok = s.AddStreakSave()
	assert.False(t, ok)
	assert.Equal(t, 1, s.StreakSaves)
}

func TestBuyStreakSave(t *testing.T) {
	s, ok := Stats{Currency: 60}.BuyStreakSave()
	assert.True(t, ok)
	assert.Equal(t, 10, s.Currency)
	assert.Equal(t, 1, s.StreakSaves)

	s, ok = Stats{Currency: 49}.BuyStreakSave()
	assert.False(t, ok)
	assert.Equal(t, 49, s.Currency)
}

func TestStreakAtRiskAndUseSave(t *testing.T) {
	s := Stats{StreakCurrent: 9, StreakBest: 9, LastActiveAt: t0, StreakSaves: 1}
	assert.False(t, s.StreakAtRisk(t0.Add(24*time.Hour)))

	later := t0.Add(72 * time.Hour)
	assert.True(t, s.StreakAtRisk(later))

	saved, ok := s.UseStreakSave(later)
	assert.True(t, ok)
	assert.Equal(t, 9, saved.StreakCurrent)
	assert.Equal(t, 0, saved.StreakSaves)
	assert.Equal(t, later, saved.LastActiveAt)
	assert.False(t, saved.StreakAtRisk(later))

	// Activity on the next day continues the saved streak.
	assert.Equal(t, 10, saved.RecordActivity(later.Add(24*time.Hour)).StreakCurrent)

	_, ok = saved.UseStreakSave(later)
	assert.False(t, ok, "no saves left")
	_, ok = s.UseStreakSave(t0.Add(time.Hour))
	assert.False(t, ok, "not at risk")
}

func TestStreakAtRisk_NoStreak(t *testing.T) {
	assert.False(t, Stats{}.StreakAtRisk(t0))
}
