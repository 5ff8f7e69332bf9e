package learner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rxdrill/internal/progress"
	"github.com/abhisek/rxdrill/internal/spacedrep"
)

var t0 = time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC) // a Wednesday

func TestDecode_CorruptUsesDefaults(t *testing.T) {
	for _, raw := range []string{"", "{not json", "null", "[]"} {
		snap, healed := Decode([]byte(raw), t0)
		assert.True(t, healed, "%q", raw)
		assert.Equal(t, Defaults(t0), snap, "%q", raw)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	snap := Defaults(t0)
	snap.Stats.XPTotal = 120
	snap.Stats.Currency = 40
	snap.LessonScores["statins"] = 90
	snap.LessonStars["statins"] = 2
	snap.Mastery["atorvastatin"] = spacedrep.Record{Level: 3, LastSeenAt: t0, NextReviewAt: t0.Add(96 * time.Hour)}
	snap.Mistakes = snap.Mistakes.Add(progress.Mistake{ItemID: "warfarin", Kind: "use-of", OccurredAt: t0, SessionID: "s"})

	raw, err := snap.Encode()
	require.NoError(t, err)

	got, healed := Decode(raw, t0)
	assert.False(t, healed)
	assert.Equal(t, 120, got.Stats.XPTotal)
	assert.Equal(t, 40, got.Stats.Currency)
	assert.Equal(t, 90, got.LessonScores["statins"])
	assert.Equal(t, 3, got.Mastery["atorvastatin"].Level)
	assert.True(t, got.Mastery["atorvastatin"].NextReviewAt.Equal(t0.Add(96*time.Hour)))
	require.Len(t, got.Mistakes, 1)
	assert.Equal(t, "warfarin", got.Mistakes[0].ItemID)
}

func TestDecode_HealsFieldByField(t *testing.T) {
	raw := []byte(`{
		"version": 1,
		"stats": {"xp_total": 55, "currency": -3, "attempts_remaining": 9},
		"lesson_scores": "oops",
		"mastery": {"lisinopril": {"level": 2}},
		"mistakes": 7
	}`)

	snap, healed := Decode(raw, t0)
	assert.True(t, healed)
	assert.Equal(t, 55, snap.Stats.XPTotal)
	assert.Zero(t, snap.Stats.Currency, "negative currency is repaired")
	assert.Equal(t, progress.DefaultAttemptsMax, snap.Stats.AttemptsRemaining)
	assert.Equal(t, progress.TierBronze, snap.Stats.Tier, "missing stats fields keep defaults")
	assert.NotNil(t, snap.LessonScores)
	assert.Empty(t, snap.LessonScores)
	assert.NotNil(t, snap.LessonStars)
	assert.NotNil(t, snap.Concepts)
	assert.Equal(t, 2, snap.Mastery["lisinopril"].Level)
	assert.Empty(t, snap.Mistakes)
}

func TestDecode_BadStatsFieldKeepsTheRest(t *testing.T) {
	raw := []byte(`{
		"version": 1,
		"stats": {
			"xp_total": 900,
			"currency": 250,
			"streak_current": 12,
			"streak_saves": 1,
			"tier": 7,
			"last_active_at": "yesterday"
		},
		"lesson_scores": {}, "lesson_stars": {}, "mastery": {}, "concepts": {}, "mistakes": []
	}`)

	snap, healed := Decode(raw, t0)
	assert.True(t, healed)
	assert.Equal(t, 900, snap.Stats.XPTotal)
	assert.Equal(t, 250, snap.Stats.Currency)
	assert.Equal(t, 12, snap.Stats.StreakCurrent)
	assert.Equal(t, 1, snap.Stats.StreakSaves)
	assert.Equal(t, progress.TierBronze, snap.Stats.Tier)
	assert.True(t, snap.Stats.LastActiveAt.IsZero())
}

func TestDecode_StatsNotAnObject(t *testing.T) {
	snap, healed := Decode([]byte(`{"version":1,"stats":"broken"}`), t0)
	assert.True(t, healed)
	assert.Equal(t, progress.New(t0), snap.Stats)
}

func TestDecode_ClampsScoresAndStars(t *testing.T) {
	raw := []byte(`{"version":1,"stats":{},"lesson_scores":{"a":140,"b":-2},"lesson_stars":{"a":9},"mastery":{},"concepts":{},"mistakes":[]}`)
	snap, _ := Decode(raw, t0)
	assert.Equal(t, 100, snap.LessonScores["a"])
	assert.Equal(t, 0, snap.LessonScores["b"])
	assert.Equal(t, 3, snap.LessonStars["a"])
}
