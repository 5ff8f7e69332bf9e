package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRank(rank int) Ranker {
	return RankerFunc(func(Tier, string, int) int { return rank })
}

func TestWeekKey(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "2025-03-10"},   // Monday
		{time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC), "2025-03-10"},   // Wednesday
		{time.Date(2025, 3, 16, 23, 59, 0, 0, time.UTC), "2025-03-10"}, // Sunday
		{time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), "2024-12-30"},   // crosses a year
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WeekKey(tt.now), tt.now.String())
	}
}

func TestCheckRollover_ExactlyOnce(t *testing.T) {
	s := New(t0)
	s.XPThisWeek = 340
	s.Tier = TierGold

	nextWeek := t0.Add(7 * 24 * time.Hour)
	s, res := s.CheckRollover(nextWeek, fixedRank(3))
	require.NotNil(t, res)
	assert.Equal(t, TierGold, res.PreviousTier)
	assert.Equal(t, TierSapphire, res.NewTier)
	assert.Equal(t, OutcomePromoted, res.Outcome)
	assert.Equal(t, 340, res.XPEarned)
	assert.Equal(t, 3, res.Rank)
	assert.Equal(t, 0, s.XPThisWeek)
	assert.Equal(t, WeekKey(nextWeek), s.TierWeekStart)

	s2, res := s.CheckRollover(nextWeek.Add(time.Hour), fixedRank(1))
	assert.Nil(t, res)
	assert.Equal(t, s, s2)
}

func TestCheckRollover_Thresholds(t *testing.T) {
	tests := []struct {
		name    string
		tier    Tier
		rank    int
		want    Tier
		outcome Outcome
	}{
		{"promote at 5", TierSilver, 5, TierGold, OutcomePromoted},
		{"stay at 6", TierSilver, 6, TierSilver, OutcomeStayed},
		{"stay at 25", TierSilver, 25, TierSilver, OutcomeStayed},
		{"demote at 26", TierSilver, 26, TierBronze, OutcomeDemoted},
		{"no promotion past diamond", TierDiamond, 1, TierDiamond, OutcomeStayed},
		{"no demotion below bronze", TierBronze, 30, TierBronze, OutcomeStayed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Stats{Tier: tt.tier, TierWeekStart: "2025-03-03"}
			s, res := s.CheckRollover(t0, fixedRank(tt.rank))
			require.NotNil(t, res)
			assert.Equal(t, tt.want, s.Tier)
			assert.Equal(t, tt.outcome, res.Outcome)
		})
	}
}

func TestCheckRollover_InitializesMissingWeek(t *testing.T) {
	s, res := Stats{Tier: TierBronze}.CheckRollover(t0, fixedRank(1))
	assert.Nil(t, res)
	assert.Equal(t, "2025-03-10", s.TierWeekStart)
}

func TestSimulatedRanker(t *testing.T) {
	r := SimulatedRanker{Seed: 42}
	a := r.Rank(TierGold, "2025-03-10", 150)
	assert.Equal(t, a, r.Rank(TierGold, "2025-03-10", 150), "deterministic")
	assert.GreaterOrEqual(t, a, 1)
	assert.LessOrEqual(t, a, BracketSize)

	assert.Equal(t, 1, r.Rank(TierGold, "2025-03-10", 1_000_000))
	assert.Equal(t, BracketSize, r.Rank(TierGold, "2025-03-10", -1_000_000))
	assert.LessOrEqual(t, r.Rank(TierBronze, "2025-03-10", 200), r.Rank(TierBronze, "2025-03-10", 20))
}

func TestTierDisplayName(t *testing.T) {
	assert.Equal(t, "Sapphire", TierSapphire.DisplayName())
	assert.False(t, Tier("obsidian").Valid())
}
