package progress

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollReward_AlwaysOneOutcome(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	counts := map[RewardKind]int{}
	s := Stats{}
	for i := 0; i < 10000; i++ {
		before := s
		var r Reward
		s, r = s.RollReward(rng)
		counts[r.Kind]++
		switch r.Kind {
		case RewardStreakSave:
			assert.Equal(t, before.StreakSaves+1, s.StreakSaves)
		case RewardDoubleXP:
			assert.True(t, s.DoubleReward)
		case RewardCurrencyLarge, RewardCurrencySmall:
			assert.Equal(t, before.Currency+r.Amount, s.Currency)
		}
	}
	// Saves are capped at 1, so only the first save roll pays a save.
	assert.Equal(t, 1, counts[RewardStreakSave])
	assert.InDelta(t, 2000, counts[RewardDoubleXP], 250)
	assert.InDelta(t, 1000, counts[RewardCurrencyLarge], 200)
	assert.InDelta(t, 7000, counts[RewardCurrencySmall], 300)
}

func TestRollReward_Deterministic(t *testing.T) {
	a, ra := Stats{}.RollReward(rand.New(rand.NewPCG(9, 9)))
	b, rb := Stats{}.RollReward(rand.New(rand.NewPCG(9, 9)))
	assert.Equal(t, a, b)
	assert.Equal(t, ra, rb)
}
