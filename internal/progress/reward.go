package progress

import "math/rand/v2"

const (
	// LargeCurrencyReward and SmallCurrencyReward are the currency bands
	// of a reward roll.
	LargeCurrencyReward = 50
	SmallCurrencyReward = 10
)

// RewardKind names the outcome of a reward roll.
type RewardKind string

const (
	RewardStreakSave    RewardKind = "streak-save"
	RewardDoubleXP      RewardKind = "double-xp"
	RewardCurrencyLarge RewardKind = "currency-large"
	RewardCurrencySmall RewardKind = "currency-small"
)

// Reward is the outcome of a reward roll. Amount is set for currency.
type Reward struct {
	Kind   RewardKind
	Amount int
}

// RollReward draws one reward and applies it:
// 10% streak save, 20% double XP, 10% large currency, 60% small currency.
// A streak save rolled at the save cap pays small currency instead.
func (s Stats) RollReward(rng *rand.Rand) (Stats, Reward) {
	roll := rng.Float64()
	switch {
	case roll < 0.10:
		if next, ok := s.AddStreakSave(); ok {
			return next, Reward{Kind: RewardStreakSave}
		}
		s.Currency += SmallCurrencyReward
		return s, Reward{Kind: RewardCurrencySmall, Amount: SmallCurrencyReward}
	case roll < 0.30:
		s.DoubleReward = true
		return s, Reward{Kind: RewardDoubleXP}
	case roll < 0.40:
		s.Currency += LargeCurrencyReward
		return s, Reward{Kind: RewardCurrencyLarge, Amount: LargeCurrencyReward}
	default:
		s.Currency += SmallCurrencyReward
		return s, Reward{Kind: RewardCurrencySmall, Amount: SmallCurrencyReward}
	}
}
