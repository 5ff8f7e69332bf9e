package progress

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"
)

// Tier is a weekly competitive bracket.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierSapphire Tier = "sapphire"
	TierRuby     Tier = "ruby"
	TierEmerald  Tier = "emerald"
	TierDiamond  Tier = "diamond"
)

const (
	// BracketSize is the number of learners ranked together each week.
	BracketSize = 30

	// PromoteRank is the worst rank that still promotes.
	PromoteRank = 5

	// DemoteRank is the best rank that still demotes.
	DemoteRank = 26
)

// AllTiers returns every tier from lowest to highest.
func AllTiers() []Tier {
	return []Tier{TierBronze, TierSilver, TierGold, TierSapphire, TierRuby, TierEmerald, TierDiamond}
}

// Index returns the tier's position in AllTiers, or -1.
func (t Tier) Index() int {
	for i, x := range AllTiers() {
		if x == t {
			return i
		}
	}
	return -1
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool { return t.Index() >= 0 }

// DisplayName returns a human-readable label for the tier.
func (t Tier) DisplayName() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

func (t Tier) up() Tier {
	tiers := AllTiers()
	if i := t.Index(); i >= 0 && i < len(tiers)-1 {
		return tiers[i+1]
	}
	return t
}

func (t Tier) down() Tier {
	if i := t.Index(); i > 0 {
		return AllTiers()[i-1]
	}
	return t
}

// WeekKey returns the date of the Monday starting now's ISO week.
func WeekKey(now time.Time) string {
	offset := (int(now.Weekday()) + 6) % 7
	y, m, d := now.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
}

// Ranker places a learner's weekly XP within a bracket of BracketSize.
// Rank 1 is best.
type Ranker interface {
	Rank(tier Tier, weekKey string, xp int) int
}

// RankerFunc adapts a function to Ranker.
type RankerFunc func(tier Tier, weekKey string, xp int) int

func (f RankerFunc) Rank(tier Tier, weekKey string, xp int) int { return f(tier, weekKey, xp) }

// SimulatedRanker ranks against computer-generated opponents whose
// weekly XP is drawn from a seed, the tier and the week. The same inputs
// always give the same rank.
type SimulatedRanker struct {
	Seed uint64
}

func (r SimulatedRanker) Rank(tier Tier, weekKey string, xp int) int {
	h := fnv.New64a()
	h.Write([]byte(string(tier) + "|" + weekKey))
	rng := rand.New(rand.NewPCG(r.Seed, h.Sum64()))

	// Opponents get busier in higher tiers.
	mean := 80.0 + 40.0*float64(max(tier.Index(), 0))
	ahead := 0
	for i := 0; i < BracketSize-1; i++ {
		if opp := int(mean + rng.NormFloat64()*mean/2); opp > xp {
			ahead++
		}
	}
	return ahead + 1
}

// Outcome is the result of a weekly tier rollover.
type Outcome string

const (
	OutcomePromoted Outcome = "promoted"
	OutcomeDemoted  Outcome = "demoted"
	OutcomeStayed   Outcome = "stayed"
)

// TierWeekResult reports one completed tier week. It is shown once and
// never persisted.
type TierWeekResult struct {
	WeekKey      string
	PreviousTier Tier
	NewTier      Tier
	Rank         int
	XPEarned     int
	Outcome      Outcome
}

// CheckRollover closes the stored tier week if now falls in a later
// week. It returns a result only when a rollover happened; a second call
// in the same week returns nil.
func (s Stats) CheckRollover(now time.Time, ranker Ranker) (Stats, *TierWeekResult) {
	key := WeekKey(now)
	if s.TierWeekStart == "" {
		s.TierWeekStart = key
		return s, nil
	}
	if s.TierWeekStart == key {
		return s, nil
	}

	rank := ranker.Rank(s.Tier, s.TierWeekStart, s.XPThisWeek)
	res := &TierWeekResult{
		WeekKey:      s.TierWeekStart,
		PreviousTier: s.Tier,
		Rank:         rank,
		XPEarned:     s.XPThisWeek,
		Outcome:      OutcomeStayed,
	}
	switch {
	case rank <= PromoteRank && s.Tier.up() != s.Tier:
		s.Tier = s.Tier.up()
		res.Outcome = OutcomePromoted
	case rank >= DemoteRank && s.Tier.down() != s.Tier:
		s.Tier = s.Tier.down()
		res.Outcome = OutcomeDemoted
	}
	res.NewTier = s.Tier
	s.XPThisWeek = 0
	s.TierWeekStart = key
	return s, res
}
