package quiz

import (
	"math/rand/v2"
	"strings"
)

// Distractors returns up to k unique values, none equal to correct,
// drawn from similar first and topped up from fallback. Comparison is
// case-insensitive and ignores surrounding whitespace. It never fails:
// when both pools run dry fewer than k values are returned. Order is
// unspecified.
func Distractors(rng *rand.Rand, correct string, similar, fallback []string, k int) []string {
	if k <= 0 {
		return nil
	}
	seen := map[string]struct{}{normalize(correct): {}}
	out := make([]string, 0, k)

	take := func(pool []string) {
		for _, i := range rng.Perm(len(pool)) {
			if len(out) >= k {
				return
			}
			v := strings.TrimSpace(pool[i])
			key := normalize(v)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	take(similar)
	take(fallback)
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsFold(list []string, v string) bool {
	key := normalize(v)
	for _, s := range list {
		if normalize(s) == key {
			return true
		}
	}
	return false
}

// without returns the values of pool not present in exclude.
func without(pool, exclude []string) []string {
	out := make([]string, 0, len(pool))
	for _, v := range pool {
		if !containsFold(exclude, v) {
			out = append(out, v)
		}
	}
	return out
}

// withAnswer returns distractors plus the answer, shuffled.
func withAnswer(rng *rand.Rand, answer string, distractors []string) []string {
	opts := append([]string{answer}, distractors...)
	rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
	return opts
}
