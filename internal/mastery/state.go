package mastery

// MasteryState is an item's display state derived from its record.
type MasteryState string

const (
	StateNew      MasteryState = "new"
	StateLearning MasteryState = "learning"
	StateMastered MasteryState = "mastered"
	StateRusty    MasteryState = "rusty"
)

// LowMasteryThreshold is the level below which an item counts as weak.
const LowMasteryThreshold = 3
