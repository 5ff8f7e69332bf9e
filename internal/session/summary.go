package session

import (
	"sort"
	"time"
)

// Summary holds the end-of-session report.
type Summary struct {
	SessionID      string
	Mode           Mode
	Duration       time.Duration
	TotalQuestions int
	TotalCorrect   int
	Accuracy       float64

	// GradedQuestions and GradedCorrect exclude intro cards.
	GradedQuestions int
	GradedCorrect   int

	ItemResults []ItemResult
}

// BuildSummary creates a Summary from the current session state.
func BuildSummary(state *State, now time.Time) *Summary {
	results := make([]ItemResult, 0, len(state.Results))
	graded, gradedCorrect := 0, 0
	for _, r := range state.Results {
		results = append(results, *r)
		graded += r.Attempted
		gradedCorrect += r.Correct
	}
	// Weakest items first.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Accuracy != results[j].Accuracy {
			return results[i].Accuracy < results[j].Accuracy
		}
		return results[i].ItemID < results[j].ItemID
	})

	var accuracy float64
	if state.TotalAnswered > 0 {
		accuracy = float64(state.TotalCorrect) / float64(state.TotalAnswered)
	}

	return &Summary{
		SessionID:       state.Plan.SessionID,
		Mode:            state.Plan.Mode,
		Duration:        now.Sub(state.StartTime),
		TotalQuestions:  state.TotalAnswered,
		TotalCorrect:    state.TotalCorrect,
		Accuracy:        accuracy,
		GradedQuestions: graded,
		GradedCorrect:   gradedCorrect,
		ItemResults:     results,
	}
}

// Perfect reports whether every graded question was answered correctly.
func (s *Summary) Perfect() bool {
	return s.GradedQuestions > 0 && s.GradedCorrect == s.GradedQuestions
}
