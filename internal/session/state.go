package session

import (
	"time"

	"github.com/abhisek/rxdrill/internal/quiz"
)

// State tracks the runtime state of an active session. It is never
// persisted.
type State struct {
	// Plan is the session plan built at start.
	Plan *Plan

	// Index is the position of the current question in Plan.Questions.
	Index int

	// TotalAnswered and TotalCorrect count graded answers so far.
	TotalAnswered int
	TotalCorrect  int

	// Results tracks per-item tallies for the summary.
	Results map[string]*ItemResult

	// StartTime is when the session began.
	StartTime time.Time

	// QuestionStartTime is when the current question was first shown.
	QuestionStartTime time.Time
}

// NewState creates a session state for plan starting at now.
func NewState(plan *Plan, now time.Time) *State {
	return &State{
		Plan:              plan,
		Results:           make(map[string]*ItemResult),
		StartTime:         now,
		QuestionStartTime: now,
	}
}

// Current returns the question awaiting an answer, or nil when done.
func (s *State) Current() quiz.Question {
	if s.Done() {
		return nil
	}
	return s.Plan.Questions[s.Index]
}

// Done reports whether every question has been answered.
func (s *State) Done() bool {
	return s.Index >= len(s.Plan.Questions)
}

// Remaining returns the number of unanswered questions.
func (s *State) Remaining() int {
	return max(len(s.Plan.Questions)-s.Index, 0)
}

// TimeExpired reports whether a timed session ran out at now.
func (s *State) TimeExpired(now time.Time) bool {
	return s.Plan.TimeLimit > 0 && now.Sub(s.StartTime) >= s.Plan.TimeLimit
}

// TimeLeft returns the remaining time of a timed session, or zero.
func (s *State) TimeLeft(now time.Time) time.Duration {
	if s.Plan.TimeLimit <= 0 {
		return 0
	}
	return max(s.Plan.TimeLimit-now.Sub(s.StartTime), 0)
}
