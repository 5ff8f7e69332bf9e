package session

import (
	"time"

	"github.com/abhisek/rxdrill/internal/quiz"
)

// Feedback is the graded outcome of one answer.
type Feedback struct {
	Question      quiz.Question
	Correct       bool
	CorrectAnswer string
	Explanation   string
	Elapsed       time.Duration
}

// HandleAnswer grades resp against the current question, updates the
// session tallies and advances to the next question. It returns false
// when there is no current question or a timed session has expired.
func HandleAnswer(state *State, resp quiz.Response, now time.Time) (Feedback, bool) {
	q := state.Current()
	if q == nil || state.TimeExpired(now) {
		return Feedback{}, false
	}

	correct := quiz.Grade(q, resp)
	h := q.Header()
	fb := Feedback{
		Question:      q,
		Correct:       correct,
		CorrectAnswer: quiz.CorrectAnswer(q),
		Explanation:   h.Explanation,
		Elapsed:       now.Sub(state.QuestionStartTime),
	}

	state.TotalAnswered++
	if correct {
		state.TotalCorrect++
	}

	// Intro cards teach; they do not count toward item results.
	if h.Phase != quiz.PhaseIntro {
		r := state.Results[h.ItemID]
		if r == nil {
			r = &ItemResult{ItemID: h.ItemID}
			state.Results[h.ItemID] = r
		}
		r.Record(correct)
	}

	state.Index++
	state.QuestionStartTime = now
	return fb, true
}
