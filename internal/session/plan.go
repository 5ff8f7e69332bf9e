package session

import (
	"time"

	"github.com/abhisek/rxdrill/internal/progress"
	"github.com/abhisek/rxdrill/internal/quiz"
)

// Mode selects the assembly policy for a session.
type Mode string

const (
	ModeLesson        Mode = "lesson"
	ModePractice      Mode = "practice"
	ModeSpacedReview  Mode = "spaced-review"
	ModeMistakeReview Mode = "mistake-review"
	ModeMastery       Mode = "mastery"
	ModeBlitz         Mode = "blitz"
)

// AllModes returns every session mode.
func AllModes() []Mode {
	return []Mode{ModeLesson, ModePractice, ModeSpacedReview, ModeMistakeReview, ModeMastery, ModeBlitz}
}

// ParseMode returns the Mode for s, or false if s names no mode.
func ParseMode(s string) (Mode, bool) {
	for _, m := range AllModes() {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

const (
	MinLessonQuestions = 10
	MaxLessonQuestions = 16

	// MaxIntroQuestions caps teaching cards at the start of a lesson.
	MaxIntroQuestions = 4

	MinReviewQuestions = 2
	MaxReviewQuestions = 4

	DefaultPracticeQuestions = 12
	DefaultReviewQuestions   = 12
	DefaultMasteryQuestions  = 24
	DefaultBlitzQuestions    = 20

	// BlitzTimeLimit is the wall-clock budget of a blitz session.
	BlitzTimeLimit = 60 * time.Second
)

// Request describes the session to assemble.
type Request struct {
	Mode Mode

	// LessonID scopes lesson mode.
	LessonID string

	// UnitID scopes mastery mode when ItemIDs is empty.
	UnitID string

	// ItemIDs overrides the scope for practice, blitz and mastery.
	ItemIDs []string

	// Count is the requested length. Zero uses the mode default.
	Count int

	// Mistakes are the entries to remediate in mistake-review mode.
	Mistakes []progress.Mistake
}

// Plan is the ordered question sequence for one session.
type Plan struct {
	SessionID string
	Mode      Mode
	LessonID  string
	Questions []quiz.Question

	// TimeLimit is zero for untimed sessions.
	TimeLimit time.Duration
}

// Len returns the number of questions in the plan.
func (p *Plan) Len() int { return len(p.Questions) }

// IntroCount returns the number of leading intro questions.
func (p *Plan) IntroCount() int {
	n := 0
	for _, q := range p.Questions {
		if q.Header().Phase != quiz.PhaseIntro {
			break
		}
		n++
	}
	return n
}
