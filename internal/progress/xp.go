package progress

import (
	"math"
	"time"
)

const (
	// AnswerXP is awarded per correct answer before the streak multiplier.
	AnswerXP = 10

	// LessonCompletionXP is awarded for finishing a lesson.
	LessonCompletionXP = 20

	// PerfectLessonXP is added when a lesson is finished without mistakes.
	PerfectLessonXP = 15
)

// StreakMultiplier returns the XP multiplier for a daily streak.
func StreakMultiplier(streak int) float64 {
	switch {
	case streak < 3:
		return 1.0
	case streak < 7:
		return 1.15
	case streak < 14:
		return 1.25
	case streak < 30:
		return 1.5
	default:
		return 2.0
	}
}

// ApplyStreakMultiplier rounds the multiplied XP to the nearest integer.
func ApplyStreakMultiplier(xp int, multiplier float64) int {
	return int(math.Round(float64(xp) * multiplier))
}

// AddXP credits xp to the lifetime and weekly totals and the earn-xp quest.
func (s Stats) AddXP(xp int, now time.Time) Stats {
	if xp <= 0 {
		return s
	}
	s.XPTotal += xp
	s.XPThisWeek += xp
	return s.AdvanceQuest(QuestEarnXP, xp, now)
}

// RecordAnswer counts an answer and awards streak-scaled XP when correct.
func (s Stats) RecordAnswer(correct bool, now time.Time) (Stats, int) {
	s.QuestionsAnswered++
	s = s.AdvanceQuest(QuestAnswerQuestions, 1, now)
	if !correct {
		return s, 0
	}
	s.QuestionsCorrect++
	xp := ApplyStreakMultiplier(AnswerXP, StreakMultiplier(s.StreakCurrent))
	return s.AddXP(xp, now), xp
}

// LessonOutcome summarizes the XP paid for a finished lesson.
type LessonOutcome struct {
	XP      int
	Perfect bool
	Doubled bool
}

// FinishLesson pays completion XP, the perfect bonus and a pending
// double-reward, and advances the lesson quests.
func (s Stats) FinishLesson(correct, total int, now time.Time) (Stats, LessonOutcome) {
	out := LessonOutcome{XP: LessonCompletionXP, Perfect: total > 0 && correct == total}
	if out.Perfect {
		out.XP += PerfectLessonXP
		s = s.AdvanceQuest(QuestPerfectLesson, 1, now)
	}
	if s.DoubleReward {
		out.XP *= 2
		out.Doubled = true
		s.DoubleReward = false
	}
	s.LessonsCompleted++
	s = s.AdvanceQuest(QuestFinishLessons, 1, now)
	s = s.RecordActivity(now)
	return s.AddXP(out.XP, now), out
}
