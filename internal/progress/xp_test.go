package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreakMultiplier(t *testing.T) {
	tests := []struct {
		streak int
		want   float64
	}{
		{0, 1.0}, {2, 1.0}, {3, 1.15}, {7, 1.25}, {14, 1.5}, {30, 2.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StreakMultiplier(tt.streak), "streak %d", tt.streak)
	}
}

func TestRecordAnswer(t *testing.T) {
	s := New(t0)
	s.StreakCurrent = 7

	s, xp := s.RecordAnswer(true, t0)
	assert.Equal(t, 13, xp)
	assert.Equal(t, 13, s.XPTotal)
	assert.Equal(t, 13, s.XPThisWeek)
	assert.Equal(t, 1, s.QuestionsCorrect)

	s, xp = s.RecordAnswer(false, t0)
	assert.Equal(t, 0, xp)
	assert.Equal(t, 2, s.QuestionsAnswered)
	assert.InDelta(t, 0.5, s.Accuracy(), 1e-9)
	assert.Equal(t, 2, questByID(s.DailyQuests(t0), QuestAnswerQuestions).Current)
	assert.Equal(t, 13, questByID(s.DailyQuests(t0), QuestEarnXP).Current)
}

func TestFinishLesson(t *testing.T) {
	s := New(t0)
	s, out := s.FinishLesson(10, 10, t0)
	assert.Equal(t, LessonOutcome{XP: 35, Perfect: true}, out)
	assert.Equal(t, 1, s.LessonsCompleted)
	assert.Equal(t, 1, s.StreakCurrent)
	assert.Equal(t, 1, questByID(s.DailyQuests(t0), QuestPerfectLesson).Current)

	s.DoubleReward = true
	s, out = s.FinishLesson(7, 10, t0)
	assert.Equal(t, LessonOutcome{XP: 40, Doubled: true}, out)
	assert.False(t, s.DoubleReward, "double reward is consumed")
	assert.Equal(t, 75, s.XPTotal)
}

func TestNormalize(t *testing.T) {
	s := Stats{
		XPTotal:           -5,
		AttemptsRemaining: 9,
		StreakCurrent:     4,
		StreakBest:        2,
		StreakSaves:       5,
		Tier:              "obsidian",
		QuestionsAnswered: 3,
		QuestionsCorrect:  8,
	}.Normalize(t0)
	assert.Equal(t, 0, s.XPTotal)
	assert.Equal(t, DefaultAttemptsMax, s.AttemptsMax)
	assert.Equal(t, DefaultAttemptsMax, s.AttemptsRemaining)
	assert.Equal(t, 4, s.StreakBest)
	assert.Equal(t, MaxStreakSaves, s.StreakSaves)
	assert.Equal(t, TierBronze, s.Tier)
	assert.Equal(t, "2025-03-10", s.TierWeekStart)
	assert.Equal(t, DayKey(t0), s.Quests.Day)
	assert.Equal(t, 3, s.QuestionsCorrect)
}

func TestNormalize_KeepsSavesFromLongerStreak(t *testing.T) {
	s := Stats{StreakCurrent: 1, StreakBest: 30, StreakSaves: 3}.Normalize(t0)
	assert.Equal(t, 3, s.StreakSaves)

	_, ok := s.AddStreakSave()
	assert.False(t, ok, "no new saves above the current cap")
}

func TestNormalize_StartsMissingRegenTimer(t *testing.T) {
	s := Stats{AttemptsRemaining: 2, AttemptsMax: 5}.Normalize(t0)
	assert.Equal(t, t0.Add(RegenInterval), s.NextAttemptRegenAt)
}
