package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func questByID(qs []DailyQuest, id QuestID) DailyQuest {
	for _, q := range qs {
		if q.ID == id {
			return q
		}
	}
	return DailyQuest{}
}

func TestClaimQuest_PaysOnce(t *testing.T) {
	s := New(t0)
	s = s.AdvanceQuest(QuestFinishLessons, 2, t0)
	q := questByID(s.DailyQuests(t0), QuestFinishLessons)
	assert.True(t, q.Completed)
	assert.False(t, q.Claimed)

	s, paid, ok := s.ClaimQuest(QuestFinishLessons, t0)
	assert.True(t, ok)
	assert.Equal(t, 15, paid)
	assert.Equal(t, 15, s.Currency)

	s, paid, ok = s.ClaimQuest(QuestFinishLessons, t0.Add(time.Hour))
	assert.False(t, ok)
	assert.Equal(t, 0, paid)
	assert.Equal(t, 15, s.Currency)
}

func TestClaimQuest_Incomplete(t *testing.T) {
	s := New(t0).AdvanceQuest(QuestAnswerQuestions, 19, t0)
	_, _, ok := s.ClaimQuest(QuestAnswerQuestions, t0)
	assert.False(t, ok)
	_, _, ok = s.ClaimQuest("unknown", t0)
	assert.False(t, ok)
}

func TestQuests_ResetOnNewDay(t *testing.T) {
	s := New(t0).AdvanceQuest(QuestPerfectLesson, 1, t0)
	s, _, ok := s.ClaimQuest(QuestPerfectLesson, t0)
	assert.True(t, ok)

	tomorrow := t0.Add(24 * time.Hour)
	q := questByID(s.DailyQuests(tomorrow), QuestPerfectLesson)
	assert.Equal(t, 0, q.Current)
	assert.False(t, q.Claimed)

	s = s.AdvanceQuest(QuestAnswerQuestions, 1, tomorrow)
	assert.Equal(t, DayKey(tomorrow), s.Quests.Day)
	assert.False(t, s.Quests.Claimed[QuestPerfectLesson])
	assert.Equal(t, 0, s.Quests.Progress[QuestPerfectLesson])

	s = s.AdvanceQuest(QuestPerfectLesson, 1, tomorrow)
	_, _, ok = s.ClaimQuest(QuestPerfectLesson, tomorrow)
	assert.True(t, ok, "claimable again on a new day")
}

func TestQuests_CurrentClampedToTarget(t *testing.T) {
	s := New(t0).AdvanceQuest(QuestEarnXP, 500, t0)
	q := questByID(s.DailyQuests(t0), QuestEarnXP)
	assert.Equal(t, 50, q.Current)
	assert.True(t, q.Completed)
}

func TestAdvanceQuest_DoesNotShareMaps(t *testing.T) {
	a := New(t0).AdvanceQuest(QuestAnswerQuestions, 1, t0)
	b := a.AdvanceQuest(QuestAnswerQuestions, 1, t0)
	assert.Equal(t, 1, a.Quests.Progress[QuestAnswerQuestions])
	assert.Equal(t, 2, b.Quests.Progress[QuestAnswerQuestions])
}
