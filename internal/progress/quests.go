package progress

import (
	"maps"
	"time"
)

// QuestID identifies a daily quest.
type QuestID string

const (
	QuestAnswerQuestions QuestID = "answer-questions"
	QuestFinishLessons   QuestID = "finish-lessons"
	QuestEarnXP          QuestID = "earn-xp"
	QuestPerfectLesson   QuestID = "perfect-lesson"
)

type questDef struct {
	ID     QuestID
	Title  string
	Target int
	Reward int
}

var questDefs = []questDef{
	{QuestAnswerQuestions, "Answer 20 questions", 20, 10},
	{QuestFinishLessons, "Finish 2 lessons", 2, 15},
	{QuestEarnXP, "Earn 50 XP", 50, 10},
	{QuestPerfectLesson, "Finish a lesson without mistakes", 1, 20},
}

func lookupQuest(id QuestID) (questDef, bool) {
	for _, q := range questDefs {
		if q.ID == id {
			return q, true
		}
	}
	return questDef{}, false
}

// QuestState holds the counters and claim flags of one calendar day.
type QuestState struct {
	Day      string           `json:"day"`
	Progress map[QuestID]int  `json:"progress,omitempty"`
	Claimed  map[QuestID]bool `json:"claimed,omitempty"`
}

// forDay returns the state for day: a copy of q when it already belongs
// to day, otherwise a fresh zero state.
func (q QuestState) forDay(day string) QuestState {
	if q.Day != day {
		return QuestState{Day: day, Progress: map[QuestID]int{}, Claimed: map[QuestID]bool{}}
	}
	out := QuestState{Day: day, Progress: maps.Clone(q.Progress), Claimed: maps.Clone(q.Claimed)}
	if out.Progress == nil {
		out.Progress = map[QuestID]int{}
	}
	if out.Claimed == nil {
		out.Claimed = map[QuestID]bool{}
	}
	return out
}

// DailyQuest is a derived view of one quest for today.
type DailyQuest struct {
	ID        QuestID
	Title     string
	Target    int
	Current   int
	Reward    int
	Claimed   bool
	Completed bool
}

// DailyQuests returns today's quests. Counters from an earlier day read as zero.
func (s Stats) DailyQuests(now time.Time) []DailyQuest {
	state := s.Quests.forDay(DayKey(now))
	out := make([]DailyQuest, 0, len(questDefs))
	for _, d := range questDefs {
		cur := min(state.Progress[d.ID], d.Target)
		out = append(out, DailyQuest{
			ID:        d.ID,
			Title:     d.Title,
			Target:    d.Target,
			Current:   cur,
			Reward:    d.Reward,
			Claimed:   state.Claimed[d.ID],
			Completed: cur >= d.Target,
		})
	}
	return out
}

// AdvanceQuest adds delta to a quest counter for today.
func (s Stats) AdvanceQuest(id QuestID, delta int, now time.Time) Stats {
	if delta <= 0 {
		return s
	}
	if _, ok := lookupQuest(id); !ok {
		return s
	}
	state := s.Quests.forDay(DayKey(now))
	state.Progress[id] += delta
	s.Quests = state
	return s
}

// ClaimQuest pays a completed, unclaimed quest's reward into currency.
// It returns the amount paid, or false with no change when the quest is
// unknown, incomplete or already claimed today.
func (s Stats) ClaimQuest(id QuestID, now time.Time) (Stats, int, bool) {
	def, ok := lookupQuest(id)
	if !ok {
		return s, 0, false
	}
	state := s.Quests.forDay(DayKey(now))
	if state.Claimed[id] || state.Progress[id] < def.Target {
		return s, 0, false
	}
	state.Claimed[id] = true
	s.Quests = state
	s.Currency += def.Reward
	return s, def.Reward, true
}
