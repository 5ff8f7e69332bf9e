package learner

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rxdrill/internal/catalog"
	"github.com/abhisek/rxdrill/internal/outbox"
	"github.com/abhisek/rxdrill/internal/progress"
	"github.com/abhisek/rxdrill/internal/quiz"
	"github.com/abhisek/rxdrill/internal/store"
)

type harness struct {
	st  *store.Store
	svc *Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "learner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := &harness{st: st}
	h.svc = h.service()
	_, err = h.svc.Load(context.Background(), "ada", t0)
	require.NoError(t, err)
	return h
}

func (h *harness) service() *Service {
	return NewService(Options{
		Catalog:   catalog.Default(),
		Snapshots: h.st.SnapshotRepo(),
		Events:    h.st.EventRepo(),
		Outbox:    outbox.New(h.st.OutboxRepo(), nil),
		Rand:      rand.New(rand.NewPCG(3, 5)),
		Location:  time.UTC,
	})
}

// queued counts outbox events by source.
func (h *harness) queued(t *testing.T) map[string]int {
	t.Helper()
	evs, err := h.st.OutboxRepo().Pending(context.Background(), t0.Add(365*24*time.Hour), 1000)
	require.NoError(t, err)
	out := make(map[string]int)
	for _, ev := range evs {
		out[ev.Source]++
	}
	return out
}

func wrong(item string, kind quiz.Kind) Answer {
	return Answer{SessionID: "s1", ItemID: item, Kind: kind, Phase: quiz.PhaseQuiz}
}

func right(item string, kind quiz.Kind) Answer {
	a := wrong(item, kind)
	a.Correct = true
	return a
}

func TestService_NotLoaded(t *testing.T) {
	svc := NewService(Options{Catalog: catalog.Default()})
	_, err := svc.SubmitAnswer(context.Background(), right("lisinopril", quiz.KindClassOf), t0)
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Nil(t, svc.DueItems(t0))
	assert.False(t, svc.IsConceptMastered("ace-pril-suffix"))
}

func TestSubmitAnswer_WrongAddsMistakeAndLosesAttempt(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.SubmitAnswer(ctx, wrong("warfarin", quiz.KindUseOf), t0)
	require.NoError(t, err)
	assert.True(t, res.MistakeAdded)
	assert.Zero(t, res.XP)
	assert.Equal(t, progress.DefaultAttemptsMax-1, res.AttemptsRemaining)
	assert.Equal(t, 0, res.Record.Level)
	assert.Len(t, h.svc.RecentMistakes(t0, 7), 1)

	// A correct answer of a different kind does not resolve it.
	res, err = h.svc.SubmitAnswer(ctx, right("warfarin", quiz.KindClassOf), t0.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, res.MistakeResolved)
	assert.Equal(t, progress.AnswerXP, res.XP)

	res, err = h.svc.SubmitAnswer(ctx, right("warfarin", quiz.KindUseOf), t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, res.MistakeResolved)
	assert.Empty(t, h.svc.RecentMistakes(t0, 7))

	answered, correct, err := h.st.EventRepo().AnswerTotals(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, 3, answered)
	assert.Equal(t, 2, correct)
}

func TestSubmitAnswer_MistakeReviewLeavesQueue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.SubmitAnswer(ctx, wrong("sertraline", quiz.KindEffectOf), t0)
	require.NoError(t, err)

	a := wrong("sertraline", quiz.KindEffectOf)
	a.MistakeReview = true
	res, err := h.svc.SubmitAnswer(ctx, a, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, res.MistakeAdded)
	assert.Len(t, h.svc.RecentMistakes(t0.Add(time.Minute), 7), 1)

	a.Correct = true
	res, err = h.svc.SubmitAnswer(ctx, a, t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, res.MistakeResolved)
}

func TestSubmitAnswer_IntroMovesConceptOnly(t *testing.T) {
	h := newHarness(t)
	a := Answer{SessionID: "s1", ItemID: "lisinopril", Kind: quiz.KindPearl, Phase: quiz.PhaseIntro, ConceptID: "ace-pril-suffix"}

	res, err := h.svc.SubmitAnswer(context.Background(), a, t0)
	require.NoError(t, err)
	assert.False(t, res.ConceptMastered)
	assert.False(t, res.MistakeAdded)
	assert.Equal(t, progress.DefaultAttemptsMax, res.AttemptsRemaining)

	a.Correct = true
	res, err = h.svc.SubmitAnswer(context.Background(), a, t0)
	require.NoError(t, err)
	assert.True(t, res.ConceptMastered)
	assert.Zero(t, res.XP)
	assert.True(t, h.svc.IsConceptMastered("ace-pril-suffix"))
	_, seen := h.svc.Mastery().Record("lisinopril")
	assert.False(t, seen)

	stats := h.svc.Stats()
	assert.Zero(t, stats.XPTotal)
	assert.Zero(t, stats.QuestionsAnswered)
	assert.Zero(t, stats.Quests.Progress[progress.QuestAnswerQuestions])
	assert.Empty(t, h.queued(t))
}

func TestSubmitAnswer_QueuesXP(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.SubmitAnswer(ctx, right("metoprolol", quiz.KindClassOf), t0)
	require.NoError(t, err)
	require.Positive(t, res.XP)

	_, err = h.svc.SubmitAnswer(ctx, wrong("metoprolol", quiz.KindUseOf), t0)
	require.NoError(t, err)

	evs, err := h.st.OutboxRepo().Pending(ctx, t0, 10)
	require.NoError(t, err)
	require.Len(t, evs, 1, "wrong answers earn nothing to queue")
	assert.Equal(t, store.XPSourcePrefix+"answer", evs[0].Source)
	assert.Equal(t, res.XP, evs[0].Amount)
	assert.Equal(t, "ada", evs[0].LearnerID)
}

func TestFinishLesson_ScoresStarsAndReward(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, id := range []string{"atorvastatin", "simvastatin", "rosuvastatin", "pravastatin"} {
		_, err := h.svc.SubmitAnswer(ctx, right(id, quiz.KindClassOf), t0)
		require.NoError(t, err)
	}

	sum, err := h.svc.FinishLesson(ctx, LessonResult{LessonID: "statins", SessionID: "s1", Correct: 9, Total: 10}, t0)
	require.NoError(t, err)
	assert.Equal(t, 90, sum.Score)
	assert.True(t, sum.NewBest)
	assert.Equal(t, 1, sum.Stars)
	assert.Equal(t, progress.LessonCompletionXP, sum.Outcome.XP)
	assert.NotEmpty(t, sum.Reward.Kind)
	assert.Equal(t, 90, h.svc.LessonScores()["statins"])
	assert.Contains(t, h.svc.UnlockedItems(), "pravastatin")

	queued := h.queued(t)
	assert.Equal(t, 4, queued[store.XPSourcePrefix+"answer"])
	assert.Equal(t, 1, queued[store.XPSourcePrefix+"lesson"])
	if sum.Reward.Amount > 0 {
		assert.Equal(t, 1, queued["reward:"+string(sum.Reward.Kind)])
	} else {
		assert.Len(t, queued, 2)
	}

	// A lower score keeps the best.
	sum, err = h.svc.FinishLesson(ctx, LessonResult{LessonID: "statins", Correct: 5, Total: 10}, t0)
	require.NoError(t, err)
	assert.Equal(t, 50, sum.Score)
	assert.Equal(t, 90, sum.BestScore)
	assert.False(t, sum.NewBest)
}

func TestClaimQuest_QueuesGrantOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := h.svc.SubmitAnswer(ctx, right("omeprazole", quiz.KindClassOf), t0)
		require.NoError(t, err)
	}

	before := h.svc.Stats().Currency
	reward, ok, err := h.svc.ClaimQuest(ctx, progress.QuestAnswerQuestions, t0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before+reward, h.svc.Stats().Currency)

	_, ok, err = h.svc.ClaimQuest(ctx, progress.QuestAnswerQuestions, t0)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 1, h.queued(t)["quest:"+string(progress.QuestAnswerQuestions)])
}

func TestResume_StreakWarningOnce(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.SubmitAnswer(context.Background(), right("apixaban", quiz.KindClassOf), t0)
	require.NoError(t, err)

	later := t0.Add(3 * 24 * time.Hour)
	assert.True(t, h.svc.Resume(later).StreakAtRisk)
	assert.False(t, h.svc.Resume(later).StreakAtRisk)
}

func TestResume_RolloverOncePerWeek(t *testing.T) {
	h := newHarness(t)
	nextWeek := t0.Add(7 * 24 * time.Hour)

	res := h.svc.Resume(nextWeek)
	require.NotNil(t, res.Rollover)
	assert.Zero(t, h.svc.Stats().XPThisWeek)
	assert.Nil(t, h.svc.Resume(nextWeek.Add(time.Hour)).Rollover)
}

func TestLoad_RolloverPersistedOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.SubmitAnswer(ctx, right("losartan", quiz.KindClassOf), t0)
	require.NoError(t, err)
	require.NoError(t, h.svc.Save(ctx, t0))
	nextWeek := t0.Add(7 * 24 * time.Hour)

	first, err := h.service().Load(ctx, "ada", nextWeek)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, progress.WeekKey(t0), first.WeekKey)

	// No Save in between: the second load must not see the week again.
	svc := h.service()
	second, err := svc.Load(ctx, "ada", nextWeek.Add(time.Minute))
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Zero(t, svc.Stats().XPThisWeek)
	assert.Positive(t, svc.Stats().XPTotal)
}

func TestRefillAttempts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.SubmitAnswer(ctx, wrong("dabigatran", quiz.KindUseOf), t0)
	require.NoError(t, err)
	assert.False(t, h.svc.RefillAttempts(t0), "no currency")
	assert.False(t, h.svc.BuyStreakSave(), "no currency")
}

func TestSaveAndReload(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.SubmitAnswer(ctx, right("lisinopril", quiz.KindClassOf), t0)
	require.NoError(t, err)
	_, err = h.svc.SubmitAnswer(ctx, wrong("enalapril", quiz.KindUseOf), t0)
	require.NoError(t, err)
	require.NoError(t, h.svc.Save(ctx, t0))

	fresh := h.service()
	_, err = fresh.Load(ctx, "ada", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Mastery().Level("lisinopril"))
	assert.Equal(t, h.svc.Stats().XPTotal, fresh.Stats().XPTotal)
	assert.Len(t, fresh.RecentMistakes(t0.Add(time.Minute), 7), 1)
	assert.ElementsMatch(t, []string{"lisinopril", "enalapril"}, fresh.UnlockedItems())

	other := h.service()
	_, err = other.Load(ctx, "bob", t0)
	require.NoError(t, err)
	assert.Zero(t, other.Stats().XPTotal)
}

func TestLoad_CorruptSnapshotStartsFresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.st.SnapshotRepo().Save(ctx, &store.Snapshot{LearnerID: "eve", Data: []byte("{garbage")}))

	svc := h.service()
	_, err := svc.Load(ctx, "eve", t0)
	require.NoError(t, err)
	assert.Equal(t, progress.DefaultAttemptsMax, svc.Stats().AttemptsRemaining)
	assert.Equal(t, progress.TierBronze, svc.Stats().Tier)
}

func TestPruneMistakes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.SubmitAnswer(ctx, wrong("fluoxetine", quiz.KindUseOf), t0)
	require.NoError(t, err)
	_, err = h.svc.SubmitAnswer(ctx, wrong("paroxetine", quiz.KindUseOf), t0.Add(10*24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, h.svc.PruneMistakes(t0.Add(10*24*time.Hour), 7))
	assert.Len(t, h.svc.RecentMistakes(t0.Add(10*24*time.Hour), 30), 1)
}
