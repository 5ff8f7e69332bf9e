package learner

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/abhisek/rxdrill/internal/catalog"
	"github.com/abhisek/rxdrill/internal/logger"
	"github.com/abhisek/rxdrill/internal/mastery"
	"github.com/abhisek/rxdrill/internal/outbox"
	"github.com/abhisek/rxdrill/internal/progress"
	"github.com/abhisek/rxdrill/internal/quiz"
	"github.com/abhisek/rxdrill/internal/spacedrep"
	"github.com/abhisek/rxdrill/internal/store"
)

// ErrNotLoaded is returned by mutations issued before Load.
var ErrNotLoaded = errors.New("learner not loaded")

// DefaultKeepSnapshots is how many snapshots Save retains per learner.
const DefaultKeepSnapshots = 10

// Options wires a Service. Catalog and Snapshots are required.
type Options struct {
	Catalog   *catalog.Catalog
	Snapshots store.SnapshotRepo

	// Events records answers; nil disables the event log.
	Events store.EventRepo

	// Outbox receives currency and XP grants; nil keeps them local.
	Outbox *outbox.Outbox

	// Ranker places the learner in the weekly bracket. Nil uses a
	// SimulatedRanker.
	Ranker progress.Ranker

	Rand     *rand.Rand
	Location *time.Location
	Logger   *logger.Logger

	KeepSnapshots int
}

// Service is the single writer for one learner's state. It is not safe
// for concurrent use.
type Service struct {
	opts Options
	log  *logger.Logger

	learnerID string
	snap      Snapshot
	mastery   *mastery.Tracker
	concepts  *mastery.ConceptTracker
	loaded    bool

	// streakWarned is runtime only: the warning fires once per process.
	streakWarned bool
}

// NewService creates a Service.
func NewService(opts Options) *Service {
	if opts.Ranker == nil {
		opts.Ranker = progress.SimulatedRanker{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.KeepSnapshots <= 0 {
		opts.KeepSnapshots = DefaultKeepSnapshots
	}
	return &Service{opts: opts, log: logger.OrNop(opts.Logger).With("component", "learner")}
}

func (s *Service) local(now time.Time) time.Time {
	return now.In(s.opts.Location)
}

// Load reads the learner's latest snapshot, healing anything missing or
// corrupt, then brings timers and the tier week up to now. A read
// failure is treated as a new learner. A weekly rollover is saved before
// Load returns.
func (s *Service) Load(ctx context.Context, learnerID string, now time.Time) (*progress.TierWeekResult, error) {
	if learnerID == "" {
		return nil, fmt.Errorf("learner id is required")
	}
	now = s.local(now)

	var raw []byte
	latest, err := s.opts.Snapshots.Latest(ctx, learnerID)
	if err != nil {
		s.log.Warn("snapshot read failed, starting fresh", "learner_id", learnerID, "error", err)
	} else if latest != nil {
		raw = latest.Data
	}

	snap, healed := Decode(raw, now)
	if healed && raw != nil {
		s.log.Warn("snapshot healed with defaults", "learner_id", learnerID)
	}

	s.learnerID = learnerID
	s.snap = snap
	s.mastery = mastery.NewTracker(snap.Mastery)
	s.concepts = mastery.NewConceptTracker(snap.Concepts)
	s.loaded = true
	s.streakWarned = false

	var result *progress.TierWeekResult
	s.snap.Stats = s.snap.Stats.Recompute(now)
	s.snap.Stats, result = s.snap.Stats.CheckRollover(now, s.opts.Ranker)
	if result != nil {
		// The rollover is persisted at once so a later Load cannot
		// replay it, even when the caller never saves.
		if err := s.Save(ctx, now); err != nil {
			return result, fmt.Errorf("persist rollover: %w", err)
		}
	}
	return result, nil
}

// LearnerID returns the loaded learner's id.
func (s *Service) LearnerID() string { return s.learnerID }

// Stats returns the current progression state.
func (s *Service) Stats() progress.Stats { return s.snap.Stats }

// Snapshot returns the aggregate as it would be saved.
func (s *Service) Snapshot() Snapshot {
	out := s.snap
	if s.loaded {
		out.Mastery = s.mastery.Snapshot()
		out.Concepts = s.concepts.Snapshot()
	}
	return out
}

// Mastery exposes the item tracker for read-only queries.
func (s *Service) Mastery() *mastery.Tracker { return s.mastery }

// DueItems implements the planner view.
func (s *Service) DueItems(now time.Time) []string {
	if !s.loaded {
		return nil
	}
	return s.mastery.DueItems(now)
}

// LowMasteryItems implements the planner view.
func (s *Service) LowMasteryItems() []string {
	if !s.loaded {
		return nil
	}
	return s.mastery.LowMasteryItems()
}

// IsConceptMastered implements the planner view.
func (s *Service) IsConceptMastered(conceptID string) bool {
	return s.loaded && s.concepts.IsMastered(conceptID)
}

// UnlockedItems returns the items of completed lessons plus every item
// the learner has answered.
func (s *Service) UnlockedItems() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, l := range s.opts.Catalog.Lessons() {
		if _, done := s.snap.LessonScores[l.ID]; done {
			for _, id := range l.ItemIDs {
				add(id)
			}
		}
	}
	if s.loaded {
		for _, it := range s.opts.Catalog.Items() {
			if _, ok := s.mastery.Record(it.ID); ok {
				add(it.ID)
			}
		}
	}
	return out
}

// CanAttempt reports whether an attempt is available at now.
func (s *Service) CanAttempt(now time.Time) bool {
	return s.snap.Stats.Recompute(s.local(now)).CanAttempt()
}

// Answer is one graded response reported to the learner.
type Answer struct {
	SessionID string
	ItemID    string
	Kind      quiz.Kind
	Phase     quiz.Phase
	ConceptID string
	Correct   bool
	Elapsed   time.Duration

	// MistakeReview marks answers given while remediating mistakes.
	MistakeReview bool
}

// AnswerResult reports what an answer changed.
type AnswerResult struct {
	XP                int
	Record            spacedrep.Record
	ConceptMastered   bool
	AttemptsRemaining int
	MistakeAdded      bool
	MistakeResolved   bool
}

// SubmitAnswer applies one answer. Intro answers only move the concept
// tracker; graded answers move item mastery, attempts, XP, quests and
// the mistake queue, and queue the XP they earn.
func (s *Service) SubmitAnswer(ctx context.Context, a Answer, now time.Time) (AnswerResult, error) {
	if !s.loaded {
		return AnswerResult{}, ErrNotLoaded
	}
	now = s.local(now)
	var res AnswerResult

	stats := s.snap.Stats.Recompute(now)
	if a.ConceptID != "" {
		res.ConceptMastered = s.concepts.Update(a.ConceptID, a.Correct, now).Mastered
	}

	if a.Phase != quiz.PhaseIntro {
		res.Record = s.mastery.Update(a.ItemID, a.Correct, now)
		if !a.Correct {
			stats = stats.LoseAttempt(now)
		}
		switch {
		case !a.Correct && !a.MistakeReview:
			s.snap.Mistakes = s.snap.Mistakes.Add(progress.Mistake{
				ItemID:     a.ItemID,
				Kind:       string(a.Kind),
				OccurredAt: now,
				SessionID:  a.SessionID,
			})
			res.MistakeAdded = true
		case a.Correct && !a.MistakeReview:
			s.snap.Mistakes, res.MistakeResolved = s.snap.Mistakes.Resolve(a.ItemID, string(a.Kind))
		}
		stats = stats.RecordActivity(now)
		stats, res.XP = stats.RecordAnswer(a.Correct, now)
	}
	s.snap.Stats = stats
	res.AttemptsRemaining = stats.AttemptsRemaining

	s.logAnswer(ctx, a)
	return res, s.grant(ctx, res.XP, xpSource("answer"), now)
}

func xpSource(what string) string {
	return store.XPSourcePrefix + what
}

// logAnswer records the answer event. Failures are logged, never returned.
func (s *Service) logAnswer(ctx context.Context, a Answer) {
	if s.opts.Events == nil {
		return
	}
	err := s.opts.Events.AppendAnswerEvent(ctx, store.AnswerEventData{
		LearnerID: s.learnerID,
		SessionID: a.SessionID,
		ItemID:    a.ItemID,
		Kind:      string(a.Kind),
		Phase:     string(a.Phase),
		Correct:   a.Correct,
		TimeMs:    a.Elapsed.Milliseconds(),
	})
	if err != nil {
		s.log.Warn("answer event not recorded", "item_id", a.ItemID, "error", err)
	}
}

// LessonResult is reported when a lesson session ends.
type LessonResult struct {
	LessonID  string
	SessionID string
	Correct   int
	Total     int
}

// LessonSummary reports the rewards of a finished lesson.
type LessonSummary struct {
	Outcome   progress.LessonOutcome
	Reward    progress.Reward
	Score     int
	BestScore int
	NewBest   bool
	Stars     int
}

// FinishLesson pays lesson XP, records the score and stars, rolls a
// reward and queues the XP and any currency it grants.
func (s *Service) FinishLesson(ctx context.Context, r LessonResult, now time.Time) (LessonSummary, error) {
	if !s.loaded {
		return LessonSummary{}, ErrNotLoaded
	}
	now = s.local(now)
	var sum LessonSummary

	stats := s.snap.Stats.Recompute(now)
	stats, sum.Outcome = stats.FinishLesson(r.Correct, r.Total, now)

	if r.Total > 0 {
		sum.Score = min(max(r.Correct, 0)*100/r.Total, 100)
	}
	if r.LessonID != "" {
		prev, seen := s.snap.LessonScores[r.LessonID]
		sum.BestScore = max(prev, sum.Score)
		sum.NewBest = !seen || sum.Score > prev
		s.snap.LessonScores[r.LessonID] = sum.BestScore
		if lesson, err := s.opts.Catalog.Lesson(r.LessonID); err == nil {
			sum.Stars = s.mastery.Stars(lesson.ItemIDs)
			s.snap.LessonStars[r.LessonID] = sum.Stars
		}
	}

	stats, sum.Reward = stats.RollReward(s.opts.Rand)
	s.snap.Stats = stats

	if err := s.grant(ctx, sum.Outcome.XP, xpSource("lesson"), now); err != nil {
		return sum, err
	}
	return sum, s.grant(ctx, sum.Reward.Amount, "reward:"+string(sum.Reward.Kind), now)
}

// grant queues a currency or XP grant already applied locally. Zero
// amounts queue nothing.
func (s *Service) grant(ctx context.Context, amount int, source string, now time.Time) error {
	if s.opts.Outbox == nil || amount <= 0 {
		return nil
	}
	if _, _, err := s.opts.Outbox.Enqueue(ctx, s.learnerID, amount, source, now); err != nil {
		return fmt.Errorf("queue %s grant: %w", source, err)
	}
	return nil
}

// ResumeResult reports conditions raised when the app comes back.
type ResumeResult struct {
	// StreakAtRisk is set at most once per Service lifetime.
	StreakAtRisk bool
	Rollover     *progress.TierWeekResult
}

// Resume re-derives timer state from now and runs the weekly rollover.
// It is safe to call at any cadence.
func (s *Service) Resume(now time.Time) ResumeResult {
	if !s.loaded {
		return ResumeResult{}
	}
	now = s.local(now)
	var res ResumeResult
	s.snap.Stats = s.snap.Stats.Recompute(now)
	s.snap.Stats, res.Rollover = s.snap.Stats.CheckRollover(now, s.opts.Ranker)
	if !s.streakWarned && s.snap.Stats.StreakAtRisk(now) {
		s.streakWarned = true
		res.StreakAtRisk = true
	}
	return res
}

// ClaimQuest pays a completed quest and queues the grant. It returns
// false with no change when the quest cannot be claimed.
func (s *Service) ClaimQuest(ctx context.Context, id progress.QuestID, now time.Time) (int, bool, error) {
	if !s.loaded {
		return 0, false, ErrNotLoaded
	}
	now = s.local(now)
	stats, reward, ok := s.snap.Stats.ClaimQuest(id, now)
	if !ok {
		return 0, false, nil
	}
	s.snap.Stats = stats
	return reward, true, s.grant(ctx, reward, "quest:"+string(id), now)
}

// UseStreakSave spends a save to bridge a missed day.
func (s *Service) UseStreakSave(now time.Time) bool {
	next, ok := s.snap.Stats.UseStreakSave(s.local(now))
	s.snap.Stats = next
	return ok
}

// BuyStreakSave spends currency on a streak save.
func (s *Service) BuyStreakSave() bool {
	next, ok := s.snap.Stats.BuyStreakSave()
	s.snap.Stats = next
	return ok
}

// RefillAttempts spends currency to refill the attempt pool.
func (s *Service) RefillAttempts(now time.Time) bool {
	now = s.local(now)
	next, ok := s.snap.Stats.Recompute(now).RefillAttempts(now)
	s.snap.Stats = next
	return ok
}

// RecentMistakes returns mistakes from the last days days, newest first.
func (s *Service) RecentMistakes(now time.Time, days int) []progress.Mistake {
	return s.snap.Mistakes.Recent(s.local(now), days)
}

// PruneMistakes drops mistakes older than days days.
func (s *Service) PruneMistakes(now time.Time, days int) int {
	before := len(s.snap.Mistakes)
	s.snap.Mistakes = s.snap.Mistakes.Prune(s.local(now), days)
	return before - len(s.snap.Mistakes)
}

// LessonScores returns best scores by lesson id.
func (s *Service) LessonScores() map[string]int { return s.snap.LessonScores }

// LessonStars returns mastery stars by lesson id.
func (s *Service) LessonStars() map[string]int { return s.snap.LessonStars }

// Save persists the aggregate and prunes old snapshots.
func (s *Service) Save(ctx context.Context, now time.Time) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	data, err := s.Snapshot().Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	err = s.opts.Snapshots.Save(ctx, &store.Snapshot{
		LearnerID: s.learnerID,
		Timestamp: now.UTC(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := s.opts.Snapshots.Prune(ctx, s.learnerID, s.opts.KeepSnapshots); err != nil {
		s.log.Warn("snapshot prune failed", "error", err)
	}
	return nil
}
