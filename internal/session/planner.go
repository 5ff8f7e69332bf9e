package session

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/rxdrill/internal/catalog"
	"github.com/abhisek/rxdrill/internal/quiz"
)

// View is the learner state the planner reads.
type View interface {
	// DueItems returns items due for review, weakest first.
	DueItems(now time.Time) []string

	// LowMasteryItems returns items below the mastery threshold, weakest first.
	LowMasteryItems() []string

	IsConceptMastered(conceptID string) bool

	// UnlockedItems returns items the learner has already been taught.
	UnlockedItems() []string
}

type emptyView struct{}

func (emptyView) DueItems(time.Time) []string   { return nil }
func (emptyView) LowMasteryItems() []string     { return nil }
func (emptyView) IsConceptMastered(string) bool { return false }
func (emptyView) UnlockedItems() []string       { return nil }

// Planner assembles session plans. It holds no learner state; the
// same inputs and rng state produce the same plan.
type Planner struct {
	cat *catalog.Catalog
	gen *quiz.Generator
	rng *rand.Rand
}

// NewPlanner creates a Planner drawing all randomness from rng.
func NewPlanner(cat *catalog.Catalog, rng *rand.Rand) *Planner {
	return &Planner{cat: cat, gen: quiz.NewGenerator(cat, rng), rng: rng}
}

// Build assembles a plan for req. An empty pool yields an empty plan;
// an unknown lesson or unit is an error.
func (p *Planner) Build(req Request, view View, now time.Time) (*Plan, error) {
	if view == nil {
		view = emptyView{}
	}
	plan := &Plan{SessionID: uuid.NewString(), Mode: req.Mode, LessonID: req.LessonID}

	var err error
	switch req.Mode {
	case ModeLesson:
		plan.Questions, err = p.lesson(req, view, now)
	case ModePractice:
		plan.Questions = p.practice(req)
	case ModeSpacedReview:
		plan.Questions = p.spacedReview(req, view, now)
	case ModeMistakeReview:
		plan.Questions = p.mistakeReview(req)
	case ModeMastery:
		plan.Questions, err = p.mastery(req)
	case ModeBlitz:
		plan.Questions = p.blitz(req)
		plan.TimeLimit = BlitzTimeLimit
	default:
		return nil, fmt.Errorf("unknown session mode: %q", req.Mode)
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (p *Planner) lesson(req Request, view View, now time.Time) ([]quiz.Question, error) {
	lesson, err := p.cat.Lesson(req.LessonID)
	if err != nil {
		return nil, err
	}
	pool := p.cat.ItemsByID(lesson.ItemIDs)
	if len(pool) == 0 {
		return nil, nil
	}

	target := req.Count
	if target <= 0 {
		target = min(max(2*len(pool), MinLessonQuestions), MaxLessonQuestions)
	}

	intros := p.intros(lesson, view, min(MaxIntroQuestions, target))
	remaining := target - len(intros)

	reviewPool := p.cat.ItemsByID(reviewCandidates(view, now, lesson.ItemIDs))
	reviewN := 0
	if len(reviewPool) > 0 && remaining > 1 {
		reviewN = min(max(remaining/4, MinReviewQuestions), MaxReviewQuestions, len(reviewPool), remaining-1)
	}

	block := p.fill(pool, remaining-reviewN, quiz.PhaseQuiz, pool)
	block = append(block, p.fill(reviewPool, reviewN, quiz.PhaseReview, append(slices.Clone(reviewPool), pool...))...)
	p.shuffle(block)

	return append(intros, block...), nil
}

// intros builds teaching cards for the lesson's unmastered concepts.
func (p *Planner) intros(lesson catalog.Lesson, view View, limit int) []quiz.Question {
	var out []quiz.Question
	for _, c := range lesson.Concepts {
		if len(out) >= limit {
			break
		}
		if view.IsConceptMastered(c.ID) {
			continue
		}
		for _, id := range c.ItemIDs {
			it, ok := p.cat.Item(id)
			if !ok {
				continue
			}
			if q, err := p.gen.NewIntro(c, it); err == nil {
				out = append(out, q)
			}
			break
		}
	}
	return out
}

// reviewCandidates returns unlocked items outside exclude, due items
// first and low-mastery items next.
func reviewCandidates(view View, now time.Time, exclude []string) []string {
	unlocked := make(map[string]bool)
	for _, id := range view.UnlockedItems() {
		unlocked[id] = true
	}
	for _, id := range exclude {
		delete(unlocked, id)
	}

	var out []string
	seen := make(map[string]bool)
	for _, id := range append(view.DueItems(now), view.LowMasteryItems()...) {
		if unlocked[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (p *Planner) practice(req Request) []quiz.Question {
	pool := p.scope(req.ItemIDs)
	return p.fill(p.shuffled(pool), countOr(req.Count, DefaultPracticeQuestions), quiz.PhaseQuiz, pool)
}

func (p *Planner) blitz(req Request) []quiz.Question {
	pool := p.shuffled(p.scope(req.ItemIDs))
	n := countOr(req.Count, DefaultBlitzQuestions)
	if len(pool) == 0 {
		return nil
	}
	out := make([]quiz.Question, 0, n)
	for i := 0; len(out) < n && i < 4*n; i++ {
		if q, err := p.gen.Random(quiz.FastKinds(), pool[i%len(pool)], quiz.PhaseQuiz, pool); err == nil {
			out = append(out, q)
		}
	}
	return out
}

func (p *Planner) spacedReview(req Request, view View, now time.Time) []quiz.Question {
	n := countOr(req.Count, DefaultReviewQuestions)
	all := p.cat.Items()
	if len(all) == 0 {
		return nil
	}

	var ids []string
	seen := make(map[string]bool)
	for _, id := range append(view.DueItems(now), view.LowMasteryItems()...) {
		if _, ok := p.cat.Item(id); ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	items := p.cat.ItemsByID(ids)
	for _, it := range p.shuffled(all) {
		if len(items) >= n {
			break
		}
		if !seen[it.ID] {
			seen[it.ID] = true
			items = append(items, it)
		}
	}
	if len(items) > n {
		items = items[:n]
	}
	return p.fill(items, n, quiz.PhaseReview, all)
}

func (p *Planner) mistakeReview(req Request) []quiz.Question {
	all := p.cat.Items()
	var out []quiz.Question
	for _, m := range req.Mistakes {
		it, ok := p.cat.Item(m.ItemID)
		if !ok {
			continue
		}
		if q, err := p.remediate(m.Kind, it, all); err == nil {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil
	}

	// Cycle entries to honour an explicit count.
	if req.Count > len(out) {
		for i := 0; len(out) < req.Count && i < 4*req.Count; i++ {
			m := req.Mistakes[i%len(req.Mistakes)]
			it, ok := p.cat.Item(m.ItemID)
			if !ok {
				continue
			}
			if q, err := p.remediate(m.Kind, it, all); err == nil {
				out = append(out, q)
			}
		}
	} else if req.Count > 0 {
		out = out[:req.Count]
	}
	p.shuffle(out)
	return out
}

// remediate rebuilds a question of the original kind, or a random kind
// when the recorded kind is unknown or no longer buildable.
func (p *Planner) remediate(kind string, it catalog.Item, pool []catalog.Item) (quiz.Question, error) {
	if k, ok := quiz.ParseKind(kind); ok {
		if q, err := p.gen.ForKind(k, it, quiz.PhaseReview, pool); err == nil {
			return q, nil
		}
	}
	return p.gen.Random(nil, it, quiz.PhaseReview, pool)
}

func (p *Planner) mastery(req Request) ([]quiz.Question, error) {
	ids := req.ItemIDs
	if len(ids) == 0 {
		var err error
		ids, err = p.cat.UnitItems(req.UnitID)
		if err != nil {
			return nil, err
		}
	}
	pool := p.cat.ItemsByID(ids)
	return p.fill(p.shuffled(pool), countOr(req.Count, DefaultMasteryQuestions), quiz.PhaseMastery, pool), nil
}

// fill produces exactly n questions by cycling items, or none when
// items is empty.
func (p *Planner) fill(items []catalog.Item, n int, phase quiz.Phase, pool []catalog.Item) []quiz.Question {
	if len(items) == 0 || n <= 0 {
		return nil
	}
	out := make([]quiz.Question, 0, n)
	for i := 0; len(out) < n && i < 4*n; i++ {
		it := items[i%len(items)]
		q, err := p.gen.Next(it, phase, pool)
		if err != nil {
			q, err = p.gen.ForKind(quiz.KindClassOf, it, phase, pool)
		}
		if err == nil {
			out = append(out, q)
		}
	}
	return out
}

// scope resolves explicit ids, or the whole catalog when ids is empty.
func (p *Planner) scope(ids []string) []catalog.Item {
	if len(ids) == 0 {
		return p.cat.Items()
	}
	return p.cat.ItemsByID(ids)
}

func (p *Planner) shuffled(items []catalog.Item) []catalog.Item {
	out := slices.Clone(items)
	p.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (p *Planner) shuffle(qs []quiz.Question) {
	p.rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}

func countOr(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}
