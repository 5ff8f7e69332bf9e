package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/rxdrill/internal/catalog"
	"github.com/abhisek/rxdrill/internal/coach"
	"github.com/abhisek/rxdrill/internal/learner"
	"github.com/abhisek/rxdrill/internal/llm"
	"github.com/abhisek/rxdrill/internal/outbox"
	"github.com/abhisek/rxdrill/internal/quiz"
	"github.com/abhisek/rxdrill/internal/session"
	"github.com/abhisek/rxdrill/internal/store"
	"github.com/abhisek/rxdrill/internal/ui/components"
	"github.com/abhisek/rxdrill/internal/ui/theme"
)

// mistakeWindowDays is how far back mistake review looks.
const mistakeWindowDays = 14

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Run a study session in the terminal",
	Long: "Run a study session. Modes: lesson, practice, spaced-review, mistake-review, mastery, blitz.\n" +
		"Answer with an option number or its text. Type q to stop early.",
	RunE: runSession,
}

func init() {
	f := sessionCmd.Flags()
	f.StringP("mode", "m", string(session.ModeLesson), "Session mode")
	f.StringP("lesson", "l", "", "Lesson id (lesson mode; defaults to the first unfinished lesson)")
	f.StringP("unit", "u", "", "Unit id (mastery mode)")
	f.StringSlice("items", nil, "Item ids to scope practice or mastery")
	f.IntP("count", "n", 0, "Number of questions (0 uses the mode default)")
	f.Bool("coach", false, "Ask the configured LLM for a note after wrong answers")
}

func runSession(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	svc, err := e.learner(ctx)
	if err != nil {
		return err
	}

	now := e.now()
	resumed := svc.Resume(now)
	if resumed.StreakAtRisk {
		fmt.Fprintln(e.out, theme.Warning.Render(fmt.Sprintf("Your %d-day streak ends today unless you study.", svc.Stats().StreakCurrent)))
	}
	e.printRollover(resumed.Rollover)

	if !svc.CanAttempt(now) {
		wait := svc.Stats().Recompute(now).UntilNextAttempt(now).Round(time.Minute)
		fmt.Fprintf(e.out, "No attempts left. Next one in %s, or run `rxdrill shop refill`.\n", wait)
		return svc.Save(ctx, now)
	}

	req, err := sessionRequest(cmd, e, svc, now)
	if err != nil {
		return err
	}
	plan, err := session.NewPlanner(e.cat, e.rng).Build(req, svc, now)
	if err != nil {
		return fmt.Errorf("build session: %w", err)
	}
	if plan.Len() == 0 {
		fmt.Fprintln(e.out, "Nothing to study in this mode yet.")
		return svc.Save(ctx, now)
	}

	drainer, closeTransport, err := e.drainer()
	if err != nil {
		return fmt.Errorf("sync transport: %w", err)
	}
	defer closeTransport()
	stopDrainer := func() {}
	if drainer != nil {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = drainer.Run(runCtx)
		}()
		stopDrainer = func() {
			cancel()
			<-done
		}
	}

	var coachSvc *coach.Service
	if on, _ := cmd.Flags().GetBool("coach"); on {
		coachSvc, err = newCoach(ctx, e)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Coach unavailable:", err)
		} else {
			// Runs before the store closes.
			defer coachSvc.Close()
		}
	}

	r := &sessionRunner{env: e, svc: svc, coach: coachSvc, drainer: drainer, state: session.NewState(plan, now)}
	r.logSession(ctx, "start")
	completed, err := r.run(ctx, bufio.NewScanner(cmd.InOrStdin()))
	if err != nil {
		return err
	}
	r.logSession(ctx, "end")

	if err := r.finish(ctx, completed); err != nil {
		stopDrainer()
		return err
	}
	if err := svc.Save(ctx, e.now()); err != nil {
		stopDrainer()
		return err
	}

	// One last pass so rewards from this session leave before exit.
	stopDrainer()
	if drainer != nil {
		if res, err := drainer.Drain(ctx); err != nil {
			e.log.Warn("final sync failed", "error", err)
		} else if res.Failed > 0 {
			fmt.Fprintln(e.out, theme.Hint.Render(fmt.Sprintf("%d reward(s) queued for sync.", res.Failed)))
		}
	}
	return nil
}

func sessionRequest(cmd *cobra.Command, e *env, svc *learner.Service, now time.Time) (session.Request, error) {
	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, ok := session.ParseMode(modeFlag)
	if !ok {
		return session.Request{}, fmt.Errorf("unknown mode %q", modeFlag)
	}
	lessonID, _ := cmd.Flags().GetString("lesson")
	unitID, _ := cmd.Flags().GetString("unit")
	items, _ := cmd.Flags().GetStringSlice("items")
	count, _ := cmd.Flags().GetInt("count")

	req := session.Request{Mode: mode, LessonID: lessonID, UnitID: unitID, ItemIDs: items, Count: count}
	switch mode {
	case session.ModeLesson:
		if req.LessonID == "" {
			req.LessonID = nextLesson(e.cat.Lessons(), svc.LessonScores())
		}
	case session.ModeMistakeReview:
		req.Mistakes = svc.RecentMistakes(now, mistakeWindowDays)
	}
	return req, nil
}

// nextLesson picks the first lesson without a score, or the first lesson.
func nextLesson(lessons []catalog.Lesson, scores map[string]int) string {
	for _, l := range lessons {
		if _, done := scores[l.ID]; !done {
			return l.ID
		}
	}
	if len(lessons) > 0 {
		return lessons[0].ID
	}
	return ""
}

type sessionRunner struct {
	env     *env
	svc     *learner.Service
	coach   *coach.Service
	drainer *outbox.Drainer
	state   *session.State
}

// run asks questions until the plan is done, time runs out, attempts
// run out or the learner quits. It reports whether the plan completed.
func (r *sessionRunner) run(ctx context.Context, in *bufio.Scanner) (bool, error) {
	out := r.env.out
	plan := r.state.Plan
	if plan.TimeLimit > 0 {
		fmt.Fprintln(out, theme.Warning.Render(fmt.Sprintf("Blitz: %d questions, %s on the clock.", plan.Len(), plan.TimeLimit)))
	}

	for !r.state.Done() {
		r.showNote()
		now := r.env.now()
		if r.state.TimeExpired(now) {
			fmt.Fprintln(out, theme.Warning.Render("Time!"))
			return true, nil
		}

		q := r.state.Current()
		fmt.Fprint(out, "\n"+components.RenderQuestion(q, r.state.Index+1, plan.Len()))
		fmt.Fprint(out, theme.Selected.Render("> "))
		if !in.Scan() {
			return false, in.Err()
		}
		line := in.Text()
		if strings.EqualFold(strings.TrimSpace(line), "q") {
			return false, nil
		}

		fb, ok := session.HandleAnswer(r.state, components.ParseResponse(q, line), r.env.now())
		if !ok {
			fmt.Fprintln(out, theme.Warning.Render("Time!"))
			return true, nil
		}
		fmt.Fprint(out, components.RenderFeedback(fb))

		h := q.Header()
		res, err := r.svc.SubmitAnswer(ctx, learner.Answer{
			SessionID:     plan.SessionID,
			ItemID:        h.ItemID,
			Kind:          h.Kind,
			Phase:         h.Phase,
			ConceptID:     h.ConceptID,
			Correct:       fb.Correct,
			Elapsed:       fb.Elapsed,
			MistakeReview: plan.Mode == session.ModeMistakeReview,
		}, r.env.now())
		if err != nil {
			return false, err
		}
		if res.XP > 0 {
			fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("+%d XP", res.XP)))
		}
		if res.ConceptMastered && h.Phase == quiz.PhaseIntro {
			fmt.Fprintln(out, theme.Correct.Render("Concept learned."))
		}

		if !fb.Correct && h.Phase != quiz.PhaseIntro {
			r.requestNote(ctx, h)
			if res.AttemptsRemaining == 0 {
				fmt.Fprintln(out, theme.Incorrect.Render("Out of attempts. Session over."))
				return false, nil
			}
		}
	}
	r.showNote()
	return true, nil
}

func (r *sessionRunner) requestNote(ctx context.Context, h quiz.Base) {
	if r.coach == nil {
		return
	}
	m := r.svc.RecentMistakes(r.env.now(), mistakeWindowDays)
	in, err := r.coach.InputFor(lastMistakeFor(m, h.ItemID, string(h.Kind)), m, r.svc.Mastery().Level(h.ItemID))
	if err != nil {
		r.env.log.Debug("no coach input", "item_id", h.ItemID, "error", err)
		return
	}
	r.coach.RequestNote(llm.WithLearner(ctx, r.svc.LearnerID()), in)
}

func (r *sessionRunner) showNote() {
	if r.coach == nil {
		return
	}
	if note, ok := r.coach.ConsumeNote(); ok {
		fmt.Fprint(r.env.out, renderNote(note))
	}
}

// finish pays out a completed session and prints the summary.
func (r *sessionRunner) finish(ctx context.Context, completed bool) error {
	out := r.env.out
	sum := session.BuildSummary(r.state, r.env.now())
	fmt.Fprintf(out, "\n%s  %d/%d correct (%.0f%%) in %s\n",
		theme.Title.Render("Session complete"),
		sum.TotalCorrect, sum.TotalQuestions, sum.Accuracy*100, sum.Duration.Round(time.Second))

	for _, ir := range sum.ItemResults {
		if ir.Accuracy < 1 {
			name := ir.ItemID
			if it, ok := r.env.cat.Item(ir.ItemID); ok {
				name = it.PrimaryName
			}
			fmt.Fprintf(out, "  %s %d/%d\n", theme.Label.Render(name), ir.Correct, ir.Attempted)
		}
	}

	if !completed {
		return nil
	}
	ls, err := r.svc.FinishLesson(ctx, learner.LessonResult{
		LessonID:  r.state.Plan.LessonID,
		SessionID: r.state.Plan.SessionID,
		Correct:   sum.GradedCorrect,
		Total:     sum.GradedQuestions,
	}, r.env.now())
	if err != nil {
		return err
	}
	if r.drainer != nil {
		r.drainer.Kick()
	}

	line := fmt.Sprintf("+%d XP", ls.Outcome.XP)
	if ls.Outcome.Perfect {
		line += " (perfect)"
	}
	if ls.Outcome.Doubled {
		line += " (doubled)"
	}
	fmt.Fprintln(out, theme.Correct.Render(line))
	if r.state.Plan.LessonID != "" {
		best := ""
		if ls.NewBest {
			best = " new best"
		}
		fmt.Fprintf(out, "Score %d%%%s  %s\n", ls.Score, best, components.Stars(ls.Stars))
	}
	fmt.Fprintln(out, theme.Warning.Render("Reward: "+describeReward(ls)))
	return nil
}

func describeReward(ls learner.LessonSummary) string {
	if ls.Reward.Amount > 0 {
		return fmt.Sprintf("%d coins", ls.Reward.Amount)
	}
	return strings.ReplaceAll(string(ls.Reward.Kind), "-", " ")
}

func (r *sessionRunner) logSession(ctx context.Context, action string) {
	err := r.env.store.EventRepo().AppendSessionEvent(ctx, store.SessionEventData{
		LearnerID:       r.svc.LearnerID(),
		SessionID:       r.state.Plan.SessionID,
		Mode:            string(r.state.Plan.Mode),
		Action:          action,
		QuestionsServed: r.state.TotalAnswered,
		CorrectAnswers:  r.state.TotalCorrect,
		DurationSecs:    int(r.env.now().Sub(r.state.StartTime).Seconds()),
	})
	if err != nil {
		r.env.log.Warn("session event not recorded", "action", action, "error", err)
	}
}
