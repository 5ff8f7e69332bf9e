package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/rxdrill/internal/mastery"
	"github.com/abhisek/rxdrill/internal/spacedrep"
	"github.com/abhisek/rxdrill/internal/ui/components"
	"github.com/abhisek/rxdrill/internal/ui/theme"
)

// reviewRows caps the review list in stats.
const reviewRows = 8

func reviewWhen(r mastery.ReviewEntry) string {
	switch r.Status {
	case spacedrep.ReviewOverdue:
		return theme.Incorrect.Render(fmt.Sprintf("overdue %.1f days", r.OverdueDays))
	case spacedrep.ReviewDue:
		return theme.Warning.Render("due now")
	default:
		return theme.Hint.Render(fmt.Sprintf("due in %d day(s)", r.DaysUntil))
	}
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		svc.Resume(now)
		st := svc.Stats()
		out := e.out

		row := func(label string, value any) {
			fmt.Fprintf(out, "%s %v\n", theme.Label.Render(label), value)
		}

		fmt.Fprintln(out, theme.Title.Render(e.cat.Title()))
		row("Learner", svc.LearnerID())
		row("Tier", st.Tier.DisplayName())
		row("XP", fmt.Sprintf("%d total, %d this week", st.XPTotal, st.XPThisWeek))
		row("Streak", fmt.Sprintf("%d days (best %d), %d saves", st.StreakCurrent, st.StreakBest, st.StreakSaves))
		attempts := fmt.Sprintf("%d/%d", st.AttemptsRemaining, st.AttemptsMax)
		if wait := st.UntilNextAttempt(now); wait > 0 {
			attempts += fmt.Sprintf(", next in %s", wait.Round(time.Minute))
		}
		row("Attempts", attempts)
		row("Coins", st.Currency)
		if st.DoubleReward {
			row("Bonus", "next lesson earns double XP")
		}

		answered, correct, err := e.store.EventRepo().AnswerTotals(ctx, svc.LearnerID())
		if err != nil {
			return fmt.Errorf("answer totals: %w", err)
		}
		acc := 0.0
		if answered > 0 {
			acc = float64(correct) / float64(answered) * 100
		}
		row("Answers", fmt.Sprintf("%d correct of %d (%.0f%%)", correct, answered, acc))
		row("Lessons", st.LessonsCompleted)
		mastered := 0
		for _, it := range e.cat.Items() {
			if svc.Mastery().State(it.ID, now) == mastery.StateMastered {
				mastered++
			}
		}
		row("Mastered", fmt.Sprintf("%d of %d drugs", mastered, len(e.cat.Items())))

		if pending, err := e.outbox.Pending(ctx); err == nil && pending > 0 {
			row("Unsynced", fmt.Sprintf("%d reward event(s)", pending))
		}

		if queue := svc.Mastery().ReviewQueue(now, reviewRows); len(queue) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, theme.Subtitle.Render("Reviews"))
			for _, r := range queue {
				name := r.ItemID
				if it, ok := e.cat.Item(r.ItemID); ok {
					name = it.PrimaryName
				}
				fmt.Fprintf(out, "%s L%d  %s\n", theme.Label.Render(name), r.Level, reviewWhen(r))
			}
		}

		scores := svc.LessonScores()
		if len(scores) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, theme.Subtitle.Render("Lessons"))
			stars := svc.LessonStars()
			for _, l := range e.cat.Lessons() {
				score, ok := scores[l.ID]
				if !ok {
					continue
				}
				fmt.Fprintf(out, "%s %3d%%  %s\n", theme.Label.Render(l.Title), score, components.Stars(stars[l.ID]))
			}
		}
		return nil
	},
}
