package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/rxdrill/internal/progress"
	"github.com/abhisek/rxdrill/internal/ui/components"
	"github.com/abhisek/rxdrill/internal/ui/theme"
)

var questsCmd = &cobra.Command{
	Use:   "quests",
	Short: "Show today's quests",
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
		for _, q := range svc.Stats().DailyQuests(e.now()) {
			status := theme.Hint.Render(fmt.Sprintf("%d coins", q.Reward))
			switch {
			case q.Claimed:
				status = theme.Correct.Render("claimed")
			case q.Completed:
				status = theme.Warning.Render(fmt.Sprintf("claim with `rxdrill quests claim %s`", q.ID))
			}
			bar := components.NewProgressBar(q.Title, q.Current, q.Target, 20)
			fmt.Fprintf(e.out, "%s  %s\n", bar.View(), status)
		}
		return nil
	},
}

var questsClaimCmd = &cobra.Command{
	Use:   "claim <quest-id>",
	Short: "Claim a completed quest's reward",
	Args:  cobra.ExactArgs(1),
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
		reward, ok, err := svc.ClaimQuest(ctx, progress.QuestID(args[0]), now)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(e.out, "Quest %q is not ready to claim.\n", args[0])
			return nil
		}
		if err := svc.Save(ctx, now); err != nil {
			return err
		}
		fmt.Fprintln(e.out, theme.Correct.Render(fmt.Sprintf("+%d coins", reward)))
		return nil
	},
}

func init() {
	questsCmd.AddCommand(questsClaimCmd)
}
