package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/rxdrill/internal/ui/theme"
)

var mistakesCmd = &cobra.Command{
	Use:   "mistakes",
	Short: "List recent mistakes",
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
		days, _ := cmd.Flags().GetInt("days")
		recent := svc.RecentMistakes(e.now(), days)
		if len(recent) == 0 {
			fmt.Fprintln(e.out, "No mistakes in that window.")
			return nil
		}
		for _, m := range recent {
			name := m.ItemID
			if it, ok := e.cat.Item(m.ItemID); ok {
				name = it.PrimaryName
			}
			fmt.Fprintf(e.out, "%s  %s %s\n",
				theme.Hint.Render(m.OccurredAt.In(e.cfg.Location).Format("2006-01-02 15:04")),
				theme.Label.Render(name), m.Kind)
		}
		fmt.Fprintln(e.out, theme.Hint.Render("Review them with `rxdrill session -m mistake-review`."))
		return nil
	},
}

var mistakesPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop mistakes older than --days",
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
		days, _ := cmd.Flags().GetInt("days")
		now := e.now()
		n := svc.PruneMistakes(now, days)
		if err := svc.Save(ctx, now); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Pruned %d mistake(s).\n", n)
		return nil
	},
}

func init() {
	mistakesCmd.PersistentFlags().Int("days", mistakeWindowDays, "Window in days")
	mistakesCmd.AddCommand(mistakesPruneCmd)
}
