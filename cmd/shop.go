package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/rxdrill/internal/learner"
	"github.com/abhisek/rxdrill/internal/progress"
	"github.com/abhisek/rxdrill/internal/ui/theme"
)

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Spend coins on attempt refills and streak saves",
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
		st := svc.Stats()
		fmt.Fprintf(e.out, "%s %d\n", theme.Label.Render("Coins"), st.Currency)
		fmt.Fprintf(e.out, "  refill       %3d coins  refill all attempts (%d/%d)\n", progress.RefillCost, st.AttemptsRemaining, st.AttemptsMax)
		fmt.Fprintf(e.out, "  streak-save  %3d coins  bridge a missed day (%d/%d held)\n", progress.StreakSaveCost, st.StreakSaves, st.StreakSaveCap())
		return nil
	},
}

// purchase loads the learner, applies buy and saves when it succeeded.
func purchase(cmd *cobra.Command, what string, buy func(*learner.Service, time.Time) bool) error {
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
	if !buy(svc, e.now()) {
		fmt.Fprintf(e.out, "No %s available right now (%d coins).\n", what, svc.Stats().Currency)
		return nil
	}
	if err := svc.Save(ctx, e.now()); err != nil {
		return err
	}
	fmt.Fprintln(e.out, theme.Correct.Render(fmt.Sprintf("Got %s. %d coins left.", what, svc.Stats().Currency)))
	return nil
}

var shopRefillCmd = &cobra.Command{
	Use:   "refill",
	Short: "Refill all attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return purchase(cmd, "a refill", func(svc *learner.Service, now time.Time) bool {
			return svc.RefillAttempts(now)
		})
	},
}

var shopStreakSaveCmd = &cobra.Command{
	Use:   "streak-save",
	Short: "Buy a streak save",
	RunE: func(cmd *cobra.Command, args []string) error {
		return purchase(cmd, "a streak save", func(svc *learner.Service, now time.Time) bool {
			return svc.BuyStreakSave()
		})
	},
}

var shopUseSaveCmd = &cobra.Command{
	Use:   "use-save",
	Short: "Spend a held streak save on a missed day",
	RunE: func(cmd *cobra.Command, args []string) error {
		return purchase(cmd, "a streak bridge", func(svc *learner.Service, now time.Time) bool {
			return svc.UseStreakSave(now)
		})
	},
}

func init() {
	shopCmd.AddCommand(shopRefillCmd)
	shopCmd.AddCommand(shopStreakSaveCmd)
	shopCmd.AddCommand(shopUseSaveCmd)
}
