package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/rxdrill/internal/learner"
	"github.com/abhisek/rxdrill/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start the learner over from a fresh snapshot",
	Long:  "Writes a fresh snapshot for the learner. Older snapshots and the answer log are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("reset discards progress; rerun with --yes")
		}
		ctx := cmd.Context()
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		now := e.now()
		snap := learner.Defaults(now)
		data, err := snap.Encode()
		if err != nil {
			return err
		}
		if err := e.store.SnapshotRepo().Save(ctx, &store.Snapshot{
			LearnerID: e.cfg.LearnerID,
			Timestamp: now.UTC(),
			Data:      data,
		}); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		fmt.Fprintf(e.out, "Learner %q reset.\n", e.cfg.LearnerID)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
