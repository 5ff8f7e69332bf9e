package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Deliver queued reward events to the configured ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		d, closeTransport, err := e.drainer()
		if err != nil {
			return fmt.Errorf("sync transport: %w", err)
		}
		defer closeTransport()
		if d == nil {
			fmt.Fprintln(e.out, "Sync is disabled. Set RXDRILL_SYNC_TRANSPORT to http, redis or amqp.")
			return nil
		}

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(e.out, "Syncing every %s. Ctrl-C to stop.\n", e.cfg.Sync.Interval)
			if err := d.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		}

		res, err := d.Drain(cmd.Context())
		if err != nil {
			return err
		}
		left, err := e.outbox.Pending(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Delivered %d, failed %d, %d still queued.\n", res.Delivered, res.Failed, left)
		if res.Rejected > 0 {
			fmt.Fprintf(e.out, "%d event(s) refused by the ledger and dropped; see the log.\n", res.Rejected)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolP("watch", "w", false, "Keep draining until interrupted")
}
