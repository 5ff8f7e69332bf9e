package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/rxdrill/internal/ledger"
	"github.com/abhisek/rxdrill/internal/ui/theme"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Run or query the reference reward ledger",
}

var ledgerServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = e.cfg.LedgerAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return ledger.Serve(ctx, addr, e.store.LedgerRepo(), e.log)
	},
}

var ledgerBalanceCmd = &cobra.Command{
	Use:   "balance [learner-id]",
	Short: "Show credited coins, XP and recent entries",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		id := e.cfg.LearnerID
		if len(args) == 1 {
			id = args[0]
		}
		repo := e.store.LedgerRepo()
		bal, err := repo.Balance(ctx, id)
		if err != nil {
			return err
		}
		xp, err := repo.XPTotal(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%s %d  %s %d\n", theme.Label.Render("Balance"), bal, theme.Label.Render("XP"), xp)

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := repo.Entries(ctx, id, limit)
		if err != nil {
			return err
		}
		for _, en := range entries {
			fmt.Fprintf(e.out, "  %s  %+5d  %s\n",
				theme.Hint.Render(en.ReceivedAt.In(e.cfg.Location).Format("2006-01-02 15:04")), en.Amount, en.Source)
		}
		return nil
	},
}

func init() {
	ledgerServeCmd.Flags().String("addr", "", "Listen address (overrides RXDRILL_LEDGER_ADDR)")
	ledgerBalanceCmd.Flags().IntP("limit", "n", 10, "Number of entries to show")

	ledgerCmd.AddCommand(ledgerServeCmd)
	ledgerCmd.AddCommand(ledgerBalanceCmd)
}
