package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rxdrill",
	Short: "Adaptive pharmacology flashcards",
	Long: "rxdrill drills brand and generic names, classes, uses and effects of common drugs\n" +
		"with spaced review, mistake remediation, daily quests and weekly tiers.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides RXDRILL_DB)")
	pf.String("catalog", "", "Path to a JSON content catalog (overrides RXDRILL_CATALOG)")
	pf.String("learner", "", "Learner id (overrides RXDRILL_LEARNER)")

	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(questsCmd)
	rootCmd.AddCommand(shopCmd)
	rootCmd.AddCommand(mistakesCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(coachCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}
