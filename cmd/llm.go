package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rxdrill/internal/llm"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect coach LLM configuration and usage",
}

var llmConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show which LLM provider the coach would use",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg, ok := llm.DiscoverConfig()
		if !ok {
			fmt.Fprintln(out, "No LLM provider configured. Set RXDRILL_LLM_PROVIDER or a provider API key.")
			return nil
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		model := ""
		switch cfg.Provider {
		case llm.ProviderAnthropic:
			model = cfg.Anthropic.Model
		case llm.ProviderOpenAI:
			model = cfg.OpenAI.Model
		case llm.ProviderGemini:
			model = cfg.Gemini.Model
		case llm.ProviderOpenRouter:
			model = cfg.OpenRouter.Model
		}
		fmt.Fprintf(out, "%-10s %s\n", "Provider", cfg.Provider)
		if model != "" {
			fmt.Fprintf(out, "%-10s %s\n", "Model", model)
		}
		fmt.Fprintf(out, "%-10s %s\n", "Timeout", cfg.Timeout)
		fmt.Fprintf(out, "%-10s %d\n", "Retries", cfg.Retry.MaxAttempts)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost by model",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		usage, err := e.store.EventRepo().LLMUsage(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		out := e.out
		if len(usage) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}

		fmt.Fprintln(out, "Estimated Cost (USD)")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		fmt.Fprintf(out, "%-32s  %6s  %6s  %10s  %10s  %10s\n",
			"Model", "Calls", "OK", "Input", "Output", "Cost")
		fmt.Fprintln(out, strings.Repeat("─", 80))

		var totalCost float64
		var totalCalls, totalIn, totalOut int
		var unknownModels []string
		for _, u := range usage {
			totalCalls += u.Requests
			totalIn += u.InputTokens
			totalOut += u.OutputTokens
			cost := llm.LookupCost(u.Model)
			if cost == nil {
				unknownModels = append(unknownModels, u.Model)
				fmt.Fprintf(out, "%-32s  %6d  %6d  %10d  %10d  %10s\n",
					truncate(u.Model, 32), u.Requests, u.Succeeded, u.InputTokens, u.OutputTokens, "?")
				continue
			}
			c := cost.Cost(u.InputTokens, u.OutputTokens)
			totalCost += c
			fmt.Fprintf(out, "%-32s  %6d  %6d  %10d  %10d  %10s\n",
				truncate(u.Model, 32), u.Requests, u.Succeeded, u.InputTokens, u.OutputTokens, formatCost(c))
		}

		fmt.Fprintln(out, strings.Repeat("─", 80))
		label := "TOTAL"
		if len(unknownModels) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Fprintf(out, "%-32s  %6d  %6s  %10d  %10d  %10s\n",
			label, totalCalls, "", totalIn, totalOut, formatCost(totalCost))

		if len(unknownModels) > 0 {
			fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
		}
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmCmd.AddCommand(llmConfigCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
