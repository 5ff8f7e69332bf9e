package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rxdrill/internal/coach"
	"github.com/abhisek/rxdrill/internal/llm"
	"github.com/abhisek/rxdrill/internal/progress"
	"github.com/abhisek/rxdrill/internal/ui/theme"
)

var errNoProvider = errors.New("no LLM provider configured")

// newCoach wires the discovered LLM provider into a coach.
func newCoach(ctx context.Context, e *env) (*coach.Service, error) {
	cfg, ok := llm.DiscoverConfig()
	if !ok {
		return nil, errNoProvider
	}
	p, err := llm.NewProvider(ctx, cfg, e.store.EventRepo(), e.log)
	if err != nil {
		return nil, err
	}
	ccfg := coach.DefaultConfig()
	if cfg.Timeout > 0 {
		ccfg.Timeout = cfg.Timeout
	}
	return coach.NewService(p, e.cat, ccfg, e.log), nil
}

// lastMistakeFor returns the newest recorded mistake on itemID, or a
// fresh one when the answer was never queued.
func lastMistakeFor(recent []progress.Mistake, itemID, kind string) progress.Mistake {
	for _, m := range recent {
		if m.ItemID == itemID && m.Kind == kind {
			return m
		}
	}
	return progress.Mistake{ItemID: itemID, Kind: kind}
}

func renderNote(n *coach.Note) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(n.Headline) + "\n")
	b.WriteString(theme.Body.Render(n.Explanation) + "\n")
	if n.Mnemonic != "" {
		b.WriteString(theme.Hint.Render("Remember: "+n.Mnemonic) + "\n")
	}
	if n.Check.Prompt != "" {
		b.WriteString(theme.Value.Render("Check: "+n.Check.Prompt) + "\n")
		b.WriteString(theme.Hint.Render("("+n.Check.Answer+")") + "\n")
	}
	return theme.Card.Render(b.String()) + "\n"
}

var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "Ask the LLM coach about your mistakes",
}

var coachNoteCmd = &cobra.Command{
	Use:   "note [item-id]",
	Short: "Explain a missed drug (defaults to the most recent mistake)",
	Args:  cobra.MaximumNArgs(1),
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
		c, err := newCoach(ctx, e)
		if err != nil {
			return err
		}

		recent := svc.RecentMistakes(e.now(), mistakeWindowDays)
		var m progress.Mistake
		switch {
		case len(args) == 1:
			m = progress.Mistake{ItemID: args[0]}
			for _, r := range recent {
				if r.ItemID == args[0] {
					m = r
					break
				}
			}
		case len(recent) > 0:
			m = recent[0]
		default:
			fmt.Fprintln(e.out, "No recent mistakes. Name an item id to ask about it anyway.")
			return nil
		}

		in, err := c.InputFor(m, recent, svc.Mastery().Level(m.ItemID))
		if err != nil {
			return err
		}
		note, err := c.Note(llm.WithLearner(ctx, svc.LearnerID()), in)
		if err != nil {
			return err
		}
		fmt.Fprint(e.out, renderNote(note))
		return nil
	},
}

var coachDigestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Summarise recent mistakes and suggest what to review",
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
		c, err := newCoach(ctx, e)
		if err != nil {
			return err
		}

		d, err := c.Digest(llm.WithLearner(ctx, svc.LearnerID()), svc.RecentMistakes(e.now(), mistakeWindowDays), e.now())
		if errors.Is(err, coach.ErrNoMistakes) {
			fmt.Fprintln(e.out, "No recent mistakes to review.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(e.out, theme.Body.Render(d.Summary))
		for _, f := range d.Focus {
			fmt.Fprintln(e.out, "  • "+f)
		}
		return nil
	},
}

func init() {
	coachCmd.AddCommand(coachNoteCmd)
	coachCmd.AddCommand(coachDigestCmd)
}
