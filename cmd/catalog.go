package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rxdrill/internal/catalog"
	"github.com/abhisek/rxdrill/internal/ui/theme"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show the content catalog's units and lessons",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  %s\n", theme.Title.Render(cat.Title()), theme.Hint.Render("v"+cat.Version()))
		fmt.Fprintf(out, "%d drugs in %s\n", len(cat.Items()), strings.Join(cat.Categories(), ", "))
		for _, u := range cat.Units() {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%s %s\n", theme.Subtitle.Render(u.Title), theme.Hint.Render(u.ID))
			for _, id := range u.LessonIDs {
				l, err := cat.Lesson(id)
				if err != nil {
					continue
				}
				fmt.Fprintf(out, "  %-24s %-16s %d drugs, %d concepts\n", l.Title, l.ID, len(l.ItemIDs), len(l.Concepts))
			}
		}
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check a catalog file without using it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d drugs, %d lessons, %d units\n",
			len(cat.Items()), len(cat.Lessons()), len(cat.Units()))
		return nil
	},
}

var catalogPullCmd = &cobra.Command{
	Use:   "pull <url>",
	Short: "Download a published catalog and install it",
	Long: "Downloads a catalog, verifies it against checksums.txt in the same directory\n" +
		"when one is published, and installs it next to the database unless --out is given.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		target, _ := cmd.Flags().GetString("out")
		if target == "" {
			target = cfg.CatalogPath
		}
		if target == "" {
			dbPath, err := resolveDBPath(cfg)
			if err != nil {
				return err
			}
			target = filepath.Join(filepath.Dir(dbPath), "catalog.json")
		}

		f, err := catalog.NewFetcher(nil).Fetch(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !f.Verified {
			fmt.Fprintln(out, theme.Warning.Render("No checksums.txt published; installing unverified."))
		}
		if err := catalog.Install(f, target); err != nil {
			return err
		}
		fmt.Fprintf(out, "Installed %s (%d drugs) to %s\n", f.Catalog.Title(), len(f.Catalog.Items()), target)
		if cfg.CatalogPath != target {
			fmt.Fprintf(out, "Set RXDRILL_CATALOG=%s to use it.\n", target)
		}
		return nil
	},
}

func init() {
	catalogPullCmd.Flags().StringP("out", "o", "", "Install path (defaults to RXDRILL_CATALOG or the data dir)")

	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogPullCmd)
}
