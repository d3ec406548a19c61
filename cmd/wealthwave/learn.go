package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/womenwealthwave/wealthwave/internal/learn"
	"github.com/womenwealthwave/wealthwave/pkg/utils"
)

// --- Learn Command ---

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Show learning modules and the latest finance reading",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cat := learn.DefaultCatalog()

		fmt.Fprintf(out, "📚 Learning (%d%% overall)\n\n", cat.OverallCompletion())
		fmt.Fprintln(out, "  Quickstart")
		for _, m := range cat.Quickstart {
			fmt.Fprintf(out, "    %s %-40s %d/%d lessons  %3d%%\n", m.Icon, m.Title, m.Progress, m.Total, m.Completion)
		}
		fmt.Fprintln(out, "\n  Deep dives")
		for _, m := range cat.DeepDive {
			fmt.Fprintf(out, "    %s %-40s %d weeks      %3d%%\n", m.Icon, m.Title, m.Weeks, m.Completion)
		}

		topics := make([]string, len(cat.Topics))
		for i, tp := range cat.Topics {
			topics[i] = tp.Label
			if tp.Badge > 0 {
				topics[i] += fmt.Sprintf(" (%d new)", tp.Badge)
			}
		}
		fmt.Fprintf(out, "\n  Topics: %s\n", strings.Join(topics, " · "))

		fmt.Fprintln(out, "\n  Insurance picks")
		for _, p := range cat.Insurance {
			badge := ""
			if p.Badge != "" {
				badge = "[" + p.Badge + "]"
			}
			fmt.Fprintf(out, "    %-20s %-28s %s/month %s\n", p.Name, p.Coverage, utils.FormatRupees(p.MonthlyPremium), badge)
		}

		n, _ := cmd.Flags().GetInt("articles")
		if n <= 0 {
			return nil
		}

		feed := learn.NewFeed(cfg.Learn, log)
		sources := feed.Sources()
		names := make([]string, len(sources))
		for i, src := range sources {
			names[i] = src.Name
		}
		fmt.Fprintf(out, "\n📰 Reading from %s\n", strings.Join(names, ", "))

		articles, err := feed.Articles(cmd.Context(), n)
		if err != nil {
			return fmt.Errorf("loading articles: %w", err)
		}
		fmt.Fprintf(out, "   Latest %d articles\n", len(articles))
		for _, a := range articles {
			when := ""
			if !a.PublishedAt.IsZero() {
				when = a.PublishedAt.In(utils.IST).Format("02 Jan")
			}
			fmt.Fprintf(out, "  • %s  [%s %s]\n    %s\n", a.Title, a.Source, when, a.URL)
		}
		return nil
	},
}

func init() {
	learnCmd.Flags().Int("articles", 0, "also fetch N articles from the configured feeds")
	rootCmd.AddCommand(learnCmd)
}
