package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/womenwealthwave/wealthwave/internal/market"
	"github.com/womenwealthwave/wealthwave/pkg/utils"
)

// --- Market Command ---

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Watch the simulated NIFTY 50 and gold ticker",
	Long: `Watch the simulated NIFTY 50 and gold (10g) ticker.

Prices follow a bounded random walk and are for illustration only.
With --ticks 0 the starting snapshot is printed and the command exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ticks, _ := cmd.Flags().GetInt("ticks")
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = cfg.Market.Interval()
		} else if err := market.CheckInterval(interval); err != nil {
			return fmt.Errorf("--interval: %w", err)
		}

		t := market.NewTickerFromInstruments(interval, cfg.Market.Window, cfg.Market.Instruments, log)
		out := cmd.OutOrStdout()
		printQuotes(out, t.Snapshot())
		if ticks <= 0 {
			return nil
		}

		batches, cancel := t.Subscribe()
		defer cancel()

		ctx := cmd.Context()
		if err := t.Start(ctx); err != nil {
			return err
		}
		defer t.Stop()

		fmt.Fprintf(out, "\n⏱  ticking every %s (Ctrl+C to stop)\n", t.Interval())
		for seen := 0; seen < ticks; {
			select {
			case <-ctx.Done():
				return nil
			case quotes, ok := <-batches:
				if !ok {
					return nil
				}
				seen++
				fmt.Fprintln(out)
				printQuotes(out, quotes)
			}
		}
		return nil
	},
}

func init() {
	marketCmd.Flags().Int("ticks", 5, "number of ticks to print before exiting (0 = snapshot only)")
	marketCmd.Flags().Duration("interval", 0, "tick interval in whole seconds, e.g. 2s (default from config, minimum 1s)")
	rootCmd.AddCommand(marketCmd)
}

func printQuotes(w io.Writer, quotes []market.Quote) {
	for _, q := range quotes {
		arrow := "▲"
		if q.ChangePercent < 0 {
			arrow = "▼"
		}
		fmt.Fprintf(w, "  %-12s %14s  %s %-8s  range %s to %s  %s\n",
			q.Name, utils.FormatINR(q.Price), arrow, utils.FormatPct(q.ChangePercent),
			utils.FormatINR(q.Min), utils.FormatINR(q.Max), utils.FormatTimeIST(q.At))
	}
}
