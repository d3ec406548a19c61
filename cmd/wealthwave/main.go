// WealthWave: personal finance companion for women.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/womenwealthwave/wealthwave/internal/config"
	"github.com/womenwealthwave/wealthwave/internal/llm"
	"github.com/womenwealthwave/wealthwave/internal/logging"
	"github.com/womenwealthwave/wealthwave/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command's pre-run hook.
var (
	cfg *config.Config
	log *logrus.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wealthwave",
	Short: "WealthWave — personal finance companion for women",
	Long: `WealthWave
Financial calculators (EMI, SIP, goal, tax, savings), a finance-only chat
assistant, a simulated NIFTY/gold ticker, learning content and plan reports,
from the terminal or over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		log = logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "WealthWave %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		line := "═══════════════════════════════════════"

		fmt.Fprintln(out, line)
		fmt.Fprintln(out, "  WealthWave — System Status")
		fmt.Fprintln(out, line)
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Market Status: %s\n", utils.MarketStatus())
		fmt.Fprintf(out, "  Time (IST):    %s\n", utils.FormatDateTimeIST(utils.NowIST()))
		if f := cfg.File(); f != "" {
			fmt.Fprintf(out, "  Config file:   %s\n", f)
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    LLM Provider:  %s (model: %s)\n", cfg.LLM.Primary, cfg.LLM.Model)
		fmt.Fprintf(out, "    Remote chat:   %s\n", cfg.Chat.BaseURL)
		fmt.Fprintf(out, "    API Server:    %s\n", cfg.API.Addr())
		fmt.Fprintf(out, "    Market tick:   every %s, %d instruments\n", cfg.Market.Interval(), len(cfg.Market.Instruments))
		fmt.Fprintf(out, "    Tax slabs:     %d\n", len(cfg.Tax.Slabs))
		fmt.Fprintf(out, "    Reading list:  %d feeds\n", len(cfg.Learn.Feeds))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
		}

		if check, _ := cmd.Flags().GetBool("check"); check {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "  LLM Providers:")
			router, err := llm.NewRouterFromConfig(cfg.LLM, log)
			if err != nil {
				fmt.Fprintf(out, "    ❌ %v\n", err)
			} else {
				for name, err := range router.HealthCheck(cmd.Context()) {
					if err != nil {
						fmt.Fprintf(out, "    %-12s ❌ %v\n", name, err)
					} else {
						fmt.Fprintf(out, "    %-12s ✅ reachable\n", name)
					}
				}
			}
		}

		fmt.Fprintln(out, line)
		return nil
	},
}

func init() {
	statusCmd.Flags().Bool("check", false, "ping the configured LLM providers")
}

// --- Config Command ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.ToYAML(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
