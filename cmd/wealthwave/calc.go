package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/womenwealthwave/wealthwave/internal/calc"
	"github.com/womenwealthwave/wealthwave/internal/market"
	"github.com/womenwealthwave/wealthwave/internal/report"
	"github.com/womenwealthwave/wealthwave/pkg/utils"
)

func init() {
	rootCmd.AddCommand(emiCmd, sipCmd, goalCmd, taxCmd, savingsCmd, planCmd)

	emiCmd.Flags().String("principal", "500000", "loan amount in rupees (accepts 1.5L, 2 crore, 15k)")
	emiCmd.Flags().Float64("rate", 10.5, "annual interest rate in percent")
	emiCmd.Flags().Int("months", 36, "tenure in months")
	emiCmd.Flags().Bool("schedule", false, "print the month-by-month schedule")

	sipCmd.Flags().String("monthly", "5000", "monthly investment in rupees (accepts 1.5L, 2 crore, 15k)")
	sipCmd.Flags().Float64("rate", 12, "expected annual return in percent")
	sipCmd.Flags().Float64("years", 10, "investment period in years")
	sipCmd.Flags().String("timing", string(calc.TimingStart), `when each instalment is paid: "start" or "end" of month`)

	goalCmd.Flags().String("target", "100000", "goal amount in rupees (accepts 1.5L, 2 crore, 15k)")
	goalCmd.Flags().String("monthly", "5000", "monthly contribution in rupees (accepts 1.5L, 2 crore, 15k)")
	goalCmd.Flags().Float64("rate", 6, "expected annual return in percent")

	taxCmd.Flags().String("income", "900000", "annual income in rupees (accepts 1.5L, 2 crore, 15k)")
	taxCmd.Flags().String("deductions", "150000", "deductions in rupees (accepts 1.5L, 2 crore, 15k)")
	taxCmd.Flags().Bool("breakdown", false, "show tax per slab")

	savingsCmd.Flags().String("current", "150000", "current savings in rupees (accepts 1.5L, 2 crore, 15k)")
	savingsCmd.Flags().String("goal", "500000", "savings goal in rupees (accepts 1.5L, 2 crore, 15k)")
	savingsCmd.Flags().String("monthly", "15000", "monthly saving in rupees (accepts 1.5L, 2 crore, 15k)")

	planCmd.Flags().StringP("file", "f", "", "plan file (YAML or JSON)")
	planCmd.Flags().String("format", string(report.FormatText), "output format: text, html or pdf")
	planCmd.Flags().StringP("out", "o", "", "write the report to this file instead of stdout")
	planCmd.Flags().String("pdf", "", "shorthand for --format pdf --out FILE")
	planCmd.Flags().Int("market-ticks", 0, "include a simulated market snapshot after N ticks")
	_ = planCmd.MarkFlagRequired("file")
}

// --- EMI ---

var emiCmd = &cobra.Command{
	Use:   "emi",
	Short: "Monthly instalment for a loan",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := calc.LoanParameters{}
		var err error
		p.Principal, err = amountFlag(cmd, "principal")
		if err != nil {
			return err
		}
		p.AnnualRatePercent, _ = cmd.Flags().GetFloat64("rate")
		p.TermMonths, _ = cmd.Flags().GetInt("months")

		res, err := calc.Amortize(p)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "🏦 Loan EMI")
		printRows(out, [][2]string{
			{"Monthly EMI", utils.FormatRupees(res.MonthlyPayment)},
			{"Total interest", utils.FormatRupees(res.TotalInterest)},
			{"Total payment", utils.FormatRupees(res.TotalPayment)},
		})

		if show, _ := cmd.Flags().GetBool("schedule"); show {
			rows, err := calc.Schedule(p)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n  %5s %14s %14s %14s %16s\n", "Month", "Payment", "Principal", "Interest", "Balance")
			for _, r := range rows {
				fmt.Fprintf(out, "  %5d %14s %14s %14s %16s\n", r.Month,
					utils.FormatINR(r.Payment), utils.FormatINR(r.Principal),
					utils.FormatINR(r.Interest), utils.FormatINR(r.Balance))
			}
		}
		return nil
	},
}

// --- SIP ---

var sipCmd = &cobra.Command{
	Use:   "sip",
	Short: "Future value of a monthly SIP",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := calc.ContributionPlan{}
		var err error
		p.MonthlyAmount, err = amountFlag(cmd, "monthly")
		if err != nil {
			return err
		}
		p.AnnualRatePercent, _ = cmd.Flags().GetFloat64("rate")
		p.TermYears, _ = cmd.Flags().GetFloat64("years")
		timing, _ := cmd.Flags().GetString("timing")
		p.Timing = calc.PaymentTiming(strings.ToLower(timing))

		res, err := calc.Grow(p)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "📈 SIP Growth")
		printRows(out, [][2]string{
			{"Months", fmt.Sprintf("%d", res.Months)},
			{"Invested", utils.FormatRupees(res.TotalContributed)},
			{"Estimated returns", utils.FormatRupees(res.TotalReturns)},
			{"Future value", utils.FormatRupees(res.FutureValue)},
		})
		return nil
	},
}

// --- Goal ---

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Time needed to reach a savings goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := calc.GoalParameters{}
		var err error
		p.TargetAmount, err = amountFlag(cmd, "target")
		if err != nil {
			return err
		}
		p.MonthlyContribution, err = amountFlag(cmd, "monthly")
		if err != nil {
			return err
		}
		p.AnnualRatePercent, _ = cmd.Flags().GetFloat64("rate")

		res, err := calc.ProjectGoal(p)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "🎯 Goal Planner")
		printRows(out, [][2]string{
			{"Months to goal", fmt.Sprintf("%d", res.MonthsToGoal)},
			{"Years to goal", fmt.Sprintf("%.1f", res.YearsToGoal)},
		})
		return nil
	},
}

// --- Tax ---

var taxCmd = &cobra.Command{
	Use:   "tax",
	Short: "Estimate income tax with the configured slabs",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := calc.TaxParameters{}
		var err error
		p.AnnualIncome, err = amountFlag(cmd, "income")
		if err != nil {
			return err
		}
		p.Deductions, err = amountFlag(cmd, "deductions")
		if err != nil {
			return err
		}

		res, err := calc.EstimateTax(p, cfg.Tax.Slabs)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "🧾 Income Tax")
		printRows(out, [][2]string{
			{"Taxable income", utils.FormatRupees(res.TaxableIncome)},
			{"Tax due", utils.FormatRupees(res.TaxDue)},
			{"Effective rate", utils.FormatPercent(res.EffectiveRatePercent, 1)},
		})

		if show, _ := cmd.Flags().GetBool("breakdown"); show {
			fmt.Fprintln(out)
			for _, b := range res.Breakdown {
				fmt.Fprintf(out, "  %12s to %-12s @ %-4s %12s\n",
					utils.FormatRupees(b.From), utils.FormatRupees(b.To),
					utils.FormatPercent(b.Rate*100, 0), utils.FormatRupees(b.Tax))
			}
		}
		return nil
	},
}

// --- Savings ---

var savingsCmd = &cobra.Command{
	Use:   "savings",
	Short: "Progress towards a savings goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := calc.SavingsSnapshot{}
		var err error
		s.Current, err = amountFlag(cmd, "current")
		if err != nil {
			return err
		}
		s.Goal, err = amountFlag(cmd, "goal")
		if err != nil {
			return err
		}
		s.Monthly, err = amountFlag(cmd, "monthly")
		if err != nil {
			return err
		}

		res, err := calc.TrackSavings(s)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "💰 Savings Tracker")
		printRows(out, [][2]string{
			{"Progress", fmt.Sprintf("%d%%", res.ProgressPercent)},
			{"Months remaining", fmt.Sprintf("%d", res.MonthsRemaining)},
			{"1-year projection", utils.FormatRupees(res.OneYearProjection)},
		})
		return nil
	},
}

// --- Plan ---

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Render a financial plan report from a YAML/JSON file",
	Long: `Render a financial plan report.

The plan file uses the same field names as the HTTP API, for example:

  loan:    {principal: 500000, annual_rate_percent: 10.5, term_months: 36}
  growth:  {monthly_amount: 5000, annual_rate_percent: 12, term_years: 10}
  goal:    {target_amount: 100000, monthly_contribution: 5000, annual_rate_percent: 6}
  tax:     {annual_income: 900000, deductions: 150000}
  savings: {current: 150000, goal: 500000, monthly: 15000}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		plan, err := readPlan(path)
		if err != nil {
			return err
		}

		if n, _ := cmd.Flags().GetInt("market-ticks"); n > 0 {
			t := market.NewTickerFromInstruments(cfg.Market.Interval(), cfg.Market.Window, cfg.Market.Instruments, log)
			for i := 0; i < n; i++ {
				t.TickAll()
			}
			plan.Quotes = t.Snapshot()
		}

		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")
		if pdfPath, _ := cmd.Flags().GetString("pdf"); pdfPath != "" {
			format, outPath = string(report.FormatPDF), pdfPath
		}

		rcfg := report.DefaultConfig()
		rcfg.Format = report.Format(format)

		var w io.Writer = cmd.OutOrStdout()
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			defer f.Close()
			w = f
		} else if rcfg.Format == report.FormatPDF {
			return fmt.Errorf("pdf output needs --out or --pdf")
		}

		switch rcfg.Format {
		case report.FormatText:
			text, err := report.GenerateText(plan, cfg.Tax.Slabs, rcfg)
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, text)
			return err
		case report.FormatHTML:
			html, err := report.GenerateHTML(plan, cfg.Tax.Slabs, rcfg)
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, html)
			return err
		case report.FormatPDF:
			if err := report.GeneratePDF(w, plan, cfg.Tax.Slabs, rcfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "📄 PDF written to %s\n", outPath)
			return nil
		default:
			return fmt.Errorf("unknown format %q (want text, html or pdf)", format)
		}
	},
}

// readPlan decodes a YAML or JSON plan file using the API's JSON field names.
func readPlan(path string) (report.Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return report.Plan{}, fmt.Errorf("reading plan: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return report.Plan{}, fmt.Errorf("parsing plan %s: %w", path, err)
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return report.Plan{}, fmt.Errorf("parsing plan %s: %w", path, err)
	}

	var plan report.Plan
	if err := json.Unmarshal(asJSON, &plan); err != nil {
		return report.Plan{}, fmt.Errorf("parsing plan %s: %w", path, err)
	}
	return plan, nil
}

// amountFlag parses a rupee flag such as "500000", "5,00,000" or "5L".
func amountFlag(cmd *cobra.Command, name string) (float64, error) {
	raw, _ := cmd.Flags().GetString(name)
	v, err := utils.ParseAmount(raw)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return v, nil
}

func printRows(w io.Writer, rows [][2]string) {
	for _, r := range rows {
		fmt.Fprintf(w, "  %-20s %s\n", r[0], r[1])
	}
}
