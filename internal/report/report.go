// Package report renders a personal finance plan (loan, SIP, goal, tax,
// savings and market snapshot) as plain text, HTML with inline SVG charts,
// or PDF.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/womenwealthwave/wealthwave/internal/calc"
	"github.com/womenwealthwave/wealthwave/internal/market"
	"github.com/womenwealthwave/wealthwave/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Config
// ════════════════════════════════════════════════════════════════════

// Format specifies the output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatText Format = "text"
)

// Section identifies a plan section to include/exclude.
type Section string

const (
	SectionLoan    Section = "loan"
	SectionGrowth  Section = "growth"
	SectionGoal    Section = "goal"
	SectionTax     Section = "tax"
	SectionSavings Section = "savings"
	SectionMarket  Section = "market"
)

// AllSections returns all sections in display order.
func AllSections() []Section {
	return []Section{SectionLoan, SectionGrowth, SectionGoal, SectionTax, SectionSavings, SectionMarket}
}

// Config controls report generation.
type Config struct {
	Format   Format
	Sections []Section // default: all
	Title    string
	Author   string
	ChartCfg ChartConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Format:   FormatText,
		Sections: AllSections(),
		Title:    "My Financial Plan",
		Author:   "WealthWave",
		ChartCfg: DefaultChartConfig(),
	}
}

func (c Config) hasSection(s Section) bool {
	if len(c.Sections) == 0 {
		return true
	}
	for _, sec := range c.Sections {
		if sec == s {
			return true
		}
	}
	return false
}

// ════════════════════════════════════════════════════════════════════
// Plan
// ════════════════════════════════════════════════════════════════════

// Plan holds the calculator inputs a report is built from. Nil parts are
// left out of the report.
type Plan struct {
	Loan    *calc.LoanParameters   `json:"loan,omitempty"`
	Growth  *calc.ContributionPlan `json:"growth,omitempty"`
	Goal    *calc.GoalParameters   `json:"goal,omitempty"`
	Tax     *calc.TaxParameters    `json:"tax,omitempty"`
	Savings *calc.SavingsSnapshot  `json:"savings,omitempty"`
	Quotes  []market.Quote         `json:"quotes,omitempty"`
}

// Results are the computed outputs for a Plan.
type Results struct {
	Loan     *calc.AmortizationResult
	Schedule []calc.Installment
	Growth   *calc.GrowthResult
	Goal     *calc.GoalResult
	Tax      *calc.TaxResult
	Savings  *calc.SavingsProgress
}

// Compute runs every calculator the plan has inputs for. The first invalid
// input aborts with an error naming the section.
func Compute(p Plan, slabs calc.SlabTable) (Results, error) {
	var res Results

	if p.Loan != nil {
		r, err := calc.Amortize(*p.Loan)
		if err != nil {
			return Results{}, fmt.Errorf("loan: %w", err)
		}
		sched, err := calc.Schedule(*p.Loan)
		if err != nil {
			return Results{}, fmt.Errorf("loan: %w", err)
		}
		res.Loan, res.Schedule = &r, sched
	}
	if p.Growth != nil {
		r, err := calc.Grow(*p.Growth)
		if err != nil {
			return Results{}, fmt.Errorf("growth: %w", err)
		}
		res.Growth = &r
	}
	if p.Goal != nil {
		r, err := calc.ProjectGoal(*p.Goal)
		if err != nil {
			return Results{}, fmt.Errorf("goal: %w", err)
		}
		res.Goal = &r
	}
	if p.Tax != nil {
		if slabs == nil {
			slabs = calc.DefaultSlabs()
		}
		r, err := calc.EstimateTax(*p.Tax, slabs)
		if err != nil {
			return Results{}, fmt.Errorf("tax: %w", err)
		}
		res.Tax = &r
	}
	if p.Savings != nil {
		r, err := calc.TrackSavings(*p.Savings)
		if err != nil {
			return Results{}, fmt.Errorf("savings: %w", err)
		}
		res.Savings = &r
	}
	return res, nil
}

// ════════════════════════════════════════════════════════════════════
// Report Data (flattened for rendering)
// ════════════════════════════════════════════════════════════════════

// Row is a label/value line inside a section.
type Row struct {
	Label string
	Value string
}

// Bar is one horizontal bar drawn by the HTML and PDF renderers.
type Bar struct {
	Label string
	Value float64
}

// SectionData is one rendered block of the report.
type SectionData struct {
	Key     Section
	Title   string
	Rows    []Row
	Bars    []Bar // optional, drawn as a bar chart
	Percent float64
	HasPct  bool
	Chart   template.HTML
}

// Data is the model shared by every renderer.
type Data struct {
	Title       string
	Author      string
	GeneratedAt string
	Sections    []SectionData
}

// Build flattens a plan and its results into render-ready data.
func Build(p Plan, res Results, cfg Config) Data {
	d := Data{
		Title:       cfg.Title,
		Author:      cfg.Author,
		GeneratedAt: ReportTimestamp(),
	}
	if d.Title == "" {
		d.Title = "Financial Plan"
	}

	if cfg.hasSection(SectionLoan) && res.Loan != nil {
		d.Sections = append(d.Sections, loanSection(*p.Loan, *res.Loan, res.Schedule, cfg.ChartCfg))
	}
	if cfg.hasSection(SectionGrowth) && res.Growth != nil {
		d.Sections = append(d.Sections, growthSection(*p.Growth, *res.Growth, cfg.ChartCfg))
	}
	if cfg.hasSection(SectionGoal) && res.Goal != nil {
		d.Sections = append(d.Sections, goalSection(*p.Goal, *res.Goal))
	}
	if cfg.hasSection(SectionTax) && res.Tax != nil {
		d.Sections = append(d.Sections, taxSection(*p.Tax, *res.Tax, cfg.ChartCfg))
	}
	if cfg.hasSection(SectionSavings) && res.Savings != nil {
		d.Sections = append(d.Sections, savingsSection(*p.Savings, *res.Savings))
	}
	if cfg.hasSection(SectionMarket) && len(p.Quotes) > 0 {
		d.Sections = append(d.Sections, marketSection(p.Quotes, cfg.ChartCfg))
	}
	return d
}

func loanSection(p calc.LoanParameters, r calc.AmortizationResult, sched []calc.Installment, cc ChartConfig) SectionData {
	s := SectionData{
		Key:   SectionLoan,
		Title: "Loan EMI",
		Rows: []Row{
			{"Principal", utils.FormatRupees(p.Principal)},
			{"Interest rate", utils.FormatPercent(p.AnnualRatePercent, 1) + " p.a."},
			{"Tenure", fmt.Sprintf("%d months", p.TermMonths)},
			{"Monthly EMI", utils.FormatRupees(r.MonthlyPayment)},
			{"Total interest", utils.FormatRupees(r.TotalInterest)},
			{"Total payment", utils.FormatRupees(r.TotalPayment)},
		},
	}
	if len(sched) > 1 {
		balance := make([]float64, 0, len(sched)+1)
		balance = append(balance, p.Principal)
		for _, in := range sched {
			balance = append(balance, in.Balance)
		}
		cc.Title = "Outstanding balance"
		s.Chart = template.HTML(LineChart([]LineSeries{{Name: "Balance", Values: balance}}, cc))
	}
	return s
}

func growthSection(p calc.ContributionPlan, r calc.GrowthResult, cc ChartConfig) SectionData {
	timing := "start of month"
	if p.Timing == calc.TimingEnd {
		timing = "end of month"
	}
	s := SectionData{
		Key:   SectionGrowth,
		Title: "SIP Growth",
		Rows: []Row{
			{"Monthly investment", utils.FormatRupees(p.MonthlyAmount)},
			{"Expected return", utils.FormatPercent(p.AnnualRatePercent, 1) + " p.a."},
			{"Duration", fmt.Sprintf("%d months (%s)", r.Months, timing)},
			{"Invested", utils.FormatRupees(r.TotalContributed)},
			{"Estimated returns", utils.FormatRupees(r.TotalReturns)},
			{"Future value", utils.FormatRupees(r.FutureValue)},
		},
	}

	curve := growthCurve(p, r.Months)
	if len(curve) > 1 {
		cc.Title = "Projected corpus"
		s.Chart = template.HTML(LineChart([]LineSeries{{Name: "Corpus", Values: curve}}, cc))
	}
	return s
}

// growthCurve samples the corpus at every whole year, plus the final month.
func growthCurve(p calc.ContributionPlan, months int) []float64 {
	curve := []float64{0}
	for m := 12; m < months+12; m += 12 {
		if m > months {
			m = months
		}
		step := p
		step.TermYears = float64(m) / 12
		if r, err := calc.Grow(step); err == nil {
			curve = append(curve, r.FutureValue)
		}
		if m == months {
			break
		}
	}
	return curve
}

func goalSection(p calc.GoalParameters, r calc.GoalResult) SectionData {
	return SectionData{
		Key:   SectionGoal,
		Title: "Goal Planner",
		Rows: []Row{
			{"Target", utils.FormatRupees(p.TargetAmount)},
			{"Monthly contribution", utils.FormatRupees(p.MonthlyContribution)},
			{"Expected return", utils.FormatPercent(p.AnnualRatePercent, 1) + " p.a."},
			{"Months to goal", fmt.Sprintf("%d", r.MonthsToGoal)},
			{"Years to goal", fmt.Sprintf("%.1f", r.YearsToGoal)},
		},
	}
}

func taxSection(p calc.TaxParameters, r calc.TaxResult, cc ChartConfig) SectionData {
	s := SectionData{
		Key:   SectionTax,
		Title: "Income Tax",
		Rows: []Row{
			{"Annual income", utils.FormatRupees(p.AnnualIncome)},
			{"Deductions", utils.FormatRupees(p.Deductions)},
			{"Taxable income", utils.FormatRupees(r.TaxableIncome)},
			{"Tax due", utils.FormatRupees(r.TaxDue)},
			{"Effective rate", utils.FormatPercent(r.EffectiveRatePercent, 1)},
		},
	}
	for _, b := range r.Breakdown {
		label := fmt.Sprintf("%s to %s @ %s",
			utils.FormatRupees(b.From), utils.FormatRupees(b.To), utils.FormatPercent(b.Rate*100, 0))
		s.Bars = append(s.Bars, Bar{Label: label, Value: b.Tax})
	}
	if len(s.Bars) > 0 {
		items := make([]BarItem, len(s.Bars))
		for i, b := range s.Bars {
			items[i] = BarItem{Label: b.Label, Value: b.Value}
		}
		cc.Title = "Tax by slab"
		s.Chart = template.HTML(BarChart(items, cc))
	}
	return s
}

func savingsSection(p calc.SavingsSnapshot, r calc.SavingsProgress) SectionData {
	remaining := fmt.Sprintf("%d", r.MonthsRemaining)
	if r.MonthsRemaining == 0 {
		remaining = "goal reached"
	}
	return SectionData{
		Key:   SectionSavings,
		Title: "Savings Tracker",
		Rows: []Row{
			{"Current savings", utils.FormatRupees(p.Current)},
			{"Goal", utils.FormatRupees(p.Goal)},
			{"Monthly saving", utils.FormatRupees(p.Monthly)},
			{"Progress", fmt.Sprintf("%d%%", r.ProgressPercent)},
			{"Months remaining", remaining},
			{"1-year projection", utils.FormatRupees(r.OneYearProjection)},
		},
		Percent: float64(r.ProgressPercent),
		HasPct:  true,
		Chart:   template.HTML(ProgressRing(float64(r.ProgressPercent), "Saved", 160)),
	}
}

func marketSection(quotes []market.Quote, cc ChartConfig) SectionData {
	s := SectionData{Key: SectionMarket, Title: "Market Snapshot"}
	var series []LineSeries
	for _, q := range quotes {
		s.Rows = append(s.Rows, Row{
			Label: q.Name,
			Value: fmt.Sprintf("%s (%s) range %s to %s",
				utils.FormatINR(q.Price), utils.FormatPct(q.ChangePercent),
				utils.FormatINR(q.Min), utils.FormatINR(q.Max)),
		})
		series = append(series, LineSeries{Name: q.Symbol, Values: normalise(q.History)})
	}
	cc.Title = "Recent ticks (indexed to 100)"
	s.Chart = template.HTML(LineChart(series, cc))
	return s
}

// normalise rebases a series so its first value is 100, letting differently
// priced instruments share one chart.
func normalise(values []float64) []float64 {
	if len(values) == 0 || values[0] == 0 {
		return values
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / values[0] * 100
	}
	return out
}

// ════════════════════════════════════════════════════════════════════
// Generate
// ════════════════════════════════════════════════════════════════════

// GenerateText renders a terminal-friendly report.
func GenerateText(p Plan, slabs calc.SlabTable, cfg Config) (string, error) {
	res, err := Compute(p, slabs)
	if err != nil {
		return "", err
	}
	return renderText(Build(p, res, cfg)), nil
}

// GenerateHTML renders a standalone HTML report with inline SVG charts.
func GenerateHTML(p Plan, slabs calc.SlabTable, cfg Config) (string, error) {
	res, err := Compute(p, slabs)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, Build(p, res, cfg)); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

func renderText(d Data) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thin := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	fmt.Fprintf(&sb, "  %s\n", d.Title)
	fmt.Fprintf(&sb, "  Generated: %s | %s\n", d.GeneratedAt, d.Author)
	sb.WriteString(line + "\n")

	if len(d.Sections) == 0 {
		sb.WriteString("\n  Nothing to report.\n")
	}
	for _, s := range d.Sections {
		fmt.Fprintf(&sb, "\n  ■ %s\n", strings.ToUpper(s.Title))
		for _, r := range s.Rows {
			fmt.Fprintf(&sb, "    %-22s %s\n", r.Label, r.Value)
		}
		for _, b := range s.Bars {
			fmt.Fprintf(&sb, "      %-36s %s\n", b.Label, utils.FormatRupees(b.Value))
		}
		if s.HasPct {
			fmt.Fprintf(&sb, "    %s\n", textBar(s.Percent, 40))
		}
		sb.WriteString(thin + "\n")
	}

	sb.WriteString("\n  For education only. Not financial advice.\n")
	sb.WriteString(line + "\n")
	return sb.String()
}

// textBar draws a fixed-width progress bar such as [#####.....] 50%.
func textBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + fmt.Sprintf("] %.0f%%", pct)
}

// ReportTimestamp returns current IST time formatted for report headers.
func ReportTimestamp() string {
	return utils.NowIST().Format("02 Jan 2006, 03:04 PM IST")
}
