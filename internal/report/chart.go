package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/womenwealthwave/wealthwave/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// SVG Charts (inline, no external assets)
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	BgColor      string
	GridColor    string
	TextColor    string
	FontSize     int
	Title        string
}

// DefaultChartConfig returns the palette used by the app's cards.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        640,
		Height:       260,
		MarginTop:    36,
		MarginRight:  24,
		MarginBottom: 24,
		MarginLeft:   80,
		BgColor:      "#ffffff",
		GridColor:    "#f3e8ff",
		TextColor:    "#4b5563",
		FontSize:     11,
	}
}

func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

var palette = []string{"#9333ea", "#ec4899", "#f59e0b", "#10b981", "#3b82f6"}

// LineSeries is a named series for LineChart.
type LineSeries struct {
	Name   string
	Values []float64
	Color  string
}

// LineChart draws one or more series against a shared y axis.
func LineChart(series []LineSeries, cfg ChartConfig) string {
	if cfg.Width == 0 {
		title := cfg.Title
		cfg = DefaultChartConfig()
		cfg.Title = title
	}

	var all []float64
	points := 0
	for _, s := range series {
		all = append(all, s.Values...)
		points = max(points, len(s.Values))
	}
	if points < 2 {
		return emptySVG(cfg, "Not enough data")
	}

	lo, hi := utils.TrendRange(all)
	px, py, pw, ph := cfg.plotArea()
	xAt := func(i int) float64 { return float64(px) + float64(i)*float64(pw)/float64(points-1) }
	yAt := func(v float64) float64 { return float64(py+ph) - (v-lo)/(hi-lo)*float64(ph) }

	var sb strings.Builder
	sb.WriteString(svgOpen(cfg))

	const ticks = 4
	for i := 0; i <= ticks; i++ {
		v := lo + (hi-lo)*float64(i)/ticks
		y := yAt(v)
		fmt.Fprintf(&sb, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s"/>`, px, y, px+pw, y, cfg.GridColor)
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-6, y+4, cfg.FontSize, cfg.TextColor, escapeXML(axisLabel(v)))
	}

	for si, s := range series {
		color := s.Color
		if color == "" {
			color = palette[si%len(palette)]
		}
		coords := make([]string, 0, len(s.Values))
		for i, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			coords = append(coords, fmt.Sprintf("%.1f,%.1f", xAt(i), yAt(v)))
		}
		if len(coords) > 1 {
			fmt.Fprintf(&sb, `<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`,
				strings.Join(coords, " "), color)
		}
		if s.Name != "" {
			ly := py + 6 + si*14
			fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="10" height="3" fill="%s"/>`, px+8, ly, color)
			fmt.Fprintf(&sb, `<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
				px+22, ly+4, cfg.TextColor, escapeXML(s.Name))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// BarItem is one bar of a BarChart.
type BarItem struct {
	Label string
	Value float64
	Color string
}

// BarChart draws non-negative values as horizontal bars, labelled on the left.
func BarChart(items []BarItem, cfg ChartConfig) string {
	if cfg.Width == 0 {
		title := cfg.Title
		cfg = DefaultChartConfig()
		cfg.Title = title
	}
	if len(items) == 0 {
		return emptySVG(cfg, "No data")
	}
	cfg.MarginLeft = 220
	cfg.MarginRight = 90

	top := 0.0
	for _, it := range items {
		top = math.Max(top, it.Value)
	}
	if top <= 0 {
		top = 1
	}

	px, py, pw, ph := cfg.plotArea()
	slot := float64(ph) / float64(len(items))
	barH := math.Min(22, slot*0.7)

	var sb strings.Builder
	sb.WriteString(svgOpen(cfg))
	for i, it := range items {
		color := it.Color
		if color == "" {
			color = palette[i%len(palette)]
		}
		y := float64(py) + float64(i)*slot + (slot-barH)/2
		w := math.Max(0, it.Value) / top * float64(pw)
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-6, y+barH/2+4, cfg.FontSize, cfg.TextColor, escapeXML(it.Label))
		fmt.Fprintf(&sb, `<rect x="%d" y="%.1f" width="%.1f" height="%.1f" rx="3" fill="%s"/>`,
			px, y, w, barH, color)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="%d" fill="%s">%s</text>`,
			float64(px)+w+6, y+barH/2+4, cfg.FontSize, cfg.TextColor, escapeXML(utils.FormatRupees(it.Value)))
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// ProgressRing draws a 0-100 value as a ring with the number in the middle.
func ProgressRing(pct float64, label string, size int) string {
	if size <= 0 {
		size = 160
	}
	pct = math.Max(0, math.Min(100, pct))
	c := float64(size) / 2
	r := c - 14
	circ := 2 * math.Pi * r

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		size, size, size, size)
	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#f3e8ff" stroke-width="12"/>`, c, c, r)
	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#9333ea" stroke-width="12" stroke-linecap="round" stroke-dasharray="%.2f %.2f" transform="rotate(-90 %.1f %.1f)"/>`,
		c, c, r, circ*pct/100, circ, c, c)
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="24" font-weight="bold" fill="#111827" text-anchor="middle">%.0f%%</text>`,
		c, c+6, pct)
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="11" fill="#6b7280" text-anchor="middle">%s</text>`,
		c, c+24, escapeXML(label))
	sb.WriteString("</svg>")
	return sb.String()
}

// axisLabel shortens large rupee values for the y axis.
func axisLabel(v float64) string {
	if math.Abs(v) >= 1000 {
		return utils.FormatINRCompact(v)
	}
	return fmt.Sprintf("%.1f", v)
}

func svgOpen(cfg ChartConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="%s"/>`, cfg.Width, cfg.Height, cfg.BgColor)
	if cfg.Title != "" {
		fmt.Fprintf(&sb, `<text x="%d" y="20" font-size="13" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
			cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title))
	}
	return sb.String()
}

func emptySVG(cfg ChartConfig, msg string) string {
	w, h := cfg.Width, cfg.Height
	if w == 0 {
		w = 400
	}
	if h == 0 {
		h = 160
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#faf5ff"/><text x="%d" y="%d" text-anchor="middle" fill="#9ca3af" font-size="13">%s</text></svg>`,
		w, h, w, h, w/2, h/2, escapeXML(msg))
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeXML(s string) string { return xmlEscaper.Replace(s) }
