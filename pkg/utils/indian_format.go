// Package utils provides number and time formatting shared by the
// calculators, the CLI and the API.
package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR formats a number in Indian Rupee format (₹12,34,567.89).
// Uses the Indian numbering system: last 3 digits, then groups of 2.
func FormatINR(amount float64) string {
	negative := amount < 0
	paise := int64(RoundTo(math.Abs(amount), 2)*100 + 0.5)

	formatted := fmt.Sprintf("%s.%02d", formatIndianNumber(paise/100), paise%100)
	if negative && paise != 0 {
		return "-₹" + formatted
	}
	return "₹" + formatted
}

// FormatRupees formats an amount rounded to whole rupees (₹16,260).
// This is how the calculator cards display results.
func FormatRupees(amount float64) string {
	rounded := RoundTo(amount, 0)
	formatted := formatIndianNumber(int64(math.Abs(rounded)))
	if rounded < 0 {
		return "-₹" + formatted
	}
	return "₹" + formatted
}

// FormatINRCompact formats a number in compact Indian notation.
// e.g., 1927345 → "₹19.27 L", 192734500000 → "₹19273.45 Cr"
func FormatINRCompact(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	prefix := "₹"
	if negative {
		prefix = "-₹"
	}

	switch {
	case amount >= 1e12:
		return fmt.Sprintf("%s%s L Cr", prefix, formatWithDecimals(amount/(Lakh*Crore)))
	case amount >= Crore:
		return fmt.Sprintf("%s%s Cr", prefix, formatWithDecimals(amount/Crore))
	case amount >= Lakh:
		return fmt.Sprintf("%s%s L", prefix, formatWithDecimals(amount/Lakh))
	case amount >= 1e3:
		return fmt.Sprintf("%s%s K", prefix, formatWithDecimals(amount/1e3))
	default:
		return fmt.Sprintf("%s%.2f", prefix, amount)
	}
}

// Indian numbering units.
const (
	Lakh  = 1e5
	Crore = 1e7
)

// amountUnits maps accepted suffixes to multipliers, longest first so "lakhs"
// is not read as "l".
var amountUnits = []struct {
	suffix string
	mult   float64
}{
	{"crores", Crore}, {"crore", Crore}, {"cr", Crore},
	{"lakhs", Lakh}, {"lakh", Lakh}, {"lacs", Lakh}, {"lac", Lakh}, {"l", Lakh},
	{"k", 1e3},
}

// ParseAmount reads a rupee amount written plainly ("150000", "1,50,000",
// "₹1,50,000") or with an Indian unit ("1.5L", "2 lakh", "1.2cr", "15k").
func ParseAmount(s string) (float64, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	in = strings.TrimPrefix(in, "₹")
	in = strings.TrimPrefix(in, "rs.")
	in = strings.TrimPrefix(in, "rs")
	in = strings.ReplaceAll(in, ",", "")
	in = strings.ReplaceAll(in, " ", "")

	mult := 1.0
	for _, u := range amountUnits {
		if strings.HasSuffix(in, u.suffix) {
			in = strings.TrimSuffix(in, u.suffix)
			mult = u.mult
			break
		}
	}

	d, err := decimal.NewFromString(in)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	f, _ := d.Mul(decimal.NewFromFloat(mult)).Float64()
	return f, nil
}

// FormatPct formats a percentage change with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatPercent formats a rate with a fixed number of decimals and no sign.
// e.g., FormatPercent(5.666, 1) → "5.7%"
func FormatPercent(pct float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	return decimal.NewFromFloat(pct).StringFixed(int32(precision)) + "%"
}

// RoundTo rounds x to the given number of decimal places, half away from zero.
func RoundTo(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return f
}

// TrendRange returns the plotting range of a series. An empty series maps to
// [0, 1] and a flat series is widened by one unit so charts never divide by zero.
func TrendRange(series []float64) (lo, hi float64) {
	if len(series) == 0 {
		return 0, 1
	}
	lo, hi = series[0], series[0]
	for _, v := range series[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

// formatIndianNumber formats an integer with Indian grouping (last 3, then 2s).
func formatIndianNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	s := fmt.Sprintf("%d", n)
	length := len(s)

	result := s[length-3:]
	remaining := s[:length-3]

	// Group remaining digits in pairs from right
	for len(remaining) > 0 {
		if len(remaining) > 2 {
			result = remaining[len(remaining)-2:] + "," + result
			remaining = remaining[:len(remaining)-2]
		} else {
			result = remaining + "," + result
			remaining = ""
		}
	}

	return result
}

// formatWithDecimals formats a number with up to 2 decimal places,
// removing trailing zeros.
func formatWithDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
