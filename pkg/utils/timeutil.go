package utils

import (
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// NowIST returns the current time in IST.
func NowIST() time.Time {
	return time.Now().In(IST)
}

// MarketOpenTime returns the NSE market opening time (9:15 AM IST) for a given date.
func MarketOpenTime(date time.Time) time.Time {
	d := date.In(IST)
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 15, 0, 0, IST)
}

// MarketCloseTime returns the NSE market closing time (3:30 PM IST) for a given date.
func MarketCloseTime(date time.Time) time.Time {
	d := date.In(IST)
	return time.Date(d.Year(), d.Month(), d.Day(), 15, 30, 0, 0, IST)
}

// IsMarketOpenAt reports whether t falls inside regular NSE hours on a weekday.
// Exchange holidays are not tracked; the simulated feed only uses this as a label.
func IsMarketOpenAt(t time.Time) bool {
	t = t.In(IST)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !t.Before(MarketOpenTime(t)) && !t.After(MarketCloseTime(t))
}

// FormatDateTimeIST formats a time.Time to "2006-01-02 15:04:05 IST".
func FormatDateTimeIST(t time.Time) string {
	return t.In(IST).Format("2006-01-02 15:04:05 IST")
}

// FormatTimeIST formats the clock part only, e.g. "14:05:09".
func FormatTimeIST(t time.Time) string {
	return t.In(IST).Format("15:04:05")
}

// MarketStatusAt returns a short human label for the session at t.
func MarketStatusAt(t time.Time) string {
	t = t.In(IST)
	switch {
	case t.Weekday() == time.Saturday || t.Weekday() == time.Sunday:
		return "CLOSED (Weekend)"
	case IsMarketOpenAt(t):
		return "OPEN"
	case t.Before(MarketOpenTime(t)):
		return "PRE-OPEN"
	default:
		return "CLOSED"
	}
}

// MarketStatus returns the current market status string.
func MarketStatus() string {
	return MarketStatusAt(NowIST())
}
