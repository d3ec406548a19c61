package utils

import (
	"testing"
	"time"
)

func TestNowIST(t *testing.T) {
	now := NowIST()
	if now.Location().String() != "Asia/Kolkata" && now.Location().String() != "IST" {
		t.Errorf("NowIST() location = %s, want Asia/Kolkata or IST", now.Location().String())
	}
}

func TestMarketOpenClose(t *testing.T) {
	date := time.Date(2026, 2, 19, 12, 0, 0, 0, IST)

	open := MarketOpenTime(date)
	if open.Hour() != 9 || open.Minute() != 15 {
		t.Errorf("MarketOpenTime = %v, want 09:15", open)
	}

	close := MarketCloseTime(date)
	if close.Hour() != 15 || close.Minute() != 30 {
		t.Errorf("MarketCloseTime = %v, want 15:30", close)
	}
}

func TestMarketStatusAt(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"weekday session", time.Date(2026, 2, 18, 10, 0, 0, 0, IST), "OPEN"},
		{"early morning", time.Date(2026, 2, 18, 8, 0, 0, 0, IST), "PRE-OPEN"},
		{"evening", time.Date(2026, 2, 18, 18, 0, 0, 0, IST), "CLOSED"},
		{"saturday", time.Date(2026, 2, 21, 10, 0, 0, 0, IST), "CLOSED (Weekend)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarketStatusAt(tt.at); got != tt.want {
				t.Errorf("MarketStatusAt(%v) = %q, want %q", tt.at, got, tt.want)
			}
		})
	}
}

func TestFormatDateTimeIST(t *testing.T) {
	d := time.Date(2026, 2, 19, 10, 30, 5, 0, IST)
	if got := FormatDateTimeIST(d); got != "2026-02-19 10:30:05 IST" {
		t.Errorf("FormatDateTimeIST = %s", got)
	}
	if got := FormatTimeIST(d); got != "10:30:05" {
		t.Errorf("FormatTimeIST = %s", got)
	}
}
