// Package datetime converts the date and time strings entered for a task
// into comparable instants and back into display strings.
package datetime

import (
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	midnight = "00:00"
)

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"15:04:05.000",
}

// DueInstant interprets date and clock as local wall-clock time in loc and
// returns milliseconds since the epoch. It reports false when date is empty
// or the pair does not parse. An empty clock means midnight.
func DueInstant(date, clock string, loc *time.Location) (int64, bool) {
	if date == "" {
		return 0, false
	}
	if clock == "" {
		clock = midnight
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range clockLayouts {
		t, err := time.ParseInLocation(DateLayout+"T"+layout, date+"T"+clock, loc)
		if err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

// FormatDate turns YYYY-MM-DD into YYYY/MM/DD. Input without three
// non-empty dash-separated parts is returned as is.
func FormatDate(date string) string {
	if date == "" {
		return ""
	}
	parts := strings.Split(date, "-")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return date
	}
	return parts[0] + "/" + parts[1] + "/" + parts[2]
}

// FormatTime drops the seconds of HH:MM:SS.
func FormatTime(clock string) string {
	if clock == "" {
		return ""
	}
	r := []rune(clock)
	if len(r) <= 5 {
		return clock
	}
	return string(r[:5])
}

func DefaultDate(now time.Time) string {
	return now.Format(DateLayout)
}

func DefaultTime(now time.Time) string {
	return now.Format(TimeLayout)
}
