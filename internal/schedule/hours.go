// Package schedule answers opening-hours questions and generates the
// fulfilment slots offered at checkout.
package schedule

import (
	"strconv"
	"strings"
	"time"

	"orderdesk/internal/model"
)

// maxScanDays bounds NextOpeningAfter so a schedule with no open day terminates.
const maxScanDays = 7

var weekdayKeys = [...]string{
	time.Sunday:    "sun",
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
}

// WeekdayKey returns the opening-hours key for a weekday.
func WeekdayKey(d time.Weekday) string {
	return weekdayKeys[d]
}

// parseClock parses "HH:MM" into minutes after midnight.
func parseClock(s string) (int, bool) {
	hh, mm, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// window returns the parsed window for the calendar day of t.
// Missing, empty or malformed entries report ok=false.
func window(t time.Time, hours model.OpeningHours) (open, close int, ok bool) {
	day, exists := hours[WeekdayKey(t.Weekday())]
	if !exists || day == nil || day.Open == "" || day.Close == "" {
		return 0, 0, false
	}
	open, ok = parseClock(day.Open)
	if !ok {
		return 0, 0, false
	}
	close, ok = parseClock(day.Close)
	if !ok {
		return 0, 0, false
	}
	return open, close, true
}

// IsOpenAt reports whether t, in its own location, falls inside the window
// configured for its weekday. A close earlier than open wraps past midnight.
func IsOpenAt(t time.Time, hours model.OpeningHours) bool {
	open, close, ok := window(t, hours)
	if !ok {
		return false
	}
	now := t.Hour()*60 + t.Minute()
	if close < open {
		return now >= open || now < close
	}
	return now >= open && now < close
}

// NextOpeningAfter returns the first opening instant strictly after t,
// looking at most maxScanDays calendar days ahead.
func NextOpeningAfter(t time.Time, hours model.OpeningHours) (time.Time, bool) {
	loc := t.Location()
	y, m, d := t.Date()
	for day := 0; day < maxScanDays; day++ {
		date := time.Date(y, m, d+day, 0, 0, 0, 0, loc)
		open, _, ok := window(date, hours)
		if !ok {
			continue
		}
		candidate := time.Date(y, m, d+day, open/60, open%60, 0, 0, loc)
		if day == 0 && !candidate.After(t) {
			continue
		}
		return candidate, true
	}
	return time.Time{}, false
}
