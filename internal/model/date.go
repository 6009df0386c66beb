package model

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout renders window bounds as UTC ISO-8601 without fractional seconds.
const TimestampLayout = "2006-01-02T15:04:05Z"

// TimeWindow is the acquisition-time range covering one whole calendar day.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// WindowFor returns the window from midnight to the last second of date.
//
// The date's calendar day is taken as-is and interpreted in UTC.
func WindowFor(date time.Time) TimeWindow {
	start := NormalizeDate(date)
	return TimeWindow{
		Start: start,
		End:   start.Add(24*time.Hour - time.Nanosecond),
	}
}

// StartString returns Start formatted with TimestampLayout.
func (w TimeWindow) StartString() string {
	return w.Start.Format(TimestampLayout)
}

// EndString returns End formatted with TimestampLayout.
func (w TimeWindow) EndString() string {
	return w.End.Format(TimestampLayout)
}

// String renders the window as "<start>/<end>".
func (w TimeWindow) String() string {
	return w.StartString() + "/" + w.EndString()
}

// NormalizeDate keeps the calendar day of t and returns it at midnight UTC.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Yesterday returns the calendar day before now, as seen on now's clock.
func Yesterday(now time.Time) time.Time {
	return NormalizeDate(now.AddDate(0, 0, -1))
}

// ParseDate parses a YYYY-MM-DD date. The words "yesterday" and "today"
// are resolved against now; an empty string means yesterday.
func ParseDate(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yesterday":
		return Yesterday(now), nil
	case "today":
		return NormalizeDate(now), nil
	}

	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}
