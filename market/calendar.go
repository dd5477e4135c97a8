package market

import (
	"fmt"
	"strings"
	"time"
)

const (
	// Default weekly closed window boundaries (UTC) for forex and cfd markets.
	DefaultClosedWindowStart = "FRI 21:00"
	DefaultClosedWindowEnd   = "MON 00:00"

	// boundaryTimeLayout is the format layout for closed window boundary times.
	boundaryTimeLayout = "15:04"
)

// weekdays maps boundary day tokens to weekdays.
var weekdays = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

// boundary represents one edge of the weekly closed window.
type boundary struct {
	day    time.Weekday
	minute int
}

// parseBoundary parses a closed window boundary of the form "DDD HH:MM" (UTC).
func parseBoundary(value string) (boundary, error) {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(value)))
	if len(fields) != 2 {
		return boundary{}, fmt.Errorf("expected boundary of the form 'DDD HH:MM', got %q", value)
	}

	day, ok := weekdays[fields[0]]
	if !ok {
		return boundary{}, fmt.Errorf("unknown boundary day: %q", fields[0])
	}

	t, err := time.Parse(boundaryTimeLayout, fields[1])
	if err != nil {
		return boundary{}, fmt.Errorf("parsing boundary time: %w", err)
	}

	return boundary{day: day, minute: t.Hour()*60 + t.Minute()}, nil
}

// Calendar tracks the expected weekly closed window for session bound markets.
// Crypto markets are always open. It deliberately omits exchange holidays and
// early closes, a fuller calendar can be swapped in behind the same methods.
type Calendar struct {
	start boundary
	end   boundary
}

// NewCalendar initializes a calendar from the provided closed window boundary
// strings. A malformed boundary falls back to its documented default.
func NewCalendar(start string, end string) *Calendar {
	s, err := parseBoundary(start)
	if err != nil {
		s, _ = parseBoundary(DefaultClosedWindowStart)
	}

	e, err := parseBoundary(end)
	if err != nil {
		e, _ = parseBoundary(DefaultClosedWindowEnd)
	}

	return &Calendar{start: s, end: e}
}

// OverlapsClosedWindow checks whether the provided timestamp falls inside the
// weekly closed window. A timestamp is inside the window if it is on the start
// day at or after the start time, on any full day strictly between the start
// and end days, or on the end day before the end time.
func (c *Calendar) OverlapsClosedWindow(ts time.Time) bool {
	utc := ts.UTC()
	minute := utc.Hour()*60 + utc.Minute()

	offset := (int(utc.Weekday()) - int(c.start.day) + 7) % 7
	span := (int(c.end.day) - int(c.start.day) + 7) % 7

	switch {
	case offset == 0 && offset == span:
		// Degenerate single day window.
		return minute >= c.start.minute && minute < c.end.minute
	case offset == 0:
		return minute >= c.start.minute
	case offset < span:
		return true
	case offset == span:
		return minute < c.end.minute
	default:
		return false
	}
}

// IsMarketExpectedOpen checks whether the market for the provided category is
// expected to be trading at the provided timestamp.
func (c *Calendar) IsMarketExpectedOpen(category Category, ts time.Time) bool {
	if category == Crypto {
		return true
	}

	return !c.OverlapsClosedWindow(ts)
}
