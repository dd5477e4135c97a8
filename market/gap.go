package market

import (
	"github.com/dnldd/backstop/shared"
)

const (
	// maxCandleSpacingSeconds is the largest spacing between consecutive minute
	// candles that is never considered a gap. The headroom above the 60 second
	// cadence tolerates provider timestamp jitter.
	maxCandleSpacingSeconds = 90
)

// GapDetector distinguishes real market data outages from expected closed
// market intervals.
type GapDetector struct {
	calendar *Calendar
}

// NewGapDetector initializes a new gap detector using the provided calendar.
func NewGapDetector(calendar *Calendar) *GapDetector {
	return &GapDetector{calendar: calendar}
}

// IsGap checks whether the spacing between the provided adjacent candles
// represents a real data outage for the provided category. Crypto markets
// trade continuously, any oversized spacing is an outage. Session bound
// markets suppress the gap when either endpoint lies inside the weekly closed
// window, which avoids false positives at session boundaries.
func (d *GapDetector) IsGap(prev *shared.Candlestick, curr *shared.Candlestick, category Category) bool {
	delta := curr.Date.Sub(prev.Date).Seconds()
	if delta <= maxCandleSpacingSeconds {
		return false
	}

	if category == Crypto {
		return true
	}

	if d.calendar.OverlapsClosedWindow(prev.Date) || d.calendar.OverlapsClosedWindow(curr.Date) {
		return false
	}

	return true
}
