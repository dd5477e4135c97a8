package market

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestParseBoundary(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		wantDay    time.Weekday
		wantMinute int
		wantErr    bool
	}{
		{
			name:       "friday close",
			value:      "FRI 21:00",
			wantDay:    time.Friday,
			wantMinute: 21 * 60,
		},
		{
			name:       "monday open",
			value:      "MON 00:00",
			wantDay:    time.Monday,
			wantMinute: 0,
		},
		{
			name:       "lowercase with padding",
			value:      "  sun 13:30 ",
			wantDay:    time.Sunday,
			wantMinute: 13*60 + 30,
		},
		{
			name:    "unknown day token",
			value:   "FRY 21:00",
			wantErr: true,
		},
		{
			name:    "malformed time",
			value:   "FRI 25:99",
			wantErr: true,
		},
		{
			name:    "missing time",
			value:   "FRI",
			wantErr: true,
		},
	}

	for _, test := range tests {
		b, err := parseBoundary(test.value)
		if err == nil && test.wantErr {
			t.Errorf("%s: expected an error, got none", test.name)
		}
		if err != nil && !test.wantErr {
			t.Errorf("%s: no error expected but got %v", test.name, err)
		}

		if err == nil {
			if b.day != test.wantDay {
				t.Errorf("%s: expected day %v, got %v", test.name, test.wantDay, b.day)
			}
			if b.minute != test.wantMinute {
				t.Errorf("%s: expected minute %v, got %v", test.name, test.wantMinute, b.minute)
			}
		}
	}
}

func TestNewCalendarFallback(t *testing.T) {
	// Ensure malformed boundaries fall back to the documented defaults per field.
	cal := NewCalendar("garbage", "also garbage")
	def := NewCalendar(DefaultClosedWindowStart, DefaultClosedWindowEnd)

	assert.Equal(t, cal.start.day, def.start.day)
	assert.Equal(t, cal.start.minute, def.start.minute)
	assert.Equal(t, cal.end.day, def.end.day)
	assert.Equal(t, cal.end.minute, def.end.minute)

	// Ensure a valid field is kept when the other falls back.
	mixed := NewCalendar("SAT 10:00", "nope")
	assert.Equal(t, mixed.start.day, time.Saturday)
	assert.Equal(t, mixed.start.minute, 10*60)
	assert.Equal(t, mixed.end.day, def.end.day)
	assert.Equal(t, mixed.end.minute, def.end.minute)
}

func TestOverlapsClosedWindow(t *testing.T) {
	cal := NewCalendar(DefaultClosedWindowStart, DefaultClosedWindowEnd)

	// 2024-05-10 is a friday.
	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{
			"friday before the window opens",
			time.Date(2024, 5, 10, 20, 59, 0, 0, time.UTC),
			false,
		},
		{
			"friday exactly at the window start",
			time.Date(2024, 5, 10, 21, 0, 0, 0, time.UTC),
			true,
		},
		{
			"saturday midday",
			time.Date(2024, 5, 11, 12, 0, 0, 0, time.UTC),
			true,
		},
		{
			"sunday night",
			time.Date(2024, 5, 12, 23, 59, 0, 0, time.UTC),
			true,
		},
		{
			"monday exactly at the window end",
			time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"midweek trading hours",
			time.Date(2024, 5, 8, 14, 30, 0, 0, time.UTC),
			false,
		},
	}

	for _, test := range tests {
		inside := cal.OverlapsClosedWindow(test.ts)
		if inside != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, inside)
		}
	}
}

func TestIsMarketExpectedOpen(t *testing.T) {
	cal := NewCalendar(DefaultClosedWindowStart, DefaultClosedWindowEnd)
	weekend := time.Date(2024, 5, 11, 12, 0, 0, 0, time.UTC)
	weekday := time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)

	// Crypto markets never close.
	assert.True(t, cal.IsMarketExpectedOpen(Crypto, weekend))

	// Session bound markets close over the weekend window.
	assert.False(t, cal.IsMarketExpectedOpen(Forex, weekend))
	assert.False(t, cal.IsMarketExpectedOpen(CFD, weekend))
	assert.True(t, cal.IsMarketExpectedOpen(Forex, weekday))
	assert.True(t, cal.IsMarketExpectedOpen(CFD, weekday))
}
