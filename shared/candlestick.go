package shared

import (
	"sort"
	"time"
)

const (
	// DateLayout is the format layout for parsing candle dates.
	DateLayout = "2006-01-02 15:04:05"
)

// Candlestick represents a unit candlestick for a market.
type Candlestick struct {
	Open   float64
	Low    float64
	High   float64
	Close  float64
	Volume float64
	Date   time.Time

	// Metadata fields.
	Market string
}

// Touched checks whether the provided price level falls within the candle's
// low-high range, boundary inclusive.
func (c *Candlestick) Touched(level float64) bool {
	return c.Low <= level && level <= c.High
}

// SortCandlesticks orders the provided candles by date ascending. Provider
// ordering is not trusted, candle walks require strictly ascending dates.
func SortCandlesticks(candles []Candlestick) {
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})
}
