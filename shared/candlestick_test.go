package shared

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestTouched(t *testing.T) {
	candle := &Candlestick{
		Open:  100,
		High:  110,
		Low:   95,
		Close: 105,
	}

	tests := []struct {
		name  string
		level float64
		want  bool
	}{
		{
			"level inside the candle range",
			102,
			true,
		},
		{
			"level exactly at the candle low",
			95,
			true,
		},
		{
			"level exactly at the candle high",
			110,
			true,
		},
		{
			"level below the candle range",
			94.99,
			false,
		},
		{
			"level above the candle range",
			110.01,
			false,
		},
	}

	for _, test := range tests {
		touched := candle.Touched(test.level)
		if touched != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, touched)
		}
	}
}

func TestSortCandlesticks(t *testing.T) {
	base := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	candles := []Candlestick{
		{Close: 3, Date: base.Add(2 * time.Minute)},
		{Close: 1, Date: base},
		{Close: 2, Date: base.Add(time.Minute)},
	}

	SortCandlesticks(candles)

	assert.Equal(t, candles[0].Close, float64(1))
	assert.Equal(t, candles[1].Close, float64(2))
	assert.Equal(t, candles[2].Close, float64(3))
	assert.True(t, candles[0].Date.Before(candles[1].Date))
	assert.True(t, candles[1].Date.Before(candles[2].Date))
}
