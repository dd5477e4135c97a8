package shared

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// Touched level names recorded in ambiguity diagnoses.
	EntryLevel      = "entry"
	StopLossLevel   = "stopLoss"
	TakeProfitLevel = "takeProfit"
)

// PriceSnapshot captures the trade levels in play when an ambiguity was found.
type PriceSnapshot struct {
	Entry      float64 `json:"entry"`
	StopLoss   float64 `json:"stopLoss"`
	TakeProfit float64 `json:"takeProfit"`
}

// CandleOHLC captures the price range of the candle that produced an ambiguity.
type CandleOHLC struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// IntegrityDetails is the full diagnosis attached to an unverified trade. It
// carries everything a human reviewer needs to adjudicate the outcome.
type IntegrityDetails struct {
	CandleTimestamp time.Time     `json:"candleTimestamp,omitempty"`
	CandleOHLC      *CandleOHLC   `json:"candleOHLC,omitempty"`
	TouchedLevels   []string      `json:"touchedLevels,omitempty"`
	TradeSnapshot   PriceSnapshot `json:"tradeSnapshot"`

	// Gap bounds, populated only for data gap demotions.
	GapStart time.Time `json:"gapStart,omitempty"`
	GapEnd   time.Time `json:"gapEnd,omitempty"`
	Category string    `json:"category,omitempty"`
}

// Marshal serializes the integrity details for persistence.
func (d *IntegrityDetails) Marshal() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshalling integrity details: %w", err)
	}

	return string(b), nil
}

// UnmarshalIntegrityDetails deserializes persisted integrity details.
func UnmarshalIntegrityDetails(data string) (*IntegrityDetails, error) {
	var details IntegrityDetails
	err := json.Unmarshal([]byte(data), &details)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling integrity details: %w", err)
	}

	return &details, nil
}
