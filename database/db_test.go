package database

import (
	"testing"
	"time"

	"github.com/dnldd/backstop/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

func TestTradeFromRow(t *testing.T) {
	db := &Database{cfg: &DatabaseConfig{Logger: &log.Logger}}

	created := time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)
	row := map[string]any{
		"id":                "trade-1",
		"market":            "EURUSD",
		"direction":         float64(shared.Long),
		"entry":             1.085,
		"stoploss":          1.08,
		"targets":           "[1.09,1.095]",
		"status":            float64(shared.Pending),
		"resolutionsource":  float64(shared.NoResolution),
		"user":              "user-1",
		"createdon":         float64(created.Unix()),
		"entryfilledon":     float64(0),
		"closedon":          float64(0),
		"lastevaluated":     float64(0),
		"statementeligible": float64(1),
		"integritystatus":   float64(shared.IntegrityUnset),
		"integrityreason":   float64(shared.NoIntegrityReason),
		"integritydetails":  "",
	}

	trade, err := db.tradeFromRow(row)
	assert.NoError(t, err)
	assert.Equal(t, trade.ID, "trade-1")
	assert.Equal(t, trade.Market, "EURUSD")
	assert.Equal(t, trade.Entry, 1.085)
	assert.Equal(t, trade.Targets, []float64{1.09, 1.095})
	assert.Equal(t, trade.Status, shared.Pending)
	assert.True(t, trade.CreatedOn.Equal(created))
	assert.True(t, trade.EntryFilledOn.IsZero())
	assert.True(t, trade.StatementEligible)

	// Ensure a row without an id errors.
	_, err = db.tradeFromRow(map[string]any{"market": "EURUSD"})
	assert.Error(t, err)
}

func TestTimeConversions(t *testing.T) {
	// Unset timestamps round trip as zero.
	assert.Equal(t, asUnix(time.Time{}), int64(0))
	assert.True(t, asTime(0).IsZero())

	ts := time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)
	assert.True(t, asTime(asUnix(ts)).Equal(ts))
}
