package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/backstop/shared"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	// SQL statements.
	createTradeTableSQL = "CREATE TABLE IF NOT EXISTS trade (id TEXT PRIMARY KEY, market TEXT, " +
		"direction INTEGER, entry REAL, stoploss REAL, targets TEXT, status INTEGER, " +
		"resolutionsource INTEGER, user TEXT, createdon INTEGER, entryfilledon INTEGER, " +
		"closedon INTEGER, lastevaluated INTEGER, statementeligible INTEGER, " +
		"integritystatus INTEGER, integrityreason INTEGER, integritydetails TEXT)"
	createTradeHistoryTableSQL = "CREATE TABLE IF NOT EXISTS trade_history (id TEXT PRIMARY KEY, " +
		"tradeid TEXT, prevstatus INTEGER, newstatus INTEGER, note TEXT, createdon INTEGER)"
	createTradeEventTableSQL = "CREATE TABLE IF NOT EXISTS trade_event (id TEXT PRIMARY KEY, " +
		"tradeid TEXT, kind TEXT, payload TEXT, createdon INTEGER)"

	fetchEvaluableTradesSQL = "SELECT * FROM trade WHERE status IN (?, ?) AND " +
		"resolutionsource != ? ORDER BY lastevaluated ASC LIMIT ? OFFSET ?"
	advanceWatermarkSQL = "UPDATE trade SET lastevaluated = ? WHERE id = ?"
	markTradeOpenSQL    = "UPDATE trade SET status = ?, entryfilledon = ?, lastevaluated = ? WHERE id = ?"
	resolveTradeSQL     = "UPDATE trade SET status = ?, closedon = ?, lastevaluated = ?, " +
		"integritystatus = ?, resolutionsource = ? WHERE id = ?"
	markTradeUnverifiedSQL = "UPDATE trade SET status = ?, closedon = ?, lastevaluated = ?, " +
		"integritystatus = ?, integrityreason = ?, integritydetails = ?, statementeligible = 0, " +
		"resolutionsource = ? WHERE id = ?"
	recordTransitionSQL = "INSERT INTO trade_history(id, tradeid, prevstatus, newstatus, note, createdon) " +
		"VALUES(?,?,?,?,?,?)"
	recordEventSQL = "INSERT INTO trade_event(id, tradeid, kind, payload, createdon) VALUES(?,?,?,?,?)"
)

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	client *rqlitehttp.Client
}

// Ensure the database implements the TradeStore interface.
var _ shared.TradeStore = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	db := &Database{
		cfg:    cfg,
		client: client,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// bootstrap initializes the database.
func (db *Database) bootstrap(ctx context.Context) error {
	_, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createTradeTableSQL},
		{SQL: createTradeHistoryTableSQL},
		{SQL: createTradeEventTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// execute runs the provided statement and surfaces any statement level error.
func (db *Database) execute(ctx context.Context, sql string, params []any) error {
	resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL:              sql,
			PositionalParams: params,
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("executing statement: %d -> %s", idx, errStr)
	}

	return nil
}

// rowString reads a text column from the provided associative row.
func rowString(row map[string]any, key string) string {
	value, _ := row[key].(string)
	return value
}

// rowInt64 reads an integer column from the provided associative row. Numeric
// values arrive as json numbers.
func rowInt64(row map[string]any, key string) int64 {
	switch value := row[key].(type) {
	case float64:
		return int64(value)
	case int64:
		return value
	default:
		return 0
	}
}

// rowFloat reads a real column from the provided associative row.
func rowFloat(row map[string]any, key string) float64 {
	switch value := row[key].(type) {
	case float64:
		return value
	case int64:
		return float64(value)
	default:
		return 0
	}
}

// asTime converts a stored unix second column to a time. A zero column is an
// unset timestamp.
func asTime(secs int64) time.Time {
	if secs == 0 {
		return time.Time{}
	}

	return time.Unix(secs, 0).UTC()
}

// asUnix converts a timestamp to its stored unix second form. An unset
// timestamp is stored as zero.
func asUnix(ts time.Time) int64 {
	if ts.IsZero() {
		return 0
	}

	return ts.Unix()
}

// tradeFromRow builds a trade from the provided associative row. Targets are
// stored as a json array column.
func (db *Database) tradeFromRow(row map[string]any) (*shared.Trade, error) {
	targetsData := gjson.Parse(rowString(row, "targets")).Array()
	targets := make([]float64, 0, len(targetsData))
	for idx := range targetsData {
		targets = append(targets, targetsData[idx].Float())
	}

	trade := &shared.Trade{
		ID:                rowString(row, "id"),
		Market:            rowString(row, "market"),
		Direction:         shared.Direction(rowInt64(row, "direction")),
		Entry:             rowFloat(row, "entry"),
		StopLoss:          rowFloat(row, "stoploss"),
		Targets:           targets,
		Status:            shared.TradeStatus(rowInt64(row, "status")),
		ResolutionSource:  shared.ResolutionSource(rowInt64(row, "resolutionsource")),
		User:              rowString(row, "user"),
		CreatedOn:         asTime(rowInt64(row, "createdon")),
		EntryFilledOn:     asTime(rowInt64(row, "entryfilledon")),
		ClosedOn:          asTime(rowInt64(row, "closedon")),
		LastEvaluated:     asTime(rowInt64(row, "lastevaluated")),
		StatementEligible: rowInt64(row, "statementeligible") != 0,
		IntegrityStatus:   shared.IntegrityStatus(rowInt64(row, "integritystatus")),
		IntegrityReason:   shared.IntegrityReason(rowInt64(row, "integrityreason")),
		IntegrityDetails:  rowString(row, "integritydetails"),
	}

	if trade.ID == "" {
		db.cfg.Logger.Error().Msgf("unexpected trade row shape: %s", spew.Sdump(row))
		return nil, fmt.Errorf("trade row missing id")
	}

	return trade, nil
}

// FetchEvaluableTrades fetches a page of trades eligible for evaluation,
// ordered by their watermark ascending.
func (db *Database) FetchEvaluableTrades(ctx context.Context, limit int, offset int) ([]shared.Trade, error) {
	resp, err := db.client.QuerySingle(ctx, fetchEvaluableTradesSQL,
		int(shared.Pending), int(shared.Open), int(shared.ManualResolution), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fetching evaluable trades: %w", err)
	}

	results := resp.GetQueryResultsAssoc()
	if len(results) == 0 {
		return nil, nil
	}

	trades := make([]shared.Trade, 0, len(results[0].Rows))
	for _, row := range results[0].Rows {
		trade, err := db.tradeFromRow(row)
		if err != nil {
			return nil, err
		}

		trades = append(trades, *trade)
	}

	return trades, nil
}

// AdvanceWatermark persists the provided trade watermark.
func (db *Database) AdvanceWatermark(ctx context.Context, id string, watermark time.Time) error {
	return db.execute(ctx, advanceWatermarkSQL, []any{asUnix(watermark), id})
}

// MarkTradeOpen transitions the provided trade to open with the provided entry
// fill time.
func (db *Database) MarkTradeOpen(ctx context.Context, id string, filledOn time.Time, watermark time.Time) error {
	return db.execute(ctx, markTradeOpenSQL,
		[]any{int(shared.Open), asUnix(filledOn), asUnix(watermark), id})
}

// ResolveTrade transitions the provided trade to the provided terminal status
// with a verified integrity standing.
func (db *Database) ResolveTrade(ctx context.Context, id string, status shared.TradeStatus, closedOn time.Time, watermark time.Time) error {
	return db.execute(ctx, resolveTradeSQL,
		[]any{int(status), asUnix(closedOn), asUnix(watermark),
			int(shared.IntegrityVerified), int(shared.EvaluatorResolution), id})
}

// MarkTradeUnverified demotes the provided trade to unverified with the
// provided diagnosis.
func (db *Database) MarkTradeUnverified(ctx context.Context, id string, reason shared.IntegrityReason, details string, closedOn time.Time, watermark time.Time) error {
	return db.execute(ctx, markTradeUnverifiedSQL,
		[]any{int(shared.Unverified), asUnix(closedOn), asUnix(watermark),
			int(shared.IntegrityAmbiguous), int(reason), details,
			int(shared.EvaluatorResolution), id})
}

// RecordTransition appends an immutable status history record.
func (db *Database) RecordTransition(ctx context.Context, transition *shared.TradeTransition) error {
	return db.execute(ctx, recordTransitionSQL,
		[]any{transition.ID, transition.TradeID, int(transition.PrevStatus),
			int(transition.NewStatus), transition.Note, asUnix(transition.CreatedOn)})
}

// RecordEvent appends an immutable trade event record.
func (db *Database) RecordEvent(ctx context.Context, event *shared.TradeEvent) error {
	return db.execute(ctx, recordEventSQL,
		[]any{event.ID, event.TradeID, event.Kind, event.Payload, asUnix(event.CreatedOn)})
}
