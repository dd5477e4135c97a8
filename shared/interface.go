package shared

import (
	"context"
	"time"
)

// CandleProvider defines the requirements for fetching minute market data.
type CandleProvider interface {
	// FetchOneMinuteCandles fetches one minute candles for the provided market
	// over the provided window. The returned candles may be empty and carry no
	// ordering guarantee.
	FetchOneMinuteCandles(ctx context.Context, market string, start time.Time, end time.Time) ([]Candlestick, error)
}

// TradeStore defines the requirements for persisting trades and their
// transition records. Each mutation must be atomic and independently valid so
// an interrupted candle walk leaves a consistent intermediate state.
type TradeStore interface {
	// FetchEvaluableTrades fetches a page of trades eligible for evaluation,
	// ordered by their watermark ascending.
	FetchEvaluableTrades(ctx context.Context, limit int, offset int) ([]Trade, error)
	// AdvanceWatermark persists the provided trade watermark.
	AdvanceWatermark(ctx context.Context, id string, watermark time.Time) error
	// MarkTradeOpen transitions the provided trade to open with the provided
	// entry fill time.
	MarkTradeOpen(ctx context.Context, id string, filledOn time.Time, watermark time.Time) error
	// ResolveTrade transitions the provided trade to the provided terminal
	// status with a verified integrity standing.
	ResolveTrade(ctx context.Context, id string, status TradeStatus, closedOn time.Time, watermark time.Time) error
	// MarkTradeUnverified demotes the provided trade to unverified with the
	// provided diagnosis.
	MarkTradeUnverified(ctx context.Context, id string, reason IntegrityReason, details string, closedOn time.Time, watermark time.Time) error
	// RecordTransition appends an immutable status history record.
	RecordTransition(ctx context.Context, transition *TradeTransition) error
	// RecordEvent appends an immutable trade event record.
	RecordEvent(ctx context.Context, event *TradeEvent) error
}

// TradeTransition represents an immutable status history record for a trade.
type TradeTransition struct {
	ID         string
	TradeID    string
	PrevStatus TradeStatus
	NewStatus  TradeStatus
	Note       string
	CreatedOn  time.Time
}

// TradeEvent represents an immutable audit record for a trade.
type TradeEvent struct {
	ID        string
	TradeID   string
	Kind      string
	Payload   string
	CreatedOn time.Time
}

// Trade event kinds.
const (
	EventUnverified = "unverified"
	EventResolved   = "resolved"
)

// BatchSummary summarizes a full evaluation pass.
type BatchSummary struct {
	Evaluated     int
	StatusChanges int
	Errors        int
}
