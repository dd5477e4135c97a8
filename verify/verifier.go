package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dnldd/backstop/engine"
	"github.com/dnldd/backstop/market"
	"github.com/dnldd/backstop/shared"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// defaultPageSize is the default trade page size per batch iteration.
	defaultPageSize = 50
	// defaultLookback is the default watermark overlap, it tolerates late
	// arriving bars at the cost of re-evaluating a few candles.
	defaultLookback = time.Minute * 5
)

// VerifierConfig represents the configuration for the trade verifier.
type VerifierConfig struct {
	// Store is the trade store.
	Store shared.TradeStore
	// Provider is the minute candle provider.
	Provider shared.CandleProvider
	// Calendar tracks the expected weekly closed window.
	Calendar *market.Calendar
	// NotifyResolved relays the owning user of a resolved trade for downstream
	// recomputation. It must never block, it is invoked fire and forget.
	NotifyResolved func(user string)
	// PageSize is the trade page size per batch iteration.
	PageSize int
	// Lookback is the watermark overlap applied to each fetch window.
	Lookback time.Duration
	// Now returns the current time.
	Now func() time.Time
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *VerifierConfig) Validate() error {
	var errs error

	if cfg.Store == nil {
		errs = errors.Join(errs, fmt.Errorf("trade store cannot be nil"))
	}
	if cfg.Provider == nil {
		errs = errors.Join(errs, fmt.Errorf("candle provider cannot be nil"))
	}
	if cfg.Calendar == nil {
		errs = errors.Join(errs, fmt.Errorf("calendar cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Lookback == 0 {
		cfg.Lookback = defaultLookback
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return errs
}

// Verifier replays unseen candle history for active trades and persists their
// lifecycle transitions. It is the sole I/O boundary around the pure candle
// evaluator.
type Verifier struct {
	cfg         *VerifierConfig
	gapDetector *market.GapDetector
}

// NewVerifier initializes a new trade verifier.
func NewVerifier(cfg *VerifierConfig) (*Verifier, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating verifier config: %w", err)
	}

	return &Verifier{
		cfg:         cfg,
		gapDetector: market.NewGapDetector(cfg.Calendar),
	}, nil
}

// recordTransition appends a status history record for the provided trade.
// History appends are best effort, the owning transition has already been
// persisted atomically.
func (v *Verifier) recordTransition(ctx context.Context, trade *shared.Trade, prev shared.TradeStatus, next shared.TradeStatus, note string) {
	transition := &shared.TradeTransition{
		ID:         uuid.New().String(),
		TradeID:    trade.ID,
		PrevStatus: prev,
		NewStatus:  next,
		Note:       note,
		CreatedOn:  v.cfg.Now(),
	}

	err := v.cfg.Store.RecordTransition(ctx, transition)
	if err != nil {
		v.cfg.Logger.Error().Msgf("recording %s transition for trade %s: %v",
			next.String(), trade.ID, err)
	}
}

// recordEvent appends an audit event record for the provided trade.
func (v *Verifier) recordEvent(ctx context.Context, trade *shared.Trade, kind string, payload string) {
	event := &shared.TradeEvent{
		ID:        uuid.New().String(),
		TradeID:   trade.ID,
		Kind:      kind,
		Payload:   payload,
		CreatedOn: v.cfg.Now(),
	}

	err := v.cfg.Store.RecordEvent(ctx, event)
	if err != nil {
		v.cfg.Logger.Error().Msgf("recording %s event for trade %s: %v", kind, trade.ID, err)
	}
}

// fireResolvedHook notifies downstream consumers of a resolved trade. The hook
// is fire and forget, it never blocks or fails the batch.
func (v *Verifier) fireResolvedHook(user string) {
	if v.cfg.NotifyResolved == nil {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				v.cfg.Logger.Error().Msgf("resolved hook panicked: %v", r)
			}
		}()

		v.cfg.NotifyResolved(user)
	}()
}

// markUnverified demotes the provided trade with the provided diagnosis and
// appends its history and audit records.
func (v *Verifier) markUnverified(ctx context.Context, trade *shared.Trade, currentStatus shared.TradeStatus, reason shared.IntegrityReason, details *shared.IntegrityDetails, watermark time.Time) error {
	payload, err := details.Marshal()
	if err != nil {
		return err
	}

	err = v.cfg.Store.MarkTradeUnverified(ctx, trade.ID, reason, payload, v.cfg.Now(), watermark)
	if err != nil {
		return fmt.Errorf("marking trade %s unverified: %w", trade.ID, err)
	}

	v.recordTransition(ctx, trade, currentStatus, shared.Unverified, reason.String())
	v.recordEvent(ctx, trade, shared.EventUnverified, payload)

	return nil
}

// watermarkFor clamps a candidate watermark for the provided trade so the
// persisted watermark never moves backwards, a late bar inside the lookback
// overlap predates the already persisted watermark.
func watermarkFor(trade *shared.Trade, ts time.Time) time.Time {
	if trade.LastEvaluated.After(ts) {
		return trade.LastEvaluated
	}

	return ts
}

// evaluateTrade replays the provided trade's unseen candle history. It walks
// candles strictly in order, state is path dependent. The returned flag
// indicates whether any status transition was persisted.
func (v *Verifier) evaluateTrade(ctx context.Context, trade *shared.Trade) (bool, error) {
	category := market.Classify(trade.Market)
	now := v.cfg.Now()

	from := trade.CreatedOn
	if !trade.LastEvaluated.IsZero() {
		from = trade.LastEvaluated.Add(-v.cfg.Lookback)
	}

	candles, err := v.cfg.Provider.FetchOneMinuteCandles(ctx, trade.Market, from, now)
	if err != nil {
		return false, fmt.Errorf("fetching candles for trade %s (%s): %w", trade.ID, trade.Market, err)
	}

	if len(candles) == 0 {
		err := v.cfg.Store.AdvanceWatermark(ctx, trade.ID, watermarkFor(trade, now))
		if err != nil {
			return false, fmt.Errorf("advancing watermark for trade %s: %w", trade.ID, err)
		}

		return false, nil
	}

	takeProfit, ok := trade.TakeProfit()
	if !ok {
		// A trade without a target is not evaluable, skip it silently.
		err := v.cfg.Store.AdvanceWatermark(ctx, trade.ID, watermarkFor(trade, now))
		if err != nil {
			return false, fmt.Errorf("advancing watermark for trade %s: %w", trade.ID, err)
		}

		return false, nil
	}

	shared.SortCandlesticks(candles)

	currentStatus := trade.Status
	var changed bool

	for idx := range candles {
		candle := &candles[idx]

		if idx > 0 {
			prev := &candles[idx-1]
			if v.gapDetector.IsGap(prev, candle, category) {
				details := &shared.IntegrityDetails{
					GapStart: prev.Date,
					GapEnd:   candle.Date,
					Category: category.String(),
					TradeSnapshot: shared.PriceSnapshot{
						Entry:      trade.Entry,
						StopLoss:   trade.StopLoss,
						TakeProfit: takeProfit,
					},
				}

				err := v.markUnverified(ctx, trade, currentStatus, shared.DataGap, details, watermarkFor(trade, prev.Date))
				if err != nil {
					return changed, err
				}

				return true, nil
			}
		}

		result := engine.Evaluate(currentStatus, trade.Entry, trade.StopLoss, takeProfit, candle)
		switch result.Outcome {
		case engine.NoOp:
			continue

		case engine.Enter:
			err := v.cfg.Store.MarkTradeOpen(ctx, trade.ID, candle.Date, watermarkFor(trade, candle.Date))
			if err != nil {
				return changed, fmt.Errorf("marking trade %s open: %w", trade.ID, err)
			}

			v.recordTransition(ctx, trade, currentStatus, shared.Open, "entry filled")

			// Entry and resolution may occur within one run, keep walking.
			currentStatus = shared.Open
			changed = true

		case engine.ResolveTakeProfit, engine.ResolveStopLoss:
			status := shared.TakeProfitHit
			if result.Outcome == engine.ResolveStopLoss {
				status = shared.StopLossHit
			}

			err := v.cfg.Store.ResolveTrade(ctx, trade.ID, status, candle.Date, watermarkFor(trade, candle.Date))
			if err != nil {
				return changed, fmt.Errorf("resolving trade %s: %w", trade.ID, err)
			}

			v.recordTransition(ctx, trade, currentStatus, status, "resolved by evaluator")
			v.recordEvent(ctx, trade, shared.EventResolved, status.String())
			v.fireResolvedHook(trade.User)

			return true, nil

		case engine.MarkUnverified:
			err := v.markUnverified(ctx, trade, currentStatus, result.Reason, result.Details, watermarkFor(trade, candle.Date))
			if err != nil {
				return changed, err
			}

			return true, nil
		}
	}

	// The window is exhausted without a terminal outcome, persist the advanced
	// watermark and move on.
	err = v.cfg.Store.AdvanceWatermark(ctx, trade.ID, watermarkFor(trade, now))
	if err != nil {
		return changed, fmt.Errorf("advancing watermark for trade %s: %w", trade.ID, err)
	}

	return changed, nil
}

// RunBatch runs one full evaluation pass over all eligible trades. Per trade
// failures are counted and contained, only a pagination failure aborts the
// run.
func (v *Verifier) RunBatch(ctx context.Context) (shared.BatchSummary, error) {
	var summary shared.BatchSummary

	// Snapshot the eligible set before evaluating anything. Evaluations advance
	// watermarks, which reorders the underlying watermark ordered query, paging
	// after mutations would skip trades and revisit others within one pass.
	var trades []shared.Trade
	for offset := 0; ; offset += v.cfg.PageSize {
		page, err := v.cfg.Store.FetchEvaluableTrades(ctx, v.cfg.PageSize, offset)
		if err != nil {
			return summary, fmt.Errorf("fetching evaluable trades: %w", err)
		}

		trades = append(trades, page...)

		if len(page) < v.cfg.PageSize {
			break
		}
	}

	for idx := range trades {
		trade := &trades[idx]
		if !trade.Evaluable() {
			continue
		}

		changed, err := v.evaluateTrade(ctx, trade)
		if err != nil {
			// Contain the failure, the untouched watermark retries the
			// same window next run.
			v.cfg.Logger.Error().Msgf("evaluating trade %s: %v", trade.ID, err)
			summary.Errors++
		}

		summary.Evaluated++
		if changed {
			summary.StatusChanges++
		}
	}

	return summary, nil
}
