package engine

import (
	"github.com/dnldd/backstop/shared"
)

// Outcome represents the decision produced by evaluating one candle.
type Outcome int

const (
	NoOp Outcome = iota
	Enter
	ResolveTakeProfit
	ResolveStopLoss
	MarkUnverified
)

// String stringifies the provided outcome.
func (o Outcome) String() string {
	switch o {
	case NoOp:
		return "noop"
	case Enter:
		return "enter"
	case ResolveTakeProfit:
		return "resolve take profit"
	case ResolveStopLoss:
		return "resolve stop loss"
	case MarkUnverified:
		return "mark unverified"
	default:
		return "unknown"
	}
}

// Result represents the evaluation of one candle against a trade's levels.
type Result struct {
	Outcome Outcome
	Reason  shared.IntegrityReason
	Details *shared.IntegrityDetails
}

// ambiguity builds a fully diagnosed unverified result for the provided candle
// and touched levels.
func ambiguity(reason shared.IntegrityReason, touched []string, entry float64, stopLoss float64, takeProfit float64, candle *shared.Candlestick) Result {
	return Result{
		Outcome: MarkUnverified,
		Reason:  reason,
		Details: &shared.IntegrityDetails{
			CandleTimestamp: candle.Date,
			CandleOHLC: &shared.CandleOHLC{
				Open:  candle.Open,
				High:  candle.High,
				Low:   candle.Low,
				Close: candle.Close,
			},
			TouchedLevels: touched,
			TradeSnapshot: shared.PriceSnapshot{
				Entry:      entry,
				StopLoss:   stopLoss,
				TakeProfit: takeProfit,
			},
		},
	}
}

// Evaluate maps a trade's lifecycle status and price levels against one candle
// to a transition or an ambiguity verdict. A single candle cannot reveal
// intrabar crossing order, so any candle simultaneously satisfying two
// mutually exclusive outcomes is never guessed at, the trade is demoted to a
// reviewable unverified state instead.
func Evaluate(status shared.TradeStatus, entry float64, stopLoss float64, takeProfit float64, candle *shared.Candlestick) Result {
	entryTouched := candle.Touched(entry)
	stopTouched := candle.Touched(stopLoss)
	targetTouched := candle.Touched(takeProfit)

	switch status {
	case shared.Pending:
		if !entryTouched {
			// A stop or target touch without an entry touch cannot fill the
			// trade.
			return Result{Outcome: NoOp}
		}

		if stopTouched || targetTouched {
			touched := []string{shared.EntryLevel}
			if stopTouched {
				touched = append(touched, shared.StopLossLevel)
			}
			if targetTouched {
				touched = append(touched, shared.TakeProfitLevel)
			}

			return ambiguity(shared.EntryConflict, touched, entry, stopLoss, takeProfit, candle)
		}

		return Result{Outcome: Enter}

	case shared.Open:
		switch {
		case stopTouched && targetTouched:
			touched := []string{shared.StopLossLevel, shared.TakeProfitLevel}
			return ambiguity(shared.ExitConflict, touched, entry, stopLoss, takeProfit, candle)
		case stopTouched:
			return Result{Outcome: ResolveStopLoss}
		case targetTouched:
			return Result{Outcome: ResolveTakeProfit}
		default:
			return Result{Outcome: NoOp}
		}

	default:
		return Result{Outcome: NoOp}
	}
}
