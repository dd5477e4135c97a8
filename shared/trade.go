package shared

import (
	"time"
)

// TradeStatus represents the lifecycle status of a trade.
type TradeStatus int

const (
	Pending TradeStatus = iota
	Open
	TakeProfitHit
	StopLossHit
	BreakEven
	Closed
	Unverified
)

// String stringifies the provided trade status.
func (s TradeStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Open:
		return "open"
	case TakeProfitHit:
		return "take profit hit"
	case StopLossHit:
		return "stop loss hit"
	case BreakEven:
		return "break even"
	case Closed:
		return "closed"
	case Unverified:
		return "unverified"
	default:
		return "unknown"
	}
}

// IsTerminal checks whether the provided status concludes a trade's lifecycle.
func (s TradeStatus) IsTerminal() bool {
	switch s {
	case TakeProfitHit, StopLossHit, BreakEven, Closed, Unverified:
		return true
	default:
		return false
	}
}

// ResolutionSource represents the actor that produced a trade's final outcome.
type ResolutionSource int

const (
	NoResolution ResolutionSource = iota
	ManualResolution
	EvaluatorResolution
	EAVerifiedResolution
)

// String stringifies the provided resolution source.
func (r ResolutionSource) String() string {
	switch r {
	case NoResolution:
		return "none"
	case ManualResolution:
		return "manual"
	case EvaluatorResolution:
		return "evaluator"
	case EAVerifiedResolution:
		return "ea verified"
	default:
		return "unknown"
	}
}

// IntegrityStatus represents the verification standing of a resolved trade.
type IntegrityStatus int

const (
	IntegrityUnset IntegrityStatus = iota
	IntegrityVerified
	IntegrityAmbiguous
)

// String stringifies the provided integrity status.
func (s IntegrityStatus) String() string {
	switch s {
	case IntegrityUnset:
		return "unset"
	case IntegrityVerified:
		return "verified"
	case IntegrityAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// IntegrityReason represents why a trade was demoted to unverified.
type IntegrityReason int

const (
	NoIntegrityReason IntegrityReason = iota
	EntryConflict
	ExitConflict
	DataGap
)

// String stringifies the provided integrity reason.
func (r IntegrityReason) String() string {
	switch r {
	case NoIntegrityReason:
		return "none"
	case EntryConflict:
		return "entry conflict"
	case ExitConflict:
		return "exit conflict"
	case DataGap:
		return "data gap"
	default:
		return "unknown"
	}
}

// Direction represents the declared direction of a trade. It is recorded for
// review but plays no part in touch logic.
type Direction int

const (
	Long Direction = iota
	Short
)

// String stringifies the provided direction.
func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "unknown"
	}
}

// Trade represents a declared trade being verified against market history.
type Trade struct {
	ID               string
	Market           string
	Direction        Direction
	Entry            float64
	StopLoss         float64
	Targets          []float64
	Status           TradeStatus
	ResolutionSource ResolutionSource
	User             string

	CreatedOn         time.Time
	EntryFilledOn     time.Time
	ClosedOn          time.Time
	LastEvaluated     time.Time
	StatementEligible bool

	IntegrityStatus IntegrityStatus
	IntegrityReason IntegrityReason
	// IntegrityDetails is the serialized ambiguity diagnosis, populated only
	// when the trade is demoted to unverified.
	IntegrityDetails string
}

// TakeProfit returns the trade's active target. Only the first target
// participates in evaluation.
func (t *Trade) TakeProfit() (float64, bool) {
	if len(t.Targets) == 0 {
		return 0, false
	}

	return t.Targets[0], true
}

// Evaluable checks whether the trade is eligible for evaluation.
func (t *Trade) Evaluable() bool {
	if t.ResolutionSource == ManualResolution {
		return false
	}

	return t.Status == Pending || t.Status == Open
}
