package piggybank

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	OnTrack   Status = "ON_TRACK"
	Behind    Status = "BEHIND"
	Completed Status = "COMPLETED"
	Overdue   Status = "OVERDUE"
)

// DefaultLookback is the assumed tracking period of a goal whose start is unknown.
const DefaultLookback = 30 * 24 * time.Hour

// behindThreshold is the share of the expected progress below which a goal is BEHIND.
var behindThreshold = decimal.NewFromFloat(0.8)

var hundred = decimal.NewFromInt(100)

// Goal is the input of the status rules.
type Goal struct {
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Deadline      time.Time
	// ReferenceStart marks when progress tracking began. The zero value means unknown.
	ReferenceStart time.Time
	// SuppliedProgress is a progress percentage computed upstream, preferred over the local formula.
	SuppliedProgress *decimal.Decimal
}

// StatusEngine classifies goals. Lookback replaces an unknown ReferenceStart with now - Lookback.
type StatusEngine struct {
	Lookback time.Duration
}

var defaultEngine = StatusEngine{Lookback: DefaultLookback}

func NewStatusEngine(lookbackDays int) StatusEngine {
	if lookbackDays <= 0 {
		return defaultEngine
	}
	return StatusEngine{Lookback: time.Duration(lookbackDays) * 24 * time.Hour}
}

// DeriveStatus applies the default engine.
func DeriveStatus(goal Goal, now time.Time) Status {
	return defaultEngine.DeriveStatus(goal, now)
}

// DeriveStatus evaluates the rules top to bottom, first match wins:
//
//	COMPLETED  current >= target
//	OVERDUE    now is after the deadline
//	BEHIND     current/target < 0.8 * elapsed/window, skipped for an empty window
//	ON_TRACK   otherwise
func (e StatusEngine) DeriveStatus(goal Goal, now time.Time) Status {
	if isCompleted(goal) {
		return Completed
	}
	if now.After(goal.Deadline) {
		return Overdue
	}

	start := e.referenceStart(goal, now)
	totalWindowDays := daysBetween(start, goal.Deadline)
	if totalWindowDays > 0 && goal.TargetAmount.IsPositive() {
		daysElapsed := daysBetween(start, now)
		expected := decimal.NewFromInt(daysElapsed).Div(decimal.NewFromInt(totalWindowDays))
		actual := goal.CurrentAmount.Div(goal.TargetAmount)
		if actual.LessThan(expected.Mul(behindThreshold)) {
			return Behind
		}
	}
	return OnTrack
}

func (e StatusEngine) referenceStart(goal Goal, now time.Time) time.Time {
	if !goal.ReferenceStart.IsZero() {
		return goal.ReferenceStart
	}
	lookback := e.Lookback
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return now.Add(-lookback)
}

// a zero or negative target is met by definition
func isCompleted(goal Goal) bool {
	return goal.CurrentAmount.GreaterThanOrEqual(goal.TargetAmount)
}

// daysBetween counts started days between a and b, regardless of their order.
func daysBetween(a, b time.Time) int64 {
	hours := math.Abs(b.Sub(a).Hours())
	return int64(math.Ceil(hours / 24))
}

// ProgressPercentage prefers the supplied percentage, otherwise min(round(current/target*100), 100).
func ProgressPercentage(goal Goal) int {
	if goal.SuppliedProgress != nil {
		return int(goal.SuppliedProgress.Round(0).IntPart())
	}
	if !goal.TargetAmount.IsPositive() {
		return 100
	}
	percentage := goal.CurrentAmount.Div(goal.TargetAmount).Mul(hundred).Round(0).IntPart()
	if percentage > 100 {
		return 100
	}
	return int(percentage)
}

// RemainingAmount is the amount still missing to reach the target, never negative.
func RemainingAmount(goal Goal) decimal.Decimal {
	remaining := goal.TargetAmount.Sub(goal.CurrentAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// DaysOverdue counts started days since the deadline of an OVERDUE goal and is 0 for any other status.
func DaysOverdue(goal Goal, now time.Time) int {
	if isCompleted(goal) || !now.After(goal.Deadline) {
		return 0
	}
	return int(math.Ceil(now.Sub(goal.Deadline).Hours() / 24))
}
