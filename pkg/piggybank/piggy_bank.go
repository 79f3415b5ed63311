package piggybank

import (
	"time"

	"github.com/shopspring/decimal"
)

type PiggyBank struct {
	Id             int
	Name           string
	SavingsGoal    decimal.Decimal
	MonthlyDeposit decimal.Decimal
	CurrentAmount  decimal.Decimal
	TargetDate     time.Time
	// DepositDay is the day of month the user plans to deposit on, 0 when not set.
	DepositDay      int
	CreatedAt       time.Time
	LastDepositDate *time.Time
	// ProgressPercentage is a stored override of the computed progress.
	ProgressPercentage *decimal.Decimal
}

// Goal converts the piggy bank into the input of the status rules. Tracking starts at the last
// deposit and falls back to the creation date.
func (p PiggyBank) Goal() Goal {
	start := p.CreatedAt
	if p.LastDepositDate != nil && !p.LastDepositDate.IsZero() {
		start = *p.LastDepositDate
	}
	return Goal{
		TargetAmount:     p.SavingsGoal,
		CurrentAmount:    p.CurrentAmount,
		Deadline:         endOfDay(p.TargetDate),
		ReferenceStart:   start,
		SuppliedProgress: p.ProgressPercentage,
	}
}

// record is the shape fed to Summarize.
func (p PiggyBank) record(status Status) Record {
	return Record{
		"status":        string(status),
		"currentAmount": p.CurrentAmount,
		"savingsGoal":   p.SavingsGoal,
		"targetDate":    p.TargetDate,
	}
}

// target dates are calendar days, a goal due today is not overdue before midnight
func endOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, 0, t.Location())
}

// Progress is a piggy bank together with the values derived from it at a point in time.
type Progress struct {
	PiggyBank                 PiggyBank
	Status                    Status
	ProgressPercentage        int
	RemainingAmount           decimal.Decimal
	RemainingMonths           int
	DaysOverdue               int
	RecommendedMonthlyDeposit decimal.Decimal
}

func (e StatusEngine) Progress(p PiggyBank, now time.Time) Progress {
	goal := p.Goal()
	remaining := RemainingAmount(goal)
	months := RemainingMonths(p.TargetDate, now)
	return Progress{
		PiggyBank:                 p,
		Status:                    e.DeriveStatus(goal, now),
		ProgressPercentage:        ProgressPercentage(goal),
		RemainingAmount:           remaining,
		RemainingMonths:           months,
		DaysOverdue:               DaysOverdue(goal, now),
		RecommendedMonthlyDeposit: remaining.Div(decimal.NewFromInt(int64(max(months, 1)))).Round(2),
	}
}

// RemainingMonths counts whole months from now until deadline, 0 when the deadline has passed.
func RemainingMonths(deadline, now time.Time) int {
	if !deadline.After(now) {
		return 0
	}
	months := (deadline.Year()-now.Year())*12 + int(deadline.Month()) - int(now.Month())
	if deadline.Day() < now.Day() {
		months--
	}
	return max(months, 0)
}

// IsDepositDay reports whether the planned deposit day falls on today. A deposit day past the
// end of a short month is due on its last day.
func (p PiggyBank) IsDepositDay(today time.Time) bool {
	if p.DepositDay <= 0 {
		return false
	}
	year, month, day := today.Date()
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, today.Location()).Day()
	return min(p.DepositDay, lastDay) == day
}
