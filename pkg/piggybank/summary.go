package piggybank

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Record is a goal in whatever JSON shape it arrived, e.g. decoded into map[string]any.
type Record map[string]any

// Summary aggregates a set of goals.
type Summary struct {
	TotalPiggyBanks     int
	CompletedPiggyBanks int
	OnTrackCount        int
	BehindCount         int
	OverdueCount        int
	TotalSaved          decimal.Decimal
	TotalGoals          decimal.Decimal
	ProgressPercentage  int
}

// EmptySummary is the summary of no goals. Callers use it as well when goals could not be fetched.
func EmptySummary() Summary {
	return Summary{TotalSaved: decimal.Zero, TotalGoals: decimal.Zero}
}

// accessor reads one candidate location of a field. ok is false when the value is absent or null.
type accessor func(Record) (value any, ok bool)

func key(name string) accessor {
	return func(r Record) (any, bool) {
		v, ok := r[name]
		return v, ok && v != nil
	}
}

// nested reads parent.name, used for progress responses that wrap the goal.
func nested(parent, name string) accessor {
	return func(r Record) (any, bool) {
		switch inner := r[parent].(type) {
		case map[string]any:
			v, ok := inner[name]
			return v, ok && v != nil
		case Record:
			v, ok := inner[name]
			return v, ok && v != nil
		}
		return nil, false
	}
}

// Status: locally derived value first, then the stored one.
var statusAccessors = []accessor{
	key("calculatedStatus"), key("status"), key("situacao"), nested("piggyBank", "status"),
}

// Saved amount: API field first, then snake case and localized aliases.
var savedAccessors = []accessor{
	key("currentAmount"), key("current_amount"), key("current"), key("saved"), key("valorAtual"),
	nested("piggyBank", "currentAmount"),
}

// Goal amount: the API calls it savingsGoal, other shapes use target names.
var goalAccessors = []accessor{
	key("savingsGoal"), key("savings_goal"), key("targetAmount"), key("target_amount"), key("target"),
	key("goal"), key("meta"), nested("piggyBank", "savingsGoal"),
}

// Deadline of the goal.
var deadlineAccessors = []accessor{
	key("targetDate"), key("target_date"), key("deadline"), key("dataMeta"), nested("piggyBank", "targetDate"),
}

// Start of tracking: last deposit, then creation.
var referenceStartAccessors = []accessor{
	key("lastDepositDate"), key("last_deposit_date"), key("createdAt"), key("created_at"), key("startedAt"),
}

func firstOf(r Record, accessors []accessor) (any, bool) {
	for _, get := range accessors {
		if v, ok := get(r); ok {
			return v, true
		}
	}
	return nil, false
}

// Summarize applies the default engine.
func Summarize(records []Record, now time.Time) Summary {
	return defaultEngine.Summarize(records, now)
}

// Summarize counts goals per status and totals their amounts. It never fails: unknown statuses count as
// ON_TRACK and unreadable amounts as zero.
func (e StatusEngine) Summarize(records []Record, now time.Time) Summary {
	summary := EmptySummary()
	if len(records) == 0 {
		return summary
	}

	for _, r := range records {
		saved := decimalOf(r, savedAccessors)
		goal := decimalOf(r, goalAccessors)

		switch e.recordStatus(r, saved, goal, now) {
		case Completed:
			summary.CompletedPiggyBanks++
		case Behind:
			summary.BehindCount++
		case Overdue:
			summary.OverdueCount++
		default:
			summary.OnTrackCount++
		}
		summary.TotalSaved = summary.TotalSaved.Add(saved)
		summary.TotalGoals = summary.TotalGoals.Add(goal)
	}

	summary.TotalPiggyBanks = len(records)
	if summary.TotalGoals.IsPositive() {
		percentage := summary.TotalSaved.Div(summary.TotalGoals).Mul(hundred).Round(0).IntPart()
		summary.ProgressPercentage = int(min(max(percentage, 0), 100))
	}
	summary.TotalSaved = summary.TotalSaved.Round(2)
	summary.TotalGoals = summary.TotalGoals.Round(2)
	return summary
}

func (e StatusEngine) recordStatus(r Record, saved, goal decimal.Decimal, now time.Time) Status {
	if raw, ok := firstOf(r, statusAccessors); ok {
		text := strings.TrimSpace(fmt.Sprint(raw))
		if text != "" {
			status, known := ParseStatus(text)
			if !known {
				log.Debugf("unrecognized piggy bank status %q, counting as %s", text, OnTrack)
			}
			return status
		}
	}

	deadline, ok := timeOf(r, deadlineAccessors)
	if !ok {
		return OnTrack
	}
	start, _ := timeOf(r, referenceStartAccessors)
	return e.DeriveStatus(Goal{
		TargetAmount:   goal,
		CurrentAmount:  saved,
		Deadline:       deadline,
		ReferenceStart: start,
	}, now)
}

func decimalOf(r Record, accessors []accessor) decimal.Decimal {
	v, ok := firstOf(r, accessors)
	if !ok {
		return decimal.Zero
	}
	return toDecimal(v)
}

// toDecimal coerces JSON-ish numbers. Strings may use ',' or '.' as decimal separator, with the other one
// as thousands separator. Anything unreadable is zero.
func toDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero
		}
		return *n
	case float64:
		return decimal.NewFromFloat(n)
	case float32:
		return decimal.NewFromFloat32(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case int32:
		return decimal.NewFromInt32(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		return parseAmount(n)
	}
	return decimal.Zero
}

func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	s = strings.ReplaceAll(s, " ", "")
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot > lastComma && lastComma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly}

func timeOf(r Record, accessors []accessor) (time.Time, bool) {
	v, ok := firstOf(r, accessors)
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}
