package piggybank

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name string
		goal Goal
		now  time.Time
		want Status
	}{
		{
			name: "should be completed when current reaches target before deadline",
			goal: Goal{TargetAmount: amount("1000"), CurrentAmount: amount("1000"), Deadline: date(2025, 1, 1)},
			now:  date(2024, 6, 1),
			want: Completed,
		},
		{
			name: "should stay completed after the deadline",
			goal: Goal{TargetAmount: amount("1000"), CurrentAmount: amount("1200"), Deadline: date(2024, 1, 1)},
			now:  date(2024, 6, 1),
			want: Completed,
		},
		{
			name: "should be overdue after the deadline",
			goal: Goal{TargetAmount: amount("1000"), CurrentAmount: amount("100"), Deadline: date(2024, 1, 1)},
			now:  date(2024, 6, 1),
			want: Overdue,
		},
		{
			name: "should be behind when progress lags elapsed time",
			goal: Goal{
				TargetAmount:   amount("1000"),
				CurrentAmount:  amount("50"),
				Deadline:       date(2024, 12, 31),
				ReferenceStart: date(2024, 1, 1),
			},
			now:  date(2024, 11, 1),
			want: Behind,
		},
		{
			name: "should be on track when progress follows elapsed time",
			goal: Goal{
				TargetAmount:   amount("1200"),
				CurrentAmount:  amount("600"),
				Deadline:       date(2024, 12, 31),
				ReferenceStart: date(2024, 1, 1),
			},
			now:  date(2024, 7, 1),
			want: OnTrack,
		},
		{
			name: "should be on track exactly at the deadline",
			goal: Goal{TargetAmount: amount("1000"), CurrentAmount: amount("900"), Deadline: date(2024, 6, 1), ReferenceStart: date(2024, 1, 1)},
			now:  date(2024, 6, 1),
			want: OnTrack,
		},
		{
			name: "should skip the behind rule for an empty window",
			goal: Goal{TargetAmount: amount("1000"), CurrentAmount: amount("0"), Deadline: date(2024, 6, 1), ReferenceStart: date(2024, 6, 1)},
			now:  date(2024, 6, 1),
			want: OnTrack,
		},
		{
			name: "should treat a zero target as completed",
			goal: Goal{TargetAmount: decimal.Zero, CurrentAmount: decimal.Zero, Deadline: date(2024, 1, 1)},
			now:  date(2024, 6, 1),
			want: Completed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.goal, tt.now))
		})
	}
}

func TestDeriveStatus_UnknownReferenceStart(t *testing.T) {
	now := date(2024, 6, 1)
	// default lookback: 30 of 90 days elapsed, threshold 0.267
	goal := Goal{TargetAmount: amount("1000"), CurrentAmount: amount("200"), Deadline: now.AddDate(0, 0, 60)}

	t.Run("should fall back to thirty days lookback", func(t *testing.T) {
		assert.Equal(t, Behind, DeriveStatus(goal, now))
	})

	t.Run("should honour a configured lookback", func(t *testing.T) {
		engine := NewStatusEngine(5)
		// 5 of 65 days elapsed
		assert.Equal(t, OnTrack, engine.DeriveStatus(goal, now))
	})

	t.Run("should use default lookback for non positive configuration", func(t *testing.T) {
		assert.Equal(t, DefaultLookback, NewStatusEngine(0).Lookback)
	})
}

func TestDeriveStatus_IsTotal(t *testing.T) {
	now := date(2024, 6, 1)
	for _, target := range []string{"0", "1", "1000"} {
		for _, current := range []string{"0", "1", "999", "5000"} {
			for _, offset := range []int{-10, 0, 10} {
				goal := Goal{TargetAmount: amount(target), CurrentAmount: amount(current), Deadline: now.AddDate(0, 0, offset)}
				status := DeriveStatus(goal, now)
				assert.True(t, status.Valid(), "target=%s current=%s offset=%d", target, current, offset)
			}
		}
	}
}

func TestProgressPercentage(t *testing.T) {
	supplied := amount("42.6")

	tests := []struct {
		name string
		goal Goal
		want int
	}{
		{name: "half", goal: Goal{TargetAmount: amount("1000"), CurrentAmount: amount("500")}, want: 50},
		{name: "rounded", goal: Goal{TargetAmount: amount("3"), CurrentAmount: amount("2")}, want: 67},
		{name: "clamped", goal: Goal{TargetAmount: amount("100"), CurrentAmount: amount("250")}, want: 100},
		{name: "zero target", goal: Goal{TargetAmount: decimal.Zero, CurrentAmount: decimal.Zero}, want: 100},
		{name: "supplied", goal: Goal{TargetAmount: amount("1000"), CurrentAmount: amount("10"), SuppliedProgress: &supplied}, want: 43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressPercentage(tt.goal))
		})
	}
}

func TestRemainingAmount(t *testing.T) {
	assert.True(t, amount("400").Equal(RemainingAmount(Goal{TargetAmount: amount("1000"), CurrentAmount: amount("600")})))
	assert.True(t, decimal.Zero.Equal(RemainingAmount(Goal{TargetAmount: amount("1000"), CurrentAmount: amount("1600")})))
}

func TestDaysOverdue(t *testing.T) {
	goal := Goal{TargetAmount: amount("1000"), CurrentAmount: amount("100"), Deadline: date(2024, 1, 1)}

	t.Run("should count started days after deadline", func(t *testing.T) {
		assert.Equal(t, 10, DaysOverdue(goal, date(2024, 1, 11)))
		assert.Equal(t, 1, DaysOverdue(goal, date(2024, 1, 1).Add(time.Hour)))
	})

	t.Run("should be zero before the deadline", func(t *testing.T) {
		assert.Equal(t, 0, DaysOverdue(goal, date(2023, 12, 1)))
	})

	t.Run("should be zero for completed goals", func(t *testing.T) {
		completed := goal
		completed.CurrentAmount = amount("1000")
		assert.Equal(t, 0, DaysOverdue(completed, date(2024, 2, 1)))
	})
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input string
		want  Status
		known bool
	}{
		{"COMPLETED", Completed, true},
		{" Concluído ", Completed, true},
		{"no-prazo", OnTrack, true},
		{"No Prazo", OnTrack, true},
		{"ON_TRACK", OnTrack, true},
		{"Atrasado", Behind, true},
		{"behind", Behind, true},
		{"Vencido", Overdue, true},
		{"OVERDUE", Overdue, true},
		{"paused", OnTrack, false},
		{"", OnTrack, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, known := ParseStatus(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestStatus_Label(t *testing.T) {
	assert.Equal(t, "No prazo", OnTrack.Label())
	assert.Equal(t, "Atrasado", Behind.Label())
	assert.Equal(t, "Concluído", Completed.Label())
	assert.Equal(t, "Vencido", Overdue.Label())
	assert.Equal(t, "PAUSED", Status("PAUSED").Label())
}
