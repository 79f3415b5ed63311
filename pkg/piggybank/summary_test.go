package piggybank

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, amount(want).Equal(got), "want %s, got %s", want, got)
}

func TestSummarize(t *testing.T) {
	now := date(2024, 6, 1)

	t.Run("should return zero summary for no records", func(t *testing.T) {
		summary := Summarize(nil, now)

		assert.Equal(t, 0, summary.TotalPiggyBanks)
		assert.Equal(t, 0, summary.ProgressPercentage)
		assertDecimal(t, "0", summary.TotalSaved)
		assertDecimal(t, "0", summary.TotalGoals)
	})

	t.Run("should count localized statuses and total amounts", func(t *testing.T) {
		// given
		records := []Record{
			{"status": "concluido", "current": 500, "target": 500},
			{"status": "no_prazo", "current": 100, "target": 1000},
		}

		// when
		summary := Summarize(records, now)

		// then
		assert.Equal(t, 2, summary.TotalPiggyBanks)
		assert.Equal(t, 1, summary.CompletedPiggyBanks)
		assert.Equal(t, 1, summary.OnTrackCount)
		assert.Equal(t, 0, summary.BehindCount)
		assert.Equal(t, 0, summary.OverdueCount)
		assertDecimal(t, "600", summary.TotalSaved)
		assertDecimal(t, "1500", summary.TotalGoals)
		assert.Equal(t, 40, summary.ProgressPercentage)
	})

	t.Run("should prefer calculated status over stored status", func(t *testing.T) {
		records := []Record{{"calculatedStatus": "BEHIND", "status": "ON_TRACK", "currentAmount": 10, "savingsGoal": 100}}

		summary := Summarize(records, now)

		assert.Equal(t, 1, summary.BehindCount)
		assert.Equal(t, 0, summary.OnTrackCount)
	})

	t.Run("should count unknown statuses as on track", func(t *testing.T) {
		records := []Record{{"status": "paused", "currentAmount": 10, "savingsGoal": 100}}

		summary := Summarize(records, now)

		assert.Equal(t, 1, summary.OnTrackCount)
	})

	t.Run("should count overdue goals", func(t *testing.T) {
		records := []Record{{"status": "Vencido", "currentAmount": 10, "savingsGoal": 100}}

		summary := Summarize(records, now)

		assert.Equal(t, 1, summary.OverdueCount)
	})

	t.Run("should derive status when none is given", func(t *testing.T) {
		records := []Record{
			{"currentAmount": 100, "savingsGoal": 1000, "targetDate": "2024-01-01"},
			{"currentAmount": 50, "savingsGoal": 1000, "targetDate": "2024-12-31", "createdAt": "2024-01-01T00:00:00Z"},
			{"currentAmount": 50, "savingsGoal": 1000},
		}

		summary := Summarize(records, date(2024, 11, 1))

		assert.Equal(t, 1, summary.OverdueCount)
		assert.Equal(t, 1, summary.BehindCount)
		assert.Equal(t, 1, summary.OnTrackCount)
	})

	t.Run("should read string amounts with either decimal separator", func(t *testing.T) {
		records := []Record{
			{"status": "ON_TRACK", "currentAmount": "R$ 1.234,50", "savingsGoal": "2000"},
			{"status": "ON_TRACK", "current_amount": "265.50", "savings_goal": "1,000.00"},
			{"status": "ON_TRACK", "currentAmount": "abc", "savingsGoal": json.Number("500")},
		}

		summary := Summarize(records, now)

		assertDecimal(t, "1500", summary.TotalSaved)
		assertDecimal(t, "3500", summary.TotalGoals)
		assert.Equal(t, 43, summary.ProgressPercentage)
	})

	t.Run("should read goals wrapped in a progress response", func(t *testing.T) {
		var records []Record
		body := `[{"piggyBank": {"status": "COMPLETED", "currentAmount": 300.25, "savingsGoal": 300}}]`
		require.NoError(t, json.Unmarshal([]byte(body), &records))

		summary := Summarize(records, now)

		assert.Equal(t, 1, summary.CompletedPiggyBanks)
		assertDecimal(t, "300.25", summary.TotalSaved)
		assert.Equal(t, 100, summary.ProgressPercentage)
	})

	t.Run("should keep counts consistent with total", func(t *testing.T) {
		records := []Record{
			{"status": "COMPLETED"}, {"status": "BEHIND"}, {"status": "atrasada"}, {"status": "x"}, {"status": "OVERDUE"}, {},
		}

		s := Summarize(records, now)

		assert.Equal(t, s.TotalPiggyBanks, s.CompletedPiggyBanks+s.OnTrackCount+s.BehindCount+s.OverdueCount)
		assert.Equal(t, 0, s.ProgressPercentage)
	})
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"10":          "10",
		"10.5":        "10.5",
		"10,5":        "10.5",
		"1.234.567,8": "1234567.8",
		"1,234,567.8": "1234567.8",
		"R$50":        "50",
		"":            "0",
		"dez":         "0",
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assertDecimal(t, want, parseAmount(input))
		})
	}
}
