package aggregate

import (
	"time"

	"github.com/shopspring/decimal"
)

// MergeMonthlySeries lines up two monthly series over a window of windowSize months ending with the month of
// referenceDate (inclusive). Rows are ordered oldest first and a month missing from a series counts as zero,
// so the result always has exactly windowSize rows.
func MergeMonthlySeries(seriesA, seriesB []MonthlyBucket, windowSize int, referenceDate time.Time) []ChartRow {
	if windowSize <= 0 {
		return []ChartRow{}
	}
	valuesA := indexByMonth(seriesA)
	valuesB := indexByMonth(seriesB)

	rows := make([]ChartRow, 0, windowSize)
	refYear, refMonth, _ := referenceDate.Date()
	for offset := windowSize - 1; offset >= 0; offset-- {
		// day 1 so that subtracting months never lands past the end of a shorter month
		month := time.Date(refYear, refMonth-time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
		key := monthKey{month.Year(), month.Month()}
		a := valueOrZero(valuesA, key)
		b := valueOrZero(valuesB, key)
		rows = append(rows, ChartRow{
			Year:       key.year,
			Month:      key.month,
			Label:      MonthLabel(key.month),
			ValueA:     a,
			ValueB:     b,
			Difference: a.Sub(b),
		})
	}
	return rows
}

// MergeYear merges both series over the twelve months of year.
func MergeYear(seriesA, seriesB []MonthlyBucket, year int) []ChartRow {
	return MergeMonthlySeries(seriesA, seriesB, 12, time.Date(year, time.December, 1, 0, 0, 0, 0, time.UTC))
}

func indexByMonth(series []MonthlyBucket) map[monthKey]decimal.Decimal {
	values := make(map[monthKey]decimal.Decimal, len(series))
	for _, b := range series {
		key := monthKey{b.Year, b.Month}
		if existing, ok := values[key]; ok {
			values[key] = existing.Add(b.Total)
			continue
		}
		values[key] = b.Total
	}
	return values
}

func valueOrZero(values map[monthKey]decimal.Decimal, key monthKey) decimal.Decimal {
	if v, ok := values[key]; ok {
		return v
	}
	return decimal.Zero
}
