package aggregate

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type monthKey struct {
	year  int
	month time.Month
}

func (k monthKey) less(other monthKey) bool {
	if k.year != other.year {
		return k.year < other.year
	}
	return k.month < other.month
}

// GroupByMonth sums records per (year, month) of their date. Months without records are not returned.
// Buckets are ordered chronologically.
func GroupByMonth(records []DatedAmount) []MonthlyBucket {
	totals := make(map[monthKey]decimal.Decimal)
	keys := make([]monthKey, 0)
	for _, r := range records {
		key := monthKey{r.Date.Year(), r.Date.Month()}
		total, seen := totals[key]
		if !seen {
			keys = append(keys, key)
			total = decimal.Zero
		}
		totals[key] = total.Add(r.Amount)
	}

	slices.SortFunc(keys, func(a, b monthKey) int {
		if a.less(b) {
			return -1
		}
		if b.less(a) {
			return 1
		}
		return 0
	})

	buckets := make([]MonthlyBucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, MonthlyBucket{Year: key.year, Month: key.month, Total: totals[key]})
	}
	return buckets
}

// MonthlyTotals groups records by month like GroupByMonth and keeps the buckets of the given year.
// A zero year keeps every year present in the data.
func MonthlyTotals(records []DatedAmount, year int) []MonthlyBucket {
	buckets := GroupByMonth(records)
	if year == 0 {
		return buckets
	}
	filtered := make([]MonthlyBucket, 0, len(buckets))
	for _, b := range buckets {
		if b.Year == year {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

// Lookup returns the total of the bucket matching year and month, or zero when there is none.
func Lookup(buckets []MonthlyBucket, year int, month time.Month) decimal.Decimal {
	for _, b := range buckets {
		if b.Year == year && b.Month == month {
			return b.Total
		}
	}
	return decimal.Zero
}
