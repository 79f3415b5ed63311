package aggregate

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CategoryFilter narrows the records before grouping. Zero fields mean "no filter".
type CategoryFilter struct {
	Year  int
	Month time.Month
}

func (f CategoryFilter) matches(date time.Time) bool {
	if f.Year != 0 && date.Year() != f.Year {
		return false
	}
	if f.Month != 0 && date.Month() != f.Month {
		return false
	}
	return true
}

// ByCategory sums the records matching filter per category name, ordered by total descending.
// Categories with equal totals keep the order in which they first appear in records.
func ByCategory(records []DatedAmount, filter CategoryFilter) []CategoryBucket {
	index := make(map[string]int)
	buckets := make([]CategoryBucket, 0)
	grandTotal := decimal.Zero

	for _, r := range records {
		if !filter.matches(r.Date) {
			continue
		}
		name := categoryOf(r)
		i, seen := index[name]
		if !seen {
			i = len(buckets)
			index[name] = i
			buckets = append(buckets, CategoryBucket{CategoryName: name, Total: decimal.Zero})
		}
		buckets[i].Total = buckets[i].Total.Add(r.Amount)
		buckets[i].Count++
		grandTotal = grandTotal.Add(r.Amount)
	}

	if grandTotal.IsPositive() {
		for i := range buckets {
			buckets[i].Percentage = int(buckets[i].Total.Div(grandTotal).Mul(hundred).Round(0).IntPart())
		}
	}

	slices.SortStableFunc(buckets, func(a, b CategoryBucket) int {
		return b.Total.Cmp(a.Total)
	})
	return buckets
}

// TopCategories returns at most n buckets from an already ordered ByCategory result.
func TopCategories(buckets []CategoryBucket, n int) []CategoryBucket {
	if n <= 0 {
		return []CategoryBucket{}
	}
	if len(buckets) <= n {
		return slices.Clone(buckets)
	}
	return slices.Clone(buckets[:n])
}
