// Package aggregate buckets dated amounts into months and categories for charts and reports.
//
// Every function is pure: inputs are never mutated and results are rebuilt from scratch on each call.
package aggregate

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Uncategorized is the bucket label used for records without a category. It is shown to users as is.
const Uncategorized = "Sem categoria"

// DatedAmount is the common record shape consumed by the aggregator.
type DatedAmount struct {
	Date         time.Time
	Amount       decimal.Decimal
	CategoryName string
}

type MonthlyBucket struct {
	Year  int
	Month time.Month
	Total decimal.Decimal
}

type CategoryBucket struct {
	CategoryName string
	Total        decimal.Decimal
	// Percentage is the rounded share of Total in the sum of all buckets of the same call.
	Percentage int
	Count      int
}

// ChartRow is one month of two merged monthly series.
type ChartRow struct {
	Year       int
	Month      time.Month
	Label      string
	ValueA     decimal.Decimal
	ValueB     decimal.Decimal
	Difference decimal.Decimal
}

var monthLabels = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// MonthLabel returns the three-letter label of a month, or an empty string for an invalid month.
func MonthLabel(month time.Month) string {
	if month < time.January || month > time.December {
		return ""
	}
	return monthLabels[month-1]
}

// Sum adds the amounts of all records.
func Sum(records []DatedAmount) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

func categoryOf(r DatedAmount) string {
	name := strings.TrimSpace(r.CategoryName)
	if name == "" {
		return Uncategorized
	}
	return name
}
