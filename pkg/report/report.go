package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finpro/finpro/internal/utils"
	"github.com/finpro/finpro/pkg/aggregate"
	"github.com/finpro/finpro/pkg/piggybank"
	"github.com/finpro/finpro/pkg/transaction"
	"github.com/shopspring/decimal"
)

var (
	ErrNoSections    = errors.New("at least one report section must be selected")
	ErrInvalidPeriod = errors.New("invalid report period")
)

type Period string

const (
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodCustom  Period = "custom"
)

type Section string

const (
	SectionSummary      Section = "summary"
	SectionCharts       Section = "charts"
	SectionCategories   Section = "categories"
	SectionTransactions Section = "transactions"
	SectionPiggyBanks   Section = "piggybanks"
)

var AllSections = []Section{SectionSummary, SectionCharts, SectionCategories, SectionTransactions, SectionPiggyBanks}

// Options selects the reported period (inclusive dates) and the sections to build.
type Options struct {
	From                time.Time
	To                  time.Time
	IncludeSummary      bool
	IncludeCharts       bool
	IncludeCategories   bool
	IncludeTransactions bool
	IncludePiggyBanks   bool
}

func (o Options) hasSection() bool {
	return o.IncludeSummary || o.IncludeCharts || o.IncludeCategories || o.IncludeTransactions || o.IncludePiggyBanks
}

// WithSections enables the named sections. An empty list enables all of them.
func (o Options) WithSections(sections []Section) (Options, error) {
	if len(sections) == 0 {
		sections = AllSections
	}
	for _, section := range sections {
		switch section {
		case SectionSummary:
			o.IncludeSummary = true
		case SectionCharts:
			o.IncludeCharts = true
		case SectionCategories:
			o.IncludeCategories = true
		case SectionTransactions:
			o.IncludeTransactions = true
		case SectionPiggyBanks:
			o.IncludePiggyBanks = true
		default:
			return o, fmt.Errorf("unknown report section %q", section)
		}
	}
	return o, nil
}

// ParseSections splits a comma separated list such as "summary,charts".
func ParseSections(s string) []Section {
	var sections []Section
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		sections = append(sections, Section(strings.ReplaceAll(part, "-", "")))
	}
	return sections
}

// ResolvePeriod turns a preset into its date range, ending today. Custom uses from and to,
// which default to one month ago and today.
func ResolvePeriod(period Period, from, to, now time.Time) (time.Time, time.Time, error) {
	today := utils.StartOfDay(now)
	switch period {
	case PeriodMonth:
		return utils.StartOfMonth(today), today, nil
	case PeriodQuarter:
		return today.AddDate(0, -3, 0), today, nil
	case PeriodYear:
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location()), today, nil
	case PeriodCustom, "":
		if from.IsZero() {
			from = today.AddDate(0, -1, 0)
		}
		if to.IsZero() {
			to = today
		}
		from, to = utils.StartOfDay(from), utils.StartOfDay(to)
		if from.After(to) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start date after end date", ErrInvalidPeriod)
		}
		return from, to, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidPeriod, period)
	}
}

func PeriodLabel(from, to time.Time) string {
	return from.Format("02/01/2006") + " até " + to.Format("02/01/2006")
}

type Summary struct {
	TotalIncome      decimal.Decimal
	TotalExpense     decimal.Decimal
	Balance          decimal.Decimal
	TransactionCount int
	Period           string
}

type Categories struct {
	Expenses []aggregate.CategoryBucket
	Incomes  []aggregate.CategoryBucket
}

// Report holds the sections selected in Options; the others are left empty.
type Report struct {
	Options       Options
	GeneratedAt   time.Time
	Summary       Summary
	Monthly       []aggregate.ChartRow
	Categories    Categories
	TopCategories Categories
	Transactions  []transaction.Transaction
	PiggyBanks    []piggybank.Progress
}
