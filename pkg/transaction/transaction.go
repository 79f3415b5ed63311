package transaction

import (
	"errors"
	"time"

	"github.com/finpro/finpro/pkg/aggregate"
	"github.com/shopspring/decimal"
)

type Type string

const (
	Income  Type = "INCOME"
	Expense Type = "EXPENSE"
)

func (t Type) Valid() bool {
	return t == Income || t == Expense
}

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryExists      = errors.New("category already exists")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidTransaction  = errors.New("invalid transaction")
)

// PiggyBankCategory is the expense category of money moved into a piggy bank.
const PiggyBankCategory = "Cofrinho"

type Category struct {
	Id   int
	Type Type
	Name string
}

type Transaction struct {
	Id          int
	Type        Type
	Date        time.Time
	Amount      decimal.Decimal
	Category    *Category
	Destination string
	Account     string
	Observation string
}

// Filter narrows List; zero values match everything. From and To are inclusive dates.
type Filter struct {
	Type Type
	From time.Time
	To   time.Time
}

func (f Filter) matches(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To) {
		return false
	}
	return true
}

// ToDatedAmounts converts transactions into aggregation records.
func ToDatedAmounts(transactions []Transaction) []aggregate.DatedAmount {
	records := make([]aggregate.DatedAmount, 0, len(transactions))
	for _, t := range transactions {
		record := aggregate.DatedAmount{Date: t.Date, Amount: t.Amount}
		if t.Category != nil {
			record.CategoryName = t.Category.Name
		}
		records = append(records, record)
	}
	return records
}
