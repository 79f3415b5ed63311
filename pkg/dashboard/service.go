package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/finpro/finpro/internal/utils"
	"github.com/finpro/finpro/pkg/aggregate"
	"github.com/finpro/finpro/pkg/piggybank"
	"github.com/finpro/finpro/pkg/transaction"
	"github.com/finpro/finpro/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// MaxWindowMonths bounds the income/expense chart.
const MaxWindowMonths = 36

type TransactionLister interface {
	List(ctx context.Context, filter transaction.Filter) ([]transaction.Transaction, error)
}

type SummaryProvider interface {
	Summary(ctx context.Context) piggybank.Summary
}

type Overview struct {
	Year          int
	Month         time.Month
	Label         string
	Income        decimal.Decimal
	Expense       decimal.Decimal
	Balance       decimal.Decimal
	TopCategories []aggregate.CategoryBucket
	PiggyBanks    piggybank.Summary
}

type Service interface {
	MonthlyExpenses(ctx context.Context, year int) ([]aggregate.MonthlyBucket, error)
	MonthlyIncomes(ctx context.Context, year int) ([]aggregate.MonthlyBucket, error)
	ExpensesByCategory(ctx context.Context, filter aggregate.CategoryFilter) ([]aggregate.CategoryBucket, error)
	Chart(ctx context.Context, months int) ([]aggregate.ChartRow, error)
	Overview(ctx context.Context, year int, month time.Month) (Overview, error)
}

type ServiceImpl struct {
	transactions  TransactionLister
	piggyBanks    SummaryProvider
	clock         utils.Clock
	windowMonths  int
	topCategories int
}

func NewService(transactions TransactionLister, piggyBanks SummaryProvider, clock utils.Clock, windowMonths, topCategories int) *ServiceImpl {
	return &ServiceImpl{
		transactions:  transactions,
		piggyBanks:    piggyBanks,
		clock:         clock,
		windowMonths:  windowMonths,
		topCategories: topCategories,
	}
}

func (s *ServiceImpl) MonthlyExpenses(ctx context.Context, year int) ([]aggregate.MonthlyBucket, error) {
	return s.monthly(ctx, transaction.Expense, year)
}

func (s *ServiceImpl) MonthlyIncomes(ctx context.Context, year int) ([]aggregate.MonthlyBucket, error) {
	return s.monthly(ctx, transaction.Income, year)
}

func (s *ServiceImpl) monthly(ctx context.Context, t transaction.Type, year int) ([]aggregate.MonthlyBucket, error) {
	if _, err := user.CurrentId(ctx); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	records, err := s.fetch(ctx, yearFilter(t, year))
	if err != nil {
		return nil, err
	}
	return aggregate.MonthlyTotals(records, year), nil
}

func (s *ServiceImpl) ExpensesByCategory(ctx context.Context, filter aggregate.CategoryFilter) ([]aggregate.CategoryBucket, error) {
	if _, err := user.CurrentId(ctx); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	records, err := s.fetch(ctx, yearFilter(transaction.Expense, filter.Year))
	if err != nil {
		return nil, err
	}
	return aggregate.ByCategory(records, filter), nil
}

// Chart merges incomes (A) and expenses (B) for the months window ending at the current month.
// A non positive months falls back to the configured window.
func (s *ServiceImpl) Chart(ctx context.Context, months int) ([]aggregate.ChartRow, error) {
	if _, err := user.CurrentId(ctx); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if months <= 0 {
		months = s.windowMonths
	}
	months = min(months, MaxWindowMonths)

	now := s.clock.Now()
	currentMonth := utils.StartOfMonth(now)
	from := currentMonth.AddDate(0, 1-months, 0)
	to := currentMonth.AddDate(0, 1, -1)

	incomes, expenses, err := s.fetchBoth(ctx,
		transaction.Filter{Type: transaction.Income, From: from, To: to},
		transaction.Filter{Type: transaction.Expense, From: from, To: to},
	)
	if err != nil {
		return nil, err
	}
	return aggregate.MergeMonthlySeries(aggregate.GroupByMonth(incomes), aggregate.GroupByMonth(expenses), months, now), nil
}

// Overview reports one month: totals, its biggest expense categories and the piggy bank summary.
func (s *ServiceImpl) Overview(ctx context.Context, year int, month time.Month) (Overview, error) {
	if _, err := user.CurrentId(ctx); err != nil {
		return Overview{}, fmt.Errorf("failed to get current user: %w", err)
	}
	now := s.clock.Now()
	if year <= 0 {
		year = now.Year()
	}
	if month < time.January || month > time.December {
		month = now.Month()
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, -1)

	var incomes, expenses []aggregate.DatedAmount
	var summary piggybank.Summary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		incomes, err = s.fetch(gctx, transaction.Filter{Type: transaction.Income, From: from, To: to})
		return err
	})
	g.Go(func() (err error) {
		expenses, err = s.fetch(gctx, transaction.Filter{Type: transaction.Expense, From: from, To: to})
		return err
	})
	g.Go(func() error {
		summary = s.piggyBanks.Summary(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	income := aggregate.Sum(incomes)
	expense := aggregate.Sum(expenses)
	return Overview{
		Year:          year,
		Month:         month,
		Label:         aggregate.MonthLabel(month),
		Income:        income,
		Expense:       expense,
		Balance:       income.Sub(expense),
		TopCategories: aggregate.TopCategories(aggregate.ByCategory(expenses, aggregate.CategoryFilter{}), s.topCategories),
		PiggyBanks:    summary,
	}, nil
}

func (s *ServiceImpl) fetchBoth(ctx context.Context, a, b transaction.Filter) ([]aggregate.DatedAmount, []aggregate.DatedAmount, error) {
	var first, second []aggregate.DatedAmount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		first, err = s.fetch(gctx, a)
		return err
	})
	g.Go(func() (err error) {
		second, err = s.fetch(gctx, b)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

// fetch loads transactions for filter. Storage failures degrade to no records; only a
// cancelled context is reported.
func (s *ServiceImpl) fetch(ctx context.Context, filter transaction.Filter) ([]aggregate.DatedAmount, error) {
	transactions, err := s.transactions.List(ctx, filter)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warnf("failed to fetch %s transactions, using empty data: %v", filter.Type, err)
		return []aggregate.DatedAmount{}, nil
	}
	return transaction.ToDatedAmounts(transactions), nil
}

func yearFilter(t transaction.Type, year int) transaction.Filter {
	filter := transaction.Filter{Type: t}
	if year > 0 {
		filter.From = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		filter.To = time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	return filter
}
