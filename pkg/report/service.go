package report

import (
	"context"
	"fmt"
	"time"

	"github.com/finpro/finpro/internal/utils"
	"github.com/finpro/finpro/pkg/aggregate"
	"github.com/finpro/finpro/pkg/piggybank"
	"github.com/finpro/finpro/pkg/transaction"
	"github.com/finpro/finpro/pkg/user"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type TransactionLister interface {
	List(ctx context.Context, filter transaction.Filter) ([]transaction.Transaction, error)
}

type PiggyBankLister interface {
	List(ctx context.Context, filter piggybank.ListFilter) ([]piggybank.Progress, error)
}

type Service interface {
	Generate(ctx context.Context, options Options) (Report, error)
}

type ServiceImpl struct {
	transactions    TransactionLister
	piggyBanks      PiggyBankLister
	clock           utils.Clock
	topCategories   int
	maxTransactions int
}

func NewService(transactions TransactionLister, piggyBanks PiggyBankLister, clock utils.Clock, topCategories, maxTransactions int) *ServiceImpl {
	return &ServiceImpl{
		transactions:    transactions,
		piggyBanks:      piggyBanks,
		clock:           clock,
		topCategories:   topCategories,
		maxTransactions: maxTransactions,
	}
}

func (s *ServiceImpl) Generate(ctx context.Context, options Options) (Report, error) {
	if _, err := user.CurrentId(ctx); err != nil {
		return Report{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !options.hasSection() {
		return Report{}, ErrNoSections
	}
	if options.From.After(options.To) {
		return Report{}, fmt.Errorf("%w: start date after end date", ErrInvalidPeriod)
	}
	log.Debugf("generating report from %s to %s", options.From.Format(time.DateOnly), options.To.Format(time.DateOnly))

	year := options.To.Year()
	var period, yearly []transaction.Transaction
	var piggyBanks []piggybank.Progress
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		period, err = s.fetchTransactions(gctx, transaction.Filter{From: options.From, To: options.To})
		return err
	})
	if options.IncludeCharts {
		g.Go(func() (err error) {
			yearly, err = s.fetchTransactions(gctx, transaction.Filter{
				From: time.Date(year, time.January, 1, 0, 0, 0, 0, options.To.Location()),
				To:   time.Date(year, time.December, 31, 0, 0, 0, 0, options.To.Location()),
			})
			return err
		})
	}
	if options.IncludePiggyBanks {
		g.Go(func() (err error) {
			piggyBanks, err = s.fetchPiggyBanks(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	incomes, expenses := split(period)
	incomeRecords := transaction.ToDatedAmounts(incomes)
	expenseRecords := transaction.ToDatedAmounts(expenses)

	report := Report{
		Options:     options,
		GeneratedAt: s.clock.Now(),
	}
	if options.IncludeSummary {
		totalIncome := aggregate.Sum(incomeRecords)
		totalExpense := aggregate.Sum(expenseRecords)
		report.Summary = Summary{
			TotalIncome:      totalIncome,
			TotalExpense:     totalExpense,
			Balance:          totalIncome.Sub(totalExpense),
			TransactionCount: len(period),
			Period:           PeriodLabel(options.From, options.To),
		}
	}
	if options.IncludeCharts {
		yearlyIncomes, yearlyExpenses := split(yearly)
		report.Monthly = aggregate.MergeYear(
			aggregate.GroupByMonth(transaction.ToDatedAmounts(yearlyIncomes)),
			aggregate.GroupByMonth(transaction.ToDatedAmounts(yearlyExpenses)),
			year,
		)
	}
	if options.IncludeCategories {
		report.Categories = Categories{
			Expenses: aggregate.ByCategory(expenseRecords, aggregate.CategoryFilter{}),
			Incomes:  aggregate.ByCategory(incomeRecords, aggregate.CategoryFilter{}),
		}
		report.TopCategories = Categories{
			Expenses: aggregate.TopCategories(report.Categories.Expenses, s.topCategories),
			Incomes:  aggregate.TopCategories(report.Categories.Incomes, s.topCategories),
		}
	}
	if options.IncludeTransactions {
		report.Transactions = period
		if s.maxTransactions > 0 && len(period) > s.maxTransactions {
			report.Transactions = period[:s.maxTransactions]
		}
	}
	if options.IncludePiggyBanks {
		report.PiggyBanks = piggyBanks
	}
	return report, nil
}

// fetchTransactions degrades storage failures to an empty period; only a cancelled context is reported.
func (s *ServiceImpl) fetchTransactions(ctx context.Context, filter transaction.Filter) ([]transaction.Transaction, error) {
	transactions, err := s.transactions.List(ctx, filter)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warnf("failed to fetch report transactions, using empty data: %v", err)
		return []transaction.Transaction{}, nil
	}
	return transactions, nil
}

func (s *ServiceImpl) fetchPiggyBanks(ctx context.Context) ([]piggybank.Progress, error) {
	piggyBanks, err := s.piggyBanks.List(ctx, piggybank.ListFilter{})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warnf("failed to fetch report piggy banks, using empty data: %v", err)
		return []piggybank.Progress{}, nil
	}
	return piggyBanks, nil
}

func split(transactions []transaction.Transaction) (incomes, expenses []transaction.Transaction) {
	for _, t := range transactions {
		if t.Type == transaction.Income {
			incomes = append(incomes, t)
		} else {
			expenses = append(expenses, t)
		}
	}
	return incomes, expenses
}
