package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finpro/finpro/internal/utils"
	"github.com/finpro/finpro/pkg/piggybank"
	"github.com/finpro/finpro/pkg/transaction"
	"github.com/finpro/finpro/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type piggyBankListerStub struct {
	progress []piggybank.Progress
	err      error
}

func (s piggyBankListerStub) List(ctx context.Context, filter piggybank.ListFilter) ([]piggybank.Progress, error) {
	return s.progress, s.err
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, amount(want).Equal(got), "want %s, got %s", want, got)
}

func allSections(from, to time.Time) Options {
	options, _ := Options{From: from, To: to}.WithSections(nil)
	return options
}

func setupServiceTest(t *testing.T, maxTransactions int) (context.Context, *ServiceImpl, *transaction.RepositoryStub) {
	t.Helper()
	repo := transaction.NewRepositoryStub()
	transactions := transaction.NewService(repo, nil)
	ctx := user.WithUser(context.Background(), user.User{Id: 1})

	mercado, err := transactions.CreateCategory(ctx, transaction.Category{Type: transaction.Expense, Name: "Mercado"})
	require.NoError(t, err)
	salario, err := transactions.CreateCategory(ctx, transaction.Category{Type: transaction.Income, Name: "Salário"})
	require.NoError(t, err)

	for _, tx := range []transaction.Transaction{
		{Type: transaction.Income, Date: date(2024, 1, 5), Amount: amount("2000"), Category: &salario},
		{Type: transaction.Income, Date: date(2024, 3, 5), Amount: amount("3000"), Category: &salario},
		{Type: transaction.Expense, Date: date(2024, 3, 8), Amount: amount("450.50"), Category: &mercado},
		{Type: transaction.Expense, Date: date(2024, 3, 12), Amount: amount("49.50")},
		{Type: transaction.Expense, Date: date(2024, 4, 2), Amount: amount("100"), Category: &mercado},
	} {
		_, err := transactions.Create(ctx, tx)
		require.NoError(t, err)
	}

	clock := &utils.MockClock{FixedNow: time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)}
	piggyBanks := piggyBankListerStub{progress: []piggybank.Progress{
		{PiggyBank: piggybank.PiggyBank{Id: 1, Name: "Viagem"}, Status: piggybank.Behind, ProgressPercentage: 30},
	}}
	return ctx, NewService(transactions, piggyBanks, clock, 5, maxTransactions), repo
}

func TestService_Generate(t *testing.T) {
	ctx, service, _ := setupServiceTest(t, 50)

	// when
	report, err := service.Generate(ctx, allSections(date(2024, 3, 1), date(2024, 3, 31)))

	// then
	require.NoError(t, err)
	assertDecimal(t, "3000", report.Summary.TotalIncome)
	assertDecimal(t, "500", report.Summary.TotalExpense)
	assertDecimal(t, "2500", report.Summary.Balance)
	assert.Equal(t, 3, report.Summary.TransactionCount)
	assert.Equal(t, "01/03/2024 até 31/03/2024", report.Summary.Period)

	require.Len(t, report.Monthly, 12)
	assertDecimal(t, "2000", report.Monthly[0].ValueA)
	assertDecimal(t, "100", report.Monthly[3].ValueB)
	assert.Equal(t, "Abr", report.Monthly[3].Label)

	require.Len(t, report.Categories.Expenses, 2)
	assert.Equal(t, "Mercado", report.Categories.Expenses[0].CategoryName)
	assert.Equal(t, 90, report.Categories.Expenses[0].Percentage)
	assert.Equal(t, "Sem categoria", report.Categories.Expenses[1].CategoryName)
	require.Len(t, report.Categories.Incomes, 1)
	assert.Equal(t, report.Categories, report.TopCategories)

	require.Len(t, report.Transactions, 3)
	assert.Equal(t, date(2024, 3, 12), report.Transactions[0].Date)

	require.Len(t, report.PiggyBanks, 1)
	assert.Equal(t, piggybank.Behind, report.PiggyBanks[0].Status)
	assert.Equal(t, time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC), report.GeneratedAt)
}

func TestService_Generate_LimitsTransactions(t *testing.T) {
	ctx, service, _ := setupServiceTest(t, 2)

	report, err := service.Generate(ctx, allSections(date(2024, 1, 1), date(2024, 12, 31)))

	require.NoError(t, err)
	assert.Len(t, report.Transactions, 2)
	assert.Equal(t, 5, report.Summary.TransactionCount)
}

func TestService_Generate_OnlySelectedSections(t *testing.T) {
	ctx, service, _ := setupServiceTest(t, 50)
	options, err := Options{From: date(2024, 3, 1), To: date(2024, 3, 31)}.WithSections([]Section{SectionSummary})
	require.NoError(t, err)

	report, err := service.Generate(ctx, options)

	require.NoError(t, err)
	assert.Equal(t, 3, report.Summary.TransactionCount)
	assert.Empty(t, report.Monthly)
	assert.Empty(t, report.Categories.Expenses)
	assert.Empty(t, report.Transactions)
	assert.Empty(t, report.PiggyBanks)
}

func TestService_Generate_Errors(t *testing.T) {
	ctx, service, _ := setupServiceTest(t, 50)

	t.Run("should require a section", func(t *testing.T) {
		_, err := service.Generate(ctx, Options{From: date(2024, 3, 1), To: date(2024, 3, 31)})

		assert.ErrorIs(t, err, ErrNoSections)
	})

	t.Run("should reject reversed periods", func(t *testing.T) {
		_, err := service.Generate(ctx, allSections(date(2024, 4, 1), date(2024, 3, 1)))

		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("should require a user", func(t *testing.T) {
		_, err := service.Generate(context.Background(), allSections(date(2024, 3, 1), date(2024, 3, 31)))

		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestService_Generate_DegradesOnFetchFailure(t *testing.T) {
	// given
	ctx, service, repo := setupServiceTest(t, 50)
	repo.ListErr = errors.New("connection refused")
	service.piggyBanks = piggyBankListerStub{err: errors.New("connection refused")}

	// when
	report, err := service.Generate(ctx, allSections(date(2024, 3, 1), date(2024, 3, 31)))

	// then
	require.NoError(t, err)
	assert.Equal(t, 0, report.Summary.TransactionCount)
	assertDecimal(t, "0", report.Summary.Balance)
	assert.Len(t, report.Monthly, 12)
	assert.Empty(t, report.Transactions)
	assert.Empty(t, report.PiggyBanks)
}

func TestService_Generate_CancelledContext(t *testing.T) {
	ctx, service, repo := setupServiceTest(t, 50)
	repo.ListErr = errors.New("query cancelled")
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	_, err := service.Generate(ctx, allSections(date(2024, 3, 1), date(2024, 3, 31)))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2024, 5, 15, 18, 30, 0, 0, time.UTC)
	tests := []struct {
		name     string
		period   Period
		from, to time.Time
		wantFrom time.Time
		wantTo   time.Time
	}{
		{"month starts on the first day", PeriodMonth, time.Time{}, time.Time{}, date(2024, 5, 1), date(2024, 5, 15)},
		{"quarter goes three months back", PeriodQuarter, time.Time{}, time.Time{}, date(2024, 2, 15), date(2024, 5, 15)},
		{"year starts in january", PeriodYear, time.Time{}, time.Time{}, date(2024, 1, 1), date(2024, 5, 15)},
		{"custom keeps given dates", PeriodCustom, date(2023, 7, 1), date(2023, 9, 30), date(2023, 7, 1), date(2023, 9, 30)},
		{"custom defaults to the last month", PeriodCustom, time.Time{}, time.Time{}, date(2024, 4, 15), date(2024, 5, 15)},
		{"presets ignore given dates", PeriodYear, date(2020, 1, 1), date(2020, 2, 1), date(2024, 1, 1), date(2024, 5, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := ResolvePeriod(tt.period, tt.from, tt.to, now)

			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantTo, to)
		})
	}

	t.Run("should reject unknown presets", func(t *testing.T) {
		_, _, err := ResolvePeriod("week", time.Time{}, time.Time{}, now)

		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("should reject reversed custom ranges", func(t *testing.T) {
		_, _, err := ResolvePeriod(PeriodCustom, date(2024, 5, 2), date(2024, 5, 1), now)

		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})
}

func TestOptions_WithSections(t *testing.T) {
	t.Run("should enable every section by default", func(t *testing.T) {
		options, err := Options{}.WithSections(ParseSections(""))

		require.NoError(t, err)
		assert.True(t, options.IncludeSummary && options.IncludeCharts && options.IncludeCategories &&
			options.IncludeTransactions && options.IncludePiggyBanks)
	})

	t.Run("should parse a list", func(t *testing.T) {
		options, err := Options{}.WithSections(ParseSections(" Summary, piggy-banks ,"))

		require.NoError(t, err)
		assert.Equal(t, Options{IncludeSummary: true, IncludePiggyBanks: true}, options)
	})

	t.Run("should reject unknown sections", func(t *testing.T) {
		_, err := Options{}.WithSections(ParseSections("summary,budget"))

		assert.Error(t, err)
	})
}
