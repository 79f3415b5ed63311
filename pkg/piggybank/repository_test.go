package piggybank

import (
	"context"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/finpro/finpro/internal/test_utils"
	"github.com/finpro/finpro/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, Repository, int) {
	if testing.Short() {
		t.Skip("repository tests need a database")
	}
	db := openDb()
	ctx := test_utils.InsertUser(t, db, "piggy_tester")
	t.Cleanup(func() {
		db.Close()
		require.NoError(t, pgContainer.Restore(context.Background()))
	})
	userId, err := user.CurrentId(ctx)
	require.NoError(t, err)
	return ctx, NewRepo(db), userId
}

func TestRepositoryImpl_StoreAndGet(t *testing.T) {
	t.Run("should store piggy bank with optional fields", func(t *testing.T) {
		// given
		ctx, repo, userId := setupTestRepository(t)
		progress := amount("12.5")
		p := PiggyBank{
			Name:               "Reserva",
			SavingsGoal:        amount("5000.00"),
			MonthlyDeposit:     amount("250.00"),
			CurrentAmount:      amount("100.10"),
			TargetDate:         date(2025, 12, 31),
			DepositDay:         5,
			ProgressPercentage: &progress,
		}

		// when
		stored, err := repo.Store(ctx, userId, p)
		require.NoError(t, err)
		fetched, err := repo.Get(ctx, userId, stored.Id)

		// then
		require.NoError(t, err)
		assert.Equal(t, "Reserva", fetched.Name)
		assert.True(t, amount("100.10").Equal(fetched.CurrentAmount))
		assert.Equal(t, 5, fetched.DepositDay)
		require.NotNil(t, fetched.ProgressPercentage)
		assert.True(t, progress.Equal(*fetched.ProgressPercentage))
		assert.Nil(t, fetched.LastDepositDate)
		assert.False(t, fetched.CreatedAt.IsZero())
		assert.Equal(t, "2025-12-31", fetched.TargetDate.Format(time.DateOnly))
	})

	t.Run("should reject duplicated name", func(t *testing.T) {
		ctx, repo, userId := setupTestRepository(t)
		_, err := repo.Store(ctx, userId, travelGoal("Viagem"))
		require.NoError(t, err)

		_, err = repo.Store(ctx, userId, travelGoal("VIAGEM"))

		assert.ErrorIs(t, err, ErrPiggyBankAlreadyExists)
	})

	t.Run("should not find piggy bank of another user", func(t *testing.T) {
		ctx, repo, userId := setupTestRepository(t)
		stored, err := repo.Store(ctx, userId, travelGoal("Viagem"))
		require.NoError(t, err)

		_, err = repo.Get(ctx, userId+1, stored.Id)

		assert.ErrorIs(t, err, ErrPiggyBankNotFound)
	})
}

func TestRepositoryImpl_AddDeposit(t *testing.T) {
	ctx, repo, userId := setupTestRepository(t)
	stored, err := repo.Store(ctx, userId, travelGoal("Viagem"))
	require.NoError(t, err)
	at := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	_, err = repo.AddDeposit(ctx, userId, stored.Id, Deposit{Amount: amount("100.25"), Date: at})
	require.NoError(t, err)
	updated, err := repo.AddDeposit(ctx, userId, stored.Id, Deposit{Amount: amount("50"), BalanceSource: "Carteira", Date: at})

	require.NoError(t, err)
	assert.True(t, amount("150.25").Equal(updated.CurrentAmount))
	require.NotNil(t, updated.LastDepositDate)
	assert.True(t, at.Equal(*updated.LastDepositDate))

	_, err = repo.AddDeposit(ctx, userId, 9999, Deposit{Amount: amount("1"), Date: at})
	assert.ErrorIs(t, err, ErrPiggyBankNotFound)
}

func TestRepositoryImpl_UpdateListDelete(t *testing.T) {
	ctx, repo, userId := setupTestRepository(t)
	later := travelGoal("Depois")
	later.TargetDate = date(2026, 1, 1)
	_, err := repo.Store(ctx, userId, later)
	require.NoError(t, err)
	sooner, err := repo.Store(ctx, userId, travelGoal("Antes"))
	require.NoError(t, err)

	sooner.DepositDay = 0
	sooner.SavingsGoal = amount("2000")
	updated, err := repo.Update(ctx, userId, sooner)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.DepositDay)
	assert.True(t, amount("2000").Equal(updated.SavingsGoal))

	list, err := repo.List(ctx, userId)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Antes", list[0].Name)

	deleted, err := repo.Delete(ctx, userId, sooner.Id)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.Delete(ctx, userId, sooner.Id)
	require.NoError(t, err)
	assert.False(t, deleted)
}
