package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/finpro/finpro/internal/config"
	"github.com/finpro/finpro/internal/utils"
	"github.com/finpro/finpro/pkg/piggybank"
	"github.com/finpro/finpro/pkg/transaction"
	"github.com/finpro/finpro/pkg/user"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *mux.Router {
	t.Helper()
	clock := &utils.MockClock{FixedNow: time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)}
	repos := Repositories{
		Users:        user.NewStubUserRepository(),
		Transactions: transaction.NewRepositoryStub(),
		PiggyBanks:   piggybank.NewRepositoryStub(clock.Now),
	}
	return NewRouter(BuildDependencies(repos, clock, config.Defaults()))
}

func do(t *testing.T, router http.Handler, method, url, uid string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, url, &payload)
	if uid != "" {
		req.Header.Set("X-User-Id", uid)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createUser(t *testing.T, router http.Handler) string {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/user", "", user.UserDTO{Username: "ana", DisplayName: "Ana"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created user.UserDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	require.NotEmpty(t, created.Uid)
	return created.Uid
}

func TestUserFromHeader(t *testing.T) {
	router := setupRouter(t)
	uid := createUser(t, router)

	t.Run("should resolve the current user", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/api/user/current", uid, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var current user.UserDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&current))
		assert.Equal(t, "ana", current.Username)
	})

	t.Run("should reject unknown uids", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/api/user/current", "a7c1a8a4-9a62-4a4f-8cf4-2b7a4d1f6c11", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("should refuse user endpoints without a header", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/api/piggy-bank", "", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRoutes_PiggyBankFixedPathsBeforeId(t *testing.T) {
	router := setupRouter(t)
	uid := createUser(t, router)

	for _, url := range []string{"/api/piggy-bank/summary", "/api/piggy-bank/reminders", "/api/piggy-bank/search?name=via"} {
		t.Run(url, func(t *testing.T) {
			w := do(t, router, http.MethodGet, url, uid, nil)

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestDepositRecordsExpense(t *testing.T) {
	// given
	router := setupRouter(t)
	uid := createUser(t, router)
	w := do(t, router, http.MethodPost, "/api/piggy-bank", uid, piggybank.PiggyBankDTO{
		Name:        "Viagem",
		SavingsGoal: 1000,
		TargetDate:  "2024-12-31",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created piggybank.PiggyBankDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

	// when
	w = do(t, router, http.MethodPost, "/api/piggy-bank/"+strconv.Itoa(created.Id)+"/deposit", uid,
		piggybank.DepositDTO{Amount: 150, BalanceSource: "Conta corrente"})

	// then
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodGet, "/api/transaction?type=EXPENSE", uid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var transactions []transaction.TransactionDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&transactions))
	require.Len(t, transactions, 1)
	assert.Equal(t, 150.0, transactions[0].Amount)
	assert.Equal(t, "Viagem", transactions[0].Destination)
	assert.Equal(t, "Conta corrente", transactions[0].Account)
	require.NotNil(t, transactions[0].Category)
	assert.Equal(t, transaction.PiggyBankCategory, transactions[0].Category.Name)

	w = do(t, router, http.MethodGet, "/api/report?period=month&sections=summary", uid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalExpense":150`)
}
