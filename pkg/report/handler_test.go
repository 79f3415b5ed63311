package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (context.Context, *Handler) {
	t.Helper()
	ctx, service, _ := setupServiceTest(t, 50)
	return ctx, NewHandler(service, NewCsvRenderer(), service.clock)
}

func TestHandler_Generate_Json(t *testing.T) {
	ctx, handler := setupHandlerTest(t)

	t.Run("should build the month to date report", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/report?period=month", nil).WithContext(ctx)
		w := httptest.NewRecorder()

		handler.Generate(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var dto ReportDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, "2024-03-01", dto.From)
		assert.Equal(t, "2024-03-20", dto.To)
		require.NotNil(t, dto.Summary)
		assert.Equal(t, 3000.0, dto.Summary.TotalIncome)
		assert.Equal(t, 500.0, dto.Summary.TotalExpense)
		assert.Equal(t, "01/03/2024 até 20/03/2024", dto.Summary.Period)
		assert.Len(t, dto.MonthlyData, 12)
		require.NotNil(t, dto.TopCategories)
		assert.Equal(t, "Mercado", dto.TopCategories.Expenses[0].CategoryName)
		assert.Len(t, dto.Transactions, 3)
		require.Len(t, dto.PiggyBanks, 1)
		assert.Equal(t, "Atrasado", dto.PiggyBanks[0].StatusLabel)
	})

	t.Run("should leave out sections not requested", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/report?from=2024-01-01&to=2024-01-31&sections=summary", nil).WithContext(ctx)
		w := httptest.NewRecorder()

		handler.Generate(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Contains(t, body, "summary")
		assert.NotContains(t, body, "transactions")
		assert.NotContains(t, body, "monthlyData")
	})
}

func TestHandler_Generate_Csv(t *testing.T) {
	ctx, handler := setupHandlerTest(t)
	req := httptest.NewRequest(http.MethodGet, "/api/report?period=year&sections=summary,transactions", nil).WithContext(ctx)
	req.Header.Set("Accept", "text/csv")
	w := httptest.NewRecorder()

	handler.Generate(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="relatorio-financeiro-2024-03-20.csv"`, w.Header().Get("Content-Disposition"))
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "Resumo,01/01/2024 até 20/03/2024\n"))
	assert.Contains(t, body, "12/03/2024,EXPENSE,Sem categoria,49.50")
}

func TestHandler_Generate_BadRequests(t *testing.T) {
	ctx, handler := setupHandlerTest(t)

	for _, url := range []string{
		"/api/report?period=week",
		"/api/report?from=01/02/2024",
		"/api/report?from=2024-03-10&to=2024-03-01",
		"/api/report?sections=budgets",
	} {
		t.Run(url, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, url, nil).WithContext(ctx)
			w := httptest.NewRecorder()

			handler.Generate(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandler_Generate_WithoutUser(t *testing.T) {
	_, handler := setupHandlerTest(t)
	req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
	w := httptest.NewRecorder()

	handler.Generate(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
