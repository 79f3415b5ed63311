package dashboard

import (
	"errors"
	"net/http"
	"time"

	"github.com/finpro/finpro/internal/rest"
	"github.com/finpro/finpro/pkg/aggregate"
	"github.com/finpro/finpro/pkg/piggybank"
	"github.com/finpro/finpro/pkg/user"
	log "github.com/sirupsen/logrus"
)

type MonthlyDTO struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

type CategoryDTO struct {
	CategoryName string  `json:"categoryName"`
	Total        float64 `json:"total"`
	Percentage   int     `json:"percentage"`
	Count        int     `json:"count"`
}

type ChartRowDTO struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Label   string  `json:"label"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

type OverviewDTO struct {
	Year          int                  `json:"year"`
	Month         int                  `json:"month"`
	Label         string               `json:"label"`
	Income        float64              `json:"income"`
	Expense       float64              `json:"expense"`
	Balance       float64              `json:"balance"`
	TopCategories []CategoryDTO        `json:"topCategories"`
	PiggyBanks    piggybank.SummaryDTO `json:"piggyBanks"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// MonthlyExpenses godoc
// @Summary Expense totals per month
// @Tags Dashboard
// @Produce json
// @Param year query int false "Year, all years when omitted"
// @Success 200 {array} MonthlyDTO
// @Router /api/dashboard/expenses/monthly [get]
// @Security XUserId
func (h *Handler) MonthlyExpenses(w http.ResponseWriter, r *http.Request) {
	year, err := rest.IntQuery(r, "year", 0)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid year", err.Error())
		return
	}
	buckets, err := h.service.MonthlyExpenses(r.Context(), year)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, monthlyToDTO(buckets))
}

// MonthlyIncomes godoc
// @Summary Income totals per month
// @Tags Dashboard
// @Produce json
// @Param year query int false "Year, all years when omitted"
// @Success 200 {array} MonthlyDTO
// @Router /api/dashboard/incomes/monthly [get]
// @Security XUserId
func (h *Handler) MonthlyIncomes(w http.ResponseWriter, r *http.Request) {
	year, err := rest.IntQuery(r, "year", 0)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid year", err.Error())
		return
	}
	buckets, err := h.service.MonthlyIncomes(r.Context(), year)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, monthlyToDTO(buckets))
}

func (h *Handler) ExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	year, err := rest.IntQuery(r, "year", 0)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid year", err.Error())
		return
	}
	month, err := rest.IntQuery(r, "month", 0)
	if err != nil || month < 0 || month > 12 {
		rest.WriteError(w, http.StatusBadRequest, "Invalid month", "month must be between 1 and 12")
		return
	}
	buckets, err := h.service.ExpensesByCategory(r.Context(), aggregate.CategoryFilter{Year: year, Month: time.Month(month)})
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, CategoriesToDTO(buckets))
}

func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	months, err := rest.IntQuery(r, "months", 0)
	if err != nil || months < 0 {
		rest.WriteError(w, http.StatusBadRequest, "Invalid months", "months must be a positive number")
		return
	}
	rows, err := h.service.Chart(r.Context(), months)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ChartToDTO(rows))
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	year, err := rest.IntQuery(r, "year", 0)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid year", err.Error())
		return
	}
	month, err := rest.IntQuery(r, "month", 0)
	if err != nil || month < 0 || month > 12 {
		rest.WriteError(w, http.StatusBadRequest, "Invalid month", "month must be between 1 and 12")
		return
	}
	overview, err := h.service.Overview(r.Context(), year, time.Month(month))
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, OverviewDTO{
		Year:          overview.Year,
		Month:         int(overview.Month),
		Label:         overview.Label,
		Income:        overview.Income.InexactFloat64(),
		Expense:       overview.Expense.InexactFloat64(),
		Balance:       overview.Balance.InexactFloat64(),
		TopCategories: CategoriesToDTO(overview.TopCategories),
		PiggyBanks:    piggybank.SummaryToDTO(overview.PiggyBanks),
	})
}

func handleError(w http.ResponseWriter, err error) {
	if errors.Is(err, user.ErrNoUser) {
		http.Error(w, "user not found", http.StatusForbidden)
		return
	}
	log.Errorf("dashboard request failed: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func monthlyToDTO(buckets []aggregate.MonthlyBucket) []MonthlyDTO {
	result := make([]MonthlyDTO, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, MonthlyDTO{
			Year:  b.Year,
			Month: int(b.Month),
			Label: aggregate.MonthLabel(b.Month),
			Total: b.Total.InexactFloat64(),
		})
	}
	return result
}

func CategoriesToDTO(buckets []aggregate.CategoryBucket) []CategoryDTO {
	result := make([]CategoryDTO, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, CategoryDTO{
			CategoryName: b.CategoryName,
			Total:        b.Total.InexactFloat64(),
			Percentage:   b.Percentage,
			Count:        b.Count,
		})
	}
	return result
}

// ChartToDTO names the merged series: A is income, B is expense.
func ChartToDTO(rows []aggregate.ChartRow) []ChartRowDTO {
	result := make([]ChartRowDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, ChartRowDTO{
			Year:    row.Year,
			Month:   int(row.Month),
			Label:   row.Label,
			Income:  row.ValueA.InexactFloat64(),
			Expense: row.ValueB.InexactFloat64(),
			Balance: row.Difference.InexactFloat64(),
		})
	}
	return result
}
