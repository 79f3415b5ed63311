package report

import (
	"errors"
	"net/http"
	"time"

	"github.com/finpro/finpro/internal/rest"
	"github.com/finpro/finpro/internal/utils"
	"github.com/finpro/finpro/pkg/dashboard"
	"github.com/finpro/finpro/pkg/piggybank"
	"github.com/finpro/finpro/pkg/transaction"
	"github.com/finpro/finpro/pkg/user"
	log "github.com/sirupsen/logrus"
)

type SummaryDTO struct {
	TotalIncome      float64 `json:"totalIncome"`
	TotalExpense     float64 `json:"totalExpense"`
	Balance          float64 `json:"balance"`
	TransactionCount int     `json:"transactionCount"`
	Period           string  `json:"period"`
}

type CategoriesDTO struct {
	Expenses []dashboard.CategoryDTO `json:"expenses"`
	Incomes  []dashboard.CategoryDTO `json:"incomes"`
}

type ReportDTO struct {
	From          string                       `json:"from"`
	To            string                       `json:"to"`
	GeneratedAt   string                       `json:"generatedAt"`
	Summary       *SummaryDTO                  `json:"summary,omitempty"`
	MonthlyData   []dashboard.ChartRowDTO      `json:"monthlyData,omitempty"`
	CategoryData  *CategoriesDTO               `json:"categoryData,omitempty"`
	TopCategories *CategoriesDTO               `json:"topCategories,omitempty"`
	Transactions  []transaction.TransactionDTO `json:"transactions,omitempty"`
	PiggyBanks    []piggybank.ProgressDTO      `json:"piggyBanks,omitempty"`
}

type Handler struct {
	service     Service
	csvRenderer Renderer
	clock       utils.Clock
}

func NewHandler(service Service, csvRenderer Renderer, clock utils.Clock) *Handler {
	return &Handler{service: service, csvRenderer: csvRenderer, clock: clock}
}

// Generate godoc
// @Summary Financial report of a period
// @Description Returns JSON, or CSV when the request accepts text/csv
// @Tags Report
// @Produce json
// @Produce text/csv
// @Param period query string false "month, quarter, year or custom"
// @Param from query string false "First date of a custom period (YYYY-MM-DD)"
// @Param to query string false "Last date of a custom period (YYYY-MM-DD)"
// @Param sections query string false "Comma separated: summary,charts,categories,transactions,piggybanks"
// @Success 200 {object} ReportDTO
// @Router /api/report [get]
// @Security XUserId
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	options, err := h.parseOptions(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid report options", err.Error())
		return
	}

	report, err := h.service.Generate(r.Context(), options)
	if err != nil {
		handleError(w, err)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		csv, err := h.csvRenderer.Render(report)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+FileName(report.GeneratedAt)+`"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			log.Errorf("failed to write report: %v", err)
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, reportToDTO(report))
}

func (h *Handler) parseOptions(r *http.Request) (Options, error) {
	query := r.URL.Query()
	var from, to time.Time
	var err error
	if s := query.Get("from"); s != "" {
		if from, err = time.Parse(time.DateOnly, s); err != nil {
			return Options{}, errors.New("from must be in YYYY-MM-DD format")
		}
	}
	if s := query.Get("to"); s != "" {
		if to, err = time.Parse(time.DateOnly, s); err != nil {
			return Options{}, errors.New("to must be in YYYY-MM-DD format")
		}
	}
	from, to, err = ResolvePeriod(Period(query.Get("period")), from, to, h.clock.Now())
	if err != nil {
		return Options{}, err
	}
	return Options{From: from, To: to}.WithSections(ParseSections(query.Get("sections")))
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		http.Error(w, "user not found", http.StatusForbidden)
	case errors.Is(err, ErrNoSections), errors.Is(err, ErrInvalidPeriod):
		rest.WriteError(w, http.StatusBadRequest, "Invalid report options", err.Error())
	default:
		log.Errorf("report generation failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func reportToDTO(report Report) ReportDTO {
	options := report.Options
	dto := ReportDTO{
		From:        options.From.Format(time.DateOnly),
		To:          options.To.Format(time.DateOnly),
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
	}
	if options.IncludeSummary {
		dto.Summary = &SummaryDTO{
			TotalIncome:      report.Summary.TotalIncome.InexactFloat64(),
			TotalExpense:     report.Summary.TotalExpense.InexactFloat64(),
			Balance:          report.Summary.Balance.InexactFloat64(),
			TransactionCount: report.Summary.TransactionCount,
			Period:           report.Summary.Period,
		}
	}
	if options.IncludeCharts {
		dto.MonthlyData = dashboard.ChartToDTO(report.Monthly)
	}
	if options.IncludeCategories {
		dto.CategoryData = categoriesToDTO(report.Categories)
		dto.TopCategories = categoriesToDTO(report.TopCategories)
	}
	if options.IncludeTransactions {
		dto.Transactions = make([]transaction.TransactionDTO, 0, len(report.Transactions))
		for _, t := range report.Transactions {
			dto.Transactions = append(dto.Transactions, transaction.TransactionToDTO(t))
		}
	}
	if options.IncludePiggyBanks {
		dto.PiggyBanks = make([]piggybank.ProgressDTO, 0, len(report.PiggyBanks))
		for _, p := range report.PiggyBanks {
			dto.PiggyBanks = append(dto.PiggyBanks, piggybank.ProgressToDTO(p))
		}
	}
	return dto
}

func categoriesToDTO(c Categories) *CategoriesDTO {
	return &CategoriesDTO{
		Expenses: dashboard.CategoriesToDTO(c.Expenses),
		Incomes:  dashboard.CategoriesToDTO(c.Incomes),
	}
}
