package piggybank

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/finpro/finpro/internal/rest"
	"github.com/finpro/finpro/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type PiggyBankDTO struct {
	Id                 int      `json:"piggyBankId"`
	Name               string   `json:"name"`
	SavingsGoal        float64  `json:"savingsGoal"`
	MonthlyDeposit     float64  `json:"monthlyDeposit"`
	CurrentAmount      float64  `json:"currentAmount"`
	TargetDate         string   `json:"targetDate"`
	DepositDay         int      `json:"depositDay,omitempty"`
	ProgressPercentage *float64 `json:"progressPercentage,omitempty"`
	CreatedAt          string   `json:"createdAt,omitempty"`
	LastDepositDate    string   `json:"lastDepositDate,omitempty"`
}

type ProgressDTO struct {
	PiggyBank                 PiggyBankDTO `json:"piggyBank"`
	Status                    Status       `json:"calculatedStatus"`
	StatusLabel               string       `json:"statusLabel"`
	ProgressPercentage        int          `json:"progressPercentage"`
	RemainingAmount           float64      `json:"remainingAmount"`
	RemainingMonths           int          `json:"remainingMonths"`
	DaysOverdue               int          `json:"daysOverdue"`
	RecommendedMonthlyDeposit float64      `json:"recommendedMonthlyDeposit"`
}

type DepositDTO struct {
	Amount        float64 `json:"amount"`
	BalanceSource string  `json:"balanceSource"`
}

type DepositResultDTO struct {
	PiggyBank PiggyBankDTO `json:"piggyBank"`
	Amount    float64      `json:"amount"`
	Completed bool         `json:"completed"`
	Message   string       `json:"message"`
}

type DeadlineDTO struct {
	TargetDate string `json:"targetDate"`
}

type SummaryDTO struct {
	TotalPiggyBanks     int     `json:"totalPiggyBanks"`
	CompletedPiggyBanks int     `json:"completedPiggyBanks"`
	OnTrackCount        int     `json:"onTrackCount"`
	BehindCount         int     `json:"behindCount"`
	OverdueCount        int     `json:"overdueCount"`
	TotalSaved          float64 `json:"totalSaved"`
	TotalGoals          float64 `json:"totalGoals"`
	ProgressPercentage  int     `json:"progressPercentage"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List piggy banks with their derived status
// @Tags PiggyBank
// @Produce json
// @Param status query string false "Status filter, e.g. OVERDUE or Atrasado"
// @Success 200 {array} ProgressDTO
// @Router /api/piggy-bank [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Search: r.URL.Query().Get("name")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := ParseStatus(raw)
		if !ok {
			rest.WriteError(w, http.StatusBadRequest, "Invalid status filter", raw)
			return
		}
		filter.Status = status
	}
	h.list(w, r, filter)
}

// Search godoc
// @Summary Search piggy banks by name
// @Tags PiggyBank
// @Produce json
// @Param name query string true "Part of the name"
// @Success 200 {array} ProgressDTO
// @Router /api/piggy-bank/search [get]
// @Security XUserId
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		rest.WriteError(w, http.StatusBadRequest, "Query parameter 'name' is required", "")
		return
	}
	h.list(w, r, ListFilter{Search: name})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, filter ListFilter) {
	progress, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}
	result := make([]ProgressDTO, 0, len(progress))
	for _, p := range progress {
		result = append(result, ProgressToDTO(p))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create a piggy bank
// @Tags PiggyBank
// @Accept json
// @Produce json
// @Param piggyBank body PiggyBankDTO true "Piggy bank"
// @Success 201 {object} PiggyBankDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 409 {object} rest.ErrorResponse "Name already used"
// @Router /api/piggy-bank [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating piggy bank")
	piggyBank, ok := decodePiggyBank(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), piggyBank)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, piggyBankToDTO(created))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := rest.IntVar(r, "id")
	if !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid piggy bank id", "")
		return
	}
	piggyBank, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, piggyBankToDTO(piggyBank))
}

// Update godoc
// @Summary Update a piggy bank
// @Tags PiggyBank
// @Accept json
// @Produce json
// @Param id path int true "Piggy bank ID"
// @Success 200 {object} PiggyBankDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 404 {string} string "Not found"
// @Router /api/piggy-bank/{id} [put]
// @Security XUserId
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := rest.IntVar(r, "id")
	if !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid piggy bank id", "")
		return
	}
	piggyBank, ok := decodePiggyBank(w, r)
	if !ok {
		return
	}
	piggyBank.Id = id
	updated, err := h.service.Update(r.Context(), piggyBank)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, piggyBankToDTO(updated))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := rest.IntVar(r, "id")
	if !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid piggy bank id", "")
		return
	}
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	if !deleted {
		http.Error(w, ErrPiggyBankNotFound.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Deposit godoc
// @Summary Deposit into a piggy bank
// @Tags PiggyBank
// @Accept json
// @Produce json
// @Param id path int true "Piggy bank ID"
// @Param deposit body DepositDTO true "Deposit"
// @Success 200 {object} DepositResultDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid amount or completed goal"
// @Router /api/piggy-bank/{id}/deposit [post]
// @Security XUserId
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	id, ok := rest.IntVar(r, "id")
	if !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid piggy bank id", "")
		return
	}
	var dto DepositDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	result, err := h.service.Deposit(r.Context(), id, decimal.NewFromFloat(dto.Amount), dto.BalanceSource)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, DepositResultDTO{
		PiggyBank: piggyBankToDTO(result.PiggyBank),
		Amount:    result.Amount.InexactFloat64(),
		Completed: result.Completed,
		Message:   result.Message,
	})
}

func (h *Handler) ExtendDeadline(w http.ResponseWriter, r *http.Request) {
	id, ok := rest.IntVar(r, "id")
	if !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid piggy bank id", "")
		return
	}
	var dto DeadlineDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	newDate, err := parseDate(dto.TargetDate)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid target date", err.Error())
		return
	}
	updated, err := h.service.ExtendDeadline(r.Context(), id, newDate)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, piggyBankToDTO(updated))
}

func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	id, ok := rest.IntVar(r, "id")
	if !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid piggy bank id", "")
		return
	}
	progress, err := h.service.GetProgress(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ProgressToDTO(progress))
}

func (h *Handler) Reminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.service.Reminders(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	result := make([]ProgressDTO, 0, len(reminders))
	for _, p := range reminders {
		result = append(result, ProgressToDTO(p))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

// Summary godoc
// @Summary Summary of all piggy banks of the current user
// @Tags PiggyBank
// @Produce json
// @Success 200 {object} SummaryDTO
// @Router /api/piggy-bank/summary [get]
// @Security XUserId
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if _, err := user.CurrentId(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, SummaryToDTO(h.service.Summary(r.Context())))
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		http.Error(w, "user not found", http.StatusForbidden)
	case errors.Is(err, ErrPiggyBankNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrPiggyBankAlreadyExists):
		rest.WriteError(w, http.StatusConflict, "Piggy bank already exists", err.Error())
	case errors.Is(err, ErrInvalidPiggyBank),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrGoalCompleted),
		errors.Is(err, ErrDeadlineNotExtended):
		rest.WriteError(w, http.StatusBadRequest, "Invalid piggy bank operation", err.Error())
	default:
		log.Errorf("piggy bank request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func decodePiggyBank(w http.ResponseWriter, r *http.Request) (PiggyBank, bool) {
	var dto PiggyBankDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return PiggyBank{}, false
	}
	piggyBank, err := DTOToPiggyBank(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid target date", err.Error())
		return PiggyBank{}, false
	}
	return piggyBank, true
}

var dateInputLayouts = []string{time.DateOnly, time.RFC3339}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateInputLayouts {
		var t time.Time
		if t, err = time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func DTOToPiggyBank(dto PiggyBankDTO) (PiggyBank, error) {
	targetDate, err := parseDate(dto.TargetDate)
	if err != nil {
		return PiggyBank{}, err
	}
	p := PiggyBank{
		Id:             dto.Id,
		Name:           dto.Name,
		SavingsGoal:    decimal.NewFromFloat(dto.SavingsGoal),
		MonthlyDeposit: decimal.NewFromFloat(dto.MonthlyDeposit),
		CurrentAmount:  decimal.NewFromFloat(dto.CurrentAmount),
		TargetDate:     targetDate,
		DepositDay:     dto.DepositDay,
	}
	if dto.ProgressPercentage != nil {
		progress := decimal.NewFromFloat(*dto.ProgressPercentage)
		p.ProgressPercentage = &progress
	}
	return p, nil
}

func piggyBankToDTO(p PiggyBank) PiggyBankDTO {
	dto := PiggyBankDTO{
		Id:             p.Id,
		Name:           p.Name,
		SavingsGoal:    p.SavingsGoal.InexactFloat64(),
		MonthlyDeposit: p.MonthlyDeposit.InexactFloat64(),
		CurrentAmount:  p.CurrentAmount.InexactFloat64(),
		TargetDate:     p.TargetDate.Format(time.DateOnly),
		DepositDay:     p.DepositDay,
	}
	if p.ProgressPercentage != nil {
		progress := p.ProgressPercentage.InexactFloat64()
		dto.ProgressPercentage = &progress
	}
	if !p.CreatedAt.IsZero() {
		dto.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	if p.LastDepositDate != nil {
		dto.LastDepositDate = p.LastDepositDate.Format(time.RFC3339)
	}
	return dto
}

func ProgressToDTO(p Progress) ProgressDTO {
	return ProgressDTO{
		PiggyBank:                 piggyBankToDTO(p.PiggyBank),
		Status:                    p.Status,
		StatusLabel:               p.Status.Label(),
		ProgressPercentage:        p.ProgressPercentage,
		RemainingAmount:           p.RemainingAmount.InexactFloat64(),
		RemainingMonths:           p.RemainingMonths,
		DaysOverdue:               p.DaysOverdue,
		RecommendedMonthlyDeposit: p.RecommendedMonthlyDeposit.InexactFloat64(),
	}
}

func SummaryToDTO(s Summary) SummaryDTO {
	return SummaryDTO{
		TotalPiggyBanks:     s.TotalPiggyBanks,
		CompletedPiggyBanks: s.CompletedPiggyBanks,
		OnTrackCount:        s.OnTrackCount,
		BehindCount:         s.BehindCount,
		OverdueCount:        s.OverdueCount,
		TotalSaved:          s.TotalSaved.InexactFloat64(),
		TotalGoals:          s.TotalGoals.InexactFloat64(),
		ProgressPercentage:  s.ProgressPercentage,
	}
}
