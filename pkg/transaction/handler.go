package transaction

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

type CategoryDTO struct {
	Id   int    `json:"id"`
	Type Type   `json:"type"`
	Name string `json:"name"`
}

type TransactionDTO struct {
	Id          int          `json:"id"`
	Type        Type         `json:"type"`
	Date        string       `json:"date"`
	Amount      float64      `json:"amount"`
	Category    *CategoryDTO `json:"category,omitempty"`
	Destination string       `json:"destination"`
	Account     string       `json:"account"`
	Observation string       `json:"observation"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List transactions
// @Tags Transaction
// @Produce json
// @Param type query string false "INCOME or EXPENSE"
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Success 200 {array} TransactionDTO
// @Router /api/transaction [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	transactions, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}
	result := make([]TransactionDTO, 0, len(transactions))
	for _, t := range transactions {
		result = append(result, TransactionToDTO(t))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	filter := Filter{Type: Type(strings.ToUpper(q.Get("type")))}
	var err error
	if raw := q.Get("from"); raw != "" {
		if filter.From, err = time.Parse(time.DateOnly, raw); err != nil {
			return Filter{}, err
		}
	}
	if raw := q.Get("to"); raw != "" {
		if filter.To, err = time.Parse(time.DateOnly, raw); err != nil {
			return Filter{}, err
		}
	}
	return filter, nil
}

// Create godoc
// @Summary Register a transaction
// @Tags Transaction
// @Accept json
// @Produce json
// @Param transaction body TransactionDTO true "Transaction"
// @Success 201 {object} TransactionDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/transaction [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating transaction")
	t, ok := decodeTransaction(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), t)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, TransactionToDTO(created))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := rest.IntVar(r, "id")
	if !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid transaction id", "")
		return
	}
	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, TransactionToDTO(t))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := rest.IntVar(r, "id")
	if !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid transaction id", "")
		return
	}
	t, ok := decodeTransaction(w, r)
	if !ok {
		return
	}
	t.Id = id
	updated, err := h.service.Update(r.Context(), t)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, TransactionToDTO(updated))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := rest.IntVar(r, "id")
	if !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid transaction id", "")
		return
	}
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	if !deleted {
		http.Error(w, ErrTransactionNotFound.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context(), Type(strings.ToUpper(r.URL.Query().Get("type"))))
	if err != nil {
		handleError(w, err)
		return
	}
	result := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		result = append(result, CategoryDTO(c))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	dto.Type = Type(strings.ToUpper(string(dto.Type)))
	created, err := h.service.CreateCategory(r.Context(), Category(dto))
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, CategoryDTO(created))
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		http.Error(w, "user not found", http.StatusForbidden)
	case errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrCategoryNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrCategoryExists):
		rest.WriteError(w, http.StatusConflict, "Category already exists", "")
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidTransaction):
		rest.WriteError(w, http.StatusBadRequest, "Invalid transaction", err.Error())
	default:
		log.Errorf("transaction request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func decodeTransaction(w http.ResponseWriter, r *http.Request) (Transaction, bool) {
	var dto TransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return Transaction{}, false
	}
	date, err := time.Parse(time.DateOnly, dto.Date)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err.Error())
		return Transaction{}, false
	}
	t := Transaction{
		Type:        Type(strings.ToUpper(string(dto.Type))),
		Date:        date,
		Amount:      decimal.NewFromFloat(dto.Amount),
		Destination: dto.Destination,
		Account:     dto.Account,
		Observation: dto.Observation,
	}
	if dto.Category != nil {
		t.Category = &Category{Id: dto.Category.Id}
	}
	return t, true
}

func TransactionToDTO(t Transaction) TransactionDTO {
	dto := TransactionDTO{
		Id:          t.Id,
		Type:        t.Type,
		Date:        t.Date.Format(time.DateOnly),
		Amount:      t.Amount.InexactFloat64(),
		Destination: t.Destination,
		Account:     t.Account,
		Observation: t.Observation,
	}
	if t.Category != nil {
		category := CategoryDTO(*t.Category)
		dto.Category = &category
	}
	return dto
}
