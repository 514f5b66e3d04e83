package budget

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/buckr/buckr/internal/rest"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type BudgetDTO struct {
	Sparing        decimal.Decimal `json:"sparing"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	LastIncrement  *time.Time      `json:"lastIncrement,omitempty"`
}

type Handler struct {
	budgetService Service
}

func NewHandler(budgetService Service) *Handler {
	return &Handler{budgetService}
}

func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	budget, err := h.budgetService.Get(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(budgetToDTO(budget)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) SetCurrentBalance(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating current balance")
	h.update(w, r, "currentBalance", func(ctx context.Context, amount decimal.Decimal) (Budget, error) {
		return h.budgetService.SetCurrentBalance(ctx, amount)
	})
}

func (h *Handler) SetSparing(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating sparing amount")
	h.update(w, r, "sparing", func(ctx context.Context, amount decimal.Decimal) (Budget, error) {
		return h.budgetService.SetSparing(ctx, amount)
	})
}

func (h *Handler) SpareNow(w http.ResponseWriter, r *http.Request) {
	log.Debug("Applying monthly saving")
	w.Header().Set("Content-Type", "application/json")

	budget, err := h.budgetService.SpareNow(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(budgetToDTO(budget)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, field string,
	apply func(ctx context.Context, amount decimal.Decimal) (Budget, error)) {

	w.Header().Set("Content-Type", "application/json")

	var request map[string]decimal.Decimal
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	amount, ok := request[field]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: field + " is required"}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	budget, err := apply(r.Context(), amount)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			w.WriteHeader(http.StatusBadRequest)
			if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()}); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(budgetToDTO(budget)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func budgetToDTO(budget Budget) BudgetDTO {
	var lastIncrement *time.Time
	if !budget.LastIncrement.IsZero() {
		lastIncrement = &budget.LastIncrement
	}
	return BudgetDTO{
		Sparing:        budget.Sparing,
		CurrentBalance: budget.CurrentBalance,
		LastIncrement:  lastIncrement,
	}
}
