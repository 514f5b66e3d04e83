package projection

import (
	"encoding/json"
	"net/http"

	"github.com/buckr/buckr/pkg/budget"
	"github.com/buckr/buckr/pkg/item"
	"github.com/shopspring/decimal"
)

type ProjectionDTO struct {
	Item                  item.ItemDTO    `json:"item"`
	PriceInMonths         decimal.Decimal `json:"priceInMonths"`
	CumulativePrice       decimal.Decimal `json:"cumulativePrice"`
	RemainingCost         decimal.Decimal `json:"remainingCost"`
	RemainingTimeInMonths decimal.Decimal `json:"remainingTimeInMonths"`
	IsAvailable           bool            `json:"isAvailable"`
	IsAvailableNextMonth  bool            `json:"isAvailableNextMonth"`
	QueuePosition         *int            `json:"queuePosition,omitempty"`
	IsLastPending         bool            `json:"isLastPending"`
}

type DashboardDTO struct {
	Budget        budget.BudgetDTO `json:"budget"`
	Queue         []ProjectionDTO  `json:"queue"`
	Backlog       []item.ItemDTO   `json:"backlog"`
	AlreadySpent  decimal.Decimal  `json:"alreadySpent"`
	MissingAmount decimal.Decimal  `json:"missingAmount"`
	TimeToFinish  decimal.Decimal  `json:"timeToFinish"`
}

type Handler struct {
	projectionService Service
}

func NewHandler(projectionService Service) *Handler {
	return &Handler{projectionService}
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	view, err := h.projectionService.Dashboard(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(viewToDTO(view)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func viewToDTO(view DashboardView) DashboardDTO {
	queue := make([]ProjectionDTO, 0, len(view.Queue))
	for _, projection := range view.Queue {
		queue = append(queue, ProjectionDTO{
			Item:                  itemToDTO(projection.Item),
			PriceInMonths:         projection.PriceInMonths,
			CumulativePrice:       projection.CumulativePrice,
			RemainingCost:         projection.RemainingCost,
			RemainingTimeInMonths: projection.RemainingTimeInMonths,
			IsAvailable:           projection.IsAvailable,
			IsAvailableNextMonth:  projection.IsAvailableNextMonth,
			QueuePosition:         projection.QueuePosition,
			IsLastPending:         projection.IsLastPending,
		})
	}

	backlog := make([]item.ItemDTO, 0, len(view.Backlog))
	for _, backlogItem := range view.Backlog {
		backlog = append(backlog, itemToDTO(backlogItem))
	}

	var lastIncrement = view.Budget.LastIncrement
	budgetDTO := budget.BudgetDTO{
		Sparing:        view.Budget.Sparing,
		CurrentBalance: view.Budget.CurrentBalance,
	}
	if !lastIncrement.IsZero() {
		budgetDTO.LastIncrement = &lastIncrement
	}

	return DashboardDTO{
		Budget:        budgetDTO,
		Queue:         queue,
		Backlog:       backlog,
		AlreadySpent:  view.Summary.AlreadySpent,
		MissingAmount: view.Summary.MissingAmount,
		TimeToFinish:  view.Summary.TimeToFinish,
	}
}

func itemToDTO(it item.Item) item.ItemDTO {
	return item.ItemDTO{
		ID:          it.ID,
		Title:       it.Title,
		Price:       it.Price,
		Icon:        it.Icon,
		Url:         it.Url,
		Description: it.Description,
		Obtained:    it.Obtained,
		Order:       it.Order,
	}
}
