package item

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/buckr/buckr/internal/rest"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type ItemDTO struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Icon        string          `json:"icon,omitempty"`
	Url         string          `json:"url,omitempty"`
	Description string          `json:"description,omitempty"`
	Obtained    bool            `json:"obtained"`
	Order       *int            `json:"order"`
}

type Handler struct {
	itemService Service
}

func NewHandler(itemService Service) *Handler {
	return &Handler{itemService}
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new item")
	w.Header().Set("Content-Type", "application/json")

	var request struct {
		ItemDTO
		Planned bool `json:"planned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	createdItem, err := h.itemService.Create(r.Context(), dtoToItem(request.ItemDTO), request.Planned)
	if err != nil {
		if errors.Is(err, ErrInvalidItem) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(itemToDTO(createdItem)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId, ok := pathItemId(w, r)
	if !ok {
		return
	}

	var dto ItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dto.ID = itemId

	updatedItem, err := h.itemService.Update(r.Context(), dtoToItem(dto))
	if err != nil {
		if errors.Is(err, ErrInvalidItem) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "Item not found")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(itemToDTO(updatedItem)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId, ok := pathItemId(w, r)
	if !ok {
		return
	}

	deleted, err := h.itemService.Delete(r.Context(), itemId)
	if err != nil && !errors.Is(err, ErrItemNotFound) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Item not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetObtained(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId, ok := pathItemId(w, r)
	if !ok {
		return
	}

	var request struct {
		Obtained bool `json:"obtained"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.itemService.SetObtained(r.Context(), itemId, request.Obtained); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "Item not found")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) SetPosition(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId, ok := pathItemId(w, r)
	if !ok {
		return
	}

	var request struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var err error
	switch request.Direction {
	case "up":
		err = h.itemService.MoveUp(r.Context(), itemId)
	case "down":
		err = h.itemService.MoveDown(r.Context(), itemId)
	default:
		writeError(w, http.StatusBadRequest, "direction must be \"up\" or \"down\"")
		return
	}
	if err != nil {
		if errors.Is(err, ErrOrderConflict) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) MoveToQueue(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId, ok := pathItemId(w, r)
	if !ok {
		return
	}

	if err := h.itemService.MoveToQueue(r.Context(), itemId); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) MoveToBacklog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId, ok := pathItemId(w, r)
	if !ok {
		return
	}

	if err := h.itemService.MoveToBacklog(r.Context(), itemId); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) GetQueue(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.itemService.ListQueue)
}

func (h *Handler) GetBacklog(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.itemService.ListBacklog)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context) ([]Item, error)) {
	w.Header().Set("Content-Type", "application/json")

	items, err := fetch(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, itemToDTO(item))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func pathItemId(w http.ResponseWriter, r *http.Request) (int, bool) {
	vars := mux.Vars(r)
	itemId, err := strconv.ParseInt(vars["itemId"], 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return int(itemId), true
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func itemToDTO(item Item) ItemDTO {
	return ItemDTO{
		ID:          item.ID,
		Title:       item.Title,
		Price:       item.Price,
		Icon:        item.Icon,
		Url:         item.Url,
		Description: item.Description,
		Obtained:    item.Obtained,
		Order:       item.Order,
	}
}

func dtoToItem(dto ItemDTO) Item {
	return Item{
		ID:          dto.ID,
		Title:       dto.Title,
		Price:       dto.Price,
		Icon:        dto.Icon,
		Url:         dto.Url,
		Description: dto.Description,
		Obtained:    dto.Obtained,
		Order:       dto.Order,
	}
}
