package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/colmward/hamper/internal/models"
	"github.com/colmward/hamper/internal/services"
)

type RequestedItemHandler struct {
	items    services.RequestedItemServiceInterface
	validate *validator.Validate
}

func NewRequestedItemHandler(items services.RequestedItemServiceInterface) *RequestedItemHandler {
	return &RequestedItemHandler{items: items, validate: validator.New()}
}

type CreateRequestedItemRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
	Priority *int   `json:"priority" validate:"omitempty,min=0,max=2"`
}

type UpdateRequestedItemRequest struct {
	Quantity  *int       `json:"quantity" validate:"omitempty,min=1"`
	Priority  *int       `json:"priority" validate:"omitempty,min=0,max=2"`
	ShopperID *uuid.UUID `json:"shopper_id"`
}

// List returns the signed-in requester's items, highest priority first.
func (h *RequestedItemHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	items, err := h.items.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"requested_items": items})
}

// Create adds an item to the signed-in requester's list.
func (h *RequestedItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateRequestedItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	params := models.CreateRequestedItemParams{
		ItemName: req.Name,
		Quantity: req.Quantity,
		Priority: models.PriorityLow,
	}
	if params.Quantity == 0 {
		params.Quantity = 1
	}
	if req.Priority != nil {
		params.Priority = models.Priority(*req.Priority)
	}

	item, err := h.items.Create(r.Context(), user.ID, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// Get returns one of the signed-in requester's items.
func (h *RequestedItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Requested item not found")
		return
	}

	item, err := h.items.Get(r.Context(), user.ID, itemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Update changes the quantity, priority, or shopper assignment of an item.
func (h *RequestedItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Requested item not found")
		return
	}

	var req UpdateRequestedItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	params := models.UpdateRequestedItemParams{
		Quantity:  req.Quantity,
		ShopperID: req.ShopperID,
	}
	if req.Priority != nil {
		p := models.Priority(*req.Priority)
		params.Priority = &p
	}

	item, err := h.items.Update(r.Context(), user.ID, itemID, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Delete removes an item from the signed-in requester's list.
func (h *RequestedItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Requested item not found")
		return
	}

	if err := h.items.Delete(r.Context(), user.ID, itemID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Requested item deleted"})
}

// Claim assigns an unclaimed item to the signed-in shopper.
func (h *RequestedItemHandler) Claim(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Requested item not found")
		return
	}

	item, err := h.items.Claim(r.Context(), user.ID, itemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}
