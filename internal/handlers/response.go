package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/colmward/hamper/internal/logging"
	"github.com/colmward/hamper/internal/models"
	"github.com/colmward/hamper/internal/services"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps the shared service sentinels onto HTTP statuses.
// Forbidden and not-found stay distinguishable; anything unrecognized is a
// logged 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, services.ErrRequestedItemNotFound):
		writeError(w, http.StatusNotFound, "Requested item not found")
	case errors.Is(err, services.ErrRequesterNotFound):
		writeError(w, http.StatusNotFound, "Requester not found")
	case errors.Is(err, services.ErrShopperNotFound):
		writeError(w, http.StatusNotFound, "Shopper not found")
	case errors.Is(err, services.ErrInviteNotFound):
		writeError(w, http.StatusNotFound, "Invite not found")
	case errors.Is(err, services.ErrCommentNotFound):
		writeError(w, http.StatusNotFound, "Comment not found")
	case errors.Is(err, services.ErrAlreadyClaimed):
		writeError(w, http.StatusConflict, "Item already claimed")
	case errors.Is(err, services.ErrItemNameRequired),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrShopperNotAuthorized),
		errors.Is(err, services.ErrCommentBodyRequired),
		errors.Is(err, models.ErrInvalidPriority):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logging.Error("Unhandled service error", logging.Fields{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
