package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/colmward/hamper/internal/logging"
	"github.com/colmward/hamper/internal/services"
)

type RelationHandler struct {
	relations services.RelationServiceInterface
	items     services.RequestedItemServiceInterface
	email     services.EmailServiceInterface
	validate  *validator.Validate
}

func NewRelationHandler(relations services.RelationServiceInterface, items services.RequestedItemServiceInterface, email services.EmailServiceInterface) *RelationHandler {
	return &RelationHandler{
		relations: relations,
		items:     items,
		email:     email,
		validate:  validator.New(),
	}
}

type EmailInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ListShoppers returns the shoppers authorized for the signed-in requester.
func (h *RelationHandler) ListShoppers(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	shoppers, err := h.relations.ListShoppers(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"shoppers": shoppers})
}

// GetShopper returns one shopper authorized for the signed-in requester.
func (h *RelationHandler) GetShopper(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	shopperID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Shopper not found")
		return
	}

	shopper, err := h.relations.GetShopper(r.Context(), user.ID, shopperID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shopper)
}

// RemoveShopper revokes a shopper's authorization for the signed-in
// requester. Items the shopper already claimed stay claimed.
func (h *RelationHandler) RemoveShopper(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	shopperID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Shopper not found")
		return
	}

	if err := h.relations.RemoveShopper(r.Context(), user.ID, shopperID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Shopper removed"})
}

// CreateInviteLink rotates the signed-in requester's invite token and
// returns a fresh invite link. Previously issued links stop working.
func (h *RelationHandler) CreateInviteLink(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	link, err := h.relations.GenerateInviteLink(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"invite_url": link})
}

// EmailInvite generates a fresh invite link and emails it to the given
// address.
func (h *RelationHandler) EmailInvite(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req EmailInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	link, err := h.relations.GenerateInviteLink(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.email.SendShopperInvite(r.Context(), req.Email, user.DisplayName, link); err != nil {
		logging.Error("Error sending invite email", logging.Fields{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to send invite email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Invite sent"})
}

// AcceptInvite redeems an invite link, authorizing the signed-in shopper
// for the inviting requester.
func (h *RelationHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requesterID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Invite not found")
		return
	}
	token := r.PathValue("token")
	if token == "" {
		writeError(w, http.StatusNotFound, "Invite not found")
		return
	}

	requester, err := h.relations.AcceptInvite(r.Context(), user.ID, requesterID, token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Invite accepted",
		"requester": requester,
	})
}

// ListRequesters returns the requesters the signed-in shopper shops for.
func (h *RelationHandler) ListRequesters(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requesters, err := h.relations.ListRequesters(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"requesters": requesters})
}

// GetRequester returns one requester the signed-in shopper shops for.
func (h *RelationHandler) GetRequester(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requesterID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Requester not found")
		return
	}

	requester, err := h.relations.GetRequester(r.Context(), user.ID, requesterID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requester)
}

// ListRequesterItems returns a requester's list for an authorized shopper.
func (h *RelationHandler) ListRequesterItems(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requesterID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Requester not found")
		return
	}

	items, err := h.items.ListForRequester(r.Context(), user.ID, requesterID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"requested_items": items})
}
