package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/colmward/hamper/internal/services"
)

type CommentHandler struct {
	comments services.CommentServiceInterface
	validate *validator.Validate
}

func NewCommentHandler(comments services.CommentServiceInterface) *CommentHandler {
	return &CommentHandler{comments: comments, validate: validator.New()}
}

type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

// ListForItem returns the comments on a requested item, newest first.
func (h *CommentHandler) ListForItem(w http.ResponseWriter, r *http.Request) {
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

	comments, err := h.comments.ListForItem(r.Context(), user.ID, itemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// Create adds a comment to a requested item.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	comment, err := h.comments.Create(r.Context(), user.ID, itemID, req.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// Delete removes the signed-in user's own comment.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	commentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Comment not found")
		return
	}

	if err := h.comments.Delete(r.Context(), user.ID, commentID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}
