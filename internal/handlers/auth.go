package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/colmward/hamper/internal/logging"
	"github.com/colmward/hamper/internal/models"
	"github.com/colmward/hamper/internal/services"
)

const sessionCookieName = "session_token"

type AuthHandler struct {
	users    services.UserServiceInterface
	auth     services.AuthServiceInterface
	validate *validator.Validate
	secure   bool
}

func NewAuthHandler(users services.UserServiceInterface, auth services.AuthServiceInterface, secure bool) *AuthHandler {
	return &AuthHandler{
		users:    users,
		auth:     auth,
		validate: validator.New(),
		secure:   secure,
	}
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
	AccountType string `json:"account_type" validate:"omitempty,oneof=requester shopper"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	User      models.User       `json:"user"`
	Requester *models.Requester `json:"requester,omitempty"`
	Shopper   *models.Shopper   `json:"shopper,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// Register provisions a user with the profile chosen at signup and opens a
// session.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	profileType, err := models.ParseProfileType(req.AccountType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account type")
		return
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		logging.Error("Error hashing password", logging.Fields{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.users.Create(r.Context(), models.CreateUserParams{
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		ProfileType:  profileType,
	})
	if errors.Is(err, services.ErrEmailAlreadyExists) {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		logging.Error("Error creating user", logging.Fields{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.auth.CreateSession(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error creating session", logging.Fields{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, UserResponse{User: *user, Message: "Account created"})
}

// Login verifies credentials and opens a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		logging.Error("Error loading user", logging.Fields{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !h.auth.VerifyPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.auth.CreateSession(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error creating session", logging.Fields{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, UserResponse{User: *user})
}

// Logout closes the current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := h.auth.DeleteSession(r.Context(), cookie.Value); err != nil {
			logging.Warn("Error deleting session", logging.Fields{"error": err.Error()})
		}
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me returns the signed-in user and their profiles.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requester, shopper, err := h.users.GetProfiles(r.Context(), user.ID)
	if err != nil {
		logging.Error("Error loading profiles", logging.Fields{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{User: *user, Requester: requester, Shopper: shopper})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
