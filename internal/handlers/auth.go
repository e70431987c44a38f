package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/otcheredev/clinic-management/internal/middleware"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/services"
	"github.com/rs/zerolog/log"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Login authenticates a user and returns a signed token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Email and password are required"})
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		log.Warn().Str("email", req.Email).Msg("Login failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Me returns the authenticated user's own record
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Not authenticated"})
		return
	}

	user, err := h.authService.ResolveCaller(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// ChangePassword changes the authenticated user's own password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Not authenticated"})
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Current and new password are required"})
		return
	}

	if err := h.authService.ChangePassword(r.Context(), caller.UserID, &req); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
