package handlers

import (
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/taskmaster/taskmaster/internal/api/middleware"
	"github.com/taskmaster/taskmaster/internal/api/respond"
	"github.com/taskmaster/taskmaster/internal/domain"
	"github.com/taskmaster/taskmaster/internal/service"
)

const minPasswordLength = 6

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) validate() string {
	if r.Name == "" {
		return "Name is required"
	}
	if !validEmail(r.Email) {
		return "A valid email is required"
	}
	if len(r.Password) < minPasswordLength {
		return "Password must be at least 6 characters"
	}
	return ""
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) validate() string {
	if r.Email == "" || r.Password == "" {
		return "Email and password are required"
	}
	return ""
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"OTP"`
	NewPassword string `json:"newPassword"`
}

func (r *ResetPasswordRequest) validate() string {
	if r.Email == "" || r.OTP == "" {
		return "Email and OTP are required"
	}
	if len(r.NewPassword) < minPasswordLength {
		return "Password must be at least 6 characters"
	}
	return ""
}

type UpdateMeRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	OldPassword *string `json:"oldPassword"`
	NewPassword *string `json:"newPassword"`
}

func (r *UpdateMeRequest) validate() string {
	if r.Name != nil && *r.Name == "" {
		return "Name must not be empty"
	}
	if r.Email != nil && !validEmail(*r.Email) {
		return "A valid email is required"
	}
	if r.NewPassword != nil && r.OldPassword == nil {
		return "Old password is required to set a new password"
	}
	if r.OldPassword != nil && len(*r.OldPassword) < minPasswordLength {
		return "Password must be at least 6 characters"
	}
	if r.NewPassword != nil && len(*r.NewPassword) < minPasswordLength {
		return "Password must be at least 6 characters"
	}
	return ""
}

type DeleteMeRequest struct {
	Password string `json:"password"`
}

type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respond.Error(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, "auth.Register", err)
		return
	}

	respond.JSON(w, http.StatusCreated, AuthResponse{
		User:        result.User,
		AccessToken: result.AccessToken,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respond.Error(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, "auth.Login", err)
		return
	}

	respond.JSON(w, http.StatusOK, AuthResponse{
		User:        result.User,
		AccessToken: result.AccessToken,
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validEmail(req.Email) {
		respond.Error(w, http.StatusBadRequest, "A valid email is required")
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, "auth.ForgotPassword", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"message": "OTP sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respond.Error(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeServiceError(w, "auth.ResetPassword", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}

// MeResponse pairs the user with the per-status task counts the dashboard
// shows.
type MeResponse struct {
	User  *domain.User      `json:"user"`
	Tasks domain.TaskCounts `json:"tasks"`
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, counts, err := h.authService.CurrentUser(r.Context(), identity.ID)
	if err != nil {
		writeServiceError(w, "auth.Me", err)
		return
	}

	respond.JSON(w, http.StatusOK, MeResponse{User: user, Tasks: counts})
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respond.Error(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.authService.Update(r.Context(), identity.ID, service.UpdateInput{
		Name:        req.Name,
		Email:       req.Email,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeServiceError(w, "auth.UpdateMe", err)
		return
	}

	respond.JSON(w, http.StatusOK, user)
}

type DeleteMeResponse struct {
	Message      string `json:"message"`
	DeletedTasks int64  `json:"deletedTasks"`
}

func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req DeleteMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "Password is required")
		return
	}

	deleted, err := h.authService.DeleteAccount(r.Context(), identity.ID, req.Password)
	if err != nil {
		writeServiceError(w, "auth.DeleteMe", err)
		return
	}

	respond.JSON(w, http.StatusOK, DeleteMeResponse{
		Message:      "Account deleted successfully",
		DeletedTasks: deleted,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.BearerToken(r)

	if err := h.authService.Logout(r.Context(), token); err != nil {
		writeServiceError(w, "auth.Logout", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
