package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"boq_engine/internal/auth"
	"boq_engine/internal/utils"
)

// LoginRequest is the body of an admin login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries a signed admin token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// handleAdminLogin exchanges email/password for a JWT.
func (d *Dependencies) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, expiresAt, err := auth.AuthenticateAdmin(r.Context(), d.AdminStore, req.Email, req.Password, d.Config.JWTSecret)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
