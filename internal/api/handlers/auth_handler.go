package handlers

import (
	"net/http"
	"time"

	"ledger-service/internal/auth"
	"ledger-service/internal/models"
)

type AuthHandler struct {
	users  *auth.Directory
	tokens *auth.Tokens
}

func NewAuthHandler(users *auth.Directory, tokens *auth.Tokens) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials", nil)
		return
	}

	token, expires, err := h.tokens.Issue(user)
	if err != nil {
		writeServiceError(w, r, err, "issue token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expires, User: user})
}
