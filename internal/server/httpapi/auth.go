package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mailvault/internal/common"
	"github.com/dmitrijs2005/mailvault/internal/server/models"
	"github.com/dmitrijs2005/mailvault/internal/server/services"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type tokensPayload struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	ExpiresIn int64  `json:"expires_in"`
}

type userPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type authResponse struct {
	Message string        `json:"message"`
	Tokens  tokensPayload `json:"tokens"`
	User    userPayload   `json:"user"`
}

func newTokensPayload(pair *services.TokenPair) tokensPayload {
	return tokensPayload{
		Access:    pair.AccessToken,
		Refresh:   pair.RefreshToken,
		ExpiresIn: int64(time.Until(pair.AccessExpiresAt).Seconds()),
	}
}

func newAuthResponse(message string, account *models.Account, pair *services.TokenPair) authResponse {
	return authResponse{
		Message: message,
		Tokens:  newTokensPayload(pair),
		User:    userPayload{Email: account.Email, Name: account.Name},
	}
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var in signupRequest
	if err := decodeStrict(r, &in); err != nil {
		writeError(w, common.ErrValidation)
		return
	}

	account, pair, err := h.auth.Signup(r.Context(), in.Email, in.Name, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAuthResponse("User registered successfully", account, pair))
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		writeError(w, common.ErrValidation)
		return
	}

	account, pair, err := h.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAuthResponse("Login successful", account, pair))
}

func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := decodeStrict(r, &in); err != nil || in.Refresh == "" {
		writeError(w, common.ErrValidation)
		return
	}

	pair, err := h.tokens.Refresh(r.Context(), in.Refresh)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newTokensPayload(pair))
}

// Logout revokes the refresh token presented in the body. A token that is
// merely expired or already revoked still logs out cleanly; a malformed or
// forged one is a 400.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := decodeStrict(r, &in); err != nil || in.Refresh == "" {
		writeError(w, common.ErrValidation)
		return
	}

	if err := h.auth.Logout(r.Context(), in.Refresh); err != nil {
		if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrTokenExpired) {
			writeJSON(w, http.StatusBadRequest, errorResponse("invalid_token", "invalid or expired token"))
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusResetContent, map[string]string{"message": "Logout successful"})
}
