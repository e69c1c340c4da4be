// Package handler is the HTTP layer: it parses requests, calls services,
// and writes JSON responses. No business rules live here — a handler that
// needs to know whether something is allowed is a bug.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/anonymous123-code/chatApp/internal/auth"
	"github.com/anonymous123-code/chatApp/internal/service"
)

// AuthHandler serves registration, login, and profile lookups.
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenResponse mirrors the OAuth2 bearer-token shape clients expect from a
// token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/users/register
// BODY: {"username":"alice","password":"secret","full_name":"Alice","email":"a@a.a"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Password, req.FullName, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user.Public())
}

// HandleToken exchanges credentials for a JWT.
//
// HTTP: POST /api/token
// BODY: {"username":"alice","password":"secret"}
//
// The token is returned in the body for API clients AND set as an HttpOnly
// cookie for browser clients. HttpOnly keeps the token out of reach of
// injected JavaScript.
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	result, err := h.authService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(auth.AccessTokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
	})
}

// HandleMe returns the authenticated user's own full profile.
//
// HTTP: GET /api/users/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	user, _, err := h.authService.GetUser(r.Context(), requester, requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleGetUser returns a user's profile: the full record when the
// requester asks about themselves, the public subset (username only) for
// anyone else.
//
// HTTP: GET /api/users/{username}
func (h *AuthHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.UsernameFromContext(r.Context())
	username := r.PathValue("username")

	user, full, err := h.authService.GetUser(r.Context(), username, requester)
	if err != nil {
		writeError(w, err)
		return
	}

	if full {
		writeJSON(w, http.StatusOK, user)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}
