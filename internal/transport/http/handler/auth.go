package handler

import (
	"net/http"

	"github.com/ledfit-api/internal/application/auth"
	"github.com/ledfit-api/internal/application/user"
	"github.com/ledfit-api/internal/domain"
)

// AuthHandler handles registration and sign-in.
type AuthHandler struct {
	users user.Service
	auth  auth.Service
}

func NewAuthHandler(users user.Service, authSvc auth.Service) *AuthHandler {
	return &AuthHandler{users: users, auth: authSvc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := h.users.Register(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	res, err := h.auth.Issue(u)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthEnvelope{Bearer: res.Bearer, User: res.User})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Bearer: res.Bearer, User: res.User})
}

func (h *AuthHandler) OAuth(w http.ResponseWriter, r *http.Request) {
	var req domain.OAuthSignInRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.auth.SignInWithProvider(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Bearer: res.Bearer, User: res.User})
}
