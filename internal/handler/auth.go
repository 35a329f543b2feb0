package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/foliocms/folio/internal/auth"
	"github.com/foliocms/folio/internal/service"
	"github.com/foliocms/folio/internal/view"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
	homePath     = "/tech"
)

// AuthHandler serves sign-in, sign-up and sign-out.
type AuthHandler struct {
	*Handler
	svc        *service.AuthService
	sessionTTL time.Duration
	secure     bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(h *Handler, svc *service.AuthService, sessionTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{Handler: h, svc: svc, sessionTTL: sessionTTL, secure: secure}
}

// LoginForm handles GET /auth/login.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.LoginPage(h.page(w, r, "Log in"), r.URL.Query().Get("email")))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flash(w, r, "error", "login failed")
		redirect(w, r, loginPath)
		return
	}

	token, user, err := h.svc.Login(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	switch {
	case errors.Is(err, service.ErrEmailNotFound), errors.Is(err, service.ErrBadPassword):
		h.logger.Info("login_rejected", slog.String("reason", err.Error()), slog.String("ip", r.RemoteAddr))
		h.flash(w, r, "error", err.Error())
		redirect(w, r, loginPath)
		return
	case err != nil:
		h.serverError(w, r, err)
		return
	}

	http.SetCookie(w, auth.SessionCookie(token, h.sessionTTL, h.secure))
	h.logger.Info("login_succeeded", slog.Int64("user_id", user.ID))
	redirect(w, r, homePath)
}

// RegisterForm handles GET /auth/register.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.RegisterPage(h.page(w, r, "Register"), "", ""))
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flash(w, r, "error", "registration failed")
		redirect(w, r, registerPath)
		return
	}

	_, err := h.svc.Register(r.Context(), r.PostFormValue("name"), r.PostFormValue("email"), r.PostFormValue("password"))
	var ve *service.ValidationError
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		h.flash(w, r, "error", err.Error())
		redirect(w, r, registerPath)
		return
	case errors.As(err, &ve):
		h.flash(w, r, "error", validationMessage(ve))
		redirect(w, r, registerPath)
		return
	case err != nil:
		h.logger.Error("registration_failed", slog.String("error", err.Error()))
		h.flash(w, r, "error", "registration failed")
		redirect(w, r, registerPath)
		return
	}

	h.flash(w, r, "success", "registration complete, please log in")
	redirect(w, r, loginPath)
}

// Logout handles GET /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearedSessionCookie(h.secure))
	redirect(w, r, loginPath)
}
