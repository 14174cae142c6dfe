package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mindful-journal/journal-backend/internal/middleware"
	"github.com/mindful-journal/journal-backend/internal/models"
	"github.com/mindful-journal/journal-backend/internal/services"
)

// CookieConfig describes the session cookie. Its lifetime follows the
// session TTL.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string            `json:"message"`
	User    models.PublicUser `json:"user"`
}

type AuthHandler struct {
	creds    *services.CredentialService
	sessions *services.SessionService
	cookie   CookieConfig
	log      logrus.FieldLogger
}

func NewAuthHandler(creds *services.CredentialService, sessions *services.SessionService, cookie CookieConfig, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{creds: creds, sessions: sessions, cookie: cookie, log: log}
}

// Register handles POST /api/register and logs the new user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := h.creds.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConflict):
			writeError(w, http.StatusBadRequest, "User already exists")
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.WithError(err).Error("registration failed")
			writeError(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	if err := h.startSession(ctx, w, user.ID); err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Error("session creation failed")
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.log.WithField("user_id", user.ID).Info("user registered")
	writeJSON(w, http.StatusOK, AuthResponse{Message: "Registration successful", User: user.Public()})
}

// Login handles POST /api/login. Unknown email and wrong password get the
// same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginInput
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := h.creds.Verify(ctx, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		h.log.WithError(err).Error("login failed")
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if err := h.startSession(ctx, w, user.ID); err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Error("session creation failed")
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Message: "Login successful", User: user.Public()})
}

// Logout handles POST /api/logout. It always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r, h.cookie.Name)
	if err := h.sessions.Destroy(r.Context(), token); err != nil {
		h.log.WithError(err).Warn("session destroy failed")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logout successful"})
}

func (h *AuthHandler) startSession(ctx context.Context, w http.ResponseWriter, userID string) error {
	token, err := h.sessions.Create(ctx, userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
